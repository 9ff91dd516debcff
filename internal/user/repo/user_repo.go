package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-edge-admin/pkg/database"
)

// UserRepo provides data access for the user_accounts table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the status enum and the user_accounts table if missing.
// This is a convenience for early development; prefer migrations in production.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
DO $$
BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'user_account_status') THEN
    CREATE TYPE user_account_status AS ENUM ('active', 'inactive', 'pending');
  END IF;
END$$;
CREATE TABLE IF NOT EXISTS user_accounts (
  user_id BIGSERIAL PRIMARY KEY,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  status user_account_status NOT NULL DEFAULT 'active'
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return database.Wrap("ensure user_accounts", err)
}

// Exists reports whether a user row with the given id is present.
func (r *UserRepo) Exists(ctx context.Context, userID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM user_accounts WHERE user_id = $1)`
	var ok bool
	if err := r.db.GetContext(ctx, &ok, q, userID); err != nil {
		return false, database.Wrap("user exists", err)
	}
	return ok, nil
}

// GetByID returns the user row, or nil when it does not exist.
func (r *UserRepo) GetByID(ctx context.Context, userID int64) (*entity.UserAccount, error) {
	const q = `SELECT user_id, created_at, updated_at, status::text AS status
		FROM user_accounts WHERE user_id = $1`
	var u entity.UserAccount
	if err := r.db.GetContext(ctx, &u, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, database.Wrap("get user", err)
	}
	return &u, nil
}

// UpdateStatus sets status and bumps updated_at. It reports whether a row matched.
func (r *UserRepo) UpdateStatus(ctx context.Context, userID int64, status string) (bool, error) {
	const q = `UPDATE user_accounts SET status = $2, updated_at = NOW() WHERE user_id = $1`
	res, err := r.db.ExecContext(ctx, q, userID, status)
	if err != nil {
		return false, database.Wrap("update user status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, database.Wrap("update user status", err)
	}
	return n > 0, nil
}

// DescribeStatusColumn reads the declared type of user_accounts.status from
// information_schema, expanding enum types through pg_enum.
func (r *UserRepo) DescribeStatusColumn(ctx context.Context) (entity.ColumnDescriptor, error) {
	const q = `SELECT data_type, udt_schema, udt_name, character_maximum_length
		FROM information_schema.columns
		WHERE table_schema = current_schema()
		  AND table_name = 'user_accounts'
		  AND column_name = 'status'
		LIMIT 1`
	var col struct {
		DataType  string        `db:"data_type"`
		UDTSchema string        `db:"udt_schema"`
		UDTName   string        `db:"udt_name"`
		MaxLength sql.NullInt64 `db:"character_maximum_length"`
	}
	if err := r.db.GetContext(ctx, &col, q); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.ColumnDescriptor{Kind: entity.ColumnUnknown}, nil
		}
		return entity.ColumnDescriptor{}, database.Wrap("describe status column", err)
	}

	switch col.DataType {
	case "USER-DEFINED":
		// the type is resolved in the column's own schema
		const labels = `SELECT COALESCE(array_agg(e.enumlabel ORDER BY e.enumsortorder), '{}')
			FROM pg_enum e
			WHERE e.enumtypid = (quote_ident($1) || '.' || quote_ident($2))::regtype`
		var values pq.StringArray
		if err := r.db.GetContext(ctx, &values, labels, col.UDTSchema, col.UDTName); err != nil {
			return entity.ColumnDescriptor{}, database.Wrap("read status enum labels", err)
		}
		if len(values) == 0 {
			return entity.ColumnDescriptor{Kind: entity.ColumnUnknown}, nil
		}
		return entity.ColumnDescriptor{Kind: entity.ColumnEnum, Values: []string(values)}, nil
	case "character varying", "character", "text":
		d := entity.ColumnDescriptor{Kind: entity.ColumnText}
		if col.MaxLength.Valid {
			d.MaxLength = int(col.MaxLength.Int64)
		}
		return d, nil
	default:
		return entity.ColumnDescriptor{Kind: entity.ColumnUnknown}, nil
	}
}

// ResolveInactiveStatusValue returns the status literal meaning "inactive" for
// the live schema.
func (r *UserRepo) ResolveInactiveStatusValue(ctx context.Context) (string, error) {
	col, err := r.DescribeStatusColumn(ctx)
	if err != nil {
		return "", err
	}
	return ResolveInactiveStatus(col)
}
