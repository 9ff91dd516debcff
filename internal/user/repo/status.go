package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/user/entity"
)

const inactiveLiteral = "inactive"

// ErrNoInactiveStatus is returned when an enumerated status column has no
// value that could mean inactive.
var ErrNoInactiveStatus = errors.New("no inactive-like value in user_accounts.status")

// inactiveHints are tried in order; the first enum value containing a hint wins.
var inactiveHints = []string{"inactive", "disabled", "suspend"}

// ResolveInactiveStatus picks the literal that means "inactive" for a status
// column described by col.
func ResolveInactiveStatus(col entity.ColumnDescriptor) (string, error) {
	switch col.Kind {
	case entity.ColumnEnum:
		for _, hint := range inactiveHints {
			for _, v := range col.Values {
				if strings.Contains(strings.ToLower(v), hint) {
					return v, nil
				}
			}
		}
		return "", fmt.Errorf("%w (%s column, allowed: %s)", ErrNoInactiveStatus, col.Kind, strings.Join(col.Values, ", "))
	case entity.ColumnText:
		if col.MaxLength > 0 && col.MaxLength < len(inactiveLiteral) {
			return inactiveLiteral[:col.MaxLength], nil
		}
		return inactiveLiteral, nil
	default:
		return inactiveLiteral, nil
	}
}
