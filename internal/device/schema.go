package device

import (
	"errors"
	"strings"

	"github.com/ovaphlow/pitchfork/service-edge-admin/pkg/database"
)

const schemaGuidance = "Schema does not support 'last used by user' yet. Expected devices.owner_user_id and devices.created_at."

// schemaMismatchHints is the fallback for stores that do not produce a
// *database.SchemaError. Matching on "table" is broad and will also catch
// unrelated messages mentioning a table.
var schemaMismatchHints = []string{"unknown column", "doesn't exist", "table"}

// IsSchemaMismatch reports whether err means the schema lacks a column or table.
func IsSchemaMismatch(err error) bool {
	if err == nil {
		return false
	}
	var se *database.SchemaError
	if errors.As(err, &se) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range schemaMismatchHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
