// internal/app/system/normalize/normalize.go
//
// Package normalize canonicalises user-supplied strings before they are
// stored or compared.
package normalize

import (
	"strings"

	"github.com/dalemusser/placementhub/internal/domain/models"
)

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name and collapses inner runs of whitespace.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Status lowercases and trims an account status.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Role maps role spellings, including legacy ones, onto the stored roles.
// Unknown roles are returned lowercased so callers can reject them.
func Role(s string) string {
	r := strings.ToLower(strings.TrimSpace(s))
	r = strings.ReplaceAll(r, "-", "_")
	switch r {
	case "tnp_admin", "institution_admin", "college_admin":
		return models.RoleInstitutionAdmin
	case "global_admin", "superadmin":
		return models.RoleGlobalAdmin
	}
	return r
}

// JobType maps "Job"/"Internship" in any case onto the stored type.
func JobType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// List trims every entry, drops blanks and duplicates, and keeps order.
// It returns nil when nothing is left.
func List(values []string) []string {
	var out []string
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
