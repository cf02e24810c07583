// internal/app/features/shared/request.go
//
// Package shared holds request helpers used by every JSON feature.
package shared

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal returns the caller or writes a 401 and reports false.
func Principal(w http.ResponseWriter, r *http.Request) (authz.Principal, bool) {
	p, ok := authz.PrincipalFrom(r)
	if !ok {
		respond.Unauthorized(w, r)
		return authz.Principal{}, false
	}
	return p, true
}

// ObjectIDParam parses the chi URL parameter name as an ObjectID.
func ObjectIDParam(r *http.Request, name string) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, name)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid id", map[string]string{name: "must be a 24-character hex id"})
	}
	return id, nil
}

// ObjectIDs parses a list of hex ids. field names the list in errors.
func ObjectIDs(field string, raw []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
		if err != nil {
			return nil, apperr.Validation("invalid id", map[string]string{field: "contains an invalid id: " + s})
		}
		out = append(out, id)
	}
	return out, nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime accepts RFC 3339 timestamps, minute-precision local datetimes
// as sent by HTML datetime inputs, and plain dates. Times without a zone
// are taken as UTC.
func ParseTime(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.Validation("invalid date", map[string]string{field: "must be a date (YYYY-MM-DD) or RFC 3339 timestamp"})
}

// OptionalTime parses s when it is non-empty.
func OptionalTime(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := ParseTime(field, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
