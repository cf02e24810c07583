// internal/testutil/session.go
package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// Session settings shared by NewSessionManager and SessionCookie.
const (
	SessionKey  = "test-session-key-must-be-32-chars-long"
	SessionName = "test-session"
)

// NewSessionManager returns a session manager for router tests. Requests
// carry their user through WithUser, so no cookie is ever read.
func NewSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(SessionKey, SessionName, "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

// SessionCookie encodes a session cookie for userID the way the issuing
// application does, signed with SessionKey.
func SessionCookie(t *testing.T, userID string) *http.Cookie {
	t.Helper()
	values := map[interface{}]interface{}{auth.SessionUserIDKey: userID}
	encoded, err := securecookie.EncodeMulti(SessionName, values, securecookie.CodecsFromPairs([]byte(SessionKey))...)
	if err != nil {
		t.Fatalf("failed to encode session cookie: %v", err)
	}
	return &http.Cookie{Name: SessionName, Value: encoded, Path: "/"}
}
