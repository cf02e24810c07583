// internal/app/system/respond/respond.go
//
// Package respond writes JSON success and error bodies for the API.
package respond

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"go.uber.org/zap"
)

// errorBody is the JSON shape of every error response:
//
//	{"error":{"kind":"conflict","message":"already applied"}}
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    apperr.Kind       `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error classifies err and writes the matching status and body. Internal
// and dependency failures are logged with their cause and reported to the
// caller without it.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	detail := errorDetail{Kind: kind}
	var ae *apperr.Error
	asApp := errors.As(err, &ae)

	switch {
	case status >= http.StatusInternalServerError:
		detail.Message = "internal server error"
		if kind == apperr.KindDependency {
			detail.Message = "a required service is unavailable"
		}
		if log != nil {
			log.Error("request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("kind", string(kind)),
				zap.Error(err))
		}
	case asApp:
		detail.Message = ae.Message
		detail.Fields = ae.Fields
		if ae.RetryAfter > 0 {
			secs := int64(math.Ceil(ae.RetryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
		}
	default:
		detail.Message = http.StatusText(status)
	}

	JSON(w, status, errorBody{Error: detail})
}

// Unauthorized and Forbidden are shorthands for middleware.
func Unauthorized(w http.ResponseWriter, r *http.Request) {
	Error(w, r, nil, apperr.Authentication("sign in required"))
}

func Forbidden(w http.ResponseWriter, r *http.Request) {
	Error(w, r, nil, apperr.Authorization("you do not have access to this resource"))
}
