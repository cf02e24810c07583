// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/placementhub/internal/app/features/shared"
	"github.com/dalemusser/placementhub/internal/app/store/audit"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// EventView is the JSON shape of one audit event.
type EventView struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	InstitutionID string            `json:"institution_id,omitempty"`
	EventType     string            `json:"event_type"`
	JobID         string            `json:"job_id,omitempty"`
	StudentID     string            `json:"student_id,omitempty"`
	ActorID       string            `json:"actor_id,omitempty"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

// ServeList handles GET /audit.
//
// Query parameters: job_id, student_id, event_type, since (date or RFC
// 3339), limit (1-200). Global admins may also pass institution_id.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.Principal(w, r)
	if !ok {
		return
	}

	filter, err := parseFilter(r, p)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	res := authz.Resource{}
	if filter.InstitutionID != nil {
		res.InstitutionID = *filter.InstitutionID
	}
	if !authz.Can(p, authz.ViewAuditTrail, res) {
		respond.Error(w, r, h.Log, apperr.Authorization("you may not view this audit trail"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit trail list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		respond.Error(w, r, h.Log, apperr.Dependency("list audit events", err))
		return
	}

	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, toView(e))
	}
	respond.JSON(w, http.StatusOK, map[string]any{"message": "audit events", "events": views})
}

func parseFilter(r *http.Request, p authz.Principal) (audit.QueryFilter, error) {
	q := r.URL.Query()
	f := audit.QueryFilter{
		EventType: strings.TrimSpace(q.Get("event_type")),
		Limit:     defaultLimit,
	}

	if p.IsGlobalAdmin() {
		id, err := optionalID(q.Get("institution_id"), "institution_id")
		if err != nil {
			return f, err
		}
		f.InstitutionID = id
	} else {
		inst := p.InstitutionID
		f.InstitutionID = &inst
	}

	var err error
	if f.JobID, err = optionalID(q.Get("job_id"), "job_id"); err != nil {
		return f, err
	}
	if f.StudentID, err = optionalID(q.Get("student_id"), "student_id"); err != nil {
		return f, err
	}

	if s := strings.TrimSpace(q.Get("since")); s != "" {
		t, err := shared.ParseTime("since", s)
		if err != nil {
			return f, err
		}
		f.Since = &t
	}

	if s := strings.TrimSpace(q.Get("limit")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxLimit {
			return f, apperr.Validation("invalid limit", map[string]string{"limit": "must be between 1 and 200"})
		}
		f.Limit = int64(n)
	}
	return f, nil
}

func optionalID(raw, field string) (*primitive.ObjectID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	ids, err := shared.ObjectIDs(field, []string{raw})
	if err != nil {
		return nil, err
	}
	return &ids[0], nil
}

func toView(e audit.Event) EventView {
	hex := func(id *primitive.ObjectID) string {
		if id == nil {
			return ""
		}
		return id.Hex()
	}
	return EventView{
		ID:            e.ID.Hex(),
		Timestamp:     e.Timestamp,
		InstitutionID: hex(e.InstitutionID),
		EventType:     e.EventType,
		JobID:         hex(e.JobID),
		StudentID:     hex(e.StudentID),
		ActorID:       hex(e.ActorID),
		Success:       e.Success,
		FailureReason: e.FailureReason,
		Details:       e.Details,
	}
}
