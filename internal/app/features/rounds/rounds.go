// internal/app/features/rounds/rounds.go
package rounds

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/placementhub/internal/app/features/shared"
	"github.com/dalemusser/placementhub/internal/app/system/payload"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	roundrules "github.com/dalemusser/placementhub/internal/domain/rounds"
)

type createRoundsRequest struct {
	Rounds []struct {
		Name     string  `json:"name"`
		DateTime *string `json:"date_time"`
	} `json:"rounds"`
}

type recordResultsRequest struct {
	Qualified   []string `json:"qualified_students"`
	Unqualified []string `json:"unqualified_students"`
	Absent      []string `json:"absent_students"`
}

// HandleCreateRounds handles POST /jobs/{jobId}/rounds.
func (h *Handler) HandleCreateRounds(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.Principal(w, r)
	if !ok {
		return
	}
	jobID, err := shared.ObjectIDParam(r, "jobId")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var req createRoundsRequest
	if err := payload.Decode(r, payload.CreateRounds, &req); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	specs := make([]roundrules.Spec, 0, len(req.Rounds))
	for i, in := range req.Rounds {
		at, err := shared.OptionalTime("rounds."+strconv.Itoa(i)+".date_time", in.DateTime)
		if err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
		specs = append(specs, roundrules.Spec{Name: in.Name, DateTime: at})
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create rounds")
	defer cancel()

	created, err := h.Svc.CreateRounds(ctx, p, jobID, specs)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]any{"message": "rounds created", "rounds": created})
}

// HandleRecordResults handles PUT /jobs/{jobId}/rounds/{roundId}. The
// three lists replace whatever the round held before.
func (h *Handler) HandleRecordResults(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.Principal(w, r)
	if !ok {
		return
	}
	jobID, err := shared.ObjectIDParam(r, "jobId")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	roundID, err := shared.ObjectIDParam(r, "roundId")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var req recordResultsRequest
	if err := payload.Decode(r, payload.RoundResults, &req); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	var res roundrules.Results
	if res.Qualified, err = shared.ObjectIDs("qualified_students", req.Qualified); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if res.Unqualified, err = shared.ObjectIDs("unqualified_students", req.Unqualified); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if res.Absent, err = shared.ObjectIDs("absent_students", req.Absent); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "record round results")
	defer cancel()

	round, err := h.Svc.RecordResults(ctx, p, jobID, roundID, res)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"message": "round results recorded", "round": round})
}
