// internal/app/system/authz/authz.go
//
// Package authz is the single place that decides whether a principal may
// perform an action on a job. Handlers and the placement service both ask
// Can; nothing else inspects roles.
package authz

import (
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/normalize"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID        primitive.ObjectID
	Name          string
	Role          string
	InstitutionID primitive.ObjectID // zero for global admins
}

func (p Principal) IsStudent() bool          { return p.Role == models.RoleStudent }
func (p Principal) IsInstitutionAdmin() bool { return p.Role == models.RoleInstitutionAdmin }
func (p Principal) IsGlobalAdmin() bool      { return p.Role == models.RoleGlobalAdmin }

// PrincipalFrom builds the principal from the session user in r. A
// malformed user or institution id fails closed.
func PrincipalFrom(r *http.Request) (Principal, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return Principal{}, false
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return Principal{}, false
	}
	p := Principal{UserID: id, Name: u.Name, Role: normalize.Role(u.Role)}
	if u.InstitutionID != "" {
		inst, err := primitive.ObjectIDFromHex(u.InstitutionID)
		if err != nil {
			return Principal{}, false
		}
		p.InstitutionID = inst
	}
	return p, true
}

// Action names an operation on the job lifecycle.
type Action string

const (
	PreviewEligible     Action = "preview_eligible"
	CreateJob           Action = "create_job"
	ListJobs            Action = "list_jobs"
	ViewJob             Action = "view_job"
	DeleteJob           Action = "delete_job"
	ListEligibleJobs    Action = "list_eligible_jobs"
	Apply               Action = "apply"
	ViewApplicants      Action = "view_applicants"
	ManageRounds        Action = "manage_rounds"
	UpdateLogo          Action = "update_logo"
	AddPlacement        Action = "add_placement"
	ViewPlacements      Action = "view_placements"
	ViewOwnApplications Action = "view_own_applications"
	ViewAuditTrail      Action = "view_audit_trail"
)

// Resource is what an action targets. Zero values mean "no specific job".
type Resource struct {
	InstitutionID primitive.ObjectID
	CreatedBy     primitive.ObjectID
}

// JobResource describes job for Can.
func JobResource(job models.Job) Resource {
	return Resource{InstitutionID: job.InstitutionID, CreatedBy: job.CreatedBy}
}

// Can reports whether p may perform a on res.
func Can(p Principal, a Action, res Resource) bool {
	ownAdmin := p.IsInstitutionAdmin() && !p.InstitutionID.IsZero() && p.InstitutionID == res.InstitutionID
	creator := !p.UserID.IsZero() && p.UserID == res.CreatedBy

	switch a {
	case PreviewEligible, CreateJob, ListJobs:
		return p.IsInstitutionAdmin() && !p.InstitutionID.IsZero()
	case ViewJob, UpdateLogo:
		return ownAdmin || creator
	case DeleteJob, AddPlacement, ViewPlacements:
		return ownAdmin
	case ViewApplicants, ManageRounds:
		return ownAdmin || p.IsGlobalAdmin()
	case ViewAuditTrail:
		return ownAdmin || p.IsGlobalAdmin()
	case ListEligibleJobs, ViewOwnApplications:
		return p.IsStudent()
	case Apply:
		return p.IsStudent() && !p.InstitutionID.IsZero() && p.InstitutionID == res.InstitutionID
	default:
		return false
	}
}
