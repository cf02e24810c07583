package payload

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/placementhub/internal/app/system/apperr"
)

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	ae, ok := err.(*apperr.Error)
	if !ok {
		t.Fatalf("err = %T %v, want *apperr.Error", err, err)
	}
	if ae.Kind != apperr.KindValidation {
		t.Fatalf("kind = %s, want validation", ae.Kind)
	}
	return ae.Fields
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		schema    Name
		body      string
		wantField string
	}{
		{"valid job", CreateJob, `{"title":"SDE","company":"Acme","type":"job","job_date":"2025-01-10","eligibility_criteria":{"branches":["CSE"],"min_tenth_percentage":80}}`, ""},
		{"missing title", CreateJob, `{"company":"Acme","type":"job","job_date":"2025-01-10"}`, "title"},
		{"bad type", CreateJob, `{"title":"SDE","company":"Acme","type":"contract","job_date":"2025-01-10"}`, "type"},
		{"negative cgpa", PreviewEligible, `{"eligibility_criteria":{"min_cgpa":-1}}`, "eligibility_criteria.min_cgpa"},
		{"unknown criterion", PreviewEligible, `{"eligibility_criteria":{"shoe_size":9}}`, "eligibility_criteria"},
		{"fractional backlogs", PreviewEligible, `{"eligibility_criteria":{"max_backlogs":1.5}}`, "eligibility_criteria.max_backlogs"},
		{"empty preview", PreviewEligible, `{}`, ""},
		{"no rounds", CreateRounds, `{"rounds":[]}`, "rounds"},
		{"round without name", CreateRounds, `{"rounds":[{"date_time":null}]}`, "rounds.0.name"},
		{"bad id", RoundResults, `{"qualified_students":["nope"]}`, "qualified_students.0"},
		{"zero package", AddPlacement, `{"student_id":"507f1f77bcf86cd799439011","package_amount":0}`, "package_amount"},
		{"valid placement", AddPlacement, `{"student_id":"507f1f77bcf86cd799439011","package_amount":6}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.schema, []byte(tt.body))
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			fields := fieldsOf(t, err)
			if _, ok := fields[tt.wantField]; !ok {
				t.Errorf("fields = %v, want key %q", fields, tt.wantField)
			}
		})
	}
}

func TestValidate_MalformedJSON(t *testing.T) {
	err := Validate(CreateJob, []byte(`{"title":`))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("err = %v, want validation", err)
	}
}

func TestDecode(t *testing.T) {
	var dst struct {
		StudentID     string  `json:"student_id"`
		PackageAmount float64 `json:"package_amount"`
	}
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"student_id":"507f1f77bcf86cd799439011","package_amount":6.5}`))
	if err := Decode(r, AddPlacement, &dst); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if dst.PackageAmount != 6.5 {
		t.Errorf("package_amount = %v", dst.PackageAmount)
	}

	var empty struct{}
	if err := Decode(httptest.NewRequest("POST", "/", nil), PreviewEligible, &empty); err != nil {
		t.Errorf("empty body should be accepted for preview: %v", err)
	}

	big := strings.NewReader(`{"title":"` + strings.Repeat("x", MaxBodyBytes) + `"}`)
	if err := Decode(httptest.NewRequest("POST", "/", big), CreateJob, &empty); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("oversized body err = %v, want validation", err)
	}
}
