// internal/app/system/payload/payload.go
//
// Package payload validates JSON request bodies against embedded JSON
// Schemas before they are decoded into Go types.
package payload

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/limits"
	"github.com/xeipuuv/gojsonschema"
)

// MaxBodyBytes bounds every JSON request body.
const MaxBodyBytes = limits.MaxJSONBody

const rootField = "(root)"

// Name identifies a request schema.
type Name string

const (
	PreviewEligible Name = "preview_eligible"
	CreateJob       Name = "create_job"
	CreateRounds    Name = "create_rounds"
	RoundResults    Name = "round_results"
	AddPlacement    Name = "add_placement"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var schemas = mustCompile(PreviewEligible, CreateJob, CreateRounds, RoundResults, AddPlacement)

// mustCompile loads each schema and injects the shared eligibility
// criteria definition so schemas can refer to #/definitions/criteria.
func mustCompile(names ...Name) map[Name]*gojsonschema.Schema {
	var criteria map[string]interface{}
	if err := json.Unmarshal(mustRead("criteria"), &criteria); err != nil {
		panic(fmt.Sprintf("payload: criteria schema: %v", err))
	}

	out := make(map[Name]*gojsonschema.Schema, len(names))
	for _, n := range names {
		var root map[string]interface{}
		if err := json.Unmarshal(mustRead(string(n)), &root); err != nil {
			panic(fmt.Sprintf("payload: %s schema: %v", n, err))
		}
		defs, _ := root["definitions"].(map[string]interface{})
		if defs == nil {
			defs = map[string]interface{}{}
		}
		defs["criteria"] = criteria
		root["definitions"] = defs

		s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(root))
		if err != nil {
			panic(fmt.Sprintf("payload: compile %s: %v", n, err))
		}
		out[n] = s
	}
	return out
}

func mustRead(name string) []byte {
	b, err := schemaFS.ReadFile("schemas/" + name + ".json")
	if err != nil {
		panic(fmt.Sprintf("payload: read %s: %v", name, err))
	}
	return b
}

// Validate checks body against the named schema. Violations come back as
// an apperr validation error keyed by field path.
func Validate(name Name, body []byte) error {
	s, ok := schemas[name]
	if !ok {
		return apperr.Internal("unknown payload schema "+string(name), nil)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return apperr.Validation("request body is not valid JSON", nil)
	}
	if res.Valid() {
		return nil
	}

	fields := map[string]string{}
	for _, e := range res.Errors() {
		field := fieldOf(e)
		if _, seen := fields[field]; !seen {
			fields[field] = e.Description()
		}
	}
	return apperr.Validation("request body failed validation", fields)
}

// Decode reads r's body, validates it against the named schema and
// unmarshals it into dst. An empty body is treated as {}.
func Decode(r *http.Request, name Name, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return apperr.Validation("could not read request body", nil)
	}
	if len(body) > MaxBodyBytes {
		return apperr.Validation("request body is too large", nil)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if err := Validate(name, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.Validation("request body does not match the expected shape", map[string]string{"body": err.Error()})
	}
	return nil
}

func fieldOf(e gojsonschema.ResultError) string {
	field := e.Field()
	if e.Type() == "required" {
		if p, ok := e.Details()["property"].(string); ok {
			if field == rootField || field == "" {
				return p
			}
			return field + "." + p
		}
	}
	if field == rootField || field == "" {
		return "body"
	}
	return strings.TrimPrefix(field, rootField+".")
}
