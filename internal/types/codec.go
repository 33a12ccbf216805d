package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// The engine speaks exactly one JSON document per direction. Decoding goes
// through pointer-field shadows so that an absent key is an error instead of a
// silent zero value. Key names must match exactly; unknown keys are ignored.

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type wireRequest struct {
	Text              *string       `json:"text" validate:"required"`
	Mode              *Mode         `json:"mode" validate:"required"`
	Strategy          *Strategy     `json:"strategy" validate:"required"`
	Level             *Level        `json:"level" validate:"required"`
	EnabledCategories *[]string     `json:"enabled_categories" validate:"required"`
	Allowlist         *[]string     `json:"allowlist" validate:"required"`
	SemanticMode      *SemanticMode `json:"semantic_mode" validate:"required"`
}

type wireFinding struct {
	Type               *string  `json:"type" validate:"required"`
	Start              *int     `json:"start" validate:"required,gte=0"`
	End                *int     `json:"end" validate:"required,gte=0"`
	Confidence         *float64 `json:"confidence" validate:"required,gte=0,lte=1"`
	Risk               *int     `json:"risk" validate:"required"`
	Replacement        *string  `json:"replacement" validate:"required"`
	ReplacementPreview *string  `json:"replacement_preview" validate:"required"`
	Reason             *string  `json:"reason" validate:"required"`
}

type wireStats struct {
	TotalFindings   *int            `json:"total_findings" validate:"required,gte=0"`
	ByCategory      *map[string]int `json:"by_category" validate:"required"`
	HighRiskCount   *int            `json:"high_risk_count" validate:"required,gte=0"`
	MediumRiskCount *int            `json:"medium_risk_count" validate:"required,gte=0"`
	LowRiskCount    *int            `json:"low_risk_count" validate:"required,gte=0"`
}

type wireResponse struct {
	SanitizedText *string        `json:"sanitized_text" validate:"required"`
	Findings      *[]wireFinding `json:"findings" validate:"required,dive"`
	Stats         *wireStats     `json:"stats" validate:"required"`
	RiskScore     *int           `json:"risk_score" validate:"required,gte=0"`
	Version       *string        `json:"version" validate:"required"`
}

// MarshalRequest encodes req as the engine's input document. Nil lists are
// sent as empty arrays.
func MarshalRequest(req Request) ([]byte, error) {
	if req.EnabledCategories == nil {
		req.EnabledCategories = []string{}
	}
	if req.Allowlist == nil {
		req.Allowlist = []string{}
	}
	b, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return b, nil
}

// UnmarshalRequest decodes a request document. Every key must be present
// exactly once and spelled exactly.
func UnmarshalRequest(data []byte) (Request, error) {
	var w wireRequest
	if err := json.Unmarshal(data, &w); err != nil {
		return Request{}, fmt.Errorf("invalid request document: %w", err)
	}
	if err := checkKeys(data, reflect.TypeOf(w)); err != nil {
		return Request{}, fmt.Errorf("invalid request document: %w", err)
	}
	if err := validate.Struct(w); err != nil {
		return Request{}, describe("request", err)
	}
	return Request{
		Text:              *w.Text,
		Mode:              *w.Mode,
		Strategy:          *w.Strategy,
		Level:             *w.Level,
		EnabledCategories: *w.EnabledCategories,
		Allowlist:         *w.Allowlist,
		SemanticMode:      *w.SemanticMode,
	}, nil
}

// MarshalResponse encodes resp as the engine's output document.
func MarshalResponse(resp Response) ([]byte, error) {
	if resp.Findings == nil {
		resp.Findings = []Finding{}
	}
	if resp.Stats.ByCategory == nil {
		resp.Stats.ByCategory = map[string]int{}
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return b, nil
}

// UnmarshalResponse decodes a response document. Missing keys, null lists and
// out-of-range numbers are rejected with the offending field named.
func UnmarshalResponse(data []byte) (Response, error) {
	var w wireResponse
	if err := json.Unmarshal(data, &w); err != nil {
		return Response{}, fmt.Errorf("invalid response document: %w", err)
	}
	if err := checkKeys(data, reflect.TypeOf(w)); err != nil {
		return Response{}, fmt.Errorf("invalid response document: %w", err)
	}
	if err := validate.Struct(w); err != nil {
		return Response{}, describe("response", err)
	}

	findings := make([]Finding, len(*w.Findings))
	for i, f := range *w.Findings {
		findings[i] = Finding{
			Type:               *f.Type,
			Start:              *f.Start,
			End:                *f.End,
			Confidence:         *f.Confidence,
			Risk:               *f.Risk,
			Replacement:        *f.Replacement,
			ReplacementPreview: *f.ReplacementPreview,
			Reason:             *f.Reason,
		}
	}
	byCategory := *w.Stats.ByCategory
	if byCategory == nil {
		byCategory = map[string]int{}
	}
	return Response{
		SanitizedText: *w.SanitizedText,
		Findings:      findings,
		Stats: Stats{
			TotalFindings:   *w.Stats.TotalFindings,
			ByCategory:      byCategory,
			HighRiskCount:   *w.Stats.HighRiskCount,
			MediumRiskCount: *w.Stats.MediumRiskCount,
			LowRiskCount:    *w.Stats.LowRiskCount,
		},
		RiskScore: *w.RiskScore,
		Version:   *w.Version,
	}, nil
}

// describe turns validator output into a message that names JSON fields.
func describe(doc string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid %s document: %w", doc, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("missing required field %q", field))
		default:
			msgs = append(msgs, fmt.Sprintf("field %q must satisfy %s=%s (got %v)", field, fe.Tag(), fe.Param(), deref(fe.Value())))
		}
	}
	return fmt.Errorf("invalid %s document: %s", doc, strings.Join(msgs, "; "))
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
