package profile

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Candidate is the structured resume of the person the agent speaks for.
// It is read-only once installed into a Store.
type Candidate struct {
	FullName            string `mapstructure:"fullName" json:"fullName,omitempty"`
	JobTitle            string `mapstructure:"jobTitle" json:"jobTitle,omitempty"`
	CurrentCompany      string `mapstructure:"currentCompany" json:"currentCompany,omitempty"`
	Location            string `mapstructure:"location" json:"location,omitempty"`
	Country             string `mapstructure:"country" json:"country,omitempty"`
	ProfessionalSummary string `mapstructure:"professionalSummary" json:"professionalSummary,omitempty"`
	// TotalExperience is kept as text. Numeric payloads are decoded to their decimal form.
	TotalExperience string `mapstructure:"totalExperience" json:"totalExperience,omitempty"`

	Skills            []Skill            `mapstructure:"skills" json:"skills,omitempty"`
	Experiences       []Experience       `mapstructure:"experiences" json:"experiences,omitempty"`
	InterviewBriefs   []InterviewSession `mapstructure:"interviewBriefs" json:"interviewBriefs,omitempty"`
	InterviewInsights []InterviewSession `mapstructure:"interviewInsights" json:"interviewInsights,omitempty"`
}

type Skill struct {
	Name       string  `mapstructure:"name" json:"name"`
	YearsOfExp float64 `mapstructure:"yearsOfExp" json:"yearsOfExp"`
	LastUsed   string  `mapstructure:"lastUsed" json:"lastUsed,omitempty"`
}

type Experience struct {
	Company       string `mapstructure:"company" json:"company,omitempty"`
	JobTitle      string `mapstructure:"jobTitle" json:"jobTitle,omitempty"`
	StartDate     string `mapstructure:"startDate" json:"startDate,omitempty"`
	EndDate       string `mapstructure:"endDate" json:"endDate,omitempty"`
	IsCurrentRole bool   `mapstructure:"isCurrentRole" json:"isCurrentRole,omitempty"`
	Description   string `mapstructure:"description" json:"description,omitempty"`
}

// InterviewSession is a summary of a previous interview. InterviewBrief is
// either free text or an object produced by the backend and is kept as decoded.
type InterviewSession struct {
	JobTitle       string `mapstructure:"jobTitle" json:"jobTitle,omitempty"`
	Company        string `mapstructure:"company" json:"company,omitempty"`
	InterviewBrief any    `mapstructure:"interviewBrief" json:"interviewBrief,omitempty"`
	Achievements   any    `mapstructure:"achievements" json:"achievements,omitempty"`
}

// Label renders the session as "<job title> at <company>".
func (s InterviewSession) Label() string {
	return fmt.Sprintf("%s at %s", s.JobTitle, s.Company)
}

// HasBrief reports whether the session carries a usable brief.
func (s InterviewSession) HasBrief() bool {
	return !IsBlank(s.InterviewBrief)
}

// BriefText returns the brief as text. Objects are rendered as JSON.
func (s InterviewSession) BriefText() string {
	switch v := s.InterviewBrief.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

// IsBlank reports whether a loosely typed value carries no information:
// nil, empty or whitespace-only strings, empty collections, false and zero.
func IsBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case bool:
		return !val
	case float64:
		return val == 0
	case int:
		return val == 0
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Decode converts a loosely typed profile payload into a Candidate.
// Scalars are weakly typed, so "5" and 5 are both accepted for numbers and
// text fields alike. A field that cannot be converted decodes as its zero
// value, and list entries that are not objects are dropped, so one bad field
// never costs the rest of the profile.
func Decode(raw map[string]any) (*Candidate, error) {
	var c Candidate

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       LenientHook,
		Result:           &c,
	})
	if err != nil {
		return nil, fmt.Errorf("create profile decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	return &c, nil
}

// DecodeJSON parses a profile object from JSON.
func DecodeJSON(data []byte) (*Candidate, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse profile json: %w", err)
	}
	return Decode(raw)
}

// LenientHook is a mapstructure decode hook that turns values the weak
// decoder would reject into zero values. Strings become booleans by their
// truthiness ("yes" is true), unparsable numbers become 0, objects and lists
// in scalar fields become empty, and struct lists keep only object entries.
func LenientHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if data == nil {
		return data, nil
	}

	switch to.Kind() {
	case reflect.String:
		if isComposite(data) {
			return "", nil
		}
	case reflect.Bool:
		if isComposite(data) {
			return false, nil
		}
		if s, ok := data.(string); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
				return b, nil
			}
			return !IsBlank(s), nil
		}
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		if isComposite(data) {
			return reflect.Zero(to).Interface(), nil
		}
		if s, ok := data.(string); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return reflect.Zero(to).Interface(), nil
			}
			return f, nil
		}
	case reflect.Slice:
		if to.Elem().Kind() == reflect.Struct {
			return objectsOnly(data), nil
		}
	}

	return data, nil
}

func isComposite(data any) bool {
	switch reflect.ValueOf(data).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return true
	}
	return false
}

// objectsOnly keeps the object entries of a list. A lone object is treated
// as a list of one, anything else as an empty list.
func objectsOnly(data any) []any {
	switch v := data.(type) {
	case map[string]any:
		return []any{v}
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	case []map[string]any:
		out := make([]any, 0, len(v))
		for _, m := range v {
			out = append(out, m)
		}
		return out
	}
	return []any{}
}
