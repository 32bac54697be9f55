package session

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/hh-twin/internal/profile"
)

// Metadata is delivered by the media framework when a session starts.
// Every field is optional.
type Metadata struct {
	CandidateID    string `mapstructure:"candidate_id" json:"candidate_id,omitempty"`
	RecruiterName  string `mapstructure:"recruiter_name" json:"recruiter_name,omitempty"`
	RecruiterTitle string `mapstructure:"recruiter_title" json:"recruiter_title,omitempty"`
	Company        string `mapstructure:"company" json:"company,omitempty"`
	JobTitle       string `mapstructure:"job_title" json:"job_title,omitempty"`
	JobDescription string `mapstructure:"job_description" json:"job_description,omitempty"`
}

// ParseMetadata decodes the raw job metadata. Empty input yields empty metadata.
func ParseMetadata(raw string) (Metadata, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Metadata{}, nil
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return Metadata{}, fmt.Errorf("parse session metadata: %w", err)
	}

	return DecodeMetadata(data)
}

// DecodeMetadata converts a loosely typed metadata object. Numeric ids are
// accepted and turned into text. Fields that are not text decode as empty so
// a stray value never costs the candidate id.
func DecodeMetadata(data map[string]any) (Metadata, error) {
	var meta Metadata

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       profile.LenientHook,
		Result:           &meta,
	})
	if err != nil {
		return Metadata{}, fmt.Errorf("create metadata decoder: %w", err)
	}

	if err := decoder.Decode(data); err != nil {
		return Metadata{}, fmt.Errorf("decode session metadata: %w", err)
	}

	meta.CandidateID = strings.TrimSpace(meta.CandidateID)
	return meta, nil
}

// WithDefaults fills the recruiter and job context with neutral wording.
func (m Metadata) WithDefaults() Metadata {
	m.RecruiterName = orDefault(m.RecruiterName, "the recruiter")
	m.RecruiterTitle = orDefault(m.RecruiterTitle, "Hiring Manager")
	m.Company = orDefault(m.Company, "the company")
	m.JobTitle = orDefault(m.JobTitle, "this position")
	m.JobDescription = strings.TrimSpace(m.JobDescription)
	return m
}

func orDefault(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
