package interview

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Defaults applied when the connecting participant omits optional fields.
const (
	DefaultQuestionsPerSkill = 1
	DefaultTimeLimitMinutes  = 5
)

var validate = validator.New()

// Metadata carries the interview parameters supplied by the connecting
// participant. It is parsed once at session creation and never trusted
// beyond that point.
type Metadata struct {
	ApplicantName     string
	Skills            string
	ApplicantID       int
	InvitationID      int
	QuestionsPerSkill int
	TimeLimitMinutes  int
}

// wireMetadata mirrors the JSON the participant attaches at connect time.
// Optional fields stay raw so a malformed value can fall back to its default
// instead of failing the whole decode.
type wireMetadata struct {
	ApplicantName     string          `json:"applicant_name" validate:"required"`
	Skills            string          `json:"skills" validate:"required"`
	ApplicantID       int             `json:"applicant_id" validate:"required,gt=0"`
	InvitationID      int             `json:"interview_invitation_id" validate:"required,gt=0"`
	QuestionsPerSkill json.RawMessage `json:"questions_per_skill"`
	TimeLimit         json.RawMessage `json:"interview_time_limit"`
}

// ParseMetadata decodes and validates participant metadata. Missing or
// malformed required fields are a configuration error and abort session
// setup. Malformed optional fields fall back to their documented defaults.
func ParseMetadata(raw string) (Metadata, error) {
	var wire wireMetadata
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse participant metadata: %w", err)
	}

	if err := validate.Struct(wire); err != nil {
		return Metadata{}, fmt.Errorf("invalid participant metadata: %w", err)
	}

	return Metadata{
		ApplicantName:     wire.ApplicantName,
		Skills:            wire.Skills,
		ApplicantID:       wire.ApplicantID,
		InvitationID:      wire.InvitationID,
		QuestionsPerSkill: intOrDefault(wire.QuestionsPerSkill, DefaultQuestionsPerSkill),
		TimeLimitMinutes:  intOrDefault(wire.TimeLimit, DefaultTimeLimitMinutes),
	}, nil
}

// intOrDefault decodes a raw optional field, falling back to def when the
// field is absent, not an integer, or not positive.
func intOrDefault(raw json.RawMessage, def int) int {
	if len(raw) == 0 {
		return def
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil || n <= 0 {
		return def
	}
	return n
}
