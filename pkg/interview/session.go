// Package interview implements the interview session: its state, its
// transcript, and the agent that conducts it over a conversational engine.
package interview

import (
	"fmt"
	"sync"

	"github.com/hireline/interview-agent/pkg/webhook"
)

// State tracks where a session is in its lifecycle.
type State int32

const (
	StateCreated State = iota
	StateActive
	StateEnding
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateActive:
		return "Active"
	case StateEnding:
		return "Ending"
	case StateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Entry is one recorded question/response pair.
type Entry struct {
	Question string `json:"question"`
	Response string `json:"response"`
	Skill    string `json:"skill"`
}

// Session holds the state of one interview. Identity fields are set once at
// creation from participant metadata and never mutated; the transcript is
// append-only and read exactly once at finalization.
type Session struct {
	ApplicantName     string
	ApplicantID       int
	InvitationID      int
	Skills            string
	QuestionsPerSkill int
	TimeLimitMinutes  int

	// RoomName is the handle to the underlying room, used only to tear it
	// down when the interview ends.
	RoomName string

	mu         sync.Mutex
	state      State
	transcript []Entry
}

// NewSession creates a session in the Created state from validated metadata.
func NewSession(md Metadata, roomName string) *Session {
	return &Session{
		ApplicantName:     md.ApplicantName,
		ApplicantID:       md.ApplicantID,
		InvitationID:      md.InvitationID,
		Skills:            md.Skills,
		QuestionsPerSkill: md.QuestionsPerSkill,
		TimeLimitMinutes:  md.TimeLimitMinutes,
		RoomName:          roomName,
		state:             StateCreated,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Activate moves the session from Created to Active.
func (s *Session) Activate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCreated {
		return fmt.Errorf("cannot activate session in state %s", s.state)
	}
	s.state = StateActive
	return nil
}

// BeginEnding moves the session into Ending. It is idempotent so the
// explicit end_interview path and an external disconnect can race safely.
func (s *Session) BeginEnding() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateActive || s.state == StateCreated {
		s.state = StateEnding
	}
}

// Close moves the session to Closed after the finalization attempt. There is
// no transition out of Closed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateClosed
}

// Record appends one transcript entry. It succeeds for any string inputs
// while the session is live; once finalization has begun further records are
// dropped so the submitted transcript matches what was accumulated.
func (s *Session) Record(question, response, skill string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateEnding || s.state == StateClosed {
		return
	}
	s.transcript = append(s.transcript, Entry{
		Question: question,
		Response: response,
		Skill:    skill,
	})
}

// Transcript returns a copy of the accumulated entries in record order.
func (s *Session) Transcript() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Result builds the completion payload submitted to the results webhook.
func (s *Session) Result() webhook.Result {
	entries := s.Transcript()
	transcript := make([]webhook.TranscriptEntry, len(entries))
	for i, e := range entries {
		transcript[i] = webhook.TranscriptEntry{
			Question: e.Question,
			Response: e.Response,
			Skill:    e.Skill,
		}
	}

	return webhook.Result{
		ApplicantID:  s.ApplicantID,
		InvitationID: s.InvitationID,
		Status:       "COMPLETED",
		Transcript:   transcript,
	}
}
