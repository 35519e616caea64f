package interview

import (
	"fmt"
	"time"
)

// SystemPrompt is the interviewer persona handed to the conversational
// engine at session setup.
const SystemPrompt = `You are a professional technical interviewer conducting a live voice interview.

Guidelines:
- Ask one question at a time and wait for the candidate's full answer.
- Keep your questions short and spoken-language friendly; this is a voice call.
- After each answer, record it with the record_response tool before moving on,
  noting the exact question, the candidate's response, and the skill assessed.
- Stay neutral and encouraging; never grade or correct the candidate out loud.
- Do not discuss topics outside the interview.
- When all questions are done or the candidate asks to stop, thank them,
  give a short closing remark, and invoke the end_interview tool.`

// timestampLayout matches the wall-clock format embedded in the greeting
// instruction so the model can reason about the time window.
const timestampLayout = "2006-01-02 15:04:05"

// greetingInstructions builds the single generation instruction issued when
// the session becomes active. Question pacing within the time window is
// entirely the engine's responsibility.
func greetingInstructions(s *Session, now time.Time) string {
	start := now.Format(timestampLayout)
	end := now.Add(time.Duration(s.TimeLimitMinutes) * time.Minute).Format(timestampLayout)

	return fmt.Sprintf(`Generate %d questions for each of the following skills: %s.
The interview time limit is %d minutes.
Make sure all questions can be answered within a total of %d minutes.
The interview starts at %s and ends at %s.

Greet the candidate %s and explain what this interview covers, including the skills you will assess.`,
		s.QuestionsPerSkill, s.Skills,
		s.TimeLimitMinutes, s.TimeLimitMinutes,
		start, end,
		s.ApplicantName)
}
