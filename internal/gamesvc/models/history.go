package models

// AnswerRecord is the history view of a submission: the stored row joined
// with the player's name and the question prompt for client display.
type AnswerRecord struct {
	Submission
	Username string `json:"username"`
	Prompt   string `json:"prompt"`
}
