package models

// QuestionSet groups prompts the round engine can draw from.
type QuestionSet struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Question struct {
	ID            int64  `json:"id"`
	QuestionSetID int64  `json:"question_set_id"`
	Prompt        string `json:"prompt"`
}

// RoundAssignment binds one question to one game for the current round,
// together with the required first letter. Unique per (game, question);
// bulk-replaced when the session (re)starts.
type RoundAssignment struct {
	ID         int64  `json:"id"`
	GameID     int64  `json:"game_id"`
	QuestionID int64  `json:"question_id"`
	Letter     string `json:"letter"`
	Prompt     string `json:"prompt"` // joined from questions for display
}
