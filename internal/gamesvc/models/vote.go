package models

import "time"

// SubmissionVote is one voter's yes/no on a submission. A later vote by the
// same voter replaces the earlier one; rows are never deleted.
type SubmissionVote struct {
	ID           int64     `json:"id"`
	SubmissionID int64     `json:"submission_id"`
	VoterUserID  int64     `json:"voter_user_id"`
	Value        bool      `json:"value"` // true = yes
	CreatedAt    time.Time `json:"created_at"`
}
