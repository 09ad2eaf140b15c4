package models

import "time"

type Verdict string

const (
	VerdictUnknown   Verdict = "unknown"
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
)

// VerdictSource records which resolution path produced the stored verdict.
// Precedence on conflict is override > vote > automated.
type VerdictSource string

const (
	SourceNone      VerdictSource = ""
	SourceAutomated VerdictSource = "automated"
	SourceVote      VerdictSource = "vote"
	SourceOverride  VerdictSource = "override"
)

// Submission is one player's answer to one round assignment. Rows are never
// deleted; verdict changes overwrite the resolution fields and the full
// who-changed-what trail stays readable from them.
type Submission struct {
	ID            int64         `json:"id"`
	GameID        int64         `json:"game_id"`
	QuestionID    int64         `json:"question_id"`
	PlayerID      int64         `json:"player_id"`
	Word          string        `json:"word"`
	Accepted      bool          `json:"accepted"`
	Verdict       Verdict       `json:"verdict"`
	VerdictSource VerdictSource `json:"verdict_source"`
	Explanation   string        `json:"explanation"`
	VoteRequested bool          `json:"vote_requested"`
	VoteYes       int           `json:"vote_yes"`
	VoteNo        int           `json:"vote_no"`
	AdminOverride bool          `json:"admin_override"`
	OverrideValue bool          `json:"override_value"`
	CreatedAt     time.Time     `json:"created_at"`
}

func boolVerdict(correct bool) Verdict {
	if correct {
		return VerdictCorrect
	}
	return VerdictIncorrect
}

// FinalVerdict merges the three resolution paths with explicit precedence:
// an admin override wins over everything, a requested-and-cast vote wins over
// the automated check, and a submission no path has touched stays unknown.
// Vote verdicts need a strict majority of yes votes; ties are incorrect.
func (s *Submission) FinalVerdict() (Verdict, VerdictSource) {
	if s.AdminOverride {
		return boolVerdict(s.OverrideValue), SourceOverride
	}
	if s.VoteRequested && s.VoteYes+s.VoteNo > 0 {
		return boolVerdict(s.VoteYes > s.VoteNo), SourceVote
	}
	if s.VerdictSource == SourceAutomated {
		return s.Verdict, SourceAutomated
	}
	return VerdictUnknown, SourceNone
}

// Correct reports whether the submission's final verdict is correct.
func (s *Submission) Correct() bool {
	v, _ := s.FinalVerdict()
	return v == VerdictCorrect
}

// ApplyAutomated records the automated checker's result. It refuses to
// disturb an admin override; the explanation is still kept for history.
func (s *Submission) ApplyAutomated(correct bool, explanation string) {
	s.Explanation = explanation
	if s.AdminOverride {
		return
	}
	if s.VerdictSource == SourceNone || s.VerdictSource == SourceAutomated {
		s.Verdict = boolVerdict(correct)
		s.VerdictSource = SourceAutomated
	}
}

// ApplyVoteTally records fresh tallies and recomputes the verdict unless an
// admin override is in place.
func (s *Submission) ApplyVoteTally(yes, no int) {
	s.VoteYes = yes
	s.VoteNo = no
	if s.AdminOverride {
		return
	}
	s.Verdict = boolVerdict(yes > no)
	s.VerdictSource = SourceVote
}

// ApplyOverride unconditionally pins the verdict to the admin's value.
func (s *Submission) ApplyOverride(value bool) {
	s.AdminOverride = true
	s.OverrideValue = value
	s.Verdict = boolVerdict(value)
	s.VerdictSource = SourceOverride
}
