package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/wordrush/wordrush-services/internal/gamesvc/apperr"
	"github.com/wordrush/wordrush-services/internal/gamesvc/models"
)

// VerdictService resolves accepted submissions through the three paths:
// the automated judge, a peer vote, or an admin override. Every resolution
// ends with a full score recomputation so standings never lag the verdicts.
type VerdictService struct {
	submissions SubmissionStore
	players     PlayerStore
	assignments AssignmentStore
	judge       Judge
	scores      *ScoreService
}

func NewVerdictService(submissions SubmissionStore, players PlayerStore, assignments AssignmentStore, judge Judge, scores *ScoreService) *VerdictService {
	return &VerdictService{
		submissions: submissions,
		players:     players,
		assignments: assignments,
		judge:       judge,
		scores:      scores,
	}
}

// CheckSubmission runs the automated judge against a submission. A judge
// failure is recorded as an incorrect verdict with the failure reason as the
// explanation rather than surfacing an error; players then have the vote and
// override paths to fix a submission the oracle could not score.
func (s *VerdictService) CheckSubmission(ctx context.Context, submissionID int64) (*models.Submission, error) {
	sub, err := s.mustGet(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	assignment, err := s.assignments.Get(ctx, sub.GameID, sub.QuestionID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, apperr.NotFound("question %d is no longer part of this game", sub.QuestionID)
	}

	correct := false
	explanation := ""
	verdict, err := s.judge.Judge(ctx, assignment.Prompt, sub.Word)
	if err != nil {
		log.WithError(err).WithField("submission_id", submissionID).Warn("automated check failed")
		explanation = "automated verification failed: " + err.Error()
	} else {
		correct = verdict.Correct
		explanation = verdict.Explanation
	}

	updated, err := s.submissions.UpdateAutomated(ctx, submissionID, correct, explanation)
	if err != nil {
		return nil, err
	}
	return updated, s.scores.Recalculate(ctx, sub.GameID)
}

// RequestVote opens a submission for peer voting. Only the submitting player
// or an admin may open it; any signed-in user may then cast.
func (s *VerdictService) RequestVote(ctx context.Context, submissionID int64, caller Identity) error {
	sub, err := s.mustGet(ctx, submissionID)
	if err != nil {
		return err
	}

	if !caller.IsAdmin() {
		owner, err := s.players.GetByID(ctx, sub.PlayerID)
		if err != nil {
			return err
		}
		if owner == nil || owner.Username != caller.Username {
			return apperr.NotAuthorized("only the submitting player can request a vote")
		}
	}

	return s.submissions.SetVoteRequested(ctx, submissionID)
}

// CastVote records or replaces the caller's vote and folds the fresh tally
// into the submission's verdict.
func (s *VerdictService) CastVote(ctx context.Context, submissionID int64, caller Identity, value bool) (*models.Submission, error) {
	sub, err := s.submissions.CastVote(ctx, submissionID, caller.UserID, value)
	if err != nil {
		return nil, err
	}
	return sub, s.scores.Recalculate(ctx, sub.GameID)
}

// Override pins a submission's verdict to the admin's value. It beats both
// the automated result and any vote tally, past or future.
func (s *VerdictService) Override(ctx context.Context, submissionID int64, caller Identity, value bool) (*models.Submission, error) {
	if !caller.IsAdmin() {
		return nil, apperr.NotAuthorized("only an admin can override a verdict")
	}

	sub, err := s.submissions.ApplyOverride(ctx, submissionID, value)
	if err != nil {
		return nil, err
	}
	return sub, s.scores.Recalculate(ctx, sub.GameID)
}

func (s *VerdictService) mustGet(ctx context.Context, submissionID int64) (*models.Submission, error) {
	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperr.NotFound("submission %d not found", submissionID)
	}
	return sub, nil
}
