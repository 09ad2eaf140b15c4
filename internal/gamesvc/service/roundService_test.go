package service

import (
	"context"
	"sync"
	"testing"

	"github.com/wordrush/wordrush-services/internal/gamesvc/apperr"
	"github.com/wordrush/wordrush-services/internal/gamesvc/models"
)

func createLobby(t *testing.T, e *env, gameType models.GameType, creator string) *models.Game {
	t.Helper()
	game, err := e.games.CreateGame(context.Background(), CreateGameRequest{
		Room: "room-1", GameType: gameType, TimeLimit: 60, Creator: creator,
	})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	return game
}

func TestStartSessionAssignsQuestions(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.repo.seedQuestions("Animals", "Name an animal", "Name a bird", "Name a fish")
	game := createLobby(t, e, models.GameTypeLetterMatch, "ana")

	result, err := e.rounds.StartSession(ctx, game.Room, "ana", 2, "Q")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	if result.Letter != "Q" {
		t.Errorf("letter = %q, want Q", result.Letter)
	}
	if len(result.Questions) != 2 {
		t.Fatalf("assigned %d questions, want 2", len(result.Questions))
	}
	seen := make(map[int64]bool)
	for _, a := range result.Questions {
		if a.Letter != "Q" {
			t.Errorf("assignment letter = %q, want Q", a.Letter)
		}
		if a.Prompt == "" {
			t.Error("assignment prompt not joined")
		}
		if seen[a.QuestionID] {
			t.Errorf("question %d assigned twice", a.QuestionID)
		}
		seen[a.QuestionID] = true
	}
}

func TestStartSessionRandomLetterInRange(t *testing.T) {
	e := newEnv()
	e.repo.seedQuestions("Animals", "Name an animal")
	game := createLobby(t, e, models.GameTypeLetterMatch, "ana")

	result, err := e.rounds.StartSession(context.Background(), game.Room, "ana", 1, "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if len(result.Letter) != 1 || result.Letter[0] < 'A' || result.Letter[0] > 'Z' {
		t.Errorf("random letter = %q, want single A-Z", result.Letter)
	}
}

func TestStartSessionRandomKeyword(t *testing.T) {
	for _, letter := range []string{"random", "RANDOM", " Random "} {
		e := newEnv()
		e.repo.seedQuestions("Animals", "Name an animal")
		game := createLobby(t, e, models.GameTypeLetterMatch, "ana")

		result, err := e.rounds.StartSession(context.Background(), game.Room, "ana", 1, letter)
		if err != nil {
			t.Fatalf("StartSession with letter %q: %v", letter, err)
		}
		if len(result.Letter) != 1 || result.Letter[0] < 'A' || result.Letter[0] > 'Z' {
			t.Errorf("letter %q resolved to %q, want single A-Z", letter, result.Letter)
		}
	}
}

func TestStartSessionNormalizesLetter(t *testing.T) {
	e := newEnv()
	e.repo.seedQuestions("Animals", "Name an animal")
	game := createLobby(t, e, models.GameTypeLetterMatch, "ana")

	result, err := e.rounds.StartSession(context.Background(), game.Room, "ana", 1, " q ")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if result.Letter != "Q" {
		t.Errorf("letter = %q, want Q", result.Letter)
	}
}

func TestStartSessionRejectsBadLetter(t *testing.T) {
	e := newEnv()
	e.repo.seedQuestions("Animals", "Name an animal")
	game := createLobby(t, e, models.GameTypeLetterMatch, "ana")

	for _, letter := range []string{"qq", "7", "!"} {
		_, err := e.rounds.StartSession(context.Background(), game.Room, "ana", 1, letter)
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("letter %q: err = %v, want validation", letter, err)
		}
	}
}

func TestStartSessionCreatorOnly(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.repo.seedQuestions("Animals", "Name an animal")
	game := createLobby(t, e, models.GameTypeLetterMatch, "ana")
	if _, _, err := e.games.Join(ctx, game.Room, "ben"); err != nil {
		t.Fatalf("Join: %v", err)
	}

	_, err := e.rounds.StartSession(ctx, game.Room, "ben", 1, "B")
	if apperr.KindOf(err) != apperr.KindNotAuthorized {
		t.Errorf("err = %v, want not-authorized for non-creator", err)
	}
}

func TestStartSessionTwiceConflicts(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.repo.seedQuestions("Animals", "Name an animal")
	game := createLobby(t, e, models.GameTypeLetterMatch, "ana")

	if _, err := e.rounds.StartSession(ctx, game.Room, "ana", 1, "B"); err != nil {
		t.Fatalf("first start: %v", err)
	}
	_, err := e.rounds.StartSession(ctx, game.Room, "ana", 1, "C")
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("err = %v, want conflict on second start", err)
	}
}

func TestStartSessionNoQuestions(t *testing.T) {
	e := newEnv()
	game := createLobby(t, e, models.GameTypeLetterMatch, "ana")

	_, err := e.rounds.StartSession(context.Background(), game.Room, "ana", 1, "B")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("err = %v, want not-found with empty bank", err)
	}
}

func TestStartSessionBlitzDrawsFromOneSet(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	animals := e.repo.seedQuestions("Animals", "Name an animal", "Name a bird")
	fruits := e.repo.seedQuestions("Fruits", "Name a fruit", "Name a berry")
	game := createLobby(t, e, models.GameTypeWordBlitz, "ana")

	result, err := e.rounds.StartSession(ctx, game.Room, "ana", 0, "B")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if len(result.Questions) != 2 {
		t.Fatalf("assigned %d questions, want the whole set of 2", len(result.Questions))
	}

	setOf := make(map[int64]int64)
	for _, q := range append(questionsOfSet(e, animals.ID), questionsOfSet(e, fruits.ID)...) {
		setOf[q.ID] = q.QuestionSetID
	}
	first := setOf[result.Questions[0].QuestionID]
	for _, a := range result.Questions {
		if setOf[a.QuestionID] != first {
			t.Error("blitz round mixes questions from different sets")
		}
	}
}

func questionsOfSet(e *env, setID int64) []*models.Question {
	qs, _ := e.repo.ListBySet(context.Background(), setID)
	return qs
}

func TestStartSessionConcurrentStarts(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		e := newEnv()
		e.repo.seedQuestions("Animals", "Name an animal", "Name a bird")
		game := createLobby(t, e, models.GameTypeWordBlitz, "ana")

		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.rounds.StartSession(context.Background(), game.Room, "ana", 0, ""); err != nil {
				t.Errorf("StartSession: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestStartSessionRoundCountCapped(t *testing.T) {
	e := newEnv()
	e.repo.seedQuestions("Animals", "Name an animal", "Name a bird")
	game := createLobby(t, e, models.GameTypeLetterMatch, "ana")

	result, err := e.rounds.StartSession(context.Background(), game.Room, "ana", 50, "B")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if len(result.Questions) != 2 {
		t.Errorf("assigned %d questions, want all 2 when count exceeds pool", len(result.Questions))
	}
}
