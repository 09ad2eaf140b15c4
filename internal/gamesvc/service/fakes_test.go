package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wordrush/wordrush-services/internal/gamesvc/apperr"
	"github.com/wordrush/wordrush-services/internal/gamesvc/models"
	"github.com/wordrush/wordrush-services/internal/gamesvc/oracle"
	"github.com/wordrush/wordrush-services/internal/gamesvc/store"
)

// fakeRepo is an in-memory stand-in for the postgres stores. It mirrors their
// observable behavior (nil on not-found, conflicts on duplicates, tally math
// in CastVote) without the locking, so the services can be tested alone.
type fakeRepo struct {
	mu sync.Mutex

	now time.Time

	games       map[int64]*models.Game
	players     map[int64]*models.Player
	assignments map[int64]*models.RoundAssignment
	submissions map[int64]*models.Submission
	votes       map[int64]map[int64]bool // submission -> voter -> value

	sets      []*models.QuestionSet
	questions []*models.Question

	users map[int64]*models.User

	nextID int64

	advanceCalls int
	recalcCalls  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		now:         time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		games:       make(map[int64]*models.Game),
		players:     make(map[int64]*models.Player),
		assignments: make(map[int64]*models.RoundAssignment),
		submissions: make(map[int64]*models.Submission),
		votes:       make(map[int64]map[int64]bool),
		users:       make(map[int64]*models.User),
	}
}

func (f *fakeRepo) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeRepo) advanceClock(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// --- GameStore ---

func (f *fakeRepo) GetByRoom(_ context.Context, room string) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.games {
		if g.Room == room {
			cp := *g
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetByID(_ context.Context, gameID int64) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.games[gameID]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) ListOpen(_ context.Context) ([]*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var open []*models.Game
	for _, g := range f.games {
		if !g.Started {
			cp := *g
			open = append(open, &cp)
		}
	}
	return open, nil
}

func (f *fakeRepo) CreateWithPlayers(_ context.Context, game *models.Game, usernames []string) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.games {
		if g.Room == game.Room {
			return nil, apperr.Conflict("game room %q already exists", game.Room)
		}
	}
	g := *game
	g.ID = f.id()
	g.CreatedAt = f.now
	f.games[g.ID] = &g
	for i, name := range usernames {
		p := &models.Player{ID: f.id(), GameID: g.ID, Username: name, IsCreator: i == 0, JoinedAt: f.now}
		f.players[p.ID] = p
	}
	cp := g
	return &cp, nil
}

func (f *fakeRepo) StartWithAssignments(_ context.Context, gameID int64, letter string, questionIDs []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[gameID]
	if !ok {
		return apperr.NotFound("game not found")
	}
	if g.Started {
		return apperr.Conflict("game already started")
	}
	for id, a := range f.assignments {
		if a.GameID == gameID {
			delete(f.assignments, id)
		}
	}
	for _, qid := range questionIDs {
		prompt := ""
		for _, q := range f.questions {
			if q.ID == qid {
				prompt = q.Prompt
			}
		}
		a := &models.RoundAssignment{ID: f.id(), GameID: gameID, QuestionID: qid, Letter: letter, Prompt: prompt}
		f.assignments[a.ID] = a
	}
	g.Started = true
	g.StartTime.Valid = true
	g.StartTime.Time = f.now
	g.CurrentTurn = 0
	return nil
}

func (f *fakeRepo) AdvanceTurn(_ context.Context, gameID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[gameID]
	if !ok {
		return apperr.NotFound("game not found")
	}
	count := 0
	for _, p := range f.players {
		if p.GameID == gameID {
			count++
		}
	}
	if count == 0 {
		count = 1
	}
	g.CurrentTurn = (g.CurrentTurn + 1) % count
	g.StartTime.Time = f.now
	g.StartTime.Valid = true
	f.advanceCalls++
	return nil
}

// --- PlayerStore ---

func (f *fakeRepo) playersOf(gameID int64) []*models.Player {
	var out []*models.Player
	for _, p := range f.players {
		if p.GameID == gameID {
			out = append(out, p)
		}
	}
	// join order: ids are monotonic in the fake
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeRepo) ListByGame(_ context.Context, gameID int64) ([]*models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Player
	for _, p := range f.playersOf(gameID) {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeRepo) GetByGameAndName(_ context.Context, gameID int64, username string) (*models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.players {
		if p.GameID == gameID && p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetPlayerByID(_ context.Context, playerID int64) (*models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.players[playerID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) GetCreator(_ context.Context, gameID int64) (*models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.players {
		if p.GameID == gameID && p.IsCreator {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) Add(_ context.Context, gameID int64, username string, isCreator bool) (*models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.players {
		if p.GameID == gameID && p.Username == username {
			return nil, apperr.Conflict("%s has already joined this game", username)
		}
	}
	p := &models.Player{ID: f.id(), GameID: gameID, Username: username, IsCreator: isCreator, JoinedAt: f.now}
	f.players[p.ID] = p
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) Remove(_ context.Context, gameID int64, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, p := range f.players {
		if p.GameID == gameID && p.Username == username {
			delete(f.players, id)
			return nil
		}
	}
	return apperr.NotFound("player %s not found in this game", username)
}

// --- AssignmentStore ---

func (f *fakeRepo) ListAssignments(_ context.Context, gameID int64) ([]*models.RoundAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.RoundAssignment
	for _, a := range f.assignments {
		if a.GameID == gameID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) GetAssignment(_ context.Context, gameID, questionID int64) (*models.RoundAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.assignments {
		if a.GameID == gameID && a.QuestionID == questionID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

// --- SubmissionStore ---

func (f *fakeRepo) GetSubmission(_ context.Context, submissionID int64) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.submissions[submissionID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) InsertAccepted(_ context.Context, gameID, questionID, playerID int64, word string) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	found := false
	for _, a := range f.assignments {
		if a.GameID == gameID && a.QuestionID == questionID {
			found = true
		}
	}
	if !found {
		return nil, apperr.NotFound("question is no longer part of this game")
	}
	s := &models.Submission{
		ID:         f.id(),
		GameID:     gameID,
		QuestionID: questionID,
		PlayerID:   playerID,
		Word:       word,
		Accepted:   true,
		Verdict:    models.VerdictUnknown,
		CreatedAt:  f.now,
	}
	f.submissions[s.ID] = s
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) ExistsWord(_ context.Context, gameID int64, word string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.submissions {
		if s.GameID == gameID && strings.EqualFold(s.Word, word) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) HistoryByGame(_ context.Context, gameID int64) ([]*models.AnswerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.AnswerRecord
	for _, s := range f.submissions {
		if s.GameID != gameID {
			continue
		}
		rec := &models.AnswerRecord{Submission: *s}
		if p, ok := f.players[s.PlayerID]; ok {
			rec.Username = p.Username
		}
		for _, a := range f.assignments {
			if a.GameID == gameID && a.QuestionID == s.QuestionID {
				rec.Prompt = a.Prompt
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeRepo) SetVoteRequested(_ context.Context, submissionID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.submissions[submissionID]
	if !ok {
		return apperr.NotFound("submission %d not found", submissionID)
	}
	s.VoteRequested = true
	return nil
}

func (f *fakeRepo) CastVote(_ context.Context, submissionID, voterUserID int64, value bool) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.submissions[submissionID]
	if !ok {
		return nil, apperr.NotFound("submission %d not found", submissionID)
	}
	if !s.VoteRequested {
		return nil, apperr.Validation("voting has not been requested for this submission")
	}
	if f.votes[submissionID] == nil {
		f.votes[submissionID] = make(map[int64]bool)
	}
	f.votes[submissionID][voterUserID] = value
	yes, no := 0, 0
	for _, v := range f.votes[submissionID] {
		if v {
			yes++
		} else {
			no++
		}
	}
	s.ApplyVoteTally(yes, no)
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) UpdateAutomated(_ context.Context, submissionID int64, correct bool, explanation string) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.submissions[submissionID]
	if !ok {
		return nil, apperr.NotFound("submission %d not found", submissionID)
	}
	s.ApplyAutomated(correct, explanation)
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) ApplyOverride(_ context.Context, submissionID int64, value bool) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.submissions[submissionID]
	if !ok {
		return nil, apperr.NotFound("submission %d not found", submissionID)
	}
	s.ApplyOverride(value)
	cp := *s
	return &cp, nil
}

// --- ScoreStore ---

func (f *fakeRepo) Recalculate(_ context.Context, gameID int64, compute store.ComputeFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[gameID]
	if !ok {
		return apperr.NotFound("game not found")
	}
	players := f.playersOf(gameID)
	var subs []*models.Submission
	for _, s := range f.submissions {
		if s.GameID == gameID {
			subs = append(subs, s)
		}
	}
	scores := compute(g, players, subs)
	for _, p := range players {
		p.Score = scores[p.ID]
	}
	f.recalcCalls++
	return nil
}

// --- QuestionBank ---

func (f *fakeRepo) ListSets(_ context.Context) ([]*models.QuestionSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.QuestionSet(nil), f.sets...), nil
}

func (f *fakeRepo) ListBySet(_ context.Context, setID int64) ([]*models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Question
	for _, q := range f.questions {
		if q.QuestionSetID == setID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListAll(_ context.Context) ([]*models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.Question(nil), f.questions...), nil
}

func (f *fakeRepo) seedQuestions(setName string, prompts ...string) *models.QuestionSet {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := &models.QuestionSet{ID: f.id(), Name: setName}
	f.sets = append(f.sets, set)
	for _, p := range prompts {
		f.questions = append(f.questions, &models.Question{ID: f.id(), QuestionSetID: set.ID, Prompt: p})
	}
	return set
}

// --- UserStore ---

func (f *fakeRepo) Create(_ context.Context, username, email, passwordHash string, role int) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return nil, apperr.Conflict("username already exists")
		}
		if u.Email == email {
			return nil, apperr.Conflict("email already exists")
		}
	}
	u := &models.User{UserID: f.id(), Username: username, Email: email, PasswordHash: passwordHash, Role: role, CreatedAt: f.now}
	f.users[u.UserID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetUserByID(_ context.Context, userID int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

// The store interfaces reuse names like GetByID for different entities, so
// thin adapters disambiguate where embedding alone would collide. fakeRepo
// itself already satisfies GameStore, ScoreStore and QuestionBank.

type fakePlayers struct{ *fakeRepo }

func (f fakePlayers) GetByID(ctx context.Context, playerID int64) (*models.Player, error) {
	return f.fakeRepo.GetPlayerByID(ctx, playerID)
}

type fakeAssignments struct{ *fakeRepo }

func (f fakeAssignments) ListByGame(ctx context.Context, gameID int64) ([]*models.RoundAssignment, error) {
	return f.fakeRepo.ListAssignments(ctx, gameID)
}

func (f fakeAssignments) Get(ctx context.Context, gameID, questionID int64) (*models.RoundAssignment, error) {
	return f.fakeRepo.GetAssignment(ctx, gameID, questionID)
}

type fakeSubmissions struct{ *fakeRepo }

func (f fakeSubmissions) GetByID(ctx context.Context, submissionID int64) (*models.Submission, error) {
	return f.fakeRepo.GetSubmission(ctx, submissionID)
}

type fakeUsers struct{ *fakeRepo }

func (f fakeUsers) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	return f.fakeRepo.GetUserByID(ctx, userID)
}

// fakeJudge scripts the oracle per answer word.
type fakeJudge struct {
	verdicts map[string]bool
	err      error
	calls    int
}

func (j *fakeJudge) Judge(_ context.Context, _, answer string) (*oracle.Verdict, error) {
	j.calls++
	if j.err != nil {
		return nil, j.err
	}
	correct := j.verdicts[strings.ToLower(answer)]
	return &oracle.Verdict{Correct: correct, Explanation: "scripted"}, nil
}

// env wires every service over one shared fakeRepo with a frozen clock.
type env struct {
	repo     *fakeRepo
	judge    *fakeJudge
	games    *GameService
	rounds   *RoundService
	subs     *SubmissionService
	verdicts *VerdictService
	scores   *ScoreService
}

func newEnv() *env {
	repo := newFakeRepo()
	players := fakePlayers{repo}
	assignments := fakeAssignments{repo}
	submissions := fakeSubmissions{repo}
	judge := &fakeJudge{verdicts: make(map[string]bool)}
	scores := NewScoreService(repo)

	e := &env{
		repo:     repo,
		judge:    judge,
		scores:   scores,
		games:    NewGameService(repo, players, assignments, submissions),
		rounds:   NewRoundService(repo, players, assignments, repo),
		subs:     NewSubmissionService(repo, players, assignments, submissions),
		verdicts: NewVerdictService(submissions, players, assignments, judge, scores),
	}
	e.games.now = repo.clock
	e.subs.now = repo.clock
	return e
}

// startedGame seeds a room with questions and a running session, returning
// the game and its assignments for direct use in tests.
func (e *env) startedGame(t interface{ Fatalf(string, ...interface{}) }, gameType models.GameType, letter string, usernames ...string) (*models.Game, []*models.RoundAssignment) {
	ctx := context.Background()
	e.repo.seedQuestions("Animals", "Name an animal", "Name a bird", "Name a fish")

	game, err := e.games.CreateGame(ctx, CreateGameRequest{
		Room:      "room-1",
		GameType:  gameType,
		TimeLimit: 60,
		Creator:   usernames[0],
	})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	for _, name := range usernames[1:] {
		if _, _, err := e.games.Join(ctx, game.Room, name); err != nil {
			t.Fatalf("Join %s: %v", name, err)
		}
	}
	if _, err := e.rounds.StartSession(ctx, game.Room, usernames[0], 0, letter); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	started, err := e.repo.GetByRoom(ctx, game.Room)
	if err != nil || started == nil {
		t.Fatalf("reload game: %v", err)
	}
	assignments, err := e.repo.ListAssignments(ctx, started.ID)
	if err != nil {
		t.Fatalf("list assignments: %v", err)
	}
	return started, assignments
}
