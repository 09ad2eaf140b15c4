package handlers

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/wordrush/wordrush-services/internal/gamesvc/models"
	"github.com/wordrush/wordrush-services/internal/gamesvc/service"
)

type createGameRequest struct {
	Room        string   `json:"room"`
	GameType    string   `json:"game_type"`
	TimeLimit   int      `json:"time_limit"`
	PlayerNames []string `json:"player_names"`
}

func (h *Handler) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	caller, err := h.identity(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	var req createGameRequest
	if err := decode(r, &req); err != nil {
		h.errorResponse(w, err)
		return
	}

	game, err := h.games.CreateGame(r.Context(), service.CreateGameRequest{
		Room:        req.Room,
		GameType:    models.GameType(req.GameType),
		TimeLimit:   req.TimeLimit,
		Creator:     caller.Username,
		PlayerNames: req.PlayerNames,
	})
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.okResponse(w, "game created", game)
}

func (h *Handler) JoinGameHandler(w http.ResponseWriter, r *http.Request) {
	caller, err := h.identity(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	room := chi.URLParam(r, "room")

	_, player, err := h.games.Join(r.Context(), room, caller.Username)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	h.broker.PublishRoomEvent("player_joined", room)
	h.okResponse(w, "joined", player)
}

type startGameRequest struct {
	RoundCount int    `json:"round_count"`
	Letter     string `json:"letter"`
}

func (h *Handler) StartGameHandler(w http.ResponseWriter, r *http.Request) {
	caller, err := h.identity(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	room := chi.URLParam(r, "room")

	var req startGameRequest
	if err := decode(r, &req); err != nil {
		h.errorResponse(w, err)
		return
	}

	result, err := h.rounds.StartSession(r.Context(), room, caller.Username, req.RoundCount, req.Letter)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	h.broker.PublishRoomEvent("game_started", room)
	h.okResponse(w, "game started", result)
}

func (h *Handler) GameStateHandler(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")

	state, err := h.games.GetState(r.Context(), room)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.okResponse(w, "game state", state)
}

func (h *Handler) OpenGamesHandler(w http.ResponseWriter, r *http.Request) {
	open, err := h.games.ListOpenGames(r.Context())
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.okResponse(w, "open games", open)
}

type kickRequest struct {
	Username string `json:"username"`
}

func (h *Handler) KickPlayerHandler(w http.ResponseWriter, r *http.Request) {
	caller, err := h.identity(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	room := chi.URLParam(r, "room")

	var req kickRequest
	if err := decode(r, &req); err != nil {
		h.errorResponse(w, err)
		return
	}

	if err := h.games.Kick(r.Context(), room, caller.Username, req.Username); err != nil {
		h.errorResponse(w, err)
		return
	}

	h.broker.PublishRoomEvent("player_kicked", room)
	h.okResponse(w, "player kicked", nil)
}

type submitRequest struct {
	QuestionID int64  `json:"question_id"`
	Word       string `json:"word"`
}

func (h *Handler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	caller, err := h.identity(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	room := chi.URLParam(r, "room")

	var req submitRequest
	if err := decode(r, &req); err != nil {
		h.errorResponse(w, err)
		return
	}

	sub, err := h.subs.Submit(r.Context(), room, caller.Username, req.QuestionID, req.Word)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	h.broker.PublishRoomEvent("answer_submitted", room)
	h.okResponse(w, "answer accepted", sub)
}

type submitAllRequest struct {
	Answers map[int64]string `json:"answers"`
}

func (h *Handler) SubmitAllHandler(w http.ResponseWriter, r *http.Request) {
	caller, err := h.identity(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	room := chi.URLParam(r, "room")

	var req submitAllRequest
	if err := decode(r, &req); err != nil {
		h.errorResponse(w, err)
		return
	}

	results, err := h.subs.SubmitAll(r.Context(), room, caller.Username, req.Answers)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	h.broker.PublishRoomEvent("answer_submitted", room)
	h.okResponse(w, "answers recorded", results)
}
