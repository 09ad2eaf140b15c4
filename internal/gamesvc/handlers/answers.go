package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/wordrush/wordrush-services/internal/gamesvc/apperr"
)

func (h *Handler) AnswerHistoryHandler(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")

	history, err := h.games.AnswerHistory(r.Context(), room)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.okResponse(w, "answers", history)
}

func submissionID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "submissionID"), 10, 64)
	if err != nil {
		return 0, apperr.Validation("invalid submission id")
	}
	return id, nil
}

func (h *Handler) CheckAnswerHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := h.identity(r); err != nil {
		h.errorResponse(w, err)
		return
	}
	id, err := submissionID(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	sub, err := h.verdicts.CheckSubmission(r.Context(), id)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	h.broker.PublishRoomEvent("verdict_changed", chi.URLParam(r, "room"))
	h.okResponse(w, "answer checked", sub)
}

func (h *Handler) RequestVoteHandler(w http.ResponseWriter, r *http.Request) {
	caller, err := h.identity(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	id, err := submissionID(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	if err := h.verdicts.RequestVote(r.Context(), id, caller); err != nil {
		h.errorResponse(w, err)
		return
	}

	h.broker.PublishRoomEvent("vote_requested", chi.URLParam(r, "room"))
	h.okResponse(w, "vote requested", nil)
}

type castVoteRequest struct {
	Correct bool `json:"correct"`
}

func (h *Handler) CastVoteHandler(w http.ResponseWriter, r *http.Request) {
	caller, err := h.identity(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	id, err := submissionID(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	var req castVoteRequest
	if err := decode(r, &req); err != nil {
		h.errorResponse(w, err)
		return
	}

	sub, err := h.verdicts.CastVote(r.Context(), id, caller, req.Correct)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	h.broker.PublishRoomEvent("verdict_changed", chi.URLParam(r, "room"))
	h.okResponse(w, "vote recorded", sub)
}

type overrideRequest struct {
	Correct bool `json:"correct"`
}

func (h *Handler) OverrideVerdictHandler(w http.ResponseWriter, r *http.Request) {
	caller, err := h.identity(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	id, err := submissionID(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	var req overrideRequest
	if err := decode(r, &req); err != nil {
		h.errorResponse(w, err)
		return
	}

	sub, err := h.verdicts.Override(r.Context(), id, caller, req.Correct)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	h.broker.PublishRoomEvent("verdict_changed", chi.URLParam(r, "room"))
	h.okResponse(w, "verdict overridden", sub)
}
