package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"

	"github.com/wordrush/wordrush-services/internal/gamesvc/apperr"
	"github.com/wordrush/wordrush-services/internal/gamesvc/models"
)

// QuestionAdder writes custom sets straight through to postgres; reads go
// through the cached bank instead.
type QuestionAdder interface {
	AddSet(ctx context.Context, name string, prompts []string) (*models.QuestionSet, error)
}

func (h *Handler) QuestionSetsHandler(w http.ResponseWriter, r *http.Request) {
	sets, err := h.bank.ListSets(r.Context())
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.okResponse(w, "question sets", sets)
}

func (h *Handler) QuestionsBySetHandler(w http.ResponseWriter, r *http.Request) {
	setID, err := strconv.ParseInt(chi.URLParam(r, "setID"), 10, 64)
	if err != nil {
		h.errorResponse(w, apperr.Validation("invalid set id"))
		return
	}

	questions, err := h.bank.ListBySet(r.Context(), setID)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.okResponse(w, "questions", questions)
}

type addSetRequest struct {
	Name    string   `json:"name"`
	Prompts []string `json:"prompts"`
}

func (h *Handler) AddQuestionSetHandler(w http.ResponseWriter, r *http.Request) {
	caller, err := h.identity(r)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	if !caller.IsAdmin() {
		h.errorResponse(w, apperr.NotAuthorized("only an admin can add question sets"))
		return
	}

	var req addSetRequest
	if err := decode(r, &req); err != nil {
		h.errorResponse(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.Prompts) == 0 {
		h.errorResponse(w, apperr.Validation("a set needs a name and at least one prompt"))
		return
	}

	set, err := h.questions.AddSet(r.Context(), req.Name, req.Prompts)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.okResponse(w, "question set added", set)
}
