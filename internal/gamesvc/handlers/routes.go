package handlers

import (
	"os"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		// public routes
		r.Post("/auth/register", h.RegisterHandler)
		r.Post("/auth/login", h.LoginHandler)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/health", h.HealthHandler)

			r.Get("/games", h.OpenGamesHandler)
			r.Post("/games", h.CreateGameHandler)
			r.Get("/games/{room}", h.GameStateHandler)
			r.Post("/games/{room}/join", h.JoinGameHandler)
			r.Post("/games/{room}/start", h.StartGameHandler)
			r.Post("/games/{room}/kick", h.KickPlayerHandler)
			r.Post("/games/{room}/submit", h.SubmitHandler)
			r.Post("/games/{room}/submit-all", h.SubmitAllHandler)
			r.Get("/games/{room}/answers", h.AnswerHistoryHandler)

			r.Post("/games/{room}/answers/{submissionID}/check", h.CheckAnswerHandler)
			r.Post("/games/{room}/answers/{submissionID}/request-vote", h.RequestVoteHandler)
			r.Post("/games/{room}/answers/{submissionID}/vote", h.CastVoteHandler)
			r.Post("/games/{room}/answers/{submissionID}/override", h.OverrideVerdictHandler)

			r.Get("/question-sets", h.QuestionSetsHandler)
			r.Get("/question-sets/{setID}/questions", h.QuestionsBySetHandler)
			r.Post("/question-sets", h.AddQuestionSetHandler)
		})
	})
}

func (h *Handler) InitAuth() {
	var jwtKey = os.Getenv("JWT_SECRET_KEY")
	h.tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)
}
