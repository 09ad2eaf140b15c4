package handlers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"

	"github.com/wordrush/wordrush-services/internal/gamesvc/apperr"
	"github.com/wordrush/wordrush-services/internal/gamesvc/broker"
	"github.com/wordrush/wordrush-services/internal/gamesvc/service"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth

	users     *service.UserService
	games     *service.GameService
	rounds    *service.RoundService
	subs      *service.SubmissionService
	verdicts  *service.VerdictService
	bank      service.QuestionBank
	questions QuestionAdder
	broker    *broker.Broker
}

func NewHandler(users *service.UserService, games *service.GameService, rounds *service.RoundService,
	subs *service.SubmissionService, verdicts *service.VerdictService,
	bank service.QuestionBank, questions QuestionAdder, b *broker.Broker) *Handler {
	return &Handler{
		users:     users,
		games:     games,
		rounds:    rounds,
		subs:      subs,
		verdicts:  verdicts,
		bank:      bank,
		questions: questions,
		broker:    b,
	}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

// errorResponse maps a kinded service error to its status code. Unknown
// errors are logged and masked as a plain 500.
func (h *Handler) errorResponse(w http.ResponseWriter, err error) {
	code := apperr.HTTPStatus(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		log.Errorf("internal error: %v", err)
		msg = "internal server error"
	}
	h.CreateResponse(w, Response{Code: code, Error: msg})
}

func (h *Handler) okResponse(w http.ResponseWriter, message string, data interface{}) {
	h.CreateResponse(w, Response{Message: message, Code: http.StatusOK, Data: data})
}

// decode reads a JSON body into dst, returning a validation error the
// response writer understands.
func decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}

// identity pulls the caller out of the verified token. user_id and role are
// JSON numbers in the claim map, so they arrive as float64.
func (h *Handler) identity(r *http.Request) (service.Identity, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return service.Identity{}, apperr.NotAuthorized("invalid token")
	}

	id := service.Identity{}
	if v, ok := claims["user_id"].(float64); ok {
		id.UserID = int64(v)
	}
	if v, ok := claims["username"].(string); ok {
		id.Username = v
	}
	if v, ok := claims["role"].(float64); ok {
		id.Role = int(v)
	}
	if id.UserID == 0 || id.Username == "" {
		return service.Identity{}, apperr.NotAuthorized("token is missing identity claims")
	}
	return id, nil
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "game service is running at port " + os.Getenv("GAME_SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode health response: %v", err)
	}
}
