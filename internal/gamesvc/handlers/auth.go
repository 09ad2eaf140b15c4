package handlers

import (
	"net/http"
	"time"

	"github.com/wordrush/wordrush-services/internal/gamesvc/models"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		h.errorResponse(w, err)
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.okResponse(w, "registered", authResponse{Token: token, User: user})
}

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		h.errorResponse(w, err)
		return
	}

	user, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		h.errorResponse(w, err)
		return
	}
	h.okResponse(w, "logged in", authResponse{Token: token, User: user})
}

func (h *Handler) issueToken(user *models.User) (string, error) {
	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()

	_, tokenString, err := h.tokenAuth.Encode(map[string]interface{}{
		"user_id":  user.UserID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      expirationTime,
	})
	return tokenString, err
}
