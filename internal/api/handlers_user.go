package api

import (
	"encoding/json"
	"net/http"

	"github.com/light11014/Moodmate-Backend/internal/api/respond"
	"github.com/light11014/Moodmate-Backend/internal/api/validate"
	"github.com/light11014/Moodmate-Backend/internal/auth"
	"github.com/light11014/Moodmate-Backend/internal/services"
)

type UserHandler struct {
	svc    *services.UserService
	tokens *auth.TokenIssuer
}

func NewUserHandler(svc *services.UserService, tokens *auth.TokenIssuer) *UserHandler {
	return &UserHandler{svc: svc, tokens: tokens}
}

// GetMe GET /api/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}
	p, err := h.svc.GetProfile(r.Context(), userID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, p)
}

// IssueDevToken POST /api/auth/dev-token
// Registered only in development. Creates the user when missing.
func (h *UserHandler) IssueDevToken(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.DevToken(in.UserID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	u, err := h.svc.EnsureUser(r.Context(), in.UserID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	tok, err := h.tokens.Issue(u.UserID)
	if err != nil {
		respond.WriteInternalError(w, "failed to issue token")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{
		"userId":      u.UserID,
		"accessToken": tok,
		"tokenType":   "Bearer",
	})
}
