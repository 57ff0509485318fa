package http

import (
	"net/http"
	"time"

	"github.com/metagate-hq/platform/internal/platform/domain"
	"github.com/metagate-hq/platform/internal/platform/service"
	"github.com/metagate-hq/platform/pkg/httpx"
)

// AccountHandler serves the authenticated self-service endpoints.
type AccountHandler struct {
	Accounts *service.AccountService
}

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	acct, err := h.Accounts.GetByID(r.Context(), httpx.AccountID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccountResponse(acct))
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Nickname  *string `json:"nickname"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatar_url"`
	Bio       *string `json:"bio"`
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	acct, err := h.Accounts.UpdateProfile(r.Context(), httpx.AccountID(r.Context()), service.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Nickname:  req.Nickname,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccountResponse(acct))
}

func toAccountResponse(a domain.Account) accountResponse {
	return accountResponse{
		ID:            a.ID,
		Email:         a.Email,
		Username:      a.Username,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Nickname:      a.Nickname,
		Phone:         a.Phone,
		AvatarURL:     a.AvatarURL,
		Bio:           a.Bio,
		Role:          string(a.Role),
		Status:        string(a.Status),
		EmailVerified: a.EmailVerified,
		CreatedAt:     a.CreatedAt.UTC().Format(time.RFC3339),
	}
}
