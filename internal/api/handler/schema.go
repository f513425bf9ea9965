package handler

import (
	"time"

	"github.com/perfilapp/perfil/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
	Field  string `json:"field,omitempty"`
}

// --- Requests ---
//
// Presence is not checked here: a missing field reaches the core as blank
// and is reported with the core's message.

type loginRequest struct {
	Email    string `json:"email"    validate:"max=254"`
	Password string `json:"password" validate:"max=128"`
}

type registerRequest struct {
	Name            string `json:"name"             validate:"max=100"`
	Email           string `json:"email"            validate:"max=254"`
	Password        string `json:"password"         validate:"max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"max=128"`
	Age             string `json:"age"              validate:"max=8"`
	Specialty       string `json:"specialty"        validate:"max=100"`
}

type logoutRequest struct {
	Confirm bool `json:"confirm"`
}

type updateProfileRequest struct {
	Name            string `json:"name"             validate:"max=100"`
	Email           string `json:"email"            validate:"max=254"`
	Age             string `json:"age"              validate:"max=8"`
	Specialty       string `json:"specialty"        validate:"max=100"`
	CurrentPassword string `json:"current_password" validate:"max=128"`
	NewPassword     string `json:"new_password"     validate:"max=128"`
}

// --- Responses ---

type sessionResponse struct {
	Ready    bool             `json:"ready"`
	View     string           `json:"view"`
	Screens  []domain.Screen  `json:"screens"`
	Identity *domain.Identity `json:"identity,omitempty"`
}

type authResponse struct {
	Session   sessionResponse `json:"session"`
	Token     string          `json:"token,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

type logoutResponse struct {
	Cancelled bool            `json:"cancelled"`
	Session   sessionResponse `json:"session"`
}

type homeResponse struct {
	Identity domain.Identity       `json:"identity"`
	Profile  *domain.ProfileRecord `json:"profile"`
}

type profileResponse struct {
	Form    domain.ProfileForm `json:"form"`
	Editing bool               `json:"editing"`
}

type updateProfileResponse struct {
	Message      string             `json:"message"`
	Form         domain.ProfileForm `json:"form"`
	EmailChanged bool               `json:"email_changed"`
}

func toSessionResponse(state domain.SessionState) sessionResponse {
	view := state.View()
	return sessionResponse{
		Ready:    state.Ready,
		View:     string(view),
		Screens:  view.Screens(),
		Identity: state.Identity,
	}
}
