package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/perfilapp/perfil/internal/api/metrics"
	"github.com/perfilapp/perfil/internal/core/domain"
	"github.com/perfilapp/perfil/internal/core/ports"
)

// ProfileHandler serves the home and profile screens.
type ProfileHandler struct {
	profiles ports.ProfileService
	editor   ports.ProfileEditor
	metrics  *metrics.Collector
}

func NewProfileHandler(profiles ports.ProfileService, editor ports.ProfileEditor, m *metrics.Collector) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, editor: editor, metrics: m}
}

// Home returns the signed-in identity and its stored profile, if any.
//
// @Summary      Home screen
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  homeResponse
// @Failure      401  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/home [get]
func (h *ProfileHandler) Home(c echo.Context) error {
	if _, err := ctxIdentity(c); err != nil {
		return err
	}

	home, err := h.profiles.Home(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, homeResponse{Identity: home.Identity, Profile: home.Record})
}

// Get loads the profile form from the stored record.
//
// @Summary      Profile screen
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	if _, err := ctxIdentity(c); err != nil {
		return err
	}

	form, err := h.editor.Load(c.Request().Context())
	if err != nil {
		return err
	}
	_, editing := h.editor.State()
	return c.JSON(http.StatusOK, profileResponse{Form: form, Editing: editing})
}

// BeginEdit switches the profile screen into edit mode.
//
// @Summary      Enter edit mode
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Router       /v1/profile/edit [post]
func (h *ProfileHandler) BeginEdit(c echo.Context) error {
	if _, err := ctxIdentity(c); err != nil {
		return err
	}

	h.editor.BeginEdit()
	form, editing := h.editor.State()
	return c.JSON(http.StatusOK, profileResponse{Form: form, Editing: editing})
}

// CancelEdit leaves edit mode, clears the password inputs and reloads the
// stored profile.
//
// @Summary      Cancel edit mode
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Router       /v1/profile/edit [delete]
func (h *ProfileHandler) CancelEdit(c echo.Context) error {
	if _, err := ctxIdentity(c); err != nil {
		return err
	}

	form, err := h.editor.Cancel(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{Form: form})
}

// Update runs the profile update transaction.
//
// @Summary      Update profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile form"
// @Success      200   {object}  updateProfileResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/profile [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	if _, err := ctxIdentity(c); err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	result, err := h.editor.Save(c.Request().Context(), domain.ProfileForm{
		Name:            req.Name,
		Email:           req.Email,
		Age:             req.Age,
		Specialty:       req.Specialty,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		h.metrics.ProfileUpdate(resultOf(err))
		return err
	}
	h.metrics.ProfileUpdate(metrics.ResultSuccess)

	form, _ := h.editor.State()
	return c.JSON(http.StatusOK, updateProfileResponse{
		Message:      result.Message,
		Form:         form,
		EmailChanged: result.EmailChanged,
	})
}
