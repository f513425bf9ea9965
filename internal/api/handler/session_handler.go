package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type SessionHandler struct {
	sessions SessionReader
}

func NewSessionHandler(sessions SessionReader) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Get reports the session, its view and the screens the shell may show.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /v1/session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, toSessionResponse(h.sessions.Snapshot()))
}
