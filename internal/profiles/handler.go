package profiles

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lbs-connect/internal/shared/server/middleware"
	"lbs-connect/internal/shared/server/respond"
)

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile", h.getProfile)
	rg.PATCH("/profile", h.updateProfile)
	rg.GET("/settings", h.getSettings)
	rg.PUT("/settings", h.updateSettings)
}

func (h *Handler) getProfile(c *gin.Context) {
	p, err := h.Service.Get(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, p, "")
}

func (h *Handler) updateProfile(c *gin.Context) {
	var u Update
	if err := c.ShouldBindJSON(&u); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body")
		return
	}
	p, err := h.Service.UpdateProfile(c.Request.Context(), middleware.UserIDFromContext(c), u)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, p, "Profile updated")
}

func (h *Handler) getSettings(c *gin.Context) {
	p, err := h.Service.Get(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, SettingsOf(p), "")
}

type settingsRequest struct {
	SendWeeklyUpdates   *bool `json:"send_weekly_updates"`
	ConnectWithStudents *bool `json:"connect_with_students"`
	ConnectWithAlumni   *bool `json:"connect_with_alumni"`
}

func (h *Handler) updateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body")
		return
	}
	if req.SendWeeklyUpdates == nil || req.ConnectWithStudents == nil || req.ConnectWithAlumni == nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "send_weekly_updates, connect_with_students and connect_with_alumni are required")
		return
	}
	settings := Settings{
		SendWeeklyUpdates:   *req.SendWeeklyUpdates,
		ConnectWithStudents: *req.ConnectWithStudents,
		ConnectWithAlumni:   *req.ConnectWithAlumni,
	}
	p, changed, err := h.Service.UpdateSettings(c.Request.Context(), middleware.UserIDFromContext(c), settings)
	if err != nil {
		writeError(c, err)
		return
	}
	msg := "Preferences saved"
	if !changed {
		msg = "Preferences unchanged"
	}
	respond.OK(c, SettingsOf(p), msg)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error())
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to process profile request")
	}
}
