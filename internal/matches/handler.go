package matches

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"lbs-connect/internal/profiles"
	"lbs-connect/internal/shared/server/middleware"
	"lbs-connect/internal/shared/server/respond"
	"lbs-connect/internal/shared/telemetry"
)

const FunctionName = "generate-recommendations"

type Handler struct {
	Service  *Service
	Notifier Notifier
}

func NewHandler(svc *Service, n Notifier) *Handler {
	return &Handler{Service: svc, Notifier: n}
}

// RegisterFunctionRoutes mounts the function on the /functions/v1 group.
func (h *Handler) RegisterFunctionRoutes(rg *gin.RouterGroup) {
	rg.POST("/"+FunctionName, h.generate)
}

// RegisterRoutes mounts the REST endpoints. refresh is wrapped by extra
// middleware such as the LLM rate limiter.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, refresh ...gin.HandlerFunc) {
	rg.GET("/matches", h.list)
	rg.PATCH("/matches/:id", h.updateStatus)
	rg.POST("/matches/refresh", append(refresh, h.refresh)...)
}

type generateRequest struct {
	UserID   string   `json:"userId"`
	Criteria Criteria `json:"criteria"`
}

func (h *Handler) generate(c *gin.Context) {
	c.Set("function", FunctionName)
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.FunctionError(c, respond.CodeValidation, errors.New("invalid request body"))
		return
	}
	if req.UserID != "" && !middleware.CanActFor(c, req.UserID) {
		respond.Error(c, http.StatusForbidden, respond.CodeForbidden, "cannot act for another user")
		return
	}
	res, err := h.Service.Generate(c.Request.Context(), req.UserID, req.Criteria)
	if err != nil {
		respond.FunctionError(c, functionCode(err), err)
		return
	}
	c.Set("matchCount", len(res.Matches))
	respond.OK(c, res.Matches, res.Message)
}

func functionCode(err error) string {
	switch {
	case errors.Is(err, profiles.ErrNotFound), errors.Is(err, profiles.ErrSummaryNotFound):
		return respond.CodeNotFound
	case IsClientError(err):
		return respond.CodeValidation
	default:
		return respond.CodeUpstream
	}
}

func (h *Handler) list(c *gin.Context) {
	ms, err := h.Service.ListActive(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to load matches")
		return
	}
	respond.OK(c, ms, "")
}

type statusRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body")
		return
	}
	m, err := h.Service.UpdateStatus(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), req.Status)
	switch {
	case err == nil:
		respond.OK(c, m, "Match updated")
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error())
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to update match")
	}
}

type refreshResponse struct {
	Matches   []MatchWithProfile `json:"matches"`
	EmailSent bool               `json:"emailSent"`
}

func (h *Handler) refresh(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserIDFromContext(c)
	res, err := h.Service.Generate(ctx, userID, Criteria{})
	if err != nil {
		status := http.StatusBadGateway
		code := respond.CodeUpstream
		switch {
		case errors.Is(err, profiles.ErrNotFound), errors.Is(err, profiles.ErrSummaryNotFound):
			status, code = http.StatusNotFound, respond.CodeNotFound
		case IsClientError(err):
			status, code = http.StatusBadRequest, respond.CodeValidation
		}
		respond.Error(c, status, code, err.Error())
		return
	}
	c.Set("matchCount", len(res.Matches))
	out := refreshResponse{Matches: res.Matches}
	msg := res.Message
	if len(res.Matches) > 0 && h.Notifier != nil {
		if err := h.Notifier.Notify(ctx, userID, res.Matches); err != nil {
			telemetry.Warn("matches.refresh.notify_failed", map[string]any{"user_id": userID, "err": err})
			msg = fmt.Sprintf("%s; email could not be sent", res.Message)
		} else {
			out.EmailSent = true
		}
	}
	respond.OK(c, out, msg)
}
