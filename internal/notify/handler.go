package notify

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lbs-connect/internal/profiles"
	"lbs-connect/internal/shared/server/middleware"
	"lbs-connect/internal/shared/server/respond"
)

const FunctionName = "send-match-email"

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/"+FunctionName, h.send)
}

type sendRequest struct {
	UserID  string  `json:"userId"`
	Matches []Entry `json:"matches"`
}

func (h *Handler) send(c *gin.Context) {
	c.Set("function", FunctionName)
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.FunctionError(c, respond.CodeValidation, errors.New("invalid request body"))
		return
	}
	if req.UserID != "" && !middleware.CanActFor(c, req.UserID) {
		respond.Error(c, http.StatusForbidden, respond.CodeForbidden, "cannot act for another user")
		return
	}
	c.Set("matchCount", len(req.Matches))
	msg, err := h.Service.Send(c.Request.Context(), req.UserID, req.Matches)
	if err != nil {
		code := respond.CodeUpstream
		switch {
		case errors.Is(err, profiles.ErrNotFound):
			code = respond.CodeNotFound
		case errors.Is(err, ErrNoEmail):
			code = respond.CodeValidation
		}
		respond.FunctionError(c, code, err)
		return
	}
	respond.OK(c, nil, msg)
}
