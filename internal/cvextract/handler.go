package cvextract

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lbs-connect/internal/shared/server/middleware"
	"lbs-connect/internal/shared/server/respond"
)

const FunctionName = "extract-cv-data"

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

// RegisterRoutes mounts the function on the /functions/v1 group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/"+FunctionName, h.extract)
}

type extractRequest struct {
	UserID string `json:"userId"`
	CVPath string `json:"cvPath"`
}

func (h *Handler) extract(c *gin.Context) {
	c.Set("function", FunctionName)
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.FunctionError(c, respond.CodeValidation, errors.New("invalid request body"))
		return
	}
	if req.UserID != "" && !middleware.CanActFor(c, req.UserID) {
		respond.Error(c, http.StatusForbidden, respond.CodeForbidden, "cannot act for another user")
		return
	}
	if req.UserID != "" && req.CVPath != "" && !middleware.IsServiceRole(c) && !OwnsPath(req.UserID, req.CVPath) {
		respond.Error(c, http.StatusForbidden, respond.CodeForbidden, "cv path must belong to the caller")
		return
	}
	fields, err := h.Service.Extract(c.Request.Context(), req.UserID, req.CVPath)
	if err != nil {
		code := respond.CodeUpstream
		if errors.Is(err, ErrMissingParams) {
			code = respond.CodeValidation
		}
		respond.FunctionError(c, code, err)
		return
	}
	respond.OK(c, fields, "")
}
