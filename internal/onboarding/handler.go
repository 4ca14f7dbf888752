package onboarding

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lbs-connect/internal/industries"
	"lbs-connect/internal/profiles"
	"lbs-connect/internal/shared/server/middleware"
	"lbs-connect/internal/shared/server/respond"
	"lbs-connect/internal/shared/storage/object"
)

// maxFormBytes bounds the whole multipart body: the CV plus the answers.
const maxFormBytes = MaxCVBytes + 64<<10

const MessageCompleted = "Your profile has been created. We're extracting data from your CV in the background."

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/onboarding", h.complete)
	rg.POST("/onboarding/cv-url", h.presign)
	rg.GET("/onboarding/status", h.status)
}

func (h *Handler) complete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFormBytes)
	if err := c.Request.ParseMultipartForm(maxFormBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "file size must be less than 1MB")
			return
		}
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid multipart form")
		return
	}

	form := Form{
		UserID:            userID,
		Email:             middleware.UserEmailFromContext(c),
		UserType:          profiles.UserType(strings.TrimSpace(c.PostForm("user_type"))),
		NetworkingGoal:    strings.TrimSpace(c.PostForm("networking_goal")),
		TargetIndustries:  c.PostFormArray("target_industries"),
		SpecificInterests: strings.TrimSpace(c.PostForm("specific_interests")),
		SendWeeklyUpdates: formBool(c.PostForm("send_weekly_updates")),
		ConnectStudents:   formBool(c.PostForm("connect_with_students")),
		ConnectAlumni:     formBool(c.PostForm("connect_with_alumni")),
		CVPath:            strings.TrimSpace(c.PostForm("cv_path")),
	}
	if form.Email == "" {
		form.Email = strings.TrimSpace(c.PostForm("email"))
	}
	if raw := strings.TrimSpace(c.PostForm("industries")); raw != "" {
		var sel industries.Selection
		if err := json.Unmarshal([]byte(raw), &sel); err != nil {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "industries must be a JSON object of sub-sector lists")
			return
		}
		form.Industries = sel
	}

	upload, err := readUpload(c)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error())
		return
	}

	p, err := h.Service.Complete(c.Request.Context(), form, upload)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, p, MessageCompleted)
}

func readUpload(c *gin.Context) (*Upload, error) {
	fh, err := c.FormFile("cv")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New("invalid multipart form")
	}
	if fh.Size > MaxCVBytes {
		return nil, errors.New("file size must be less than 1MB")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("could not read cv file")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxCVBytes+1))
	if err != nil {
		return nil, errors.New("could not read cv file")
	}
	return &Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "on", "yes":
		return true
	}
	return false
}

type presignRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

type presignResponse struct {
	object.PresignedUpload
	ExpiresInSeconds int64 `json:"expiresInSeconds"`
}

func (h *Handler) presign(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body")
		return
	}
	out, err := h.Service.PresignCV(c.Request.Context(), middleware.UserIDFromContext(c),
		strings.TrimSpace(req.FileName), strings.TrimSpace(req.ContentType), req.SizeBytes)
	if err != nil {
		if errors.Is(err, object.ErrPresignUnsupported) {
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "uploads not configured")
			return
		}
		writeError(c, err)
		return
	}
	respond.OK(c, presignResponse{PresignedUpload: out, ExpiresInSeconds: int64(out.ExpiresIn.Seconds())}, "")
}

func (h *Handler) status(c *gin.Context) {
	done, err := h.Service.Status(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"completed": done}, "")
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, profiles.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error())
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, err.Error())
	}
}
