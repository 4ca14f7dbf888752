package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"lbs-connect/internal/shared/server/middleware"
	"lbs-connect/internal/shared/server/respond"
)

type onboardingChecker interface {
	IsOnboardingComplete(ctx context.Context, userID string) (bool, error)
}

// registerMeRoutes attaches GET /me. It tells the client who the token
// belongs to and whether onboarding still has to run.
func registerMeRoutes(rg *gin.RouterGroup, checker onboardingChecker) {
	rg.GET("/me", func(c *gin.Context) {
		userID := middleware.UserIDFromContext(c)
		if userID == "" {
			respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "missing or invalid token")
			return
		}

		out := gin.H{"userId": userID, "onboardingCompleted": false}
		if email := middleware.UserEmailFromContext(c); email != "" {
			out["email"] = email
		}
		if middleware.IsServiceRole(c) {
			out["serviceRole"] = true
		}
		if checker != nil {
			done, err := checker.IsOnboardingComplete(c.Request.Context(), userID)
			if err != nil {
				respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to load profile")
				return
			}
			out["onboardingCompleted"] = done
		}
		respond.OK(c, out, "")
	})
}
