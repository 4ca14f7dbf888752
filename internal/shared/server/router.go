package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lbs-connect/internal/cvextract"
	"lbs-connect/internal/industries"
	"lbs-connect/internal/matches"
	"lbs-connect/internal/notify"
	"lbs-connect/internal/onboarding"
	"lbs-connect/internal/profiles"
	"lbs-connect/internal/services/health"
	"lbs-connect/internal/shared/auth"
	"lbs-connect/internal/shared/config"
	"lbs-connect/internal/shared/metrics"
	"lbs-connect/internal/shared/server/middleware"
	"lbs-connect/internal/shared/server/respond"
)

const (
	rateGroupDefault = "DEFAULT"
	rateGroupLLM     = "LLM"
)

// RouterDeps are the handlers mounted by NewRouter. Nil handlers are skipped.
type RouterDeps struct {
	Config     config.Config
	Keys       *auth.Keys
	Health     *health.Service
	Profiles   *profiles.Handler
	Onboarding *onboarding.Handler
	Matches    *matches.Handler
	CVExtract  *cvextract.Handler
	Notify     *notify.Handler
	Limiter    *middleware.RateLimiter
}

var rateRules = map[string]middleware.RateLimitRule{
	rateGroupDefault: {Rate: 10, Burst: 30},
	rateGroupLLM:     {Rate: 0.2, Burst: 5},
}

// rateGroupFor puts every route that calls an LLM in the stricter group.
func rateGroupFor(c *gin.Context) string {
	path := c.FullPath()
	if strings.HasPrefix(path, "/functions/v1/") || path == "/api/v1/matches/refresh" || path == "/api/v1/onboarding" {
		return rateGroupLLM
	}
	// A settings change regenerates and emails matches.
	if path == "/api/v1/settings" && c.Request.Method == http.MethodPut {
		return rateGroupLLM
	}
	return rateGroupDefault
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(d RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(d.Config.CORSAllowOrigin),
	)
	r.GET("/metrics", metrics.Handler())

	rateLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Rules:        rateRules,
		DefaultGroup: rateGroupDefault,
		GroupFor:     rateGroupFor,
		Limiter:      d.Limiter,
	})

	api := r.Group("/api/v1")
	api.Use(middleware.Auth(d.Keys, d.Config.Env, "/api/v1/health", "/api/v1/industries"), rateLimit)
	api.GET("/health", func(c *gin.Context) {
		if d.Health == nil {
			respond.JSON(c, http.StatusOK, health.Report{OK: true})
			return
		}
		rep := d.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !rep.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, rep)
	})
	industries.RegisterRoutes(api)
	var checker onboardingChecker
	if d.Profiles != nil {
		d.Profiles.RegisterRoutes(api)
		checker = d.Profiles.Service
	}
	registerMeRoutes(api, checker)
	if d.Onboarding != nil {
		d.Onboarding.RegisterRoutes(api)
	}
	if d.Matches != nil {
		d.Matches.RegisterRoutes(api)
	}

	fn := r.Group("/functions/v1")
	fn.Use(middleware.Auth(d.Keys, d.Config.Env), rateLimit)
	if d.CVExtract != nil {
		d.CVExtract.RegisterRoutes(fn)
	}
	if d.Matches != nil {
		d.Matches.RegisterFunctionRoutes(fn)
	}
	if d.Notify != nil {
		d.Notify.RegisterRoutes(fn)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
