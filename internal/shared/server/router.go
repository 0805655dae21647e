package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobhunt-backend/internal/account"
	"jobhunt-backend/internal/ai"
	"jobhunt-backend/internal/analyses"
	googleauth "jobhunt-backend/internal/auth"
	"jobhunt-backend/internal/cache"
	"jobhunt-backend/internal/jobs"
	"jobhunt-backend/internal/resumes"
	"jobhunt-backend/internal/services/health"
	"jobhunt-backend/internal/shared/config"
	"jobhunt-backend/internal/shared/metrics"
	"jobhunt-backend/internal/shared/server/middleware"
	"jobhunt-backend/internal/shared/server/respond"
	"jobhunt-backend/internal/usage"
	"jobhunt-backend/internal/users"
)

const (
	rateGroupDefault = "DEFAULT"
	rateGroupAI      = "AI"
)

// RouterDeps holds the handlers mounted by NewRouter. Nil handlers are
// skipped.
type RouterDeps struct {
	Config          config.Config
	Verifier        middleware.TokenVerifier
	Health          *health.Service
	AuthHandler     *googleauth.Handler
	GoogleAuth      *googleauth.GoogleService
	UserHandler     *users.Handler
	JobHandler      *jobs.Handler
	ResumeHandler   *resumes.Handler
	AIHandler       *ai.Handler
	CacheHandler    *cache.Handler
	AnalysisHandler *analyses.Handler
	UsageHandler    *usage.Handler
	AccountHandler  *account.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		metrics.Middleware(),
		middleware.CORS(cfg.CORSAllowOrigins),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(nil, cfg.LLMProvider)
	}
	healthHandler := func(c *gin.Context) {
		st := healthSvc.Check(c.Request.Context())
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
	}
	r.GET("/health", healthHandler)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler)

	limiter := middleware.RateLimit(middleware.RateLimitConfig{
		DefaultGroup: rateGroupDefault,
		GroupFor:     rateGroupFor,
		Rules:        rateRules(cfg),
	})

	public := api.Group("", limiter)
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterRoutes(public)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(public)
	}

	protected := api.Group("", middleware.Auth(deps.Verifier), limiter)
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(protected)
	}
	if deps.JobHandler != nil {
		deps.JobHandler.RegisterRoutes(protected)
	}
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(protected)
	}
	if deps.AIHandler != nil {
		deps.AIHandler.RegisterRoutes(protected)
		deps.AIHandler.RegisterGenerationRoutes(protected)
	}
	if deps.CacheHandler != nil {
		deps.CacheHandler.RegisterRoutes(protected)
	}
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(protected)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(protected)
		if !cfg.IsProduction() {
			deps.UsageHandler.RegisterDevRoutes(protected.Group("/dev"))
		}
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(protected)
	}

	return r
}

// rateGroupFor puts every quota-spending route in the stricter AI group.
func rateGroupFor(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return rateGroupDefault
	}
	path := c.FullPath()
	if strings.HasPrefix(path, "/api/v1/ai/") || path == "/api/v1/analyses" {
		return rateGroupAI
	}
	return rateGroupDefault
}

func rateRules(cfg config.Config) map[string]middleware.RateLimitRule {
	rules := map[string]middleware.RateLimitRule{}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst > 0 {
		rules[rateGroupDefault] = middleware.RateLimitRule{Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst}
	}
	if cfg.AIRateLimitRPM > 0 {
		rules[rateGroupAI] = middleware.PerMinute(cfg.AIRateLimitRPM)
	}
	return rules
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
