package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hirepath-backend/internal/applications"
	googleauth "hirepath-backend/internal/auth"
	"hirepath-backend/internal/documents"
	"hirepath-backend/internal/generator"
	"hirepath-backend/internal/jobs"
	"hirepath-backend/internal/payments"
	"hirepath-backend/internal/rbac"
	"hirepath-backend/internal/resumes"
	"hirepath-backend/internal/shared/config"
	"hirepath-backend/internal/shared/metrics"
	"hirepath-backend/internal/shared/server/middleware"
	"hirepath-backend/internal/shared/server/respond"
	"hirepath-backend/internal/tokens"
	"hirepath-backend/internal/users"
)

// RouterDeps collects the handlers the router mounts.
type RouterDeps struct {
	Config       config.Config
	Users        *users.Handler
	UsersAdmin   *users.AdminHandler
	Tokens       *tokens.Handler
	GoogleAuth   *googleauth.GoogleService
	Documents    *documents.Handler
	Resumes      *resumes.Handler
	Generator    *generator.Handler
	Payments     *payments.Handler
	Jobs         *jobs.Handler
	Applications *applications.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(rateLimits()),
		middleware.Auth(deps.Config.Env),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.Users != nil {
		deps.Users.RegisterRoutes(api)
	}
	if deps.Tokens != nil {
		deps.Tokens.RegisterRoutes(api)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.Documents != nil {
		deps.Documents.RegisterRoutes(api)
	}
	if deps.Resumes != nil {
		deps.Resumes.RegisterRoutes(api)
	}
	if deps.Generator != nil {
		deps.Generator.RegisterRoutes(api)
	}
	if deps.Payments != nil {
		deps.Payments.RegisterRoutes(api)
	}
	if deps.Jobs != nil {
		deps.Jobs.RegisterRoutes(api)

		write := api.Group("", middleware.RequirePermission(rbac.PermJobsWrite))
		deps.Jobs.RegisterWriteRoutes(write)

		importer := api.Group("", middleware.RequirePermission(rbac.PermJobsImport))
		deps.Jobs.RegisterImportRoutes(importer)
	}
	if deps.Applications != nil {
		deps.Applications.RegisterRoutes(api)

		review := api.Group("", middleware.RequirePermission(rbac.PermApplicationsReview))
		deps.Applications.RegisterReviewRoutes(review)
	}
	if deps.UsersAdmin != nil {
		deps.UsersAdmin.RegisterRoutes(api)
	}
	if deps.Payments != nil {
		adminPayments := api.Group("", middleware.RequirePermission(rbac.PermPaymentsView))
		deps.Payments.RegisterAdminRoutes(adminPayments)
	}

	return r
}

// rateLimits throttles credential endpoints harder than the rest of the API.
func rateLimits() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"AUTH":    {Rate: 1, Burst: 10},
			"DEFAULT": {Rate: 20, Burst: 40},
		},
		GroupFor: func(c *gin.Context) string {
			if strings.HasPrefix(c.Request.URL.Path, "/api/v1/auth/") {
				return "AUTH"
			}
			return "DEFAULT"
		},
	}
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
