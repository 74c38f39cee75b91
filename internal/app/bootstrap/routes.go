// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	broadcastsfeature "github.com/dalemusser/noticeboard/internal/app/features/broadcasts"
	errorsfeature "github.com/dalemusser/noticeboard/internal/app/features/errors"
	feedbackfeature "github.com/dalemusser/noticeboard/internal/app/features/feedback"
	healthfeature "github.com/dalemusser/noticeboard/internal/app/features/health"
	messagesfeature "github.com/dalemusser/noticeboard/internal/app/features/messages"
	"github.com/dalemusser/noticeboard/internal/app/notify"
	"github.com/dalemusser/noticeboard/internal/app/system/auth"
	"github.com/dalemusser/noticeboard/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. Every request passes through the bearer
// token middleware; the feature routers apply their own role guards and the
// /api/admin group requires the admin role.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	verifier, err := auth.NewVerifier(appCfg.JWTSecret, appCfg.JWTIssuer, logger)
	if err != nil {
		logger.Error("token verifier init failed", zap.Error(err))
		return nil, err
	}
	var limiter *ratelimit.Limiter
	if appCfg.FeedbackRateLimit > 0 {
		limiter = ratelimit.New(appCfg.FeedbackRateLimit, appCfg.FeedbackRateWindow)
	}
	return newRouter(verifier, newService(appCfg, deps, logger), limiter, deps, logger), nil
}

func newRouter(verifier *auth.Verifier, svc *notify.Service, limiter *ratelimit.Limiter, deps DBDeps, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Global auth middleware: loads the caller's Identity into context when a
	// valid bearer token is present.
	r.Use(verifier.LoadIdentity)

	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	broadcastsHandler := broadcastsfeature.NewHandler(svc, logger)
	r.Mount("/api/broadcasts", broadcastsfeature.Routes(broadcastsHandler))

	messagesHandler := messagesfeature.NewHandler(svc, logger)
	r.Mount("/api/messages", messagesfeature.Routes(messagesHandler))

	feedbackHandler := feedbackfeature.NewHandler(svc, logger)
	r.Mount("/api/feedback", feedbackfeature.Routes(feedbackHandler, limiter))

	r.Route("/api/admin", func(ar chi.Router) {
		ar.Use(auth.RequireRole(auth.RoleAdmin))
		messagesHandler.MountAdminRoutes(ar)
		broadcastsHandler.MountAdminRoutes(ar)
	})

	return r
}
