package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/choreboardhq/choreboard-api/internal/config"
	"github.com/choreboardhq/choreboard-api/internal/handler"
	"github.com/choreboardhq/choreboard-api/internal/middleware"
	"github.com/choreboardhq/choreboard-api/internal/models"
	"github.com/choreboardhq/choreboard-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ProofHandler        *handler.ProofHandler
	ReviewHandler       *handler.ReviewHandler
	RewardHandler       *handler.RewardHandler
	ChoreHandler        *handler.ChoreHandler
	MemberHandler       *handler.MemberHandler
	MessageHandler      *handler.MessageHandler
	NotificationHandler *handler.NotificationHandler
	ActivityHandler     *handler.ActivityHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.ProofHandler != nil {
		// Photo uploads are the heaviest write path; rate-limit them
		// per member.
		proofs := api.Group("/proofs", jwtMiddleware, middleware.RateLimit("proofs", 60, time.Minute))
		deps.ProofHandler.Register(proofs)

		// Review decisions share the /proofs/:id prefix but are parent-only.
		if deps.ReviewHandler != nil {
			reviews := api.Group("/proofs", jwtMiddleware, middleware.RequireRole(models.MemberRoleParent))
			deps.ReviewHandler.Register(reviews)
		}
	}

	if deps.RewardHandler != nil {
		rewards := api.Group("/rewards", jwtMiddleware)
		deps.RewardHandler.Register(rewards)
	}

	if deps.ChoreHandler != nil {
		chores := api.Group("/chores", jwtMiddleware)
		deps.ChoreHandler.Register(chores)
	}

	if deps.MemberHandler != nil {
		members := api.Group("/members", jwtMiddleware)
		deps.MemberHandler.Register(members)
	}

	if deps.MessageHandler != nil {
		messages := api.Group("/messages", jwtMiddleware)
		deps.MessageHandler.Register(messages)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}

	if deps.ActivityHandler != nil {
		activity := api.Group("/activity", jwtMiddleware, middleware.RequireRole(models.MemberRoleParent))
		deps.ActivityHandler.Register(activity)
	}
}
