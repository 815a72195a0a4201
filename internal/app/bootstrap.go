package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/gilsonricardopeloso/devretain/internal/config"
	"github.com/gilsonricardopeloso/devretain/internal/database/migration"
	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/access"
	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/handler"
	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/middleware"
	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/routes"
	v1 "github.com/gilsonricardopeloso/devretain/internal/delivery/http/routes/v1"
	"github.com/gilsonricardopeloso/devretain/internal/infrastructure/cache"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/jwt"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/logger"
	"github.com/gilsonricardopeloso/devretain/internal/repository"
	ucauth "github.com/gilsonricardopeloso/devretain/internal/usecase/auth"
	"github.com/gilsonricardopeloso/devretain/internal/usecase/dashboard"
	ucknowledge "github.com/gilsonricardopeloso/devretain/internal/usecase/knowledge"
	useruc "github.com/gilsonricardopeloso/devretain/internal/usecase/user"
	"github.com/gilsonricardopeloso/devretain/internal/ws"
	"github.com/gilsonricardopeloso/devretain/migrations"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// Bootstrap wires the container, services and routes. The returned cleanup
// stops the websocket hub and releases every connection.
func Bootstrap(cfg config.Config, log *logger.Logger) (*App, func() error, error) {
	c, err := NewContainer(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	if cfg.App.MigrateOnBoot {
		runner := migration.Runner{Source: migrations.FS, Logger: log}
		if err := runner.Run(context.Background(), c.DB.SQLDB()); err != nil {
			_ = c.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	go c.Hub.Run(hubCtx)

	app := New(c)

	cleanup := func() error {
		stopHub()
		return c.Close()
	}
	return app, cleanup, nil
}

// New builds the HTTP application on top of an already opened container.
func New(c *Container) *App {
	log := c.Logger

	users := repository.NewPostgresUserRepository(c.DB)
	areas := repository.NewPostgresKnowledgeAreaRepository(c.DB)
	userAreas := repository.NewPostgresUserKnowledgeAreaRepository(c.DB)
	milestones := repository.NewPostgresCareerMilestoneRepository(c.DB)

	tokens := jwt.NewHMACService(c.Config.JWT.Secret)

	dashboardSvc := dashboard.NewService(areas, userAreas, c.Redis, c.Config.Dashboard.CacheTTL, log)
	authSvc := ucauth.NewService(users, tokens, cache.NewTokenDenylist(c.Redis), cache.NewActivityThrottle(c.Redis), log)
	userSvc := useruc.NewService(users, userAreas, milestones, c.Events, dashboardSvc, log)
	knowledgeSvc := ucknowledge.NewService(areas, userAreas, users, c.Events, dashboardSvc, log)

	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})
	registerGlobalMiddleware(f, log)

	registry := routes.NewRegistry(
		handler.NewHealthHandler(c.DB, c.Redis),
		v1.Handlers{
			Auth:      handler.NewAuthHandler(authSvc),
			Users:     handler.NewUserHandler(userSvc),
			Knowledge: handler.NewKnowledgeHandler(knowledgeSvc),
			Dashboard: handler.NewDashboardHandler(dashboardSvc),
			WS:        ws.NewHandler(c.Hub, log),
		},
		middleware.NewAuthMiddleware(authSvc, log),
		middleware.NewRoleMiddleware(access.Default(), log),
	)
	registry.Register(f)

	return &App{Fiber: f, Container: c}
}

func registerGlobalMiddleware(app *fiber.App, log *logger.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(log).Middleware())
	app.Use(middleware.NewErrorMiddleware(log).Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
