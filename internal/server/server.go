package server

import (
	"log"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"notesquest-be/internal/bootstrap"
	"notesquest-be/internal/config"
	"notesquest-be/internal/pkg/serverutils"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:    int(cfg.App.MaxUploadBytes),
		ErrorHandler: serverutils.NewErrorHandler(container.Logger),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	app.Use(otelfiber.Middleware())

	app.Use(serverutils.NewAuthMiddleware(cfg.Auth.Enabled, cfg.Auth.JWTSecret))

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("[INFO] Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.HealthController.RegisterRoutes(api)
	c.DocumentController.RegisterRoutes(api)
	c.GenerationController.RegisterRoutes(api)
	c.ChatController.RegisterRoutes(api)
}
