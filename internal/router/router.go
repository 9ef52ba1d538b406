package router

import (
	"registry-web/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func Setup(app *fiber.App, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"app":    cfg.AppName,
		})
	})

	// Web routes (HTML)
	web := app.Group("")
	setupWebRoutes(web)

	// API routes (JSON)
	api := app.Group("/api/v1")
	SetupAPIRoutes(api, db, rdb, cfg)
}

func setupWebRoutes(router fiber.Router) {
	router.Get("/login", func(c *fiber.Ctx) error {
		return c.Render("auth/login", fiber.Map{
			"Title": "Login",
		})
	})

	router.Get("/", func(c *fiber.Ctx) error {
		return c.Render("dashboard/index", fiber.Map{
			"Title": "Dashboard",
		})
	})

	router.Get("/uploads", func(c *fiber.Ctx) error {
		return c.Render("uploads/index", fiber.Map{
			"Title": "Upload Sessions",
		})
	})

	router.Get("/uploads/new", func(c *fiber.Ctx) error {
		return c.Render("uploads/new", fiber.Map{
			"Title": "New Upload",
		})
	})

	router.Get("/uploads/:id", func(c *fiber.Ctx) error {
		return c.Render("uploads/detail", fiber.Map{
			"Title": "Upload Detail",
		})
	})
}
