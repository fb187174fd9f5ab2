package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"schoolku_backend/internals/configs"
	"schoolku_backend/internals/middlewares/logger"
)

func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware(configs.CORSOrigins))
	app.Use(logger.LoggerMiddleware())
	app.Use(GlobalRateLimiter(configs.GetIntEnv("RATE_LIMIT_PER_MINUTE", 120)))
}
