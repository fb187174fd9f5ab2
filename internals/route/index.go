// file: internals/route/index.go
package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"schoolku_backend/internals/features/finance/billings/service"
	routeDetails "schoolku_backend/internals/route/details"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db Pinger, svc *service.Service, jwtSecret string) {
	startTime = time.Now()

	log.Info().Msg("Setting up BaseRoutes...")
	BaseRoutes(app, db)

	log.Info().Bool("checkout", svc.CheckoutEnabled()).Msg("Mounting Finance routes...")
	routeDetails.FinanceRoutes(app, svc, jwtSecret)
}
