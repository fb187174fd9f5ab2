// file: internals/route/details/finance_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"

	feeapi "schoolku_backend/internals/features/finance/billings/controller"
	feeRoute "schoolku_backend/internals/features/finance/billings/routes"
	"schoolku_backend/internals/features/finance/billings/service"
	authMiddleware "schoolku_backend/internals/middlewares/auth"
)

// FinanceRoutes mounts /api/fees: the public gateway webhook first, then the
// token-protected fee office API.
func FinanceRoutes(app *fiber.App, svc *service.Service, jwtSecret string) {
	h := feeapi.NewHandler(svc)

	fees := app.Group("/api/fees")
	feeRoute.FeeWebhookRoutes(fees, h)

	protected := fees.Group("", authMiddleware.AuthMiddleware(jwtSecret))
	feeRoute.FeeRoutes(protected, h)
}
