package route

import (
	"github.com/gofiber/fiber/v2"

	"schoolku_backend/internals/constants"
	feeapi "schoolku_backend/internals/features/finance/billings/controller"
	middlewares "schoolku_backend/internals/middlewares"
	authMiddleware "schoolku_backend/internals/middlewares/auth"
)

/*
Fee office routes, mounted under /api/fees behind AuthMiddleware.
Reads are open to any signed-in staff; writes are role-gated.
*/
func FeeRoutes(r fiber.Router, h *feeapi.Handler) {
	managers := authMiddleware.OnlyRoles(constants.RoleError("fee management", constants.FinanceManagers...), constants.FinanceManagers...)
	collectors := authMiddleware.OnlyRoles(constants.RoleError("fee collection", constants.FinanceCollectors...), constants.FinanceCollectors...)
	throttle := middlewares.PaymentRateLimiter(30)
	heads := authMiddleware.OnlyRoles(constants.RoleError("deleting fee structures", constants.SchoolHeads...), constants.SchoolHeads...)

	// =========================
	// Fee Structures
	// =========================
	r.Get("/structures", h.ListFeeStructures)
	r.Get("/structures/:id", h.GetFeeStructure)
	r.Post("/structures", managers, h.CreateFeeStructure)
	r.Put("/structures/:id", managers, h.UpdateFeeStructure)
	r.Delete("/structures/:id", heads, h.DeleteFeeStructure)

	// =========================
	// Invoices
	// =========================
	r.Post("/invoices/generate", managers, h.GenerateInvoices)
	r.Get("/invoices", h.ListInvoices)
	r.Get("/invoices/student/:studentId", h.StudentInvoices)
	r.Get("/invoices/:id", h.GetInvoice)
	r.Post("/invoices/:id/checkout", collectors, throttle, h.CreateCheckout)

	// =========================
	// Payments
	// =========================
	r.Post("/payments", collectors, throttle, h.RecordPayment)
	r.Get("/payments/:id", h.GetReceipt)

	// =========================
	// Reports
	// =========================
	r.Get("/defaulters", h.ListDefaulters)
	r.Get("/stats", h.FeeStats)
}

// FeeWebhookRoutes must be registered before the auth middleware; the gateway
// authenticates with the notification signature instead of a token.
func FeeWebhookRoutes(r fiber.Router, h *feeapi.Handler) {
	r.Post("/payments/notification", h.PaymentNotification)
}
