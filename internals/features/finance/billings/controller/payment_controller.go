// file: internals/features/finance/billings/controller/payment_controller.go
package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"schoolku_backend/internals/features/finance/billings/dto"
	"schoolku_backend/internals/features/finance/billings/service"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

/* =======================================================
   PAYMENTS
======================================================= */

// POST /api/fees/payments
func (h *Handler) RecordPayment(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.RecordPaymentRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	in, err := req.ToInput()
	if err != nil {
		return fail(c, err)
	}

	res, err := h.Svc.RecordPayment(c.UserContext(), actor, in)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonCreated(c, "payment recorded", dto.FromPaymentResult(res, h.Svc.Today()))
}

// GET /api/fees/payments/:id
func (h *Handler) GetReceipt(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return helper.JsonError(c, http.StatusBadRequest, "invalid id")
	}
	p, err := h.Svc.GetReceipt(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromReceipt(p, h.Svc.Today()))
}

/* =======================================================
   GATEWAY WEBHOOK (public, signature-checked)
======================================================= */

// POST /api/fees/payments/notification
func (h *Handler) PaymentNotification(c *fiber.Ctx) error {
	raw := map[string]any{}
	if err := c.BodyParser(&raw); err != nil {
		return helper.JsonError(c, http.StatusBadRequest, "invalid json")
	}

	n := service.GatewayNotification{
		OrderID:           str(raw["order_id"]),
		StatusCode:        str(raw["status_code"]),
		GrossAmount:       str(raw["gross_amount"]),
		SignatureKey:      str(raw["signature_key"]),
		TransactionStatus: str(raw["transaction_status"]),
		FraudStatus:       str(raw["fraud_status"]),
		TransactionID:     str(raw["transaction_id"]),
		TransactionTime:   str(raw["transaction_time"]),
		PaymentType:       str(raw["payment_type"]),
		Raw:               raw,
	}
	// never persist the signature
	delete(n.Raw, "signature_key")

	outcome, err := h.Svc.ApplyGatewayNotification(c.UserContext(), n)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSignature) {
			log.Warn().Str("order_id", n.OrderID).Str("ip", c.IP()).Msg("notification with invalid signature")
			return helper.JsonError(c, http.StatusUnauthorized, "invalid signature")
		}
		return fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": outcome})
}

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
