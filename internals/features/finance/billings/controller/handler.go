// file: internals/features/finance/billings/controller/handler.go
package controller

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"schoolku_backend/internals/features/finance/billings/service"
	helper "schoolku_backend/internals/helpers"
)

/* =======================================================
   BOOTSTRAP & HELPERS
======================================================= */

type Handler struct {
	Svc      *service.Service
	Validate *validator.Validate
}

func NewHandler(svc *service.Service) *Handler {
	v := validator.New()
	helper.RegisterJSONTagNames(v)
	return &Handler{Svc: svc, Validate: v}
}

func parseUUID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Params(param)))
}

// bind parses the JSON body into dst and runs the struct tags.
// On failure the error response has already been written; callers return it as-is.
func (h *Handler) bind(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, helper.JsonError(c, http.StatusBadRequest, "invalid json")
	}
	if err := h.Validate.Struct(dst); err != nil {
		return false, helper.JsonValidationError(c, helper.ValidationMessages(err))
	}
	return true, nil
}

// fail maps service errors onto the response envelope.
func fail(c *fiber.Ctx, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return helper.JsonValidationError(c, verr.Fields)

	case errors.Is(err, service.ErrFeeStructureNotFound),
		errors.Is(err, service.ErrStructureNotFound),
		errors.Is(err, service.ErrNoStudentsFound),
		errors.Is(err, service.ErrInvoiceNotFound),
		errors.Is(err, service.ErrPaymentNotFound):
		return helper.JsonError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvoiceNotPayable):
		return helper.JsonError(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrDuplicatePayment),
		errors.Is(err, service.ErrOpenInvoiceExists),
		errors.Is(err, service.ErrDuplicateNumber):
		return helper.JsonError(c, http.StatusConflict, err.Error())

	case errors.Is(err, service.ErrCheckoutUnavailable):
		return helper.JsonError(c, http.StatusServiceUnavailable, err.Error())

	case errors.Is(err, service.ErrInvalidSignature):
		return helper.JsonError(c, http.StatusUnauthorized, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return helper.JsonError(c, http.StatusGatewayTimeout, "request timed out")
	}

	log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("fee request failed")
	return helper.JsonError(c, http.StatusInternalServerError, "internal server error")
}
