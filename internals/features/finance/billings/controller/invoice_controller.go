// file: internals/features/finance/billings/controller/invoice_controller.go
package controller

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"schoolku_backend/internals/features/finance/billings/dto"
	"schoolku_backend/internals/features/finance/billings/service"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

/* =======================================================
   INVOICES
======================================================= */

// POST /api/fees/invoices/generate
func (h *Handler) GenerateInvoices(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.GenerateInvoicesRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	res, err := h.Svc.IssueInvoices(c.UserContext(), actor, req.ToInput())
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonCreated(c, "invoices generated", dto.FromIssueResult(res, h.Svc.Today()))
}

// GET /api/fees/invoices?search=&status=&class=&academic_year=&page=&per_page=
func (h *Handler) ListInvoices(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, defaultPerPage, maxPerPage)

	rows, total, err := h.Svc.ListInvoices(c.UserContext(), service.InvoiceFilter{
		Search:       strings.TrimSpace(c.Query("search")),
		Status:       c.Query("status"),
		Class:        strings.TrimSpace(c.Query("class")),
		AcademicYear: strings.TrimSpace(c.Query("academic_year")),
		Offset:       p.Offset,
		Limit:        p.Limit,
	})
	if err != nil {
		return fail(c, err)
	}

	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage, len(rows))
	return helper.JsonList(c, "ok", dto.FromInvoices(rows, h.Svc.Today()), &pg)
}

// GET /api/fees/invoices/student/:studentId
func (h *Handler) StudentInvoices(c *fiber.Ctx) error {
	id, err := parseUUID(c, "studentId")
	if err != nil {
		return helper.JsonError(c, http.StatusBadRequest, "invalid student id")
	}
	rows, err := h.Svc.StudentInvoices(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromInvoices(rows, h.Svc.Today()), nil)
}

// GET /api/fees/invoices/:id
func (h *Handler) GetInvoice(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return helper.JsonError(c, http.StatusBadRequest, "invalid id")
	}
	inv, err := h.Svc.GetInvoice(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromInvoice(inv, h.Svc.Today()))
}

// POST /api/fees/invoices/:id/checkout
func (h *Handler) CreateCheckout(c *fiber.Ctx) error {
	actor, err := helperAuth.ActorFromCtx(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return helper.JsonError(c, http.StatusBadRequest, "invalid id")
	}
	sess, err := h.Svc.CreateCheckout(c.UserContext(), actor, id)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonCreated(c, "checkout created", dto.FromCheckout(sess))
}

/* =======================================================
   REPORTS
======================================================= */

// GET /api/fees/defaulters?class=&academic_year=
func (h *Handler) ListDefaulters(c *fiber.Ctx) error {
	rows, err := h.Svc.FindDefaulters(c.UserContext(), c.Query("class"), c.Query("academic_year"))
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromDefaulters(rows, h.Svc.Today()), nil)
}

// GET /api/fees/stats?academic_year=
func (h *Handler) FeeStats(c *fiber.Ctx) error {
	st, err := h.Svc.FeeStats(c.UserContext(), c.Query("academic_year"))
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromFeeStats(st))
}
