// file: internals/features/finance/billings/controller/fee_structure_controller.go
package controller

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"schoolku_backend/internals/features/finance/billings/dto"
	"schoolku_backend/internals/features/finance/billings/service"
	helper "schoolku_backend/internals/helpers"
)

/* =======================================================
   FEE STRUCTURES
======================================================= */

// GET /api/fees/structures?class=&academic_year=&status=
func (h *Handler) ListFeeStructures(c *fiber.Ctx) error {
	rows, err := h.Svc.ListFeeStructures(c.UserContext(), service.StructureFilter{
		Class:        strings.TrimSpace(c.Query("class")),
		AcademicYear: strings.TrimSpace(c.Query("academic_year")),
		Status:       strings.ToLower(strings.TrimSpace(c.Query("status"))),
	})
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromFeeStructures(rows), nil)
}

// GET /api/fees/structures/:id
func (h *Handler) GetFeeStructure(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return helper.JsonError(c, http.StatusBadRequest, "invalid id")
	}
	m, err := h.Svc.GetFeeStructure(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromFeeStructure(m))
}

// POST /api/fees/structures
func (h *Handler) CreateFeeStructure(c *fiber.Ctx) error {
	var req dto.CreateFeeStructureRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	in, err := req.ToInput()
	if err != nil {
		return fail(c, err)
	}
	m, err := h.Svc.CreateFeeStructure(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonCreated(c, "fee structure created", dto.FromFeeStructure(m))
}

// PUT /api/fees/structures/:id
func (h *Handler) UpdateFeeStructure(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return helper.JsonError(c, http.StatusBadRequest, "invalid id")
	}
	var req dto.UpdateFeeStructureRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}
	in, err := req.ToInput()
	if err != nil {
		return fail(c, err)
	}
	m, err := h.Svc.UpdateFeeStructure(c.UserContext(), id, in)
	if err != nil {
		return fail(c, err)
	}
	return helper.JsonUpdated(c, "fee structure updated", dto.FromFeeStructure(m))
}

// DELETE /api/fees/structures/:id
func (h *Handler) DeleteFeeStructure(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return helper.JsonError(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.Svc.DeleteFeeStructure(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return helper.JsonDeleted(c, "fee structure deleted", fiber.Map{"id": id})
}
