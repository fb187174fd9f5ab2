package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Locals keys written by the JWT middleware
const (
	LocUserID   = "user_id"
	LocUserRole = "userRole"
)

// Actor is who performs a mutating operation. Passed explicitly into services.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// SystemActor records gateway-driven and scheduled work.
var SystemActor = Actor{UserID: uuid.Nil, Role: "system"}

func (a Actor) IsSystem() bool { return a.UserID == uuid.Nil }

// UserIDPtr is nil for the system actor, for nullable "by" columns.
func (a Actor) UserIDPtr() *uuid.UUID {
	if a.IsSystem() {
		return nil
	}
	id := a.UserID
	return &id
}

// ActorFromCtx reads the actor the auth middleware stored in locals.
func ActorFromCtx(c *fiber.Ctx) (Actor, error) {
	raw, _ := c.Locals(LocUserID).(string)
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return Actor{}, fiber.NewError(fiber.StatusUnauthorized, "user_id not found in token")
	}
	role, _ := c.Locals(LocUserRole).(string)
	return Actor{UserID: id, Role: role}, nil
}
