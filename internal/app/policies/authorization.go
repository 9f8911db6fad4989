package policies

import (
	"context"
	"errors"

	"tourway/internal/domain/user"
)

// ErrAdminRequired is returned when a privileged bus message is dispatched
// by a non-administrator actor.
var ErrAdminRequired = errors.New("policies: administrator privileges required")

// AdminOnly marks bus messages that only administrators may execute. The
// actor id is the requesting user; enforced reports whether the restriction
// applies to this particular message instance, so messages that are only
// privileged in some shapes (an unscoped listing, say) can opt in per call.
type AdminOnly interface {
	AdminActor() (actorID string, enforced bool)
}

// RoleChecker answers role questions for the gate.
type RoleChecker interface {
	IsAdmin(ctx context.Context, id user.ID) (bool, error)
}

// AdminGate vets bus messages before they reach their handler. Messages
// that do not implement AdminOnly pass through untouched.
type AdminGate struct {
	Roles RoleChecker
}

func (g AdminGate) Authorize(ctx context.Context, message any) error {
	msg, ok := message.(AdminOnly)
	if !ok {
		return nil
	}
	actor, enforced := msg.AdminActor()
	if !enforced {
		return nil
	}
	if actor == "" {
		return ErrAdminRequired
	}
	isAdmin, err := g.Roles.IsAdmin(ctx, user.ID(actor))
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrAdminRequired
	}
	return nil
}
