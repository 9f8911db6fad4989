package policies

import (
	"context"

	"tourway/internal/domain/user"
)

// Authorizer answers ownership/privilege questions for booking operations.
type Authorizer interface {
	IsOwnerOrAdmin(ctx context.Context, ownerID, requesterID user.ID) (bool, error)
}
