package policies_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourway/internal/app/policies"
	domainuser "tourway/internal/domain/user"
)

type staticRoles struct {
	admins map[domainuser.ID]bool
	err    error
}

func (r staticRoles) IsAdmin(ctx context.Context, id domainuser.ID) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	return r.admins[id], nil
}

type plainMessage struct{}

type gatedMessage struct {
	actor    string
	enforced bool
}

func (m gatedMessage) AdminActor() (string, bool) { return m.actor, m.enforced }

func TestAdminGateIgnoresUnmarkedMessages(t *testing.T) {
	gate := policies.AdminGate{Roles: staticRoles{err: errors.New("must not be consulted")}}
	require.NoError(t, gate.Authorize(context.Background(), plainMessage{}))
}

func TestAdminGateSkipsUnenforcedInstances(t *testing.T) {
	gate := policies.AdminGate{Roles: staticRoles{}}
	require.NoError(t, gate.Authorize(context.Background(), gatedMessage{actor: "usr-1"}))
}

func TestAdminGateRejectsAnonymousActor(t *testing.T) {
	gate := policies.AdminGate{Roles: staticRoles{}}
	err := gate.Authorize(context.Background(), gatedMessage{enforced: true})
	assert.ErrorIs(t, err, policies.ErrAdminRequired)
}

func TestAdminGateRejectsNonAdmin(t *testing.T) {
	gate := policies.AdminGate{Roles: staticRoles{admins: map[domainuser.ID]bool{"usr-admin": true}}}
	err := gate.Authorize(context.Background(), gatedMessage{actor: "usr-traveler", enforced: true})
	assert.ErrorIs(t, err, policies.ErrAdminRequired)
}

func TestAdminGateAllowsAdmin(t *testing.T) {
	gate := policies.AdminGate{Roles: staticRoles{admins: map[domainuser.ID]bool{"usr-admin": true}}}
	require.NoError(t, gate.Authorize(context.Background(), gatedMessage{actor: "usr-admin", enforced: true}))
}

func TestAdminGatePropagatesLookupFailure(t *testing.T) {
	lookupErr := errors.New("store offline")
	gate := policies.AdminGate{Roles: staticRoles{err: lookupErr}}
	err := gate.Authorize(context.Background(), gatedMessage{actor: "usr-1", enforced: true})
	assert.ErrorIs(t, err, lookupErr)
}
