package itineraries_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourway/internal/app/services/itineraries"
	domainitinerary "tourway/internal/domain/itinerary"
	domainuser "tourway/internal/domain/user"
	"tourway/internal/infra/storage/memory"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newService() *itineraries.Service {
	return &itineraries.Service{
		Itineraries: memory.NewItineraryRepository(),
		Now:         func() time.Time { return fixedNow },
	}
}

func draft(title string) itineraries.DraftParams {
	return itineraries.DraftParams{
		Title:       title,
		Destination: "Kyoto",
		Country:     "Japan",
		Travelers:   domainitinerary.TravelerCounts{Adults: 1},
	}
}

func TestCreateAndGetAsOwner(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", draft("Temples and Tea"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domainitinerary.StatusDraft, created.Status)

	got, err := svc.Get(ctx, created.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Temples and Tea", got.Title)
}

func TestGetPrivatePlanForbiddenToStrangers(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", draft("Private Plan"))
	require.NoError(t, err)

	_, err = svc.Get(ctx, created.ID, "user-2")
	assert.ErrorIs(t, err, itineraries.ErrForbidden)
}

func TestGetPublicPlanReadableByAnyone(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	params := draft("Shared Plan")
	params.IsPublic = true
	created, err := svc.Create(ctx, "user-1", params)
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID, "user-2")
	require.NoError(t, err)
	assert.Equal(t, "Shared Plan", got.Title)
}

func TestListMineDefaultsToDrafts(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	first, err := svc.Create(ctx, "user-1", draft("Draft One"))
	require.NoError(t, err)
	published, err := svc.Create(ctx, "user-1", draft("Going Live"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-2", draft("Someone Else"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, published.ID, "user-1", itineraries.UpdateParams{
		DraftParams: draft("Going Live"),
		Status:      domainitinerary.StatusPublished,
	})
	require.NoError(t, err)

	drafts, err := svc.ListMine(ctx, "user-1", "", 0, 0)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, first.ID, drafts[0].ID)

	live, err := svc.ListMine(ctx, "user-1", domainitinerary.StatusPublished, 0, 0)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, published.ID, live[0].ID)
}

func TestListMineRejectsUnknownStatus(t *testing.T) {
	svc := newService()
	_, err := svc.ListMine(context.Background(), "user-1", "archived", 0, 0)
	assert.ErrorIs(t, err, domainitinerary.ErrInvalidStatus)
}

func TestUpdateOwnerOnly(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", draft("Mine"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, "user-2", itineraries.UpdateParams{DraftParams: draft("Hijacked")})
	assert.ErrorIs(t, err, itineraries.ErrForbidden)

	updated, err := svc.Update(ctx, created.ID, "user-1", itineraries.UpdateParams{DraftParams: draft("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestUpdatePublicPlanStillOwnerOnly(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	params := draft("Shared Plan")
	params.IsPublic = true
	created, err := svc.Create(ctx, "user-1", params)
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, "user-2", itineraries.UpdateParams{DraftParams: params})
	assert.ErrorIs(t, err, itineraries.ErrForbidden)
}

func TestDeleteSoftDeletes(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", draft("Ephemeral"))
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, created.ID, "user-2"), itineraries.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, created.ID, "user-1"))

	_, err = svc.Get(ctx, created.ID, "user-1")
	assert.ErrorIs(t, err, domainitinerary.ErrNotFound)

	items, err := svc.ListMine(ctx, "user-1", "", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeleteMissingPlan(t *testing.T) {
	svc := newService()
	err := svc.Delete(context.Background(), "nope", domainuser.ID("user-1"))
	assert.ErrorIs(t, err, domainitinerary.ErrNotFound)
}
