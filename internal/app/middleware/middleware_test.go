package middleware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourway/internal/app/commands"
	"tourway/internal/app/middleware"
	appoutbox "tourway/internal/app/outbox"
	"tourway/internal/app/uow"
	"tourway/internal/infra/storage/memory"
)

type echoCommand struct {
	name     string
	idemKey  string
	sentinel string
}

func (c echoCommand) Key() string { return c.name }

func (c echoCommand) IdempotencyKey() string { return c.idemKey }

func (c echoCommand) ResultPrototype() any { return &echoResult{} }

type echoResult struct {
	Sentinel string `json:"sentinel"`
}

func newEchoBus(calls *int, fail error) *commands.InMemoryBus {
	bus := commands.NewInMemoryBus()
	bus.RegisterRaw("echo", func(ctx context.Context, cmd commands.Command) (any, error) {
		*calls++
		if fail != nil {
			return nil, fail
		}
		ec := cmd.(echoCommand)
		return &echoResult{Sentinel: ec.sentinel}, nil
	})
	return bus
}

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	calls := 0
	bus := middleware.ChainCommands(
		newEchoBus(&calls, nil),
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
	)
	ctx := context.Background()
	cmd := echoCommand{name: "echo", idemKey: "key-1", sentinel: "first"}

	first, err := bus.Dispatch(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, "first", first.(*echoResult).Sentinel)
	assert.Equal(t, 1, calls)

	// Same key: the stored payload is replayed, the handler does not run.
	cmd.sentinel = "second"
	replayed, err := bus.Dispatch(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, "first", replayed.(*echoResult).Sentinel)
	assert.Equal(t, 1, calls)

	// A fresh key executes again.
	cmd.idemKey = "key-2"
	fresh, err := bus.Dispatch(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, "second", fresh.(*echoResult).Sentinel)
	assert.Equal(t, 2, calls)
}

func TestIdempotencySkipsCommandsWithoutKey(t *testing.T) {
	calls := 0
	bus := middleware.ChainCommands(
		newEchoBus(&calls, nil),
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
	)
	ctx := context.Background()
	cmd := echoCommand{name: "echo", sentinel: "x"}

	_, err := bus.Dispatch(ctx, cmd)
	require.NoError(t, err)
	_, err = bus.Dispatch(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestIdempotencyCachesFailures(t *testing.T) {
	calls := 0
	failure := errors.New("gateway timeout")
	bus := middleware.ChainCommands(
		newEchoBus(&calls, failure),
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
	)
	ctx := context.Background()
	cmd := echoCommand{name: "echo", idemKey: "key-1"}

	_, err := bus.Dispatch(ctx, cmd)
	require.EqualError(t, err, "gateway timeout")
	assert.Equal(t, 1, calls)

	_, err = bus.Dispatch(ctx, cmd)
	require.EqualError(t, err, "gateway timeout")
	assert.Equal(t, 1, calls, "failed outcome must be replayed, not re-executed")
}

type trackedUnit struct {
	memory.Unit
	committed  bool
	rolledBack bool
}

func (u *trackedUnit) Commit(ctx context.Context) error {
	u.committed = true
	return nil
}

func (u *trackedUnit) Rollback(ctx context.Context) error {
	u.rolledBack = true
	return nil
}

type trackedFactory struct {
	unit *trackedUnit
}

func (f *trackedFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	return f.unit, nil
}

func TestTransactionCommitsOnSuccess(t *testing.T) {
	calls := 0
	factory := &trackedFactory{unit: &trackedUnit{}}
	bus := middleware.ChainCommands(
		newEchoBus(&calls, nil),
		middleware.Transaction(factory),
	)

	_, err := bus.Dispatch(context.Background(), echoCommand{name: "echo", sentinel: "x"})
	require.NoError(t, err)
	assert.True(t, factory.unit.committed)
	assert.False(t, factory.unit.rolledBack)
}

func TestTransactionRollsBackOnFailure(t *testing.T) {
	calls := 0
	factory := &trackedFactory{unit: &trackedUnit{}}
	bus := middleware.ChainCommands(
		newEchoBus(&calls, errors.New("boom")),
		middleware.Transaction(factory),
	)

	_, err := bus.Dispatch(context.Background(), echoCommand{name: "echo"})
	require.Error(t, err)
	assert.False(t, factory.unit.committed)
	assert.True(t, factory.unit.rolledBack)
}

type sequencedUnit struct {
	trackedUnit
	seq *[]string
}

func (u *sequencedUnit) Commit(ctx context.Context) error {
	*u.seq = append(*u.seq, "commit")
	return u.trackedUnit.Commit(ctx)
}

type sequencedOutbox struct {
	seq *[]string
}

func (b sequencedOutbox) Add(ctx context.Context, record appoutbox.EventRecord) error { return nil }

func (b sequencedOutbox) Flush(ctx context.Context) error {
	*b.seq = append(*b.seq, "flush")
	return nil
}

func TestOutboxFlushFollowsCommit(t *testing.T) {
	var seq []string
	unit := &sequencedUnit{seq: &seq}
	calls := 0
	bus := middleware.ChainCommands(
		newEchoBus(&calls, nil),
		middleware.OutboxFlush(sequencedOutbox{seq: &seq}),
		middleware.Transaction(&sequencedFactory{unit: unit}),
	)

	_, err := bus.Dispatch(context.Background(), echoCommand{name: "echo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"commit", "flush"}, seq, "records must not reach the broker before the unit of work commits")
}

type sequencedFactory struct {
	unit *sequencedUnit
}

func (f *sequencedFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	return f.unit, nil
}

type denyAll struct {
	err error
}

func (a denyAll) Authorize(ctx context.Context, message any) error { return a.err }

func TestAuthorizationBlocksDispatch(t *testing.T) {
	calls := 0
	denied := errors.New("administrator privileges required")
	bus := middleware.ChainCommands(
		newEchoBus(&calls, nil),
		middleware.Authorization(denyAll{err: denied}),
	)

	_, err := bus.Dispatch(context.Background(), echoCommand{name: "echo"})
	require.ErrorIs(t, err, denied)
	assert.Zero(t, calls, "handler must not run for a rejected command")
}

func TestAuthorizationPassesThrough(t *testing.T) {
	calls := 0
	bus := middleware.ChainCommands(
		newEchoBus(&calls, nil),
		middleware.Authorization(denyAll{}),
	)

	_, err := bus.Dispatch(context.Background(), echoCommand{name: "echo", sentinel: "ok"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestOutboxFlushAfterSuccess(t *testing.T) {
	box := memory.NewOutbox()
	require.NoError(t, box.Add(context.Background(), appoutbox.EventRecord{ID: "evt-1", Name: "booking.confirmed"}))

	calls := 0
	bus := middleware.ChainCommands(
		newEchoBus(&calls, nil),
		middleware.OutboxFlush(box),
	)
	_, err := bus.Dispatch(context.Background(), echoCommand{name: "echo"})
	require.NoError(t, err)
	assert.Empty(t, box.Records())
}

func TestOutboxNotFlushedAfterFailure(t *testing.T) {
	box := memory.NewOutbox()
	require.NoError(t, box.Add(context.Background(), appoutbox.EventRecord{ID: "evt-1", Name: "booking.confirmed"}))

	calls := 0
	bus := middleware.ChainCommands(
		newEchoBus(&calls, errors.New("boom")),
		middleware.OutboxFlush(box),
	)
	_, err := bus.Dispatch(context.Background(), echoCommand{name: "echo"})
	require.Error(t, err)
	assert.Len(t, box.Records(), 1)
}
