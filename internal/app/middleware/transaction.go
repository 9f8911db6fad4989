package middleware

import (
	"context"

	"tourway/internal/app/commands"
	"tourway/internal/app/uow"
)

// Transaction opens a unit of work per command when none is active yet,
// committing on success and rolling back on failure.
func Transaction(factory uow.UoWFactory) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if _, ok := uow.FromContext(ctx); ok {
				return nextFn(ctx, cmd)
			}
			unit, err := factory.Begin(ctx, uow.TxOptions{})
			if err != nil {
				return nil, err
			}
			if injector, ok := unit.(interface {
				InjectContext(context.Context) context.Context
			}); ok {
				ctx = injector.InjectContext(ctx)
			}
			ctx = uow.ContextWithUnitOfWork(ctx, unit)
			result, err := nextFn(ctx, cmd)
			if err != nil {
				_ = unit.Rollback(ctx)
				return nil, err
			}
			if err := unit.Commit(ctx); err != nil {
				return nil, err
			}
			return result, nil
		})
	}
}
