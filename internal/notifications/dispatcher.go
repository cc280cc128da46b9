package notifications

import (
	"context"

	"github.com/assetdeskhq/assetdesk-backend/pkg/db/models"
	"github.com/assetdeskhq/assetdesk-backend/pkg/logger"
	"go.uber.org/multierr"
)

// Dispatcher delivers notifications after a lifecycle transaction has
// committed. Delivery is best effort: failures are logged and never surfaced
// to the caller, since the state change they announce is already durable.
type Dispatcher interface {
	Dispatch(ctx context.Context, items []models.Notification)
}

type dispatcher struct {
	repo Repository
	logg *logger.Logger
}

// NewDispatcher wires the post-commit notification dispatcher.
func NewDispatcher(repo Repository, logg *logger.Logger) Dispatcher {
	return &dispatcher{repo: repo, logg: logg}
}

func (d *dispatcher) Dispatch(ctx context.Context, items []models.Notification) {
	var errs error
	for i := range items {
		if err := d.repo.Create(ctx, &items[i]); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil && d.logg != nil {
		d.logg.Error(ctx, "notification.dispatch_failed", errs)
	}
}
