package notifications

import (
	"context"

	"github.com/angelmondragon/mia-backend/internal/tracking"
	"go.uber.org/multierr"
)

// Fanout delivers each alert to every notifier and joins their failures.
type Fanout []tracking.Notifier

// NotifyPriceDrop implements tracking.Notifier.
func (f Fanout) NotifyPriceDrop(ctx context.Context, email string, drop tracking.PriceDrop) error {
	var err error
	for _, notifier := range f {
		if notifier == nil {
			continue
		}
		err = multierr.Append(err, notifier.NotifyPriceDrop(ctx, email, drop))
	}
	return err
}
