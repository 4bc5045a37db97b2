package ports

import (
	"context"
	"errors"
)

// Notifiers fans an alert out to every notifier; failures are joined.
type Notifiers []AlertNotifier

func (n Notifiers) NotifyPestRisk(ctx context.Context, alert PestAlert) error {
	var errs []error
	for _, notifier := range n {
		if notifier == nil {
			continue
		}
		if err := notifier.NotifyPestRisk(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
