package notifier

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/mufasadev/ramp-reconciler/internal/domain/notifier"
	"github.com/mufasadev/ramp-reconciler/pkg/log"
)

// Fanout delivers to every adapter. One failing adapter does not stop the others;
// all failures are returned joined.
type Fanout struct {
	notifiers []notifier.Notifier
}

func NewFanout(notifiers ...notifier.Notifier) *Fanout {
	return &Fanout{notifiers: notifiers}
}

func (f *Fanout) Notify(ctx context.Context, n notifier.Notification) error {
	var errs []error
	for _, nt := range f.notifiers {
		if err := nt.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier only writes the notification to the log. It is the adapter used when
// no broker is configured.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: log.GetLogger()}
}

func (l *LogNotifier) Notify(_ context.Context, n notifier.Notification) error {
	l.logger.Info().
		Str("audience", string(n.Audience)).
		Str("txid", n.Event.TxID).
		Str("old_status", n.Event.OldStatus.String()).
		Str("new_status", n.Event.NewStatus.String()).
		Msg(n.Message)
	return nil
}
