package push

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/mkadlec/spajz/internal/model"
)

// Sender delivers one payload to one subscription. *Service implements it;
// tests substitute a fake transport.
type Sender interface {
	Send(sub *model.PushSubscription, payload Payload) error
}

// SubscriptionRemover removes a dead subscription from the registry.
// *store.PushStore implements it; removal must be idempotent.
type SubscriptionRemover interface {
	DeleteByEndpoint(endpoint string) error
}

// Report aggregates the outcome of one dispatch. It is informational only
// and never changes the caller's control flow.
type Report struct {
	Attempted int  `json:"attempted"`
	Sent      int  `json:"sent"`
	Removed   int  `json:"removed"`
	Failed    int  `json:"failed"`
	Disabled  bool `json:"disabled,omitempty"`

	// removedEndpoints lists which endpoints were removed, so callers
	// aggregating multiple dispatches can dedupe them.
	removedEndpoints []string
}

func (r *Report) add(other Report) {
	r.Attempted += other.Attempted
	r.Sent += other.Sent
	r.Removed += other.Removed
	r.Failed += other.Failed
	r.Disabled = r.Disabled || other.Disabled
	r.removedEndpoints = append(r.removedEndpoints, other.removedEndpoints...)
}

// Dispatcher fans a payload out to every subscription concurrently.
type Dispatcher struct {
	sender  Sender
	remover SubscriptionRemover
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher. A nil sender means push is not
// configured; Dispatch then reports a disabled no-op.
func NewDispatcher(sender Sender, remover SubscriptionRemover, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, remover: remover, logger: logger}
}

// Dispatch sends the payload to each subscription in its own goroutine and
// waits for every attempt to settle. One subscription's failure never
// blocks or aborts the others. A 404/410-class response removes that
// subscription from the registry; any other failure is logged and the
// subscription kept for the next run.
func (d *Dispatcher) Dispatch(payload Payload, subs []model.PushSubscription) Report {
	if d.sender == nil {
		d.logger.Warn("push not configured, skipping dispatch", "title", payload.Title)
		return Report{Disabled: true}
	}
	if len(subs) == 0 {
		return Report{}
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		report = Report{Attempted: len(subs)}
	)

	for i := range subs {
		sub := subs[i]
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := d.sender.Send(&sub, payload)
			if err == nil {
				mu.Lock()
				report.Sent++
				mu.Unlock()
				return
			}

			if errors.Is(err, ErrExpired) {
				if derr := d.remover.DeleteByEndpoint(sub.Endpoint); derr != nil {
					d.logger.Error("remove expired subscription", "endpoint", sub.Endpoint, "error", derr)
				} else {
					d.logger.Info("removed expired subscription", "endpoint", sub.Endpoint)
				}
				mu.Lock()
				report.Removed++
				report.removedEndpoints = append(report.removedEndpoints, sub.Endpoint)
				mu.Unlock()
				return
			}

			d.logger.Warn("push delivery failed", "endpoint", sub.Endpoint, "error", err)
			mu.Lock()
			report.Failed++
			mu.Unlock()
		}()
	}

	wg.Wait()
	return report
}
