// Package workspace bundles the client state of one signed-in browser (or one
// CLI process): its backend cookie jar, session, plan selection, tool views
// and checkout flow.
package workspace

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"dashboard/internal/backend"
	"dashboard/internal/checkout"
	"dashboard/internal/credits"
	"dashboard/internal/domain"
	"dashboard/internal/infra"
	"dashboard/internal/metrics"
	"dashboard/internal/plan"
	"dashboard/internal/providers/payments"
	"dashboard/internal/session"
	"dashboard/internal/tools"
)

// Options configures every workspace built by a factory.
type Options struct {
	BackendURL     string
	BackendTimeout time.Duration
	// HTTPClient overrides the per-workspace client; tests use it to share a jar.
	HTTPClient *http.Client
	Processor  payments.Processor
	Reconcile  bool
	Logger     *infra.Logger
}

// Workspace is one client-state instance.
type Workspace struct {
	ID         string
	Backend    *backend.Client
	Session    *session.Store
	Plans      *plan.Store
	Generator  *tools.View[tools.GeneratorInput]
	Summarizer *tools.View[tools.SummarizerInput]
	Corrector  *tools.View[tools.CorrectorInput]
	Checkout   *checkout.Flow

	logger *infra.Logger

	mu       sync.Mutex
	lastSeen time.Time
	done     chan struct{}
}

// New builds a workspace with id. The session starts unresolved.
func New(id string, opts Options) (*Workspace, error) {
	if opts.Processor == nil {
		return nil, errors.New("workspace: payment processor is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	l := logger.With().Str("workspace", id).Logger()

	client, err := backend.NewClient(backend.Options{
		BaseURL:        opts.BackendURL,
		HTTPClient:     opts.HTTPClient,
		Logger:         &l,
		RequestTimeout: opts.BackendTimeout,
	})
	if err != nil {
		return nil, err
	}
	sess := session.NewStore(client, &l)
	client.OnUnauthorized(sess.Expire)

	meter := func() *credits.Meter {
		return credits.NewMeter(sess, client, credits.Options{Reconcile: opts.Reconcile, Logger: &l})
	}
	plans := plan.NewStore()

	w := &Workspace{
		ID:         id,
		Backend:    client,
		Session:    sess,
		Plans:      plans,
		Generator:  tools.NewView[tools.GeneratorInput](tools.Generator{Backend: client}, meter(), &l),
		Summarizer: tools.NewView[tools.SummarizerInput](tools.Summarizer{Backend: client}, meter(), &l),
		Corrector:  tools.NewView[tools.CorrectorInput](tools.Corrector{Backend: client}, meter(), &l),
		Checkout:   checkout.NewFlow(client, opts.Processor, plans, &l),
		logger:     &l,
		lastSeen:   time.Now(),
		done:       make(chan struct{}),
	}
	go w.watchSession()
	return w, nil
}

// watchSession records transitions until the store is closed.
func (w *Workspace) watchSession() {
	defer close(w.done)
	updates, _ := w.Session.Subscribe()
	first := true
	for snap := range updates {
		if first {
			first = false
			continue
		}
		metrics.RecordSession(snap.Status.String())
		w.logger.Debug().Str("status", snap.Status.String()).Uint64("version", snap.Version).Msg("session changed")
	}
}

// Start resolves the session. It blocks until the backend answered.
func (w *Workspace) Start(ctx context.Context) session.Snapshot {
	return w.Session.Check(ctx)
}

// Resolve starts the session check in the background and waits at most wait
// for it to finish. The returned snapshot may still be unresolved; the check
// keeps running and later requests observe its outcome.
func (w *Workspace) Resolve(ctx context.Context, wait time.Duration) session.Snapshot {
	if snap := w.Session.Snapshot(); snap.Resolved() {
		return snap
	}
	updates, unsubscribe := w.Session.Subscribe()
	defer unsubscribe()
	go w.Session.Check(context.WithoutCancel(ctx))

	timer := time.NewTimer(wait)
	defer timer.Stop()
	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return w.Session.Snapshot()
			}
			if snap.Resolved() {
				return snap
			}
		case <-timer.C:
			return w.Session.Snapshot()
		case <-ctx.Done():
			return w.Session.Snapshot()
		}
	}
}

// Profile loads the full profile for the dashboard view.
func (w *Workspace) Profile(ctx context.Context) (*domain.Profile, error) {
	return w.Backend.Profile(ctx)
}

// Logout signs out and forgets the plan selection.
func (w *Workspace) Logout(ctx context.Context) error {
	err := w.Session.Logout(ctx)
	w.Plans.Clear()
	return err
}

// Touch marks the workspace as used now.
func (w *Workspace) Touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

// LastSeen reports the last Touch.
func (w *Workspace) LastSeen() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// Close releases the workspace's subscriptions.
func (w *Workspace) Close() {
	w.Session.Close()
	<-w.done
}
