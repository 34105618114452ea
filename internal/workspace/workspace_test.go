package workspace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dashboard/internal/providers/payments"
	"dashboard/internal/session"
	"dashboard/internal/tools"
)

func newBackend(t *testing.T, profileStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/auth/check", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/users/profile", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(profileStatus)
		if profileStatus == http.StatusOK {
			_, _ = w.Write([]byte(`{"credits":3}`))
		}
	})
	mux.HandleFunc("/api/users/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewRequiresProcessor(t *testing.T) {
	if _, err := New("x", Options{BackendURL: "http://localhost"}); err == nil {
		t.Fatalf("New() expected error without processor")
	}
}

func TestUnauthorizedResponseExpiresSession(t *testing.T) {
	srv := newBackend(t, http.StatusUnauthorized)
	w, err := New("ws-1", Options{BackendURL: srv.URL, Processor: payments.NewFake()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.Close()

	if snap := w.Start(context.Background()); !snap.Authenticated() {
		t.Fatalf("Start() = %s, want authenticated", snap.Status)
	}
	w.Summarizer.Mount(context.Background())
	if got := w.Session.Snapshot().Status; got != session.StatusUnauthenticated {
		t.Fatalf("status after 401 = %s, want unauthenticated", got)
	}
}

func TestToolViewsHaveIndependentMeters(t *testing.T) {
	srv := newBackend(t, http.StatusOK)
	w, err := New("ws-2", Options{BackendURL: srv.URL, Processor: payments.NewFake()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.Close()
	w.Start(context.Background())
	w.Summarizer.Mount(context.Background())
	if got := w.Summarizer.Snapshot().Credits; got != 3 {
		t.Fatalf("summarizer credits = %d, want 3", got)
	}
	if got := w.Corrector.Snapshot(); got.Credits != 0 || got.State != tools.StateIdle {
		t.Fatalf("corrector snapshot before mount = %+v", got)
	}
}

func TestLogoutClearsPlan(t *testing.T) {
	srv := newBackend(t, http.StatusOK)
	w, err := New("ws-3", Options{BackendURL: srv.URL, Processor: payments.NewFake()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.Close()
	w.Start(context.Background())
	_ = w.Plans.Select("pro")
	if err := w.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}
	if _, ok := w.Plans.Selected(); ok {
		t.Fatalf("plan selection survived logout")
	}
	if w.Session.Snapshot().Authenticated() {
		t.Fatalf("session still authenticated")
	}
}

func TestRegistrySweep(t *testing.T) {
	srv := newBackend(t, http.StatusOK)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	reg := NewRegistry(func(id string) (*Workspace, error) {
		return New(id, Options{BackendURL: srv.URL, Processor: payments.NewFake()})
	}, 30*time.Minute)
	reg.now = func() time.Time { return now }

	a, err := reg.Create()
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	b, err := reg.Create()
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("duplicate workspace ids")
	}

	now = now.Add(20 * time.Minute)
	if _, ok := reg.Get(b.ID); !ok {
		t.Fatalf("Get(%s) missing", b.ID)
	}
	now = now.Add(15 * time.Minute)
	if n := reg.Sweep(); n != 1 {
		t.Fatalf("Sweep() = %d, want 1", n)
	}
	if _, ok := reg.Get(a.ID); ok {
		t.Fatalf("idle workspace survived sweep")
	}
	if reg.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", reg.Len())
	}
	reg.Remove(b.ID)
	if reg.Len() != 0 {
		t.Fatalf("Len() after Remove = %d", reg.Len())
	}
}

func TestResolveReturnsUnresolvedWhenBackendIsSlow(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	w, err := New("ws-slow", Options{BackendURL: srv.URL, Processor: payments.NewFake()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.Close()

	if snap := w.Resolve(context.Background(), 20*time.Millisecond); snap.Resolved() {
		t.Fatalf("Resolve() = %s, want unknown", snap.Status)
	}
}

func TestResolveWaitsForCheck(t *testing.T) {
	srv := newBackend(t, http.StatusOK)
	w, err := New("ws-fast", Options{BackendURL: srv.URL, Processor: payments.NewFake()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.Close()

	if snap := w.Resolve(context.Background(), 5*time.Second); !snap.Authenticated() {
		t.Fatalf("Resolve() = %s, want authenticated", snap.Status)
	}
}

func TestRegistryLimitEvictsLeastRecentlyUsed(t *testing.T) {
	srv := newBackend(t, http.StatusOK)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	reg := NewRegistry(func(id string) (*Workspace, error) {
		return New(id, Options{BackendURL: srv.URL, Processor: payments.NewFake()})
	}, time.Hour)
	reg.now = func() time.Time { return now }
	reg.SetLimit(2)
	defer reg.CloseAll()

	a, err := reg.Create()
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	now = now.Add(time.Minute)
	b, err := reg.Create()
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	now = now.Add(time.Minute)
	if _, ok := reg.Get(a.ID); !ok {
		t.Fatalf("Get(%s) missing", a.ID)
	}
	now = now.Add(time.Minute)
	c, err := reg.Create()
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if reg.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", reg.Len())
	}
	if _, ok := reg.Get(b.ID); ok {
		t.Fatalf("least recently used workspace survived the cap")
	}
	for _, w := range []*Workspace{a, c} {
		if _, ok := reg.Get(w.ID); !ok {
			t.Fatalf("Get(%s) missing after eviction", w.ID)
		}
	}
}
