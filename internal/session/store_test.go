package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

type fakeBackend struct {
	checkErr    error
	loginErr    error
	logoutErr   error
	registerErr error

	checks  atomic.Int32
	logouts atomic.Int32
}

func (f *fakeBackend) CheckSession(context.Context) error {
	f.checks.Add(1)
	return f.checkErr
}

func (f *fakeBackend) Login(context.Context, string, string) error { return f.loginErr }

func (f *fakeBackend) Register(context.Context, string, string, string) error {
	return f.registerErr
}

func (f *fakeBackend) Logout(context.Context) error {
	f.logouts.Add(1)
	return f.logoutErr
}

func TestStoreStartsUnknown(t *testing.T) {
	s := NewStore(&fakeBackend{}, nil)
	snap := s.Snapshot()
	if snap.Resolved() || snap.Authenticated() {
		t.Fatalf("new store snapshot = %+v, want unresolved", snap)
	}
}

func TestCheckResolves(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Status
	}{
		{name: "active session", want: StatusAuthenticated},
		{name: "rejected", err: errors.New("401"), want: StatusUnauthenticated},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore(&fakeBackend{checkErr: tc.err}, nil)
			if got := s.Check(context.Background()).Status; got != tc.want {
				t.Fatalf("Check() status = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestCheckRunsOnce(t *testing.T) {
	b := &fakeBackend{}
	s := NewStore(b, nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Check(context.Background())
		}()
	}
	wg.Wait()
	s.Check(context.Background())
	if got := b.checks.Load(); got != 1 {
		t.Fatalf("backend checks = %d, want 1", got)
	}
}

func TestCheckDoesNotOverrideLogin(t *testing.T) {
	s := NewStore(&fakeBackend{checkErr: errors.New("stale cookie")}, nil)
	if err := s.Login(context.Background(), "ada@example.com", "pw"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if got := s.Check(context.Background()); !got.Authenticated() {
		t.Fatalf("Check() after login = %s, want authenticated", got.Status)
	}
}

func TestLoginFailureLeavesState(t *testing.T) {
	s := NewStore(&fakeBackend{checkErr: errors.New("no"), loginErr: errors.New("bad credentials")}, nil)
	s.Check(context.Background())
	if err := s.Login(context.Background(), "ada@example.com", "wrong"); err == nil {
		t.Fatalf("Login() expected error")
	}
	if got := s.Snapshot().Status; got != StatusUnauthenticated {
		t.Fatalf("status after failed login = %s", got)
	}
}

func TestLogoutAlwaysClearsLocalState(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "backend ok"},
		{name: "network failure", err: errors.New("dial tcp: connection refused")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := &fakeBackend{logoutErr: tc.err}
			s := NewStore(b, nil)
			s.MarkAuthenticated()
			err := s.Logout(context.Background())
			if !errors.Is(err, tc.err) {
				t.Fatalf("Logout() error = %v, want %v", err, tc.err)
			}
			if got := s.Snapshot().Status; got != StatusUnauthenticated {
				t.Fatalf("status after logout = %s, want unauthenticated", got)
			}
			if b.logouts.Load() != 1 {
				t.Fatalf("backend logout not called")
			}
		})
	}
}

func TestExpire(t *testing.T) {
	s := NewStore(&fakeBackend{}, nil)
	s.Check(context.Background())
	s.Expire()
	if s.Snapshot().Authenticated() {
		t.Fatalf("Expire() left session authenticated")
	}
}

func TestSubscribeReceivesLatest(t *testing.T) {
	s := NewStore(&fakeBackend{}, nil)
	ch, cancel := s.Subscribe()
	defer cancel()

	first := <-ch
	if first.Resolved() {
		t.Fatalf("first snapshot = %+v, want unresolved", first)
	}
	s.MarkAuthenticated()
	s.Expire()
	latest := <-ch
	if latest.Status != StatusUnauthenticated {
		t.Fatalf("latest status = %s, want unauthenticated", latest.Status)
	}
	if latest.Version != 2 {
		t.Fatalf("latest version = %d, want 2", latest.Version)
	}
}

func TestSubscribeCancelAndClose(t *testing.T) {
	s := NewStore(&fakeBackend{}, nil)
	ch, cancel := s.Subscribe()
	<-ch
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("channel still open after cancel")
	}
	cancel()

	other, _ := s.Subscribe()
	<-other
	s.Close()
	if _, ok := <-other; ok {
		t.Fatalf("channel still open after Close")
	}
	late, _ := s.Subscribe()
	if _, ok := <-late; ok {
		t.Fatalf("subscribe after Close returned open channel")
	}
}
