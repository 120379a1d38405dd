package store

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aldoetobex/legalflow-backend/pkg/models"
)

var errConnRefused = errors.New("dial tcp 10.0.0.5:5432: connect: connection refused (user admin@corp.example)")

// brokenPrimary answers the probe as configured and fails every other call
// it overrides with an infrastructure error. Calls it does not override hit
// the embedded nil Store and would panic, which keeps the tests honest about
// which paths they exercise.
type brokenPrimary struct {
	Store
	pingErr error
	calls   int
}

func (b *brokenPrimary) Ping(context.Context) error { return b.pingErr }
func (b *brokenPrimary) Seed(context.Context) error { return nil }

func (b *brokenPrimary) GetClients(context.Context) ([]models.Client, error) {
	b.calls++
	return nil, errConnRefused
}

func (b *brokenPrimary) CreateClient(context.Context, models.Client) (*models.Client, error) {
	b.calls++
	return nil, errConnRefused
}

func (b *brokenPrimary) GetClient(context.Context, uint) (*models.Client, error) {
	b.calls++
	return nil, ErrNotFound
}

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func Test_Selector_NoPrimary_UsesSeededFallback(t *testing.T) {
	ctx := context.Background()
	s := NewSelector(nil, NewMemory(), nil)
	if err := s.Init(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Connected() {
		t.Fatal("selector without primary must not report connected")
	}

	rctx, rec := WithRecorder(ctx)
	clients, err := s.GetClients(rctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(clients) != 3 {
		t.Fatalf("fallback should be seeded with 3 clients, got %d", len(clients))
	}
	if rec.Backend() != BackendFallback {
		t.Fatalf("want fallback recorded, got %s", rec.Backend())
	}
}

func Test_Selector_FailedProbe_NeverTouchesPrimary(t *testing.T) {
	ctx := context.Background()
	p := &brokenPrimary{pingErr: errConnRefused}
	s := NewSelector(p, NewMemory(), nil)
	if err := s.Init(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Connected() {
		t.Fatal("failed probe must leave selector disconnected")
	}

	if _, err := s.GetClients(ctx); err != nil {
		t.Fatal(err)
	}
	if p.calls != 0 {
		t.Fatalf("primary should not be called after failed probe, got %d calls", p.calls)
	}
}

func Test_Selector_PrimaryFailure_FallsBackPerCall(t *testing.T) {
	ctx := context.Background()
	log, logs := newObservedLogger()
	p := &brokenPrimary{}
	s := NewSelector(p, NewMemory(), log)
	if err := s.Init(ctx); err != nil {
		t.Fatal(err)
	}
	if !s.Connected() {
		t.Fatal("successful probe should mark selector connected")
	}

	rctx, rec := WithRecorder(ctx)
	created, err := s.CreateClient(rctx, models.Client{Name: "Ann Lee", Email: "ann@x.com"})
	if err != nil {
		t.Fatalf("write should succeed on fallback, got %v", err)
	}
	if created.ID == 0 || created.Name != "Ann Lee" {
		t.Fatalf("unexpected client %+v", created)
	}
	if rec.Backend() != BackendFallback {
		t.Fatalf("want fallback recorded, got %s", rec.Backend())
	}

	clients, err := s.GetClients(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(clients) != 1 || clients[0].Name != "Ann Lee" {
		t.Fatalf("fallback read should see fallback write, got %+v", clients)
	}
	if p.calls != 2 {
		t.Fatalf("primary should be tried on every call, got %d", p.calls)
	}

	warned := logs.FilterMessage("primary store failed, falling back").All()
	if len(warned) != 2 {
		t.Fatalf("want 2 fallback warnings, got %d", len(warned))
	}
	msg := warned[0].ContextMap()["error"].(string)
	if msg == errConnRefused.Error() {
		t.Fatalf("logged error should be redacted, got %q", msg)
	}
}

func Test_Selector_DomainError_DoesNotFallBack(t *testing.T) {
	ctx := context.Background()
	p := &brokenPrimary{}
	s := NewSelector(p, NewMemory(), nil)
	if err := s.Init(ctx); err != nil {
		t.Fatal(err)
	}

	rctx, rec := WithRecorder(ctx)
	if _, err := s.GetClient(rctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound from primary, got %v", err)
	}
	if rec.Backend() != BackendPrimary {
		t.Fatalf("domain error should still count as served by primary, got %s", rec.Backend())
	}
}

func Test_Recorder_UnusedReportsFallback(t *testing.T) {
	_, rec := WithRecorder(context.Background())
	if rec.Used() {
		t.Fatal("fresh recorder should be unused")
	}
	if rec.Backend() != BackendFallback {
		t.Fatalf("unused recorder reports fallback, got %s", rec.Backend())
	}
}
