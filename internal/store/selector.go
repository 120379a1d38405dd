package store

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/aldoetobex/legalflow-backend/pkg/models"
	"github.com/aldoetobex/legalflow-backend/pkg/sanitize"
)

// Backend names the store that served a call.
type Backend string

const (
	BackendPrimary  Backend = "primary"
	BackendFallback Backend = "fallback"
)

/* ============================ Source recorder =========================== */

// Recorder collects which backends served the calls made with one context.
// The HTTP layer attaches one per request and reports the result as a header.
type Recorder struct {
	mu       sync.Mutex
	fallback bool
	primary  bool
}

type recorderKey struct{}

// WithRecorder returns a context carrying a fresh Recorder.
func WithRecorder(ctx context.Context) (context.Context, *Recorder) {
	r := &Recorder{}
	return context.WithValue(ctx, recorderKey{}, r), r
}

func recordBackend(ctx context.Context, b Backend) {
	r, ok := ctx.Value(recorderKey{}).(*Recorder)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if b == BackendFallback {
		r.fallback = true
	} else {
		r.primary = true
	}
}

// Backend reports fallback if any call fell back, primary otherwise.
func (r *Recorder) Backend() Backend {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fallback || !r.primary {
		return BackendFallback
	}
	return BackendPrimary
}

// Used reports whether any store call was recorded.
func (r *Recorder) Used() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fallback || r.primary
}

/* =============================== Selector =============================== */

// Selector routes every call to the primary store while it is connected and
// reruns the call on the fallback when the primary fails with anything other
// than a domain error. It owns the connectivity state for its lifetime.
type Selector struct {
	primary   Store
	fallback  Store
	connected atomic.Bool
	log       *zap.Logger
}

// NewSelector wires the two backends. primary may be nil (no DATABASE_URL).
func NewSelector(primary, fallback Store, log *zap.Logger) *Selector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Selector{primary: primary, fallback: fallback, log: log}
}

// Init probes the primary. On success it seeds the primary and marks the
// selector connected; otherwise the fallback is seeded and serves every call.
// Init never fails the process; it only returns the fallback's seed error.
func (s *Selector) Init(ctx context.Context) error {
	if s.primary != nil {
		err := s.primary.Ping(ctx)
		if err == nil {
			err = s.primary.Seed(ctx)
		}
		if err == nil {
			s.connected.Store(true)
			s.log.Info("primary store connected")
			return nil
		}
		s.log.Warn("primary store unavailable, using in-memory fallback", s.errField(err))
	} else {
		s.log.Info("no database configured, using in-memory store")
	}
	s.connected.Store(false)
	return s.fallback.Seed(ctx)
}

// Connected reports whether the primary passed its startup probe.
func (s *Selector) Connected() bool { return s.connected.Load() }

func (s *Selector) errField(err error) zap.Field {
	return zap.String("error", sanitize.Summary(sanitize.RedactPII(err.Error()), 240))
}

// route runs fn on the primary when connected and falls back on any
// infrastructure error.
func route[T any](ctx context.Context, s *Selector, op string, fn func(Store) (T, error)) (T, error) {
	if s.primary == nil || !s.connected.Load() {
		recordBackend(ctx, BackendFallback)
		return fn(s.fallback)
	}
	out, err := fn(s.primary)
	if err == nil || IsDomainError(err) {
		recordBackend(ctx, BackendPrimary)
		return out, err
	}
	s.log.Warn("primary store failed, falling back",
		zap.String("op", op), s.errField(err))
	recordBackend(ctx, BackendFallback)
	return fn(s.fallback)
}

func (s *Selector) Ping(ctx context.Context) error {
	if s.primary == nil || !s.connected.Load() {
		return s.fallback.Ping(ctx)
	}
	return s.primary.Ping(ctx)
}

// Seed seeds whichever backend is active; both seeds are idempotent.
func (s *Selector) Seed(ctx context.Context) error {
	_, err := route(ctx, s, "Seed", func(b Store) (struct{}, error) { return struct{}{}, b.Seed(ctx) })
	return err
}

/* ================================ Users ================================= */

func (s *Selector) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return route(ctx, s, "GetUser", func(b Store) (*models.User, error) { return b.GetUser(ctx, id) })
}

func (s *Selector) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return route(ctx, s, "GetUserByUsername", func(b Store) (*models.User, error) {
		return b.GetUserByUsername(ctx, username)
	})
}

func (s *Selector) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	return route(ctx, s, "CreateUser", func(b Store) (*models.User, error) { return b.CreateUser(ctx, u) })
}

func (s *Selector) UpdateUser(ctx context.Context, id uint, p UserPatch) (*models.User, error) {
	return route(ctx, s, "UpdateUser", func(b Store) (*models.User, error) { return b.UpdateUser(ctx, id, p) })
}

/* =============================== Clients ================================ */

func (s *Selector) GetClients(ctx context.Context) ([]models.Client, error) {
	return route(ctx, s, "GetClients", func(b Store) ([]models.Client, error) { return b.GetClients(ctx) })
}

func (s *Selector) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	return route(ctx, s, "GetClient", func(b Store) (*models.Client, error) { return b.GetClient(ctx, id) })
}

func (s *Selector) CreateClient(ctx context.Context, c models.Client) (*models.Client, error) {
	return route(ctx, s, "CreateClient", func(b Store) (*models.Client, error) { return b.CreateClient(ctx, c) })
}

func (s *Selector) UpdateClient(ctx context.Context, id uint, p ClientPatch) (*models.Client, error) {
	return route(ctx, s, "UpdateClient", func(b Store) (*models.Client, error) { return b.UpdateClient(ctx, id, p) })
}

func (s *Selector) DeleteClient(ctx context.Context, id uint) (bool, error) {
	return route(ctx, s, "DeleteClient", func(b Store) (bool, error) { return b.DeleteClient(ctx, id) })
}

/* ============================== Case types ============================== */

func (s *Selector) GetCaseTypes(ctx context.Context) ([]models.CaseType, error) {
	return route(ctx, s, "GetCaseTypes", func(b Store) ([]models.CaseType, error) { return b.GetCaseTypes(ctx) })
}

/* ================================ Cases ================================= */

func (s *Selector) GetCases(ctx context.Context) ([]models.Case, error) {
	return route(ctx, s, "GetCases", func(b Store) ([]models.Case, error) { return b.GetCases(ctx) })
}

func (s *Selector) GetCase(ctx context.Context, id uint) (*models.Case, error) {
	return route(ctx, s, "GetCase", func(b Store) (*models.Case, error) { return b.GetCase(ctx, id) })
}

func (s *Selector) GetCasesByClient(ctx context.Context, clientID uint) ([]models.Case, error) {
	return route(ctx, s, "GetCasesByClient", func(b Store) ([]models.Case, error) {
		return b.GetCasesByClient(ctx, clientID)
	})
}

func (s *Selector) CreateCase(ctx context.Context, c models.Case) (*models.Case, error) {
	return route(ctx, s, "CreateCase", func(b Store) (*models.Case, error) { return b.CreateCase(ctx, c) })
}

func (s *Selector) UpdateCase(ctx context.Context, id uint, p CasePatch) (*models.Case, error) {
	return route(ctx, s, "UpdateCase", func(b Store) (*models.Case, error) { return b.UpdateCase(ctx, id, p) })
}

func (s *Selector) DeleteCase(ctx context.Context, id uint) (bool, error) {
	return route(ctx, s, "DeleteCase", func(b Store) (bool, error) { return b.DeleteCase(ctx, id) })
}

/* ============================== Documents =============================== */

func (s *Selector) GetDocuments(ctx context.Context, caseID uint) ([]models.CaseDocument, error) {
	return route(ctx, s, "GetDocuments", func(b Store) ([]models.CaseDocument, error) {
		return b.GetDocuments(ctx, caseID)
	})
}

func (s *Selector) GetDocument(ctx context.Context, id uint) (*models.CaseDocument, error) {
	return route(ctx, s, "GetDocument", func(b Store) (*models.CaseDocument, error) { return b.GetDocument(ctx, id) })
}

func (s *Selector) CreateDocument(ctx context.Context, d models.CaseDocument) (*models.CaseDocument, error) {
	return route(ctx, s, "CreateDocument", func(b Store) (*models.CaseDocument, error) {
		return b.CreateDocument(ctx, d)
	})
}

func (s *Selector) DeleteDocument(ctx context.Context, id uint) (bool, error) {
	return route(ctx, s, "DeleteDocument", func(b Store) (bool, error) { return b.DeleteDocument(ctx, id) })
}

/* ============================== Reminders =============================== */

func (s *Selector) GetReminders(ctx context.Context) ([]models.Reminder, error) {
	return route(ctx, s, "GetReminders", func(b Store) ([]models.Reminder, error) { return b.GetReminders(ctx) })
}

func (s *Selector) GetReminder(ctx context.Context, id uint) (*models.Reminder, error) {
	return route(ctx, s, "GetReminder", func(b Store) (*models.Reminder, error) { return b.GetReminder(ctx, id) })
}

func (s *Selector) CreateReminder(ctx context.Context, r models.Reminder) (*models.Reminder, error) {
	return route(ctx, s, "CreateReminder", func(b Store) (*models.Reminder, error) {
		return b.CreateReminder(ctx, r)
	})
}

func (s *Selector) UpdateReminder(ctx context.Context, id uint, p ReminderPatch) (*models.Reminder, error) {
	return route(ctx, s, "UpdateReminder", func(b Store) (*models.Reminder, error) {
		return b.UpdateReminder(ctx, id, p)
	})
}

func (s *Selector) DeleteReminder(ctx context.Context, id uint) (bool, error) {
	return route(ctx, s, "DeleteReminder", func(b Store) (bool, error) { return b.DeleteReminder(ctx, id) })
}

/* ============================== Dashboard =============================== */

func (s *Selector) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	return route(ctx, s, "GetDashboardStats", func(b Store) (*models.DashboardStats, error) {
		return b.GetDashboardStats(ctx)
	})
}

var (
	_ Store = (*Selector)(nil)
	_ Store = (*Memory)(nil)
	_ Store = (*Postgres)(nil)
)
