package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/aldoetobex/legalflow-backend/pkg/models"
)

/* ============================================================================
   Helpers
   ============================================================================ */

// fakeClock returns a clock that advances one second per call so creation
// order is always visible in timestamps.
func fakeClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestMemory(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory()
	m.now = fakeClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	return m
}

func ptr[T any](v T) *T { return &v }

/* ============================================================================
   Seed
   ============================================================================ */

func Test_Seed_LoadsDemoData_Once(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)

	if err := m.Seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := m.Seed(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	u, err := m.GetUserByUsername(ctx, DemoUsername)
	if err != nil {
		t.Fatalf("demo user missing: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(DemoPassword)) != nil {
		t.Fatalf("demo password should be stored as a bcrypt hash of %q", DemoPassword)
	}

	clients, _ := m.GetClients(ctx)
	cases, _ := m.GetCases(ctx)
	reminders, _ := m.GetReminders(ctx)
	types, _ := m.GetCaseTypes(ctx)
	if len(clients) != 3 || len(cases) != 3 || len(reminders) != 3 || len(types) != 6 {
		t.Fatalf("want 3/3/3/6 after double seed, got clients=%d cases=%d reminders=%d types=%d",
			len(clients), len(cases), len(reminders), len(types))
	}
}

func Test_Seed_CasesCarryClientAndType(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	if err := m.Seed(ctx); err != nil {
		t.Fatal(err)
	}

	cases, _ := m.GetCases(ctx)
	for _, c := range cases {
		if c.Client == nil || c.CaseType == nil {
			t.Fatalf("seeded case %q should embed client and type, got %+v", c.Title, c)
		}
		if *c.ClientID != c.Client.ID {
			t.Fatalf("embedded client %d does not match clientId %d", c.Client.ID, *c.ClientID)
		}
	}
}

/* ============================================================================
   Clients
   ============================================================================ */

func Test_Clients_NewestFirst(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)

	a, _ := m.CreateClient(ctx, models.Client{Name: "A"})
	b, _ := m.CreateClient(ctx, models.Client{Name: "B"})
	c, _ := m.CreateClient(ctx, models.Client{Name: "C"})

	got, err := m.GetClients(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint{c.ID, b.ID, a.ID}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: want id %d, got %d", i, id, got[i].ID)
		}
	}
	if a.Status != models.ClientActive {
		t.Fatalf("status should default to active, got %q", a.Status)
	}
}

func Test_Clients_EqualTimestamps_TieBreakOnID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	a, _ := m.CreateClient(ctx, models.Client{Name: "A"})
	b, _ := m.CreateClient(ctx, models.Client{Name: "B"})

	got, _ := m.GetClients(ctx)
	if got[0].ID != b.ID || got[1].ID != a.ID {
		t.Fatalf("higher id should come first on equal timestamps, got %d,%d", got[0].ID, got[1].ID)
	}
}

func Test_Clients_UpdatePartial_And_NotFound(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	c, _ := m.CreateClient(ctx, models.Client{Name: "Ann Lee", Email: "ann@x.com"})

	up, err := m.UpdateClient(ctx, c.ID, ClientPatch{Phone: ptr("555")})
	if err != nil {
		t.Fatal(err)
	}
	if up.Name != "Ann Lee" || up.Email != "ann@x.com" || up.Phone != "555" {
		t.Fatalf("only phone should change, got %+v", up)
	}

	if _, err := m.UpdateClient(ctx, 999, ClientPatch{Name: ptr("x")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := m.GetClient(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func Test_Clients_DeleteRefusedWhileCasesExist(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	cl, _ := m.CreateClient(ctx, models.Client{Name: "Ann Lee"})
	cs, err := m.CreateCase(ctx, models.Case{Title: "Lease", ClientID: &cl.ID})
	if err != nil {
		t.Fatal(err)
	}

	if ok, err := m.DeleteClient(ctx, cl.ID); ok || !errors.Is(err, ErrClientHasCases) {
		t.Fatalf("want (false, ErrClientHasCases), got (%v, %v)", ok, err)
	}
	if _, err := m.GetClient(ctx, cl.ID); err != nil {
		t.Fatalf("client should survive refused delete: %v", err)
	}

	if ok, _ := m.DeleteCase(ctx, cs.ID); !ok {
		t.Fatal("case delete should succeed")
	}
	if ok, err := m.DeleteClient(ctx, cl.ID); !ok || err != nil {
		t.Fatalf("want (true, nil), got (%v, %v)", ok, err)
	}
	if ok, err := m.DeleteClient(ctx, cl.ID); ok || err != nil {
		t.Fatalf("deleting a missing client should be (false, nil), got (%v, %v)", ok, err)
	}
}

/* ============================================================================
   Cases
   ============================================================================ */

func Test_Cases_CreateDefaults_And_Relations(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	if err := m.Seed(ctx); err != nil {
		t.Fatal(err)
	}
	types, _ := m.GetCaseTypes(ctx)
	cl, _ := m.CreateClient(ctx, models.Client{Name: "Ann Lee"})

	c, err := m.CreateCase(ctx, models.Case{Title: "Lease", ClientID: &cl.ID, CaseTypeID: &types[0].ID})
	if err != nil {
		t.Fatal(err)
	}
	if c.Status != models.CaseActive || c.Priority != models.PriorityMedium {
		t.Fatalf("defaults not applied: %+v", c)
	}
	if !c.CreatedAt.Equal(c.UpdatedAt) {
		t.Fatalf("createdAt and updatedAt should match on create")
	}

	got, err := m.GetCase(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Client == nil || got.Client.Name != "Ann Lee" {
		t.Fatalf("client should be embedded, got %+v", got.Client)
	}
	if got.CaseType == nil || got.CaseType.ID != types[0].ID {
		t.Fatalf("case type should be embedded, got %+v", got.CaseType)
	}

	orphan, err := m.CreateCase(ctx, models.Case{Title: "No client"})
	if err != nil {
		t.Fatal(err)
	}
	got, _ = m.GetCase(ctx, orphan.ID)
	if got.Client != nil {
		t.Fatalf("case without client should have no embedded client")
	}
}

func Test_Cases_UpdateAlwaysBumpsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	c, _ := m.CreateCase(ctx, models.Case{Title: "Lease"})

	up, err := m.UpdateCase(ctx, c.ID, CasePatch{})
	if err != nil {
		t.Fatal(err)
	}
	if !up.UpdatedAt.After(c.UpdatedAt) {
		t.Fatalf("empty patch should still advance updatedAt: before=%v after=%v", c.UpdatedAt, up.UpdatedAt)
	}
	if up.Title != "Lease" {
		t.Fatalf("title should be unchanged, got %q", up.Title)
	}

	up, _ = m.UpdateCase(ctx, c.ID, CasePatch{Status: ptr(models.CaseClosed)})
	if up.Status != models.CaseClosed {
		t.Fatalf("status should be closed, got %q", up.Status)
	}
	if !up.CreatedAt.Equal(c.CreatedAt) {
		t.Fatalf("createdAt must not change on update")
	}
}

func Test_Cases_DuplicateCaseNumber(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)

	if _, err := m.CreateCase(ctx, models.Case{Title: "A", CaseNumber: ptr("X-1")}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.CreateCase(ctx, models.Case{Title: "B", CaseNumber: ptr("X-1")}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}
	// blank numbers are treated as absent and never collide
	if _, err := m.CreateCase(ctx, models.Case{Title: "C", CaseNumber: ptr("")}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.CreateCase(ctx, models.Case{Title: "D", CaseNumber: ptr("")}); err != nil {
		t.Fatal(err)
	}
}

func Test_Cases_MissingReferences(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)

	if _, err := m.CreateCase(ctx, models.Case{Title: "A", ClientID: ptr[uint](42)}); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("want ErrInvalidReference for client, got %v", err)
	}
	if _, err := m.CreateCase(ctx, models.Case{Title: "A", CaseTypeID: ptr[uint](42)}); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("want ErrInvalidReference for case type, got %v", err)
	}
}

func Test_Cases_ByClient(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	a, _ := m.CreateClient(ctx, models.Client{Name: "A"})
	b, _ := m.CreateClient(ctx, models.Client{Name: "B"})
	_, _ = m.CreateCase(ctx, models.Case{Title: "a1", ClientID: &a.ID})
	_, _ = m.CreateCase(ctx, models.Case{Title: "b1", ClientID: &b.ID})
	_, _ = m.CreateCase(ctx, models.Case{Title: "a2", ClientID: &a.ID})

	got, err := m.GetCasesByClient(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Title != "a2" || got[1].Title != "a1" {
		t.Fatalf("want [a2 a1], got %+v", got)
	}
	if got, _ := m.GetCasesByClient(ctx, 999); len(got) != 0 {
		t.Fatalf("unknown client should yield empty list")
	}
}

func Test_Cases_DeleteCascadesDocumentsAndReminders(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	c, _ := m.CreateCase(ctx, models.Case{Title: "Lease"})
	keep, _ := m.CreateCase(ctx, models.Case{Title: "Other"})

	doc, err := m.CreateDocument(ctx, models.CaseDocument{CaseID: c.ID, Title: "Lease.pdf", File: "k1"})
	if err != nil {
		t.Fatal(err)
	}
	_, _ = m.CreateReminder(ctx, models.Reminder{Title: "Hearing", DueDate: time.Now(), CaseID: &c.ID})
	_, _ = m.CreateReminder(ctx, models.Reminder{Title: "Call", DueDate: time.Now(), CaseID: &keep.ID})

	if ok, _ := m.DeleteCase(ctx, c.ID); !ok {
		t.Fatal("delete should report true")
	}
	if _, err := m.GetDocument(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("document should be gone, got %v", err)
	}
	rs, _ := m.GetReminders(ctx)
	if len(rs) != 1 || rs[0].Title != "Call" {
		t.Fatalf("only the other case's reminder should remain, got %+v", rs)
	}
	if ok, _ := m.DeleteCase(ctx, c.ID); ok {
		t.Fatal("second delete should report false")
	}
}

func Test_Cases_ReturnedCopiesAreDetached(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	c, _ := m.CreateCase(ctx, models.Case{Title: "Lease", CaseNumber: ptr("N-1")})

	*c.CaseNumber = "tampered"
	got, _ := m.GetCase(ctx, c.ID)
	if *got.CaseNumber != "N-1" {
		t.Fatalf("stored case mutated through returned pointer: %q", *got.CaseNumber)
	}
}

/* ============================================================================
   Documents
   ============================================================================ */

func Test_Documents_ListedOnCaseOldestFirst(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	c, _ := m.CreateCase(ctx, models.Case{Title: "Lease"})

	_, _ = m.CreateDocument(ctx, models.CaseDocument{CaseID: c.ID, Title: "first", File: "k1"})
	_, _ = m.CreateDocument(ctx, models.CaseDocument{CaseID: c.ID, Title: "second", File: "k2"})

	got, _ := m.GetCase(ctx, c.ID)
	if len(got.Documents) != 2 || got.Documents[0].Title != "first" {
		t.Fatalf("want [first second], got %+v", got.Documents)
	}
	if _, err := m.CreateDocument(ctx, models.CaseDocument{CaseID: 999, Title: "x", File: "k"}); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("want ErrInvalidReference, got %v", err)
	}
}

/* ============================================================================
   Reminders
   ============================================================================ */

func Test_Reminders_SoonestDueFirst_WithCase(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	c, _ := m.CreateCase(ctx, models.Case{Title: "Lease"})
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	_, _ = m.CreateReminder(ctx, models.Reminder{Title: "later", DueDate: base.Add(48 * time.Hour)})
	_, _ = m.CreateReminder(ctx, models.Reminder{Title: "sooner", DueDate: base, CaseID: &c.ID})

	got, _ := m.GetReminders(ctx)
	if got[0].Title != "sooner" || got[1].Title != "later" {
		t.Fatalf("want [sooner later], got [%s %s]", got[0].Title, got[1].Title)
	}
	if got[0].Case == nil || got[0].Case.Title != "Lease" {
		t.Fatalf("reminder should embed its case, got %+v", got[0].Case)
	}
	if got[1].Case != nil {
		t.Fatalf("reminder without case should embed nothing")
	}
	if got[1].Type != models.ReminderGeneral || got[1].Priority != models.PriorityMedium {
		t.Fatalf("defaults not applied: %+v", got[1])
	}
}

func Test_Reminders_CompleteUpdatesPendingCount(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	r1, _ := m.CreateReminder(ctx, models.Reminder{Title: "a", DueDate: time.Now()})
	_, _ = m.CreateReminder(ctx, models.Reminder{Title: "b", DueDate: time.Now()})

	stats, _ := m.GetDashboardStats(ctx)
	if stats.PendingReminders != 2 {
		t.Fatalf("want 2 pending, got %d", stats.PendingReminders)
	}

	up, err := m.UpdateReminder(ctx, r1.ID, ReminderPatch{Completed: ptr(true)})
	if err != nil {
		t.Fatal(err)
	}
	if !up.Completed || up.Title != "a" {
		t.Fatalf("only completed should change, got %+v", up)
	}

	stats, _ = m.GetDashboardStats(ctx)
	if stats.PendingReminders != 1 {
		t.Fatalf("want 1 pending, got %d", stats.PendingReminders)
	}
}

/* ============================================================================
   Users
   ============================================================================ */

func Test_Users_UniqueUsername(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	a, _ := m.CreateUser(ctx, models.User{Username: "ann", Password: "h"})
	b, _ := m.CreateUser(ctx, models.User{Username: "bob", Password: "h"})

	if _, err := m.CreateUser(ctx, models.User{Username: "ann"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}
	if _, err := m.UpdateUser(ctx, b.ID, UserPatch{Username: ptr("ann")}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("want ErrDuplicate on rename, got %v", err)
	}
	// renaming to one's own name is fine
	if _, err := m.UpdateUser(ctx, a.ID, UserPatch{Username: ptr("ann"), FullName: ptr("Ann Lee")}); err != nil {
		t.Fatal(err)
	}
}

/* ============================================================================
   Dashboard
   ============================================================================ */

func Test_Dashboard_MatchesCollections(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	if err := m.Seed(ctx); err != nil {
		t.Fatal(err)
	}

	stats, err := m.GetDashboardStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	cases, _ := m.GetCases(ctx)
	clients, _ := m.GetClients(ctx)

	var active int64
	for _, c := range cases {
		if c.Status == models.CaseActive {
			active++
		}
	}
	if stats.TotalCases != int64(len(cases)) || stats.TotalClients != int64(len(clients)) || stats.ActiveCases != active {
		t.Fatalf("stats out of sync: %+v", stats)
	}
	if stats.ActiveCases != 2 || stats.PendingReminders != 3 {
		t.Fatalf("seeded stats want active=2 pending=3, got %+v", stats)
	}
}
