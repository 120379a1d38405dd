package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aldoetobex/legalflow-backend/pkg/models"
)

/* ============================================================================
   Helpers
   ============================================================================ */

// openTestPostgres opens TEST_DATABASE_URL, migrates, and truncates every
// table after the test. Skipped when the variable is not set.
func openTestPostgres(t *testing.T) *Postgres {
	t.Helper()
	_ = godotenv.Load()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	p := NewPostgres(db)
	if err := p.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	// Truncate AFTER each test (data survives within a single test).
	t.Cleanup(func() {
		sql := `
TRUNCATE TABLE
	reminders,
	case_documents,
	cases,
	case_types,
	clients,
	users
RESTART IDENTITY CASCADE`
		if err := db.Exec(sql).Error; err != nil {
			t.Logf("truncate failed (ignored): %v", err)
		}
	})
	return p
}

/* ============================================================================
   Tests
   ============================================================================ */

func Test_Postgres_SeedIsIdempotent(t *testing.T) {
	p := openTestPostgres(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := p.Seed(ctx); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	stats, err := p.GetDashboardStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalClients != 3 || stats.TotalCases != 3 || stats.PendingReminders != 3 {
		t.Fatalf("unexpected seeded stats %+v", stats)
	}
	if _, err := p.GetUserByUsername(ctx, DemoUsername); err != nil {
		t.Fatalf("demo user: %v", err)
	}
}

func Test_Postgres_ClientCaseLifecycle(t *testing.T) {
	p := openTestPostgres(t)
	ctx := context.Background()

	cl, err := p.CreateClient(ctx, models.Client{Name: "Ann Lee"})
	if err != nil {
		t.Fatal(err)
	}
	if cl.Status != models.ClientActive {
		t.Fatalf("status default not applied: %q", cl.Status)
	}

	num := "CV-2025/001"
	cs, err := p.CreateCase(ctx, models.Case{Title: "Contract Review", ClientID: &cl.ID, CaseNumber: &num})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.CreateCase(ctx, models.Case{Title: "Again", CaseNumber: &num}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}
	missing := uint(9999)
	if _, err := p.CreateCase(ctx, models.Case{Title: "Orphan", ClientID: &missing}); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("want ErrInvalidReference, got %v", err)
	}

	got, err := p.GetCase(ctx, cs.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Client == nil || got.Client.Name != "Ann Lee" {
		t.Fatalf("client not embedded: %+v", got.Client)
	}

	time.Sleep(5 * time.Millisecond)
	upd, err := p.UpdateCase(ctx, cs.ID, CasePatch{})
	if err != nil {
		t.Fatal(err)
	}
	if !upd.UpdatedAt.After(cs.UpdatedAt) {
		t.Fatalf("updatedAt not advanced: %v -> %v", cs.UpdatedAt, upd.UpdatedAt)
	}

	if _, err := p.CreateReminder(ctx, models.Reminder{Title: "Call", DueDate: time.Now(), CaseID: &cs.ID}); err != nil {
		t.Fatal(err)
	}
	if _, err := p.DeleteClient(ctx, cl.ID); !errors.Is(err, ErrClientHasCases) {
		t.Fatalf("want ErrClientHasCases, got %v", err)
	}

	if ok, err := p.DeleteCase(ctx, cs.ID); err != nil || !ok {
		t.Fatalf("delete case: %v %v", ok, err)
	}
	rems, err := p.GetReminders(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rems) != 0 {
		t.Fatalf("reminders not cascaded: %+v", rems)
	}
	if ok, err := p.DeleteClient(ctx, cl.ID); err != nil || !ok {
		t.Fatalf("delete client: %v %v", ok, err)
	}
	if ok, _ := p.DeleteClient(ctx, cl.ID); ok {
		t.Fatal("second delete should report false")
	}
	if _, err := p.GetClient(ctx, cl.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
