package dashboard

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/aldoetobex/legalflow-backend/internal/store"
	"github.com/aldoetobex/legalflow-backend/pkg/models"
)

func Test_Stats_Seeded(t *testing.T) {
	m := store.NewMemory()
	if err := m.Seed(context.Background()); err != nil {
		t.Fatal(err)
	}
	app := fiber.New()
	app.Get("/api/dashboard/stats", NewHandler(m).Stats)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/dashboard/stats", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var got models.DashboardStats
	_ = json.NewDecoder(resp.Body).Decode(&got)
	want := models.DashboardStats{TotalCases: 3, ActiveCases: 2, TotalClients: 3, PendingReminders: 3}
	if got != want {
		t.Fatalf("stats = %+v, want %+v", got, want)
	}
}
