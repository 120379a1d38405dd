package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/aldoetobex/legalflow-backend/internal/auth"
	"github.com/aldoetobex/legalflow-backend/internal/store"
	"github.com/aldoetobex/legalflow-backend/pkg/models"
)

func newTestApp(st store.Store) *fiber.App {
	h := NewHandler(st)
	app := fiber.New(fiber.Config{ErrorHandler: auth.ErrorHandler(nil)})
	app.Get("/api/clients", h.List)
	app.Post("/api/clients", h.Create)
	app.Get("/api/clients/:id/cases", h.Cases)
	app.Get("/api/clients/:id", h.Get)
	app.Put("/api/clients/:id", h.Update)
	app.Delete("/api/clients/:id", h.Delete)
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func Test_Create_Get_List(t *testing.T) {
	app := newTestApp(store.NewMemory())

	resp := do(t, app, "POST", "/api/clients", map[string]any{"name": "Ann Lee", "email": "ann@x.com"})
	if resp.StatusCode != 201 {
		t.Fatalf("want 201, got %d", resp.StatusCode)
	}
	var created models.Client
	_ = json.NewDecoder(resp.Body).Decode(&created)
	if created.Status != models.ClientActive {
		t.Fatalf("status should default to active, got %q", created.Status)
	}

	resp = do(t, app, "GET", fmt.Sprintf("/api/clients/%d", created.ID), nil)
	var got models.Client
	_ = json.NewDecoder(resp.Body).Decode(&got)
	if got.ID != created.ID || got.Name != "Ann Lee" || got.Email != "ann@x.com" || !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, created)
	}

	_ = do(t, app, "POST", "/api/clients", map[string]any{"name": "Bob"})
	resp = do(t, app, "GET", "/api/clients", nil)
	var list []models.Client
	_ = json.NewDecoder(resp.Body).Decode(&list)
	if len(list) != 2 || list[0].Name != "Bob" {
		t.Fatalf("want newest first, got %+v", list)
	}
}

func Test_Create_Validation(t *testing.T) {
	app := newTestApp(store.NewMemory())
	resp := do(t, app, "POST", "/api/clients", map[string]any{"email": "nope", "status": "gone"})
	if resp.StatusCode != 400 {
		t.Fatalf("want 400, got %d", resp.StatusCode)
	}
	var body models.ValidationErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	for _, f := range []string{"name", "email", "status"} {
		if len(body.Errors[f]) == 0 {
			t.Fatalf("want error for %s, got %v", f, body.Errors)
		}
	}
}

func Test_Update_NotFound(t *testing.T) {
	app := newTestApp(store.NewMemory())
	resp := do(t, app, "PUT", "/api/clients/42", map[string]any{"phone": "1"})
	if resp.StatusCode != 404 {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
}

func Test_Delete_WithCases_Conflict(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	cl, _ := m.CreateClient(ctx, models.Client{Name: "Ann Lee"})
	cs, _ := m.CreateCase(ctx, models.Case{Title: "Lease", ClientID: &cl.ID})
	app := newTestApp(m)
	path := fmt.Sprintf("/api/clients/%d", cl.ID)

	resp := do(t, app, "DELETE", path, nil)
	if resp.StatusCode != 409 {
		t.Fatalf("want 409, got %d", resp.StatusCode)
	}
	var e models.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&e)
	if e.Message == "" || e.Code != "CONFLICT" {
		t.Fatalf("unexpected error body %+v", e)
	}

	resp = do(t, app, "GET", path+"/cases", nil)
	var owned []models.Case
	_ = json.NewDecoder(resp.Body).Decode(&owned)
	if len(owned) != 1 || owned[0].ID != cs.ID {
		t.Fatalf("client cases = %+v", owned)
	}

	_, _ = m.DeleteCase(ctx, cs.ID)
	if resp := do(t, app, "DELETE", path, nil); resp.StatusCode != 200 {
		t.Fatalf("want 200 after cases removed, got %d", resp.StatusCode)
	}
	if resp := do(t, app, "DELETE", path, nil); resp.StatusCode != 404 {
		t.Fatalf("want 404 on missing client, got %d", resp.StatusCode)
	}
}
