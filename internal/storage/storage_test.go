package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

func Test_MakeObjectKey(t *testing.T) {
	a := MakeObjectKey(7, "Lease Agreement.PDF")
	b := MakeObjectKey(7, "Lease Agreement.PDF")
	if !strings.HasPrefix(a, "case/7/") || !strings.HasSuffix(a, ".pdf") {
		t.Fatalf("unexpected key %q", a)
	}
	if a == b {
		t.Fatal("keys must be unique per upload")
	}
	if strings.Contains(a, "Lease") {
		t.Fatalf("original name must not leak into the key: %q", a)
	}
}

/* ============================================================================
   Local
   ============================================================================ */

func Test_Local_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	l, err := NewLocal(dir, "http://localhost:8080/uploads/")
	if err != nil {
		t.Fatal(err)
	}

	key := "case/1/abc.pdf"
	if err := l.Upload(ctx, key, strings.NewReader("%PDF-1.4"), "application/pdf", 8); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "case", "1", "abc.pdf"))
	if err != nil || string(got) != "%PDF-1.4" {
		t.Fatalf("file not written: %q %v", got, err)
	}

	url, _ := l.URL(ctx, key)
	if url != "http://localhost:8080/uploads/case/1/abc.pdf" {
		t.Fatalf("url = %q", url)
	}

	if err := l.BulkDelete(ctx, []string{key, "case/1/missing.pdf"}); err != nil {
		t.Fatalf("bulk delete should ignore missing objects: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "case", "1", "abc.pdf")); !os.IsNotExist(err) {
		t.Fatal("file should be gone")
	}
}

func Test_Local_RejectsEscapingKeys(t *testing.T) {
	l, _ := NewLocal(t.TempDir(), "http://x")
	for _, key := range []string{"../etc/passwd", "/abs/path", ".."} {
		if err := l.Upload(context.Background(), key, strings.NewReader("x"), "text/plain", 1); err == nil {
			t.Fatalf("key %q should be rejected", key)
		}
	}
}

/* ============================================================================
   Supabase
   ============================================================================ */

type supabaseCall struct {
	method, path, auth, apikey, body string
}

func fakeSupabase(t *testing.T) (*httptest.Server, *[]supabaseCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []supabaseCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, supabaseCall{r.Method, r.URL.Path, r.Header.Get("Authorization"), r.Header.Get("apikey"), string(b)})
		mu.Unlock()

		switch {
		case strings.HasPrefix(r.URL.Path, "/storage/v1/object/sign/"):
			_ = json.NewEncoder(w).Encode(map[string]string{"signedURL": "/object/sign/docs/case/1/a.pdf?token=t"})
		case r.Method == http.MethodDelete && strings.HasSuffix(r.URL.Path, "/gone.pdf"):
			w.WriteHeader(http.StatusNotFound)
		case strings.HasSuffix(r.URL.Path, "/fail.pdf"):
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"boom"}`))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func Test_Supabase_Requests(t *testing.T) {
	ctx := context.Background()
	srv, calls := fakeSupabase(t)
	s := NewSupabase(srv.URL+"/", "svc-key", "docs", time.Minute)

	if err := s.Upload(ctx, "case/1/a.pdf", strings.NewReader("pdf"), "application/pdf", 3); err != nil {
		t.Fatal(err)
	}
	url, err := s.URL(ctx, "case/1/a.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if url != srv.URL+"/storage/v1/object/sign/docs/case/1/a.pdf?token=t" {
		t.Fatalf("signed url = %q", url)
	}
	if err := s.Delete(ctx, "case/1/gone.pdf"); err != nil {
		t.Fatalf("404 on delete should be success: %v", err)
	}
	if err := s.BulkDelete(ctx, []string{"case/1/a.pdf", "case/1/b.pdf"}); err != nil {
		t.Fatal(err)
	}

	got := *calls
	if len(got) != 4 {
		t.Fatalf("want 4 calls, got %d", len(got))
	}
	if got[0].method != "POST" || got[0].path != "/storage/v1/object/docs/case/1/a.pdf" || got[0].body != "pdf" {
		t.Fatalf("upload call = %+v", got[0])
	}
	if got[1].body != `{"expiresIn":60}` {
		t.Fatalf("sign body = %q", got[1].body)
	}
	if got[3].path != "/storage/v1/object/docs/remove" || !strings.Contains(got[3].body, `"prefixes"`) {
		t.Fatalf("bulk delete call = %+v", got[3])
	}
	for _, c := range got {
		if c.apikey != "svc-key" || c.auth != "Bearer svc-key" {
			t.Fatalf("missing auth headers on %+v", c)
		}
	}
}

func Test_Supabase_SurfacesErrors(t *testing.T) {
	srv, _ := fakeSupabase(t)
	s := NewSupabase(srv.URL, "k", "docs", time.Minute)
	err := s.Upload(context.Background(), "case/1/fail.pdf", strings.NewReader("x"), "application/pdf", 1)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("want upload error with body, got %v", err)
	}
	if err := s.BulkDelete(context.Background(), nil); err != nil {
		t.Fatalf("empty bulk delete is a no-op, got %v", err)
	}
}

/* ============================================================================
   S3
   ============================================================================ */

func Test_S3_PresignedURL(t *testing.T) {
	cfg := aws.Config{
		Region: "us-east-1",
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "AKIDTEST", SecretAccessKey: "secret"}, nil
		}),
	}
	s := NewS3(cfg, "legal-docs", 15*time.Minute)

	url, err := s.URL(context.Background(), "case/3/abc.pdf")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"legal-docs", "case/3/abc.pdf", "X-Amz-Signature=", "X-Amz-Expires=900"} {
		if !strings.Contains(url, want) {
			t.Fatalf("presigned url %q missing %q", url, want)
		}
	}
}
