package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

/*
Supabase wraps minimal calls to Supabase Storage REST API.

Notes on authorization:
- If you use a legacy service_role JWT, send both `apikey` and `Authorization: Bearer <token>`.
- If you use a Secret API Key (sb_secret_...) that is NOT a JWT, some setups do NOT require the
  Authorization header. In that case, drop it in authorize below.
*/

type Supabase struct {
	baseURL string // e.g. https://<project>.supabase.co
	apiKey  string // service_role JWT or secret API key
	bucket  string
	ttl     time.Duration
	client  *http.Client
}

func NewSupabase(baseURL, apiKey, bucket string, ttl time.Duration) *Supabase {
	return &Supabase{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		bucket:  bucket,
		ttl:     ttl,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *Supabase) authorize(req *http.Request) {
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
}

func (s *Supabase) do(req *http.Request, op string) (*http.Response, error) {
	s.authorize(req)
	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 300 {
		defer res.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		return nil, fmt.Errorf("supabase %s error: %s | %s", op, res.Status, string(b))
	}
	return res, nil
}

// Upload sends a new object to: POST /storage/v1/object/{bucket}/{objectName}
func (s *Supabase) Upload(ctx context.Context, key string, r io.Reader, contentType string, size int64) error {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = size

	res, err := s.do(req, "upload")
	if err != nil {
		return err
	}
	return res.Body.Close()
}

// URL creates a short-lived signed URL:
// POST /storage/v1/object/sign/{bucket}/{objectName}  body: {"expiresIn": <seconds>}
func (s *Supabase) URL(ctx context.Context, key string) (string, error) {
	url := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", s.baseURL, s.bucket, key)

	body, _ := json.Marshal(map[string]int{"expiresIn": int(s.ttl / time.Second)})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.do(req, "sign")
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	var out struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.SignedURL == "" {
		return "", fmt.Errorf("empty signedURL in response")
	}

	// API returns a relative path; convert to absolute URL.
	return s.baseURL + "/storage/v1" + out.SignedURL, nil
}

// Delete removes an object by key:
// DELETE /storage/v1/object/{bucket}/{objectName}
// 404 is treated as success (already deleted).
func (s *Supabase) Delete(ctx context.Context, key string) error {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	s.authorize(req)

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		return fmt.Errorf("supabase delete error: %s | %s", res.Status, string(b))
	}
	return nil
}

// BulkDelete removes multiple objects in one call:
// POST /storage/v1/object/{bucket}/remove
// Body: {"prefixes": ["case/<id>/file1.png", "case/<id>/file2.pdf", ...]}
func (s *Supabase) BulkDelete(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	url := fmt.Sprintf("%s/storage/v1/object/%s/remove", s.baseURL, s.bucket)

	body, _ := json.Marshal(map[string][]string{"prefixes": keys})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.do(req, "bulk delete")
	if err != nil {
		return err
	}
	// API usually returns an array of per-prefix results; errors are already handled above.
	return res.Body.Close()
}
