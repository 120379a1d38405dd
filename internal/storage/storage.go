// Package storage keeps case document bytes outside the database. The store
// only records the object key; drivers turn keys into retrievable URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/aldoetobex/legalflow-backend/pkg/config"
	"github.com/aldoetobex/legalflow-backend/pkg/models"
)

// ObjectStore is implemented by Local, Supabase and S3.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string, size int64) error
	// URL returns a link the client can fetch the object from. Drivers with
	// private buckets return a short-lived signed URL.
	URL(ctx context.Context, key string) (string, error)
	// Delete is idempotent: a missing object is not an error.
	Delete(ctx context.Context, key string) error
	BulkDelete(ctx context.Context, keys []string) error
}

// MakeObjectKey builds a per-case key: case/<caseID>/<uuid><ext>.
// The original file name is kept on the document row, never in the key.
func MakeObjectKey(caseID uint, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("case", strconv.FormatUint(uint64(caseID), 10), uuid.NewString()+ext)
}

// New selects the driver named by STORAGE_DRIVER.
func New(ctx context.Context, cfg config.Config) (ObjectStore, error) {
	switch cfg.StorageDriver {
	case "supabase":
		return NewSupabase(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket, cfg.SignedURLTTL), nil
	case "s3":
		return LoadS3(ctx, cfg.S3Bucket, cfg.S3Region, cfg.SignedURLTTL)
	case "local", "":
		return NewLocal(cfg.UploadDir, cfg.PublicBaseURL+LocalRoute)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// AttachURLs fills URL on every document it can resolve. Failures leave URL
// empty and are returned joined so the caller can log them.
func AttachURLs(ctx context.Context, o ObjectStore, docs []models.CaseDocument) error {
	var errs []error
	for i := range docs {
		u, err := o.URL(ctx, docs[i].File)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		docs[i].URL = u
	}
	return errors.Join(errs...)
}
