package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/sirupsen/logrus"

	"github.com/rinawarp/downloads/internal/config"
	"github.com/rinawarp/downloads/pkg/models"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidPath    = errors.New("invalid path")
)

// verificationPrefix is where public checksum/signature artifacts live in
// the bucket, separate from the protected installer binaries.
const verificationPrefix = "verify/"

// keyRule maps a user-facing filename onto a canonical versioned object
// key. Rules are evaluated in declaration order and the first match wins;
// exact extensions come before looser platform hints so that, e.g., a
// "...linux.deb" request resolves to the deb package and not the AppImage.
type keyRule struct {
	platform string
	match    func(lower string) bool
	key      string
}

// InstallerStore resolves requested filenames to canonical installer
// objects and streams them from the S3-compatible bucket.
type InstallerStore struct {
	client *minio.Client
	bucket string
	logger *logrus.Logger
	rules  []keyRule
}

func NewInstallerStore(cfg *config.Config, client *minio.Client, logger *logrus.Logger) *InstallerStore {
	version := cfg.Storage.ReleaseVersion
	canonical := func(ext string) string {
		return fmt.Sprintf("RinaWarp-Terminal-Pro-%s.%s", version, ext)
	}

	rules := []keyRule{
		{
			platform: "macos",
			match: func(l string) bool {
				return strings.HasSuffix(l, ".dmg") ||
					strings.Contains(l, "mac") || strings.Contains(l, "darwin") || strings.Contains(l, "osx")
			},
			key: canonical("dmg"),
		},
		{
			platform: "windows",
			match: func(l string) bool {
				return strings.HasSuffix(l, ".exe") || strings.Contains(l, "win")
			},
			key: canonical("exe"),
		},
		{
			platform: "debian",
			match:    func(l string) bool { return strings.HasSuffix(l, ".deb") },
			key:      canonical("deb"),
		},
		{
			platform: "redhat",
			match:    func(l string) bool { return strings.HasSuffix(l, ".rpm") },
			key:      canonical("rpm"),
		},
		{
			platform: "linux",
			match: func(l string) bool {
				return strings.HasSuffix(l, ".appimage") ||
					strings.Contains(l, "appimage") || strings.Contains(l, "linux")
			},
			key: canonical("AppImage"),
		},
	}

	return &InstallerStore{
		client: client,
		bucket: cfg.Storage.Bucket,
		logger: logger,
		rules:  rules,
	}
}

// CanonicalKey is total: a filename matching no rule maps to itself, and
// the distinction between "unknown name" and "known name whose object is
// missing" is left to the store lookup.
func (s *InstallerStore) CanonicalKey(filename string) string {
	lower := strings.ToLower(filename)
	for _, rule := range s.rules {
		if rule.match(lower) {
			return rule.key
		}
	}
	return filename
}

// Platform reports which rule a filename resolves under, for metrics.
func (s *InstallerStore) Platform(filename string) string {
	lower := strings.ToLower(filename)
	for _, rule := range s.rules {
		if rule.match(lower) {
			return rule.platform
		}
	}
	return "other"
}

// Fetch opens the object for streaming. The caller owns the returned
// reader. A missing object is ErrObjectNotFound; anything else is an
// infrastructure fault.
func (s *InstallerStore) Fetch(ctx context.Context, key string) (io.ReadCloser, models.ObjectInfo, error) {
	var info models.ObjectInfo

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, info, fmt.Errorf("object get: %w", err)
	}

	// GetObject is lazy; Stat forces the first round trip so missing
	// objects surface here instead of mid-stream.
	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, info, ErrObjectNotFound
		}
		return nil, info, fmt.Errorf("object stat: %w", err)
	}

	info.Key = key
	info.Size = stat.Size
	info.ContentType = stat.ContentType
	return obj, info, nil
}

// FetchVerification serves public integrity artifacts (checksums, PGP
// signatures). It is reachable without a token, so the path is checked for
// traversal before any store access.
func (s *InstallerStore) FetchVerification(ctx context.Context, filename string) (io.ReadCloser, models.ObjectInfo, error) {
	if filename == "" || strings.Contains(filename, "..") {
		return nil, models.ObjectInfo{}, ErrInvalidPath
	}
	return s.Fetch(ctx, verificationPrefix+filename)
}
