package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/yi-nology/stl_backend/pkg/storage/local"
	"github.com/yi-nology/stl_backend/pkg/storage/s3"
)

// Backend names accepted in storage.type.
const (
	TypeNone  = "none"
	TypeLocal = "local"
	TypeS3    = "s3"
)

const defaultExportDir = "data/exports"

// Config selects and configures the snapshot export backend.
type Config struct {
	Type  string      `yaml:"type"`
	Local LocalConfig `yaml:"local"`
	S3    S3Config    `yaml:"s3"`
}

type LocalConfig struct {
	BasePath string `yaml:"base_path"`
}

// S3Config holds S3-compatible settings (AWS S3, MinIO).
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	PathStyle bool   `yaml:"path_style"`
	// URLMode is "presigned" or "proxy".
	URLMode       string        `yaml:"url_mode"`
	PresignExpiry time.Duration `yaml:"presign_expiry"`
}

func (c S3Config) backend() s3.Config {
	return s3.Config{
		Endpoint:      c.Endpoint,
		Region:        c.Region,
		Bucket:        c.Bucket,
		AccessKey:     c.AccessKey,
		SecretKey:     c.SecretKey,
		UseSSL:        c.UseSSL,
		PathStyle:     c.PathStyle,
		URLMode:       c.URLMode,
		PresignExpiry: c.PresignExpiry,
	}
}

// New builds the configured backend. A nil Storage with a nil error means
// exports are disabled (type "none").
func New(cfg Config) (Storage, error) {
	switch strings.ToLower(cfg.Type) {
	case TypeNone:
		return nil, nil
	case "", TypeLocal:
		dir := cfg.Local.BasePath
		if dir == "" {
			dir = defaultExportDir
		}
		return local.New(dir)
	case TypeS3:
		return s3.New(cfg.S3.backend())
	default:
		return nil, fmt.Errorf("unsupported storage type %q (want %s, %s or %s)", cfg.Type, TypeLocal, TypeS3, TypeNone)
	}
}

// DefaultConfig stores exports on the local disk.
func DefaultConfig() Config {
	return Config{
		Type:  TypeLocal,
		Local: LocalConfig{BasePath: defaultExportDir},
		S3: S3Config{
			Region:  "us-east-1",
			URLMode: s3.URLModePresigned,
		},
	}
}
