package s3

import (
	"context"
	"strings"
	"testing"
)

func TestNewValidatesConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"missing bucket", Config{AccessKey: "a", SecretKey: "b"}, "bucket"},
		{"missing keys", Config{Bucket: "exports"}, "access key"},
		{"bad url mode", Config{Bucket: "exports", AccessKey: "a", SecretKey: "b", URLMode: "cdn"}, "url mode"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.cfg)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestGenerateURL(t *testing.T) {
	ctx := context.Background()
	base := Config{
		Endpoint:  "localhost:9000",
		Bucket:    "exports",
		AccessKey: "minio",
		SecretKey: "minio123",
		PathStyle: true,
	}

	t.Run("proxy mode points at the API", func(t *testing.T) {
		cfg := base
		cfg.URLMode = URLModeProxy
		st, err := New(cfg)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		url, err := st.GenerateURL(ctx, "revisions/1/P/rev-1-x.json")
		if err != nil {
			t.Fatalf("GenerateURL: %v", err)
		}
		if url != "/api/v1/exports/revisions/1/P/rev-1-x.json" {
			t.Fatalf("unexpected url %q", url)
		}
	})

	t.Run("presigned mode signs locally", func(t *testing.T) {
		st, err := New(base)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		url, err := st.GenerateURL(ctx, "revisions/1/P/rev-1-x.json")
		if err != nil {
			t.Fatalf("GenerateURL: %v", err)
		}
		if !strings.HasPrefix(url, "http://localhost:9000/exports/revisions/1/P/rev-1-x.json?") {
			t.Fatalf("unexpected url %q", url)
		}
		if !strings.Contains(url, "X-Amz-Signature=") {
			t.Fatalf("url is not signed: %q", url)
		}
	})
}

func TestEndpointURL(t *testing.T) {
	if got := endpointURL("minio:9000", false); got != "http://minio:9000" {
		t.Fatalf("got %q", got)
	}
	if got := endpointURL("minio:9000", true); got != "https://minio:9000" {
		t.Fatalf("got %q", got)
	}
	if got := endpointURL("https://s3.example", false); got != "https://s3.example" {
		t.Fatalf("got %q", got)
	}
}
