package s3store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"b2backup/internal/config"
	"b2backup/internal/credentials"
)

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
	}{
		{"s3.us-west-004.backblazeb2.com", "https://s3.us-west-004.backblazeb2.com"},
		{"https://s3.us-west-004.backblazeb2.com", "https://s3.us-west-004.backblazeb2.com"},
		{"http://localhost:9000", "http://localhost:9000"},
	}
	for _, tt := range tests {
		if got := normalizeEndpoint(tt.endpoint); got != tt.want {
			t.Errorf("normalizeEndpoint(%q) = %q, want %q", tt.endpoint, got, tt.want)
		}
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"typed not found", &types.NotFound{}, true},
		{"wrapped typed not found", fmt.Errorf("head: %w", &types.NotFound{}), true},
		{"bare NotFound api error", &smithy.GenericAPIError{Code: "NotFound"}, true},
		{"NoSuchKey api error", &smithy.GenericAPIError{Code: "NoSuchKey"}, true},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, false},
		{"plain error", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNotFound(tt.err); got != tt.want {
				t.Errorf("isNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStripQuotes(t *testing.T) {
	if got := stripQuotes(`"abc123"`); got != "abc123" {
		t.Errorf("stripQuotes() = %q, want abc123", got)
	}
	if got := stripQuotes("abc123"); got != "abc123" {
		t.Errorf("stripQuotes() = %q, want abc123", got)
	}
}

func TestLowercaseKeys(t *testing.T) {
	got := lowercaseKeys(map[string]string{"File-Hash": "abc", "file-size": "5"})
	if got["file-hash"] != "abc" || got["file-size"] != "5" {
		t.Errorf("lowercaseKeys() = %v", got)
	}
	if lowercaseKeys(nil) != nil {
		t.Error("lowercaseKeys(nil) != nil")
	}
}

func TestNewStoreFromConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, err := NewStoreFromConfig(ctx, config.StoreConfig{Type: "memory"}, nil)
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		if _, ok := store.(*MemoryStore); !ok {
			t.Errorf("store = %T, want *MemoryStore", store)
		}
	})

	t.Run("s3 requires credentials", func(t *testing.T) {
		if _, err := NewStoreFromConfig(ctx, config.StoreConfig{Type: "s3"}, nil); err == nil {
			t.Error("NewStoreFromConfig() = nil error without credentials")
		}
	})

	t.Run("s3 with credentials", func(t *testing.T) {
		creds := &credentials.Credentials{
			Endpoint:  "localhost:9000",
			AccessKey: "key",
			SecretKey: "secret",
			Region:    "us-east-1",
		}
		store, err := NewStoreFromConfig(ctx, config.StoreConfig{Type: "s3", S3PathStyle: true}, creds)
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		if _, ok := store.(*S3Store); !ok {
			t.Errorf("store = %T, want *S3Store", store)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewStoreFromConfig(ctx, config.StoreConfig{Type: "ftp"}, nil); err == nil {
			t.Error("NewStoreFromConfig() = nil error for unknown type")
		}
	})
}
