package database

import (
	"context"
	"strings"
	"testing"
)

func TestConnect_EmptyDSN(t *testing.T) {
	_, err := Connect(context.Background(), "")
	if err == nil {
		t.Fatalf("expected error for empty dsn")
	}
	if !strings.Contains(err.Error(), "must not be empty") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConnect_MalformedDSN(t *testing.T) {
	_, err := Connect(context.Background(), "not a dsn")
	if err == nil {
		t.Fatalf("expected error for malformed dsn")
	}
	if !strings.Contains(err.Error(), "parse pgx config") {
		t.Fatalf("unexpected error: %v", err)
	}
}
