package storage

import (
	"context"
	"testing"
)

func TestLocalStorage_UploadAndList(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	if err := s.UploadObject(ctx, "plans/2024-03-01/plan-1.csv", []byte("a,b\n")); err != nil {
		t.Fatalf("Failed to upload: %v", err)
	}
	if err := s.UploadObject(ctx, "other/readme.txt", []byte("x")); err != nil {
		t.Fatalf("Failed to upload: %v", err)
	}

	objects, err := s.ListObjects(ctx, "plans/")
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(objects) != 1 || objects[0].Key != "plans/2024-03-01/plan-1.csv" || objects[0].Size != 4 {
		t.Errorf("Unexpected objects: %+v", objects)
	}
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	if err := s.UploadObject(context.Background(), "../outside.csv", []byte("x")); err == nil {
		t.Errorf("Expected key outside the root to be rejected")
	}
}

func TestContentType(t *testing.T) {
	if got := contentType("plans/a.CSV"); got != "text/csv" {
		t.Errorf("Expected text/csv, got %s", got)
	}
	if got := contentType("blob"); got != "application/octet-stream" {
		t.Errorf("Expected octet-stream, got %s", got)
	}
}
