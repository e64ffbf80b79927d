package catalog

import (
	"context"
	"testing"
)

func TestMaterialsByIDsSkipsMalformedIDs(t *testing.T) {
	// No valid id means no query, so a nil database is never touched
	got, err := New(nil).MaterialsByIDs(context.Background(), []string{"abc", "VT-0001", ""})
	if err != nil {
		t.Fatalf("MaterialsByIDs failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no materials, got %d", len(got))
	}
}
