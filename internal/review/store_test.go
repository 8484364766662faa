package review_test

import (
	"context"
	"testing"
	"time"

	"postmark/internal/review"
)

func TestStoreSaveOverwrites(t *testing.T) {
	store, err := review.OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	first := review.Annotation{Key: "A1", Label: review.LabelWrong, Explanation: "bad crop", UpdatedAt: time.Now()}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	second := review.Annotation{Key: "A1", Label: review.LabelCorrect, UpdatedAt: time.Now()}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("Save overwrite failed: %v", err)
	}

	got, err := store.Get(ctx, "A1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.Label != review.LabelCorrect || got.Explanation != "" {
		t.Fatalf("unexpected annotation: %+v", got)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("Count = %d, want 1", count)
	}
}

func TestStoreGetMissingReturnsNil(t *testing.T) {
	store, err := review.OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	defer store.Close()

	got, err := store.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil annotation, got %+v", got)
	}
}

func TestStoreAll(t *testing.T) {
	store, err := review.OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	for _, key := range []string{"A1", "B2", "C3"} {
		annotation := review.Annotation{Key: key, Label: review.LabelCorrect, UpdatedAt: time.Now()}
		if err := store.Save(ctx, annotation); err != nil {
			t.Fatalf("Save %s failed: %v", key, err)
		}
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("All returned %d annotations, want 3", len(all))
	}
	if _, ok := all["B2"]; !ok {
		t.Fatal("missing B2 annotation")
	}
}
