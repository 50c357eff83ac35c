package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"jobtrail-utils/pkg/models"
)

func testJob(title string) *models.Job {
	return &models.Job{
		Title:       title,
		CompanyName: "Acme",
		Description: "Build things",
	}
}

func TestGetAfterPut(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	key := "https://example.com/job/1"
	job := testJob("Backend Engineer")

	if _, ok := s.Get(ctx, key); ok {
		t.Fatal("empty store reported a hit")
	}

	if err := s.Put(ctx, key, job); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Every subsequent read returns the stored value
	for i := 0; i < 3; i++ {
		got, ok := s.Get(ctx, key)
		if !ok {
			t.Fatal("expected cache hit")
		}
		if got.Title != "Backend Engineer" {
			t.Errorf("got title %q", got.Title)
		}
	}
}

func TestPutIsUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	key := "https://example.com/job/1"
	s.Put(ctx, key, testJob("First"))
	s.Put(ctx, key, testJob("Second"))

	got, ok := s.Get(ctx, key)
	if !ok || got.Title != "Second" {
		t.Errorf("last write did not win: %+v", got)
	}
	if s.Len() != 1 {
		t.Errorf("upsert created a second entry, len=%d", s.Len())
	}
}

func TestDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	s.Put(ctx, "a", testJob("A"))
	s.Put(ctx, "b", testJob("B"))

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := s.Get(ctx, "a"); ok {
		t.Error("deleted entry still readable")
	}
	if _, ok := s.Get(ctx, "b"); !ok {
		t.Error("unrelated entry removed by Delete")
	}

	// Deleting a missing key is not an error
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Clear left %d entries", s.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("https://example.com/job/%d", n)
			for j := 0; j < 100; j++ {
				s.Put(ctx, key, testJob(fmt.Sprintf("Job %d", n)))
				s.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	if s.Len() != 8 {
		t.Errorf("expected 8 entries, got %d", s.Len())
	}
}
