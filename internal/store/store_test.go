package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/statline/statline/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "metrics.db"), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func record(ts time.Time, cpu float64) *models.MetricsRecord {
	return &models.MetricsRecord{
		ID:         uuid.NewString(),
		Timestamp:  ts,
		CPUPercent: cpu,
	}
}

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestOpen_RejectsEmptyPath(t *testing.T) {
	_, err := Open("", zap.NewNop())
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestInsertAndLatest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := &models.MetricsRecord{
		ID:               uuid.NewString(),
		Timestamp:        base,
		CPUPercent:       12.5,
		MemoryPercent:    48.2,
		MemoryUsed:       2048,
		MemoryTotal:      4096,
		TCPConnections:   23,
		NetworkBytesSent: 9999,
		UptimeSeconds:    360,
	}
	if err := s.Insert(ctx, rec); err != nil {
		t.Fatal(err)
	}

	got, err := s.Latest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("Latest returned nil for non-empty store")
	}
	if got.ID != rec.ID {
		t.Errorf("ID = %s, want %s", got.ID, rec.ID)
	}
	if !got.Timestamp.Equal(base) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, base)
	}
	if got.CPUPercent != 12.5 || got.MemoryUsed != 2048 || got.TCPConnections != 23 {
		t.Errorf("fields did not survive round trip: %+v", got)
	}
}

func TestLatest_EmptyStore(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Latest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("Latest = %+v, want nil on empty store", got)
	}
}

func TestLatest_PicksMaxTimestamp(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	newest := record(base.Add(2*time.Minute), 30)
	for _, r := range []*models.MetricsRecord{record(base.Add(time.Minute), 20), newest, record(base, 10)} {
		if err := s.Insert(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Latest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != newest.ID {
		t.Errorf("Latest = %s (cpu %v), want newest %s", got.ID, got.CPUPercent, newest.ID)
	}
}

func TestInsert_DuplicateIDConflicts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := record(base, 10)
	if err := s.Insert(ctx, rec); err != nil {
		t.Fatal(err)
	}

	dup := record(base.Add(time.Minute), 20)
	dup.ID = rec.ID
	err := s.Insert(ctx, dup)
	if !errors.Is(err, models.ErrPersistence) {
		t.Errorf("err = %v, want ErrPersistence", err)
	}
}

func TestInsert_RejectsInvalidRecords(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Insert(ctx, nil); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("nil record: err = %v, want ErrInvalidArgument", err)
	}
	if err := s.Insert(ctx, &models.MetricsRecord{Timestamp: base}); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("missing ID: err = %v, want ErrInvalidArgument", err)
	}
}

func TestRange_InclusiveBoundsAndOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, cpu := range []float64{10, 20, 30} {
		if err := s.Insert(ctx, record(base.Add(time.Duration(i)*time.Minute), cpu)); err != nil {
			t.Fatal(err)
		}
	}

	// Window covering only the middle record.
	got, err := s.Range(ctx, base.Add(30*time.Second), base.Add(90*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].CPUPercent != 20 {
		t.Errorf("narrow window returned %d records (%v), want the middle one", len(got), got)
	}

	// Bounds are inclusive on both sides.
	got, err = s.Range(ctx, base, base.Add(2*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("full window returned %d records, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Errorf("records out of order: %v before %v", got[i].Timestamp, got[i-1].Timestamp)
		}
	}
}

func TestRange_EmptyWindow(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Range(context.Background(), base, base.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("empty window should return an empty slice, got %v", got)
	}
}

func TestRange_ReversedBoundsRejected(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Range(context.Background(), base.Add(time.Hour), base)
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestRecent_NegativeWindowRejected(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Recent(context.Background(), -time.Minute)
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestRecent_TrailingWindow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	old := record(now.Add(-2*time.Hour), 10)
	fresh := record(now.Add(-10*time.Minute), 20)
	for _, r := range []*models.MetricsRecord{old, fresh} {
		if err := s.Insert(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Recent(ctx, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != fresh.ID {
		t.Errorf("Recent(1h) = %d records, want only the fresh one", len(got))
	}
}

func TestStats_Aggregates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cpus := []float64{10, 20, 30}
	for i, cpu := range cpus {
		rec := record(base.Add(time.Duration(i)*time.Minute), cpu)
		rec.MemoryUsed = uint64(100 * (i + 1))
		rec.TCPConnections = 5 * (i + 1)
		if err := s.Insert(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	sum, err := s.Stats(ctx, base, base.Add(2*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if sum.Count != 3 {
		t.Fatalf("Count = %d, want 3", sum.Count)
	}
	if sum.CPUPercent == nil {
		t.Fatal("CPUPercent aggregate missing")
	}
	if sum.CPUPercent.Avg != 20 || sum.CPUPercent.Min != 10 || sum.CPUPercent.Max != 30 {
		t.Errorf("CPUPercent = %+v, want avg 20 min 10 max 30", sum.CPUPercent)
	}
	if sum.MemoryUsed == nil || sum.MemoryUsed.Avg != 200 || sum.MemoryUsed.Min != 100 || sum.MemoryUsed.Max != 300 {
		t.Errorf("MemoryUsed = %+v, want avg 200 min 100 max 300", sum.MemoryUsed)
	}
	if sum.TCPConnections == nil || sum.TCPConnections.Avg != 10 || sum.TCPConnections.Min != 5 || sum.TCPConnections.Max != 15 {
		t.Errorf("TCPConnections = %+v, want avg 10 min 5 max 15", sum.TCPConnections)
	}
}

func TestStats_EmptyWindow(t *testing.T) {
	s := openTestStore(t)

	sum, err := s.Stats(context.Background(), base, base.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if sum.Count != 0 {
		t.Errorf("Count = %d, want 0", sum.Count)
	}
	if sum.CPUPercent != nil || sum.MemoryUsed != nil || sum.TCPConnections != nil {
		t.Errorf("aggregates should be nil on empty window: %+v", sum)
	}
}

func TestStats_ReversedBoundsRejected(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Stats(context.Background(), base.Add(time.Hour), base)
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestPrune_DeletesOnlyExpired(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	expired := record(now.Add(-3*time.Hour), 10)
	kept := record(now.Add(-time.Hour), 20)
	current := record(now, 30)
	for _, r := range []*models.MetricsRecord{expired, kept, current} {
		if err := s.Insert(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := s.Prune(ctx, 2*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	// Idempotent: nothing else crosses the cutoff.
	deleted, err = s.Prune(ctx, 2*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 0 {
		t.Errorf("second prune deleted %d, want 0", deleted)
	}

	remaining, err := s.Range(ctx, now.Add(-24*time.Hour), now)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 2 {
		t.Errorf("%d records remain, want 2", len(remaining))
	}
	for _, r := range remaining {
		if r.ID == expired.ID {
			t.Error("expired record survived prune")
		}
	}
}

func TestPrune_NegativeRetentionRejected(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Prune(context.Background(), -time.Hour)
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.db")
	ctx := context.Background()

	s, err := Open(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	rec := record(base, 42)
	if err := s.Insert(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got, err := reopened.Latest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != rec.ID {
		t.Errorf("record did not survive reopen: %+v", got)
	}
}
