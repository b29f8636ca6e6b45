package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"serpwatch/internal/models"
	"serpwatch/internal/testutil"
)

func TestInsertSnapshot(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	p := testutil.CreateTestProject(t, database, "Insert Test", "insert-test")
	kt := testutil.CreateTestKeywordTarget(t, database, p.ID, "espresso machines")

	snap := &models.SerpSnapshot{
		KeywordTargetID: kt.ID,
		CapturedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Results: []models.SerpResult{
			{URL: "https://a.example", Rank: 1, Title: "A"},
			{URL: "https://b.example", Rank: 2, Title: "B"},
		},
		AIOverview: models.AIOverviewAbsent,
		Features:   []string{"video"},
	}

	created, err := database.InsertSnapshot(ctx, snap)
	if err != nil {
		t.Fatalf("InsertSnapshot() error = %v", err)
	}
	if !created {
		t.Error("InsertSnapshot() created = false, want true")
	}
	if snap.ID == uuid.Nil {
		t.Error("InsertSnapshot() did not set ID")
	}
}

func TestInsertSnapshot_IdempotentReplay(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	p := testutil.CreateTestProject(t, database, "Replay Test", "replay-test")
	kt := testutil.CreateTestKeywordTarget(t, database, p.ID, "espresso machines")

	capturedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := &models.SerpSnapshot{
		KeywordTargetID: kt.ID,
		CapturedAt:      capturedAt,
		Results:         []models.SerpResult{{URL: "https://a.example", Rank: 1, Title: "A"}},
		AIOverview:      models.AIOverviewAbsent,
		Features:        []string{},
	}
	if _, err := database.InsertSnapshot(ctx, first); err != nil {
		t.Fatalf("InsertSnapshot() first error = %v", err)
	}

	replay := &models.SerpSnapshot{
		KeywordTargetID: kt.ID,
		CapturedAt:      capturedAt,
		Results:         []models.SerpResult{{URL: "https://other.example", Rank: 1, Title: "Other"}},
		AIOverview:      models.AIOverviewPresent,
		Features:        []string{},
	}
	created, err := database.InsertSnapshot(ctx, replay)
	if err != nil {
		t.Fatalf("InsertSnapshot() replay error = %v", err)
	}
	if created {
		t.Error("InsertSnapshot() replay created = true, want false")
	}
	if replay.ID != first.ID {
		t.Errorf("replay returned id %v, want existing %v", replay.ID, first.ID)
	}
	// Original record wins; the replayed body is discarded.
	if replay.AIOverview != models.AIOverviewAbsent {
		t.Errorf("replay AIOverview = %q, want original %q", replay.AIOverview, models.AIOverviewAbsent)
	}
}

func TestGetSnapshotsForTarget_AscendingOrder(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	p := testutil.CreateTestProject(t, database, "Order Test", "order-test")
	kt := testutil.CreateTestKeywordTarget(t, database, p.ID, "espresso machines")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// Insert out of order
	for _, offset := range []int{2, 0, 1} {
		testutil.InsertTestSnapshot(t, database, kt.ID, base.AddDate(0, 0, offset),
			[]string{"https://a.example"}, models.AIOverviewAbsent, []string{})
	}

	snaps, err := database.GetSnapshotsForTarget(ctx, kt.ID)
	if err != nil {
		t.Fatalf("GetSnapshotsForTarget() error = %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(snaps))
	}
	for i := 1; i < len(snaps); i++ {
		if snaps[i].CapturedAt.Before(snaps[i-1].CapturedAt) {
			t.Error("snapshots not in ascending capture order")
		}
	}
}

func TestListSnapshots_CursorPagination(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	p := testutil.CreateTestProject(t, database, "Page Test", "page-test")
	kt := testutil.CreateTestKeywordTarget(t, database, p.ID, "espresso machines")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		testutil.InsertTestSnapshot(t, database, kt.ID, base.AddDate(0, 0, i),
			[]string{"https://a.example"}, models.AIOverviewAbsent, []string{})
	}

	page1, err := database.ListSnapshots(ctx, kt.ID, nil, nil, 2, false)
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(page1) != 3 { // limit+1 signals another page
		t.Fatalf("page1 returned %d rows, want 3", len(page1))
	}

	last := page1[1]
	page2, err := database.ListSnapshots(ctx, kt.ID, &last.CapturedAt, &last.ID, 2, false)
	if err != nil {
		t.Fatalf("ListSnapshots() cursor error = %v", err)
	}
	if len(page2) == 0 {
		t.Fatal("page2 is empty")
	}

	seen := map[uuid.UUID]bool{page1[0].ID: true, page1[1].ID: true}
	for _, s := range page2 {
		if seen[s.ID] {
			t.Errorf("snapshot %v repeated across pages", s.ID)
		}
		if !s.CapturedAt.Before(last.CapturedAt) {
			t.Error("page2 item not older than cursor position")
		}
	}

	// Same cursor twice yields the same page
	again, err := database.ListSnapshots(ctx, kt.ID, &last.CapturedAt, &last.ID, 2, false)
	if err != nil {
		t.Fatalf("ListSnapshots() repeat error = %v", err)
	}
	if len(again) != len(page2) {
		t.Fatalf("repeated cursor returned %d rows, want %d", len(again), len(page2))
	}
	for i := range again {
		if again[i].ID != page2[i].ID {
			t.Error("repeated cursor returned different items")
		}
	}
}

func TestListSnapshots_RawPayloadOnlyWhenRequested(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	p := testutil.CreateTestProject(t, database, "Raw Test", "raw-test")
	kt := testutil.CreateTestKeywordTarget(t, database, p.ID, "espresso machines")
	testutil.InsertTestSnapshot(t, database, kt.ID, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		[]string{"https://a.example"}, models.AIOverviewAbsent, []string{})

	withoutRaw, err := database.ListSnapshots(ctx, kt.ID, nil, nil, 10, false)
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(withoutRaw) != 1 || withoutRaw[0].RawPayload != nil {
		t.Error("raw payload returned without includeRaw")
	}

	withRaw, err := database.ListSnapshots(ctx, kt.ID, nil, nil, 10, true)
	if err != nil {
		t.Fatalf("ListSnapshots(includeRaw) error = %v", err)
	}
	if len(withRaw) != 1 || withRaw[0].RawPayload == nil {
		t.Error("raw payload missing with includeRaw")
	}
}

func TestGetSnapshotsForProject_GroupedByTarget(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	p := testutil.CreateTestProject(t, database, "Group Test", "group-test")
	a := testutil.CreateTestKeywordTarget(t, database, p.ID, "espresso machines")
	b := testutil.CreateTestKeywordTarget(t, database, p.ID, "burr grinder")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	testutil.InsertTestSnapshot(t, database, a.ID, base, []string{"https://a.example"}, models.AIOverviewAbsent, []string{})
	testutil.InsertTestSnapshot(t, database, a.ID, base.AddDate(0, 0, 1), []string{"https://a.example"}, models.AIOverviewAbsent, []string{})
	testutil.InsertTestSnapshot(t, database, b.ID, base, []string{"https://b.example"}, models.AIOverviewAbsent, []string{})

	grouped, err := database.GetSnapshotsForProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetSnapshotsForProject() error = %v", err)
	}
	if len(grouped[a.ID]) != 2 {
		t.Errorf("target a has %d snapshots, want 2", len(grouped[a.ID]))
	}
	if len(grouped[b.ID]) != 1 {
		t.Errorf("target b has %d snapshots, want 1", len(grouped[b.ID]))
	}
}
