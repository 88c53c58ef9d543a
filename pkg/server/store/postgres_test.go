//go:build integration && postgres

package store

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gatewatch/gatewatch/pkg/server/models"
)

// Shared test container for all postgres tests. The concurrency guarantees
// under test (SKIP LOCKED candidate selection, unique-index races) only exist
// on a real PostgreSQL server, so these tests do not run against SQLite.
var sharedPostgres *postgresContainer

type postgresContainer struct {
	container testcontainers.Container
	host      string
	port      int
}

// TestMain sets up a shared PostgreSQL container for all tests in the package.
func TestMain(m *testing.M) {
	ctx := context.Background()

	// PostgreSQL logs "database system is ready" twice during startup, once
	// for the bootstrap instance and once when fully up.
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("gatewatch_test"),
		postgres.WithUsername("gatewatch_test"),
		postgres.WithPassword("gatewatch_test"),
		testcontainers.WithWaitStrategyAndDeadline(5*time.Minute,
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get container host: %v\n", err)
		os.Exit(1)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		_ = container.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get container port: %v\n", err)
		os.Exit(1)
	}

	sharedPostgres = &postgresContainer{
		container: container,
		host:      host,
		port:      port.Int(),
	}

	exitCode := m.Run()

	if err := container.Terminate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to terminate container: %v\n", err)
	}

	os.Exit(exitCode)
}

// createPostgresStore connects to the shared container. Migrations run on
// first connect and are a no-op afterwards.
func createPostgresStore(t *testing.T) *GORMStore {
	t.Helper()

	if sharedPostgres == nil {
		t.Fatal("shared postgres container not initialized - TestMain() not run?")
	}

	store, err := New(&Config{
		Type: DatabaseTypePostgres,
		Postgres: PostgresConfig{
			Host:     sharedPostgres.host,
			Port:     sharedPostgres.port,
			Database: "gatewatch_test",
			User:     "gatewatch_test",
			Password: "gatewatch_test",
			SSLMode:  "disable",
		},
	})
	if err != nil {
		t.Fatalf("failed to create postgres store: %v", err)
	}
	return store
}

// resetPostgres empties all tables. The container is shared across tests.
func resetPostgres(t *testing.T, s *GORMStore) {
	t.Helper()
	for _, table := range []string{"violations", "overstay_alerts", "passages", "checkposts", "segments", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("failed to reset table %s: %v", table, err)
		}
	}
}

func TestPostgresSchema(t *testing.T) {
	store := createPostgresStore(t)
	defer store.Close()
	resetPostgres(t, store)
	ctx := context.Background()

	if err := store.Healthcheck(ctx); err != nil {
		t.Fatalf("healthcheck failed: %v", err)
	}

	// Exercise the full write path once so column mismatches between the
	// migration files and the models surface here rather than in production.
	segment := seedSegment(t, store)
	cpA := checkpostID(t, segment, "BNP-A")
	cpB := checkpostID(t, segment, "BNP-B")
	base := time.Now().Add(-2 * time.Hour).UTC()

	if _, err := store.InsertPassage(ctx, makePassage("pg-entry", cpA, segment.ID, base)); err != nil {
		t.Fatalf("entry insert failed: %v", err)
	}

	exit, err := store.InsertPassage(ctx, makePassage("pg-exit", cpB, segment.ID, base.Add(15*time.Minute)))
	if err != nil {
		t.Fatalf("exit insert failed: %v", err)
	}
	if !exit.Matched {
		t.Error("expected pair to form")
	}
	if exit.Violation == nil || exit.Violation.Kind != string(models.ViolationSpeeding) {
		t.Error("expected speeding violation")
	}

	scan, err := store.ScanOverstays(ctx, time.Now())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if scan.Created != 0 {
		t.Errorf("matched journey alerted: %d", scan.Created)
	}
}

func TestConcurrentExitRace(t *testing.T) {
	store := createPostgresStore(t)
	defer store.Close()
	resetPostgres(t, store)
	ctx := context.Background()

	segment := seedSegment(t, store)
	cpA := checkpostID(t, segment, "BNP-A")
	cpB := checkpostID(t, segment, "BNP-B")
	base := time.Now().Add(-3 * time.Hour).UTC()

	entry, err := store.InsertPassage(ctx, makePassage("race-entry", cpA, segment.ID, base))
	if err != nil {
		t.Fatalf("entry insert failed: %v", err)
	}

	// Many exits for the same plate arrive at once: offline agents flushing
	// their queues after connectivity returns. Exactly one may claim the
	// entry; the rest must settle as unmatched rows, not errors. Travel
	// times are kept below the minimum so the winner always records a
	// speeding violation.
	const workers = 8
	results := make([]*InsertResult, workers)
	errs := make([]error, workers)

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			p := makePassage(fmt.Sprintf("race-exit-%d", i), cpB, segment.ID, base.Add(time.Duration(10+i)*time.Minute))
			results[i], errs[i] = store.InsertPassage(ctx, p)
		}(i)
	}
	close(start)
	wg.Wait()

	matched := 0
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d failed: %v", i, errs[i])
		}
		if results[i].Matched {
			matched++
		}
	}
	if matched != 1 {
		t.Fatalf("expected exactly 1 matched exit, got %d", matched)
	}

	entryRow, err := store.GetPassage(ctx, entry.Passage.ID)
	if err != nil {
		t.Fatalf("get entry failed: %v", err)
	}
	if !entryRow.IsMatched() {
		t.Fatal("entry not matched after the race")
	}
	if entryRow.IsEntry == nil || !*entryRow.IsEntry {
		t.Error("entry row lost its direction")
	}

	// The winner and the entry must reference each other.
	exitRow, err := store.GetPassage(ctx, *entryRow.MatchedPassageID)
	if err != nil {
		t.Fatalf("get winning exit failed: %v", err)
	}
	if exitRow.MatchedPassageID == nil || *exitRow.MatchedPassageID != entryRow.ID {
		t.Error("pair links are not symmetric")
	}

	// One journey, one violation, however the race went.
	violations, err := store.ListViolations(ctx, ViolationFilter{SegmentID: segment.ID})
	if err != nil {
		t.Fatalf("list violations failed: %v", err)
	}
	if len(violations) != 1 {
		t.Fatalf("race produced %d violations for one journey", len(violations))
	}
	if violations[0].Kind != string(models.ViolationSpeeding) {
		t.Errorf("expected speeding, got %s", violations[0].Kind)
	}
}

func TestConcurrentDuplicateIntake(t *testing.T) {
	store := createPostgresStore(t)
	defer store.Close()
	resetPostgres(t, store)
	ctx := context.Background()

	segment := seedSegment(t, store)
	cpA := checkpostID(t, segment, "BNP-A")
	base := time.Now().Add(-1 * time.Hour).UTC()

	// The same observation pushed over HTTP and SMS at the same time, or an
	// agent retrying a request whose response was lost.
	const workers = 8
	results := make([]*InsertResult, workers)
	errs := make([]error, workers)

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = store.InsertPassage(ctx, makePassage("dup-client", cpA, segment.ID, base))
		}(i)
	}
	close(start)
	wg.Wait()

	originals := 0
	var storedID string
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d failed: %v", i, errs[i])
		}
		if !results[i].Duplicate {
			originals++
			storedID = results[i].Passage.ID
		}
	}
	if originals != 1 {
		t.Fatalf("expected exactly 1 original insert, got %d", originals)
	}
	for i := 0; i < workers; i++ {
		if results[i].Passage.ID != storedID {
			t.Fatalf("worker %d returned a different row: %s != %s", i, results[i].Passage.ID, storedID)
		}
	}

	var count int64
	if err := store.db.Model(&models.Passage{}).Where("client_id = ?", "dup-client").Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 stored row, got %d", count)
	}
}

func TestConcurrentOverstayScan(t *testing.T) {
	store := createPostgresStore(t)
	defer store.Close()
	resetPostgres(t, store)
	ctx := context.Background()

	segment := seedSegment(t, store)
	cpA := checkpostID(t, segment, "BNP-A")
	entryAt := time.Now().Add(-6 * time.Hour).UTC()

	const overdue = 5
	for i := 0; i < overdue; i++ {
		p := makePassage(fmt.Sprintf("scan-%d", i), cpA, segment.ID, entryAt.Add(time.Duration(i)*time.Minute))
		p.PlateNumber = fmt.Sprintf("BA%dPA100%d", i+1, i)
		if _, err := store.InsertPassage(ctx, p); err != nil {
			t.Fatalf("insert %d failed: %v", i, err)
		}
	}

	// Two server instances running the scan on the same schedule.
	now := time.Now()
	var wg sync.WaitGroup
	scanResults := make([]*ScanResult, 2)
	scanErrs := make([]error, 2)

	start := make(chan struct{})
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			scanResults[i], scanErrs[i] = store.ScanOverstays(ctx, now)
		}(i)
	}
	close(start)
	wg.Wait()

	total := 0
	for i := 0; i < 2; i++ {
		if scanErrs[i] != nil {
			t.Fatalf("scanner %d failed: %v", i, scanErrs[i])
		}
		total += scanResults[i].Created
	}
	if total != overdue {
		t.Fatalf("expected %d alerts across both scanners, got %d", overdue, total)
	}

	alerts, err := store.ListOverstayAlerts(ctx, AlertFilter{SegmentID: segment.ID})
	if err != nil {
		t.Fatalf("list alerts failed: %v", err)
	}
	if len(alerts) != overdue {
		t.Fatalf("expected %d stored alerts, got %d", overdue, len(alerts))
	}
}
