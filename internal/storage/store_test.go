package storage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"neurowire/internal/model"
)

func newStores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	memory := NewMemoryStore()
	if err := memory.Init(ctx); err != nil {
		t.Fatalf("init memory: %v", err)
	}
	sqlite := NewSQLiteStore(filepath.Join(t.TempDir(), "neurowire.db"))
	if err := sqlite.Init(ctx); err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlite.Close()
	})
	return map[string]Store{"memory": memory, "sqlite": sqlite}
}

func testRun(id, created string) model.RunRecord {
	return model.RunRecord{
		VersionedRecord:    CurrentVersion(),
		ID:                 id,
		CreatedAtUTC:       created,
		Width:              200,
		Height:             200,
		PopulationSize:     10,
		TurnsPerGeneration: 60,
		Generations:        5,
		NeuronCount:        4,
		MaxLinks:           10,
		MutationRate:       0.01,
		Predicate:          "right-half",
		Extinction:         "reseed",
		Seed:               7,
	}
}

func testGeneration(runID string, number int) model.GenerationRecord {
	return model.GenerationRecord{
		VersionedRecord:  CurrentVersion(),
		RunID:            runID,
		GenerationNumber: number,
		Survivors:        number * 2,
		Generation: model.PopulationDump{
			{{Sensor: "AL", Action: "N0", LinkStrength: float64(number) / 8}},
			{},
		},
	}
}

func TestStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			run := testRun("run-1", "2026-01-01T00:00:00Z")
			if err := store.SaveRun(ctx, run); err != nil {
				t.Fatalf("save run: %v", err)
			}
			loaded, ok, err := store.GetRun(ctx, "run-1")
			if err != nil {
				t.Fatalf("get run: %v", err)
			}
			if !ok || !reflect.DeepEqual(loaded, run) {
				t.Fatalf("unexpected run loaded: ok=%v %+v", ok, loaded)
			}

			run.FinalGeneration = 5
			run.FinalSurvivors = 6
			if err := store.SaveRun(ctx, run); err != nil {
				t.Fatalf("update run: %v", err)
			}
			loaded, _, _ = store.GetRun(ctx, "run-1")
			if loaded.FinalGeneration != 5 || loaded.FinalSurvivors != 6 {
				t.Fatalf("expected updated run, got %+v", loaded)
			}

			if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
				t.Fatalf("expected missing run, got ok=%v err=%v", ok, err)
			}
		})
	}
}

func TestStoreListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, run := range []model.RunRecord{
				testRun("b", "2026-01-02T00:00:00Z"),
				testRun("a", "2026-01-01T00:00:00Z"),
				testRun("c", "2026-01-03T00:00:00Z"),
			} {
				if err := store.SaveRun(ctx, run); err != nil {
					t.Fatalf("save run: %v", err)
				}
			}
			runs, err := store.ListRuns(ctx, 0)
			if err != nil {
				t.Fatalf("list runs: %v", err)
			}
			if len(runs) != 3 || runs[0].ID != "c" || runs[1].ID != "b" || runs[2].ID != "a" {
				t.Fatalf("unexpected run order: %+v", runs)
			}
			limited, err := store.ListRuns(ctx, 2)
			if err != nil {
				t.Fatalf("list runs limited: %v", err)
			}
			if len(limited) != 2 || limited[1].ID != "b" {
				t.Fatalf("unexpected limited runs: %+v", limited)
			}
		})
	}
}

func TestStoreGenerations(t *testing.T) {
	ctx := context.Background()
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := store.LatestGeneration(ctx, "run-1"); err != nil || ok {
				t.Fatalf("expected no generations, got ok=%v err=%v", ok, err)
			}
			for _, number := range []int{5, 0, 10} {
				if err := store.SaveGeneration(ctx, testGeneration("run-1", number)); err != nil {
					t.Fatalf("save generation %d: %v", number, err)
				}
			}
			if err := store.SaveGeneration(ctx, testGeneration("run-2", 99)); err != nil {
				t.Fatalf("save other run: %v", err)
			}

			numbers, err := store.ListGenerations(ctx, "run-1")
			if err != nil {
				t.Fatalf("list generations: %v", err)
			}
			if !reflect.DeepEqual(numbers, []int{0, 5, 10}) {
				t.Fatalf("unexpected generation numbers: %v", numbers)
			}

			got, ok, err := store.GetGeneration(ctx, "run-1", 5)
			if err != nil || !ok {
				t.Fatalf("get generation: ok=%v err=%v", ok, err)
			}
			if !reflect.DeepEqual(got, testGeneration("run-1", 5)) {
				t.Fatalf("unexpected generation: %+v", got)
			}

			latest, ok, err := store.LatestGeneration(ctx, "run-1")
			if err != nil || !ok || latest.GenerationNumber != 10 {
				t.Fatalf("unexpected latest generation: %+v ok=%v err=%v", latest, ok, err)
			}
			if _, ok, _ := store.GetGeneration(ctx, "run-1", 4); ok {
				t.Fatal("expected generation 4 to be missing")
			}
		})
	}
}

func TestStoreSurvivorHistoryReplaces(t *testing.T) {
	ctx := context.Background()
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := store.GetSurvivorHistory(ctx, "run-1"); err != nil || ok {
				t.Fatalf("expected no history, got ok=%v err=%v", ok, err)
			}
			first := []model.SurvivorPoint{{Generation: 1, Survivors: 3, Population: 10}}
			if err := store.SaveSurvivorHistory(ctx, "run-1", first); err != nil {
				t.Fatalf("save history: %v", err)
			}
			second := []model.SurvivorPoint{
				{Generation: 1, Survivors: 3, Population: 10},
				{Generation: 2, Survivors: 7, Population: 10},
			}
			if err := store.SaveSurvivorHistory(ctx, "run-1", second); err != nil {
				t.Fatalf("replace history: %v", err)
			}
			got, ok, err := store.GetSurvivorHistory(ctx, "run-1")
			if err != nil || !ok {
				t.Fatalf("get history: ok=%v err=%v", ok, err)
			}
			if !reflect.DeepEqual(got, second) {
				t.Fatalf("unexpected history: %+v", got)
			}
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	generation := testGeneration("run-1", 1)
	if err := store.SaveGeneration(ctx, generation); err != nil {
		t.Fatalf("save: %v", err)
	}
	generation.Generation[0][0].LinkStrength = 3
	got, _, _ := store.GetGeneration(ctx, "run-1", 1)
	if got.Generation[0][0].LinkStrength != 0.125 {
		t.Fatalf("stored generation aliased caller slice: %+v", got.Generation)
	}
}

func TestStoresRequireInit(t *testing.T) {
	ctx := context.Background()
	if err := NewMemoryStore().SaveRun(ctx, testRun("r", "")); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized from memory store, got %v", err)
	}
	if err := NewSQLiteStore("unused.db").SaveRun(ctx, testRun("r", "")); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized from sqlite store, got %v", err)
	}
	if err := NewSQLiteStore("").Init(ctx); err == nil {
		t.Fatal("expected sqlite path validation")
	}
}

func TestSQLiteStoreReopens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")
	store := NewSQLiteStore(path)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := store.SaveRun(ctx, testRun("kept", "2026-01-01T00:00:00Z")); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := NewSQLiteStore(path)
	if err := reopened.Init(ctx); err != nil {
		t.Fatalf("reinit: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	if _, ok, err := reopened.GetRun(ctx, "kept"); err != nil || !ok {
		t.Fatalf("expected run after reopen: ok=%v err=%v", ok, err)
	}
}

func TestNewStore(t *testing.T) {
	store, err := NewStore("memory", "")
	if err != nil || store == nil {
		t.Fatalf("new memory store: %v", err)
	}
	if err := CloseIfSupported(store); err != nil {
		t.Fatalf("close memory store: %v", err)
	}
	store, err = NewStore("sqlite", filepath.Join(t.TempDir(), "factory.db"))
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	if _, ok := store.(*SQLiteStore); !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}
	if _, err := NewStore("unknown", ""); err == nil {
		t.Fatal("expected unsupported store error")
	}
}

func TestListRunsOrdersWithinOneSecond(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)
	older := FormatTimestamp(base)
	newer := FormatTimestamp(base.Add(500 * time.Millisecond))
	if older != "2026-03-01T12:00:05.000000000Z" || newer <= older {
		t.Fatalf("timestamps must be fixed width and ordered: %q %q", older, newer)
	}
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, run := range []model.RunRecord{testRun("newer", newer), testRun("older", older)} {
				if err := store.SaveRun(ctx, run); err != nil {
					t.Fatalf("save run: %v", err)
				}
			}
			runs, err := store.ListRuns(ctx, 1)
			if err != nil {
				t.Fatalf("list runs: %v", err)
			}
			if len(runs) != 1 || runs[0].ID != "newer" {
				t.Fatalf("expected newer run first, got %+v", runs)
			}
		})
	}
}
