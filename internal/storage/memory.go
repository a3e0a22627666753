package storage

import (
	"context"
	"sort"
	"sync"

	"neurowire/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunRecord
	generations map[string]map[int]model.GenerationRecord
	survivors   map[string][]model.SurvivorPoint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.generations = make(map[string]map[int]model.GenerationRecord)
	s.survivors = make(map[string][]model.SurvivorPoint)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context, limit int) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAtUTC != runs[j].CreatedAtUTC {
			return runs[i].CreatedAtUTC > runs[j].CreatedAtUTC
		}
		return runs[i].ID < runs[j].ID
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *MemoryStore) SaveGeneration(_ context.Context, generation model.GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	byNumber, ok := s.generations[generation.RunID]
	if !ok {
		byNumber = make(map[int]model.GenerationRecord)
		s.generations[generation.RunID] = byNumber
	}
	byNumber[generation.GenerationNumber] = cloneGeneration(generation)
	return nil
}

func (s *MemoryStore) GetGeneration(_ context.Context, runID string, number int) (model.GenerationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	generation, ok := s.generations[runID][number]
	if !ok {
		return model.GenerationRecord{}, false, nil
	}
	return cloneGeneration(generation), true, nil
}

func (s *MemoryStore) LatestGeneration(_ context.Context, runID string) (model.GenerationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byNumber := s.generations[runID]
	if len(byNumber) == 0 {
		return model.GenerationRecord{}, false, nil
	}
	latest := -1
	for number := range byNumber {
		if number > latest {
			latest = number
		}
	}
	return cloneGeneration(byNumber[latest]), true, nil
}

func (s *MemoryStore) ListGenerations(_ context.Context, runID string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	numbers := make([]int, 0, len(s.generations[runID]))
	for number := range s.generations[runID] {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)
	return numbers, nil
}

func (s *MemoryStore) SaveSurvivorHistory(_ context.Context, runID string, history []model.SurvivorPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	s.survivors[runID] = append([]model.SurvivorPoint(nil), history...)
	return nil
}

func (s *MemoryStore) GetSurvivorHistory(_ context.Context, runID string) ([]model.SurvivorPoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.survivors[runID]
	if len(history) == 0 {
		return nil, false, nil
	}
	return append([]model.SurvivorPoint(nil), history...), true, nil
}

func cloneGeneration(generation model.GenerationRecord) model.GenerationRecord {
	if generation.Generation == nil {
		return generation
	}
	dump := make(model.PopulationDump, len(generation.Generation))
	for i, links := range generation.Generation {
		dump[i] = append([]model.LinkRecord{}, links...)
	}
	generation.Generation = dump
	return generation
}
