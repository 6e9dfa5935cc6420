// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"maps"
	"sync"

	"github.com/taibuivan/shopauth/internal/platform/apperr"
	"github.com/taibuivan/shopauth/pkg/pagination"
)

// MemoryRepository is an in-process [Repository] for tests and local runs.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Append implements [Repository].
func (repository *MemoryRepository) Append(context context.Context, entry *Entry) error {
	if err := context.Err(); err != nil {
		return apperr.StoreUnavailable(err)
	}

	stored := *entry
	stored.Metadata = maps.Clone(entry.Metadata)

	repository.mu.Lock()
	repository.entries = append(repository.entries, stored)
	repository.mu.Unlock()
	return nil
}

// List implements [Repository]. Entries appended later are considered newer
// when timestamps tie.
func (repository *MemoryRepository) List(context context.Context, filter Filter, page pagination.Params) ([]Entry, int, error) {
	if err := context.Err(); err != nil {
		return nil, 0, apperr.StoreUnavailable(err)
	}

	repository.mu.RLock()
	defer repository.mu.RUnlock()

	var matched []Entry
	for i := len(repository.entries) - 1; i >= 0; i-- {
		if filter.Matches(repository.entries[i]) {
			matched = append(matched, repository.entries[i])
		}
	}

	total := len(matched)
	start := min(page.Offset(), total)
	end := total
	if page.Limit > 0 {
		end = min(start+page.Limit, total)
	}

	result := make([]Entry, 0, end-start)
	for _, entry := range matched[start:end] {
		entry.Metadata = maps.Clone(entry.Metadata)
		result = append(result, entry)
	}
	return result, total, nil
}

// All returns every entry in append order.
func (repository *MemoryRepository) All() []Entry {
	repository.mu.RLock()
	defer repository.mu.RUnlock()
	return append([]Entry(nil), repository.entries...)
}
