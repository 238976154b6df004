package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/chatreport/pkg/chatreport/internalerr"
	"github.com/cognicore/chatreport/pkg/chatreport/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	reports map[string]store.Record
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{reports: make(map[string]store.Record)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveReport inserts or replaces a report, keyed by ID.
func (s *Store) SaveReport(ctx context.Context, r store.Record) error {
	if r.ID == "" {
		return fmt.Errorf("%w: report id is empty", internalerr.ErrInvalidInput)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.CreatedAt = r.CreatedAt.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ID] = copyRecord(r)
	return nil
}

// GetReport implements store.Store.
func (s *Store) GetReport(ctx context.Context, id string) (store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok {
		return store.Record{}, fmt.Errorf("report %s: %w", id, internalerr.ErrNotFound)
	}
	return copyRecord(r), nil
}

// ListReports implements store.Store.
func (s *Store) ListReports(ctx context.Context, opts store.ListOptions) (store.Page, error) {
	opts = opts.Normalize()

	s.mu.RLock()
	all := make([]store.Summary, 0, len(s.reports))
	for _, r := range s.reports {
		if opts.ChatName != "" && r.ChatName != opts.ChatName {
			continue
		}
		all = append(all, store.Summary{
			ID:           r.ID,
			ChatName:     r.ChatName,
			MessageCount: r.MessageCount,
			CreatedAt:    r.CreatedAt,
		})
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	page := store.Page{Reports: []store.Summary{}, Total: len(all), Page: opts.Page, PageSize: opts.PageSize}
	start := opts.Offset()
	if start < len(all) {
		end := min(start+opts.PageSize, len(all))
		page.Reports = append(page.Reports, all[start:end]...)
	}
	return page, nil
}

// DeleteReport implements store.Store.
func (s *Store) DeleteReport(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[id]; !ok {
		return fmt.Errorf("report %s: %w", id, internalerr.ErrNotFound)
	}
	delete(s.reports, id)
	return nil
}

func copyRecord(r store.Record) store.Record {
	out := r
	out.Words = slices.Clone(r.Words)
	for i := range out.Words {
		out.Words[i].Contributors = slices.Clone(out.Words[i].Contributors)
		out.Words[i].Samples = slices.Clone(out.Words[i].Samples)
	}
	out.Rankings = slices.Clone(r.Rankings)
	for i := range out.Rankings {
		out.Rankings[i].Entries = slices.Clone(out.Rankings[i].Entries)
	}
	return out
}
