// Package store provides Store implementations.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/laprofumo/shopify-klara-sync-backend/daybook"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	days  map[string]daybook.DaySummary
	order []string // dates in first-write order
	runs  []daybook.ImportReport
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		days: make(map[string]daybook.DaySummary),
		now:  time.Now,
	}
}

// Upsert merges patch into the record for date.
func (m *Memory) Upsert(_ context.Context, date string, patch daybook.DayPatch) (daybook.DaySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.days[date]
	if !ok {
		existing = daybook.DaySummary{Date: date}
		m.order = append(m.order, date)
	}
	merged := patch.Apply(existing)
	merged.UpdatedAt = m.now().UTC()
	m.days[date] = merged
	return merged, nil
}

func (m *Memory) Get(_ context.Context, date string) (*daybook.DaySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.days[date]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (m *Memory) List(_ context.Context) ([]daybook.DaySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]daybook.DaySummary, 0, len(m.order))
	for _, date := range m.order {
		result = append(result, m.days[date])
	}
	return result, nil
}

// =============================================================================
// RUN LOG
// =============================================================================

// SaveRun appends a finished import run.
func (m *Memory) SaveRun(_ context.Context, report daybook.ImportReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, report)
	return nil
}

// ListRuns returns the runs of year, most recent first.
func (m *Memory) ListRuns(_ context.Context, year int) ([]daybook.ImportReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []daybook.ImportReport
	for i := len(m.runs) - 1; i >= 0; i-- {
		if m.runs[i].Year == year {
			result = append(result, m.runs[i])
		}
	}
	return result, nil
}
