// Package resume persists the advisory reading position between runs.
package resume

import (
	"context"
	"sync"

	"github.com/verte-zerg/tuiread/internal/model"
	"github.com/verte-zerg/tuiread/internal/tokenize"
)

// Store is a key-value backend holding at most one record per device.
type Store interface {
	SaveResume(ctx context.Context, rec model.ResumeRecord) error
	LoadResume(ctx context.Context, device string) (model.ResumeRecord, bool, error)
	ClearResume(ctx context.Context, device string) error
}

// Load returns the record for device when one exists and is usable. Missing,
// unreadable or inconsistent records are reported as absent.
func Load(ctx context.Context, st Store, device string) (model.ResumeRecord, bool) {
	if st == nil {
		return model.ResumeRecord{}, false
	}
	rec, ok, err := st.LoadResume(ctx, device)
	if err != nil || !ok {
		return model.ResumeRecord{}, false
	}
	if !Valid(rec) {
		return model.ResumeRecord{}, false
	}
	return rec, true
}

// Valid reports whether rec can rehydrate a reading pass.
func Valid(rec model.ResumeRecord) bool {
	if rec.Cursor < 0 || !tokenize.ValidChunkSize(rec.ChunkSize) {
		return false
	}
	if rec.Mode != model.ModeSingle && rec.Mode != model.ModeFlow {
		return false
	}
	units := tokenize.Tokenize(rec.RawText, rec.ChunkSize)
	return len(units) > 0 && rec.Cursor < len(units)
}

// Memory is an in-process Store.
type Memory struct {
	mu      sync.Mutex
	records map[string]model.ResumeRecord
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{records: map[string]model.ResumeRecord{}}
}

// SaveResume implements Store.
func (m *Memory) SaveResume(_ context.Context, rec model.ResumeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Device] = rec
	return nil
}

// LoadResume implements Store.
func (m *Memory) LoadResume(_ context.Context, device string) (model.ResumeRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[device]
	return rec, ok, nil
}

// ClearResume implements Store.
func (m *Memory) ClearResume(_ context.Context, device string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, device)
	return nil
}
