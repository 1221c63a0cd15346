package store

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"

	"github.com/JonMunkholm/dataio/internal/core"
)

// Memory keeps records and fields in maps. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]core.MapRecord
	fields  map[string][]core.FieldSpec
}

func NewMemory() *Memory {
	return &Memory{
		records: make(map[string][]core.MapRecord),
		fields:  make(map[string][]core.FieldSpec),
	}
}

// Add appends records as-is, without assigning ids.
func (m *Memory) Add(recordType string, recs ...core.MapRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range recs {
		m.records[recordType] = append(m.records[recordType], maps.Clone(r))
	}
}

// Records returns a copy of the stored records of recordType.
func (m *Memory) Records(recordType string) []core.MapRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.MapRecord, len(m.records[recordType]))
	for i, r := range m.records[recordType] {
		out[i] = maps.Clone(r)
	}
	return out
}

// List yields a snapshot taken when List is called.
func (m *Memory) List(ctx context.Context, recordType string) (core.Records, error) {
	snapshot := m.Records(recordType)
	return func(yield func(core.Record, error) bool) {
		for _, r := range snapshot {
			if !yield(r, nil) {
				return
			}
		}
	}, nil
}

// Create stores payload and assigns a UUID v7 "id" unless one is given.
func (m *Memory) Create(ctx context.Context, recordType string, payload map[string]any) (core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := core.MapRecord(maps.Clone(payload))
	if rec == nil {
		rec = core.MapRecord{}
	}
	if _, ok := rec[core.IdentityField]; !ok {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, err
		}
		rec[core.IdentityField] = id.String()
	}

	m.mu.Lock()
	m.records[recordType] = append(m.records[recordType], rec)
	m.mu.Unlock()

	return maps.Clone(rec), nil
}

func (m *Memory) FieldsFor(ctx context.Context, recordType string) ([]core.FieldSpec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]core.FieldSpec(nil), m.fields[recordType]...), nil
}

func (m *Memory) SetFields(ctx context.Context, recordType string, fields []core.FieldSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields[recordType] = append([]core.FieldSpec(nil), fields...)
	return nil
}

func (m *Memory) Close() error { return nil }
