package history

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps history in memory. Used when no database is configured
// and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	nextID  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (m *MemoryStore) Insert(ctx context.Context, rec Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = m.nextID
	m.nextID++
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	m.records = append(m.records, rec)
	return rec.ID, nil
}

func (m *MemoryStore) Recent(ctx context.Context, n int) ([]Record, error) {
	n = clampRecent(n)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, n)
	for i := len(m.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *MemoryStore) Dashboard(ctx context.Context) (Dashboard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d := Dashboard{TotalAnalyses: len(m.records)}
	byDay := make(map[string]*DayBucket)
	for _, rec := range m.records {
		if rec.UsedFallback {
			d.FallbackCount++
		}
		saved := rec.CO2.EnergySavedKWh
		d.TotalEnergySavedKWh += saved
		d.TotalCO2SavedKg += rec.CO2.Before.CO2Kg - rec.CO2.After.CO2Kg

		day := rec.CreatedAt.UTC().Format("2006-01-02")
		bucket, ok := byDay[day]
		if !ok {
			bucket = &DayBucket{Day: day}
			byDay[day] = bucket
		}
		bucket.Analyses++
		bucket.EnergySavedKWh += saved
	}
	d.TotalEnergySavedKWh = roundKWh(d.TotalEnergySavedKWh)
	d.TotalCO2SavedKg = roundKWh(d.TotalCO2SavedKg)
	for _, bucket := range byDay {
		bucket.EnergySavedKWh = roundKWh(bucket.EnergySavedKWh)
		d.Timeseries = append(d.Timeseries, *bucket)
	}
	sort.Slice(d.Timeseries, func(i, j int) bool { return d.Timeseries[i].Day < d.Timeseries[j].Day })
	d.Report = narrative(d)
	return d, nil
}

func (m *MemoryStore) Close() error { return nil }

func roundKWh(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
