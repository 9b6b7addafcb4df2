// Package store owns every candle series and the latest analysis computed
// from it. Each (instrument, timeframe) key maps to a bounded, ordered
// series with upsert-by-openTime semantics; all mutation of one key is
// serialized behind a per-key mutex so a late network event can never
// interleave with an in-flight recompute. Operations on different keys run
// fully in parallel.
package store

import (
	"sort"
	"sync"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/indicator"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
)

// Capacity bounds every series; the oldest candle is evicted on overflow.
const Capacity = 100

// Analysis is the latest computed result for one key, replaced wholesale on
// every recompute and never mutated in place.
type Analysis struct {
	Patterns   []model.Pattern     `json:"patterns"`
	Indicators *indicator.Snapshot `json:"indicators,omitempty"`
	Decision   *model.Decision     `json:"decision,omitempty"`
}

type entry struct {
	mu          sync.Mutex
	candles     []model.Candle
	analysis    Analysis
	hasAnalysis bool
}

// Store maps structured keys to their series. The zero value is not usable;
// call New.
type Store struct {
	mu     sync.RWMutex
	series map[model.Key]*entry
}

// New creates an empty store.
func New() *Store {
	return &Store{series: make(map[model.Key]*entry)}
}

func (s *Store) entryFor(key model.Key) *entry {
	s.mu.RLock()
	e, ok := s.series[key]
	s.mu.RUnlock()
	if ok {
		return e
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.series[key]; ok {
		return e
	}
	e = &entry{}
	s.series[key] = e
	return e
}

// Upsert inserts or replaces the candle identified by its openTime.
// Post-call the series is sorted ascending by openTime, openTimes are
// unique, and the length never exceeds Capacity. Returns the series length.
func (s *Store) Upsert(key model.Key, c model.Candle) int {
	e := s.entryFor(key)
	e.mu.Lock()
	defer e.mu.Unlock()

	replaced := false
	for i := range e.candles {
		if e.candles[i].OpenTime == c.OpenTime {
			e.candles[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		e.candles = append(e.candles, c)
		sort.Slice(e.candles, func(i, j int) bool {
			return e.candles[i].OpenTime < e.candles[j].OpenTime
		})
		if len(e.candles) > Capacity {
			e.candles = append(e.candles[:0], e.candles[len(e.candles)-Capacity:]...)
		}
	}
	return len(e.candles)
}

// ReplaceAll overwrites a key's series entirely. Used for historical
// backfill and cache loads at startup; the input is sorted, deduplicated by
// openTime (later entries win) and trimmed to Capacity.
func (s *Store) ReplaceAll(key model.Key, candles []model.Candle) int {
	cp := make([]model.Candle, len(candles))
	copy(cp, candles)
	sort.Slice(cp, func(i, j int) bool { return cp[i].OpenTime < cp[j].OpenTime })

	dedup := cp[:0]
	for _, c := range cp {
		if n := len(dedup); n > 0 && dedup[n-1].OpenTime == c.OpenTime {
			dedup[n-1] = c
			continue
		}
		dedup = append(dedup, c)
	}
	if len(dedup) > Capacity {
		dedup = dedup[len(dedup)-Capacity:]
	}

	e := s.entryFor(key)
	e.mu.Lock()
	e.candles = dedup
	e.mu.Unlock()
	return len(dedup)
}

// Candles returns a copy of the series for a key.
func (s *Store) Candles(key model.Key) []model.Candle {
	e := s.entryFor(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Candle, len(e.candles))
	copy(out, e.candles)
	return out
}

// LastN returns a copy of the trailing n candles.
func (s *Store) LastN(key model.Key, n int) []model.Candle {
	e := s.entryFor(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	start := len(e.candles) - n
	if start < 0 {
		start = 0
	}
	out := make([]model.Candle, len(e.candles)-start)
	copy(out, e.candles[start:])
	return out
}

// Len returns the current series length for a key.
func (s *Store) Len(key model.Key) int {
	e := s.entryFor(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.candles)
}

// SetAnalysis replaces the latest analysis for a key.
func (s *Store) SetAnalysis(key model.Key, a Analysis) {
	e := s.entryFor(key)
	e.mu.Lock()
	e.analysis = a
	e.hasAnalysis = true
	e.mu.Unlock()
}

// Analysis returns the latest analysis for a key and whether one has
// been computed yet.
func (s *Store) Analysis(key model.Key) (Analysis, bool) {
	e := s.entryFor(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.analysis, e.hasAnalysis
}

// Keys returns every key currently present, in unspecified order.
func (s *Store) Keys() []model.Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Key, 0, len(s.series))
	for k := range s.series {
		out = append(out, k)
	}
	return out
}
