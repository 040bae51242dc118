package store

import (
	"context"
	"sort"
	"sync"

	"github.com/iwvelando/deal-finder/pkg/constants"
)

// MemoryStore is an in-process Store used for local runs and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	nextID     int64
	properties map[int64]Property
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, properties: make(map[int64]Property)}
}

// ListInBoundingBox implements Store.
func (m *MemoryStore) ListInBoundingBox(_ context.Context, box BoundingBox, filters Filters) ([]Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Property, 0)
	for _, p := range m.properties {
		if box.Contains(p.Latitude, p.Longitude) && filters.Matches(p) {
			result = append(result, clone(p))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Price != result[j].Price {
			return result[i].Price > result[j].Price
		}
		return result[i].ID < result[j].ID
	})
	return limit(result, constants.BoundingBoxLimit), nil
}

// ListAll implements Store.
func (m *MemoryStore) ListAll(_ context.Context) ([]Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Property, 0)
	for _, p := range m.properties {
		if p.ForSale {
			result = append(result, clone(p))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].DateListed, result[j].DateListed
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return result[i].ID > result[j].ID
	})
	return limit(result, constants.ListAllLimit), nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, id int64) (*Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.properties[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := clone(p)
	return &c, nil
}

// Insert implements Store.
func (m *MemoryStore) Insert(_ context.Context, p Property) (int64, error) {
	p.normalize()

	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = m.nextID
	m.nextID++
	m.properties[p.ID] = clone(p)
	return p.ID, nil
}

// Stats implements Store.
func (m *MemoryStore) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		stats          Stats
		priceSum       float64
		pricePerSqSum  float64
		cities, states = map[string]struct{}{}, map[string]struct{}{}
	)
	for _, p := range m.properties {
		stats.TotalProperties++
		if p.ForSale {
			stats.ForSaleCount++
		}
		priceSum += p.Price
		pricePerSqSum += p.PricePerSqft
		cities[p.City] = struct{}{}
		states[p.State] = struct{}{}
	}
	if stats.TotalProperties > 0 {
		stats.AvgPrice = priceSum / float64(stats.TotalProperties)
		stats.AvgPricePerSqft = pricePerSqSum / float64(stats.TotalProperties)
	}
	stats.CitiesCount = int64(len(cities))
	stats.StatesCount = int64(len(states))
	return stats, nil
}

// Ping implements Store.
func (m *MemoryStore) Ping(context.Context) error { return nil }

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }

func limit(properties []Property, n int) []Property {
	if len(properties) > n {
		return properties[:n]
	}
	return properties
}

// clone copies the pointer fields so callers cannot mutate stored rows.
func clone(p Property) Property {
	if p.DateListed != nil {
		v := *p.DateListed
		p.DateListed = &v
	}
	if p.LastSoldDate != nil {
		v := *p.LastSoldDate
		p.LastSoldDate = &v
	}
	if p.LastSoldAmount != nil {
		v := *p.LastSoldAmount
		p.LastSoldAmount = &v
	}
	if p.EstimatedMonthlyRent != nil {
		v := *p.EstimatedMonthlyRent
		p.EstimatedMonthlyRent = &v
	}
	return p
}
