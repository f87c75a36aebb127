package repository

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aramille1/olislab-product-catalog/models"
)

// BagRepository keeps shopping bags in memory, one per session. Bags are
// ephemeral by design: there is no backend sync, and idle sessions are
// swept out after the TTL.
type BagRepository struct {
	mu   sync.RWMutex
	bags map[string]*models.Bag
	ttl  time.Duration
}

func NewBagRepository(ttl time.Duration) *BagRepository {
	return &BagRepository{
		bags: make(map[string]*models.Bag),
		ttl:  ttl,
	}
}

// GetBag returns a copy of the session's bag, or nil when none exists.
func (r *BagRepository) GetBag(sessionID string) *models.Bag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bag, ok := r.bags[sessionID]
	if !ok {
		return nil
	}
	copied := *bag
	copied.Items = append([]models.BagItem(nil), bag.Items...)
	return &copied
}

// SaveBag stores the bag and refreshes its TTL clock.
func (r *BagRepository) SaveBag(bag *models.Bag) {
	bag.UpdatedAt = time.Now().UTC()
	stored := *bag
	stored.Items = append([]models.BagItem(nil), bag.Items...)

	r.mu.Lock()
	r.bags[bag.SessionID] = &stored
	r.mu.Unlock()
}

// Update mutates the session's bag under the store lock, so concurrent
// read-modify-write cycles for one session cannot lose each other's
// writes. When no bag exists and create is true, fn receives a fresh bag.
// Returns a copy of the stored bag, or nil when no bag exists and create
// is false.
func (r *BagRepository) Update(sessionID string, create bool, fn func(bag *models.Bag)) *models.Bag {
	r.mu.Lock()
	defer r.mu.Unlock()

	bag, ok := r.bags[sessionID]
	if !ok {
		if !create {
			return nil
		}
		bag = &models.Bag{SessionID: sessionID, Items: []models.BagItem{}}
		r.bags[sessionID] = bag
	}

	fn(bag)
	bag.UpdatedAt = time.Now().UTC()

	copied := *bag
	copied.Items = append([]models.BagItem(nil), bag.Items...)
	return &copied
}

// DeleteBag drops the session's bag.
func (r *BagRepository) DeleteBag(sessionID string) {
	r.mu.Lock()
	delete(r.bags, sessionID)
	r.mu.Unlock()
}

// StartSweeper evicts expired bags in the background until ctx is done.
func (r *BagRepository) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if evicted := r.sweep(time.Now().UTC()); evicted > 0 {
					zap.L().Debug("Swept expired bags", zap.Int("count", evicted))
				}
			}
		}
	}()
}

func (r *BagRepository) sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for sessionID, bag := range r.bags {
		if now.Sub(bag.UpdatedAt) > r.ttl {
			delete(r.bags, sessionID)
			evicted++
		}
	}
	return evicted
}
