package repository

import (
	"sync"
	"testing"
	"time"

	"github.com/aramille1/olislab-product-catalog/models"
)

func TestBagRoundTrip(t *testing.T) {
	repo := NewBagRepository(time.Hour)

	if bag := repo.GetBag("s1"); bag != nil {
		t.Fatalf("expected no bag, got %+v", bag)
	}

	repo.SaveBag(&models.Bag{
		SessionID: "s1",
		Items:     []models.BagItem{{ProductID: "csv-1", Quantity: 2}},
	})

	bag := repo.GetBag("s1")
	if bag == nil || len(bag.Items) != 1 || bag.Items[0].Quantity != 2 {
		t.Fatalf("unexpected bag: %+v", bag)
	}
	if bag.UpdatedAt.IsZero() {
		t.Fatal("expected SaveBag to stamp UpdatedAt")
	}

	// The returned bag is a copy; mutating it must not leak into the store.
	bag.Items[0].Quantity = 99
	if stored := repo.GetBag("s1"); stored.Items[0].Quantity != 2 {
		t.Fatalf("stored bag mutated through copy: %+v", stored)
	}

	repo.DeleteBag("s1")
	if bag := repo.GetBag("s1"); bag != nil {
		t.Fatalf("expected bag to be deleted, got %+v", bag)
	}
}

func TestUpdateIsAtomic(t *testing.T) {
	repo := NewBagRepository(time.Hour)

	if bag := repo.Update("s1", false, func(bag *models.Bag) {}); bag != nil {
		t.Fatalf("expected nil without create, got %+v", bag)
	}

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			repo.Update("s1", true, func(bag *models.Bag) {
				for i := range bag.Items {
					if bag.Items[i].ProductID == "csv-1" {
						bag.Items[i].Quantity++
						return
					}
				}
				bag.Items = append(bag.Items, models.BagItem{ProductID: "csv-1", Quantity: 1})
			})
		}()
	}
	wg.Wait()

	bag := repo.GetBag("s1")
	if bag == nil || bag.TotalQuantity() != workers {
		t.Fatalf("expected quantity %d after concurrent updates, got %+v", workers, bag)
	}
}

func TestSweepEvictsExpiredBags(t *testing.T) {
	repo := NewBagRepository(time.Minute)

	repo.SaveBag(&models.Bag{SessionID: "fresh"})
	repo.SaveBag(&models.Bag{SessionID: "stale"})
	repo.mu.Lock()
	repo.bags["stale"].UpdatedAt = time.Now().UTC().Add(-2 * time.Minute)
	repo.mu.Unlock()

	if evicted := repo.sweep(time.Now().UTC()); evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}
	if repo.GetBag("stale") != nil {
		t.Fatal("expected stale bag to be evicted")
	}
	if repo.GetBag("fresh") == nil {
		t.Fatal("expected fresh bag to survive the sweep")
	}
}
