package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"staybook/models"
)

func ptr[T any](v T) *T { return &v }

func TestCreatePlaceValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]PlaceInput{
		"blank title":     {Title: "  ", MaxGuests: 2, Price: 10},
		"no guests":       {Title: "Loft", MaxGuests: 0, Price: 10},
		"negative price":  {Title: "Loft", MaxGuests: 2, Price: -1},
		"bad check-in at": {Title: "Loft", MaxGuests: 2, Price: 10, CheckIn: "3pm"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.places.Create(ctx, f.host.ID, in)
			if IsValidationError(err) == nil {
				t.Fatalf("got %v, want a validation error", err)
			}
		})
	}

	var count int64
	f.db.Model(&models.Place{}).Count(&count)
	if count != 0 {
		t.Errorf("%d places persisted, want 0", count)
	}
}

func TestGetPlace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	place := f.placeL(t)

	got, err := f.places.GetByID(ctx, place.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Lake cabin" || got.OwnerID != f.host.ID || got.Rating != nil {
		t.Errorf("unexpected place %+v", got)
	}
	if !f.cache.has(fmt.Sprintf(placeKeyFormat, place.ID)) {
		t.Error("place was not cached after read")
	}

	if _, err := f.places.GetByID(ctx, place.ID+100); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing place: got %v, want ErrNotFound", err)
	}
}

func TestUpdatePlaceByNonOwnerIsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	place := f.placeL(t)

	_, err := f.places.Update(ctx, f.stranger.ID, PlaceUpdate{
		ID:        place.ID,
		Title:     ptr("Hijacked"),
		MaxGuests: ptr(12),
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}

	var stored models.Place
	if err := f.db.First(&stored, place.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Title != "Lake cabin" || stored.MaxGuests != 4 {
		t.Errorf("place mutated by non-owner: %+v", stored)
	}
}

func TestUpdatePlaceAppliesOnlyProvidedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	place := f.placeL(t)

	if _, err := f.places.GetByID(ctx, place.ID); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	updated, err := f.places.Update(ctx, f.host.ID, PlaceUpdate{ID: place.ID, Price: ptr(150.0)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Price != 150 || updated.Title != "Lake cabin" || updated.MaxGuests != 4 {
		t.Errorf("unexpected result %+v", updated)
	}
	if f.cache.has(fmt.Sprintf(placeKeyFormat, place.ID)) {
		t.Error("cached place not invalidated")
	}

	var stored models.Place
	if err := f.db.First(&stored, place.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Price != 150 || stored.Address != "1 Shore Rd" || len(stored.Photos) != 1 {
		t.Errorf("stored place %+v", stored)
	}

	_, err = f.places.Update(ctx, f.host.ID, PlaceUpdate{ID: place.ID, MaxGuests: ptr(0)})
	if IsValidationError(err) == nil {
		t.Errorf("zero max guests: got %v, want a validation error", err)
	}

	_, err = f.places.Update(ctx, f.host.ID, PlaceUpdate{ID: place.ID + 100, Price: ptr(1.0)})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing place: got %v, want ErrNotFound", err)
	}
}

func TestListPlaces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.placeL(t)

	if _, err := f.places.Create(ctx, f.stranger.ID, PlaceInput{Title: "Villa", MaxGuests: 10, Price: 400}); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := f.places.ListAll(ctx, PlaceFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d places, want 2", len(all))
	}
	if !f.cache.has(placesAllKey) {
		t.Error("default listing not cached")
	}

	big, err := f.places.ListAll(ctx, PlaceFilter{MinGuests: 6})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(big) != 1 || big[0].Title != "Villa" {
		t.Errorf("filtered listing %+v", big)
	}

	page2, err := f.places.ListAll(ctx, PlaceFilter{Page: 2, Limit: 1})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page2) != 1 || page2[0].Title != "Lake cabin" {
		t.Errorf("second page %+v", page2)
	}

	mine, err := f.places.ListByOwner(ctx, f.host.ID)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(mine) != 1 || mine[0].OwnerID != f.host.ID {
		t.Errorf("owner listing %+v", mine)
	}
}

func TestDeletePlace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := f.placeL(t)
	f.bookingB(t, booked)

	free, err := f.places.Create(ctx, f.host.ID, PlaceInput{Title: "Shed", MaxGuests: 1, Price: 5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.places.Delete(ctx, f.stranger.ID, free.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger delete: got %v, want ErrForbidden", err)
	}
	if err := f.places.Delete(ctx, f.host.ID, booked.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("booked place: got %v, want ErrConflict", err)
	}
	if err := f.places.Delete(ctx, f.host.ID, free.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.places.GetByID(ctx, free.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted place: got %v, want ErrNotFound", err)
	}
}

func TestUpdatePlaceEvictsRowCachedByConcurrentRead(t *testing.T) {
	f := newFixture(t)
	f.places.redelete = 20 * time.Millisecond
	ctx := context.Background()
	place := f.placeL(t)
	key := fmt.Sprintf(placeKeyFormat, place.ID)

	if _, err := f.places.Update(ctx, f.host.ID, PlaceUpdate{ID: place.ID, Price: ptr(150.0)}); err != nil {
		t.Fatalf("update: %v", err)
	}

	// A read that loaded the row before the update stores it after the
	// first eviction.
	if err := f.cache.Set(ctx, key, place); err != nil {
		t.Fatalf("set stale row: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for f.cache.has(key) {
		if time.Now().After(deadline) {
			t.Fatal("stale place still cached after the delayed eviction")
		}
		time.Sleep(5 * time.Millisecond)
	}

	got, err := f.places.GetByID(ctx, place.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Price != 150 {
		t.Errorf("price %v, want 150", got.Price)
	}
}
