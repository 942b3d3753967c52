package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"staybook/config"
	"staybook/logger"
	"staybook/models"

	"github.com/glebarez/sqlite"
	"github.com/goccy/go-json"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	u := &models.User{Name: name, Email: strings.ToLower(name) + "@example.com", Password: "x"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

type fixture struct {
	db       *gorm.DB
	places   *PlaceService
	bookings *BookingManager
	reviews  *ReviewManager
	cache    *memCache
	host     *models.User
	guest    *models.User
	stranger *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	cache := newMemCache()
	l := logger.Discard()

	places := NewPlaceService(db, StoreConfig{}, cache, l)
	return &fixture{
		db:       db,
		places:   places,
		bookings: NewBookingManager(db, StoreConfig{}, places, NightlyPricing),
		reviews:  NewReviewManager(db, StoreConfig{}, cache, l),
		cache:    cache,
		host:     createUser(t, db, "Host"),
		guest:    createUser(t, db, "Guest"),
		stranger: createUser(t, db, "Stranger"),
	}
}

// placeL is the listing used throughout: four guests at 100 a night.
func (f *fixture) placeL(t *testing.T) *models.Place {
	t.Helper()

	place, err := f.places.Create(context.Background(), f.host.ID, PlaceInput{
		Title:     "Lake cabin",
		Address:   "1 Shore Rd",
		Photos:    []string{"https://img.example.com/a.jpg"},
		Perks:     []string{"wifi"},
		MaxGuests: 4,
		Price:     100,
	})
	if err != nil {
		t.Fatalf("create place: %v", err)
	}
	return place
}

// bookingB books placeL for 2024-06-01 .. 2024-06-03 with four guests.
func (f *fixture) bookingB(t *testing.T, place *models.Place) *models.Booking {
	t.Helper()

	booking, err := f.bookings.Create(context.Background(), f.guest.ID, BookingInput{
		PlaceID:     place.ID,
		CheckIn:     models.NewDate(2024, time.June, 1),
		CheckOut:    models.NewDate(2024, time.June, 3),
		NumOfGuests: 4,
		Name:        "Guest",
		Phone:       "555-0100",
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return booking
}

// completed drives a booking through confirm and complete as the host.
func (f *fixture) completed(t *testing.T, booking *models.Booking) {
	t.Helper()

	for _, target := range []models.BookingStatus{models.BookingConfirmed, models.BookingCompleted} {
		if _, err := f.bookings.Transition(context.Background(), f.host.ID, booking.ID, target); err != nil {
			t.Fatalf("transition to %s: %v", target, err)
		}
	}
}

func fiveStars() models.Ratings {
	return models.Ratings{Cleanliness: 5, Accuracy: 5, CheckIn: 5, Communication: 5, Location: 5, Value: 5}
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memCache) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}
