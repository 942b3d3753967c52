package services

import (
	"context"
	"fmt"
	"strings"

	"staybook/models"

	"gorm.io/gorm"
)

type BookingInput struct {
	PlaceID     uint        `json:"place"`
	CheckIn     models.Date `json:"checkIn"`
	CheckOut    models.Date `json:"checkOut"`
	NumOfGuests int         `json:"numOfGuests"`
	Name        string      `json:"name"`
	Phone       string      `json:"phone"`
}

type placeFinder interface {
	GetByID(ctx context.Context, id uint) (*models.Place, error)
}

type actor int

const (
	hostOnly actor = iota + 1
	guestOrHost
)

// transitions lists every legal status change and who may make it.
// Terminal states have no entry.
var transitions = map[models.BookingStatus]map[models.BookingStatus]actor{
	models.BookingPending: {
		models.BookingConfirmed: hostOnly,
		models.BookingCanceled:  guestOrHost,
	},
	models.BookingConfirmed: {
		models.BookingCompleted: hostOnly,
		models.BookingCanceled:  guestOrHost,
	},
}

// BookingManager owns the booking lifecycle.
type BookingManager struct {
	store
	guard   Guard
	places  placeFinder
	pricing PricingPolicy
}

func NewBookingManager(db *gorm.DB, cfg StoreConfig, places placeFinder, pricing PricingPolicy) *BookingManager {
	if pricing == nil {
		pricing = NightlyPricing
	}
	return &BookingManager{
		store:   store{db: db, timeout: cfg.Timeout},
		places:  places,
		pricing: pricing,
	}
}

func (m *BookingManager) Create(ctx context.Context, guestID uint, in BookingInput) (*models.Booking, error) {
	if guestID == 0 {
		return nil, ErrUnauthenticated
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	place, err := m.places.GetByID(ctx, in.PlaceID)
	if err != nil {
		return nil, err
	}
	if in.NumOfGuests > place.MaxGuests {
		verr := newValidationError()
		verr.add("numOfGuests", fmt.Sprintf("must be at most %d", place.MaxGuests))
		return nil, verr
	}

	checkIn, checkOut := dateOnly(in.CheckIn.Time), dateOnly(in.CheckOut.Time)
	booking := &models.Booking{
		PlaceID:     place.ID,
		GuestID:     guestID,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		NumOfGuests: in.NumOfGuests,
		Name:        strings.TrimSpace(in.Name),
		Phone:       strings.TrimSpace(in.Phone),
		Price:       m.pricing.Price(place, checkIn, checkOut, in.NumOfGuests),
		Status:      models.BookingPending,
	}

	db, cancel := m.session(ctx)
	defer cancel()

	if err := db.Create(booking).Error; err != nil {
		return nil, storeErr("create booking", err)
	}

	summary := place.Summary()
	booking.PlaceSummary = &summary
	return booking, nil
}

func (in BookingInput) validate() error {
	verr := newValidationError()
	if in.PlaceID == 0 {
		verr.add("place", "is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		verr.add("name", "is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		verr.add("phone", "is required")
	}
	if in.NumOfGuests < 1 {
		verr.add("numOfGuests", "must be at least 1")
	}
	if in.CheckIn.IsZero() {
		verr.add("checkIn", "is required")
	}
	if in.CheckOut.IsZero() {
		verr.add("checkOut", "is required")
	}
	if !in.CheckIn.IsZero() && !in.CheckOut.IsZero() &&
		!dateOnly(in.CheckOut.Time).After(dateOnly(in.CheckIn.Time)) {
		verr.add("checkOut", "must be after checkIn")
	}
	return verr.orNil()
}

// ListForGuest returns the guest's bookings, newest first, each with its
// place summary attached.
func (m *BookingManager) ListForGuest(ctx context.Context, guestID uint) ([]models.Booking, error) {
	db, cancel := m.session(ctx)
	defer cancel()

	bookings := []models.Booking{}
	err := db.Preload("Place").
		Where("guest_id = ?", guestID).
		Order("created_at DESC, id DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, storeErr("list guest bookings", err)
	}
	return withSummaries(bookings), nil
}

// ListForHost returns bookings made on any place the host owns.
func (m *BookingManager) ListForHost(ctx context.Context, hostID uint) ([]models.Booking, error) {
	db, cancel := m.session(ctx)
	defer cancel()

	bookings := []models.Booking{}
	err := db.Preload("Place").
		Joins("JOIN places ON places.id = bookings.place_id").
		Where("places.owner_id = ?", hostID).
		Order("bookings.created_at DESC, bookings.id DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, storeErr("list host bookings", err)
	}
	return withSummaries(bookings), nil
}

// Get returns a booking to its guest or to the host of its place.
func (m *BookingManager) Get(ctx context.Context, callerID, bookingID uint) (*models.Booking, error) {
	db, cancel := m.session(ctx)
	defer cancel()

	booking, err := m.load(db, bookingID)
	if err != nil {
		return nil, err
	}
	if err := m.participant(callerID, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// Transition moves a booking to target. The write only lands if the stored
// status is still the one the checks were made against; otherwise the caller
// gets ErrConflict.
func (m *BookingManager) Transition(ctx context.Context, callerID, bookingID uint, target models.BookingStatus) (*models.Booking, error) {
	if !target.Valid() {
		verr := newValidationError()
		verr.add("status", "must be one of pending, confirmed, completed, canceled")
		return nil, verr
	}

	db, cancel := m.session(ctx)
	defer cancel()

	booking, err := m.load(db, bookingID)
	if err != nil {
		return nil, err
	}
	if err := m.participant(callerID, booking); err != nil {
		return nil, err
	}

	from := booking.Status
	who, ok := transitions[from][target]
	if !ok {
		return nil, fmt.Errorf("booking %d %s -> %s: %w", booking.ID, from, target, ErrInvalidTransition)
	}
	if who == hostOnly {
		if err := m.guard.Authorize(callerID, booking.Place.OwnerID); err != nil {
			return nil, fmt.Errorf("booking %d %s -> %s needs the host: %w", booking.ID, from, target, err)
		}
	}

	res := db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, from).
		Update("status", target)
	if res.Error != nil {
		return nil, storeErr("update booking status", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("booking %d changed while moving %s -> %s: %w", booking.ID, from, target, ErrConflict)
	}

	booking.Status = target
	return booking, nil
}

func (m *BookingManager) load(db *gorm.DB, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := db.Preload("Place").First(&booking, bookingID).Error; err != nil {
		return nil, storeErr("load booking", err)
	}
	if booking.Place == nil {
		return nil, fmt.Errorf("booking %d place %d: %w", booking.ID, booking.PlaceID, ErrNotFound)
	}
	summary := booking.Place.Summary()
	booking.PlaceSummary = &summary
	return &booking, nil
}

// participant allows the booking's guest and its place's host.
func (m *BookingManager) participant(callerID uint, booking *models.Booking) error {
	if m.guard.Authorize(callerID, booking.GuestID) == nil {
		return nil
	}
	return m.guard.Authorize(callerID, booking.Place.OwnerID)
}

func withSummaries(bookings []models.Booking) []models.Booking {
	for i := range bookings {
		if p := bookings[i].Place; p != nil {
			summary := p.Summary()
			bookings[i].PlaceSummary = &summary
		}
	}
	return bookings
}
