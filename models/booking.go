package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCanceled  BookingStatus = "canceled"
)

func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCanceled
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCanceled:
		return true
	}
	return false
}

type Booking struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	PlaceID      uint          `gorm:"not null;index" json:"placeId"`
	GuestID      uint          `gorm:"not null;index" json:"user"`
	CheckIn      time.Time     `gorm:"not null" json:"checkIn"`
	CheckOut     time.Time     `gorm:"not null" json:"checkOut"`
	NumOfGuests  int           `gorm:"not null" json:"numOfGuests"`
	Name         string        `gorm:"not null" json:"name"`
	Phone        string        `gorm:"not null" json:"phone"`
	Price        float64       `gorm:"not null" json:"price"`
	Status       BookingStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	CreatedAt    time.Time     `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
	Place        *Place        `gorm:"foreignKey:PlaceID" json:"-"`
	PlaceSummary *PlaceSummary `gorm:"-" json:"place,omitempty"`
}
