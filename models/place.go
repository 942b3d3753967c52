package models

import (
	"time"

	"gorm.io/datatypes"
)

// Place is a host-owned listing.
type Place struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	OwnerID     uint                        `gorm:"not null;index" json:"owner"`
	Title       string                      `gorm:"not null" json:"title" validate:"required,max=200"`
	Address     string                      `json:"address" validate:"max=500"`
	Photos      datatypes.JSONSlice[string] `json:"photos"`
	Description string                      `gorm:"type:text" json:"description"`
	Perks       datatypes.JSONSlice[string] `json:"perks"`
	ExtraInfo   string                      `gorm:"type:text" json:"extraInfo"`
	CheckIn     string                      `json:"checkIn" validate:"omitempty,datetime=15:04"`
	CheckOut    string                      `json:"checkOut" validate:"omitempty,datetime=15:04"`
	MaxGuests   int                         `gorm:"not null" json:"maxGuests" validate:"gt=0"`
	Price       float64                     `gorm:"not null" json:"price" validate:"gte=0"`
	Rating      *float64                    `json:"rating"` // nil until the first review
	ReviewCount int                         `gorm:"default:0" json:"reviewCount"`
	CreatedAt   time.Time                   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time                   `gorm:"autoUpdateTime" json:"updatedAt"`
	Owner       *User                       `gorm:"foreignKey:OwnerID" json:"-"`
}

// PlaceSummary is the slice of a place shown next to a booking.
type PlaceSummary struct {
	ID      uint     `json:"id"`
	Title   string   `json:"title"`
	Address string   `json:"address"`
	Photos  []string `json:"photos"`
	Price   float64  `json:"price"`
}

func (p *Place) Summary() PlaceSummary {
	return PlaceSummary{
		ID:      p.ID,
		Title:   p.Title,
		Address: p.Address,
		Photos:  p.Photos,
		Price:   p.Price,
	}
}

