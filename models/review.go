package models

import "time"

// Ratings holds the six category scores of a review, each 1..5.
type Ratings struct {
	Cleanliness   int `gorm:"not null" json:"cleanliness" validate:"min=1,max=5"`
	Accuracy      int `gorm:"not null" json:"accuracy" validate:"min=1,max=5"`
	CheckIn       int `gorm:"not null" json:"checkIn" validate:"min=1,max=5"`
	Communication int `gorm:"not null" json:"communication" validate:"min=1,max=5"`
	Location      int `gorm:"not null" json:"location" validate:"min=1,max=5"`
	Value         int `gorm:"not null" json:"value" validate:"min=1,max=5"`
}

func (r Ratings) Mean() float64 {
	sum := r.Cleanliness + r.Accuracy + r.CheckIn + r.Communication + r.Location + r.Value
	return float64(sum) / 6
}

type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BookingID  uint      `gorm:"not null;uniqueIndex" json:"booking"`
	PlaceID    uint      `gorm:"not null;index" json:"place"`
	ReviewerID uint      `gorm:"not null;index" json:"user"`
	Ratings    `gorm:"embedded"`
	Comment    string    `gorm:"type:text;not null" json:"comment"`
	Version    int       `gorm:"not null;default:1" json:"-"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
