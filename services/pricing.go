package services

import (
	"math"
	"time"

	"staybook/models"
)

// PricingPolicy computes the total price of a stay.
type PricingPolicy interface {
	Price(place *models.Place, checkIn, checkOut time.Time, guests int) float64
}

type PricingFunc func(place *models.Place, checkIn, checkOut time.Time, guests int) float64

func (f PricingFunc) Price(place *models.Place, checkIn, checkOut time.Time, guests int) float64 {
	return f(place, checkIn, checkOut, guests)
}

// NightlyPricing charges the place's nightly price for every night.
var NightlyPricing = PricingFunc(func(place *models.Place, checkIn, checkOut time.Time, _ int) float64 {
	return place.Price * float64(nights(checkIn, checkOut))
})

// WithFlatFee adds a one-off fee (cleaning, service) on top of base.
func WithFlatFee(base PricingPolicy, fee float64) PricingPolicy {
	if fee <= 0 {
		return base
	}
	return PricingFunc(func(place *models.Place, checkIn, checkOut time.Time, guests int) float64 {
		return base.Price(place, checkIn, checkOut, guests) + fee
	})
}

func nights(checkIn, checkOut time.Time) int {
	return int(math.Round(checkOut.Sub(checkIn).Hours() / 24))
}

// dateOnly drops the clock part so night counts are whole days.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
