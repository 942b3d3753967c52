package controllers

import (
	"net/http"

	middlewares "staybook/middleware"
	"staybook/models"
	"staybook/services"

	"github.com/gin-gonic/gin"
)

type BookingController struct {
	Bookings *services.BookingManager
}

func NewBookingController(bookings *services.BookingManager) BookingController {
	return BookingController{Bookings: bookings}
}

type StatusInput struct {
	Status models.BookingStatus `json:"status" binding:"required"`
}

// CreateBooking godoc
// @Summary Book a place
// @Description Dates are "2006-01-02" or RFC3339. The booking starts as pending.
// @Tags bookings
// @Accept json
// @Produce json
// @Param input body services.BookingInput true "Booking"
// @Success 201 {object} models.Booking
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /bookings [post]
func (b BookingController) CreateBooking(c *gin.Context) {
	var input services.BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	booking, err := b.Bookings.Create(c.Request.Context(), middlewares.CurrentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Booking created", booking)
}

// GetBookings godoc
// @Summary The caller's bookings, newest first
// @Tags bookings
// @Produce json
// @Success 200 {array} models.Booking
// @Router /bookings [get]
func (b BookingController) GetBookings(c *gin.Context) {
	bookings, err := b.Bookings.ListForGuest(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Bookings loaded", bookings)
}

// GetHostBookings godoc
// @Summary Bookings on the caller's places
// @Tags bookings
// @Produce json
// @Success 200 {array} models.Booking
// @Router /host-bookings [get]
func (b BookingController) GetHostBookings(c *gin.Context) {
	bookings, err := b.Bookings.ListForHost(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Bookings loaded", bookings)
}

// GetBooking godoc
// @Summary Booking detail for its guest or host
// @Tags bookings
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 403 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /bookings/{id} [get]
func (b BookingController) GetBooking(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	booking, err := b.Bookings.Get(c.Request.Context(), middlewares.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Booking loaded", booking)
}

// ChangeBookingStatus godoc
// @Summary Confirm, complete or cancel a booking
// @Description Hosts confirm and complete; guest or host may cancel.
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path int true "Booking ID"
// @Param input body StatusInput true "Target status"
// @Success 200 {object} models.Booking
// @Failure 403 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /bookings/{id}/status [put]
func (b BookingController) ChangeBookingStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var input StatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	booking, err := b.Bookings.Transition(c.Request.Context(), middlewares.CurrentUserID(c), id, input.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Booking status updated", booking)
}
