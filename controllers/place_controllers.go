package controllers

import (
	"net/http"

	middlewares "staybook/middleware"
	"staybook/services"

	"github.com/gin-gonic/gin"
)

type PlaceController struct {
	Places *services.PlaceService
}

func NewPlaceController(places *services.PlaceService) PlaceController {
	return PlaceController{Places: places}
}

// CreatePlace godoc
// @Summary Publish a place
// @Tags places
// @Accept json
// @Produce json
// @Param input body services.PlaceInput true "Place"
// @Success 201 {object} models.Place
// @Failure 400 {object} map[string]any
// @Router /places [post]
func (p PlaceController) CreatePlace(c *gin.Context) {
	var input services.PlaceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	place, err := p.Places.Create(c.Request.Context(), middlewares.CurrentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Place created", place)
}

// UpdatePlace godoc
// @Summary Update a place you own
// @Description Only the fields present in the body are changed.
// @Tags places
// @Accept json
// @Produce json
// @Param input body services.PlaceUpdate true "Place id and fields to change"
// @Success 200 {object} models.Place
// @Failure 403 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /places [put]
func (p PlaceController) UpdatePlace(c *gin.Context) {
	var input services.PlaceUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	place, err := p.Places.Update(c.Request.Context(), middlewares.CurrentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Place updated", place)
}

// DeletePlace godoc
// @Summary Delete a place you own
// @Tags places
// @Produce json
// @Param id path int true "Place ID"
// @Success 200 {object} map[string]any
// @Failure 409 {object} map[string]any "place has bookings"
// @Router /places/{id} [delete]
func (p PlaceController) DeletePlace(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := p.Places.Delete(c.Request.Context(), middlewares.CurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Place deleted", nil)
}

// GetUserPlaces godoc
// @Summary Places owned by the caller
// @Tags places
// @Produce json
// @Success 200 {array} models.Place
// @Router /user-places [get]
func (p PlaceController) GetUserPlaces(c *gin.Context) {
	places, err := p.Places.ListByOwner(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Places loaded", places)
}

// GetPlace godoc
// @Summary Place detail
// @Tags places
// @Produce json
// @Param id path int true "Place ID"
// @Success 200 {object} models.Place
// @Failure 404 {object} map[string]any
// @Router /places/{id} [get]
func (p PlaceController) GetPlace(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	place, err := p.Places.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Place loaded", place)
}

// GetPlaces godoc
// @Summary Browse places
// @Tags places
// @Produce json
// @Param guests query int false "Minimum guest capacity"
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size"
// @Success 200 {array} models.Place
// @Router /places [get]
func (p PlaceController) GetPlaces(c *gin.Context) {
	var filter services.PlaceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, err)
		return
	}

	places, err := p.Places.ListAll(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Places loaded", places)
}
