package controllers

import (
	"errors"
	"net/http"

	middlewares "staybook/middleware"
	"staybook/models"
	"staybook/services"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	Reviews *services.ReviewManager
}

func NewReviewController(reviews *services.ReviewManager) ReviewController {
	return ReviewController{Reviews: reviews}
}

type PlaceReviews struct {
	Rating  *float64        `json:"rating"`
	Count   int             `json:"count"`
	Reviews []models.Review `json:"reviews"`
}

// CreateReview godoc
// @Summary Review a completed stay
// @Description Creates the booking's review, or updates it if one already exists.
// @Tags reviews
// @Accept json
// @Produce json
// @Param input body services.ReviewInput true "Ratings and comment"
// @Success 201 {object} map[string]any "{message, review}"
// @Success 200 {object} map[string]any "{message, review}"
// @Failure 403 {object} map[string]any
// @Failure 422 {object} map[string]any
// @Router /review [post]
func (r ReviewController) CreateReview(c *gin.Context) {
	var input services.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	review, created, err := r.Reviews.Upsert(c.Request.Context(), middlewares.CurrentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	if created {
		c.JSON(http.StatusCreated, gin.H{"message": "Review created", "review": review})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review updated", "review": review})
}

// UpdateReview godoc
// @Summary Edit your review
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Param input body services.ReviewInput true "Ratings and comment"
// @Success 200 {object} map[string]any "{message, updatedReview}"
// @Failure 403 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /review/{id}/update [put]
func (r ReviewController) UpdateReview(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var input services.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	review, err := r.Reviews.UpdateByID(c.Request.Context(), middlewares.CurrentUserID(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review updated", "updatedReview": review})
}

// GetUserReviews godoc
// @Summary Reviews written by the caller
// @Tags reviews
// @Produce json
// @Success 200 {array} models.Review
// @Router /review/user [get]
func (r ReviewController) GetUserReviews(c *gin.Context) {
	reviews, err := r.Reviews.ListForReviewer(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Reviews loaded", reviews)
}

// GetPlaceReviews godoc
// @Summary Reviews of a place with its average rating
// @Description rating is null when the place has no reviews.
// @Tags reviews
// @Produce json
// @Param id path int true "Place ID"
// @Success 200 {object} PlaceReviews
// @Failure 404 {object} map[string]any
// @Router /places/{id}/reviews [get]
func (r ReviewController) GetPlaceReviews(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	reviews, err := r.Reviews.ListForListing(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	out := PlaceReviews{Count: len(reviews), Reviews: reviews}
	avg, err := r.Reviews.AverageRating(c.Request.Context(), id)
	switch {
	case errors.Is(err, services.ErrNoReviews):
	case err != nil:
		respondError(c, err)
		return
	default:
		out.Rating = &avg
	}

	respondOK(c, http.StatusOK, "Reviews loaded", out)
}
