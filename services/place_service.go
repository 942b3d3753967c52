package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"staybook/logger"
	"staybook/models"

	"gorm.io/gorm"
)

const (
	placesAllKey   = "places:all"
	placeKeyFormat = "places:%d"

	defaultPageSize = 20
	maxPageSize     = 100

	cacheRedeleteDelay = 500 * time.Millisecond
	cacheDeleteTimeout = 2 * time.Second
)

type PlaceInput struct {
	Title       string   `json:"title"`
	Address     string   `json:"address"`
	Photos      []string `json:"photos"`
	Description string   `json:"description"`
	Perks       []string `json:"perks"`
	ExtraInfo   string   `json:"extraInfo"`
	CheckIn     string   `json:"checkIn"`
	CheckOut    string   `json:"checkOut"`
	MaxGuests   int      `json:"maxGuests"`
	Price       float64  `json:"price"`
}

// PlaceUpdate carries a partial update; nil fields keep their stored value.
type PlaceUpdate struct {
	ID          uint      `json:"id" binding:"required"`
	Title       *string   `json:"title"`
	Address     *string   `json:"address"`
	Photos      *[]string `json:"photos"`
	Description *string   `json:"description"`
	Perks       *[]string `json:"perks"`
	ExtraInfo   *string   `json:"extraInfo"`
	CheckIn     *string   `json:"checkIn"`
	CheckOut    *string   `json:"checkOut"`
	MaxGuests   *int      `json:"maxGuests"`
	Price       *float64  `json:"price"`
}

type PlaceFilter struct {
	MinGuests int `form:"guests"`
	Page      int `form:"page"`
	Limit     int `form:"limit"`
}

func (f PlaceFilter) isDefault() bool {
	return f.MinGuests == 0 && f.Page <= 1 && (f.Limit == 0 || f.Limit == defaultPageSize)
}

func (f PlaceFilter) window() (offset, limit int) {
	limit = f.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit, limit
}

// PlaceService is the listing repository: owner-scoped CRUD over places.
type PlaceService struct {
	store
	guard    Guard
	cache    Cache
	log      *logger.Logger
	redelete time.Duration
}

// NewPlaceService builds the service. cache may be nil.
func NewPlaceService(db *gorm.DB, cfg StoreConfig, cache Cache, l *logger.Logger) *PlaceService {
	return &PlaceService{
		store:    store{db: db, timeout: cfg.Timeout},
		cache:    cache,
		log:      l,
		redelete: cacheRedeleteDelay,
	}
}

func (s *PlaceService) Create(ctx context.Context, ownerID uint, in PlaceInput) (*models.Place, error) {
	if ownerID == 0 {
		return nil, ErrUnauthenticated
	}

	place := &models.Place{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(in.Title),
		Address:     strings.TrimSpace(in.Address),
		Photos:      orEmpty(in.Photos),
		Description: in.Description,
		Perks:       orEmpty(in.Perks),
		ExtraInfo:   in.ExtraInfo,
		CheckIn:     in.CheckIn,
		CheckOut:    in.CheckOut,
		MaxGuests:   in.MaxGuests,
		Price:       in.Price,
	}
	if err := validatePlace(place); err != nil {
		return nil, err
	}

	db, cancel := s.session(ctx)
	defer cancel()

	if err := db.Create(place).Error; err != nil {
		return nil, storeErr("create place", err)
	}

	s.invalidate(place.ID)
	return place, nil
}

func (s *PlaceService) GetByID(ctx context.Context, id uint) (*models.Place, error) {
	key := fmt.Sprintf(placeKeyFormat, id)

	var place models.Place
	if s.fromCache(ctx, key, &place) {
		return &place, nil
	}

	db, cancel := s.session(ctx)
	defer cancel()

	if err := db.First(&place, id).Error; err != nil {
		return nil, storeErr("get place", err)
	}

	s.toCache(ctx, key, &place)
	return &place, nil
}

func (s *PlaceService) ListByOwner(ctx context.Context, ownerID uint) ([]models.Place, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	places := []models.Place{}
	if err := db.Where("owner_id = ?", ownerID).Order("id DESC").Find(&places).Error; err != nil {
		return nil, storeErr("list owner places", err)
	}
	return places, nil
}

// ListAll serves public browse. Only the unfiltered first page is cached.
func (s *PlaceService) ListAll(ctx context.Context, filter PlaceFilter) ([]models.Place, error) {
	cacheable := filter.isDefault()

	places := []models.Place{}
	if cacheable && s.fromCache(ctx, placesAllKey, &places) {
		return places, nil
	}

	db, cancel := s.session(ctx)
	defer cancel()

	offset, limit := filter.window()
	tx := db.Model(&models.Place{})
	if filter.MinGuests > 0 {
		tx = tx.Where("max_guests >= ?", filter.MinGuests)
	}
	if err := tx.Order("id DESC").Offset(offset).Limit(limit).Find(&places).Error; err != nil {
		return nil, storeErr("list places", err)
	}

	if cacheable {
		s.toCache(ctx, placesAllKey, places)
	}
	return places, nil
}

// Update applies the provided fields of in to the place, after checking the
// caller owns the stored record.
func (s *PlaceService) Update(ctx context.Context, callerID uint, in PlaceUpdate) (*models.Place, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var place models.Place
	if err := db.First(&place, in.ID).Error; err != nil {
		return nil, storeErr("load place", err)
	}
	if err := s.guard.Authorize(callerID, place.OwnerID); err != nil {
		return nil, err
	}

	changes := in.apply(&place)
	if len(changes) == 0 {
		return &place, nil
	}
	if err := validatePlace(&place); err != nil {
		return nil, err
	}

	res := db.Model(&models.Place{}).
		Where("id = ? AND owner_id = ?", place.ID, callerID).
		Updates(changes)
	if res.Error != nil {
		return nil, storeErr("update place", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("update place %d: %w", place.ID, ErrConflict)
	}

	s.invalidate(place.ID)
	return &place, nil
}

// Delete removes a place the caller owns. Places that were ever booked are
// kept so booking and review history stays intact.
func (s *PlaceService) Delete(ctx context.Context, callerID, id uint) error {
	db, cancel := s.session(ctx)
	defer cancel()

	var place models.Place
	if err := db.First(&place, id).Error; err != nil {
		return storeErr("load place", err)
	}
	if err := s.guard.Authorize(callerID, place.OwnerID); err != nil {
		return err
	}

	var booked int64
	if err := db.Model(&models.Booking{}).Where("place_id = ?", id).Count(&booked).Error; err != nil {
		return storeErr("count place bookings", err)
	}
	if booked > 0 {
		return fmt.Errorf("place %d has %d bookings: %w", id, booked, ErrConflict)
	}

	if err := db.Where("id = ? AND owner_id = ?", id, callerID).Delete(&models.Place{}).Error; err != nil {
		return storeErr("delete place", err)
	}

	s.invalidate(id)
	return nil
}

// apply copies the set fields onto place and returns them as a column map.
func (in PlaceUpdate) apply(place *models.Place) map[string]any {
	changes := map[string]any{}
	if in.Title != nil {
		place.Title = strings.TrimSpace(*in.Title)
		changes["title"] = place.Title
	}
	if in.Address != nil {
		place.Address = strings.TrimSpace(*in.Address)
		changes["address"] = place.Address
	}
	if in.Photos != nil {
		place.Photos = orEmpty(*in.Photos)
		changes["photos"] = place.Photos
	}
	if in.Description != nil {
		place.Description = *in.Description
		changes["description"] = place.Description
	}
	if in.Perks != nil {
		place.Perks = orEmpty(*in.Perks)
		changes["perks"] = place.Perks
	}
	if in.ExtraInfo != nil {
		place.ExtraInfo = *in.ExtraInfo
		changes["extra_info"] = place.ExtraInfo
	}
	if in.CheckIn != nil {
		place.CheckIn = *in.CheckIn
		changes["check_in"] = place.CheckIn
	}
	if in.CheckOut != nil {
		place.CheckOut = *in.CheckOut
		changes["check_out"] = place.CheckOut
	}
	if in.MaxGuests != nil {
		place.MaxGuests = *in.MaxGuests
		changes["max_guests"] = place.MaxGuests
	}
	if in.Price != nil {
		place.Price = *in.Price
		changes["price"] = place.Price
	}
	return changes
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func validatePlace(place *models.Place) error {
	verr := newValidationError()
	if err := verr.merge(place.Validate()); err != nil {
		return err
	}
	return verr.orNil()
}

func (s *PlaceService) fromCache(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.log.LogErrorf("cache get %s: %v", key, err)
		return false
	}
	return hit
}

func (s *PlaceService) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.log.LogErrorf("cache set %s: %v", key, err)
	}
}

func (s *PlaceService) invalidate(placeID uint) {
	invalidatePlace(s.cache, s.log, placeID, s.redelete)
}

// invalidatePlace drops the place's cached reads now and once more after
// redelete. The second pass evicts a row that a read which started before
// the write put back into the cache after the first delete.
func invalidatePlace(cache Cache, l *logger.Logger, placeID uint, redelete time.Duration) {
	if cache == nil {
		return
	}

	keys := []string{placesAllKey, fmt.Sprintf(placeKeyFormat, placeID)}
	drop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), cacheDeleteTimeout)
		defer cancel()
		if err := cache.Delete(ctx, keys...); err != nil {
			l.LogErrorf("cache invalidate place %d: %v", placeID, err)
		}
	}

	drop()
	if redelete > 0 {
		time.AfterFunc(redelete, drop)
	}
}
