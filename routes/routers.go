package routes

import (
	"net/http"

	"staybook/config"
	"staybook/controllers"
	"staybook/logger"
	middlewares "staybook/middleware"
	"staybook/services"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SetupRoutes wires services and handlers onto router. redisCli and cld may
// be nil; the cache, token revocation and uploads are then disabled.
func SetupRoutes(router *gin.Engine, cfg *config.Config, db *gorm.DB, redisCli *redis.Client, cld *cloudinary.Cloudinary, l *logger.Logger) {
	storeCfg := services.StoreConfig{Timeout: cfg.DBTimeout()}

	var (
		cache   services.Cache
		revoked services.RevocationStore
		blobs   services.BlobStore
	)
	if redisCli != nil {
		cache = services.NewRedisCache(redisCli, cfg.CacheTTL())
		revoked = services.NewRedisRevocations(redisCli)
	}
	if cld != nil {
		blobs = services.NewCloudinaryStore(cld)
	}

	resolver := services.NewIdentityResolver(cfg.JWTSecret, cfg.TokenTTL(), revoked)
	places := services.NewPlaceService(db, storeCfg, cache, l)
	bookings := services.NewBookingManager(db, storeCfg, places, services.WithFlatFee(services.NightlyPricing, cfg.CleaningFee))
	reviews := services.NewReviewManager(db, storeCfg, cache, l)

	userController := controllers.NewUserController(
		services.NewUserService(db, storeCfg, resolver, cfg.GoogleClient),
		cfg.CookieSecure,
		int(cfg.TokenTTL().Seconds()),
	)
	placeController := controllers.NewPlaceController(places)
	bookingController := controllers.NewBookingController(bookings)
	reviewController := controllers.NewReviewController(reviews)
	uploadController := controllers.NewUploadController(services.NewUploadService(blobs))

	auth := middlewares.AuthMiddleware(resolver)
	optional := middlewares.OptionalAuth(resolver)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 1, "mess": "ok"})
	})

	router.POST("/register", userController.Register)
	router.POST("/login", userController.Login)
	router.POST("/google/login", userController.GoogleLogin)
	router.GET("/logout", userController.Logout)
	router.GET("/profile", auth, userController.Profile)
	router.PUT("/update-user", auth, userController.UpdateUser)

	router.POST("/upload", auth, uploadController.UploadPhotos)
	router.POST("/upload-by-link", auth, uploadController.UploadByLink)

	router.POST("/places", auth, placeController.CreatePlace)
	router.PUT("/places", auth, placeController.UpdatePlace)
	router.DELETE("/places/:id", auth, placeController.DeletePlace)
	router.GET("/user-places", auth, placeController.GetUserPlaces)
	router.GET("/places", optional, placeController.GetPlaces)
	router.GET("/places/:id", optional, placeController.GetPlace)
	router.GET("/places/:id/reviews", optional, reviewController.GetPlaceReviews)

	router.POST("/bookings", auth, bookingController.CreateBooking)
	router.GET("/bookings", auth, bookingController.GetBookings)
	router.GET("/host-bookings", auth, bookingController.GetHostBookings)
	router.GET("/bookings/:id", auth, bookingController.GetBooking)
	router.PUT("/bookings/:id/status", auth, bookingController.ChangeBookingStatus)

	router.POST("/review", auth, reviewController.CreateReview)
	router.PUT("/review/:id/update", auth, reviewController.UpdateReview)
	router.GET("/review/user", auth, reviewController.GetUserReviews)
}
