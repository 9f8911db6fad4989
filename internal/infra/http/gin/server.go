package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"tourway/internal/infra/config"
	"tourway/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	ListMine(c *gin.Context)
	List(c *gin.Context)
	Cancel(c *gin.Context)
	UpdateStatus(c *gin.Context)
	Voucher(c *gin.Context)
}

type TourHTTP interface {
	Catalog(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Deactivate(c *gin.Context)
}

type ItineraryHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	ListMine(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type ReviewHTTP interface {
	Submit(c *gin.Context)
	ListByTour(c *gin.Context)
}

type Handlers struct {
	Booking        BookingHTTP
	Tour           TourHTTP
	Itinerary      ItineraryHTTP
	Review         ReviewHTTP
	Auth           AuthHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Tour != nil {
		api.GET("/tours", h.Tour.Catalog)
		api.GET("/tours/:id", h.Tour.Get)

		adminTours := api.Group("/admin/tours")
		adminTours.POST("", h.Tour.Create)
		adminTours.PUT("/:id", h.Tour.Update)
		adminTours.DELETE("/:id", h.Tour.Deactivate)
	}
	if h.Itinerary != nil {
		api.POST("/itineraries", h.Itinerary.Create)
		api.GET("/itineraries", h.Itinerary.ListMine)
		api.GET("/itineraries/:id", h.Itinerary.Get)
		api.PUT("/itineraries/:id", h.Itinerary.Update)
		api.DELETE("/itineraries/:id", h.Itinerary.Delete)
	}
	if h.Review != nil {
		api.GET("/tours/:id/reviews", h.Review.ListByTour)
		api.POST("/tours/:id/reviews", h.Review.Submit)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings/:id", h.Booking.Get)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.POST("/bookings/:id/voucher", h.Booking.Voucher)
		api.GET("/me/bookings", h.Booking.ListMine)

		adminGroup := api.Group("/admin")
		adminGroup.GET("/bookings", h.Booking.List)
		adminGroup.PATCH("/bookings/:id/status", h.Booking.UpdateStatus)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
