package router

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jsobotka/tutorbase-api/internal/config"
	"github.com/jsobotka/tutorbase-api/internal/database"
	"github.com/jsobotka/tutorbase-api/internal/handlers"
	"github.com/jsobotka/tutorbase-api/internal/middleware"
	"github.com/jsobotka/tutorbase-api/internal/scheduling"
	"github.com/jsobotka/tutorbase-api/internal/services"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Resolve "today" in the configured schedule timezone.
	loc, err := time.LoadLocation(cfg.ScheduleTimezone)
	if err != nil {
		log.Printf("Warning: invalid SCHEDULE_TIMEZONE %q, falling back to local time: %v", cfg.ScheduleTimezone, err)
		loc = time.Local
	}
	clock := func() time.Time { return time.Now().In(loc) }

	// Initialize stores and the scheduling engine
	store := database.NewStore(db)
	locker, err := database.NewClassLocker(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to initialize class locker: %v", err)
	}

	calendar := scheduling.NewCalendar(store)
	generator := scheduling.NewGenerator(store, locker).WithClock(clock)
	lifecycle := scheduling.NewLifecycle(store).WithClock(clock)
	archiver := scheduling.NewArchiver(store, locker).WithClock(clock)

	activityService := services.NewActivityService(db)

	rateLimiter, err := middleware.NewRateLimiter(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Failed to initialize rate limiter: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Health check endpoint
	r.GET("/health", handlers.HealthCheck(db))

	// API v1 routes
	api := r.Group("/api/v1")
	{
		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(cfg))
		{
			// Academic calendar
			protected.GET("/academic-years", handlers.ListAcademicYears(db))
			protected.GET("/academic-years/:id", handlers.GetAcademicYear(db))
			protected.GET("/academic-years/:id/non-teaching-dates", handlers.GetNonTeachingDates(calendar))

			// Classes
			protected.GET("/classes", handlers.ListClasses(db))
			protected.GET("/classes/:id", handlers.GetClass(db))
			protected.GET("/classes/:id/lessons", handlers.ListLessons(db))
			protected.GET("/classes/:id/slots", handlers.ListClassSlots(store, clock))

			// Activities
			protected.GET("/activities/recent", handlers.GetRecentActivities(activityService))
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(cfg), middleware.AdminRequired())
		{
			// Lesson generation (rate limited: expensive, and clients retry)
			generate := handlers.GenerateLessons(store, generator, activityService)
			if rateLimiter != nil {
				admin.POST("/classes/:id/lessons/generate", rateLimiter.RateLimitByIP(30, 60), generate)
			} else {
				admin.POST("/classes/:id/lessons/generate", generate)
			}

			// Schedule slots
			admin.POST("/classes/:id/slots", handlers.CreateClassSlot(store))
			admin.PUT("/slots/:id/replace", handlers.ReplaceSlot(store, activityService, clock))
			admin.DELETE("/slots/:id", handlers.ObsoleteSlot(store))

			// Lesson lifecycle
			admin.POST("/lessons/:id/conduct", handlers.ConductLesson(lifecycle, activityService))
			admin.POST("/lessons/:id/cancel", handlers.CancelLesson(lifecycle, activityService))
			admin.POST("/lessons/:id/no-show", handlers.MarkLessonNoShow(lifecycle, activityService))
			admin.POST("/lessons/:id/makeup", handlers.CreateMakeupLesson(lifecycle, activityService))
			admin.POST("/lessons/:id/reschedule", handlers.RescheduleLesson(lifecycle, activityService))

			// Class archiving
			admin.POST("/classes/:id/disable", handlers.DisableClass(archiver, activityService))
			admin.POST("/classes/:id/enable", handlers.EnableClass(archiver, activityService))
		}
	}

	return r
}
