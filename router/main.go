package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/salmamehrez85/UniMate/config"
	"github.com/salmamehrez85/UniMate/database"
	"github.com/salmamehrez85/UniMate/handlers"
	auth_handlers "github.com/salmamehrez85/UniMate/handlers/auth"
	course_handlers "github.com/salmamehrez85/UniMate/handlers/course"
	performance_handlers "github.com/salmamehrez85/UniMate/handlers/performance"
	"github.com/salmamehrez85/UniMate/services/genai"
	"github.com/salmamehrez85/UniMate/services/predictor"
	"github.com/salmamehrez85/UniMate/utils/auth"
	"github.com/salmamehrez85/UniMate/utils/cache"
	"github.com/salmamehrez85/UniMate/utils/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	getEnv, err := config.Get()
	if err != nil {
		log.Fatal("Failed to load configuration")
	}

	jwtSecret := getEnv.JWT_SECRET
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "unimate-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis cache backs brute force protection; the app runs without it
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)

	// The LLM client is optional: without a key every prediction degrades
	// to the deterministic fallback paths
	var generator predictor.TextGenerator
	if getEnv.GENAI_API_KEY != "" {
		generator = genai.NewClient(genai.ClientConfig{
			APIKey:  getEnv.GENAI_API_KEY,
			Model:   getEnv.GENAI_MODEL,
			BaseURL: getEnv.GENAI_BASEURL,
		})
	} else {
		log.Println("Warning: GENAI_API_KEY not set. Predictions will use the rule-based fallback only.")
	}
	predictorService := predictor.NewService(predictor.Config{Generator: generator})

	courseHandler := course_handlers.NewCourseHandler(db)
	performanceHandler := performance_handlers.NewPerformanceHandler(db, predictorService)

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", handlers.HealthCheck(store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// Courses routes (protected, user-scoped)
	courses := api.Group("/courses", authMiddleware.Required())

	// Prediction routes must be registered before /:id
	courses.Get("/predicted-gpa", performanceHandler.GetPredictedGPA)
	courses.Get("/gpa-trend", performanceHandler.GetGPATrend)
	courses.Get("/recommendations", performanceHandler.GetRecommendations)

	courses.Get("/", courseHandler.ListCourses)
	courses.Post("/", courseHandler.CreateCourse)
	courses.Get("/:id", courseHandler.GetCourse)
	courses.Put("/:id", courseHandler.UpdateCourse)
	courses.Delete("/:id", courseHandler.DeleteCourse)
	courses.Post("/:id/outline", courseHandler.UploadOutline)
}
