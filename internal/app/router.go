package app

import (
	"log"
	"time"

	"lms-backend/internal/config"
	"lms-backend/internal/middleware"
	"lms-backend/internal/model"
	"lms-backend/internal/repository"
	"lms-backend/internal/service"
	"lms-backend/internal/util"
	"lms-backend/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	// Set Gin mode
	if cfg.ServerPort == "5000" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware(cfg.ClientURL))

	// Rate limiting middleware (if enabled)
	if cfg.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		r.Use(rateLimiter.Middleware())
		log.Printf("Rate limiting enabled: %d req/sec, burst: %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		panic("Failed to connect to database: " + err.Error())
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Enrollment{},
		&model.CourseMaterial{},
		&model.Feedback{},
		&model.StatusUpdate{},
		&model.Notification{},
		&model.ChatRoom{},
		&model.Message{},
	); err != nil {
		panic("Failed to migrate database: " + err.Error())
	}

	// Initialize Redis with retry logic
	redisClient := initRedisWithRetry(cfg)

	// Initialize RabbitMQ with retry logic
	rabbitMQ := initRabbitMQWithRetry(cfg)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	notificationRepo := repository.NewNotificationRepository(db, redisClient)
	chatRepo := repository.NewChatRepository(db, redisClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiryHours)
	notificationService := service.NewNotificationService(notificationRepo, rabbitMQ)
	courseService := service.NewCourseService(courseRepo, chatRepo, notificationService)
	feedbackService := service.NewFeedbackService(feedbackRepo, courseRepo, notificationService)
	chatService := service.NewChatService(chatRepo, userRepo)

	// Seed the shared dashboard room so clients can always join it
	if err := chatService.EnsureDefaultRoom(); err != nil {
		log.Printf("Warning: Failed to ensure default chat room: %v", err)
	}

	// Initialize notification worker if RabbitMQ is available
	if rabbitMQ != nil {
		notificationWorker := service.NewNotificationWorker(notificationService, rabbitMQ)
		if err := notificationWorker.Start(); err != nil {
			log.Printf("Warning: Failed to start notification worker: %v", err)
		} else {
			log.Println("Notification worker started successfully")
		}
	} else {
		log.Println("Notification worker not started - RabbitMQ connection failed. Notifications will be written directly.")
	}

	// Initialize WebSocket chat group
	chatGroup := websocket.NewGroup()
	wsHandler := websocket.NewHandler(chatGroup, chatService, userRepo, cfg.JWTSecret)
	log.Println("WebSocket chat group started")

	// Initialize handlers
	authHandler := NewAuthHandler(authService, cfg.JWTSecret)
	courseHandler := NewCourseHandler(courseService)
	feedbackHandler := NewFeedbackHandler(feedbackService)
	notificationHandler := NewNotificationHandler(notificationService)
	chatHandler := NewChatHandler(chatService)

	// API routes
	api := r.Group("/api/v1")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)

			// Protected routes
			auth.GET("/me", authHandler.AuthMiddleware(), authHandler.GetMe)
		}

		// User routes
		users := api.Group("/users")
		{
			users.Use(authHandler.AuthMiddleware())
			{
				users.GET("/search", authHandler.RequireRole(model.RoleTeacher), authHandler.SearchUsers)
				users.GET("/:id", authHandler.GetUser)
			}
		}

		// Course routes
		courses := api.Group("/courses")
		{
			courses.Use(authHandler.AuthMiddleware())
			{
				courses.POST("", authHandler.RequireRole(model.RoleTeacher), courseHandler.CreateCourse)
				courses.GET("", courseHandler.ListCourses)
				courses.GET("/:id", courseHandler.GetCourse)
				courses.DELETE("/:id", authHandler.RequireRole(model.RoleTeacher), courseHandler.DeleteCourse)

				courses.POST("/:id/materials", authHandler.RequireRole(model.RoleTeacher), courseHandler.AddMaterial)
				courses.GET("/:id/materials", courseHandler.ListMaterials)
				courses.DELETE("/:id/materials/:materialID", authHandler.RequireRole(model.RoleTeacher), courseHandler.DeleteMaterial)
			}
		}

		// Enrollment routes
		enrollments := api.Group("/enrollments")
		{
			enrollments.Use(authHandler.AuthMiddleware())
			{
				enrollments.POST("", authHandler.RequireRole(model.RoleStudent), courseHandler.Enroll)
				enrollments.GET("", courseHandler.ListEnrollments)
			}
		}

		// Feedback and status update routes
		feedback := api.Group("/feedback")
		{
			feedback.Use(authHandler.AuthMiddleware())
			{
				feedback.POST("/feedbacks", authHandler.RequireRole(model.RoleStudent), feedbackHandler.SubmitFeedback)
				feedback.GET("/feedbacks", feedbackHandler.ListFeedback)
				feedback.POST("/status-updates", authHandler.RequireRole(model.RoleStudent), feedbackHandler.PostStatusUpdate)
				feedback.GET("/status-updates", feedbackHandler.ListStatusUpdates)
				feedback.DELETE("/status-updates/:id", authHandler.RequireRole(model.RoleStudent), feedbackHandler.DeleteStatusUpdate)
			}
		}

		// Notification routes
		notifications := api.Group("/notifications")
		{
			notifications.Use(authHandler.AuthMiddleware())
			{
				notifications.GET("", notificationHandler.GetNotifications)
				notifications.GET("/unread", notificationHandler.GetUnreadNotifications)
				notifications.GET("/unread/count", notificationHandler.GetUnreadCount)
				notifications.PUT("/:id/read", notificationHandler.MarkAsRead)
				notifications.PUT("/read-all", notificationHandler.MarkAllAsRead)
				notifications.DELETE("/:id", notificationHandler.DeleteNotification)
			}
		}

		// Chat REST routes
		chat := api.Group("/chat")
		chat.Use(authHandler.AuthMiddleware())
		{
			chat.GET("/rooms", chatHandler.ListRooms)
			chat.POST("/rooms", chatHandler.CreateRoom)
			chat.GET("/rooms/:roomName", chatHandler.GetRoom)
			chat.GET("/rooms/:roomName/messages", chatHandler.GetRoomHistory)
		}
	}

	// WebSocket route. Token auth happens after the upgrade so the close
	// code reaches the client.
	r.GET("/ws/chat/:roomName", func(c *gin.Context) {
		wsHandler.ServeWS(c.Writer, c.Request, c.Param("roomName"))
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = "host=" + cfg.PostgresHost +
			" port=" + cfg.PostgresPort +
			" user=" + cfg.PostgresUser +
			" password=" + cfg.PostgresPassword +
			" dbname=" + cfg.PostgresDB +
			" sslmode=" + cfg.PostgresSSLMode
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// initRedisWithRetry attempts to connect to Redis with exponential backoff retry
func initRedisWithRetry(cfg *config.Config) *util.RedisClient {
	maxRetries := 10
	initialDelay := 2 * time.Second
	maxDelay := 30 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		redisClient, err := util.NewRedisClient(cfg)
		if err == nil {
			log.Printf("Redis connected successfully on attempt %d", attempt)
			return redisClient
		}

		if attempt < maxRetries {
			delay := initialDelay * time.Duration(1<<uint(attempt-1))
			if delay > maxDelay {
				delay = maxDelay
			}

			log.Printf("Failed to connect to Redis (attempt %d/%d): %v. Retrying in %v...", attempt, maxRetries, err, delay)
			time.Sleep(delay)
		} else {
			log.Printf("Warning: Failed to connect to Redis after %d attempts: %v. Caching will be disabled.", maxRetries, err)
			log.Println("Note: Application will continue without Redis caching")
		}
	}

	return nil
}

// initRabbitMQWithRetry attempts to connect to RabbitMQ with exponential backoff retry
func initRabbitMQWithRetry(cfg *config.Config) *util.RabbitMQClient {
	maxRetries := 10
	initialDelay := 2 * time.Second
	maxDelay := 30 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		rabbitMQ, err := util.NewRabbitMQClient(cfg)
		if err == nil {
			log.Printf("RabbitMQ connected successfully on attempt %d", attempt)
			return rabbitMQ
		}

		if attempt < maxRetries {
			delay := initialDelay * time.Duration(1<<uint(attempt-1))
			if delay > maxDelay {
				delay = maxDelay
			}

			log.Printf("Failed to connect to RabbitMQ (attempt %d/%d): %v. Retrying in %v...", attempt, maxRetries, err, delay)
			time.Sleep(delay)
		} else {
			log.Printf("Warning: Failed to connect to RabbitMQ after %d attempts: %v. Notifications will be written directly.", maxRetries, err)
		}
	}

	return nil
}

func corsMiddleware(clientURL string) gin.HandlerFunc {
	// Allowed origins (whitelist)
	allowedOrigins := []string{
		clientURL, // Default from config
		"http://localhost:3000",
		"http://localhost:5173",
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", clientURL)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
