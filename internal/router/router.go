package router

import (
	"net/http"
	"time"

	"github.com/KRaymonne/pro/internal/config"
	"github.com/KRaymonne/pro/internal/handlers"
	"github.com/KRaymonne/pro/internal/models"
	"github.com/KRaymonne/pro/internal/services"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}
func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{"message": "trop de tentatives, réessayez plus tard"})
}

func Setup(log *zap.Logger, sessionService *services.SessionService) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	store := cookie.NewStore([]byte(config.Conf.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	router.Use(sessions.Sessions("lectio_session", store))

	// --- Now that sessions are initialized, other middleware can use them ---
	router.Use(CSRFProtection())
	router.Use(UserLoaderMiddleware())

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			c.Abort()
			return
		}
	})

	// Stored narrations and student recordings.
	router.Static("/uploads", config.Conf.Uploads.Directory)

	// Handlers and routes
	authHandler := handlers.NewAuthHandler(log)
	poemHandler := handlers.NewPoemHandler(log)
	sessionHandler := handlers.NewSessionHandler(log, sessionService)
	recordingHandler := handlers.NewRecordingHandler(log, sessionService)
	favoriteHandler := handlers.NewFavoriteHandler(log)
	audioHandler := handlers.NewAudioHandler(log)
	reportService := services.NewReportService(log)
	reportHandler := handlers.NewReportHandler(log, reportService, services.NewExportService(log))
	chartHandler := handlers.NewChartHandler(log, reportService)

	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 5,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	api := router.Group("/api")

	api.GET("/auth/csrf", func(c *gin.Context) {
		token, _ := c.Get("csrf_token")
		c.JSON(http.StatusOK, gin.H{"csrfToken": token})
	})
	api.POST("/auth/inscription", limiter, authHandler.Register)
	api.POST("/auth/connexion", limiter, authHandler.Login)
	api.POST("/auth/deconnexion", authHandler.Logout)

	authorized := api.Group("/")
	authorized.Use(AuthRequired())
	{
		authorized.GET("/auth/moi", authHandler.Me)
		authorized.PUT("/auth/preference-voix", audioHandler.UpdateVoicePreference)

		poemRoutes := authorized.Group("/poesies")
		{
			poemRoutes.GET("", poemHandler.List)
			poemRoutes.GET("/:id", poemHandler.Get)
			poemRoutes.GET("/:id/narration", audioHandler.Narration)

			curator := poemRoutes.Group("")
			curator.Use(RoleRequired(models.RoleTeacher, models.RoleAdmin))
			{
				curator.POST("", poemHandler.Create)
				curator.PUT("/:id", poemHandler.Update)
				curator.DELETE("/:id", poemHandler.Delete)
			}
		}

		sessionRoutes := authorized.Group("/lectures")
		{
			sessionRoutes.GET("", sessionHandler.List)
			sessionRoutes.POST("", sessionHandler.Start)
			sessionRoutes.POST("/etape", sessionHandler.NextStep)
			sessionRoutes.GET("/stats/personnelles", sessionHandler.PersonalStats)
			sessionRoutes.GET("/progression/:id", sessionHandler.Progress)
			sessionRoutes.GET("/:id", sessionHandler.Get)
			sessionRoutes.PUT("/:id", sessionHandler.UpdateProgress)
			sessionRoutes.POST("/:id/terminer", sessionHandler.Finalize)
			sessionRoutes.POST("/:id/abandonner", sessionHandler.Abandon)
		}

		recordingRoutes := authorized.Group("/enregistrements")
		{
			recordingRoutes.GET("", recordingHandler.List)
			recordingRoutes.POST("", recordingHandler.Upload)
			recordingRoutes.GET("/stats", recordingHandler.Stats)
			recordingRoutes.GET("/lecture/:id", recordingHandler.ListBySession)
			recordingRoutes.GET("/:id", recordingHandler.Get)
			recordingRoutes.PUT("/:id", recordingHandler.Update)
			recordingRoutes.DELETE("/:id", recordingHandler.Delete)
		}

		favoriteRoutes := authorized.Group("/favoris")
		{
			favoriteRoutes.GET("", favoriteHandler.List)
			favoriteRoutes.POST("", favoriteHandler.Add)
			favoriteRoutes.DELETE("/:id", favoriteHandler.Remove)
		}

		reportRoutes := authorized.Group("/rapports")
		{
			reportRoutes.GET("/individuel", reportHandler.Individual)
			reportRoutes.GET("/individuel/graphique", chartHandler.ScoreEvolution)
			reportRoutes.GET("/classe", reportHandler.Classroom)
			reportRoutes.GET("/export", reportHandler.Export)
		}
	}

	return router
}
