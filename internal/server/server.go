package server

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/greenloop/greenloop-backend/internal/middleware"
	"github.com/greenloop/greenloop-backend/pkg/storage"

	adminHttp "github.com/greenloop/greenloop-backend/internal/modules/admin/delivery/http"
	adminService "github.com/greenloop/greenloop-backend/internal/modules/admin/service"

	commentHttp "github.com/greenloop/greenloop-backend/internal/modules/comment/delivery/http"
	commentRepo "github.com/greenloop/greenloop-backend/internal/modules/comment/repository"
	commentService "github.com/greenloop/greenloop-backend/internal/modules/comment/service"

	configHttp "github.com/greenloop/greenloop-backend/internal/modules/config/delivery/http"
	configRepo "github.com/greenloop/greenloop-backend/internal/modules/config/repository"
	configService "github.com/greenloop/greenloop-backend/internal/modules/config/service"

	itemHttp "github.com/greenloop/greenloop-backend/internal/modules/item/delivery/http"
	itemRepo "github.com/greenloop/greenloop-backend/internal/modules/item/repository"
	itemService "github.com/greenloop/greenloop-backend/internal/modules/item/service"

	likeHttp "github.com/greenloop/greenloop-backend/internal/modules/like/delivery/http"
	likeRepo "github.com/greenloop/greenloop-backend/internal/modules/like/repository"
	likeService "github.com/greenloop/greenloop-backend/internal/modules/like/service"

	notifHttp "github.com/greenloop/greenloop-backend/internal/modules/notification/delivery/http"
	notifRepo "github.com/greenloop/greenloop-backend/internal/modules/notification/repository"
	notifService "github.com/greenloop/greenloop-backend/internal/modules/notification/service"

	postHttp "github.com/greenloop/greenloop-backend/internal/modules/post/delivery/http"
	postRepo "github.com/greenloop/greenloop-backend/internal/modules/post/repository"
	postService "github.com/greenloop/greenloop-backend/internal/modules/post/service"

	searchService "github.com/greenloop/greenloop-backend/internal/modules/search/service"

	storyHttp "github.com/greenloop/greenloop-backend/internal/modules/story/delivery/http"
	storyRepo "github.com/greenloop/greenloop-backend/internal/modules/story/repository"
	storyService "github.com/greenloop/greenloop-backend/internal/modules/story/service"

	userHttp "github.com/greenloop/greenloop-backend/internal/modules/user/delivery/http"
	userRepo "github.com/greenloop/greenloop-backend/internal/modules/user/repository"
	userService "github.com/greenloop/greenloop-backend/internal/modules/user/service"

	walletHttp "github.com/greenloop/greenloop-backend/internal/modules/wallet/delivery/http"
	walletRepo "github.com/greenloop/greenloop-backend/internal/modules/wallet/repository"
	walletService "github.com/greenloop/greenloop-backend/internal/modules/wallet/service"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(db *gorm.DB, redisClient *redis.Client) *Server {
	users := userRepo.NewUserRepository(db)

	var imageStorage storage.ImageStorage
	if os.Getenv("CLOUDINARY_URL") != "" || os.Getenv("CLOUDINARY_CLOUD_NAME") != "" {
		var err error
		imageStorage, err = storage.NewCloudinaryStorage()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize cloudinary storage")
		}
	} else {
		log.Warn().Msg("cloudinary is not configured, image uploads disabled")
	}

	var meiliSvc searchService.SearchService
	if meiliHost := os.Getenv("MEILISEARCH_HOST"); meiliHost != "" {
		if !strings.HasPrefix(meiliHost, "http") {
			meiliHost = "http://" + meiliHost + ":7700"
		}
		meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(os.Getenv("MEILI_MASTER_KEY")))
		meiliSvc = searchService.NewSearchService(meiliClient)
	} else {
		log.Warn().Msg("meilisearch is not configured, post search disabled")
	}

	authSvc := userService.NewAuthService(users)
	authHandler := userHttp.NewAuthHandler(authSvc)

	profileSvc := userService.NewProfileService(users, imageStorage)
	profileHandler := userHttp.NewProfileHandler(profileSvc)

	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient)
	notificationHandler := notifHttp.NewNotificationHandler(notificationSvc, redisClient)

	posts := postRepo.NewPostRepository(db)
	likes := likeRepo.NewLikeRepository(db)

	likeSvc := likeService.NewLikeService(likes, posts, redisClient, notificationSvc)
	likeHandler := likeHttp.NewLikeHandler(likeSvc)

	postSvc := postService.NewPostService(posts, likes, imageStorage, redisClient, meiliSvc)
	moderationSvc := postService.NewModerationService(db, notificationSvc, meiliSvc)
	postHandler := postHttp.NewPostHandler(postSvc, moderationSvc)

	comments := commentRepo.NewCommentRepository(db)
	commentSvc := commentService.NewCommentService(comments, posts, notificationSvc)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)

	stories := storyRepo.NewStoryRepository(db)
	storySvc := storyService.NewStoryService(stories, imageStorage)
	storyHandler := storyHttp.NewStoryHandler(storySvc)

	items := itemRepo.NewItemRepository(db)
	itemSvc := itemService.NewItemService(db, items, imageStorage)
	itemHandler := itemHttp.NewItemHandler(itemSvc)

	wallets := walletRepo.NewWalletRepository(db)
	walletSvc := walletService.NewWalletService(wallets, users)
	walletHandler := walletHttp.NewWalletHandler(walletSvc)

	configs := configRepo.NewConfigRepository(db)
	configSvc := configService.NewConfigService(configs)
	configHandler := configHttp.NewConfigHandler(configSvc)

	adminSvc := adminService.NewAdminService(users, posts, items)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	router := gin.New()

	setupCORS(router)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(users)

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Readable without an account; an optional token unlocks own/pending
	// content in the same handlers.
	public := api.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/posts", postHandler.GetFeed)
		public.GET("/posts/:id", postHandler.GetPost)
		public.GET("/posts/:id/likes", likeHandler.GetStatus)
		public.GET("/posts/:id/comments", commentHandler.ListComments)
		public.GET("/items", itemHandler.ListItems)
		public.GET("/items/:id", itemHandler.GetItem)
		public.GET("/config", configHandler.GetConfig)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/users/me", profileHandler.GetMe)
		protected.PATCH("/users/me", profileHandler.UpdateMe)
		protected.POST("/users/me/avatar", profileHandler.UploadAvatar)

		protected.POST("/posts", postHandler.CreatePost)
		protected.DELETE("/posts/:id", authMiddleware.LoadUser(), postHandler.DeletePost)
		protected.PATCH("/posts/:id/decision", authMiddleware.RequireStaff(), postHandler.DecidePost)

		protected.POST("/posts/:id/like", likeHandler.ToggleLike)
		protected.POST("/posts/:id/comments", commentHandler.CreateComment)
		protected.DELETE("/comments/:commentId", commentHandler.DeleteComment)

		protected.GET("/stories", storyHandler.ListStories)
		protected.POST("/stories", storyHandler.CreateStory)
		protected.POST("/stories/:id/view", storyHandler.ViewStory)
		protected.DELETE("/stories/:id", storyHandler.DeleteStory)

		protected.POST("/items/:id/redeem", itemHandler.RedeemItem)
		protected.GET("/redemptions/me", itemHandler.MyRedemptions)
		protected.GET("/points/me", walletHandler.GetMyWallet)

		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.PATCH("/users/:id", adminHandler.UpdateUser)
			adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)

			adminGroup.POST("/items", itemHandler.CreateItem)
			adminGroup.PATCH("/items/:id", itemHandler.UpdateItem)
			adminGroup.DELETE("/items/:id", itemHandler.DeleteItem)

			adminGroup.GET("/redemptions", itemHandler.AllRedemptions)
			adminGroup.PATCH("/redemptions/:id/shipped", itemHandler.MarkShipped)

			adminGroup.GET("/stats", adminHandler.Stats)

			adminGroup.PATCH("/config/gift-prices", configHandler.UpdateGiftPrice)
			adminGroup.PATCH("/config/streak-milestones", configHandler.UpdateStreakMilestone)
			adminGroup.PATCH("/config/action-rewards", configHandler.UpdateActionReward)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine) {
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
