package server

import (
	"net/http"
	"time"

	"anoa.com/survivehub/internal/config"
	"anoa.com/survivehub/internal/middleware"
	"anoa.com/survivehub/internal/scheduler"
	"anoa.com/survivehub/pkg/mail"
	"anoa.com/survivehub/pkg/metrics"
	"anoa.com/survivehub/pkg/ratelimit"
	"anoa.com/survivehub/pkg/storage"

	adminHttp "anoa.com/survivehub/internal/modules/admin/delivery/http"
	adminService "anoa.com/survivehub/internal/modules/admin/service"

	chatHttp "anoa.com/survivehub/internal/modules/chat/delivery/http"
	chatRepo "anoa.com/survivehub/internal/modules/chat/repository"
	chatService "anoa.com/survivehub/internal/modules/chat/service"

	contentHttp "anoa.com/survivehub/internal/modules/content/delivery/http"
	contentRepo "anoa.com/survivehub/internal/modules/content/repository"
	contentService "anoa.com/survivehub/internal/modules/content/service"

	courseHttp "anoa.com/survivehub/internal/modules/course/delivery/http"
	courseRepo "anoa.com/survivehub/internal/modules/course/repository"
	courseService "anoa.com/survivehub/internal/modules/course/service"

	deadseaHttp "anoa.com/survivehub/internal/modules/deadsea/delivery/http"
	deadseaRepo "anoa.com/survivehub/internal/modules/deadsea/repository"
	deadseaService "anoa.com/survivehub/internal/modules/deadsea/service"

	downloadHttp "anoa.com/survivehub/internal/modules/download/delivery/http"
	downloadService "anoa.com/survivehub/internal/modules/download/service"

	groupHttp "anoa.com/survivehub/internal/modules/group/delivery/http"
	groupRepo "anoa.com/survivehub/internal/modules/group/repository"
	groupService "anoa.com/survivehub/internal/modules/group/service"

	notiHttp "anoa.com/survivehub/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/survivehub/internal/modules/notification/repository"
	notifService "anoa.com/survivehub/internal/modules/notification/service"

	postHttp "anoa.com/survivehub/internal/modules/post/delivery/http"
	postRepo "anoa.com/survivehub/internal/modules/post/repository"
	postService "anoa.com/survivehub/internal/modules/post/service"

	searchService "anoa.com/survivehub/internal/modules/search/service"

	socialHttp "anoa.com/survivehub/internal/modules/social/delivery/http"
	socialRepo "anoa.com/survivehub/internal/modules/social/repository"
	socialService "anoa.com/survivehub/internal/modules/social/service"

	sponsorHttp "anoa.com/survivehub/internal/modules/sponsor/delivery/http"
	sponsorRepo "anoa.com/survivehub/internal/modules/sponsor/repository"
	sponsorService "anoa.com/survivehub/internal/modules/sponsor/service"

	userHttp "anoa.com/survivehub/internal/modules/user/delivery/http"
	userRepo "anoa.com/survivehub/internal/modules/user/repository"
	userService "anoa.com/survivehub/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps carries the connections opened by main. Every optional integration may be nil.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Mongo  *mongo.Database
	Meili  searchService.MeiliSearchService
	Media  storage.MediaStorage
	Files  storage.FileStore
	Mailer mail.Sender
	Log    *zap.SugaredLogger
}

type Server struct {
	engine *gin.Engine
	jobs   []scheduler.Job
}

func NewServer(d Deps) *Server {
	cfg := d.Config
	limiter := ratelimit.NewLimiter(d.Redis, cfg.RateLimitContent)

	users := userRepo.NewUserRepository(d.DB)
	invites := userRepo.NewInviteRepository(d.DB)
	follows := socialRepo.NewFollowRepository(d.DB)
	posts := postRepo.NewPostRepository(d.DB)
	contents := contentRepo.NewContentRepository(d.DB)
	courses := courseRepo.NewCourseRepository(d.DB)
	updates := deadseaRepo.NewDeadseaRepository(d.DB)
	groups := groupRepo.NewGroupRepository(d.DB)
	notifications := notifRepo.NewNotificationRepository(d.DB)
	sponsors := sponsorRepo.NewSponsorRepository(d.DB)

	var chats chatRepo.ChatRepository
	if d.Mongo != nil {
		chats = chatRepo.NewMongoRepo(d.Mongo.Collection(chatRepo.Collection), d.Log)
	}

	opts := userService.Options{
		JWTSecret:           cfg.JWTSecret,
		JWTTTL:              cfg.JWTTTL,
		ResetTokenTTL:       cfg.ResetTokenTTL,
		EmailChangeTokenTTL: cfg.EmailChangeTokenTTL,
		PublicBaseURL:       cfg.PublicBaseURL,
		UsersPageSize:       cfg.UsersPageSize,
	}

	notificationSvc := notifService.NewNotificationService(notifications, d.Redis, d.Log)
	contentSvc := contentService.NewContentService(contents, notificationSvc, limiter, d.Media, d.Log)

	authSvc := userService.NewAuthService(users, invites, d.Mailer, d.Meili, d.Redis, opts, d.Log)
	accountSvc := userService.NewAccountService(users, d.Mailer, d.Meili, d.Media, opts, d.Log)
	socialSvc := socialService.NewSocialService(follows, users, notificationSvc, d.Log)
	postSvc := postService.NewPostService(posts, follows, contentSvc, d.Media, limiter)
	directorySvc := userService.NewDirectoryService(users, follows, postSvc, d.Meili, cfg.UsersPageSize, d.Log)
	courseSvc := courseService.NewCourseService(courses, contentSvc, d.Media, d.Log)
	deadseaSvc := deadseaService.NewDeadseaService(updates, contentSvc, d.Media)
	groupSvc := groupService.NewGroupService(groups, users, d.Media, d.Log)
	chatSvc := chatService.NewChatService(chats, users, d.Log)
	sponsorSvc := sponsorService.NewSponsorService(sponsors, d.Media, d.Log)
	downloadSvc := downloadService.NewDownloadService(d.Files, d.Log)
	adminSvc := adminService.NewAdminService(adminService.Repositories{
		Users:         users,
		Posts:         posts,
		Courses:       courses,
		Deadsea:       updates,
		Content:       contents,
		Follows:       follows,
		Groups:        groups,
		Notifications: notifications,
	}, contentSvc, d.Meili, d.Redis, d.Log)

	authHandler := userHttp.NewAuthHandler(authSvc)
	accountHandler := userHttp.NewAccountHandler(accountSvc)
	userHandler := userHttp.NewUserHandler(directorySvc)
	socialHandler := socialHttp.NewSocialHandler(socialSvc)
	postHandler := postHttp.NewPostHandler(postSvc)
	contentHandler := contentHttp.NewContentHandler(contentSvc)
	courseHandler := courseHttp.NewCourseHandler(courseSvc)
	deadseaHandler := deadseaHttp.NewDeadseaHandler(deadseaSvc)
	groupHandler := groupHttp.NewGroupHandler(groupSvc)
	chatHandler := chatHttp.NewChatHandler(chatSvc)
	sponsorHandler := sponsorHttp.NewSponsorHandler(sponsorSvc)
	downloadHandler := downloadHttp.NewDownloadHandler(downloadSvc)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, d.Redis, cfg.AllowedOrigins, d.Log)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/api/health", "/api/metrics", "/api/notifications/ws"},
	}))
	router.Use(metrics.Middleware())

	authMiddleware := middleware.NewAuthMiddleware(users, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
		auth.POST("/invites", authHandler.RequestInvite)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password/:token", authHandler.ResetPassword)
		auth.GET("/email-change/:token", accountHandler.ConfirmEmailChange)
	}
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.GET("/metrics", gin.WrapH(metrics.Handler()))

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/auth/logout", authHandler.Logout)

		account := protected.Group("/account")
		{
			account.PUT("/profile", accountHandler.UpdateProfile)
			account.PUT("/avatar", accountHandler.UpdateAvatar)
			account.PUT("/cover", accountHandler.UpdateCover)
			account.PUT("/password", accountHandler.ChangePassword)
			account.PUT("/online", authHandler.SetOnline)
		}

		protected.GET("/users", userHandler.ListUsers)
		protected.GET("/users/search", userHandler.SearchUsers)
		protected.GET("/users/:username", userHandler.GetProfile)
		protected.GET("/users/:username/followers", socialHandler.Followers)
		protected.GET("/users/:username/following", socialHandler.Following)
		protected.POST("/users/:username/follow", socialHandler.Follow)
		protected.DELETE("/users/:username/follow", socialHandler.Unfollow)

		protected.POST("/posts", postHandler.CreatePost)
		protected.GET("/posts/:id", postHandler.GetPost)
		protected.GET("/feed", postHandler.Feed)

		content := protected.Group("/content/:kind/:id")
		{
			content.GET("/comments", contentHandler.ListComments)
			content.POST("/comments", contentHandler.AddComment)
			content.POST("/comments/:comment_id/replies", contentHandler.AddReply)
			content.POST("/like", contentHandler.ToggleLike)
			content.POST("/report", contentHandler.Report)
			content.DELETE("", contentHandler.Delete)
		}

		protected.GET("/courses", courseHandler.ListCourses)
		protected.GET("/courses/:slug", courseHandler.GetCourse)
		protected.GET("/modules/:slug", courseHandler.GetModule)

		protected.GET("/deadsea", deadseaHandler.ListUpdates)
		protected.GET("/deadsea/:id", deadseaHandler.GetUpdate)

		groups := protected.Group("/groups")
		{
			groups.GET("", groupHandler.ListGroups)
			groups.POST("", groupHandler.CreateGroup)
			groups.GET("/:slug", groupHandler.GetGroup)
			groups.DELETE("/:slug", groupHandler.DeleteGroup)
			groups.POST("/:slug/join", groupHandler.JoinGroup)
			groups.POST("/:slug/leave", groupHandler.LeaveGroup)
			groups.POST("/:slug/members", groupHandler.AddMember)
			groups.POST("/:slug/discussions", groupHandler.CreateDiscussion)
		}
		protected.GET("/discussions/:id", groupHandler.GetDiscussion)
		protected.POST("/discussions/:id/responses", groupHandler.AddResponse)

		chats := protected.Group("/chats")
		{
			chats.GET("", chatHandler.ListChats)
			chats.GET("/unread", chatHandler.UnreadCount)
			chats.POST("/with/:user_id", chatHandler.StartChat)
			chats.GET("/:id", chatHandler.OpenChat)
			chats.POST("/:id/messages", chatHandler.SendMessage)
			chats.PUT("/:id/close", chatHandler.CloseChat)
			chats.PUT("/:id/reopen", chatHandler.ReopenChat)
		}

		protected.GET("/sponsors", sponsorHandler.ListSponsors)
		protected.GET("/sponsors/:slug", sponsorHandler.GetSponsor)

		protected.GET("/downloads", downloadHandler.ListResources)

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.DELETE("", notificationHandler.Clear)
			notifications.PUT("/seen", notificationHandler.MarkSeen)
			notifications.GET("/status", notificationHandler.Status)
			notifications.GET("/ws", notificationHandler.Stream)
		}

		admin := protected.Group("/admin")
		admin.Use(authMiddleware.RequireAdmin())
		{
			admin.GET("/invites", authHandler.ListInviteRequests)
			admin.POST("/invites", authHandler.CreateInvite)
			admin.POST("/invites/approve", authHandler.ApproveInvite)

			admin.GET("/users", adminHandler.ListUsers)
			admin.PUT("/users/:id", adminHandler.UpdateUser)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
			admin.PUT("/users/:id/suspend", adminHandler.SuspendUser)
			admin.PUT("/users/:id/unsuspend", adminHandler.UnsuspendUser)

			admin.GET("/reported", adminHandler.ListReported)
			admin.PUT("/content/:kind/:id/safe", adminHandler.MarkSafe)
			admin.DELETE("/content/:kind/:id", adminHandler.DeleteContent)

			admin.POST("/courses", courseHandler.CreateCourse)
			admin.PUT("/courses/:slug", courseHandler.UpdateCourse)
			admin.DELETE("/courses/:slug", courseHandler.DeleteCourse)
			admin.POST("/courses/:slug/modules", courseHandler.CreateModule)

			admin.POST("/deadsea", deadseaHandler.CreateUpdate)

			admin.POST("/sponsors", sponsorHandler.CreateSponsor)
			admin.POST("/sponsors/:slug/deals", sponsorHandler.AddDeal)

			admin.POST("/downloads", downloadHandler.UploadResource)
			admin.DELETE("/downloads/:name", downloadHandler.DeleteResource)
		}
	}

	return &Server{
		engine: router,
		jobs: []scheduler.Job{
			scheduler.TokenSweepJob(authSvc, d.Log),
			scheduler.NotificationRetryJob(notificationSvc, d.Log),
		},
	}
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Jobs returns the background jobs main registers with the scheduler.
func (s *Server) Jobs() []scheduler.Job {
	return s.jobs
}

func setupCORS(router *gin.Engine, origins []string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
