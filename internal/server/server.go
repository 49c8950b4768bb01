package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joelosiris11/mainkam/internal/config"
	"github.com/joelosiris11/mainkam/internal/events"
	"github.com/joelosiris11/mainkam/internal/handler"
	"github.com/joelosiris11/mainkam/internal/middleware"
	"github.com/joelosiris11/mainkam/internal/repository"
	"github.com/joelosiris11/mainkam/migrations"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine   *gin.Engine
	DB       *gorm.DB
	Config   *config.Config
	EventBus *events.Manager
}

func Init(cfg *config.Config) (*Server, error) {
	// Setup GORM
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Println("✅ Connected to database")

	// Apply schema migrations
	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("❌ failed to run migrations: %w", err)
	}
	log.Println("✅ Database schema is up to date")

	// Setup Gin
	r := gin.Default()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	columnRepo := repository.NewColumnRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	tagRepo := repository.NewTagRepository(db)

	// Event bus for real-time project subscriptions
	eventBus := events.NewManager()

	// Initialize handlers
	userHandler := handler.NewUserHandler(userRepo, cfg.JWTSecret, cfg.JWTExpiryHours)
	projectHandler := handler.NewProjectHandler(projectRepo, memberRepo, userRepo, eventBus)
	memberHandler := handler.NewMemberHandler(projectRepo, memberRepo, userRepo, eventBus)
	columnHandler := handler.NewColumnHandler(columnRepo, taskRepo, projectRepo, memberRepo, userRepo, eventBus)
	taskHandler := handler.NewTaskHandler(taskRepo, columnRepo, projectRepo, memberRepo, userRepo, eventBus)
	commentHandler := handler.NewCommentHandler(commentRepo, taskRepo, projectRepo, memberRepo, userRepo, eventBus)
	tagHandler := handler.NewTagHandler(tagRepo, taskRepo, projectRepo, memberRepo, userRepo, eventBus)
	statsHandler := handler.NewStatsHandler(taskRepo, columnRepo, projectRepo, memberRepo, userRepo)
	eventsHandler := handler.NewEventsHandler(projectRepo, memberRepo, userRepo, eventBus)

	// Public routes
	r.POST("/login", userHandler.Login)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		// User routes
		authorized.POST("/logout", userHandler.Logout)
		authorized.GET("/users", userHandler.GetAll)
		authorized.GET("/users/me", userHandler.Me)
		authorized.PUT("/users/me/role", userHandler.SelectRole)
		authorized.PUT("/users/:username/role", userHandler.SetUserRole)
		authorized.DELETE("/users/:username", userHandler.DeleteUser)

		// Project routes
		authorized.POST("/projects", projectHandler.Create)
		authorized.GET("/projects", projectHandler.GetAll)
		authorized.GET("/projects/:id", projectHandler.GetByID)
		authorized.PUT("/projects/:id", projectHandler.Update)
		authorized.POST("/projects/:id/select", projectHandler.Select)
		authorized.POST("/projects/:id/archive", projectHandler.Archive)
		authorized.DELETE("/projects/:id", projectHandler.Delete)

		// Member routes
		authorized.GET("/projects/:id/members", memberHandler.GetMembers)
		authorized.POST("/projects/:id/members", memberHandler.AddMember)
		authorized.DELETE("/projects/:id/members/:username", memberHandler.RemoveMember)

		// Column routes
		authorized.GET("/projects/:id/columns", columnHandler.GetAll)
		authorized.POST("/projects/:id/columns", columnHandler.Create)
		authorized.PUT("/projects/:id/columns/:column_id", columnHandler.Update)
		authorized.DELETE("/projects/:id/columns/:column_id", columnHandler.Delete)
		authorized.POST("/projects/:id/columns/reorder", columnHandler.Reorder)

		// Task routes
		authorized.GET("/projects/:id/tasks", taskHandler.GetAll)
		authorized.POST("/projects/:id/tasks", taskHandler.Create)
		authorized.GET("/projects/:id/tasks/:task_id", taskHandler.GetByID)
		authorized.PUT("/projects/:id/tasks/:task_id", taskHandler.Update)
		authorized.DELETE("/projects/:id/tasks/:task_id", taskHandler.Delete)
		authorized.POST("/projects/:id/tasks/:task_id/move", taskHandler.Move)
		authorized.POST("/projects/:id/tasks/:task_id/assign", taskHandler.Assign)
		authorized.DELETE("/projects/:id/tasks/:task_id/assign", taskHandler.Unassign)

		// Comment routes
		authorized.GET("/projects/:id/tasks/:task_id/comments", commentHandler.GetByTask)
		authorized.POST("/projects/:id/tasks/:task_id/comments", commentHandler.Create)
		authorized.DELETE("/projects/:id/tasks/:task_id/comments/:comment_id", commentHandler.Delete)

		// Tag routes
		authorized.GET("/projects/:id/tags", tagHandler.GetAll)
		authorized.POST("/projects/:id/tags", tagHandler.Create)
		authorized.DELETE("/projects/:id/tags/:tag_id", tagHandler.Delete)
		authorized.POST("/projects/:id/tasks/:task_id/tags/:tag_id", tagHandler.AddToTask)
		authorized.DELETE("/projects/:id/tasks/:task_id/tags/:tag_id", tagHandler.RemoveFromTask)

		// Stats routes
		authorized.GET("/projects/:id/stats", statsHandler.Stats)
		authorized.GET("/projects/:id/burndown", statsHandler.Burndown)

		// Real-time subscription
		authorized.GET("/projects/:id/events", eventsHandler.Subscribe)
	}

	return &Server{
		Engine:   r,
		DB:       db,
		Config:   cfg,
		EventBus: eventBus,
	}, nil
}

// runMigrations применяет встроенные SQL-миграции поверх открытого
// соединения
func runMigrations(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	// Drop websocket subscribers so their write loops exit
	s.EventBus.UnregisterAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	log.Println("✅ Server exited properly")
}
