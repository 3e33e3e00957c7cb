package server

import (
	"github.com/Rohitm121508/Thread-App/internal/apperr"
	"github.com/Rohitm121508/Thread-App/internal/auth"
	"github.com/Rohitm121508/Thread-App/internal/config"
	"github.com/Rohitm121508/Thread-App/internal/media"
	"github.com/Rohitm121508/Thread-App/internal/posts"
	"github.com/Rohitm121508/Thread-App/internal/propagate"
	"github.com/Rohitm121508/Thread-App/internal/users"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App   *fiber.App
	Cfg   config.Config
	DB    *pgxpool.Pool
	Redis *redis.Client
	Media media.Store
	Queue *propagate.Queue
}

func NewServer(cfg config.Config, pool *pgxpool.Pool, redisClient *redis.Client, mediaStore media.Store) *Server {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler})
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:   app,
		Cfg:   cfg,
		DB:    pool,
		Redis: redisClient,
		Media: mediaStore,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	session := auth.NewService(s.Cfg.JWTSecret)
	authMiddleware := auth.Middleware(s.Cfg.JWTSecret)

	postsSvc := posts.NewService(s.DB, s.Media)
	s.Queue = propagate.NewQueue(s.Redis, postsSvc)
	usersSvc := users.NewService(s.DB, s.Media, s.Queue)

	api := s.App.Group("/api")
	users.RegisterRoutes(api.Group("/users"), usersSvc, session, authMiddleware)
	posts.RegisterRoutes(api.Group("/posts"), postsSvc, authMiddleware)
}
