package api

import (
	"log"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	config "github.com/maheshrc27/editorial-api/configs"
	"github.com/maheshrc27/editorial-api/internal/api/handlers"
	"github.com/maheshrc27/editorial-api/internal/api/middleware"
	"github.com/maheshrc27/editorial-api/internal/service"
)

type Services struct {
	Auth            service.AuthService
	Users           service.UserService
	Clients         service.ClientService
	Posts           service.PostService
	Queue           service.QueueService
	ContentRequests service.ContentRequestService
	Comments        service.CommentService
}

func NewApp(cfg config.Config, s Services) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	origins := cfg.FrontendURL
	if origins == "" {
		origins = "http://localhost:5173"
	}

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	authMiddleware := middleware.NewAuthMiddleware(cfg, s.Auth)
	auth := handlers.NewAuthHandler(cfg, s.Auth)
	app.Get("/logout", auth.Logout)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	api.Post("/auth/token", auth.IssueToken)

	user := handlers.NewUserHandler(s.Users)
	api.Get("/user/info", user.GetUserInfo)
	api.Post("/users", user.CreateUser)
	api.Delete("/users/:id", user.RemoveUser)

	clients := handlers.NewClientHandler(s.Clients, s.Queue)
	api.Post("/clients", clients.CreateClient)
	api.Get("/clients", clients.ListClients)
	api.Get("/clients/:id", clients.GetClient)
	api.Delete("/clients/:id", clients.RemoveClient)
	api.Put("/clients/:id/cadence", clients.UpdateCadence)
	api.Get("/clients/:id/calendar", clients.Calendar)
	api.Post("/clients/:id/queue/recalculate", clients.RecalculateQueue)
	api.Get("/clients/:id/pillars/suggestion", clients.SuggestPillar)

	post := handlers.NewPostHandler(s.Posts, s.Comments)
	api.Post("/posts", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/:id", post.GetPost)
	api.Post("/posts/:id/transition", post.TransitionPost)
	api.Patch("/posts/:id/content", post.EditContent)
	api.Delete("/posts/:id", post.RemovePost)
	api.Get("/posts/:id/history", post.PostHistory)
	api.Post("/posts/:id/comments", post.CreateComment)
	api.Get("/posts/:id/comments", post.ListComments)

	requests := handlers.NewContentRequestHandler(s.ContentRequests)
	api.Post("/content-requests", requests.CreateRequest)
	api.Get("/content-requests", requests.ListRequests)
	api.Post("/content-requests/:id/convert", requests.ConvertRequest)
	api.Post("/content-requests/:id/reject", requests.RejectRequest)

	policy := handlers.NewPolicyHandler()
	api.Get("/policy/rules", policy.GetRules)

	return app
}
