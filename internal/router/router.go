package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskflow/api/handler"
)

type Handlers struct {
	Landing  *apiHandler.LandingHandler
	TaskPage *apiHandler.TaskPageHandler
	Auth     *apiHandler.AuthHandler
	Profile  *apiHandler.ProfileHandler
	Task     *apiHandler.TaskHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Pages
	r.GET("/", handlers.Landing.Page)
	r.POST("/auth", handlers.Landing.Submit)
	r.GET("/tasks", handlers.TaskPage.Page)
	r.GET("/tasks/stream", handlers.TaskPage.Stream)
	r.POST("/tasks/views/{view}/actions/{action}", handlers.TaskPage.Action)
	r.POST("/logout", handlers.TaskPage.Logout)

	// Auth routes
	r.POST("/api/v1/auth/signup", handlers.Auth.SignUp)
	r.POST("/api/v1/auth/signin", handlers.Auth.SignIn)

	// Protected routes
	r.GET("/api/v1/profile", authMiddleware(handlers.Profile.GetProfile))

	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.PATCH("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	return r
}
