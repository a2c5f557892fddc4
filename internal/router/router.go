package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/tracker/api/handler"
)

type Handlers struct {
	Task    *apiHandler.TaskHandler
	Epic    *apiHandler.EpicHandler
	Subtask *apiHandler.SubtaskHandler
	History *apiHandler.HistoryHandler
	Health  *apiHandler.HealthHandler
}

// Middleware wraps every route, outermost first.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

func New(handlers Handlers, middlewares ...Middleware) *router.Router {
	r := router.New()
	wrap := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			h = middlewares[i](h)
		}
		return h
	}

	if handlers.Health != nil {
		r.GET("/health", wrap(handlers.Health.Check))
	}

	v1 := r.Group("/api/v1")

	v1.GET("/tasks", wrap(handlers.Task.GetTasks))
	v1.POST("/tasks", wrap(handlers.Task.CreateTask))
	v1.DELETE("/tasks", wrap(handlers.Task.DeleteTasks))
	v1.GET("/tasks/{id}", wrap(handlers.Task.GetTask))
	v1.PUT("/tasks/{id}", wrap(handlers.Task.UpdateTask))
	v1.DELETE("/tasks/{id}", wrap(handlers.Task.DeleteTask))

	v1.GET("/epics", wrap(handlers.Epic.GetEpics))
	v1.POST("/epics", wrap(handlers.Epic.CreateEpic))
	v1.DELETE("/epics", wrap(handlers.Epic.DeleteEpics))
	v1.GET("/epics/{id}", wrap(handlers.Epic.GetEpic))
	v1.PUT("/epics/{id}", wrap(handlers.Epic.UpdateEpic))
	v1.DELETE("/epics/{id}", wrap(handlers.Epic.DeleteEpic))
	v1.GET("/epics/{id}/subtasks", wrap(handlers.Epic.GetSubtasks))
	v1.POST("/epics/{id}/subtasks", wrap(handlers.Epic.CreateSubtask))

	v1.GET("/subtasks", wrap(handlers.Subtask.GetSubtasks))
	v1.DELETE("/subtasks", wrap(handlers.Subtask.DeleteSubtasks))
	v1.GET("/subtasks/{id}", wrap(handlers.Subtask.GetSubtask))
	v1.PUT("/subtasks/{id}", wrap(handlers.Subtask.UpdateSubtask))
	v1.DELETE("/subtasks/{id}", wrap(handlers.Subtask.DeleteSubtask))

	v1.GET("/history", wrap(handlers.History.GetHistory))

	return r
}
