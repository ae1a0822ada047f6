package workspacehandler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"taskroomgo/internal/services/task"
	"taskroomgo/internal/services/workspace"
)

// Handler exposes the REST support layer: workspace creation plus plain task
// CRUD for tooling and tests. These endpoints write through the same storage
// services as the realtime engine but never broadcast.
type Handler struct {
	workspaces workspace.IWorkspaceService
	tasks      task.ITaskService
	bcryptCost int
}

func New(workspaces workspace.IWorkspaceService, tasks task.ITaskService, bcryptCost int) *Handler {
	return &Handler{workspaces: workspaces, tasks: tasks, bcryptCost: bcryptCost}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/health", h.health)
	r.POST("/api/workspaces", h.createWorkspace)
	r.GET("/api/:workspaceId/tasks", h.listTasks)
	r.POST("/api/:workspaceId/tasks", h.createTask)
	r.PATCH("/api/:workspaceId/tasks/:id", h.updateTask)
	r.DELETE("/api/:workspaceId/tasks/:id", h.deleteTask)
}

// @Summary		Health check
// @Tags			Meta
// @Success		200	{object}	HealthResponse
// @Router			/health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Ok: true})
}

// @Summary		Create a workspace
// @Description	Registers a workspace name with a bcrypt-hashed shared secret.
// @Tags			Workspaces
// @Param			body	body	CreateWorkspaceBody	true	"Workspace payload"
// @Success		201	{object}	WorkspaceResponse
// @Failure		400	{object}	ErrorResponse
// @Failure		409	{object}	ErrorResponse
// @Router			/api/workspaces [post]
func (h *Handler) createWorkspace(ginCtx *gin.Context) {
	var body CreateWorkspaceBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: "name y secret requeridos"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Secret), h.bcryptCost)
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, &ErrorResponse{Error: "Error creando workspace"})
		return
	}

	ws, err := h.workspaces.Create(ginCtx.Request.Context(), body.Name, string(hash))
	if err != nil {
		if errors.Is(err, workspace.ErrWorkspaceExists) {
			ginCtx.JSON(http.StatusConflict, &ErrorResponse{Error: "Workspace ya existe"})
			return
		}
		ginCtx.JSON(http.StatusInternalServerError, &ErrorResponse{Error: "Error creando workspace"})
		return
	}
	ginCtx.JSON(http.StatusCreated, WorkspaceResponse{ID: ws.ID, Name: ws.Name})
}

// @Summary		List tasks
// @Tags			Tasks
// @Param			workspaceId	path		string	true	"Workspace name"	default(demo)
// @Success		200	{array}	task.TaskDTO
// @Failure		500	{object}	ErrorResponse
// @Router			/api/{workspaceId}/tasks [get]
func (h *Handler) listTasks(ginCtx *gin.Context) {
	list, err := h.tasks.List(ginCtx.Request.Context(), ginCtx.Param("workspaceId"))
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, &ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.JSON(http.StatusOK, list)
}

// @Summary		Create a task
// @Tags			Tasks
// @Param			workspaceId	path	string			true	"Workspace name"	default(demo)
// @Param			body		body	task.TaskDraft	true	"Task payload"
// @Success		201	{object}	task.TaskDTO
// @Failure		404	{object}	ErrorResponse
// @Router			/api/{workspaceId}/tasks [post]
func (h *Handler) createTask(ginCtx *gin.Context) {
	var draft task.TaskDraft
	if err := ginCtx.ShouldBindJSON(&draft); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}

	created, err := h.tasks.Create(ginCtx.Request.Context(), ginCtx.Param("workspaceId"), draft)
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, &ErrorResponse{Error: err.Error()})
		return
	}
	if created == nil {
		ginCtx.JSON(http.StatusNotFound, &ErrorResponse{Error: "Workspace no encontrado"})
		return
	}
	ginCtx.JSON(http.StatusCreated, created)
}

// @Summary		Update a task
// @Description	Partial update: only supplied fields change.
// @Tags			Tasks
// @Param			workspaceId	path	string			true	"Workspace name"	default(demo)
// @Param			id			path	string			true	"Task ID"
// @Param			body		body	task.TaskPatch	true	"Fields to change"
// @Success		200	{object}	task.TaskDTO
// @Failure		404	{object}	ErrorResponse
// @Router			/api/{workspaceId}/tasks/{id} [patch]
func (h *Handler) updateTask(ginCtx *gin.Context) {
	var patch task.TaskPatch
	if err := ginCtx.ShouldBindJSON(&patch); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}

	updated, err := h.tasks.Update(ginCtx.Request.Context(),
		ginCtx.Param("workspaceId"), ginCtx.Param("id"), patch)
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, &ErrorResponse{Error: err.Error()})
		return
	}
	if updated == nil {
		ginCtx.JSON(http.StatusNotFound, &ErrorResponse{Error: "Task not found"})
		return
	}
	ginCtx.JSON(http.StatusOK, updated)
}

// @Summary		Delete a task
// @Description	Returns the deleted task's last state.
// @Tags			Tasks
// @Param			workspaceId	path	string	true	"Workspace name"	default(demo)
// @Param			id			path	string	true	"Task ID"
// @Success		200	{object}	task.TaskDTO
// @Failure		404	{object}	ErrorResponse
// @Router			/api/{workspaceId}/tasks/{id} [delete]
func (h *Handler) deleteTask(ginCtx *gin.Context) {
	removed, err := h.tasks.Delete(ginCtx.Request.Context(),
		ginCtx.Param("workspaceId"), ginCtx.Param("id"))
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, &ErrorResponse{Error: err.Error()})
		return
	}
	if removed == nil {
		ginCtx.JSON(http.StatusNotFound, &ErrorResponse{Error: "Task not found"})
		return
	}
	ginCtx.JSON(http.StatusOK, removed)
}
