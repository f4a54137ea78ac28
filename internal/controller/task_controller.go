package controller

import (
	"errors"
	"smartgrade_backend/internal/model"
	"smartgrade_backend/internal/service"
	"smartgrade_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TaskController struct {
	TaskService *service.TaskService
}

func NewTaskController(taskService *service.TaskService) *TaskController {
	return &TaskController{TaskService: taskService}
}

// swagger:model CreateTaskRequest
type CreateTaskRequest struct {
	Title        string                  `json:"title" binding:"required"`
	Instructions string                  `json:"instructions"`
	Questions    []service.QuestionInput `json:"questions"`
}

// CreateTask godoc
// @Summary 创建作业任务
// @Description 创建任务，至少包含一道小题，初始状态为 DRAFT
// @Tags 任务
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body CreateTaskRequest true "任务内容"
// @Success 201 {object} util.Response{data=model.AssignmentTask}
// @Failure 400 {object} util.Response "缺少小题"
// @Router /api/proctor/tasks [post]
func (c *TaskController) CreateTask(ctx *gin.Context) {
	var req CreateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	task, err := c.TaskService.Create(claims.UserID, req.Title, req.Instructions, req.Questions)
	if err != nil {
		if errors.Is(err, util.ErrNoQuestions) {
			util.BadRequest(ctx, "Add at least one question")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, task)
}

// ListTasks godoc
// @Summary 任务列表（按角色过滤）
// @Description 监考员可见全部状态；学生只可见 ACTIVE 任务
// @Tags 任务
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.AssignmentTask}
// @Router /api/tasks [get]
func (c *TaskController) ListTasks(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var (
		tasks []model.AssignmentTask
		err   error
	)
	if claims.Role == model.Proctor {
		tasks, err = c.TaskService.ListAll()
	} else {
		tasks, err = c.TaskService.ListActive(ctx.Request.Context())
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, tasks)
}

// GetTask godoc
// @Summary 任务详情
// @Tags 任务
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "任务ID"
// @Success 200 {object} util.Response{data=model.AssignmentTask}
// @Failure 404 {object} util.Response
// @Router /api/tasks/{id} [get]
func (c *TaskController) GetTask(ctx *gin.Context) {
	task, err := c.TaskService.Get(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrTaskNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	// 学生只能看 ACTIVE 任务
	claims := util.GetUserFromContext(ctx)
	if claims.Role == model.Student && task.Status != model.TaskActive {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, task)
}

// swagger:model SetTaskStatusRequest
type SetTaskStatusRequest struct {
	Status model.TaskStatus `json:"status" binding:"required,oneof=DRAFT ACTIVE ARCHIVED"`
}

// SetStatus godoc
// @Summary 切换任务状态
// @Description DRAFT/ACTIVE/ARCHIVED 之间无条件切换，仅限任务所有者
// @Tags 任务
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "任务ID"
// @Param   body body SetTaskStatusRequest true "目标状态"
// @Success 200 {object} util.Response{data=model.AssignmentTask}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/proctor/tasks/{id}/status [patch]
func (c *TaskController) SetStatus(ctx *gin.Context) {
	var req SetTaskStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	task, err := c.TaskService.SetStatus(ctx.Param("id"), claims.UserID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrTaskNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, task)
}

// DeleteTask godoc
// @Summary 删除任务
// @Description 软删除。已有提交不级联删除，凭冗余标题继续可读
// @Tags 任务
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "任务ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/proctor/tasks/{id} [delete]
func (c *TaskController) DeleteTask(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.TaskService.Delete(ctx.Param("id"), claims.UserID); err != nil {
		switch {
		case errors.Is(err, util.ErrTaskNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, nil)
}
