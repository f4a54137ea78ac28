package controller

import (
	"errors"
	"io"
	"mime/multipart"
	"smartgrade_backend/internal/service"
	"smartgrade_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	SubmissionService *service.SubmissionService
}

func NewSubmissionController(submissionService *service.SubmissionService) *SubmissionController {
	return &SubmissionController{SubmissionService: submissionService}
}

func readUpload(header *multipart.FileHeader) (*service.UploadedDocument, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &service.UploadedDocument{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (c *SubmissionController) handleSubmitError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrNotPDF):
		util.BadRequest(ctx, "Validation Error: Please upload a standard PDF file.")
	case errors.Is(err, util.ErrTaskNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrTaskNotActive):
		util.BadRequest(ctx, "This task is not open for submission.")
	case errors.Is(err, util.ErrStorageUnavailable), errors.Is(err, util.ErrGradingUnavailable):
		util.BadGateway(ctx, err.Error()+". Please try again later.")
	default:
		util.LogInternalError(ctx, err)
	}
}

// SaveDraft godoc
// @Summary 保存提交草稿
// @Description 上传PDF存为草稿。同一任务的旧草稿被顶替，每个 (学生, 任务) 至多一份草稿
// @Tags 提交
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   taskId formData string true "任务ID"
// @Param   file formData file true "PDF答题文档"
// @Success 201 {object} util.Response{data=model.Submission}
// @Failure 400 {object} util.Response "非PDF或任务未开放"
// @Failure 502 {object} util.Response "存储服务故障，可重试"
// @Router /api/submissions/draft [post]
func (c *SubmissionController) SaveDraft(ctx *gin.Context) {
	taskID := ctx.PostForm("taskId")
	if taskID == "" {
		util.BadRequest(ctx, "taskId is required")
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	doc, err := readUpload(header)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	claims := util.GetUserFromContext(ctx)
	sub, err := c.SubmissionService.SaveDraft(ctx.Request.Context(), claims, taskID, doc)
	if err != nil {
		c.handleSubmitError(ctx, err)
		return
	}

	util.Created(ctx, sub)
}

// Submit godoc
// @Summary 最终提交并判卷
// @Description 上传PDF，同步调用AI判卷，成功后写入 GRADED 记录并清理草稿；
// @Description 判卷或上传失败不产生任何记录，由用户重试整个提交动作
// @Tags 提交
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   taskId formData string true "任务ID"
// @Param   file formData file true "PDF答题文档"
// @Success 201 {object} util.Response{data=model.Submission}
// @Failure 400 {object} util.Response "非PDF或任务未开放"
// @Failure 502 {object} util.Response "AI判卷或存储服务故障，可重试"
// @Router /api/submissions [post]
func (c *SubmissionController) Submit(ctx *gin.Context) {
	taskID := ctx.PostForm("taskId")
	if taskID == "" {
		util.BadRequest(ctx, "taskId is required")
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	doc, err := readUpload(header)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	claims := util.GetUserFromContext(ctx)
	sub, err := c.SubmissionService.SubmitFinal(ctx.Request.Context(), claims, taskID, doc)
	if err != nil {
		c.handleSubmitError(ctx, err)
		return
	}

	util.Created(ctx, sub)
}

// ListMine godoc
// @Summary 我的提交记录
// @Description 当前学生的全部提交（含草稿），按提交时间倒序
// @Tags 提交
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Submission}
// @Router /api/submissions/mine [get]
func (c *SubmissionController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	subs, err := c.SubmissionService.ListForStudent(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, subs)
}

// ListGraded godoc
// @Summary 全部已判卷提交（监考端）
// @Description 监考员聚合视图，草稿是学生私有的预提交产物，不在列
// @Tags 提交
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Submission}
// @Router /api/proctor/submissions [get]
func (c *SubmissionController) ListGraded(ctx *gin.Context) {
	subs, err := c.SubmissionService.ListGraded()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, subs)
}
