package controller

import (
	"fmt"
	"smartgrade_backend/internal/service"
	"smartgrade_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	ReportService *service.ReportService
}

func NewReportController(reportService *service.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// ExportGradebook godoc
// @Summary 导出成绩册CSV
// @Description 表头 Date,Student Name,Assignment,Score，每条已判卷提交一行
// @Tags 报表
// @Produce  text/csv
// @Security ApiKeyAuth
// @Success 200 {string} string "CSV文件"
// @Router /api/proctor/gradebook/export [get]
func (c *ReportController) ExportGradebook(ctx *gin.Context) {
	data, filename, err := c.ReportService.GradebookCSV()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Data(200, "text/csv; charset=utf-8", data)
}

// StudentAverages godoc
// @Summary 学生均分报表
// @Description 已审核学生的平均得分与提交次数
// @Tags 报表
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.StudentAverage}
// @Router /api/proctor/gradebook [get]
func (c *ReportController) StudentAverages(ctx *gin.Context) {
	rows, err := c.ReportService.StudentAverages()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, rows)
}
