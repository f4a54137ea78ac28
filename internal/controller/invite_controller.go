package controller

import (
	"errors"
	"smartgrade_backend/internal/service"
	"smartgrade_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type InviteController struct {
	InviteService *service.InviteService
}

func NewInviteController(inviteService *service.InviteService) *InviteController {
	return &InviteController{InviteService: inviteService}
}

// Generate godoc
// @Summary 签发监考员邀请码
// @Description 生成8位大写字母数字一次性邀请码
// @Tags 邀请码
// @Produce  json
// @Security ApiKeyAuth
// @Success 201 {object} util.Response{data=model.InviteToken}
// @Router /api/proctor/invites [post]
func (c *InviteController) Generate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	invite, err := c.InviteService.Generate(claims.Email)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, invite)
}

// List godoc
// @Summary 邀请码列表
// @Tags 邀请码
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.InviteToken}
// @Router /api/proctor/invites [get]
func (c *InviteController) List(ctx *gin.Context) {
	invites, err := c.InviteService.List()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, invites)
}

// Revoke godoc
// @Summary 撤销邀请码
// @Description 只能撤销未使用的邀请码
// @Tags 邀请码
// @Produce  json
// @Security ApiKeyAuth
// @Param   code path string true "邀请码"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/proctor/invites/{code} [delete]
func (c *InviteController) Revoke(ctx *gin.Context) {
	if err := c.InviteService.Revoke(ctx.Param("code")); err != nil {
		if errors.Is(err, util.ErrInviteNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, nil)
}
