package util

import "errors"

// 校验类错误（400）
var (
	ErrNoQuestions   = errors.New("任务至少需要一道小题")
	ErrNotPDF        = errors.New("仅接受 PDF 文档")
	ErrTaskNotActive = errors.New("task is not open for submission")
)

// 认证/授权类错误（401/403/409）
var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotApproved = errors.New("account pending verification")
	ErrInvalidInviteCode  = errors.New("invalid or already used invite code")
	ErrPermissionDenied   = errors.New("permission denied")
)

// 资源类错误（404）
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrInviteNotFound     = errors.New("invite code not found")
)

// 外部服务类错误（502），提示用户稍后重试
var (
	ErrGradingUnavailable = errors.New("AI grading service is temporarily unavailable")
	ErrStorageUnavailable = errors.New("document storage is temporarily unavailable")
)
