package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"smartgrade_backend/internal/model"
	"smartgrade_backend/internal/repository"
	"smartgrade_backend/internal/util"
	"smartgrade_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SubmissionService 提交账本：草稿暂存与最终判卷提交。
// 判卷或上传失败不落任何账本记录，由用户整体重试
type SubmissionService struct {
	SubmissionRepo *repository.SubmissionRepository
	TaskRepo       *repository.TaskRepository
	Storage        *StorageService
	Grading        *GradingService
}

func NewSubmissionService(
	submissionRepo *repository.SubmissionRepository,
	taskRepo *repository.TaskRepository,
	storage *StorageService,
	grading *GradingService,
) *SubmissionService {
	return &SubmissionService{
		SubmissionRepo: submissionRepo,
		TaskRepo:       taskRepo,
		Storage:        storage,
		Grading:        grading,
	}
}

// UploadedDocument 学生上传的答题文档
type UploadedDocument struct {
	Name        string
	ContentType string
	Data        []byte
}

func (d *UploadedDocument) validate() error {
	if d.ContentType != "application/pdf" && !strings.EqualFold(filepath.Ext(d.Name), ".pdf") {
		return util.ErrNotPDF
	}
	if len(d.Data) == 0 {
		return util.ErrNotPDF
	}
	return nil
}

func (s *SubmissionService) activeTask(taskID string) (*model.AssignmentTask, error) {
	task, err := s.TaskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTaskNotFound
		}
		return nil, err
	}
	if task.Status != model.TaskActive {
		return nil, util.ErrTaskNotActive
	}
	return task, nil
}

func (s *SubmissionService) uploadDocument(ctx context.Context, doc *UploadedDocument) (key, url string, err error) {
	key = fmt.Sprintf("submissions/%s.pdf", model.GenerateUUID())
	url, err = s.Storage.Upload(ctx, key, bytes.NewReader(doc.Data), int64(len(doc.Data)), "application/pdf")
	if err != nil {
		logger.Log.Error("document upload failed", zap.String("key", key), zap.Error(err))
		return "", "", util.ErrStorageUnavailable
	}
	return key, url, nil
}

// SaveDraft 保存草稿。同一 (student, task) 的旧草稿被新草稿顶替
func (s *SubmissionService) SaveDraft(ctx context.Context, student *util.Claims, taskID string, doc *UploadedDocument) (*model.Submission, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}

	task, err := s.activeTask(taskID)
	if err != nil {
		return nil, err
	}

	key, url, err := s.uploadDocument(ctx, doc)
	if err != nil {
		return nil, err
	}

	sub := &model.Submission{
		TaskID:       task.ID,
		TaskTitle:    task.Title,
		StudentID:    student.UserID,
		StudentName:  student.Name,
		Feedback:     "Draft saved. Not yet graded.",
		Score:        0,
		SubmittedAt:  time.Now(),
		Status:       model.SubmissionDraft,
		DocumentURL:  url,
		DocumentKey:  key,
		DocumentName: doc.Name,
	}

	if err := s.SubmissionRepo.ReplaceDraft(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// SubmitFinal 最终提交：上传文档 → 同步判卷 → 事务写入 GRADED 行并清理草稿。
// 上传或判卷失败直接返回错误，账本保持原样（无排队重试）
func (s *SubmissionService) SubmitFinal(ctx context.Context, student *util.Claims, taskID string, doc *UploadedDocument) (*model.Submission, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}

	task, err := s.activeTask(taskID)
	if err != nil {
		return nil, err
	}

	key, url, err := s.uploadDocument(ctx, doc)
	if err != nil {
		return nil, err
	}

	result, err := s.Grading.Grade(ctx, task.Title, task.Questions, doc.Data)
	if err != nil {
		logger.Log.Error("grading call failed",
			zap.String("taskId", task.ID),
			zap.Uint("studentId", student.UserID),
			zap.Error(err))
		return nil, util.ErrGradingUnavailable
	}

	sub := &model.Submission{
		TaskID:       task.ID,
		TaskTitle:    task.Title,
		StudentID:    student.UserID,
		StudentName:  student.Name,
		Feedback:     result.Feedback,
		Score:        result.Score,
		SubmittedAt:  time.Now(),
		DocumentURL:  url,
		DocumentKey:  key,
		DocumentName: doc.Name,
	}

	if err := s.SubmissionRepo.FinalizeGraded(sub); err != nil {
		return nil, err
	}

	logger.Log.Info("submission graded",
		zap.String("taskId", task.ID),
		zap.Uint("studentId", student.UserID),
		zap.Float64("score", sub.Score))
	return sub, nil
}

func (s *SubmissionService) ListForStudent(studentID uint) ([]model.Submission, error) {
	return s.SubmissionRepo.ListByStudent(studentID)
}

// ListGraded 监考员聚合视图，不含草稿
func (s *SubmissionService) ListGraded() ([]model.Submission, error) {
	return s.SubmissionRepo.ListGraded()
}
