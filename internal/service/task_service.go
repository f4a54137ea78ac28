package service

import (
	"context"
	"encoding/json"
	"errors"
	"smartgrade_backend/internal/model"
	"smartgrade_backend/internal/repository"
	"smartgrade_backend/internal/util"
	"smartgrade_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const activeTasksCacheKey = "smartgrade:tasks:active"
const activeTasksCacheTTL = time.Minute

// TaskService 任务登记簿：创建、状态流转、按角色过滤可见性
type TaskService struct {
	TaskRepo *repository.TaskRepository
	Redis    *redis.Client
}

func NewTaskService(taskRepo *repository.TaskRepository, rdb *redis.Client) *TaskService {
	return &TaskService{TaskRepo: taskRepo, Redis: rdb}
}

type QuestionInput struct {
	Text  string `json:"text" binding:"required"`
	Marks int    `json:"marks" binding:"required,min=1"`
}

// Create 建任务。空题目列表是校验错误，不落库
func (s *TaskService) Create(proctorID uint, title, instructions string, questions []QuestionInput) (*model.AssignmentTask, error) {
	if len(questions) == 0 {
		return nil, util.ErrNoQuestions
	}

	task := &model.AssignmentTask{
		ProctorID:    proctorID,
		Title:        title,
		Instructions: instructions,
		Status:       model.TaskDraft,
	}
	for i, q := range questions {
		task.Questions = append(task.Questions, model.Question{
			Text:     q.Text,
			Marks:    q.Marks,
			Position: i,
		})
	}

	if err := s.TaskRepo.Create(task); err != nil {
		return nil, err
	}
	s.invalidateCache()
	return task, nil
}

// SetStatus 无条件状态流转：DRAFT/ACTIVE/ARCHIVED 间任意切换，仅限任务所有者
func (s *TaskService) SetStatus(taskID string, proctorID uint, status model.TaskStatus) (*model.AssignmentTask, error) {
	switch status {
	case model.TaskDraft, model.TaskActive, model.TaskArchived:
	default:
		return nil, util.ErrTaskNotFound
	}

	task, err := s.TaskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTaskNotFound
		}
		return nil, err
	}
	if task.ProctorID != proctorID {
		return nil, util.ErrPermissionDenied
	}

	if err := s.TaskRepo.UpdateStatus(taskID, status); err != nil {
		return nil, err
	}
	task.Status = status
	s.invalidateCache()
	return task, nil
}

// ListForProctor 指定监考员自己创建的任务
func (s *TaskService) ListForProctor(proctorID uint) ([]model.AssignmentTask, error) {
	return s.TaskRepo.ListByProctor(proctorID)
}

// ListAll 监考员可见全部任务（全部状态）
func (s *TaskService) ListAll() ([]model.AssignmentTask, error) {
	return s.TaskRepo.ListAll()
}

// ListActive 学生只可见 ACTIVE 任务，短TTL缓存
func (s *TaskService) ListActive(ctx context.Context) ([]model.AssignmentTask, error) {
	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, activeTasksCacheKey).Result()
		if err == nil {
			var tasks []model.AssignmentTask
			if err := json.Unmarshal([]byte(cached), &tasks); err == nil {
				return tasks, nil
			}
		}
	}

	tasks, err := s.TaskRepo.ListByStatus(model.TaskActive)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(tasks); err == nil {
			if err := s.Redis.Set(ctx, activeTasksCacheKey, data, activeTasksCacheTTL).Err(); err != nil {
				logger.Log.Warn("failed to cache active tasks", zap.Error(err))
			}
		}
	}
	return tasks, nil
}

func (s *TaskService) Get(taskID string) (*model.AssignmentTask, error) {
	task, err := s.TaskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// Delete 软删除，不级联提交记录
func (s *TaskService) Delete(taskID string, proctorID uint) error {
	task, err := s.TaskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrTaskNotFound
		}
		return err
	}
	if task.ProctorID != proctorID {
		return util.ErrPermissionDenied
	}

	if err := s.TaskRepo.Delete(taskID); err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}

func (s *TaskService) invalidateCache() {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), activeTasksCacheKey).Err(); err != nil {
		logger.Log.Warn("failed to invalidate active task cache", zap.Error(err))
	}
}
