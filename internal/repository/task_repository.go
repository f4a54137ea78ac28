package repository

import (
	"smartgrade_backend/internal/model"

	"gorm.io/gorm"
)

type TaskRepository struct {
	DB *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

func (r *TaskRepository) Create(task *model.AssignmentTask) error {
	return r.DB.Create(task).Error
}

func (r *TaskRepository) FindByID(id string) (*model.AssignmentTask, error) {
	var task model.AssignmentTask
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.position ASC")
	}).First(&task, "id = ?", id).Error
	return &task, err
}

func (r *TaskRepository) ListAll() ([]model.AssignmentTask, error) {
	var tasks []model.AssignmentTask
	err := r.DB.Preload("Questions").Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) ListByProctor(proctorID uint) ([]model.AssignmentTask, error) {
	var tasks []model.AssignmentTask
	err := r.DB.Preload("Questions").
		Where("proctor_id = ?", proctorID).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) ListByStatus(status model.TaskStatus) ([]model.AssignmentTask, error) {
	var tasks []model.AssignmentTask
	err := r.DB.Preload("Questions").
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) UpdateStatus(id string, status model.TaskStatus) error {
	return r.DB.Model(&model.AssignmentTask{}).
		Where("id = ?", id).
		Update("status", status).
		Error
}

// Delete 软删除（墓碑）。提交记录不级联删除，凭冗余标题继续可读
func (r *TaskRepository) Delete(id string) error {
	return r.DB.Delete(&model.AssignmentTask{}, "id = ?", id).Error
}
