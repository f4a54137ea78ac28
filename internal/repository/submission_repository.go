package repository

import (
	"smartgrade_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) FindByID(id string) (*model.Submission, error) {
	var sub model.Submission
	err := r.DB.First(&sub, "id = ?", id).Error
	return &sub, err
}

func (r *SubmissionRepository) FindDraft(studentID uint, taskID string) (*model.Submission, error) {
	var sub model.Submission
	err := r.DB.Where("student_id = ? AND task_id = ? AND status = ?",
		studentID, taskID, model.SubmissionDraft).First(&sub).Error
	return &sub, err
}

// ReplaceDraft 草稿 upsert：同一 (student, task) 至多保留一份草稿，
// 新草稿在同一事务内顶替旧草稿
func (r *SubmissionRepository) ReplaceDraft(sub *model.Submission) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("student_id = ? AND task_id = ? AND status = ?",
				sub.StudentID, sub.TaskID, model.SubmissionDraft).
			Delete(&model.Submission{}).Error; err != nil {
			return err
		}
		return tx.Create(sub).Error
	})
}

// FinalizeGraded 写入判卷结果：删除该 (student, task) 的草稿并插入 GRADED 行。
// 调用方保证判卷已成功；判卷失败时不会走到这里，账本保持原样
func (r *SubmissionRepository) FinalizeGraded(sub *model.Submission) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("student_id = ? AND task_id = ? AND status = ?",
				sub.StudentID, sub.TaskID, model.SubmissionDraft).
			Delete(&model.Submission{}).Error; err != nil {
			return err
		}
		sub.Status = model.SubmissionGraded
		return tx.Create(sub).Error
	})
}

func (r *SubmissionRepository) ListByStudent(studentID uint) ([]model.Submission, error) {
	var subs []model.Submission
	err := r.DB.Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&subs).Error
	return subs, err
}

// ListGraded 监考员聚合视图，草稿属于学生的私有预提交产物，不纳入
func (r *SubmissionRepository) ListGraded() ([]model.Submission, error) {
	var subs []model.Submission
	err := r.DB.Where("status = ?", model.SubmissionGraded).
		Order("submitted_at DESC").
		Find(&subs).Error
	return subs, err
}

func (r *SubmissionRepository) ListGradedByStudent(studentID uint) ([]model.Submission, error) {
	var subs []model.Submission
	err := r.DB.Where("student_id = ? AND status = ?", studentID, model.SubmissionGraded).
		Find(&subs).Error
	return subs, err
}
