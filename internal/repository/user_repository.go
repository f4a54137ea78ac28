package repository

import (
	"smartgrade_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

// Approve 审核通过，幂等：重复调用不改变结果
func (r *UserRepository) Approve(id uint) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", id).
		Update("is_approved", true).
		Error
}

func (r *UserRepository) ListPending() ([]model.User, error) {
	var users []model.User
	err := r.DB.Where("is_approved = ?", false).Order("registration_date ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) ListApprovedStudents() ([]model.User, error) {
	var users []model.User
	err := r.DB.Where("role = ? AND is_approved = ?", model.Student, true).Find(&users).Error
	return users, err
}

// CountProctors 用于主引导码校验：仅在尚无监考员时放行
func (r *UserRepository) CountProctors() (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("role = ?", model.Proctor).Count(&count).Error
	return count, err
}
