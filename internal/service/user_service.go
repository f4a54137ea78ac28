package service

import (
	"errors"
	"smartgrade_backend/internal/model"
	"smartgrade_backend/internal/repository"
	"smartgrade_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

// Approve 审核通过账号，幂等
func (s *UserService) Approve(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	if !user.IsApproved {
		if err := s.UserRepo.Approve(userID); err != nil {
			return nil, err
		}
		user.IsApproved = true
	}
	return user, nil
}

// ListPending 待审核账号（学生与监考员都需人工放行）
func (s *UserService) ListPending() ([]model.User, error) {
	return s.UserRepo.ListPending()
}

func (s *UserService) ListApprovedStudents() ([]model.User, error) {
	return s.UserRepo.ListApprovedStudents()
}
