package service

import (
	"errors"
	"smartgrade_backend/internal/config"
	"smartgrade_backend/internal/model"
	"smartgrade_backend/internal/repository"
	"smartgrade_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo   *repository.UserRepository
	InviteRepo *repository.InviteRepository
	Cfg        *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, inviteRepo *repository.InviteRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo:   userRepo,
		InviteRepo: inviteRepo,
		Cfg:        cfg,
	}
}

// Register 注册新用户。监考员注册需消费一次性邀请码；
// 主引导码仅在系统尚无监考员时有效。所有新账号默认未审核
func (s *AuthService) Register(user *model.User, inviteCode string) error {
	_, err := s.UserRepo.FindByEmail(user.Email)
	if err == nil {
		return util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if user.Role == model.Proctor {
		if err := s.consumeProctorCode(inviteCode, user.Email); err != nil {
			return err
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)
	user.IsApproved = false
	user.RegistrationDate = time.Now()
	return s.UserRepo.Create(user)
}

func (s *AuthService) consumeProctorCode(code, email string) error {
	if code == "" {
		return util.ErrInvalidInviteCode
	}

	if code == s.Cfg.Invite.MasterCode {
		count, err := s.UserRepo.CountProctors()
		if err != nil {
			return err
		}
		// 主引导码只用于首个监考员的引导注册
		if count == 0 {
			return nil
		}
		return util.ErrInvalidInviteCode
	}

	return s.InviteRepo.Consume(code, email)
}

func (s *AuthService) Login(email, password string) (string, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return "", util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", util.ErrInvalidCredentials
	}

	return util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

func (s *AuthService) GetCurrentUser(c *gin.Context) *model.User {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}

	user, _ := s.UserRepo.FindByID(claims.UserID)
	return user
}
