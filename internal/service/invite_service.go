package service

import (
	"crypto/rand"
	"math/big"
	"smartgrade_backend/internal/model"
	"smartgrade_backend/internal/repository"
)

const inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const inviteCodeLength = 8

// InviteService 监考员邀请码的签发与撤销。消费在注册流程里完成
type InviteService struct {
	InviteRepo *repository.InviteRepository
}

func NewInviteService(inviteRepo *repository.InviteRepository) *InviteService {
	return &InviteService{InviteRepo: inviteRepo}
}

func generateInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	max := big.NewInt(int64(len(inviteCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// Generate 签发8位大写字母数字邀请码
func (s *InviteService) Generate(createdBy string) (*model.InviteToken, error) {
	// code 列唯一，撞码时换一个重试
	for attempt := 0; attempt < 3; attempt++ {
		code, err := generateInviteCode()
		if err != nil {
			return nil, err
		}
		invite := &model.InviteToken{
			Code:      code,
			CreatedBy: createdBy,
		}
		if err := s.InviteRepo.Create(invite); err == nil {
			return invite, nil
		} else if attempt == 2 {
			return nil, err
		}
	}
	return nil, nil
}

func (s *InviteService) List() ([]model.InviteToken, error) {
	return s.InviteRepo.ListAll()
}

// Revoke 撤销未使用的邀请码
func (s *InviteService) Revoke(code string) error {
	return s.InviteRepo.DeleteUnused(code)
}
