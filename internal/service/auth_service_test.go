package service

import (
	"regexp"
	"smartgrade_backend/internal/config"
	"smartgrade_backend/internal/model"
	"smartgrade_backend/internal/repository"
	"smartgrade_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	auth    *AuthService
	invites *InviteService
	users   *repository.UserRepository
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db := newTestDB(t)

	cfg := &config.Config{}
	cfg.JWT = config.JWTConfig{Secret: "test-secret-for-auth-tests", ExpireTime: time.Hour}
	cfg.Invite = config.InviteConfig{MasterCode: "ADMIN2025"}

	userRepo := repository.NewUserRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	return &authFixture{
		auth:    NewAuthService(userRepo, inviteRepo, cfg),
		invites: NewInviteService(inviteRepo),
		users:   userRepo,
	}
}

func studentUser(email string) *model.User {
	return &model.User{Name: "Alice Johnson", Email: email, Password: "s3cret!", Role: model.Student}
}

func proctorUser(email string) *model.User {
	return &model.User{Name: "Dr. Grey", Email: email, Password: "pr0ctor!", Role: model.Proctor}
}

func TestRegisterStudent(t *testing.T) {
	f := newAuthFixture(t)

	require.NoError(t, f.auth.Register(studentUser("alice@example.com"), ""))

	saved, err := f.users.FindByEmail("alice@example.com")
	require.NoError(t, err)
	assert.False(t, saved.IsApproved)
	assert.NotEqual(t, "s3cret!", saved.Password)
	assert.False(t, saved.RegistrationDate.IsZero())

	token, err := f.auth.Login("alice@example.com", "s3cret!")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = f.auth.Login("alice@example.com", "wrong")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, err = f.auth.Login("nobody@example.com", "s3cret!")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)

	require.NoError(t, f.auth.Register(studentUser("alice@example.com"), ""))
	err := f.auth.Register(studentUser("alice@example.com"), "")
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
}

// 主引导码只为首个监考员开门，之后必须走一次性邀请码
func TestMasterCodeBootstrapOnly(t *testing.T) {
	f := newAuthFixture(t)

	err := f.auth.Register(proctorUser("first@example.com"), "")
	assert.ErrorIs(t, err, util.ErrInvalidInviteCode)

	require.NoError(t, f.auth.Register(proctorUser("first@example.com"), "ADMIN2025"))

	err = f.auth.Register(proctorUser("second@example.com"), "ADMIN2025")
	assert.ErrorIs(t, err, util.ErrInvalidInviteCode)
}

func TestInviteCodeSingleUse(t *testing.T) {
	f := newAuthFixture(t)

	invite, err := f.invites.Generate("admin@example.com")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{8}$`), invite.Code)

	require.NoError(t, f.auth.Register(proctorUser("grey@example.com"), invite.Code))

	listed, err := f.invites.List()
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].IsUsed)
	assert.Equal(t, "grey@example.com", listed[0].UsedBy)

	// 已消费的码不能再开第二个账号
	err = f.auth.Register(proctorUser("white@example.com"), invite.Code)
	assert.ErrorIs(t, err, util.ErrInvalidInviteCode)
}

func TestRevokeInvite(t *testing.T) {
	f := newAuthFixture(t)

	fresh, err := f.invites.Generate("admin@example.com")
	require.NoError(t, err)
	require.NoError(t, f.invites.Revoke(fresh.Code))

	err = f.auth.Register(proctorUser("grey@example.com"), fresh.Code)
	assert.ErrorIs(t, err, util.ErrInvalidInviteCode)

	used, err := f.invites.Generate("admin@example.com")
	require.NoError(t, err)
	require.NoError(t, f.auth.Register(proctorUser("white@example.com"), used.Code))

	// 已使用的码不可撤销，留作审计记录
	err = f.invites.Revoke(used.Code)
	assert.ErrorIs(t, err, util.ErrInviteNotFound)
}

func TestApproveIsIdempotent(t *testing.T) {
	f := newAuthFixture(t)
	userSvc := NewUserService(f.users)

	require.NoError(t, f.auth.Register(studentUser("alice@example.com"), ""))
	saved, err := f.users.FindByEmail("alice@example.com")
	require.NoError(t, err)

	pending, err := userSvc.ListPending()
	require.NoError(t, err)
	require.Len(t, pending, 1)

	for i := 0; i < 2; i++ {
		approved, err := userSvc.Approve(saved.ID)
		require.NoError(t, err)
		assert.True(t, approved.IsApproved)
	}

	pending, err = userSvc.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}
