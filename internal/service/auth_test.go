package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableguild/tableguild/internal/model"
	"github.com/tableguild/tableguild/middleware/jwt"
)

func newAuthService(f *fixture) IAuthService {
	return NewAuthService(f.memberRepo, jwt.NewTokenManager("test-secret", 1, 24))
}

// TestRegisterAndLogin covers the happy path end to end, including the
// role claim inside the issued token.
func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterRequest{
		UserName: "new_nina",
		Email:    "nina@club.test",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, registered.Role)
	assert.Empty(t, registered.Token)

	session, err := svc.Login(ctx, &LoginRequest{UserName: "new_nina", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, registered.MemberID, session.MemberID)
	require.NotEmpty(t, session.Token)

	claims, err := jwt.NewTokenManager("test-secret", 1, 24).ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.MemberID, claims.MemberID)
	assert.Equal(t, model.RoleMember, claims.Role)
}

// TestRegister_Validation rejects malformed usernames, emails and weak
// passwords.
func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{UserName: "x", Email: "a@b.test", Password: "long-enough"})
	assert.ErrorIs(t, err, ErrInvalidUserName)

	_, err = svc.Register(ctx, &RegisterRequest{UserName: "valid_name", Email: "nope", Password: "long-enough"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Register(ctx, &RegisterRequest{UserName: "valid_name", Email: "a@b.test", Password: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

// TestRegister_Duplicate refuses taken usernames and emails.
func TestRegister_Duplicate(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{UserName: "taken_tom", Email: "tom@club.test", Password: "long-enough"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &RegisterRequest{UserName: "taken_tom", Email: "other@club.test", Password: "long-enough"})
	assert.ErrorIs(t, err, ErrMemberAlreadyExists)

	_, err = svc.Register(ctx, &RegisterRequest{UserName: "other_name", Email: "tom@club.test", Password: "long-enough"})
	assert.ErrorIs(t, err, ErrMemberAlreadyExists)
}

// TestLogin_Failures covers bad passwords, unknown accounts, and the
// deactivated account behaving like an unknown one.
func TestLogin_Failures(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterRequest{
		UserName: "leaving_lee",
		Email:    "lee@club.test",
		Password: "long-enough",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginRequest{UserName: "leaving_lee", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrPasswordIncorrect)

	_, err = svc.Login(ctx, &LoginRequest{UserName: "nobody", Password: "whatever"})
	assert.ErrorIs(t, err, ErrMemberNotFound)

	require.NoError(t, f.memberService.RequestDeletion(ctx, registered.MemberID))
	_, err = svc.Login(ctx, &LoginRequest{UserName: "leaving_lee", Password: "long-enough"})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}
