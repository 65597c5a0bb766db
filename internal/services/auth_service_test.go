package services

import (
	"context"
	"testing"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/repositories/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func newTestAuthService(t *testing.T, expire time.Duration) (AuthService, *gorm.DB) {
	db := setupTestDB(t)
	return NewAuthService(postgres.NewUserRepository(db), testSecret, expire), db
}

func TestSignupHashesPasswordAndDefaultsRole(t *testing.T) {
	svc, db := newTestAuthService(t, time.Hour)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, models.SignupRequest{
		Name:     "alice",
		Email:    "alice@example.com",
		Password: "s3cret",
		Role:     "superadmin", // unknown roles fall back to customer
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, resp.Role)

	var stored models.User
	require.NoError(t, db.First(&stored, resp.ID).Error)
	assert.NotEqual(t, "s3cret", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("s3cret")))
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t, time.Hour)
	ctx := context.Background()

	req := models.SignupRequest{Name: "alice", Email: "alice@example.com", Password: "s3cret", Role: models.RoleMerchant}
	_, err := svc.Signup(ctx, req)
	require.NoError(t, err)

	_, err = svc.Signup(ctx, req)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, _ := newTestAuthService(t, time.Hour)
	ctx := context.Background()

	signedUp, err := svc.Signup(ctx, models.SignupRequest{
		Name: "bob", Email: "bob@example.com", Password: "hunter2", Role: models.RoleMerchant,
	})
	require.NoError(t, err)

	login, err := svc.Login(ctx, models.LoginRequest{Email: "bob@example.com", Password: "hunter2"})
	require.NoError(t, err)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, signedUp.ID, login.User.ID)

	user, err := svc.VerifyToken(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, signedUp.ID, user.ID)
	assert.Equal(t, models.RoleMerchant, user.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Signup(ctx, models.SignupRequest{
		Name: "bob", Email: "bob@example.com", Password: "hunter2",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "bob@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "hunter2"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyTokenRejectsGarbageAndExpiry(t *testing.T) {
	svc, _ := newTestAuthService(t, -time.Minute) // tokens are born expired
	ctx := context.Background()

	_, err := svc.Signup(ctx, models.SignupRequest{
		Name: "bob", Email: "bob@example.com", Password: "hunter2",
	})
	require.NoError(t, err)

	login, err := svc.Login(ctx, models.LoginRequest{Email: "bob@example.com", Password: "hunter2"})
	require.NoError(t, err)

	_, err = svc.VerifyToken(ctx, login.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	for _, token := range []string{"", "not.a.token", "eyJhbGciOiJub25lIn0.e30."} {
		_, err := svc.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	db := setupTestDB(t)
	users := postgres.NewUserRepository(db)
	issuer := NewAuthService(users, "secret-a", time.Hour)
	verifier := NewAuthService(users, "secret-b", time.Hour)
	ctx := context.Background()

	_, err := issuer.Signup(ctx, models.SignupRequest{
		Name: "bob", Email: "bob@example.com", Password: "hunter2",
	})
	require.NoError(t, err)

	login, err := issuer.Login(ctx, models.LoginRequest{Email: "bob@example.com", Password: "hunter2"})
	require.NoError(t, err)

	_, err = verifier.VerifyToken(ctx, login.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
