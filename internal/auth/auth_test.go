package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/grupoalpa/eventos-ops/internal/models"
)

func TestNewService(t *testing.T) {
	service, err := NewService()
	assert.NoError(t, err)
	assert.NotNil(t, service)
	assert.NotEmpty(t, service.jwtSecret)
	assert.Equal(t, 12*time.Hour, service.tokenExp)
}

func TestService_HashPassword(t *testing.T) {
	service, _ := NewService()

	password := "testpassword123"
	hash, err := service.HashPassword(password)

	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)
}

func TestService_CheckPassword(t *testing.T) {
	service, _ := NewService()

	password := "testpassword123"
	hash, _ := service.HashPassword(password)

	assert.True(t, service.CheckPassword(password, hash))
	assert.False(t, service.CheckPassword("wrongpassword", hash))
}

func TestService_GenerateToken(t *testing.T) {
	service, _ := NewService()

	user := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "coordinadora",
		Role:     models.RoleCoordinator,
	}

	token, err := service.GenerateToken(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestService_ValidateToken(t *testing.T) {
	service, _ := NewService()

	user := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "coordinadora",
		Role:     models.RoleCoordinator,
	}

	token, _ := service.GenerateToken(user)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, user.Role, claims.Role)

	_, err = service.ValidateToken("invalid-token")
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ValidateToken_BearerPrefix(t *testing.T) {
	service, _ := NewService()

	user := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "admin",
		Role:     models.RoleAdmin,
	}

	token, _ := service.GenerateToken(user)

	claims, err := service.ValidateToken("Bearer " + token)
	assert.NoError(t, err)
	assert.Equal(t, user.Username, claims.Username)
}

func TestService_ValidateToken_Expired(t *testing.T) {
	service, _ := NewService()
	service.tokenExp = -time.Hour

	user := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "admin",
		Role:     models.RoleAdmin,
	}

	token, _ := service.GenerateToken(user)

	_, err := service.ValidateToken(token)
	assert.Equal(t, ErrExpiredToken, err)
}
