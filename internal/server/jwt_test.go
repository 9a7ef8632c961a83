package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-analyzer/internal/config"
	"github.com/jonathan/resume-analyzer/internal/server/middleware"
)

const testSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func setupTestJWTService(_ *testing.T, expirationHours int) *JWTService {
	return NewJWTService(&config.JWTConfig{
		Secret:          testSecret,
		ExpirationHours: expirationHours,
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	service := setupTestJWTService(t, 24)

	token, err := service.GenerateToken("recruiter@example.com", middleware.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "recruiter@example.com", claims.Subject)
	assert.Equal(t, middleware.RoleAdmin, claims.GetRole())
	assert.Equal(t, config.DefaultJWTIssuer, claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestJWTService_GenerateToken_RequiresSubject(t *testing.T) {
	_, err := setupTestJWTService(t, 1).GenerateToken("", "")
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_Expired(t *testing.T) {
	service := setupTestJWTService(t, 1)
	service.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := service.GenerateToken("svc", "")
	require.NoError(t, err)

	service.now = time.Now
	_, err = service.ValidateToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTService_ValidateToken_WrongSecret(t *testing.T) {
	token, err := setupTestJWTService(t, 1).GenerateToken("svc", "")
	require.NoError(t, err)

	other := NewJWTService(&config.JWTConfig{Secret: "another-secret", ExpirationHours: 1})
	_, err = other.ValidateToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTService_ValidateToken_Malformed(t *testing.T) {
	service := setupTestJWTService(t, 1)

	_, err := service.ValidateToken("")
	assert.Error(t, err)

	_, err = service.ValidateToken("not.a.jwt")
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenMalformed)
}

func TestJWTService_ValidateToken_WrongIssuer(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   "svc",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = setupTestJWTService(t, 1).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_RejectsNoneAlg(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: config.DefaultJWTIssuer, Subject: "svc"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = setupTestJWTService(t, 1).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_AsTokenValidator(t *testing.T) {
	service := setupTestJWTService(t, 1)
	token, err := service.GenerateToken("svc", "client")
	require.NoError(t, err)

	principal, err := service.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	subject, err := principal.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "svc", subject)
	assert.Equal(t, "client", principal.GetRole())
}

func TestJWTService_CustomIssuer(t *testing.T) {
	portal := NewJWTService(&config.JWTConfig{Secret: testSecret, ExpirationHours: 1, Issuer: "hiring-portal"})
	token, err := portal.GenerateToken("svc", "")
	require.NoError(t, err)

	claims, err := portal.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "hiring-portal", claims.Issuer)

	_, err = setupTestJWTService(t, 1).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_ValidateToken_RequiresExpiry(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: config.DefaultJWTIssuer, Subject: "svc"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = setupTestJWTService(t, 1).ValidateToken(token)
	assert.Error(t, err)
}
