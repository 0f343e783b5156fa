package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"org-sync-backend/pkg/models"
)

// JWTService signs and verifies the HS256 tokens the API accepts.
type JWTService struct {
	secretKey []byte
}

func NewJWTService(secretKey string) *JWTService {
	return &JWTService{secretKey: []byte(secretKey)}
}

// GenerateTokenPair issues a short-lived access token and a refresh
// token for a person.
func (j *JWTService) GenerateTokenPair(personID, email string) (accessToken, refreshToken string, expiresIn int64, err error) {
	now := time.Now()

	accessExpiry := now.Add(15 * time.Minute)
	accessClaims := &models.TokenClaims{
		PersonID: personID,
		Email:    email,
		Type:     "access",
		Exp:      accessExpiry.Unix(),
		Iat:      now.Unix(),
	}
	accessToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(j.secretKey)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshExpiry := now.Add(7 * 24 * time.Hour)
	refreshClaims := &models.TokenClaims{
		PersonID: personID,
		Email:    email,
		Type:     "refresh",
		Exp:      refreshExpiry.Unix(),
		Iat:      now.Unix(),
	}
	refreshToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(j.secretKey)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, accessExpiry.Unix(), nil
}

// GenerateAccessToken issues just the access token.
func (j *JWTService) GenerateAccessToken(personID, email string) (string, int64, error) {
	now := time.Now()
	expiry := now.Add(15 * time.Minute)
	claims := &models.TokenClaims{
		PersonID: personID,
		Email:    email,
		Type:     "access",
		Exp:      expiry.Unix(),
		Iat:      now.Unix(),
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secretKey)
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate access token: %w", err)
	}
	return tokenString, expiry.Unix(), nil
}

// ValidateToken parses and checks a token of either type.
func (j *JWTService) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if time.Now().Unix() > claims.Exp {
		return nil, fmt.Errorf("token expired")
	}
	return claims, nil
}

// ValidateRefreshToken checks that the token is valid and of the
// refresh type.
func (j *JWTService) ValidateRefreshToken(tokenString string) (*models.TokenClaims, error) {
	claims, err := j.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != "refresh" {
		return nil, fmt.Errorf("invalid token type: expected refresh, got %s", claims.Type)
	}
	return claims, nil
}

// RefreshAccessToken trades a refresh token for a new access token.
func (j *JWTService) RefreshAccessToken(refreshToken string) (string, int64, error) {
	claims, err := j.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", 0, fmt.Errorf("invalid refresh token: %w", err)
	}
	return j.GenerateAccessToken(claims.PersonID, claims.Email)
}

// ExtractPersonFromToken resolves the person identity carried by a
// token.
func (j *JWTService) ExtractPersonFromToken(tokenString string) (*models.Person, error) {
	claims, err := j.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &models.Person{ID: claims.PersonID, Email: claims.Email}, nil
}
