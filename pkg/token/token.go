package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrUnauthorized = errors.New("unauthorized")
)

// Token is the payload carried inside the signed JWT.
type Token struct {
	AuthId  string    `json:"auth_id"`
	Role    string    `json:"role"`
	Expired time.Time `json:"expired"`
}

type TokenManager struct {
	secret string
	expiry time.Duration
}

func NewTokenManager(secret string, expiryHours int) *TokenManager {
	return &TokenManager{
		secret: secret,
		expiry: time.Duration(expiryHours) * time.Hour,
	}
}

func (tm *TokenManager) GenerateToken(userID uuid.UUID, role string) (string, error) {
	payload := Token{
		AuthId:  userID.String(),
		Role:    role,
		Expired: time.Now().Add(tm.expiry),
	}
	claims := jwt.MapClaims{
		"payload": payload,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return "", err
	}
	return tokenStr, nil
}

func (tm *TokenManager) ValidateToken(tokenString string) (*Token, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(tm.secret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrUnauthorized
	}

	payloadByte, err := json.Marshal(claims["payload"])
	if err != nil {
		return nil, err
	}
	var payload Token
	if err := json.Unmarshal(payloadByte, &payload); err != nil {
		return nil, err
	}
	if payload.AuthId == "" {
		return nil, ErrUnauthorized
	}
	if time.Now().After(payload.Expired) {
		return nil, ErrTokenExpired
	}
	return &payload, nil
}
