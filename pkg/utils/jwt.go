package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const tokenIssuer = "cofounder-match"

// Claims JWT声明
type Claims struct {
	UserID string `json:"user_id"`
	jwt.StandardClaims
}

// JWTManager 负责签发和解析令牌
type JWTManager struct {
	secret     []byte
	expiration time.Duration
}

// NewJWTManager 创建令牌管理器，expiresIn 单位为小时
func NewJWTManager(secret string, expiresIn int) *JWTManager {
	if expiresIn <= 0 {
		expiresIn = 72
	}
	return &JWTManager{
		secret:     []byte(secret),
		expiration: time.Duration(expiresIn) * time.Hour,
	}
}

// GenerateToken 生成JWT令牌
func (m *JWTManager) GenerateToken(userID string) (string, error) {
	nowTime := time.Now()
	expireTime := nowTime.Add(m.expiration)

	claims := Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expireTime.Unix(),
			IssuedAt:  nowTime.Unix(),
			Issuer:    tokenIssuer,
		},
	}

	tokenClaims := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenClaims.SignedString(m.secret)
}

// ParseToken 解析JWT令牌
func (m *JWTManager) ParseToken(token string) (*Claims, error) {
	tokenClaims, err := jwt.ParseWithClaims(token, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := tokenClaims.Claims.(*Claims); ok && tokenClaims.Valid && claims.UserID != "" {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
