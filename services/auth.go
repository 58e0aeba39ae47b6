package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/pkg/errs"
	"github.com/BinLe1988/cofounder-match/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthResult 登录/注册结果
type AuthResult struct {
	Token string              `json:"token"`
	User  models.UserResponse `json:"user"`
}

// AuthService 注册、登录和当前用户
type AuthService struct {
	db  *gorm.DB
	jwt *utils.JWTManager
	log *zap.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(db *gorm.DB, jwt *utils.JWTManager, log *zap.Logger) *AuthService {
	return &AuthService{db: db, jwt: jwt, log: log.Named("auth")}
}

// Register 注册新用户并签发令牌
func (s *AuthService) Register(ctx context.Context, req models.RegistrationRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, errs.Wrap(errs.ErrInvalidArgument, "email is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errs.Wrap(errs.ErrConflict, "email already registered")
	}

	// 哈希密码
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{Email: email, Password: string(hashed), Name: strings.TrimSpace(req.Name)}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicate(err) {
			return nil, errs.Wrap(errs.ErrConflict, "email already registered")
		}
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID))
	return s.issue(user)
}

// Login 校验密码并签发令牌
func (s *AuthService) Login(ctx context.Context, req models.CredentialRequest) (*AuthResult, error) {
	invalid := errs.Wrap(errs.ErrUnauthenticated, "invalid email or password")

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, invalid
	}

	// 更新最后登录时间
	now := time.Now()
	user.LastLogin = &now
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", &now).Error; err != nil {
		s.log.Warn("update last login failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	return s.issue(&user)
}

// CurrentUser 当前用户信息
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.UserResponse, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, notFound(err, "user not found")
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.jwt.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user.ToResponse()}, nil
}
