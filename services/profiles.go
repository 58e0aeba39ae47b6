package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/pkg/errs"
	"github.com/BinLe1988/cofounder-match/pkg/storage"
	"github.com/BinLe1988/cofounder-match/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxUsernameAttempts = 1000

// ProfileService 资料服务
type ProfileService struct {
	db       *gorm.DB
	resolver *storage.Resolver
	log      *zap.Logger
}

// NewProfileService 创建资料服务
func NewProfileService(db *gorm.DB, resolver *storage.Resolver, log *zap.Logger) *ProfileService {
	return &ProfileService{db: db, resolver: resolver, log: log.Named("profiles")}
}

// GetCurrent 获取调用方的资料，没有资料时返回 nil
func (s *ProfileService) GetCurrent(ctx context.Context, userID string) (*models.ProfileView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	profile, err := findProfile(ctx, s.db, userID)
	if err != nil || profile == nil {
		return nil, err
	}
	view := s.resolver.View(ctx, *profile)
	return &view, nil
}

// Create 创建资料，每个用户只能有一份
func (s *ProfileService) Create(ctx context.Context, userID string, req models.CreateProfileRequest) (*models.Profile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	profile := &models.Profile{
		UserID:     userID,
		Name:       strings.TrimSpace(req.Name),
		Bio:        req.Bio,
		Skills:     datatypes.JSONSlice[string](nonNil(req.Skills)),
		Interests:  datatypes.JSONSlice[string](nonNil(req.Interests)),
		LookingFor: req.LookingFor,
		Location:   req.Location,
		Experience: req.Experience,
		Photos:     datatypes.JSONSlice[string]{},
		IsActive:   true,
	}
	profile.RefreshCompletion()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findProfile(ctx, tx, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errs.ErrProfileExists
		}

		username, err := generateUniqueUsername(tx, profile.Name, userID)
		if err != nil {
			return err
		}
		profile.Username = &username

		if err := tx.Create(profile).Error; err != nil {
			if isDuplicate(err) {
				return errs.ErrProfileExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("profile created", zap.String("user_id", userID), zap.Bool("complete", profile.IsComplete))
	return profile, nil
}

// Update 只修改提供的字段
func (s *ProfileService) Update(ctx context.Context, userID string, update models.ProfileUpdate) (*models.Profile, error) {
	return s.mutate(ctx, userID, func(_ *gorm.DB, p *models.Profile) error {
		update.Apply(p)
		return nil
	})
}

// SetActive 设置是否出现在发现页
func (s *ProfileService) SetActive(ctx context.Context, userID string, active bool) (*models.Profile, error) {
	return s.mutate(ctx, userID, func(_ *gorm.DB, p *models.Profile) error {
		p.IsActive = active
		return nil
	})
}

// RemovePhoto 删除一张照片
func (s *ProfileService) RemovePhoto(ctx context.Context, userID, storageID string) (*models.Profile, error) {
	profile, err := s.mutate(ctx, userID, func(_ *gorm.DB, p *models.Profile) error {
		kept := datatypes.JSONSlice[string]{}
		for _, id := range p.Photos {
			if id != storageID {
				kept = append(kept, id)
			}
		}
		p.Photos = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.resolver.Forget(storageID)
	return profile, nil
}

// mutate 在事务中加载、修改并保存资料
func (s *ProfileService) mutate(ctx context.Context, userID string, fn func(*gorm.DB, *models.Profile) error) (*models.Profile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var profile *models.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		profile, err = findProfile(ctx, tx, userID)
		if err != nil {
			return err
		}
		if profile == nil {
			return errs.Wrap(errs.ErrNotFound, "profile not found")
		}
		if err := fn(tx, profile); err != nil {
			return err
		}
		profile.RefreshCompletion()
		return tx.Save(profile).Error
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// AddPhoto 追加照片，没有资料时创建一份未完成的占位资料
func (s *ProfileService) AddPhoto(ctx context.Context, userID, storageID string) (*models.Profile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(storageID) == "" {
		return nil, errs.Wrap(errs.ErrInvalidArgument, "storage id is required")
	}

	var profile *models.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		profile, err = findProfile(ctx, tx, userID)
		if err != nil {
			return err
		}

		if profile == nil {
			s.log.Warn("profile not found, creating placeholder", zap.String("user_id", userID))
			profile = &models.Profile{
				UserID:    userID,
				Skills:    datatypes.JSONSlice[string]{},
				Interests: datatypes.JSONSlice[string]{},
				Photos:    datatypes.JSONSlice[string]{storageID},
				IsActive:  true,
			}
			profile.RefreshCompletion()
			return tx.Create(profile).Error
		}

		profile.Photos = append(profile.Photos, storageID)
		return tx.Save(profile).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("photo added", zap.String("user_id", userID), zap.Int("photos", len(profile.Photos)))
	return profile, nil
}

// GenerateUploadURL 生成照片上传地址
func (s *ProfileService) GenerateUploadURL(ctx context.Context, userID string) (storage.UploadTarget, error) {
	if err := requireUser(userID); err != nil {
		return storage.UploadTarget{}, err
	}
	return s.resolver.Store().GenerateUploadURL(ctx)
}

// UsernameAvailability 用户名可用性检查结果
type UsernameAvailability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// CheckUsername 检查用户名是否可用，调用方自己的用户名视为可用
func (s *ProfileService) CheckUsername(ctx context.Context, userID, username string) (UsernameAvailability, error) {
	if err := requireUser(userID); err != nil {
		return UsernameAvailability{}, err
	}

	username = normalizeUsername(username)
	if reason := utils.ValidateUsername(username); reason != "" {
		return UsernameAvailability{Reason: reason}, nil
	}

	owner, err := usernameOwner(s.db.WithContext(ctx), username)
	if err != nil {
		return UsernameAvailability{}, err
	}
	if owner != "" && owner != userID {
		return UsernameAvailability{Reason: "Username is already taken"}, nil
	}
	return UsernameAvailability{Available: true}, nil
}

// UpdateUsername 修改用户名
func (s *ProfileService) UpdateUsername(ctx context.Context, userID, username string) (*models.Profile, error) {
	username = normalizeUsername(username)
	if reason := utils.ValidateUsername(username); reason != "" {
		return nil, errs.Wrap(errs.ErrInvalidArgument, reason)
	}

	profile, err := s.mutate(ctx, userID, func(tx *gorm.DB, p *models.Profile) error {
		owner, err := usernameOwner(tx, username)
		if err != nil {
			return err
		}
		if owner != "" && owner != userID {
			return errs.Wrap(errs.ErrConflict, "username is already taken")
		}
		p.Username = &username
		return nil
	})
	if isDuplicate(err) {
		return nil, errs.Wrap(errs.ErrConflict, "username is already taken")
	}
	return profile, err
}

// GenerateUsername 根据显示名生成一个未被占用的用户名
func (s *ProfileService) GenerateUsername(ctx context.Context, userID, name string) (string, error) {
	if err := requireUser(userID); err != nil {
		return "", err
	}
	return generateUniqueUsername(s.db.WithContext(ctx), name, userID)
}

// GetByUsername 公开访问的资料，只返回启用中的资料
func (s *ProfileService) GetByUsername(ctx context.Context, username string) (*models.ProfileView, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).
		Where("username = ? AND is_active = ?", normalizeUsername(username), true).
		First(&profile).Error
	if err != nil {
		return nil, notFound(err, "profile not found")
	}
	view := s.resolver.View(ctx, profile)
	return &view, nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// usernameOwner 返回占用该用户名的用户ID
func usernameOwner(db *gorm.DB, username string) (string, error) {
	var owners []string
	err := db.Model(&models.Profile{}).Where("username = ?", username).Limit(1).Pluck("user_id", &owners).Error
	if err != nil || len(owners) == 0 {
		return "", err
	}
	return owners[0], nil
}

// generateUniqueUsername 依次尝试 slug、slug-2、slug-3 ...
func generateUniqueUsername(db *gorm.DB, name, userID string) (string, error) {
	base := utils.Slugify(name)

	for i := 1; i <= maxUsernameAttempts; i++ {
		candidate := base
		if i > 1 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		owner, err := usernameOwner(db, candidate)
		if err != nil {
			return "", err
		}
		if owner == "" || owner == userID {
			return candidate, nil
		}
	}
	return "", errs.Wrap(errs.ErrConflict, "could not generate a unique username")
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
