package services

import (
	"context"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/pkg/errs"
	"github.com/BinLe1988/cofounder-match/pkg/matching"
	"github.com/BinLe1988/cofounder-match/pkg/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const discoveryLimit = 10

// SwipeService 滑动、匹配和发现页
type SwipeService struct {
	db       *gorm.DB
	resolver *storage.Resolver
	matcher  *matching.Matcher
	log      *zap.Logger
	shuffle  func(n int, swap func(i, j int))
}

// NewSwipeService 创建滑动服务
func NewSwipeService(db *gorm.DB, resolver *storage.Resolver, matcher *matching.Matcher, log *zap.Logger) *SwipeService {
	return &SwipeService{
		db:       db,
		resolver: resolver,
		matcher:  matcher,
		log:      log.Named("swipes"),
		shuffle:  rand.Shuffle,
	}
}

// Swipe 记录一次滑动，对方此前已右滑时生成匹配
func (s *SwipeService) Swipe(ctx context.Context, swiperID string, req models.SwipeRequest) (models.SwipeResult, error) {
	if err := requireUser(swiperID); err != nil {
		return models.SwipeResult{}, err
	}
	if !req.Direction.Valid() {
		return models.SwipeResult{}, errs.Wrap(errs.ErrInvalidArgument, "direction must be left or right")
	}
	if req.SwipedUserID == "" {
		return models.SwipeResult{}, errs.Wrap(errs.ErrInvalidArgument, "swiped user is required")
	}
	if req.SwipedUserID == swiperID {
		return models.SwipeResult{}, errs.Wrap(errs.ErrInvalidArgument, "cannot swipe on yourself")
	}

	var (
		result  models.SwipeResult
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 先锁住用户对，反向滑动的检查才能看到对方已提交的记录
		if err := lockPair(tx, swiperID, req.SwipedUserID); err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.Swipe{}).
			Where("swiper_id = ? AND swiped_id = ?", swiperID, req.SwipedUserID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errs.ErrDuplicateSwipe
		}

		swipe := &models.Swipe{SwiperID: swiperID, SwipedID: req.SwipedUserID, Direction: req.Direction}
		if err := tx.Create(swipe).Error; err != nil {
			if isDuplicate(err) {
				return errs.ErrDuplicateSwipe
			}
			return err
		}

		if req.Direction != models.SwipeRight {
			return nil
		}

		var reciprocal int64
		if err := tx.Model(&models.Swipe{}).
			Where("swiper_id = ? AND swiped_id = ? AND direction = ?", req.SwipedUserID, swiperID, models.SwipeRight).
			Count(&reciprocal).Error; err != nil {
			return err
		}
		if reciprocal == 0 {
			return nil
		}

		match, isNew, err := createMatch(tx, swiperID, req.SwipedUserID)
		if err != nil {
			return err
		}
		result = models.SwipeResult{IsMatch: true, MatchID: match.ID}
		created = isNew
		if !isNew {
			return nil
		}

		profiles, err := profilesByUser(tx, match.User1ID, match.User2ID)
		if err != nil {
			return err
		}
		return matchNotifications(tx, match, profiles)
	})
	if err != nil {
		return models.SwipeResult{}, err
	}

	if result.IsMatch {
		s.log.Info("match created",
			zap.String("match_id", result.MatchID),
			zap.String("swiper_id", swiperID),
			zap.String("swiped_id", req.SwipedUserID),
			zap.Bool("new", created))
	}
	return result, nil
}

// lockPair 插入或锁定用户对的锁行，直到事务结束
func lockPair(tx *gorm.DB, a, b string) error {
	user1, user2 := models.CanonicalPair(a, b)
	pair := models.SwipePair{User1ID: user1, User2ID: user2}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&pair).Error; err != nil {
		return err
	}

	var locked models.SwipePair
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user1_id = ? AND user2_id = ?", user1, user2).
		Take(&locked).Error
}

// createMatch 按规范顺序插入匹配，已存在时返回已有记录
func createMatch(tx *gorm.DB, a, b string) (*models.Match, bool, error) {
	user1, user2 := models.CanonicalPair(a, b)
	match := &models.Match{User1ID: user1, User2ID: user2, MatchedAt: time.Now()}

	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(match)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return match, true, nil
	}

	var existing models.Match
	if err := tx.Where("user1_id = ? AND user2_id = ?", user1, user2).First(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

// profilesByUser 按用户ID加载资料
func profilesByUser(tx *gorm.DB, userIDs ...string) (map[string]*models.Profile, error) {
	var profiles []models.Profile
	if err := tx.Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, err
	}

	byUser := make(map[string]*models.Profile, len(profiles))
	for i := range profiles {
		byUser[profiles[i].UserID] = &profiles[i]
	}
	return byUser, nil
}

// Discover 返回最多10份未滑动过的启用资料，每次调用重新打乱
func (s *SwipeService) Discover(ctx context.Context, userID string) ([]models.DiscoveryProfile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	current, err := findProfile(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return []models.DiscoveryProfile{}, nil
	}

	swiped := s.db.Model(&models.Swipe{}).Select("swiped_id").Where("swiper_id = ?", userID)

	var candidates []models.Profile
	err = s.db.WithContext(ctx).
		Where("is_active = ? AND user_id <> ?", true, userID).
		Where("user_id NOT IN (?)", swiped).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	s.shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > discoveryLimit {
		candidates = candidates[:discoveryLimit]
	}

	// 分数只附加在卡片上，不改变随机顺序
	ptrs := make([]*models.Profile, len(candidates))
	for i := range candidates {
		ptrs[i] = &candidates[i]
	}
	scores := make(map[string]float64, len(candidates))
	for _, ms := range s.matcher.Rank(current, ptrs) {
		scores[ms.UserID] = ms.Score
	}

	views := s.resolver.Views(ctx, candidates)
	cards := make([]models.DiscoveryProfile, len(views))
	for i := range views {
		cards[i] = models.DiscoveryProfile{
			ProfileView:   views[i],
			Compatibility: scores[candidates[i].UserID],
		}
	}
	return cards, nil
}

// Liked 调用方右滑过的启用资料，最近喜欢的在前
func (s *SwipeService) Liked(ctx context.Context, userID string) ([]models.LikedProfile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var swipes []models.Swipe
	err := s.db.WithContext(ctx).
		Where("swiper_id = ? AND direction = ?", userID, models.SwipeRight).
		Find(&swipes).Error
	if err != nil {
		return nil, err
	}
	if len(swipes) == 0 {
		return []models.LikedProfile{}, nil
	}

	likedAt := make(map[string]time.Time, len(swipes))
	ids := make([]string, 0, len(swipes))
	for _, sw := range swipes {
		likedAt[sw.SwipedID] = sw.CreatedAt
		ids = append(ids, sw.SwipedID)
	}

	var profiles []models.Profile
	if err := s.db.WithContext(ctx).
		Where("user_id IN ? AND is_active = ?", ids, true).
		Find(&profiles).Error; err != nil {
		return nil, err
	}

	var matches []models.Match
	if err := s.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Find(&matches).Error; err != nil {
		return nil, err
	}
	matched := make(map[string]bool, len(matches))
	for i := range matches {
		matched[matches[i].Other(userID)] = true
	}

	views := s.resolver.Views(ctx, profiles)
	liked := make([]models.LikedProfile, len(views))
	for i, v := range views {
		liked[i] = models.LikedProfile{
			ProfileView: v,
			IsMatch:     matched[v.UserID],
			LikedAt:     likedAt[v.UserID],
		}
	}

	sort.SliceStable(liked, func(i, j int) bool {
		return liked[i].LikedAt.After(liked[j].LikedAt)
	})
	return liked, nil
}

// AgentProfiles 返回除自己外所有启用且完整的资料，按契合度降序，供推荐助手使用
func (s *SwipeService) AgentProfiles(ctx context.Context, userID string) (models.AgentProfiles, error) {
	if err := requireUser(userID); err != nil {
		return models.AgentProfiles{}, err
	}

	var candidates []models.Profile
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND is_complete = ? AND user_id <> ?", true, true, userID).
		Order("created_at ASC").
		Find(&candidates).Error
	if err != nil {
		return models.AgentProfiles{}, err
	}

	current, err := findProfile(ctx, s.db, userID)
	if err != nil {
		return models.AgentProfiles{}, err
	}

	out := models.AgentProfiles{Profiles: make([]models.AgentCandidate, 0, len(candidates))}
	byUser := make(map[string]*models.Profile, len(candidates))
	ptrs := make([]*models.Profile, len(candidates))
	for i := range candidates {
		byUser[candidates[i].UserID] = &candidates[i]
		ptrs[i] = &candidates[i]
	}

	if current == nil {
		for _, p := range ptrs {
			out.Profiles = append(out.Profiles, agentCandidate(p, 0))
		}
		return out, nil
	}

	out.CurrentUser = &models.AgentSummary{
		Name:       current.Name,
		Bio:        current.Bio,
		Skills:     nonNil(current.Skills),
		Interests:  nonNil(current.Interests),
		LookingFor: current.LookingFor,
		Location:   current.Location,
		Experience: current.Experience,
	}
	for _, ms := range s.matcher.Rank(current, ptrs) {
		out.Profiles = append(out.Profiles, agentCandidate(byUser[ms.UserID], ms.Score))
	}
	return out, nil
}

func agentCandidate(p *models.Profile, score float64) models.AgentCandidate {
	return models.AgentCandidate{
		ID:            p.ID,
		UserID:        p.UserID,
		Name:          p.Name,
		Bio:           p.Bio,
		Skills:        nonNil(p.Skills),
		Interests:     nonNil(p.Interests),
		LookingFor:    p.LookingFor,
		Location:      p.Location,
		Experience:    p.Experience,
		Twitter:       p.Twitter,
		LinkedIn:      p.LinkedIn,
		Portfolio:     p.Portfolio,
		Compatibility: score,
	}
}
