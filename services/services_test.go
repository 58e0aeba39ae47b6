package services

import (
	"context"
	"testing"
	"time"

	"github.com/BinLe1988/cofounder-match/database/dbtest"
	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/pkg/chunking"
	"github.com/BinLe1988/cofounder-match/pkg/filter"
	"github.com/BinLe1988/cofounder-match/pkg/matching"
	"github.com/BinLe1988/cofounder-match/pkg/storage"
	"github.com/BinLe1988/cofounder-match/pkg/tasks"
	"github.com/BinLe1988/cofounder-match/pkg/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db            *gorm.DB
	queue         *tasks.MemoryQueue
	store         *storage.LocalStore
	auth          *AuthService
	profiles      *ProfileService
	swipes        *SwipeService
	matches       *MatchService
	documents     *DocumentService
	aiChats       *AiChatService
	notifications *NotificationService
	social        *SocialService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithDB(t, dbtest.Open(t))
}

func newTestEnvWithDB(t *testing.T, db *gorm.DB) *testEnv {
	t.Helper()

	log := zap.NewNop()

	store, err := storage.NewLocalStore(t.TempDir(), "http://localhost:8080", time.Minute)
	require.NoError(t, err)
	resolver := storage.NewResolver(store, 100, time.Minute, log)
	t.Cleanup(resolver.Close)

	contentFilter, err := filter.NewFromConfig([]string{"scam"}, nil)
	require.NoError(t, err)

	queue := tasks.NewMemoryQueue(16)
	t.Cleanup(func() { _ = queue.Close() })

	swipes := NewSwipeService(db, resolver, matching.NewMatcher(), log)
	swipes.shuffle = func(int, func(i, j int)) {}

	return &testEnv{
		db:            db,
		queue:         queue,
		store:         store,
		auth:          NewAuthService(db, utils.NewJWTManager("test-secret", 1), log),
		profiles:      NewProfileService(db, resolver, log),
		swipes:        swipes,
		matches:       NewMatchService(db, resolver, contentFilter, log),
		documents:     NewDocumentService(db, chunking.New(), store, log),
		aiChats:       NewAiChatService(db, contentFilter, queue, log),
		notifications: NewNotificationService(db, log),
		social:        NewSocialService(db, log),
	}
}

func (e *testEnv) createProfile(t *testing.T, userID, name string) *models.Profile {
	t.Helper()

	p, err := e.profiles.Create(context.Background(), userID, models.CreateProfileRequest{
		Name:       name,
		Bio:        name + " builds developer tools",
		Skills:     []string{"go", "postgres"},
		Interests:  []string{"devtools", "climate"},
		LookingFor: "business co-founder",
		Experience: models.ExperienceIntermediate,
		Location:   "Berlin",
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) swipe(t *testing.T, from, to string, dir models.SwipeDirection) models.SwipeResult {
	t.Helper()

	res, err := e.swipes.Swipe(context.Background(), from, models.SwipeRequest{SwipedUserID: to, Direction: dir})
	require.NoError(t, err)
	return res
}

// match 让两个用户互相右滑
func (e *testEnv) match(t *testing.T, a, b string) string {
	t.Helper()

	e.swipe(t, a, b, models.SwipeRight)
	res := e.swipe(t, b, a, models.SwipeRight)
	require.True(t, res.IsMatch)
	return res.MatchID
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var n int64
	q := e.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
