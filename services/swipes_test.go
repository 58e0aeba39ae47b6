package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/BinLe1988/cofounder-match/database/dbtest"
	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwipeTwiceIsRejected(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	e.swipe(t, "user-a", "user-b", models.SwipeRight)

	_, err := e.swipes.Swipe(ctx, "user-a", models.SwipeRequest{SwipedUserID: "user-b", Direction: models.SwipeLeft})
	require.ErrorIs(t, err, errs.ErrConflict)
	assert.EqualError(t, err, "already swiped on this user")

	assert.Equal(t, int64(1), e.count(t, &models.Swipe{}, "swiper_id = ? AND swiped_id = ?", "user-a", "user-b"))
	var stored models.Swipe
	require.NoError(t, e.db.Where("swiper_id = ?", "user-a").First(&stored).Error)
	assert.Equal(t, models.SwipeRight, stored.Direction)
}

func TestMutualRightSwipesCreateOneCanonicalMatch(t *testing.T) {
	orders := map[string][2]string{
		"lower first":  {"user-a", "user-b"},
		"higher first": {"user-b", "user-a"},
	}
	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			e := newTestEnv(t)

			first := e.swipe(t, order[0], order[1], models.SwipeRight)
			assert.False(t, first.IsMatch)

			second := e.swipe(t, order[1], order[0], models.SwipeRight)
			require.True(t, second.IsMatch)
			require.NotEmpty(t, second.MatchID)

			var matches []models.Match
			require.NoError(t, e.db.Find(&matches).Error)
			require.Len(t, matches, 1)
			assert.Equal(t, second.MatchID, matches[0].ID)
			assert.Equal(t, "user-a", matches[0].User1ID)
			assert.Equal(t, "user-b", matches[0].User2ID)
		})
	}
}

func TestConcurrentMutualSwipesCreateExactlyOneMatch(t *testing.T) {
	for round := 0; round < 5; round++ {
		e := newTestEnvWithDB(t, dbtest.OpenShared(t, 4))
		e.createProfile(t, "user-a", "Ada")
		e.createProfile(t, "user-b", "Ben")

		var (
			wg       sync.WaitGroup
			results  [2]models.SwipeResult
			failures [2]error
		)
		pairs := [2][2]string{{"user-a", "user-b"}, {"user-b", "user-a"}}
		for i, pair := range pairs {
			wg.Add(1)
			go func(i int, from, to string) {
				defer wg.Done()
				results[i], failures[i] = e.swipes.Swipe(context.Background(), from,
					models.SwipeRequest{SwipedUserID: to, Direction: models.SwipeRight})
			}(i, pair[0], pair[1])
		}
		wg.Wait()

		require.NoError(t, failures[0])
		require.NoError(t, failures[1])
		assert.True(t, results[0].IsMatch != results[1].IsMatch, "exactly one swipe should report the match")
		assert.Equal(t, int64(1), e.count(t, &models.Match{}, ""))
		assert.Equal(t, int64(2), e.count(t, &models.Notification{}, "type = ?", models.NotificationMatch))
	}
}

func TestSingleRightSwipeDoesNotMatch(t *testing.T) {
	e := newTestEnv(t)

	res := e.swipe(t, "user-a", "user-b", models.SwipeRight)
	assert.False(t, res.IsMatch)
	assert.Empty(t, res.MatchID)
	assert.Zero(t, e.count(t, &models.Match{}, ""))

	res = e.swipe(t, "user-b", "user-a", models.SwipeLeft)
	assert.False(t, res.IsMatch)
	assert.Zero(t, e.count(t, &models.Match{}, ""))
}

func TestSwipeValidation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.swipes.Swipe(ctx, "", models.SwipeRequest{SwipedUserID: "user-b", Direction: models.SwipeRight})
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)

	_, err = e.swipes.Swipe(ctx, "user-a", models.SwipeRequest{SwipedUserID: "user-a", Direction: models.SwipeRight})
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = e.swipes.Swipe(ctx, "user-a", models.SwipeRequest{SwipedUserID: "user-b", Direction: "up"})
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	assert.Zero(t, e.count(t, &models.Swipe{}, ""))
}

func TestMatchNotifiesBothUsers(t *testing.T) {
	e := newTestEnv(t)
	e.createProfile(t, "user-a", "Ada")
	e.createProfile(t, "user-b", "Grace")

	matchID := e.match(t, "user-a", "user-b")

	for user, other := range map[string]string{"user-a": "Grace", "user-b": "Ada"} {
		list, err := e.notifications.List(context.Background(), user, 0, false)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, models.NotificationMatch, list[0].Type)
		assert.Equal(t, "You matched with "+other, list[0].Message)
		assert.Equal(t, matchID, list[0].RelatedMatchID)
	}
}

func TestDiscoverExcludesSelfSwipedAndInactive(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	e.createProfile(t, "user-a", "Ada")
	e.createProfile(t, "user-b", "Grace")
	e.createProfile(t, "user-c", "Linus")
	e.createProfile(t, "user-d", "Barbara")
	_, err := e.profiles.SetActive(ctx, "user-d", false)
	require.NoError(t, err)

	e.swipe(t, "user-a", "user-b", models.SwipeLeft)

	cards, err := e.swipes.Discover(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "user-c", cards[0].UserID)
	assert.Greater(t, cards[0].Compatibility, 0.0)
	assert.NotNil(t, cards[0].Photos)
}

func TestDiscoverReturnsAtMostTen(t *testing.T) {
	e := newTestEnv(t)
	e.createProfile(t, "me", "Me")
	for i := 0; i < 13; i++ {
		e.createProfile(t, "user-"+string(rune('a'+i)), "Founder")
	}

	cards, err := e.swipes.Discover(context.Background(), "me")
	require.NoError(t, err)
	assert.Len(t, cards, 10)
}

func TestDiscoverWithoutProfileIsEmpty(t *testing.T) {
	e := newTestEnv(t)
	e.createProfile(t, "user-b", "Grace")

	cards, err := e.swipes.Discover(context.Background(), "user-a")
	require.NoError(t, err)
	assert.NotNil(t, cards)
	assert.Empty(t, cards)
}

func TestLikedProfiles(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.createProfile(t, "user-a", "Ada")
	e.createProfile(t, "user-b", "Grace")
	e.createProfile(t, "user-c", "Linus")

	e.swipe(t, "user-a", "user-b", models.SwipeRight)
	e.swipe(t, "user-a", "user-c", models.SwipeRight)
	e.swipe(t, "user-c", "user-a", models.SwipeRight)

	// user-b 是更早喜欢的
	require.NoError(t, e.db.Model(&models.Swipe{}).
		Where("swiper_id = ? AND swiped_id = ?", "user-a", "user-b").
		Update("created_at", time.Now().Add(-time.Hour)).Error)

	liked, err := e.swipes.Liked(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, liked, 2)
	assert.Equal(t, "user-c", liked[0].UserID)
	assert.True(t, liked[0].IsMatch)
	assert.Equal(t, "user-b", liked[1].UserID)
	assert.False(t, liked[1].IsMatch)
}

func TestAgentProfilesExcludesSelfInactiveAndIncomplete(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	e.createProfile(t, "me", "Mia")
	e.createProfile(t, "twin", "Theo")
	e.createProfile(t, "away", "Ava")
	_, err := e.profiles.SetActive(ctx, "away", false)
	require.NoError(t, err)
	_, err = e.profiles.Create(ctx, "draft", models.CreateProfileRequest{Name: "Dree"})
	require.NoError(t, err)
	e.createProfile(t, "other", "Omar")
	other := "Lisbon"
	_, err = e.profiles.Update(ctx, "other", models.ProfileUpdate{Location: &other, Interests: &[]string{"music"}})
	require.NoError(t, err)

	out, err := e.swipes.AgentProfiles(ctx, "me")
	require.NoError(t, err)

	require.Len(t, out.Profiles, 2)
	assert.Equal(t, "twin", out.Profiles[0].UserID)
	assert.Equal(t, "other", out.Profiles[1].UserID)
	assert.Greater(t, out.Profiles[0].Compatibility, out.Profiles[1].Compatibility)
	require.NotNil(t, out.CurrentUser)
	assert.Equal(t, "Mia", out.CurrentUser.Name)
	assert.Equal(t, []string{"go", "postgres"}, out.CurrentUser.Skills)
}

func TestAgentProfilesWithoutOwnProfile(t *testing.T) {
	e := newTestEnv(t)
	e.createProfile(t, "user-b", "Ben")

	out, err := e.swipes.AgentProfiles(context.Background(), "newcomer")
	require.NoError(t, err)
	assert.Nil(t, out.CurrentUser)
	require.Len(t, out.Profiles, 1)
	assert.Equal(t, "user-b", out.Profiles[0].UserID)

	_, err = e.swipes.AgentProfiles(context.Background(), "")
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}
