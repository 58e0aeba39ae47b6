package matching

import (
	"testing"

	"github.com/BinLe1988/cofounder-match/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreRewardsSharedInterestsAndComplementarySkills(t *testing.T) {
	m := NewMatcher()

	founder := &models.Profile{
		UserID:     "a",
		Bio:        "Sales and growth person",
		Skills:     []string{"Sales", "Marketing"},
		Interests:  []string{"fintech", "climate"},
		LookingFor: "technical co-founder",
		Experience: models.ExperienceExpert,
		Location:   "Berlin",
	}
	engineer := &models.Profile{
		UserID:     "b",
		Bio:        "Backend engineer, technical lead",
		Skills:     []string{"Go", "Postgres"},
		Interests:  []string{"Fintech", "climate"},
		LookingFor: "business co-founder",
		Experience: models.ExperienceExpert,
		Location:   "berlin",
	}
	stranger := &models.Profile{
		UserID:     "c",
		Skills:     []string{"Sales"},
		Interests:  []string{"gaming"},
		Experience: models.ExperienceBeginner,
		Location:   "Lisbon",
	}

	good := m.Score(founder, engineer)
	poor := m.Score(founder, stranger)

	assert.Greater(t, good, poor)
	assert.LessOrEqual(t, good, 1.0)
	assert.GreaterOrEqual(t, poor, 0.0)
}

func TestScoreIsSymmetric(t *testing.T) {
	m := NewMatcher()
	p1 := &models.Profile{UserID: "a", Skills: []string{"Go"}, Interests: []string{"ai"}, Experience: "expert"}
	p2 := &models.Profile{UserID: "b", Skills: []string{"Design"}, Interests: []string{"ai", "health"}, Experience: "beginner"}

	assert.Equal(t, m.Score(p1, p2), m.Score(p2, p1))
}

func TestRankSkipsSelfAndSorts(t *testing.T) {
	m := NewMatcher()
	me := &models.Profile{UserID: "me", Interests: []string{"ai"}, Location: "NYC"}
	candidates := []*models.Profile{
		me,
		{UserID: "far", Interests: []string{"music"}},
		{UserID: "near", Interests: []string{"ai"}, Location: "nyc"},
	}

	scores := m.Rank(me, candidates)

	require.Len(t, scores, 2)
	assert.Equal(t, "near", scores[0].UserID)
	assert.Equal(t, "far", scores[1].UserID)
}

func TestEmptyProfilesScoreZero(t *testing.T) {
	m := NewMatcher()
	assert.Equal(t, 0.0, m.Score(&models.Profile{UserID: "a"}, &models.Profile{UserID: "b"}))
}
