// Package matching 计算两份创始人资料之间的契合度
package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/BinLe1988/cofounder-match/models"
)

// MatchScore 表示匹配分数
type MatchScore struct {
	UserID string
	Score  float64
}

// Matcher 契合度打分器
type Matcher struct {
	// 权重配置
	weights struct {
		interests  float64
		skills     float64
		lookingFor float64
		experience float64
		location   float64
	}
}

// NewMatcher 创建新的匹配器实例
func NewMatcher() *Matcher {
	m := &Matcher{}
	// 设置默认权重
	m.weights.interests = 0.3
	m.weights.skills = 0.2
	m.weights.lookingFor = 0.25
	m.weights.experience = 0.1
	m.weights.location = 0.15
	return m
}

// Rank 为候选人打分并按分数降序排序
func (m *Matcher) Rank(user *models.Profile, candidates []*models.Profile) []MatchScore {
	var scores []MatchScore

	for _, candidate := range candidates {
		if candidate.UserID == user.UserID {
			continue
		}

		scores = append(scores, MatchScore{
			UserID: candidate.UserID,
			Score:  m.Score(user, candidate),
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	return scores
}

// Score 计算两份资料之间的契合度，范围 [0, 1]
func (m *Matcher) Score(user1, user2 *models.Profile) float64 {
	score := 0.0

	// 1. 兴趣相似度
	score += calculateCosineSimilarity(termVector(user1.Interests), termVector(user2.Interests)) * m.weights.interests

	// 2. 技能互补度：技能重叠越少越互补
	score += m.calculateSkillComplement(user1.Skills, user2.Skills) * m.weights.skills

	// 3. 双方寻找的角色是否对上
	score += m.calculateRoleFit(user1, user2) * m.weights.lookingFor

	// 4. 经验接近度
	score += m.calculateExperienceCompatibility(user1.Experience, user2.Experience) * m.weights.experience

	// 5. 地理位置接近度
	score += m.calculateLocationSimilarity(user1.Location, user2.Location) * m.weights.location

	return math.Round(score*1000) / 1000
}

// calculateSkillComplement 用 1 - Jaccard 衡量技能互补
func (m *Matcher) calculateSkillComplement(skills1, skills2 []string) float64 {
	if len(skills1) == 0 || len(skills2) == 0 {
		return 0
	}

	set1 := make(map[string]bool)
	for _, s := range skills1 {
		set1[normalize(s)] = true
	}

	set2 := make(map[string]bool)
	overlap := 0
	for _, s := range skills2 {
		key := normalize(s)
		if set2[key] {
			continue
		}
		set2[key] = true
		if set1[key] {
			overlap++
		}
	}

	union := len(set1) + len(set2) - overlap
	if union == 0 {
		return 0
	}
	return 1 - float64(overlap)/float64(union)
}

// calculateRoleFit 一方寻找的角色出现在另一方的技能或描述中
func (m *Matcher) calculateRoleFit(user1, user2 *models.Profile) float64 {
	fit := 0.0
	if mentions(user1.LookingFor, user2) {
		fit += 0.5
	}
	if mentions(user2.LookingFor, user1) {
		fit += 0.5
	}
	return fit
}

func mentions(lookingFor string, p *models.Profile) bool {
	role := normalize(lookingFor)
	if role == "" {
		return false
	}
	for _, word := range strings.Fields(role) {
		if len(word) <= 3 || word == "co-founder" || word == "cofounder" {
			continue
		}
		if strings.Contains(normalize(p.Bio), word) {
			return true
		}
		for _, s := range p.Skills {
			if strings.Contains(normalize(s), word) {
				return true
			}
		}
	}
	return false
}

var experienceLevels = map[string]float64{
	models.ExperienceBeginner:     0,
	models.ExperienceIntermediate: 1,
	models.ExperienceExpert:       2,
}

// calculateExperienceCompatibility 使用高斯函数计算经验差异，差异越小分数越高
func (m *Matcher) calculateExperienceCompatibility(exp1, exp2 string) float64 {
	level1, ok1 := experienceLevels[normalize(exp1)]
	level2, ok2 := experienceLevels[normalize(exp2)]
	if !ok1 || !ok2 {
		return 0
	}
	diff := math.Abs(level1 - level2)
	return math.Exp(-(diff * diff) / 2)
}

// calculateLocationSimilarity 计算地理位置相似度
func (m *Matcher) calculateLocationSimilarity(loc1, loc2 string) float64 {
	loc1, loc2 = normalize(loc1), normalize(loc2)
	if loc1 == "" || loc2 == "" {
		return 0
	}

	// TODO: 可以扩展为使用地理编码和距离计算
	if loc1 == loc2 {
		return 1
	}
	return 0
}

func termVector(terms []string) map[string]float64 {
	v := make(map[string]float64, len(terms))
	for _, t := range terms {
		if key := normalize(t); key != "" {
			v[key] = 1
		}
	}
	return v
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// calculateCosineSimilarity 计算余弦相似度
func calculateCosineSimilarity(v1, v2 map[string]float64) float64 {
	dotProduct := 0.0
	norm1 := 0.0
	norm2 := 0.0

	for k, val1 := range v1 {
		if val2, ok := v2[k]; ok {
			dotProduct += val1 * val2
		}
		norm1 += val1 * val1
	}

	for _, val2 := range v2 {
		norm2 += val2 * val2
	}

	// 避免除零错误
	if norm1 == 0 || norm2 == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(norm1) * math.Sqrt(norm2))
}
