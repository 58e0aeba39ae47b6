package models

import (
	"time"
)

// SwipeDirection 滑动方向
type SwipeDirection string

const (
	SwipeLeft  SwipeDirection = "left"  // 跳过
	SwipeRight SwipeDirection = "right" // 喜欢
)

// Valid 是否为合法方向
func (d SwipeDirection) Valid() bool {
	return d == SwipeLeft || d == SwipeRight
}

// Swipe 单向滑动记录，(swiper, swiped) 唯一且不可修改
type Swipe struct {
	Base
	SwiperID  string         `gorm:"size:36;not null;uniqueIndex:idx_swiper_swiped,priority:1;index" json:"swiperId"`
	SwipedID  string         `gorm:"size:36;not null;uniqueIndex:idx_swiper_swiped,priority:2;index" json:"swipedId"`
	Direction SwipeDirection `gorm:"size:10;not null" json:"direction"`
}

// Match 双向喜欢后生成的匹配，User1ID 按字典序小于 User2ID
type Match struct {
	Base
	User1ID   string    `gorm:"size:36;not null;uniqueIndex:idx_match_pair,priority:1;index" json:"user1Id"`
	User2ID   string    `gorm:"size:36;not null;uniqueIndex:idx_match_pair,priority:2;index" json:"user2Id"`
	MatchedAt time.Time `gorm:"not null" json:"matchedAt"`
}

// SwipePair 用户对的行锁，同一对用户的滑动事务在此串行
type SwipePair struct {
	User1ID string `gorm:"size:36;primaryKey"`
	User2ID string `gorm:"size:36;primaryKey"`
}

// CanonicalPair 返回规范顺序的用户对
func CanonicalPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// Includes 用户是否为匹配参与方
func (m *Match) Includes(userID string) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// Other 返回另一方的用户ID
func (m *Match) Other(userID string) string {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// Message 匹配内的消息，只追加
type Message struct {
	Base
	MatchID  string    `gorm:"size:36;not null;index:idx_match_time,priority:1" json:"matchId"`
	SenderID string    `gorm:"size:36;not null" json:"senderId"`
	Content  string    `gorm:"type:text;not null" json:"content"`
	SentAt   time.Time `gorm:"not null;index:idx_match_time,priority:2" json:"sentAt"`
}

// SwipeRequest 滑动请求
type SwipeRequest struct {
	SwipedUserID string         `json:"swipedUserId" binding:"required"`
	Direction    SwipeDirection `json:"direction" binding:"required,oneof=left right"`
}

// SwipeResult 滑动结果
type SwipeResult struct {
	IsMatch bool   `json:"isMatch"`
	MatchID string `json:"matchId,omitempty"`
}

// DiscoveryProfile 发现页卡片
type DiscoveryProfile struct {
	ProfileView
	Compatibility float64 `json:"compatibility"`
}

// AgentCandidate 推荐助手看到的候选资料
type AgentCandidate struct {
	ID            string   `json:"id"`
	UserID        string   `json:"userId"`
	Name          string   `json:"name"`
	Bio           string   `json:"bio"`
	Skills        []string `json:"skills"`
	Interests     []string `json:"interests"`
	LookingFor    string   `json:"lookingFor"`
	Location      string   `json:"location,omitempty"`
	Experience    string   `json:"experience"`
	Twitter       string   `json:"twitter,omitempty"`
	LinkedIn      string   `json:"linkedin,omitempty"`
	Portfolio     string   `json:"portfolio,omitempty"`
	Compatibility float64  `json:"compatibility"`
}

// AgentSummary 调用方自己的资料摘要
type AgentSummary struct {
	Name       string   `json:"name"`
	Bio        string   `json:"bio"`
	Skills     []string `json:"skills"`
	Interests  []string `json:"interests"`
	LookingFor string   `json:"lookingFor"`
	Location   string   `json:"location,omitempty"`
	Experience string   `json:"experience"`
}

// AgentProfiles 推荐助手的输入
type AgentProfiles struct {
	Profiles    []AgentCandidate `json:"profiles"`
	CurrentUser *AgentSummary    `json:"currentUser"`
}

// LikedProfile 我喜欢过的资料
type LikedProfile struct {
	ProfileView
	IsMatch bool      `json:"isMatch"`
	LikedAt time.Time `json:"likedAt"`
}

// MatchSummary 匹配列表项
type MatchSummary struct {
	MatchID       string      `json:"matchId"`
	MatchedAt     time.Time   `json:"matchedAt"`
	Profile       ProfileView `json:"profile"`
	LatestMessage *Message    `json:"latestMessage"`
}

// LastActivity 最近一条消息时间，没有消息时为匹配时间
func (s *MatchSummary) LastActivity() time.Time {
	if s.LatestMessage != nil {
		return s.LatestMessage.SentAt
	}
	return s.MatchedAt
}

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}
