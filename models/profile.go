package models

import (
	"strings"

	"gorm.io/datatypes"
)

// 经验等级
const (
	ExperienceBeginner     = "beginner"
	ExperienceIntermediate = "intermediate"
	ExperienceExpert       = "expert"
)

// Profile 创始人资料，每个用户至多一份
type Profile struct {
	Base
	UserID     string                      `gorm:"size:36;not null;uniqueIndex" json:"userId"`
	Username   *string                     `gorm:"size:30;uniqueIndex" json:"username,omitempty"`
	Name       string                      `gorm:"size:100" json:"name"`
	Bio        string                      `gorm:"type:text" json:"bio"`
	Skills     datatypes.JSONSlice[string] `json:"skills"`
	Interests  datatypes.JSONSlice[string] `json:"interests"`
	LookingFor string                      `gorm:"size:100" json:"lookingFor"` // technical co-founder / business co-founder / designer ...
	Experience string                      `gorm:"size:20" json:"experience"`
	Location   string                      `gorm:"size:100" json:"location,omitempty"`
	Photos     datatypes.JSONSlice[string] `json:"-"` // 存储ID，按顺序

	// 社交链接
	Twitter   string `gorm:"size:255" json:"twitter,omitempty"`
	Discord   string `gorm:"size:255" json:"discord,omitempty"`
	LinkedIn  string `gorm:"size:255" json:"linkedin,omitempty"`
	Portfolio string `gorm:"size:255" json:"portfolio,omitempty"`

	IsActive   bool `gorm:"index" json:"isActive"`
	IsComplete bool `json:"isComplete"`
}

// RefreshCompletion 根据必填字段重新计算 IsComplete
func (p *Profile) RefreshCompletion() {
	p.IsComplete = strings.TrimSpace(p.Name) != "" &&
		strings.TrimSpace(p.Bio) != "" &&
		strings.TrimSpace(p.LookingFor) != "" &&
		strings.TrimSpace(p.Experience) != "" &&
		len(p.Skills) > 0
}

// CreateProfileRequest 创建资料请求
type CreateProfileRequest struct {
	Name       string   `json:"name" binding:"required,max=100"`
	Bio        string   `json:"bio"`
	Skills     []string `json:"skills"`
	Interests  []string `json:"interests"`
	LookingFor string   `json:"lookingFor"`
	Location   string   `json:"location"`
	Experience string   `json:"experience"`
}

// ProfileUpdate 资料的部分更新，只有非 nil 字段会被写入
type ProfileUpdate struct {
	Name       *string   `json:"name"`
	Bio        *string   `json:"bio"`
	Skills     *[]string `json:"skills"`
	Interests  *[]string `json:"interests"`
	LookingFor *string   `json:"lookingFor"`
	Location   *string   `json:"location"`
	Experience *string   `json:"experience"`
	Twitter    *string   `json:"twitter"`
	Discord    *string   `json:"discord"`
	LinkedIn   *string   `json:"linkedin"`
	Portfolio  *string   `json:"portfolio"`
}

// IsEmpty 没有任何字段需要更新
func (u ProfileUpdate) IsEmpty() bool {
	return u.Name == nil && u.Bio == nil && u.Skills == nil && u.Interests == nil &&
		u.LookingFor == nil && u.Location == nil && u.Experience == nil &&
		u.Twitter == nil && u.Discord == nil && u.LinkedIn == nil && u.Portfolio == nil
}

// Apply 把更新合并到资料上并重新计算完整度
func (u ProfileUpdate) Apply(p *Profile) {
	mergeString(&p.Name, u.Name)
	mergeString(&p.Bio, u.Bio)
	mergeString(&p.LookingFor, u.LookingFor)
	mergeString(&p.Location, u.Location)
	mergeString(&p.Experience, u.Experience)
	mergeString(&p.Twitter, u.Twitter)
	mergeString(&p.Discord, u.Discord)
	mergeString(&p.LinkedIn, u.LinkedIn)
	mergeString(&p.Portfolio, u.Portfolio)
	if u.Skills != nil {
		p.Skills = append(datatypes.JSONSlice[string]{}, (*u.Skills)...)
	}
	if u.Interests != nil {
		p.Interests = append(datatypes.JSONSlice[string]{}, (*u.Interests)...)
	}
	p.RefreshCompletion()
}

func mergeString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Photo 已解析的照片
type Photo struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

// ProfileView 带照片地址的资料视图
type ProfileView struct {
	Profile
	Photos []Photo `json:"photos"`
}

// UsernameRequest 修改用户名请求
type UsernameRequest struct {
	Username string `json:"username" binding:"required"`
}

// PhotoRequest 添加/删除照片请求
type PhotoRequest struct {
	StorageID string `json:"storageId" binding:"required"`
}
