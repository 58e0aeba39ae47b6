package utils

import (
	"regexp"
	"strings"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 30
)

var (
	usernamePattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	slugInvalid     = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces      = regexp.MustCompile(`\s+`)
	slugHyphens     = regexp.MustCompile(`-+`)
)

// ValidateUsername 校验用户名，返回不合法的原因，合法时返回空字符串
func ValidateUsername(username string) string {
	if len(username) < UsernameMinLength || len(username) > UsernameMaxLength {
		return "Username must be between 3 and 30 characters"
	}
	if !usernamePattern.MatchString(username) {
		return "Username can only contain lowercase letters, numbers, and hyphens"
	}
	if strings.HasPrefix(username, "-") || strings.HasSuffix(username, "-") {
		return "Username cannot start or end with a hyphen"
	}
	return ""
}

// Slugify 把显示名转换为用户名候选
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = slugSpaces.ReplaceAllString(slug, "-")
	slug = slugHyphens.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	// 给数字后缀留出空间
	if len(slug) > UsernameMaxLength-5 {
		slug = strings.Trim(slug[:UsernameMaxLength-5], "-")
	}
	for len(slug) < UsernameMinLength {
		slug += "0"
	}
	return slug
}
