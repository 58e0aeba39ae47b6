package logger

import (
	"strings"

	"go.uber.org/zap"
)

// New 按运行模式创建 zap 日志器：prod/production 输出 JSON，其余为开发模式
func New(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}
