// Package errs 定义跨层共享的错误哨兵，handler 据此映射 HTTP 状态码
package errs

import "errors"

var (
	// ErrUnauthenticated 调用方没有可解析的身份
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrForbidden 身份有效但不拥有/不参与目标实体
	ErrForbidden = errors.New("not authorized")

	// ErrNotFound 目标实体不存在
	ErrNotFound = errors.New("not found")

	// ErrConflict 状态冲突（重复滑动、资料已存在等）
	ErrConflict = errors.New("conflict")

	// ErrInvalidArgument 参数不合法或内容被过滤
	ErrInvalidArgument = errors.New("invalid argument")
)

var (
	// ErrDuplicateSwipe 对同一用户重复滑动
	ErrDuplicateSwipe = Wrap(ErrConflict, "already swiped on this user")

	// ErrProfileExists 用户资料已存在
	ErrProfileExists = Wrap(ErrConflict, "profile already exists")
)

// wrapped 保留哨兵链，同时只输出人类可读的消息
type wrapped struct {
	kind error
	msg  string
}

func (e *wrapped) Error() string { return e.msg }

func (e *wrapped) Unwrap() error { return e.kind }

// Wrap 用给定消息包装哨兵错误
func Wrap(kind error, msg string) error {
	return &wrapped{kind: kind, msg: msg}
}
