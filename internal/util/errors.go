package util

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// 错误分类：对应 400/401/403/404/409
var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

var (
	ErrUserNotFound       = fmt.Errorf("%w: user", ErrNotFound)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	ErrUsernameTaken      = fmt.Errorf("%w: username already registered", ErrConflict)
	ErrEmailRegistered    = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrInvalidRole        = fmt.Errorf("%w: invalid role", ErrValidation)
)

func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Forbiddenf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// NotFoundOr 把 gorm.ErrRecordNotFound 转换成 ErrNotFound，其他错误原样返回
func NotFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundf("%s", what)
	}
	return err
}

// UserNotFoundOr 用户查询未命中时返回 ErrUserNotFound
func UserNotFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}
