package validator

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"toko/internal/repository"
	"toko/internal/usecase"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")

	// emailが既に使用済み
	ErrEmailAlreadyUsed = errors.New("email already used")
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return ErrInvalidInput
	}

	// email形式
	if !emailRe.MatchString(email) {
		return ErrInvalidInput
	}

	// パスワード最低文字数
	if len(password) < 8 {
		return ErrInvalidInput
	}

	// email重複チェック（DBが必要）
	u, err := v.users.FindByEmail(ctx, email)
	if err == nil && u != nil {
		return ErrEmailAlreadyUsed
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return ErrInvalidInput
	}

	// email形式
	if !emailRe.MatchString(email) {
		return ErrInvalidInput
	}

	return nil
}
