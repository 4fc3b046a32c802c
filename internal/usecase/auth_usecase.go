package usecase

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"toko/internal/config"
	"toko/internal/domain/model"
	repo "toko/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// accesstokenの有効期限
const accessTokenTTL = 15 * time.Minute

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

type UserDTO struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type AuthLoginOutput struct {
	User        UserDTO `json:"user"`
	AccessToken string  `json:"access_token"`
	ExpiresIn   int     `json:"expires_in"`
}

type AuthUsecase struct {
	users     repo.UserRepository
	validator AuthValidator
	cfg       config.Config
	logger    *zap.Logger
}

func NewAuthUsecase(users repo.UserRepository, validator AuthValidator, cfg config.Config, logger *zap.Logger) *AuthUsecase {
	return &AuthUsecase{users: users, validator: validator, cfg: cfg, logger: logger}
}

// 会員登録。パスワードはbcryptでハッシュして保存する
func (u *AuthUsecase) Register(ctx context.Context, email string, password string) (UserDTO, error) {
	if err := u.validator.ValidateRegister(ctx, email, password); err != nil {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toUserDTO(user), nil
}

// ログイン。成功したらHS256のアクセストークンを発行する
func (u *AuthUsecase) Login(ctx context.Context, email string, password string) (AuthLoginOutput, error) {
	if err := u.validator.ValidateLogin(ctx, email, password); err != nil {
		return AuthLoginOutput{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return AuthLoginOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//存在しないかパスワード不一致は同じ401（ユーザーの有無を漏らさない）
	if user == nil || !user.IsActive {
		return AuthLoginOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return AuthLoginOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	now := time.Now()
	expiresAt := now.Add(accessTokenTTL)

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(u.cfg.JWTSecret))
	if err != nil {
		return AuthLoginOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	//最終ログインを更新（失敗してもログだけ）
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		u.logger.Warn("last login update failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	return AuthLoginOutput{
		User:        toUserDTO(user),
		AccessToken: signed,
		ExpiresIn:   int(accessTokenTTL.Seconds()),
	}, nil
}

// ログイン中ユーザーのプロフィール
func (u *AuthUsecase) Me(ctx context.Context, userID int64) (UserDTO, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err == repo.ErrUserNotFound {
		return UserDTO{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toUserDTO(user), nil
}

func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Email:    u.Email,
		Role:     string(u.Role),
		IsActive: u.IsActive,
	}
}
