package repository

import (
	"context"
	"errors"

	"toko/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	//IDからユーザーを1件取得。いなければErrUserNotFound
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//メールからユーザーを1件取得。いなければnil
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	//最終ログインなどの更新
	Update(ctx context.Context, user *model.User) error
}
