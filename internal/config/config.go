package config

import (
	"fmt"
	"os"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	JWTSecret string // JWT署名シークレット

	GoEnv   string // dev/prod
	BaseURL string // 決済完了後のリダイレクト先の組み立てに使う

	MidtransServerKey  string // Midtrans Server Key
	MidtransClientKey  string // Midtrans Client Key（フロント用）
	MidtransProduction bool   // trueなら本番環境
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv:   getenv("GO_ENV", "dev"),
		BaseURL: getenv("BASE_URL", "http://localhost:8080"),

		MidtransServerKey:  os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransClientKey:  os.Getenv("MIDTRANS_CLIENT_KEY"),
		MidtransProduction: os.Getenv("MIDTRANS_PRODUCTION") == "true",
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.MidtransServerKey == "" {
		return Config{}, fmt.Errorf("MIDTRANS_SERVER_KEY is required")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
