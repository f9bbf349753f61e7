package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultDotEnvPath は起動時に読み込む.envファイルのパス。
const DefaultDotEnvPath = ".env"

// Config はアプリケーション全体の設定を保持する。
// 環境変数（と任意の.envファイル）から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Metadata (Twitch Helix)
	TwitchClientID     string        `env:"TWITCH_CLIENT_ID" envDefault:"86vlcsmj0e9q2xbwl088f97i4hnu6y"`
	TwitchClientSecret string        `env:"TWITCH_CLIENT_SECRET"`
	TwitchTokenURL     string        `env:"TWITCH_TOKEN_URL" envDefault:"https://id.twitch.tv/oauth2/token"`
	TwitchAPIBase      string        `env:"TWITCH_API_BASE" envDefault:"https://api.twitch.tv/helix"`
	MetadataTimeout    time.Duration `env:"METADATA_TIMEOUT" envDefault:"10s"`

	// Search
	SearchDebounce time.Duration `env:"SEARCH_DEBOUNCE" envDefault:"300ms"`

	// Cover art backfill
	BackfillInterval    time.Duration `env:"BACKFILL_INTERVAL" envDefault:"30m"`
	BackfillConcurrency int           `env:"BACKFILL_CONCURRENCY" envDefault:"4"`

	// Activity
	ActivityRetention time.Duration `env:"ACTIVITY_RETENTION" envDefault:"24h"`
	ActivityCount     int           `env:"ACTIVITY_COUNT" envDefault:"30"`
	ActivitySeed      int64         `env:"ACTIVITY_SEED" envDefault:"0"`
	ActivityPruneTick time.Duration `env:"ACTIVITY_PRUNE_INTERVAL" envDefault:"1h"`

	// BackgroundJobs はserveモードでカバーアート補完・アクティビティ削除ジョブを同じプロセスで動かすか。
	// セッション中のコレクションはプロセス内にのみ存在するため、通常は有効のままにする。
	BackgroundJobs bool `env:"BACKGROUND_JOBS" envDefault:"true"`

	// Session
	DefaultUserID string `env:"DEFAULT_USER_ID" envDefault:"user1"`

	// Rate Limit
	RateLimitGeneral int `env:"RATE_LIMIT_GENERAL" envDefault:"120"`

	// Export
	ExportDir string `env:"EXPORT_DIR" envDefault:"."`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Server
	ServerPort        string `env:"SERVER_PORT" envDefault:"8080"`
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:5173"`
	// PublicBaseURL はAtomフィードのリンク先となるフロントエンドのURL。
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:5173"`
}

// MetadataEnabled はクライアントシークレットが設定されているかを返す。
// 未設定の場合、メタデータ検索は「利用不可」として空の結果を返す。
func (c *Config) MetadataEnabled() bool {
	return strings.TrimSpace(c.TwitchClientSecret) != ""
}

// Load は環境変数とカレントディレクトリの.envファイルからConfigを読み込む。
func Load() (*Config, error) {
	return LoadFrom(DefaultDotEnvPath)
}

// LoadFrom は環境変数と指定された.envファイルからConfigを読み込む。
// .envファイルが存在しない場合は無視する。プロセスの環境変数が.envより優先される。
func LoadFrom(dotenvPath string) (*Config, error) {
	environ := env.ToMap(os.Environ())

	if dotenvPath != "" {
		fileVars, err := godotenv.Read(dotenvPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", dotenvPath, err)
		}
		for k, v := range fileVars {
			if _, ok := environ[k]; !ok {
				environ[k] = v
			}
		}
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate は値の範囲を検証する。
func (c *Config) validate() error {
	var invalid []string

	if strings.TrimSpace(c.TwitchClientID) == "" {
		invalid = append(invalid, "TWITCH_CLIENT_ID")
	}
	if c.MetadataTimeout <= 0 {
		invalid = append(invalid, "METADATA_TIMEOUT")
	}
	if c.SearchDebounce <= 0 {
		invalid = append(invalid, "SEARCH_DEBOUNCE")
	}
	if c.BackfillInterval <= 0 {
		invalid = append(invalid, "BACKFILL_INTERVAL")
	}
	if c.BackfillConcurrency < 1 {
		invalid = append(invalid, "BACKFILL_CONCURRENCY")
	}
	if c.ActivityRetention <= 0 {
		invalid = append(invalid, "ACTIVITY_RETENTION")
	}
	if c.ActivityCount < 0 {
		invalid = append(invalid, "ACTIVITY_COUNT")
	}
	if c.ActivityPruneTick <= 0 {
		invalid = append(invalid, "ACTIVITY_PRUNE_INTERVAL")
	}
	if c.RateLimitGeneral < 1 {
		invalid = append(invalid, "RATE_LIMIT_GENERAL")
	}
	if strings.TrimSpace(c.DefaultUserID) == "" {
		invalid = append(invalid, "DEFAULT_USER_ID")
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid environment variables: %v", invalid)
	}
	return nil
}
