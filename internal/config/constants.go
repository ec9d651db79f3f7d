// internal/config/constants.go
package config

import "time"

// アプリケーション情報
const (
	AppName    = "FlashStudy"
	AppVersion = "0.4.0"
)

// デフォルト設定値
const (
	DefaultServerPort       = ":8080"
	DefaultLogLevel         = "info"
	DefaultAuthEnabled      = true
	DefaultLeaderboardLimit = 50
	DefaultQuestRetainDays  = 30
	DefaultAccessTokenTTL   = 24 * time.Hour
	DefaultMasteryTarget    = 3
	DefaultSessionTTL       = 2 * time.Hour
	DefaultMaxDeckSize      = 500
)
