package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string `env:"LISTEN_ADDR"`
	Port          string `env:"PORT" envDefault:"8082"`
	DatabasePath  string `env:"DATABASE_PATH" envDefault:"attendance.db"`
	SessionSecret string `env:"SESSION_SECRET" envDefault:"geoattend-dev-secret"`
	GinMode       string `env:"GIN_MODE" envDefault:"release"`

	// 管理员凭据为单组静态配置，按精确字符串比对校验
	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"12345"`

	// IP 定位服务地址，返回 ip-api.com 风格的 JSON
	GeoIPBaseURL string `env:"GEOIP_BASE_URL" envDefault:"http://ip-api.com"`

	// 开发环境允许的跨域来源，逗号分隔
	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:","`
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 存在 .env 文件时优先加载其中的键值。
func Load() AppConfig {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to parse environment variables: %v", err)
	}

	if strings.TrimSpace(cfg.ListenAddr) == "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", strings.TrimSpace(cfg.Port))
	}

	return cfg
}
