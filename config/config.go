// config.go

package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 服务器配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Battle   BattleConfig   `mapstructure:"battle"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// ServerConfig 服务器基本配置
type ServerConfig struct {
	BattlePort  int    `mapstructure:"battle_port"`
	FeedPort    int    `mapstructure:"feed_port"`
	GatewayPort int    `mapstructure:"gateway_port"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// BattleConfig 战斗引擎配置
type BattleConfig struct {
	// CooldownSeconds 同一账号两次战斗之间的最小间隔(秒)
	CooldownSeconds int `mapstructure:"cooldown_seconds"`
	// DailyLimit 单个账号每个自然日最多发起的战斗次数
	DailyLimit int `mapstructure:"daily_limit"`
	// DefaultRating 新战斗者的初始评分
	DefaultRating int `mapstructure:"default_rating"`
	// NewPlayerGameThreshold K系数分界的场次阈值
	NewPlayerGameThreshold int `mapstructure:"new_player_game_threshold"`
	// KNew 新手K系数
	KNew int `mapstructure:"k_new"`
	// KExperienced 老手K系数
	KExperienced int `mapstructure:"k_experienced"`
	// NPCDefenderExempt NPC作为被动方时是否豁免限制检查
	NPCDefenderExempt bool `mapstructure:"npc_defender_exempt"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	// JWTSecret JWT签名密钥
	JWTSecret string `mapstructure:"jwt_secret"`
	// TokenTTLHours 令牌有效期(小时)
	TokenTTLHours int `mapstructure:"token_ttl_hours"`
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig Config
)

// LoadConfig 从文件加载配置
func LoadConfig(configPath string) error {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	// 战斗引擎默认值
	viper.SetDefault("battle.cooldown_seconds", 10)
	viper.SetDefault("battle.daily_limit", 20)
	viper.SetDefault("battle.default_rating", 1000)
	viper.SetDefault("battle.new_player_game_threshold", 30)
	viper.SetDefault("battle.k_new", 32)
	viper.SetDefault("battle.k_experienced", 16)
	viper.SetDefault("battle.npc_defender_exempt", true)
	viper.SetDefault("auth.token_ttl_hours", 24)

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("无法读取配置文件: %w", err)
	}

	if err := viper.Unmarshal(&GlobalConfig); err != nil {
		return fmt.Errorf("无法解析配置文件: %w", err)
	}

	return nil
}

// GetDSN 获取PostgreSQL连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetRedisAddr 获取Redis连接地址
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Cooldown 冷却间隔
func (c *BattleConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// TokenTTL 令牌有效期
func (c *AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}
