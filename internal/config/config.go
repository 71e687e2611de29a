package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/core"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	Mode     string `mapstructure:"mode"` // gin 模式: debug, release, test
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Workers         int           `mapstructure:"workers"`       // 运行比赛的协程数
	MaxRooms        int           `mapstructure:"max_rooms"`     // 0 不限制
	EvictTimeout    time.Duration `mapstructure:"evict_timeout"` // 已结束房间的保留时间
}

type NATSConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	Responder     bool          `mapstructure:"responder"` // 是否在本进程提供出牌决策服务
}

type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// EngineConfig 牌局配置
type EngineConfig struct {
	Profile         string        `mapstructure:"profile"` // classic-136, sichuan-108, sichuan-strict
	Seats           int           `mapstructure:"seats"`   // 0 使用规则默认值
	FanCap          int           `mapstructure:"fan_cap"` // 0 使用规则默认值
	BaseScore       int           `mapstructure:"base_score"`
	Flowers         bool          `mapstructure:"flowers"`
	Ghosts          []string      `mapstructure:"ghosts"` // 癞子牌编码
	Hands           int           `mapstructure:"hands"`  // 每场局数
	Seed            uint64        `mapstructure:"seed"`   // 0 为随机
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`
	Retries         int           `mapstructure:"retries"`
	Backoff         time.Duration `mapstructure:"backoff"`
	Providers       []string      `mapstructure:"providers"` // 按座位: local 或 remote
}

// RuleProfile 按配置生成并校验规则
func (e EngineConfig) RuleProfile() (core.Profile, error) {
	name := e.Profile
	if name == "" {
		name = string(core.ProfileSichuan)
	}
	p, err := core.ProfileByName(name)
	if err != nil {
		return core.Profile{}, err
	}
	if e.Seats > 0 {
		p.Seats = e.Seats
	}
	if e.FanCap > 0 {
		p.FanCap = e.FanCap
	}
	if e.BaseScore > 0 {
		p.BaseScore = e.BaseScore
	}
	if e.Flowers {
		p.Flowers = true
	}
	for _, code := range e.Ghosts {
		t, err := core.ParseTile(code)
		if err != nil {
			return core.Profile{}, err
		}
		p.Ghosts = append(p.Ghosts, t)
	}
	if err := p.Validate(); err != nil {
		return core.Profile{}, err
	}
	return p, nil
}

// SetDefaults 默认值
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "mahjong")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.mode", "release")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.workers", 4)
	v.SetDefault("server.evict_timeout", 30*time.Minute)
	v.SetDefault("nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", 2*time.Second)
	v.SetDefault("engine.profile", string(core.ProfileSichuan))
	v.SetDefault("engine.hands", 1)
	v.SetDefault("engine.provider_timeout", 20*time.Second)
	v.SetDefault("engine.retries", 2)
	v.SetDefault("engine.backoff", 500*time.Millisecond)
}

// Default 不读取文件, 只使用默认值与环境变量
func Default() (*Config, error) {
	v := newViper()
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("mahjong")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load 从指定路径加载配置, 环境变量 MAHJONG_* 可覆盖文件中的值
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
