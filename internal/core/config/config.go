package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const DefaultPath = "./configs/config.local.yaml"

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

// Limits feed the middleware chain.
type Limits struct {
	RPS               float64
	Burst             int
	PerIP             bool
	MaxInflight       int64
	MaxBodyBytes      int64
	RequestTimeoutSec int
}

type App struct {
	Name    string
	Version string
	Env     string
	HTTP    HTTP
	Limits  Limits
}

type FileLog struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  FileLog
}

type JWT struct {
	Secret            string
	Issuer            string
	Algorithm         string
	AccessTokenTTLMin int
	LeewaySec         int
}

func (j JWT) TTL() time.Duration    { return time.Duration(j.AccessTokenTTLMin) * time.Minute }
func (j JWT) Leeway() time.Duration { return time.Duration(j.LeewaySec) * time.Second }

type Auth struct {
	BcryptCost    int
	ProtectWrites bool
}

// SeedUser is an account loaded at startup with an already-hashed password,
// e.g. from `qa-api hash-password` or a passlib pbkdf2-sha256 export.
type SeedUser struct {
	Email        string
	Name         string
	PasswordHash string `mapstructure:"password_hash"`
}

type Seed struct {
	Enabled bool
	Users   []SeedUser
}

type Bugs struct {
	DefaultReporter string
}

type Config struct {
	App  App
	Log  Log
	JWT  JWT
	Auth Auth
	Seed Seed
	Bugs Bugs
}

var supportedAlgs = map[string]bool{"HS256": true, "HS384": true, "HS512": true}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "QA Assignment API")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8000)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.limits.rps", 200)
	v.SetDefault("app.limits.burst", 400)
	v.SetDefault("app.limits.perip", false)
	v.SetDefault("app.limits.maxinflight", 300)
	v.SetDefault("app.limits.maxbodybytes", 1<<20)
	v.SetDefault("app.limits.requesttimeoutsec", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/api.log")
	v.SetDefault("log.file.maxsizemb", 100)
	v.SetDefault("log.file.maxbackups", 5)
	v.SetDefault("log.file.maxagedays", 14)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("jwt.secret", "your-secret-key-change-in-production")
	v.SetDefault("jwt.issuer", "")
	v.SetDefault("jwt.algorithm", "HS256")
	v.SetDefault("jwt.accesstokenttlmin", 30)
	v.SetDefault("jwt.leewaysec", 0)

	v.SetDefault("auth.bcryptcost", 10)
	v.SetDefault("auth.protectwrites", false)
	v.SetDefault("seed.enabled", true)
	v.SetDefault("bugs.defaultreporter", "tester@buggy.com")
}

// Load reads path (or CONFIG_PATH, or DefaultPath) and applies APP_* env
// overrides, e.g. APP_JWT_SECRET. A missing default file is not an error; an
// explicitly requested one is.
func Load(path string) (*Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = DefaultPath
			explicit = false
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, errors.New("jwt.secret must not be empty"))
	}
	if c.JWT.AccessTokenTTLMin <= 0 {
		errs = append(errs, fmt.Errorf("jwt.accesstokenttlmin must be positive, got %d", c.JWT.AccessTokenTTLMin))
	}
	if !supportedAlgs[c.JWT.Algorithm] {
		errs = append(errs, fmt.Errorf("jwt.algorithm %q is not supported", c.JWT.Algorithm))
	}
	for i, u := range c.Seed.Users {
		if u.Email == "" || u.PasswordHash == "" {
			errs = append(errs, fmt.Errorf("seed.users[%d] needs email and password_hash", i))
		}
	}
	if c.JWT.LeewaySec < 0 {
		errs = append(errs, errors.New("jwt.leewaysec must not be negative"))
	}
	if c.App.HTTP.Port <= 0 || c.App.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("app.http.port %d out of range", c.App.HTTP.Port))
	}
	lim := c.App.Limits
	if lim.RPS <= 0 || lim.Burst <= 0 || lim.MaxInflight <= 0 || lim.MaxBodyBytes <= 0 || lim.RequestTimeoutSec <= 0 {
		errs = append(errs, errors.New("app.limits values must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool { return strings.EqualFold(c.App.Env, "production") }
