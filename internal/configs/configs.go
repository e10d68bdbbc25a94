package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"progress-tracker.com/progress-tracker/internal/redact"
)

const (
	DriverMongoDB = "mongodb"
	DriverSQLite  = "sqlite"
)

type Config struct {
	Server   ServerConfig   `mapstructure:",squash"`
	Database DatabaseConfig `mapstructure:",squash"`
	Redis    RedisConfig    `mapstructure:",squash"`
}

type ServerConfig struct {
	Port                   int      `mapstructure:"PORT" validate:"gt=0,lt=65536"`
	Env                    string   `mapstructure:"APP_ENV" validate:"required"`
	LogLevel               string   `mapstructure:"LOG_LEVEL" validate:"oneof=fatal error warn info debug trace"`
	RateLimit              int      `mapstructure:"RATE_LIMIT_PER_MINUTE" validate:"gt=0"`
	ShutdownTimeoutSeconds int      `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS" validate:"gt=0"`
	LogBodyMaxBytes        int      `mapstructure:"LOG_BODY_MAX_BYTES" validate:"gt=0"`
	CORSAllowOrigins       []string `mapstructure:"CORS_ALLOW_ORIGINS" validate:"min=1,dive,required"`
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"STORE_DRIVER" validate:"oneof=mongodb sqlite"`
	Host       string `mapstructure:"MONGODB_HOST" validate:"required_if=Driver mongodb"`
	Port       int    `mapstructure:"MONGODB_PORT" validate:"gt=0,lt=65536"`
	Username   string `mapstructure:"MONGODB_USERNAME" validate:"required_if=Driver mongodb"`
	Password   string `mapstructure:"MONGODB_PASSWORD" validate:"required_if=Driver mongodb"`
	Name       string `mapstructure:"MONGODB_DATABASE" validate:"required_if=Driver mongodb"`
	AuthSource string `mapstructure:"MONGODB_AUTH_SOURCE" validate:"required_if=Driver mongodb"`
	SQLiteDSN  string `mapstructure:"SQLITE_DSN" validate:"required_if=Driver sqlite"`
}

type RedisConfig struct {
	Host string `mapstructure:"REDIS_HOST"`
	Port int    `mapstructure:"REDIS_PORT" validate:"gt=0,lt=65536"`
}

func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

var defaults = map[string]any{
	"PORT":                     3001,
	"APP_ENV":                  "development",
	"LOG_LEVEL":                "info",
	"RATE_LIMIT_PER_MINUTE":    120,
	"SHUTDOWN_TIMEOUT_SECONDS": 20,
	"LOG_BODY_MAX_BYTES":       10240,
	"CORS_ALLOW_ORIGINS":       "*",
	"STORE_DRIVER":             DriverMongoDB,
	"MONGODB_HOST":             "",
	"MONGODB_PORT":             27017,
	"MONGODB_USERNAME":         "",
	"MONGODB_PASSWORD":         "",
	"MONGODB_DATABASE":         "",
	"MONGODB_AUTH_SOURCE":      "admin",
	"SQLITE_DSN":               "tasks.db",
	"REDIS_HOST":               "",
	"REDIS_PORT":               6379,
}

// LoadDotEnv reads .env files into the process environment without
// overriding variables that are already set.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// Load reads the configuration from the environment and validates it. Every
// invalid field is reported in the returned error.
func Load() (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed:\n%w", err)
	}
	cfg.Server.CORSAllowOrigins = splitList(cfg.Server.CORSAllowOrigins)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := f.Tag.Get("mapstructure")
		if name == "" || strings.HasPrefix(name, ",") {
			return f.Name
		}
		return name
	})

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	lines := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		lines = append(lines, fe.Field()+" "+describe(fe))
	}
	return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "gt", "lt":
		return fmt.Sprintf("is out of range (got %v)", fe.Value())
	case "min":
		return "must not be empty"
	default:
		return "failed the " + fe.Tag() + " check"
	}
}

func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// MongoURI builds the connection string for the configured MongoDB server.
func MongoURI(db DatabaseConfig) string {
	u := url.URL{
		Scheme:   "mongodb",
		User:     url.UserPassword(db.Username, db.Password),
		Host:     net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
		Path:     "/" + db.Name,
		RawQuery: url.Values{"authSource": []string{db.AuthSource}}.Encode(),
	}
	return u.String()
}

// Summary lists the effective settings by environment key with secrets
// masked.
func (c Config) Summary() map[string]any {
	out := make(map[string]any)
	collect(reflect.ValueOf(c), out)
	return out
}

func collect(v reflect.Value, out map[string]any) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get("mapstructure")
		if v.Field(i).Kind() == reflect.Struct {
			collect(v.Field(i), out)
			continue
		}
		value := v.Field(i).Interface()
		if redact.IsSensitiveKey(name) && value != "" {
			value = redact.Placeholder
		}
		out[name] = value
	}
}
