// Package config loads server settings from defaults, an optional YAML file
// and the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the complete server configuration.
type Config struct {
	Neo4j   Neo4jConfig   `mapstructure:"neo4j"`
	Server  ServerConfig  `mapstructure:"server"`
	DataDir string        `mapstructure:"data_dir" validate:"required"`
	Logging LoggingConfig `mapstructure:"logging"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// Neo4jConfig holds graph store connection settings.
type Neo4jConfig struct {
	URI                          string        `mapstructure:"uri" validate:"required"`
	Username                     string        `mapstructure:"username"`
	Password                     string        `mapstructure:"password"`
	Database                     string        `mapstructure:"database"`
	MaxConnectionPoolSize        int           `mapstructure:"max_connection_pool_size" validate:"min=1"`
	ConnectionAcquisitionTimeout time.Duration `mapstructure:"connection_acquisition_timeout" validate:"gt=0"`
}

// ServerConfig selects the MCP transport. BearerToken guards the HTTP
// transport when set.
type ServerConfig struct {
	Transport   string `mapstructure:"transport" validate:"oneof=stdio http"`
	Port        int    `mapstructure:"port" validate:"min=1,max=65535"`
	BearerToken string `mapstructure:"bearer_token"`
}

// LoggingConfig configures the stderr logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// TracingConfig enables OTLP export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	Insecure    bool   `mapstructure:"insecure"`
	ServiceName string `mapstructure:"service_name" validate:"required"`
}

// envBindings maps keys to the environment variables conventionally used
// for a Neo4j connection and an MCP bearer token. Every other key reads
// KNOWLEDGE_<KEY>.
var envBindings = map[string]string{
	"neo4j.uri":      "NEO4J_URI",
	"neo4j.username": "NEO4J_USERNAME",
	"neo4j.password": "NEO4J_PASSWORD",
	"neo4j.database": "NEO4J_DATABASE",

	"server.bearer_token": "MCP_BEARER_TOKEN",
}

// New returns a viper instance carrying every default and env binding.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("neo4j.uri", "neo4j://localhost:7687")
	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.password", "")
	v.SetDefault("neo4j.database", "")
	v.SetDefault("neo4j.max_connection_pool_size", 50)
	v.SetDefault("neo4j.connection_acquisition_timeout", "10s")
	v.SetDefault("server.transport", "stdio")
	v.SetDefault("server.port", 8081)
	v.SetDefault("server.bearer_token", "")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.service_name", "knowledge-mcp")

	v.SetEnvPrefix("KNOWLEDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		// BindEnv only fails when no key is given.
		_ = v.BindEnv(key, env, "KNOWLEDGE_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}
	return v
}

// Load reads path into v when path is non-empty, then decodes and validates
// the merged settings.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks cfg and reports every invalid field.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "validate config")
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		msgs = append(msgs, formatValidationError(e))
	}
	return errors.Errorf("configuration validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func formatValidationError(e validator.FieldError) string {
	path := fieldPath(e.Namespace())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", path)
	case "min":
		return fmt.Sprintf("%s must be at least %s (got: %v)", path, e.Param(), e.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s (got: %v)", path, e.Param(), e.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got: %v)", path, e.Param(), e.Value())
	default:
		return fmt.Sprintf("%s failed validation '%s' (got: %v)", path, e.Tag(), e.Value())
	}
}

// fieldPath turns "Config.Neo4j.MaxConnectionPoolSize" into
// "neo4j.max_connection_pool_size".
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) <= 1 {
		return namespace
	}
	out := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		out = append(out, camelToSnake(p))
	}
	return strings.Join(out, ".")
}

func camelToSnake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if i > 0 && upper && (runes[i-1] < 'A' || runes[i-1] > 'Z') && !isDigit(runes[i-1]) {
			b.WriteRune('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
