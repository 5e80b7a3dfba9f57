package config

import (
	"errors"
	"fmt"
	"net"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/image-compressor/internal/model"
)

// ErrProfileNotFound is returned when no profile has the requested name.
var ErrProfileNotFound = errors.New("profile not found")

// EnvPrefix prefixes environment overrides, e.g. IMGC_WORKERS.
const EnvPrefix = "IMGC"

// Config holds the main configuration for the application.
type Config struct {
	Threads       int             `mapstructure:"threads"`        // CPU threads budgeted for AVIF; 0 = all
	Workers       int             `mapstructure:"workers"`        // Files compressed concurrently
	LockPaths     bool            `mapstructure:"lock_paths"`     // Serialize runs on the same source path
	ActiveProfile string          `mapstructure:"active_profile"` // Profile used when none is named
	Profiles      []model.Profile `mapstructure:"-"`

	Trash    Trash    `mapstructure:"trash"`
	Storage  Storage  `mapstructure:"storage"`
	Kafka    Kafka    `mapstructure:"kafka"`
	Database Database `mapstructure:"database"`
	Server   Server   `mapstructure:"server"`
	Retry    Retry    `mapstructure:"retry"`
	Watch    Watch    `mapstructure:"watch"`
}

// Trash selects where replaced originals go.
type Trash struct {
	Backend string `mapstructure:"backend"` // "local" or "bucket"
	Prefix  string `mapstructure:"prefix"`  // Object prefix for the bucket backend
}

// Server holds HTTP server-related configuration.
type Server struct {
	Host           string   `mapstructure:"host"`            // Interface to listen on
	HTTPPort       string   `mapstructure:"http_port"`       // HTTP port to listen on
	AllowedOrigins []string `mapstructure:"allowed_origins"` // Browser origins allowed by CORS; none by default
}

// Addr returns the listen address.
func (s Server) Addr() string {
	return net.JoinHostPort(s.Host, s.HTTPPort)
}

// Database holds database master and slave configuration.
type Database struct {
	Enabled bool           `mapstructure:"enabled"` // Journal outcomes to postgres
	Master  DatabaseNode   `mapstructure:"master"`
	Slaves  []DatabaseNode `mapstructure:"slaves"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DatabaseNode holds connection parameters for a single database node.
type DatabaseNode struct {
	Host    string `mapstructure:"host"`
	Port    string `mapstructure:"port"`
	User    string `mapstructure:"user"`
	Pass    string `mapstructure:"pass"`
	Name    string `mapstructure:"name"`
	SSLMode string `mapstructure:"ssl_mode"`
}

// Storage holds configuration for the object storage used by the bucket trash.
type Storage struct {
	Endpoint   string `mapstructure:"endpoint"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	BucketName string `mapstructure:"bucket_name"`
	UseSSL     bool   `mapstructure:"use_ssl"`
}

// Kafka holds configuration for the Kafka message queue.
type Kafka struct {
	GroupID      string   `mapstructure:"group_id"`      // Consumer group ID
	Topic        string   `mapstructure:"topic"`         // Topic jobs are read from
	ResultsTopic string   `mapstructure:"results_topic"` // Topic reports are written to
	Brokers      []string `mapstructure:"brokers"`       // List of Kafka broker addresses
}

// Retry defines retry policy configuration.
type Retry struct {
	Attempts int           `mapstructure:"attempts"` // Number of retry attempts
	Delay    time.Duration `mapstructure:"delay"`    // Initial delay between retries
	Backoff  float64       `mapstructure:"backoff"`  // Backoff multiplier for delays
}

// Watch configures watch mode.
type Watch struct {
	Debounce time.Duration `mapstructure:"debounce"` // Quiet period before a changed file is compressed
}

// DSN returns the PostgreSQL DSN string for connecting to this database node.
func (n DatabaseNode) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		n.User, n.Pass, n.Host, n.Port, n.Name, n.SSLMode,
	)
}

// TotalThreads returns the configured thread count, or the number of CPUs
// when none is configured.
func (c *Config) TotalThreads() int {
	if c.Threads > 0 {
		return c.Threads
	}
	return runtime.NumCPU()
}

// Profile returns the profile called name. An empty name selects the active profile.
func (c *Config) Profile(name string) (model.Profile, error) {
	if name == "" {
		name = c.ActiveProfile
	}
	for _, p := range c.Profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return model.Profile{}, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	var errs []error

	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.Trash.Backend != "local" && c.Trash.Backend != "bucket" {
		errs = append(errs, fmt.Errorf("unknown trash backend %q", c.Trash.Backend))
	}

	seen := make(map[string]bool, len(c.Profiles))
	for _, p := range c.Profiles {
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("duplicate profile %q", p.Name))
		}
		seen[p.Name] = true
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("profile %q: %w", p.Name, err))
		}
	}
	if _, err := c.Profile(""); err != nil {
		errs = append(errs, fmt.Errorf("active profile: %w", err))
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("threads", 0)
	v.SetDefault("workers", 4)
	v.SetDefault("lock_paths", true)
	v.SetDefault("active_profile", model.DefaultProfile().Name)

	v.SetDefault("trash.backend", "local")
	v.SetDefault("trash.prefix", "trash")

	v.SetDefault("storage.use_ssl", false)

	v.SetDefault("kafka.group_id", "image-compressor")
	v.SetDefault("kafka.topic", "compress-jobs")
	v.SetDefault("kafka.results_topic", "compress-results")
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.master.host", "localhost")
	v.SetDefault("database.master.port", "5432")
	v.SetDefault("database.master.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.http_port", "8080")

	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.delay", time.Second)
	v.SetDefault("retry.backoff", 2.0)

	v.SetDefault("watch.debounce", 500*time.Millisecond)
}

// bindEnv binds sensitive settings to their conventional variable names.
func bindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"database.master.host": "DB_HOST",
		"database.master.port": "DB_PORT",
		"database.master.user": "DB_USER",
		"database.master.pass": "DB_PASSWORD",
		"database.master.name": "DB_NAME",
		"storage.access_key":   "MINIO_ACCESS_KEY",
		"storage.secret_key":   "MINIO_SECRET_KEY",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}
	return nil
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// Load reads the configuration at path. An empty path looks for
// config.yml in ./config and falls back to defaults when there is none.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	profiles, err := decodeProfiles(v.Get("profiles"))
	if err != nil {
		return nil, err
	}
	cfg.Profiles = profiles

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads the configuration from the specified file path.
// It panics if the configuration file cannot be loaded or unmarshaled.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		zlog.Logger.Panic().Err(err).Msg("failed to load config")
	}
	return cfg
}

// decodeProfiles decodes each configured profile on top of the defaults, so
// a profile only lists the options it changes. Without any configured
// profile the default one is used.
func decodeProfiles(raw any) ([]model.Profile, error) {
	if raw == nil {
		return []model.Profile{model.DefaultProfile()}, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("failed to decode profiles: expected a list, got %T", raw)
	}

	profiles := make([]model.Profile, 0, len(items))
	for i, item := range items {
		p := model.DefaultProfile()
		p.Name = ""

		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook:       decodeHook(),
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			Result:           &p,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create profile decoder: %w", err)
		}
		if err := dec.Decode(item); err != nil {
			return nil, fmt.Errorf("failed to decode profile %d: %w", i, err)
		}
		if p.Name == "" {
			return nil, fmt.Errorf("profile %d has no name", i)
		}

		profiles = append(profiles, p)
	}

	return profiles, nil
}
