package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	API           APIConfig           `mapstructure:"api"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Site          SiteConfig          `mapstructure:"site"`
	Mail          MailConfig          `mapstructure:"mail"`
	Announcements AnnouncementsConfig `mapstructure:"announcements"`
	Twitter       TwitterConfig       `mapstructure:"twitter"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Archive       ArchiveConfig       `mapstructure:"archive"`
	Ops           OpsConfig           `mapstructure:"ops"`
}

// APIConfig holds REST API server configuration.
type APIConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds connection settings for Ion's PostgreSQL database.
type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	PoolMin        int32         `mapstructure:"pool_min"`
	PoolMax        int32         `mapstructure:"pool_max"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	Output    string `mapstructure:"output"` // stdout (default) or file
	FilePath  string `mapstructure:"file_path"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
	MaxFiles  int    `mapstructure:"max_files"`
}

// SiteConfig describes the public Ion site that notification links point at.
type SiteConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// SchoolEmailDomain builds a user's fallback address as username@domain.
	// Leave empty to disable fallback addresses.
	SchoolEmailDomain string `mapstructure:"school_email_domain"`
}

// MailConfig selects and configures the outgoing mail provider.
type MailConfig struct {
	Provider      string        `mapstructure:"provider"` // smtp, sendgrid, resend, stdout, file
	From          string        `mapstructure:"from"`
	SubjectPrefix string        `mapstructure:"subject_prefix"`
	TemplateDir   string        `mapstructure:"template_dir"`
	APIKey        string        `mapstructure:"api_key"`
	Endpoint      string        `mapstructure:"endpoint"`
	OutputDir     string        `mapstructure:"output_dir"`
	Timeout       time.Duration `mapstructure:"timeout"`
	SMTP          SMTPConfig    `mapstructure:"smtp"`
}

// SMTPConfig holds settings for relaying through an SMTP server.
type SMTPConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	TLS                string `mapstructure:"tls"` // none, starttls, implicit
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
	HeloName           string `mapstructure:"helo_name"`
}

// AnnouncementsConfig holds the announcement notification switches.
type AnnouncementsConfig struct {
	EmailEnabled  bool   `mapstructure:"email_enabled"`
	ApprovalEmail string `mapstructure:"approval_email"`
}

// TwitterConfig holds the OAuth1 credential bundle for status updates.
type TwitterConfig struct {
	ConsumerKey       string        `mapstructure:"consumer_key"`
	ConsumerSecret    string        `mapstructure:"consumer_secret"`
	AccessTokenKey    string        `mapstructure:"access_token_key"`
	AccessTokenSecret string        `mapstructure:"access_token_secret"`
	ScreenName        string        `mapstructure:"screen_name"`
	Endpoint          string        `mapstructure:"endpoint"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether a complete credential bundle is present.
func (c TwitterConfig) Enabled() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" &&
		c.AccessTokenKey != "" && c.AccessTokenSecret != ""
}

// AuthConfig holds the shared secret used to verify tokens minted by Ion.
type AuthConfig struct {
	SigningKey  string        `mapstructure:"signing_key"`
	Issuer      string        `mapstructure:"issuer"`
	Audience    string        `mapstructure:"audience"`
	TokenExpiry time.Duration `mapstructure:"token_expiry"`
}

// ArchiveConfig configures where sent messages are archived.
type ArchiveConfig struct {
	Type       string `mapstructure:"type"` // none, local, s3
	Path       string `mapstructure:"path"`
	S3Bucket   string `mapstructure:"s3_bucket"`
	S3Prefix   string `mapstructure:"s3_prefix"`
	S3Endpoint string `mapstructure:"s3_endpoint"`
	S3Region   string `mapstructure:"s3_region"`
}

// OpsConfig holds settings for the ionctl deployment commands.
type OpsConfig struct {
	RedisAddr         string   `mapstructure:"redis_addr"`
	RedisPassword     string   `mapstructure:"redis_password"`
	SessionDB         int      `mapstructure:"session_db"`
	ProductionCacheDB int      `mapstructure:"production_cache_db"`
	SandboxCacheDB    int      `mapstructure:"sandbox_cache_db"`
	ProductionRoot    string   `mapstructure:"production_root"`
	SupervisorProgram string   `mapstructure:"supervisor_program"`
	ProductionDB      string   `mapstructure:"production_db"`
	SandboxDBFile     string   `mapstructure:"sandbox_db_file"`
	Fixtures          []string `mapstructure:"fixtures"`
}

// DefaultFixtures is the fixture load order used by load_fixtures.
var DefaultFixtures = []string{
	"intranet/apps/users/fixtures/users.json",
	"intranet/apps/eighth/fixtures/sponsors.json",
	"intranet/apps/eighth/fixtures/rooms.json",
	"intranet/apps/eighth/fixtures/blocks.json",
	"intranet/apps/eighth/fixtures/activities.json",
	"intranet/apps/eighth/fixtures/s_activities.json",
	"intranet/apps/eighth/fixtures/signups_0.json",
	"intranet/apps/announcements/fixtures/announcements.json",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", 10*time.Second)
	v.SetDefault("api.write_timeout", 60*time.Second)

	v.SetDefault("database.pool_min", 1)
	v.SetDefault("database.pool_max", 5)
	v.SetDefault("database.connect_timeout", 5*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_files", 5)

	v.SetDefault("site.base_url", "http://localhost:8000")

	v.SetDefault("mail.provider", "stdout")
	v.SetDefault("mail.from", "ion-noreply@localhost")
	v.SetDefault("mail.subject_prefix", "[Ion] ")
	v.SetDefault("mail.timeout", 30*time.Second)
	v.SetDefault("mail.smtp.port", 25)
	v.SetDefault("mail.smtp.tls", "none")

	v.SetDefault("announcements.email_enabled", false)

	v.SetDefault("twitter.screen_name", "tjintranet")
	v.SetDefault("twitter.timeout", 15*time.Second)

	v.SetDefault("auth.issuer", "ion")
	v.SetDefault("auth.audience", "ion-notify")
	v.SetDefault("auth.token_expiry", 5*time.Minute)

	v.SetDefault("archive.type", "none")
	v.SetDefault("archive.path", "./mail_archive")

	v.SetDefault("ops.redis_addr", "localhost:6379")
	v.SetDefault("ops.session_db", 0)
	v.SetDefault("ops.production_cache_db", 1)
	v.SetDefault("ops.sandbox_cache_db", 2)
	v.SetDefault("ops.production_root", "/usr/local/www/intranet3")
	v.SetDefault("ops.supervisor_program", "ion")
	v.SetDefault("ops.production_db", "ion")
	v.SetDefault("ops.sandbox_db_file", "testing_database.db")
	v.SetDefault("ops.fixtures", DefaultFixtures)

	// Keys without a meaningful default are still registered so that
	// AutomaticEnv can populate them during Unmarshal.
	for _, key := range []string{
		"database.url",
		"logging.file_path",
		"site.school_email_domain",
		"mail.template_dir", "mail.api_key", "mail.endpoint", "mail.output_dir",
		"mail.smtp.host", "mail.smtp.username", "mail.smtp.password", "mail.smtp.helo_name",
		"announcements.approval_email",
		"twitter.consumer_key", "twitter.consumer_secret",
		"twitter.access_token_key", "twitter.access_token_secret", "twitter.endpoint",
		"auth.signing_key",
		"archive.s3_bucket", "archive.s3_prefix", "archive.s3_endpoint", "archive.s3_region",
		"ops.redis_password",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("mail.smtp.insecure_skip_verify", false)
}

// Load reads configuration from the given config directory path.
// It looks for a file named "config.yaml" in that directory; a missing file
// leaves the built-in defaults in place.
// Environment variables with prefix ION_NOTIFY_ override file values.
// For example, ION_NOTIFY_MAIL_FROM overrides mail.from.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.SetEnvPrefix("ION_NOTIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
