package core

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // embedded zoneinfo

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Database engines
const (
	EnginePostgres = "postgres" // lib/pq
	EnginePgx      = "pgx"      // jackc/pgx stdlib
	EngineSQLite   = "sqlite3"  // mattn/go-sqlite3
)

// Mail backends
const (
	MailConsole  = "console"
	MailSendgrid = "sendgrid"
	MailSMTP     = "smtp"
)

type (
	ServerConfig struct {
		Host            string        `mapstructure:"host" validate:"required"`
		DebugHost       string        `mapstructure:"debugHost"`
		ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
		JWTSecret       string        `mapstructure:"jwtSecret"`
	}

	DatabaseConfig struct {
		Engine        string `mapstructure:"engine" validate:"oneof=postgres pgx sqlite3"`
		Host          string `mapstructure:"host" validate:"required_unless=Engine sqlite3"`
		Port          int    `mapstructure:"port"`
		Name          string `mapstructure:"name" validate:"required_unless=Engine sqlite3"`
		User          string `mapstructure:"user"`
		Password      string `mapstructure:"password"`
		AdminUser     string `mapstructure:"adminUser"`
		AdminPassword string `mapstructure:"adminPassword"`
		DisableTLS    bool   `mapstructure:"disableTLS"`
		Path          string `mapstructure:"path" validate:"required_if=Engine sqlite3"`
	}

	MailConfig struct {
		Enabled        bool   `mapstructure:"enabled"`
		Backend        string `mapstructure:"backend" validate:"oneof=console sendgrid smtp"`
		FromEmail      string `mapstructure:"fromEmail" validate:"omitempty,email"`
		FromName       string `mapstructure:"fromName"`
		SendgridAPIKey string `mapstructure:"sendgridApiKey"`
		SMTPHost       string `mapstructure:"smtpHost"`
		SMTPPort       int    `mapstructure:"smtpPort"`
		SMTPUser       string `mapstructure:"smtpUser"`
		SMTPPassword   string `mapstructure:"smtpPassword"`
		TestRecipient  string `mapstructure:"testRecipient" validate:"omitempty,email"`
	}

	PortalConfig struct {
		InboxDir  string `mapstructure:"inboxDir" validate:"required"`
		OutputDir string `mapstructure:"outputDir" validate:"required"`
	}

	JobConfig struct {
		BatchSize  int `mapstructure:"batchSize" validate:"min=1"`
		CutoffDays int `mapstructure:"cutoffDays" validate:"min=0"`
	}

	Config struct {
		Env          string `mapstructure:"env" validate:"oneof=DEV TEST QA PROD"`
		Debug        bool   `mapstructure:"debug"`
		TestMode     bool   `mapstructure:"testMode"`
		AppName      string `mapstructure:"appName" validate:"required"`
		Build        string `mapstructure:"build"`
		Timezone     string `mapstructure:"timezone" validate:"required"`
		RollbarToken string `mapstructure:"rollbarToken"`

		Server   ServerConfig   `mapstructure:"server"`
		Database DatabaseConfig `mapstructure:"database"`
		Mail     MailConfig     `mapstructure:"mail"`
		Portal   PortalConfig   `mapstructure:"portal"`
		Job      JobConfig      `mapstructure:"job"`

		location *time.Location
	}
)

// Address returns the database "host:port".
func (c DatabaseConfig) Address() string {
	if c.Port == 0 {
		return c.Host
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Location is the timezone used to read report dates and to compute "today".
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Automatización Sofía Plus")
	v.SetDefault("build", "develop")
	v.SetDefault("timezone", "America/Bogota")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", ":3000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtSecret", "")

	v.SetDefault("database.engine", EnginePostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "adso076")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.path", "")

	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.backend", MailConsole)
	v.SetDefault("mail.fromEmail", "noreply@sena.edu.co")
	v.SetDefault("mail.fromName", "")
	v.SetDefault("mail.sendgridApiKey", "")
	v.SetDefault("mail.smtpHost", "smtp.gmail.com")
	v.SetDefault("mail.smtpPort", 465)
	v.SetDefault("mail.smtpUser", "")
	v.SetDefault("mail.smtpPassword", "")
	v.SetDefault("mail.testRecipient", "")

	v.SetDefault("portal.inboxDir", "downloads/inbox")
	v.SetDefault("portal.outputDir", "downloads")

	v.SetDefault("job.batchSize", 3)
	v.SetDefault("job.cutoffDays", 5)
}

// NewConfig loads the configuration for the current ENV (DEV by default) from defaults,
// an optional `config/.env.<env>` dotenv file and `<ENV>_`-prefixed environment variables
// (eg. DEV_DATABASE_HOST, PROD_MAIL_ENABLED).
func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	case "QA", "PROD":
		v.SetDefault("debug", false)
	}
	v.Set("env", env)
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := new(Config)
	if err := v.Unmarshal(conf); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := conf.init(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) init() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "validating config")
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return errors.Wrapf(err, "loading timezone %q", c.Timezone)
	}
	c.location = loc
	return nil
}

// NewTestConfig returns a valid in-memory configuration for tests.
func NewTestConfig() *Config {
	conf := &Config{
		Env:      "TEST",
		TestMode: true,
		AppName:  "Sofía Test",
		Build:    "test",
		Timezone: "America/Bogota",
		Server:   ServerConfig{Host: ":0", ShutdownTimeout: time.Second},
		Database: DatabaseConfig{Engine: EngineSQLite, Path: ":memory:"},
		Mail:     MailConfig{Enabled: true, Backend: MailConsole, FromEmail: "noreply@test.co"},
		Portal:   PortalConfig{InboxDir: os.TempDir(), OutputDir: os.TempDir()},
		Job:      JobConfig{BatchSize: 3, CutoffDays: 5},
	}
	if err := conf.init(); err != nil {
		panic(fmt.Sprintf("core.NewTestConfig: %v", err))
	}
	return conf
}
