package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
	SMS       SMSConfig
	Email     EmailConfig
}

type ServerConfig struct {
	Address string
}

type DatabaseConfig struct {
	PostgresURL string
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

type SchedulerConfig struct {
	Interval time.Duration
	Timezone string
	Location *time.Location

	// Lookback widens the due-window backwards so events whose minute
	// passed while the process was down are still picked up. Zero keeps
	// the exact current-minute window.
	Lookback time.Duration
}

// SMSConfig is all-or-nothing: the SMS channel is enabled only when the
// account SID, auth token and sender number are all present.
type SMSConfig struct {
	Enabled    bool
	AccountSID string
	AuthToken  string
	FromNumber string
}

type EmailBackend string

const (
	EmailSendGrid EmailBackend = "sendgrid"
	EmailSMTP     EmailBackend = "smtp"
	EmailDisabled EmailBackend = "disabled"
)

type EmailConfig struct {
	Backend EmailBackend

	SendGridKey string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	// FromAddress is the resolved sender address fallback chain. Empty
	// means "fall back to the event owner's own email".
	FromAddress string
}

func LoadAll() (*Config, error) {
	var errs []error

	pgURL, err := requireEnv("POSTGRES_URL")
	if err != nil {
		errs = append(errs, err)
	}

	intervalSec, err := getEnvInt("SCHED_INTERVAL_SECONDS", 60)
	if err != nil {
		errs = append(errs, err)
	}
	lookbackMin, err := getEnvInt("SCHED_LOOKBACK_MINUTES", 0)
	if err != nil {
		errs = append(errs, err)
	}

	tz := getEnv("TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err))
	}

	redisCfg, err := loadRedisConfig()
	if err != nil {
		errs = append(errs, err)
	}

	smsCfg, err := loadSMSConfig()
	if err != nil {
		errs = append(errs, err)
	}

	emailCfg, err := loadEmailConfig()
	if err != nil {
		errs = append(errs, err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Address: getEnv("SERVER_ADDRESS", ":8080"),
		},
		Database: DatabaseConfig{
			PostgresURL: pgURL,
		},
		Scheduler: SchedulerConfig{
			Interval: time.Duration(intervalSec) * time.Second,
			Timezone: tz,
			Location: loc,
			Lookback: time.Duration(lookbackMin) * time.Minute,
		},
		Redis: redisCfg,
		SMS:   smsCfg,
		Email: emailCfg,
	}

	errs = append(errs, validate(cfg)...)

	if err := joinErrors(errs); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadRedisConfig() (RedisConfig, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return RedisConfig{Enabled: false}, nil
	}

	db, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return RedisConfig{}, err
	}
	ttl, err := getEnvInt("REDIS_TTL_SECONDS", 86400)
	if err != nil {
		return RedisConfig{}, err
	}

	return RedisConfig{
		Enabled:  true,
		Address:  addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
		TTL:      time.Duration(ttl) * time.Second,
	}, nil
}

func loadSMSConfig() (SMSConfig, error) {
	sid := os.Getenv("TWILIO_SID")
	auth := os.Getenv("TWILIO_AUTH")
	from := os.Getenv("TWILIO_PHONE")

	if sid == "" && auth == "" && from == "" {
		return SMSConfig{Enabled: false}, nil
	}
	if sid == "" || auth == "" || from == "" {
		return SMSConfig{}, errors.New("TWILIO_SID, TWILIO_AUTH and TWILIO_PHONE must be set together")
	}

	return SMSConfig{
		Enabled:    true,
		AccountSID: sid,
		AuthToken:  auth,
		FromNumber: from,
	}, nil
}

func loadEmailConfig() (EmailConfig, error) {
	cfg := EmailConfig{
		SendGridKey: os.Getenv("SENDGRID_API_KEY"),
		SMTPHost:    getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPUser:    os.Getenv("SMTP_USER"),
		SMTPPass:    os.Getenv("SMTP_PASS"),
	}

	port, err := getEnvInt("SMTP_PORT", 465)
	if err != nil {
		return EmailConfig{}, err
	}
	cfg.SMTPPort = port

	// Sender address fallback chain, most specific first.
	for _, v := range []string{os.Getenv("SENDGRID_SENDER_EMAIL"), cfg.SMTPUser, os.Getenv("FROM_ADDRESS")} {
		if v != "" {
			cfg.FromAddress = v
			break
		}
	}

	backend := getEnv("EMAIL_BACKEND", "auto")
	switch backend {
	case "auto":
		switch {
		case cfg.SendGridKey != "":
			cfg.Backend = EmailSendGrid
		case cfg.SMTPUser != "" && cfg.SMTPPass != "":
			cfg.Backend = EmailSMTP
		default:
			cfg.Backend = EmailDisabled
		}
	case "sendgrid":
		if cfg.SendGridKey == "" {
			return EmailConfig{}, errors.New("EMAIL_BACKEND=sendgrid requires SENDGRID_API_KEY")
		}
		cfg.Backend = EmailSendGrid
	case "smtp":
		if cfg.SMTPUser == "" || cfg.SMTPPass == "" {
			return EmailConfig{}, errors.New("EMAIL_BACKEND=smtp requires SMTP_USER and SMTP_PASS")
		}
		cfg.Backend = EmailSMTP
	case "disabled":
		cfg.Backend = EmailDisabled
	default:
		return EmailConfig{}, fmt.Errorf("invalid EMAIL_BACKEND %q (want auto, sendgrid, smtp or disabled)", backend)
	}

	return cfg, nil
}

func validate(cfg *Config) []error {
	var errs []error
	if cfg.Scheduler.Interval <= 0 {
		errs = append(errs, errors.New("SCHED_INTERVAL_SECONDS must be > 0"))
	}
	if cfg.Scheduler.Lookback < 0 {
		errs = append(errs, errors.New("SCHED_LOOKBACK_MINUTES must be >= 0"))
	}
	if cfg.Redis.Enabled && cfg.Redis.TTL <= 0 {
		errs = append(errs, errors.New("REDIS_TTL_SECONDS must be > 0"))
	}
	if cfg.Email.Backend == EmailSMTP && cfg.Email.SMTPPort <= 0 {
		errs = append(errs, errors.New("SMTP_PORT must be > 0"))
	}
	return errs
}

func requireEnv(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("missing required env var: %s", key)
	}
	return val, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for env %s: %s", key, v)
	}
	return i, nil
}

func joinErrors(errs []error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}
	if len(nonNil) == 0 {
		return nil
	}
	return errors.Join(nonNil...)
}
