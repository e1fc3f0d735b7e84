package config

import (
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

var envMu sync.Mutex

func TestLoadAll_Defaults(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	t.Setenv("POSTGRES_URL", "postgres://u:p@localhost:5432/db?sslmode=disable")

	cfg, err := LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}

	if cfg.Database.PostgresURL != "postgres://u:p@localhost:5432/db?sslmode=disable" {
		t.Fatalf("unexpected PostgresURL: %q", cfg.Database.PostgresURL)
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("unexpected Server.Address default: %q", cfg.Server.Address)
	}
	if cfg.Scheduler.Interval != 60*time.Second {
		t.Fatalf("unexpected Scheduler.Interval default: %v", cfg.Scheduler.Interval)
	}
	if cfg.Scheduler.Timezone != "Asia/Kolkata" {
		t.Fatalf("unexpected Scheduler.Timezone default: %q", cfg.Scheduler.Timezone)
	}
	if cfg.Scheduler.Location == nil {
		t.Fatalf("expected Scheduler.Location to be resolved")
	}
	if cfg.Scheduler.Lookback != 0 {
		t.Fatalf("unexpected Scheduler.Lookback default: %v", cfg.Scheduler.Lookback)
	}

	if cfg.Redis.Enabled {
		t.Fatalf("expected Redis disabled when REDIS_ADDR not set")
	}
	if cfg.SMS.Enabled {
		t.Fatalf("expected SMS disabled when Twilio env not set")
	}
	if cfg.Email.Backend != EmailDisabled {
		t.Fatalf("expected email disabled, got %q", cfg.Email.Backend)
	}
}

func TestLoadAll_WithRedis(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	t.Setenv("POSTGRES_URL", "postgres://u:p@localhost:5432/db?sslmode=disable")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_PASSWORD", "secret")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_TTL_SECONDS", "42")

	cfg, err := LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}

	if !cfg.Redis.Enabled {
		t.Fatalf("expected Redis enabled")
	}
	if cfg.Redis.Address != "localhost:6379" {
		t.Fatalf("unexpected Redis.Address: %q", cfg.Redis.Address)
	}
	if cfg.Redis.Password != "secret" {
		t.Fatalf("unexpected Redis.Password: %q", cfg.Redis.Password)
	}
	if cfg.Redis.DB != 3 {
		t.Fatalf("unexpected Redis.DB: %d", cfg.Redis.DB)
	}
	if cfg.Redis.TTL != 42*time.Second {
		t.Fatalf("unexpected Redis.TTL: %v", cfg.Redis.TTL)
	}
}

func TestLoadAll_TwilioAllOrNothing(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	t.Run("fully configured", func(t *testing.T) {
		clearTestEnv(t)

		t.Setenv("POSTGRES_URL", "postgres://u:p@localhost:5432/db")
		t.Setenv("TWILIO_SID", "AC123")
		t.Setenv("TWILIO_AUTH", "token")
		t.Setenv("TWILIO_PHONE", "+15550000000")

		cfg, err := LoadAll()
		if err != nil {
			t.Fatalf("LoadAll() error: %v", err)
		}
		if !cfg.SMS.Enabled {
			t.Fatalf("expected SMS enabled")
		}
		if cfg.SMS.AccountSID != "AC123" || cfg.SMS.AuthToken != "token" || cfg.SMS.FromNumber != "+15550000000" {
			t.Fatalf("unexpected SMS config: %+v", cfg.SMS)
		}
	})

	t.Run("partial configuration is an error", func(t *testing.T) {
		clearTestEnv(t)

		t.Setenv("POSTGRES_URL", "postgres://u:p@localhost:5432/db")
		t.Setenv("TWILIO_SID", "AC123")

		_, err := LoadAll()
		if err == nil {
			t.Fatalf("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "TWILIO") {
			t.Fatalf("expected error mentioning TWILIO, got: %v", err)
		}
	})
}

func TestLoadAll_EmailBackendResolution(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	cases := []struct {
		name    string
		set     map[string]string
		want    EmailBackend
		wantErr string
	}{
		{
			name: "auto picks sendgrid when key present",
			set:  map[string]string{"SENDGRID_API_KEY": "sg", "SMTP_USER": "u", "SMTP_PASS": "p"},
			want: EmailSendGrid,
		},
		{
			name: "auto picks smtp when only smtp creds present",
			set:  map[string]string{"SMTP_USER": "u", "SMTP_PASS": "p"},
			want: EmailSMTP,
		},
		{
			name: "auto disables when nothing configured",
			set:  map[string]string{},
			want: EmailDisabled,
		},
		{
			name:    "explicit sendgrid without key",
			set:     map[string]string{"EMAIL_BACKEND": "sendgrid"},
			wantErr: "SENDGRID_API_KEY",
		},
		{
			name:    "explicit smtp without creds",
			set:     map[string]string{"EMAIL_BACKEND": "smtp"},
			wantErr: "SMTP_USER",
		},
		{
			name: "explicit disabled wins over creds",
			set:  map[string]string{"EMAIL_BACKEND": "disabled", "SENDGRID_API_KEY": "sg"},
			want: EmailDisabled,
		},
		{
			name:    "unknown backend",
			set:     map[string]string{"EMAIL_BACKEND": "pigeon"},
			wantErr: "EMAIL_BACKEND",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			clearTestEnv(t)

			t.Setenv("POSTGRES_URL", "postgres://u:p@localhost:5432/db")
			for k, v := range tc.set {
				t.Setenv(k, v)
			}

			cfg, err := LoadAll()
			if tc.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error mentioning %s, got: %v", tc.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("LoadAll() error: %v", err)
			}
			if cfg.Email.Backend != tc.want {
				t.Fatalf("expected backend %q, got %q", tc.want, cfg.Email.Backend)
			}
		})
	}
}

func TestLoadAll_FromAddressFallbackChain(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	cases := []struct {
		name string
		set  map[string]string
		want string
	}{
		{
			name: "sendgrid sender wins",
			set: map[string]string{
				"SENDGRID_SENDER_EMAIL": "sg@x.com",
				"SMTP_USER":             "smtp@x.com",
				"FROM_ADDRESS":          "from@x.com",
			},
			want: "sg@x.com",
		},
		{
			name: "smtp user next",
			set:  map[string]string{"SMTP_USER": "smtp@x.com", "FROM_ADDRESS": "from@x.com"},
			want: "smtp@x.com",
		},
		{
			name: "from address last",
			set:  map[string]string{"FROM_ADDRESS": "from@x.com"},
			want: "from@x.com",
		},
		{
			name: "empty means sender's own email",
			set:  map[string]string{},
			want: "",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			clearTestEnv(t)

			t.Setenv("POSTGRES_URL", "postgres://u:p@localhost:5432/db")
			for k, v := range tc.set {
				t.Setenv(k, v)
			}

			cfg, err := LoadAll()
			if err != nil {
				t.Fatalf("LoadAll() error: %v", err)
			}
			if cfg.Email.FromAddress != tc.want {
				t.Fatalf("expected FromAddress %q, got %q", tc.want, cfg.Email.FromAddress)
			}
		})
	}
}

func TestLoadAll_RequiredEnvMissing(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	_, err := LoadAll()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "POSTGRES_URL") {
		t.Fatalf("expected error mentioning POSTGRES_URL, got: %v", err)
	}
}

func TestLoadAll_InvalidInts(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	cases := []struct {
		name string
		key  string
		val  string
	}{
		{"invalid SCHED_INTERVAL_SECONDS", "SCHED_INTERVAL_SECONDS", "nope"},
		{"invalid SCHED_LOOKBACK_MINUTES", "SCHED_LOOKBACK_MINUTES", "x"},
		{"invalid SMTP_PORT", "SMTP_PORT", "abc"},
		{"invalid REDIS_DB", "REDIS_DB", "bad"},
		{"invalid REDIS_TTL_SECONDS", "REDIS_TTL_SECONDS", "bad"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			clearTestEnv(t)

			t.Setenv("POSTGRES_URL", "postgres://u:p@localhost:5432/db")

			// Enable redis only for redis-related invalid ints.
			if strings.HasPrefix(tc.key, "REDIS_") {
				t.Setenv("REDIS_ADDR", "localhost:6379")
			}

			t.Setenv(tc.key, tc.val)

			_, err := LoadAll()
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.key) {
				t.Fatalf("expected error mentioning %s, got: %v", tc.key, err)
			}
		})
	}
}

func TestLoadAll_ValidationFailures(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	cases := []struct {
		name string
		set  map[string]string
		want string
	}{
		{
			name: "interval <= 0",
			set:  map[string]string{"SCHED_INTERVAL_SECONDS": "0"},
			want: "SCHED_INTERVAL_SECONDS",
		},
		{
			name: "lookback < 0",
			set:  map[string]string{"SCHED_LOOKBACK_MINUTES": "-5"},
			want: "SCHED_LOOKBACK_MINUTES",
		},
		{
			name: "redis ttl <= 0",
			set:  map[string]string{"REDIS_ADDR": "localhost:6379", "REDIS_TTL_SECONDS": "0"},
			want: "REDIS_TTL_SECONDS",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			clearTestEnv(t)

			t.Setenv("POSTGRES_URL", "postgres://u:p@localhost:5432/db")
			for k, v := range tc.set {
				t.Setenv(k, v)
			}

			_, err := LoadAll()
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %s, got: %v", tc.want, err)
			}
		})
	}
}

func TestLoadAll_InvalidTimezone(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	t.Setenv("POSTGRES_URL", "postgres://u:p@localhost:5432/db")
	t.Setenv("TIMEZONE", "Not/AZone")

	_, err := LoadAll()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "TIMEZONE") {
		t.Fatalf("expected error mentioning TIMEZONE, got: %v", err)
	}
}

func TestRequireEnv(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	_, err := requireEnv("MISSING_KEY")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}

	t.Setenv("FOO", "bar")
	v, err := requireEnv("FOO")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "bar" {
		t.Fatalf("expected %q, got %q", "bar", v)
	}
}

func TestGetEnv(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	if got := getEnv("NOPE", "default"); got != "default" {
		t.Fatalf("expected default, got %q", got)
	}

	t.Setenv("A", "x")
	if got := getEnv("A", "default"); got != "x" {
		t.Fatalf("expected x, got %q", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	envMu.Lock()
	defer envMu.Unlock()

	clearTestEnv(t)

	got, err := getEnvInt("MISSING", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 {
		t.Fatalf("expected default 7, got %d", got)
	}

	t.Setenv("N", "123")
	got, err = getEnvInt("N", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 123 {
		t.Fatalf("expected 123, got %d", got)
	}

	t.Setenv("BAD", "abc")
	_, err = getEnvInt("BAD", 7)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "BAD") {
		t.Fatalf("expected error mentioning BAD, got: %v", err)
	}
}

func TestJoinErrors(t *testing.T) {
	if err := joinErrors(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	e1 := errors.New("one")
	e2 := errors.New("two")
	err := joinErrors([]error{e1, e2})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}

	if !errors.Is(err, e1) {
		t.Fatalf("expected errors.Is(err, e1) to be true")
	}
	if !errors.Is(err, e2) {
		t.Fatalf("expected errors.Is(err, e2) to be true")
	}
}

func clearTestEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"POSTGRES_URL",
		"SERVER_ADDRESS",
		"TIMEZONE",
		"SCHED_INTERVAL_SECONDS",
		"SCHED_LOOKBACK_MINUTES",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"REDIS_TTL_SECONDS",
		"TWILIO_SID",
		"TWILIO_AUTH",
		"TWILIO_PHONE",
		"EMAIL_BACKEND",
		"SENDGRID_API_KEY",
		"SENDGRID_SENDER_EMAIL",
		"SMTP_HOST",
		"SMTP_PORT",
		"SMTP_USER",
		"SMTP_PASS",
		"FROM_ADDRESS",
		"FOO",
		"A",
		"N",
		"BAD",
	}
	for _, k := range keys {
		_ = os.Unsetenv(k)
	}
}
