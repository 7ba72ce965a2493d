package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Payment gateway strategies.
const (
	PaymentModeLive      = "live"
	PaymentModeSimulated = "simulated"
)

// Draft store backends.
const (
	DraftBackendMemory = "memory"
	DraftBackendRedis  = "redis"
)

// Upload store backends.
const (
	UploadBackendLocal = "local"
	UploadBackendS3    = "s3"
)

// maxPricePerPerson keeps a full boat's charge in minor units far from int64 overflow.
const maxPricePerPerson = 1_000_000_000

type Env struct {
	AppAddr  string
	GinMode  string
	LogLevel string
	BaseURL  string

	HTTPWriteTimeout time.Duration
	SideEffectBudget time.Duration

	DatabaseDSN string

	PricePerPerson int64
	Currency       string

	PaymentMode       string
	PaymentFallback   bool
	RazorpayKeyID     string
	RazorpayKeySecret string

	DraftBackend       string
	RedisURL           string
	DraftTTL           time.Duration
	DraftSweepInterval time.Duration
	DraftLockWait      time.Duration

	UploadBackend  string
	UploadDir      string
	S3Bucket       string
	MaxUploadBytes int64

	TicketsDir string
	SlotsPath  string

	MailServer        string
	MailPort          int
	MailUseTLS        bool
	MailUsername      string
	MailPassword      string
	MailDefaultSender string

	GoogleServiceAccount string
	GoogleSheetID        string
	GoogleSheetRange     string

	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string
	JWTSecret         string

	CORSAllowedOrigins []string
}

// LoadEnv reads configuration from the environment, loading a .env file first when present.
func LoadEnv() (Env, error) {
	_ = godotenv.Load()

	env := Env{
		AppAddr:  envDefault("APP_ADDR", ":8080"),
		GinMode:  strings.TrimSpace(os.Getenv("GIN_MODE")),
		LogLevel: envDefault("LOG_LEVEL", "info"),
		BaseURL:  envDefault("BASE_URL", "http://127.0.0.1:8080"),

		DatabaseDSN: envDefault("DATABASE_DSN", "root:@tcp(127.0.0.1:3306)/boating?parseTime=true&loc=Local&charset=utf8mb4"),

		Currency: strings.ToUpper(envDefault("CURRENCY", "INR")),

		PaymentMode:       strings.ToLower(envDefault("PAYMENT_MODE", PaymentModeSimulated)),
		RazorpayKeyID:     strings.TrimSpace(os.Getenv("RAZORPAY_KEY_ID")),
		RazorpayKeySecret: strings.TrimSpace(os.Getenv("RAZORPAY_KEY_SECRET")),

		DraftBackend: strings.ToLower(envDefault("DRAFT_BACKEND", DraftBackendMemory)),
		RedisURL:     strings.TrimSpace(os.Getenv("REDIS_URL")),

		UploadBackend: strings.ToLower(envDefault("UPLOAD_BACKEND", UploadBackendLocal)),
		UploadDir:     envDefault("UPLOAD_DIR", "uploads/id_proofs"),
		S3Bucket:      strings.TrimSpace(os.Getenv("S3_BUCKET")),

		TicketsDir: envDefault("TICKETS_DIR", "instance/tickets"),
		SlotsPath:  envDefault("SLOTS_PATH", "data/slots.json"),

		MailServer:        envDefault("MAIL_SERVER", "smtp.gmail.com"),
		MailUsername:      strings.TrimSpace(os.Getenv("MAIL_USERNAME")),
		MailPassword:      os.Getenv("MAIL_PASSWORD"),
		MailDefaultSender: strings.TrimSpace(os.Getenv("MAIL_DEFAULT_SENDER")),

		GoogleServiceAccount: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT")),
		GoogleSheetID:        strings.TrimSpace(os.Getenv("GOOGLE_SHEET_ID")),
		GoogleSheetRange:     envDefault("GOOGLE_SHEET_RANGE", "Bookings!A1"),

		AdminUsername:     envDefault("ADMIN_USERNAME", "owner"),
		AdminPassword:     envDefault("ADMIN_PASSWORD", "change-this"),
		AdminPasswordHash: strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_HASH")),
		JWTSecret:         envDefault("JWT_SECRET", "dev-key"),

		CORSAllowedOrigins: splitList(envDefault("CORS_ALLOWED_ORIGINS",
			"http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")),
	}

	var err error
	if env.PricePerPerson, err = envInt64("PRICE_PER_PERSON", 500); err != nil {
		return env, err
	}
	if env.PricePerPerson <= 0 || env.PricePerPerson > maxPricePerPerson {
		return env, fmt.Errorf("PRICE_PER_PERSON must be between 1 and %d", maxPricePerPerson)
	}
	if env.PaymentFallback, err = envBool("PAYMENT_FALLBACK", true); err != nil {
		return env, err
	}
	if env.DraftTTL, err = envDuration("DRAFT_TTL", 30*time.Minute); err != nil {
		return env, err
	}
	if env.DraftSweepInterval, err = envDuration("DRAFT_SWEEP_INTERVAL", 5*time.Minute); err != nil {
		return env, err
	}
	if env.DraftLockWait, err = envDuration("DRAFT_LOCK_WAIT", 5*time.Second); err != nil {
		return env, err
	}
	if env.HTTPWriteTimeout, err = envDuration("HTTP_WRITE_TIMEOUT", 60*time.Second); err != nil {
		return env, err
	}
	if env.SideEffectBudget, err = envDuration("SIDE_EFFECT_BUDGET", 20*time.Second); err != nil {
		return env, err
	}
	if env.MaxUploadBytes, err = envInt64("MAX_UPLOAD_BYTES", 8*1024*1024); err != nil {
		return env, err
	}
	port, err := envInt64("MAIL_PORT", 587)
	if err != nil {
		return env, err
	}
	env.MailPort = int(port)
	if env.MailUseTLS, err = envBool("MAIL_USE_TLS", true); err != nil {
		return env, err
	}

	return env, env.validate()
}

func (e Env) validate() error {
	switch e.PaymentMode {
	case PaymentModeSimulated:
	case PaymentModeLive:
		if e.RazorpayKeyID == "" || e.RazorpayKeySecret == "" {
			return fmt.Errorf("PAYMENT_MODE=live requires RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET")
		}
	default:
		return fmt.Errorf("PAYMENT_MODE must be %q or %q, got %q", PaymentModeLive, PaymentModeSimulated, e.PaymentMode)
	}

	switch e.DraftBackend {
	case DraftBackendMemory:
	case DraftBackendRedis:
		if e.RedisURL == "" {
			return fmt.Errorf("DRAFT_BACKEND=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("DRAFT_BACKEND must be %q or %q, got %q", DraftBackendMemory, DraftBackendRedis, e.DraftBackend)
	}

	switch e.UploadBackend {
	case UploadBackendLocal:
	case UploadBackendS3:
		if e.S3Bucket == "" {
			return fmt.Errorf("UPLOAD_BACKEND=s3 requires S3_BUCKET")
		}
	default:
		return fmt.Errorf("UPLOAD_BACKEND must be %q or %q, got %q", UploadBackendLocal, UploadBackendS3, e.UploadBackend)
	}

	if e.DraftTTL <= 0 {
		return fmt.Errorf("DRAFT_TTL must be positive")
	}
	if e.DraftSweepInterval <= 0 {
		return fmt.Errorf("DRAFT_SWEEP_INTERVAL must be positive")
	}
	if e.SideEffectBudget <= 0 {
		return fmt.Errorf("SIDE_EFFECT_BUDGET must be positive")
	}
	// verify responds only after the pipeline; leave room to write the body
	if e.SideEffectBudget > e.HTTPWriteTimeout/2 {
		return fmt.Errorf("SIDE_EFFECT_BUDGET (%s) must be at most half of HTTP_WRITE_TIMEOUT (%s)", e.SideEffectBudget, e.HTTPWriteTimeout)
	}
	return nil
}

// MailEnabled reports whether SMTP credentials are configured.
func (e Env) MailEnabled() bool {
	return e.MailUsername != "" && e.MailServer != ""
}

// LedgerEnabled reports whether the spreadsheet ledger is configured.
func (e Env) LedgerEnabled() bool {
	return e.GoogleServiceAccount != "" && e.GoogleSheetID != ""
}

func envDefault(k, d string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	return v
}

func envInt64(k string, d int64) (int64, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return n, nil
}

func envBool(k string, d bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", k, err)
	}
	return b, nil
}

func envDuration(k string, d time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d, nil
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return dur, nil
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
