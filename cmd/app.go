package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"boatbooking/internal/config"
	"boatbooking/internal/drafts"
	"boatbooking/internal/http/handlers"
	"boatbooking/internal/http/middleware"
	"boatbooking/internal/jobs"
	"boatbooking/internal/ledger"
	"boatbooking/internal/notify"
	"boatbooking/internal/payments"
	"boatbooking/internal/repositories"
	"boatbooking/internal/services"
	"boatbooking/internal/slots"
	"boatbooking/internal/tickets"
	"boatbooking/internal/uploads"
	"boatbooking/internal/utils"

	"github.com/redis/go-redis/v9"
)

// app is the wired object graph behind the serve command.
type app struct {
	db      *sql.DB
	redis   *redis.Client
	handler handlers.Handler
	sweeper *jobs.DraftSweeper
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func buildApp(ctx context.Context, env config.Env) (*app, error) {
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	db, err := config.ConnectDB(env.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	a.db = db
	repo := repositories.BookingRepository{DB: db}

	store, err := a.draftStore(env)
	if err != nil {
		return nil, err
	}

	uploadStore, err := uploadStore(ctx, env)
	if err != nil {
		return nil, err
	}

	renderer := tickets.Renderer{Store: tickets.FileStore{Dir: env.TicketsDir}}
	pipeline := services.SideEffects{Tickets: renderer, Budget: env.SideEffectBudget}
	if env.MailEnabled() {
		mailer, err := notify.NewMailer(notify.SMTPConfig{
			Host:     env.MailServer,
			Port:     env.MailPort,
			UseTLS:   env.MailUseTLS,
			Username: env.MailUsername,
			Password: env.MailPassword,
			From:     env.MailDefaultSender,
		})
		if err != nil {
			return nil, err
		}
		pipeline.Mailer = mailer
	} else {
		utils.LogEvent("", "app", "build", "mail not configured, ticket emails disabled")
	}
	if env.LedgerEnabled() {
		sheet, err := ledger.NewSheets(ctx, env.GoogleServiceAccount, env.GoogleSheetID, env.GoogleSheetRange)
		if err != nil {
			return nil, err
		}
		pipeline.Ledger = sheet
	} else {
		utils.LogEvent("", "app", "build", "google sheet not configured, ledger disabled")
	}

	bookingSvc := services.BookingService{
		Uploads:        uploadStore,
		Gateway:        gateway(env),
		Drafts:         store,
		Bookings:       repo,
		SideEffects:    pipeline,
		Tickets:        renderer,
		PricePerPerson: env.PricePerPerson,
		Currency:       env.Currency,
		DraftTTL:       env.DraftTTL,
		MaxUploadBytes: env.MaxUploadBytes,
		CommitTimeout:  drafts.DefaultLockLease / 3,
	}

	a.sweeper, err = jobs.NewDraftSweeper(store, env.DraftSweepInterval)
	if err != nil {
		return nil, err
	}

	a.handler = handlers.Handler{
		Bookings: bookingSvc,
		Slots:    services.SlotService{Catalog: slots.NewCatalog(env.SlotsPath)},
		Admin: middleware.AdminCredentials{
			Username:     env.AdminUsername,
			Password:     env.AdminPassword,
			PasswordHash: env.AdminPasswordHash,
			JWTSecret:    []byte(env.JWTSecret),
		},
		MaxUploadBytes: env.MaxUploadBytes,
		Ping:           db.PingContext,
	}

	ok = true
	return a, nil
}

func (a *app) draftStore(env config.Env) (drafts.Store, error) {
	if env.DraftBackend != config.DraftBackendRedis {
		return drafts.NewMemoryStore(env.DraftLockWait), nil
	}
	client, err := drafts.NewRedisClient(env.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	a.redis = client
	return drafts.NewRedisStore(client, env.DraftLockWait), nil
}

func uploadStore(ctx context.Context, env config.Env) (services.UploadStore, error) {
	if env.UploadBackend == config.UploadBackendS3 {
		return uploads.NewS3Store(ctx, env.S3Bucket, env.MaxUploadBytes)
	}
	return uploads.LocalStore{Dir: env.UploadDir, MaxBytes: env.MaxUploadBytes}, nil
}

func gateway(env config.Env) payments.Gateway {
	if env.PaymentMode != config.PaymentModeLive {
		utils.LogEvent("", "app", "build", "payment mode simulated, all orders are test-mode")
		return payments.Simulated{}
	}
	live := payments.NewRazorpay(env.RazorpayKeyID, env.RazorpayKeySecret)
	if !env.PaymentFallback {
		return live
	}
	return payments.Fallback{Primary: live, Secondary: payments.Simulated{}}
}
