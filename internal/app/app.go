package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cinetick/ticketing/internal/bus"
	"github.com/cinetick/ticketing/internal/domain"
	"github.com/cinetick/ticketing/internal/mailer"
	"github.com/cinetick/ticketing/internal/payment"
	"github.com/cinetick/ticketing/internal/pipeline"
	"github.com/cinetick/ticketing/internal/queue"
	"github.com/cinetick/ticketing/internal/repository"
	appvalidator "github.com/cinetick/ticketing/internal/validator"
	"github.com/cinetick/ticketing/internal/vcs"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v82"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var (
	version = vcs.Version()
)

type Application struct {
	config    Config
	logger    *slog.Logger
	db        *pgxpool.Pool
	redis     redis.UniversalClient
	validator *validator.Validate
	mailer    mailer.Mailer

	bus          *bus.Bus
	queue        queue.Queue
	scheduler    *pipeline.Scheduler
	materializer *pipeline.Materializer

	movieRepo    domain.MovieRepository
	theaterRepo  domain.TheaterRepository
	showtimeRepo domain.ShowtimeRepository
	ticketRepo   domain.TicketRepository
	paymentRepo  domain.PaymentRepository
	customerRepo domain.CustomerRepository

	paymentProvider domain.PaymentProvider

	wg sync.WaitGroup
}

type Config struct {
	Port             int
	Env              string
	OtelCollectorUrl string

	DB struct {
		Dsn          string
		MaxOpenConns int
		MaxIdleTime  time.Duration
	}

	Redis struct {
		Url string
	}

	Rabbit struct {
		Url string
	}

	Pipeline struct {
		Workers    int
		MaxRetries uint64
		LockTTL    time.Duration
	}

	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		Sender   string
	}

	Stripe struct {
		SecretKey     string
		Currency      string
		PaymentMethod string
	}
}

// New wires an Application from its external dependencies. Repositories, the
// event bus and the pipeline stages are built here so that the integration
// suite can assemble a fully working app against containers.
func New(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient redis.UniversalClient,
	q queue.Queue,
	provider domain.PaymentProvider,
	m mailer.Mailer,
) *Application {
	movieRepo := repository.NewPostgresMovieRepository(db)
	theaterRepo := repository.NewPostgresTheaterRepository(db)
	showtimeRepo := repository.NewPostgresShowtimeRepository(db)
	ticketRepo := repository.NewPostgresTicketRepository(db)
	paymentRepo := repository.NewPostgresPaymentRepository(db)
	customerRepo := repository.NewPostgresCustomerRepository(db)

	b := bus.New()
	locks := pipeline.NewRedisBatchLocker(redisClient)

	opts := pipeline.Options{
		Workers:    cfg.Pipeline.Workers,
		MaxRetries: cfg.Pipeline.MaxRetries,
		LockTTL:    cfg.Pipeline.LockTTL,
	}

	return &Application{
		config:          cfg,
		logger:          logger,
		db:              db,
		redis:           redisClient,
		validator:       appvalidator.NewValidator(),
		mailer:          m,
		bus:             b,
		queue:           q,
		scheduler:       pipeline.NewScheduler(q, b, locks, movieRepo, theaterRepo, showtimeRepo, logger, opts),
		materializer:    pipeline.NewMaterializer(b, locks, theaterRepo, ticketRepo, logger, opts),
		movieRepo:       movieRepo,
		theaterRepo:     theaterRepo,
		showtimeRepo:    showtimeRepo,
		ticketRepo:      ticketRepo,
		paymentRepo:     paymentRepo,
		customerRepo:    customerRepo,
		paymentProvider: provider,
	}
}

func Run() error {
	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")
	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector URL")

	flag.StringVar(&cfg.DB.Dsn, "db-dsn", "", "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.Url, "redis-url", "", "Redis URL")
	flag.StringVar(&cfg.Rabbit.Url, "rabbitmq-url", "", "RabbitMQ URL")

	flag.IntVar(&cfg.Pipeline.Workers, "pipeline-workers", 2, "Queue workers per pipeline stage")
	flag.Uint64Var(&cfg.Pipeline.MaxRetries, "pipeline-max-retries", 5, "Retries per storage commit")
	flag.DurationVar(&cfg.Pipeline.LockTTL, "pipeline-lock-ttl", 24*time.Hour, "Per-batch dedupe lock TTL")

	flag.StringVar(&cfg.SMTP.Host, "smtp-host", "sandbox.smtp.mailtrap.io", "SMTP host")
	flag.IntVar(&cfg.SMTP.Port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.SMTP.Username, "smtp-username", "", "SMTP username")
	flag.StringVar(&cfg.SMTP.Password, "smtp-password", "", "SMTP password")
	flag.StringVar(&cfg.SMTP.Sender, "smtp-sender", "CineTick <no-reply@cinetick.example>", "SMTP sender")

	flag.StringVar(&cfg.Stripe.SecretKey, "stripe-key", "", "Stripe secret key")
	flag.StringVar(&cfg.Stripe.Currency, "stripe-currency", "usd", "Stripe charge currency")
	flag.StringVar(&cfg.Stripe.PaymentMethod, "stripe-payment-method", "", "Stripe default payment method")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	stripe.Key = cfg.Stripe.SecretKey

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := newDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := newRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	rabbitQueue, err := queue.NewRabbitQueue(cfg.Rabbit.Url, logger)
	if err != nil {
		return err
	}
	defer rabbitQueue.Close()

	stripeProvider := payment.NewStripePaymentProvider(cfg.Stripe.Currency, cfg.Stripe.PaymentMethod)
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender)

	app := New(cfg, logger, db, redisClient, rabbitQueue, stripeProvider, smtpMailer)

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	if cfg.OtelCollectorUrl != "" {
		app.logger = slog.New(NewMultiHandler(
			slog.NewTextHandler(os.Stdout, nil),
			otelslog.NewHandler("ticketing-api"),
		))
	}

	return app.run()
}

func newRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Url,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func newDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.Dsn)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// StartPipeline launches the asynchronous stages. They stop when ctx is
// cancelled.
func (app *Application) StartPipeline(ctx context.Context) {
	app.wg.Add(2)

	go func() {
		defer app.wg.Done()

		err := app.scheduler.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			app.logger.Error("scheduler stopped", "error", err)
		}
	}()

	go func() {
		defer app.wg.Done()

		err := app.materializer.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			app.logger.Error("materializer stopped", "error", err)
		}
	}()
}

func (app *Application) run() error {
	pipelineCtx, stopPipeline := context.WithCancel(context.Background())
	defer stopPipeline()

	app.StartPipeline(pipelineCtx)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
			return
		}

		stopPipeline()
		app.bus.Close()
		app.wg.Wait()

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(app.recoverPanic)

	r.Get("/health", app.GetHealthHandler)

	r.Route("/showtimes", func(r chi.Router) {
		r.Post("/", app.CreateShowtimesHandler)
		r.Get("/", app.GetShowtimesHandler)
		r.Get("/sales", app.GetShowtimeSalesHandler)
		r.Get("/{showtimeId}", app.GetShowtimeHandler)
	})

	r.Get("/tickets", app.GetTicketsHandler)
	r.Post("/purchases", app.CreatePurchaseHandler)
	r.Get("/customers/{customerId}/recommendations", app.GetRecommendationsHandler)

	r.Route("/events", func(r chi.Router) {
		r.Get("/showtimes", app.ShowtimeEventsHandler)
		r.Get("/tickets", app.TicketEventsHandler)
	})

	return r
}
