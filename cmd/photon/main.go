package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-chi/chi"
	"github.com/golang-migrate/migrate/v4"
	migratep "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Decentr-net/logrus/sentry"

	"github.com/Decentr-net/photon/internal/consumer/relay"
	"github.com/Decentr-net/photon/internal/events"
	"github.com/Decentr-net/photon/internal/events/natsbus"
	"github.com/Decentr-net/photon/internal/health"
	mm "github.com/Decentr-net/photon/internal/middleware"
	"github.com/Decentr-net/photon/internal/middleware/memory"
	redisc "github.com/Decentr-net/photon/internal/middleware/redis"
	"github.com/Decentr-net/photon/internal/realtime"
	"github.com/Decentr-net/photon/internal/server"
	"github.com/Decentr-net/photon/internal/service/impl"
	"github.com/Decentr-net/photon/internal/session"
	sessionredis "github.com/Decentr-net/photon/internal/session/redis"
	"github.com/Decentr-net/photon/internal/storage/postgres"
)

// nolint:lll,gochecknoglobals
var opts = struct {
	Host           string        `long:"http.host" env:"HTTP_HOST" default:"0.0.0.0" description:"IP to listen on"`
	Port           int           `long:"http.port" env:"HTTP_PORT" default:"8080" description:"port to listen on for insecure connections"`
	PublicURL      string        `long:"http.public_url" env:"HTTP_PUBLIC_URL" default:"http://localhost:8080" description:"base url of service used in links to files and posts"`
	RequestTimeout time.Duration `long:"http.request_timeout" env:"HTTP_REQUEST_TIMEOUT" default:"30s" description:"request processing timeout"`
	RateLimit      float64       `long:"http.rate_limit" env:"HTTP_RATE_LIMIT" default:"20" description:"requests per second allowed from one ip, 0 disables limiter"`
	RateBurst      int           `long:"http.rate_burst" env:"HTTP_RATE_BURST" default:"40" description:"burst of requests allowed from one ip"`

	Postgres                   string `long:"postgres" env:"POSTGRES" default:"host=localhost port=5432 user=postgres password=root sslmode=disable" description:"postgres dsn"`
	PostgresMaxOpenConnections int    `long:"postgres.max_open_connections" env:"POSTGRES_MAX_OPEN_CONNECTIONS" default:"0" description:"postgres maximal open connections count, 0 means unlimited"`
	PostgresMaxIdleConnections int    `long:"postgres.max_idle_connections" env:"POSTGRES_MAX_IDLE_CONNECTIONS" default:"5" description:"postgres maximal idle connections count"`
	PostgresMigrations         string `long:"postgres.migrations" env:"POSTGRES_MIGRATIONS" default:"scripts/migrations/postgres" description:"postgres migrations directory"`

	Redis        string `long:"redis" env:"REDIS" default:"redis://localhost:6379/0" description:"redis url"`
	CacheBackend string `long:"cache.backend" env:"CACHE_BACKEND" default:"redis" description:"storage of cached responses" choice:"redis" choice:"memory"`

	Nats string `long:"nats" env:"NATS" description:"nats url; events are delivered to local subscribers directly when empty"`

	SessionSecret string        `long:"session.secret" env:"SESSION_SECRET" required:"true" description:"secret used to sign session tokens"`
	SessionTTL    time.Duration `long:"session.ttl" env:"SESSION_TTL" default:"168h" description:"session lifetime"`
	StoryTTL      time.Duration `long:"stories.ttl" env:"STORIES_TTL" default:"24h" description:"story lifetime"`

	RealtimeBufferSize int `long:"realtime.buffer_size" env:"REALTIME_BUFFER_SIZE" default:"64" description:"count of events queued for websocket client before it is dropped"`

	LogLevel  string `long:"log.level" env:"LOG_LEVEL" default:"info" description:"Log level" choice:"debug" choice:"info" choice:"warning" choice:"error"`
	SentryDSN string `long:"sentry.dsn" env:"SENTRY_DSN" description:"sentry dsn"`
}{}

var errTerminated = errors.New("terminated")

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithError(err).Fatal("failed to load .env")
	}

	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "Photon"
	parser.LongDescription = "Photon is a photo sharing service"

	_, err := parser.Parse()

	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			parser.WriteHelp(os.Stdout)
			os.Exit(0)
		}
		logrus.WithError(err).Fatal("error occurred while parsing flags")
	}

	lvl, _ := logrus.ParseLevel(opts.LogLevel) // err will always be nil
	logrus.SetLevel(lvl)

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		dump := opts
		dump.SessionSecret = "***"
		logrus.Debug(spew.Sdump(dump))
	}

	if opts.SentryDSN != "" {
		hook, err := sentry.NewHook(sentry.Options{
			Dsn:              opts.SentryDSN,
			AttachStacktrace: true,
			Release:          health.GetVersion(),
			ServerName:       "photon",
		}, logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel)

		if err != nil {
			logrus.WithError(err).Fatal("failed to init sentry")
		}

		logrus.AddHook(hook)
	} else {
		logrus.Info("empty sentry dsn")
		logrus.Warn("skip sentry initialization")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := mustGetDB()
	rc := mustGetRedis(ctx)

	s := postgres.New(db)
	hub := realtime.NewHub(opts.RealtimeBufferSize, s)
	sessions := session.NewManager([]byte(opts.SessionSecret), opts.SessionTTL, sessionredis.New(rc))

	pingers := []health.Pinger{
		health.SubjectPinger("postgres", s.Ping),
		health.SubjectPinger("redis", func(ctx context.Context) error {
			return rc.Ping(ctx).Err()
		}),
	}

	gr, ctx := errgroup.WithContext(ctx)

	var publisher events.Publisher = hub
	if opts.Nats != "" {
		nc := mustGetNats()
		defer nc.Close()

		c := relay.New(nc, hub)
		pingers = append(pingers, c)
		publisher = natsbus.New(nc)

		gr.Go(func() error {
			return c.Run(ctx)
		})
	} else {
		logrus.Info("empty nats url, events are delivered locally")
	}

	var limiter *mm.RateLimiter
	if opts.RateLimit > 0 {
		limiter = mm.NewRateLimiter(rate.Limit(opts.RateLimit), opts.RateBurst)
	}

	var cache mm.Storage = redisc.NewStorage(rc)
	if opts.CacheBackend == "memory" {
		cache = memory.NewStorage()
	}

	r := chi.NewMux()
	r.Get("/health", health.Handler(5*time.Second, pingers...))

	server.SetupRouter(r, server.Config{
		Storage:     s,
		Service:     impl.New(s, sessions, publisher, opts.StoryTTL),
		Sessions:    sessions,
		Realtime:    hub,
		Cache:       cache,
		RateLimiter: limiter,
		Timeout:     opts.RequestTimeout,
		PublicURL:   opts.PublicURL,
	})

	srv := http.Server{
		Addr:              fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	gr.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	gr.Go(func() error {
		<-ctx.Done()

		sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer scancel()

		return srv.Shutdown(sctx)
	})
	gr.Go(func() error {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

		select {
		case s := <-sigs:
			logrus.Infof("terminating by %s signal", s)
		case <-ctx.Done():
			return nil
		}

		cancel()

		return errTerminated
	})

	logrus.WithField("addr", srv.Addr).Info("service started")

	if err := gr.Wait(); err != nil && !errors.Is(err, errTerminated) {
		logrus.WithError(err).Fatal("service unexpectedly closed")
	}
}

func mustGetDB() *sql.DB {
	db, err := sql.Open("postgres", opts.Postgres)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create postgres connection")
	}
	db.SetMaxOpenConns(opts.PostgresMaxOpenConnections)
	db.SetMaxIdleConns(opts.PostgresMaxIdleConnections)

	if err := db.PingContext(context.Background()); err != nil {
		logrus.WithError(err).Fatal("failed to ping postgres")
	}

	driver, err := migratep.WithInstance(db, &migratep.Config{})
	if err != nil {
		logrus.WithError(err).Fatal("failed to create database migrate driver")
	}

	migrator, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", opts.PostgresMigrations), "postgres", driver)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create migrator")
	}

	switch v, d, err := migrator.Version(); err {
	case nil:
		logrus.Infof("database version %d with dirty state %t", v, d)
	case migrate.ErrNilVersion:
		logrus.Info("database version: nil")
	default:
		logrus.WithError(err).Fatal("failed to get version")
	}

	switch err := migrator.Up(); err {
	case nil:
		logrus.Info("database was migrated")
	case migrate.ErrNoChange:
		logrus.Info("database is up-to-date")
	default:
		logrus.WithError(err).Fatal("failed to migrate db")
	}

	return db
}

func mustGetRedis(ctx context.Context) *redis.Client {
	o, err := redis.ParseURL(opts.Redis)
	if err != nil {
		logrus.WithError(err).Fatal("failed to parse redis url")
	}

	c := redis.NewClient(o)
	if err := c.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Fatal("failed to ping redis")
	}

	return c
}

func mustGetNats() *nats.Conn {
	nc, err := nats.Connect(opts.Nats,
		nats.Name("photon"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logrus.WithError(err).Warn("nats disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logrus.WithField("url", c.ConnectedUrl()).Info("nats reconnected")
		}),
	)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to nats")
	}

	return nc
}
