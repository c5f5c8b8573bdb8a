package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/5w1tchy/locallibrary/internal/api/handlers/catalog"
	mw "github.com/5w1tchy/locallibrary/internal/api/middlewares"
	"github.com/5w1tchy/locallibrary/internal/api/router"
	"github.com/5w1tchy/locallibrary/internal/auth"
	"github.com/5w1tchy/locallibrary/internal/config"
	"github.com/5w1tchy/locallibrary/internal/maintenance"
	"github.com/5w1tchy/locallibrary/internal/metrics/viewqueue"
	"github.com/5w1tchy/locallibrary/internal/repository/sqlconnect"
	jwtutil "github.com/5w1tchy/locallibrary/internal/security/jwt"
	"github.com/5w1tchy/locallibrary/internal/security/password"
	"github.com/5w1tchy/locallibrary/internal/session"
	"github.com/5w1tchy/locallibrary/internal/storage/s3"
	catalogstore "github.com/5w1tchy/locallibrary/internal/store/catalog"
	"github.com/5w1tchy/locallibrary/internal/store/statscache"
	"github.com/5w1tchy/locallibrary/internal/validate"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load(".env", "../../.env")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := validate.Env(os.Getenv); err != nil {
		log.Fatalf("config: %v", err)
	}
	for _, w := range validate.HardeningWarnings(cfg.AppEnv, os.Getenv) {
		log.Printf("[config] warning: %s", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlconnect.ConnectDB(ctx, cfg.DatabaseURL, sqlconnect.Pool{MaxOpen: cfg.DBMaxOpen})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb, err := newRedis(cfg)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()
	// Fail fast if Redis isn't reachable
	if err := validate.PingRedis(rdb, 3*time.Second); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	fmt.Println("✅ Connected to Redis")

	// Catalog
	store := catalogstore.New(db, catalogstore.WithDeletePolicy(cfg.DeletePolicy))
	views := viewqueue.New(db, cfg.ViewQueueBuffer)
	views.Start(cfg.ViewQueueWorkers)
	maintenance.StartViewEventsRetention(ctx, db, cfg.ViewRetention, cfg.RetentionAt, cfg.RetentionTZ)

	placeholder := cfg.DeathPlaceholder
	sessions := session.NewRedisStore(rdb, cfg.SessionTTL)
	pages := catalog.New(store, sessions, catalog.Options{
		BooksPageSize:    cfg.BooksPageSize,
		AuthorsPageSize:  cfg.AuthorsPageSize,
		LoansPageSize:    cfg.LoansPageSize,
		BookListAuxData:  config.BookListAuxData,
		RenewalDefault:   cfg.RenewalDefault,
		RenewalMaxAhead:  cfg.RenewalMaxAhead,
		DeathPlaceholder: &placeholder,
	})
	pages.Stats = statscache.New(rdb, cfg.IndexStatsTTL)
	pages.Views = views

	covers, err := s3.NewFromEnv(ctx)
	if err != nil {
		log.Fatalf("s3: %v", err)
	}
	if covers != nil {
		pages.Covers = covers
	}

	// Accounts
	signer := jwtutil.New(jwtutil.Config{
		Secret:    []byte(cfg.JWTSecret),
		ClockSkew: cfg.ClockSkew,
		AccessTTL: cfg.AccessTTL,
	})
	users := auth.NewSQLStore(db)
	accounts := auth.New(users, auth.NewRedisRefresh(rdb, cfg.RefreshTTL), signer,
		password.NewHasher(password.ParamsFromEnv(os.Getenv)))
	accounts.RefreshTTL = cfg.RefreshTTL
	accounts.SecureCookies = cfg.SecureCookies
	accounts.Sessions = sessions

	mux := router.Router(cfg, router.Deps{
		Catalog:  pages,
		Accounts: accounts,
		Guard:    mw.NewAuth(signer, users, cfg.LoginURL),
		RDB:      rdb,
	})

	csrf := mw.DefaultCSRFOptions()
	csrf.CookieSecure = cfg.SecureCookies

	sw := mw.NewRedisSlidingWindow(rdb, 3000, 60*time.Minute, mw.PerIPKey("sw"))

	secureMux := mw.Chain(mux,
		mw.RequestID,
		mw.Recovery,
		mw.ResponseTime,
		mw.SecurityHeaders(cfg.AppEnv == "production"),
		mw.Compression,
		mw.BodySizeLimit(1<<20),
		sw.Middleware,
		mw.HPP(mw.DefaultHPPOptions()),
		mw.CSRF(csrf),
		mw.Session(mw.SessionOptions{
			CookieName: cfg.SessionCookie,
			TTL:        cfg.SessionTTL,
			Secure:     cfg.SecureCookies,
		}),
	)

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           secureMux,
		ReadHeaderTimeout: 5 * time.Second,
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	go func() {
		fmt.Println("Server is running on port:", cfg.Port)
		var err error
		if cfg.CertFile != "" {
			err = server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalln("Error starting server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	views.Shutdown()
}

// newRedis builds the client from REDIS_URL, or from REDIS_ADDR and friends.
func newRedis(cfg config.Config) (*redis.Client, error) {
	if cfg.RedisURL != "" {
		// e.g. rediss://default:<token>@host:port
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		opt.DialTimeout = 5 * time.Second
		opt.ReadTimeout = 1 * time.Second
		opt.WriteTimeout = 1 * time.Second
		return redis.NewClient(opt), nil
	}

	if cfg.RedisAddr == "" {
		return nil, errors.New("missing Redis config: set REDIS_URL or REDIS_ADDR")
	}
	opt := &redis.Options{
		Addr:         cfg.RedisAddr,
		Username:     cfg.RedisUser,
		Password:     cfg.RedisPassword,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	}
	// Hosted Redis with credentials speaks TLS
	if cfg.RedisPassword != "" {
		opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opt), nil
}
