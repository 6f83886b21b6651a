package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ryghoul/akobylee/internal/cache"
	"github.com/ryghoul/akobylee/internal/checkout"
	"github.com/ryghoul/akobylee/internal/domain"
	"github.com/ryghoul/akobylee/internal/httpapi"
	"github.com/ryghoul/akobylee/internal/mailer"
	"github.com/ryghoul/akobylee/internal/metrics"
	"github.com/ryghoul/akobylee/internal/payments"
	"github.com/ryghoul/akobylee/internal/relay"
	"github.com/ryghoul/akobylee/internal/repository"
	"github.com/ryghoul/akobylee/internal/service"
)

type Config struct {
	HTTPPort       string
	PublicBaseURL  string
	StaticDir      string
	AllowedOrigins []string

	MongoURI    string
	MongoDBName string

	RedisAddr     string
	RedisPassword string

	StripeSecretKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	ToEmail      string
	StoreName    string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	port := getEnv("PORT", "3000")
	baseURL := strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/")
	if baseURL == "" {
		baseURL = "http://localhost:" + port
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		smtpPort = 587
	}

	smtpUser := getEnv("EMAIL_USER", "")

	return &Config{
		HTTPPort:        port,
		PublicBaseURL:   baseURL,
		StaticDir:       getEnv("STATIC_DIR", "public"),
		AllowedOrigins:  splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:"+port)),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDBName:     getEnv("MONGO_DB_NAME", "storefront"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		SMTPHost:        getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:        smtpPort,
		SMTPUser:        smtpUser,
		SMTPPassword:    getEnv("EMAIL_APP_PASSWORD", ""),
		ToEmail:         getEnv("TO_EMAIL", smtpUser),
		StoreName:       getEnv("STORE_NAME", "AKO by Lee"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// noopCache stands in for redis when none is configured: every read is a
// miss and writes vanish.
type noopCache struct{}

func (noopCache) Get(context.Context, string) (*domain.Cart, error) { return nil, cache.ErrCacheMiss }
func (noopCache) Set(context.Context, string, *domain.Cart) error   { return nil }
func (noopCache) Delete(context.Context, string) error              { return nil }

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Cart repository: Mongo when configured, process memory otherwise.
	var repo repository.CartRepository
	if cfg.MongoURI != "" {
		mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer mongoDB.Client().Disconnect(ctx)

		mongoRepo := repository.NewMongoRepository(mongoDB)
		indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := mongoRepo.CreateIndexes(indexCtx); err != nil {
			log.Fatalf("Failed to create cart indexes: %v", err)
		}
		cancel()

		repo = mongoRepo
		log.Printf("Connected to MongoDB at %s", cfg.MongoURI)
	} else {
		repo = repository.NewMemoryRepository()
		log.Printf("MONGO_URI not set, carts held in process memory")
	}

	// Redis backs the cart cache, the emailed-session registry, the
	// relay throttle and the prefill profiles when available.
	var cartCache cache.CartCache = noopCache{}
	var registry payments.Registry = payments.NewMemoryRegistry()
	var throttle relay.Throttle = relay.NewMemoryThrottle()
	var profiles checkout.ProfileStore = checkout.NewMemoryProfileStore()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Redis connection failed: %v", err)
		}
		log.Printf("Redis ping succeeded")

		cartCache = cache.NewRedisCache(redisClient)
		registry = payments.NewRedisRegistry(redisClient)
		throttle = relay.NewRedisThrottle(redisClient)
		profiles = checkout.NewRedisProfileStore(redisClient)
	} else {
		log.Printf("REDIS_ADDR not set, registry and throttle held in process memory")
	}

	carts := service.NewCartService(repo, cartCache)

	provider, err := payments.NewStripeProvider(cfg.StripeSecretKey)
	if err != nil {
		log.Fatalf("Stripe setup failed: %v", err)
	}

	smtp, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
	})
	if err != nil {
		log.Fatalf("Mailer setup failed: %v", err)
	}

	pages := httpapi.NewPages(cfg.StaticDir)
	sessions := payments.NewSessionService(provider, cfg.PublicBaseURL, pages.HasShopPage)
	confirms := payments.NewConfirmService(provider, registry, smtp, cfg.StoreName, cfg.ToEmail)
	relaySvc := relay.NewService(smtp, throttle, cfg.ToEmail)

	serverMetrics := metrics.NewServerMetrics("server")

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Carts:          carts,
		Profiles:       profiles,
		Sessions:       sessions,
		Confirms:       confirms,
		Relay:          relaySvc,
		Pages:          pages,
		Metrics:        serverMetrics,
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on http://0.0.0.0:%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
