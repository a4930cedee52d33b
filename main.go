package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"storefront/handlers"
	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/consul"
	"storefront/internal/mail"
	"storefront/internal/orders"
	"storefront/internal/products"
	"storefront/internal/stores/kafka"
	"storefront/internal/stores/postgres"
	"storefront/internal/stores/session"
	"storefront/internal/users"
	"storefront/pkg/logkey"
)

func main() {
	if err := run(); err != nil {
		slog.Error("startup failed", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on environment")
	}

	prefix := os.Getenv("SERVICE_ENDPOINT_PREFIX")
	if prefix == "" {
		panic("SERVICE_ENDPOINT_PREFIX is not set")
	}

	keys, err := loadKeys()
	if err != nil {
		return err
	}

	db, err := postgres.Open()
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()
	if err := postgres.Migrate(db); err != nil {
		return err
	}
	store, err := postgres.NewConf(db)
	if err != nil {
		return err
	}

	sessions, err := sessionStore()
	if err != nil {
		return err
	}

	var kafkaConf *kafka.Conf
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		kafkaConf, err = kafka.NewConf(strings.Split(brokers, ","))
		if err != nil {
			return fmt.Errorf("connecting to kafka: %w", err)
		}
		defer kafkaConf.Close()
	}

	var mailConf *mail.Conf
	if host := os.Getenv("SMTP_HOST"); host != "" {
		mailConf, err = mail.NewConf(host, os.Getenv("SMTP_PORT"),
			os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"), os.Getenv("SMTP_FROM"))
		if err != nil {
			return err
		}
	}

	p, err := products.NewConf(store)
	if err != nil {
		return err
	}
	o, err := orders.NewConf(store)
	if err != nil {
		return err
	}
	u, err := users.NewConf(store)
	if err != nil {
		return err
	}
	carts, err := cart.NewManager(sessions)
	if err != nil {
		return err
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	if consulAddr := os.Getenv("CONSUL_HTTP_ADDR"); consulAddr != "" {
		client, err := consul.NewClient(consulAddr)
		if err != nil {
			return err
		}
		serviceAddr := os.Getenv("SERVICE_ADDRESS")
		if serviceAddr == "" {
			serviceAddr = "localhost"
		}
		portNum, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid APP_PORT %q: %w", port, err)
		}
		if err := consul.RegisterService(client, "storefront", serviceAddr, portNum); err != nil {
			return err
		}
	}

	api := handlers.API(prefix, keys, p, o, u, carts, kafkaConf, mailConf)
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      api,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
	}
	return nil
}

func loadKeys() (*auth.Keys, error) {
	privatePath := os.Getenv("JWT_PRIVATE_KEY_PATH")
	publicPath := os.Getenv("JWT_PUBLIC_KEY_PATH")
	if privatePath == "" || publicPath == "" {
		panic("JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH are not set")
	}

	privatePEM, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}
	publicPEM, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("reading public key: %w", err)
	}
	return auth.NewKeys(privatePEM, publicPEM)
}

// sessionStore picks Redis when configured and falls back to the in-process
// store for single-node development.
func sessionStore() (session.Store, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		slog.Warn("REDIS_ADDR not set, using in-memory session store")
		return session.NewMemory(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	ttl := 24 * time.Hour
	if raw := os.Getenv("CART_TTL_HOURS"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("invalid CART_TTL_HOURS %q", raw)
		}
		ttl = time.Duration(hours) * time.Hour
	}
	return session.NewRedis(client, ttl)
}
