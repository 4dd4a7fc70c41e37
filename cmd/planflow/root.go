package main

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/aretw0/planflow/internal/logging"
	"github.com/aretw0/planflow/pkg/adapters/file"
	"github.com/aretw0/planflow/pkg/adapters/memory"
	"github.com/aretw0/planflow/pkg/adapters/redis"
	"github.com/aretw0/planflow/pkg/persistence/middleware"
	"github.com/aretw0/planflow/pkg/ports"
	"github.com/aretw0/planflow/pkg/session"
)

const (
	envEncryptionKey  = "PLANFLOW_ENCRYPTION_KEY"
	envFallbackKeys   = "PLANFLOW_ENCRYPTION_FALLBACK_KEYS"
	envRedisPassword  = "PLANFLOW_REDIS_PASSWORD"
	defaultSessionDir = ".planflow/sessions"
)

var rootCmd = &cobra.Command{
	Use:   "planflow",
	Short: "planflow navigates PlanX planning flows",
	Long: `planflow loads PlanX flow graphs (YAML or JSON), walks applicants through
them one card at a time and derives the passport and planning outcome from
their answers. Sessions are persisted so that they can be resumed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("dir", ".", "Directory containing flow documents")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("store", "file", "Session store (file, redis, memory)")
	flags.String("sessions-dir", defaultSessionDir, "Directory of the file session store")
	flags.String("redis-addr", "localhost:6379", "Redis address for the redis session store")
	flags.Duration("redis-ttl", 0, "Expiry of redis sessions (0 keeps them forever)")
}

func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	raw, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(raw)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

func newLoader(cmd *cobra.Command) *file.Loader {
	dir, _ := cmd.Flags().GetString("dir")
	return file.NewLoader(dir)
}

// newManager builds the session manager selected by --store. The returned
// function releases the store's connections.
func newManager(cmd *cobra.Command, logger *slog.Logger) (*session.Manager, func() error, error) {
	kind, _ := cmd.Flags().GetString("store")
	closer := func() error { return nil }

	var (
		store  ports.SessionStore
		locker ports.DistributedLocker
	)
	switch kind {
	case "file":
		dir, _ := cmd.Flags().GetString("sessions-dir")
		store = file.NewStore(dir)
	case "memory":
		store = memory.NewStore()
	case "redis":
		addr, _ := cmd.Flags().GetString("redis-addr")
		ttl, _ := cmd.Flags().GetDuration("redis-ttl")
		client := goredis.NewClient(&goredis.Options{
			Addr:     addr,
			Password: os.Getenv(envRedisPassword),
		})
		store = redis.NewFromClient(client, redis.WithTTL(ttl))
		locker = redis.NewLocker(client, redis.DefaultPrefix)
		closer = client.Close
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", kind)
	}

	enc, err := encryptionFromEnv()
	if err != nil {
		_ = closer()
		return nil, nil, err
	}
	if enc != nil {
		store = middleware.Chain(store, middleware.NewEncryptionMiddleware(*enc))
		logger.Debug("session encryption enabled", "fallback_keys", len(enc.FallbackKeys))
	}

	opts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	return session.NewManager(store, opts...), closer, nil
}

func encryptionFromEnv() (*middleware.EncryptionConfig, error) {
	active := os.Getenv(envEncryptionKey)
	if active == "" {
		return nil, nil
	}
	key, err := decodeKey(envEncryptionKey, active)
	if err != nil {
		return nil, err
	}
	cfg := &middleware.EncryptionConfig{ActiveKey: key}
	for raw := range strings.SplitSeq(os.Getenv(envFallbackKeys), ",") {
		if raw = strings.TrimSpace(raw); raw == "" {
			continue
		}
		k, err := decodeKey(envFallbackKeys, raw)
		if err != nil {
			return nil, err
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, k)
	}
	return cfg, nil
}

func decodeKey(name, raw string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s is not valid base64: %w", name, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", name, len(key))
	}
	return key, nil
}
