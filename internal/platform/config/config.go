package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	DatabaseURL   string
	Redis         RedisConfig
	Kafka         KafkaConfig
	JWTSigningKey string
	DraftTTL      time.Duration
	StoreTimeout  time.Duration
}

// RedisConfig configures the optional region-directory cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RegionTTL    time.Duration
}

// KafkaConfig configures the optional mutation event publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("LETTERC_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("LETTERC_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("LETTERC_KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}
	topic := os.Getenv("LETTERC_KAFKA_TOPIC")
	if topic == "" {
		topic = "letterc.mutations"
	}

	return Server{
		Addr:        addr,
		DatabaseURL: os.Getenv("LETTERC_DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("LETTERC_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			RegionTTL:    durationEnv("LETTERC_REGION_CACHE_TTL", 10*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   topic,
		},
		JWTSigningKey: jwtSigningKey,
		DraftTTL:      durationEnv("LETTERC_DRAFT_TTL", 15*time.Minute),
		StoreTimeout:  durationEnv("LETTERC_STORE_TIMEOUT", 5*time.Second),
	}
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
