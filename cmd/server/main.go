package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"letterc/internal/journal"
	journalhandler "letterc/internal/journal/handler"
	mutationhandler "letterc/internal/mutation/handler"
	mutationservice "letterc/internal/mutation/service"
	draftstore "letterc/internal/mutation/store"
	ownershiphandler "letterc/internal/ownership/handler"
	ownershipservice "letterc/internal/ownership/service"
	ownershipstore "letterc/internal/ownership/store"
	"letterc/internal/platform/config"
	"letterc/internal/platform/httpserver"
	"letterc/internal/platform/logger"
	"letterc/internal/platform/metrics"
	"letterc/internal/platform/middleware"
	platformredis "letterc/internal/platform/redis"
	"letterc/internal/platform/token"
	"letterc/internal/region"
	regionhandler "letterc/internal/region/handler"
	domain "letterc/pkg/domain"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages. With LETTERC_DATABASE_URL
// unset the service runs entirely in memory (dev mode).
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err)
			os.Exit(1)
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			log.Error("ping database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	var (
		ownerStore   ownershipstore.Store
		journalStore journal.Store
		directory    region.Directory
		txRunner     mutationservice.TxRunner
	)
	if db != nil {
		ownerStore = ownershipstore.NewPostgres(db)
		journalStore = journal.NewPostgres(db)
		directory = region.NewPostgresDirectory(db)
		txRunner = newMutationPostgresTx(db)
	} else {
		log.Warn("no database configured; running with in-memory stores")
		ownerStore = ownershipstore.NewInMemory()
		journalStore = journal.NewInMemory()
		directory = devRegions(log)
		txRunner = mutationservice.NewShardedTx()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		directory = region.NewCachedDirectory(directory, redisClient.Client, cfg.Redis.RegionTTL, log)
	}

	var publisher journal.Publisher = journal.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := journal.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	drafts := draftstore.NewDraftStore(cfg.DraftTTL)
	engine := mutationservice.NewEngine(ownerStore, journalStore, drafts, txRunner, publisher, m, log)
	ownerService := ownershipservice.NewService(ownerStore, log)
	journalService := journal.NewService(journalStore, log)

	validator := token.NewValidator(cfg.JWTSigningKey)
	authMW := middleware.RequireAuth(validator, log)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Latency(m))

	regionhandler.New(directory, log).Register(router)
	ownershiphandler.New(ownerService, log, authMW).Register(router)
	mutationhandler.New(engine, log, authMW).Register(router)
	journalhandler.New(journalService, log).Register(router)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", healthHandler(db, redisClient))

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepDrafts(ctx, drafts, cfg.DraftTTL)

	go func() {
		log.Info("starting letterc server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

func sweepDrafts(ctx context.Context, drafts *draftstore.DraftStore, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			drafts.Sweep()
		}
	}
}

func healthHandler(db *sql.DB, redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, `{"status":"degraded","database":"down"}`, http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				http.Error(w, `{"status":"degraded","redis":"down"}`, http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

// devRegions seeds a small directory so the in-memory mode is usable out of
// the box. The ids are logged so curl sessions can pick them up.
func devRegions(log interface{ Info(string, ...any) }) region.Directory {
	district := domain.RegionID(uuid.New())
	village := domain.RegionID(uuid.New())
	dir := region.NewStaticDirectory([]region.Region{
		{ID: district, Name: "Kecamatan Contoh"},
		{ID: village, Name: "Desa Contoh", ParentID: &district},
	})
	log.Info("seeded dev regions", "district_id", district.String(), "village_id", village.String())
	return dir
}
