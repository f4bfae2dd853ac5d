package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	goredislib "github.com/redis/go-redis/v9"

	"github.com/splitcore/settle/internal/aggregation"
	"github.com/splitcore/settle/internal/balance"
	"github.com/splitcore/settle/internal/cache"
	"github.com/splitcore/settle/internal/config"
	"github.com/splitcore/settle/internal/database"
	"github.com/splitcore/settle/internal/events"
	"github.com/splitcore/settle/internal/expense"
	"github.com/splitcore/settle/internal/group"
	"github.com/splitcore/settle/internal/jobs"
	"github.com/splitcore/settle/internal/ledgerservice"
	"github.com/splitcore/settle/internal/lockservice"
	"github.com/splitcore/settle/internal/notification"
	"github.com/splitcore/settle/internal/settlement"
	"github.com/splitcore/settle/internal/settlementplan"
	"github.com/splitcore/settle/internal/user"
	mw "github.com/splitcore/settle/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.NewPostgresConnection(cfg.StoreURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database successfully")

	// ============================================
	// DEPENDENCY INJECTION - Wiring up all layers
	// ============================================

	// BalanceStore (C4)
	balances := balance.NewPgStore(db)

	// CacheLayer (C6): noop when CACHE_URL is unset, so AggregationService's
	// code path never branches on its presence.
	var cacheLayer cache.Cache
	if cfg.CacheURL != "" {
		cacheLayer = cache.NewRedisCache(goredislib.NewClient(&goredislib.Options{Addr: cfg.CacheURL}))
	} else {
		cacheLayer = cache.NewNoopCache()
	}

	// LockService (C5)
	var locks lockservice.Service
	switch cfg.LockBackend {
	case "distributed":
		locks = lockservice.NewDistributedService(goredislib.NewClient(&goredislib.Options{Addr: cfg.RedisURL}))
	default:
		locks, err = lockservice.NewProcessService(cfg.ReplicaCount)
		if err != nil {
			log.Fatalf("Failed to start lock service: %v", err)
		}
	}

	// JobRunner (C7): asynq when a Redis-backed queue is available via
	// CACHE_URL, in-process fallback otherwise — mirrors CacheLayer's
	// noop/real split so a single-box deployment needs nothing extra.
	var runner jobs.Runner
	if cfg.CacheURL != "" {
		runner = jobs.NewAsynqRunner(cfg.RedisURL, cfg.JobConcurrency)
	} else {
		runner = jobs.NewMemRunner(cfg.JobConcurrency)
	}

	// EventEmitter (C11)
	eventStore := events.NewPgStore(db)
	emitter := events.NewEmitter(runner)
	events.RegisterPersister(runner, eventStore)

	// AggregationService (C9)
	agg := aggregation.New(balances, cacheLayer)
	aggregation.RegisterInvalidator(runner, agg)

	// SettlementPlanner (C10)
	planner := settlementplan.New(balances, agg)

	// ExpenseRegistry (C12)
	expenseRepo := expense.NewRepository(db)

	// Settlement receipts
	settlementRepo := settlement.NewRepository(db)

	// Group/User features (membership + identity, reused largely as-is)
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo)
	groupHandler := group.NewHandler(groupService)

	// Notification projection, driven by the same TypeNotify jobs the
	// event emitter enqueues — never called directly by LedgerService.
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)
	notification.RegisterNotifier(runner, notificationService)

	// LedgerService (C8): the sole mutation orchestrator.
	ledger := ledgerservice.New(expenseRepo, balances, locks, runner, emitter, settlementRepo, groupService, ledgerservice.Config{
		LockTTL: cfg.LockTTL,
		WaitTTL: cfg.WaitTTL,
	})

	expenseHandler := expense.NewHandler(ledger, expenseRepo)
	settlementHandler := settlement.NewHandler(ledger, settlementRepo)
	settlementPlanHandler := settlementplan.NewHandler(planner, groupService)
	activityHandler := events.NewHandler(eventStore)

	runnerCtx, cancelRunner := context.WithCancel(context.Background())
	defer cancelRunner()
	go func() {
		if err := runner.Start(runnerCtx); err != nil {
			log.Printf("job runner stopped: %v", err)
		}
	}()
	defer runner.Stop()

	// ============================================
	// ROUTER SETUP
	// ============================================

	r := chi.NewRouter()

	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(mw.TestUserMiddleware) // DEV ONLY: allows X-Test-User-ID header

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/users", userHandler.Routes())
		r.Mount("/groups", groupHandler.Routes())
		r.Mount("/expenses", expenseHandler.Routes())
		r.Mount("/settlements", settlementHandler.Routes())
		r.Mount("/settlement-plans", settlementPlanHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
		r.Mount("/activity", activityHandler.Routes())
	})

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
