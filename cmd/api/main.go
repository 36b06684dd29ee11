package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"crosspost/internal/account"
	"crosspost/internal/cache"
	"crosspost/internal/common"
	"crosspost/internal/config"
	"crosspost/internal/dbmysql"
	"crosspost/internal/platform"
	"crosspost/internal/post"
	"crosspost/internal/publish"
	"crosspost/internal/scheduler"
	"crosspost/internal/stats"
	"crosspost/internal/user"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := common.NewLogger(cfg.Logging.Level, cfg.Logging.Console)

	db, err := dbmysql.NewMySQL(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	var c *cache.Cache
	if cfg.Redis.Enabled {
		c = cache.New(cache.MustRedis(cfg.Redis.URL))
	} else {
		c = cache.New(nil)
	}

	httpClient := &http.Client{Timeout: cfg.Publish.HTTPTimeout}

	registry := platform.NewRegistry(cfg)
	postRepo := post.NewPostRepository(db)
	userRepo := user.NewUserRepository(db)
	accountRepo := account.NewAccountRepository(db)
	resultRepo := publish.NewResultRepository(db)

	orch := publish.NewOrchestrator(cfg, registry, resultRepo, accountRepo, postRepo, c, log)

	userHandler := user.NewHandler(user.NewUserService(userRepo))
	postHandler := post.NewHandler(post.NewPostService(postRepo))
	publishHandler := publish.NewHandler(orch, postRepo)
	accountHandler := account.NewHandler(account.NewAccountService(
		cfg, accountRepo, account.NewOAuthClient(cfg, httpClient), registry))
	statsHandler := stats.NewHandler(stats.NewStatsService(db, c))

	sched := scheduler.New(cfg.Publish.SchedulerSpec, postRepo, orch, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	router := mux.NewRouter()
	router.Use(common.CORSMiddleware)
	router.Use(common.RequestLogger(log))

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/register", userHandler.Register).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/login", userHandler.Login).Methods("POST", "OPTIONS")

	protected := api.NewRoute().Subrouter()
	protected.Use(common.AuthMiddleware)
	protected.HandleFunc("/auth/me", userHandler.Me).Methods("GET")

	protected.HandleFunc("/posts", postHandler.List).Methods("GET")
	protected.HandleFunc("/posts", postHandler.Create).Methods("POST")
	protected.HandleFunc("/posts/{postID}", postHandler.Get).Methods("GET")
	protected.HandleFunc("/posts/{postID}", postHandler.Update).Methods("PUT")
	protected.HandleFunc("/posts/{postID}", postHandler.Delete).Methods("DELETE")

	protected.HandleFunc("/publish", publishHandler.Dispatch).Methods("POST")
	protected.HandleFunc("/publish/{postID}", publishHandler.Results).Methods("GET")
	protected.HandleFunc("/publish/{postID}/retry/{platformID}", publishHandler.Retry).Methods("POST")

	protected.HandleFunc("/accounts", accountHandler.List).Methods("GET")
	protected.HandleFunc("/accounts/connect/{platformID}", accountHandler.Connect).Methods("POST")
	protected.HandleFunc("/accounts/callback/{platformID}", accountHandler.Callback).Methods("POST")
	protected.HandleFunc("/accounts/{platformID}", accountHandler.Disconnect).Methods("DELETE")

	protected.HandleFunc("/stats", statsHandler.Dashboard).Methods("GET")
	protected.HandleFunc("/stats/activity", statsHandler.Activity).Methods("GET")

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("api server running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	// let in-flight publish batches reach a terminal state
	orch.Wait()
	log.Info().Msg("stopped")
}
