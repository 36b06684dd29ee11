package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"crosspost/internal/common"
	"crosspost/internal/config"
	"crosspost/internal/dbmongo"
	"crosspost/internal/media"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := common.NewLogger(cfg.Logging.Level, cfg.Logging.Console)

	mongoClient, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect MongoDB")
	}
	defer mongoClient.Close(context.Background())

	baseURL := fmt.Sprintf("http://%s:%s", cfg.Server.Host, cfg.Server.MediaPort)
	mediaServer := media.NewHTTPServer(mongoClient, baseURL, log)

	router := mux.NewRouter()
	router.Use(common.CORSMiddleware)
	router.Use(common.RequestLogger(log))
	mediaServer.Register(router, common.AuthMiddleware)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.MediaPort,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("media server running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("stopped")
}
