package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"gitlab.com/contactdeck/contacts-manager/internal/config"
	"gitlab.com/contactdeck/contacts-manager/internal/metrics"
	"gitlab.com/contactdeck/contacts-manager/internal/repository"
	"gitlab.com/contactdeck/contacts-manager/internal/service"
	"gitlab.com/contactdeck/contacts-manager/internal/upload"
)

// Usage example on the command line:
// > PORT=8080 DBUSER=dirk DBPWD=bullo92 DBHOST=localhost GIN_MODE=release GIN_LOGGING=off go run main.go
func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.Load()
	sqlDB, err := service.CreateDatabase(cfg.DBUser, cfg.DBPassword, cfg.DBHost)
	if err != nil {
		log.Fatal("opening database", zap.Error(err))
	}
	repo, err := repository.New(sqlDB)
	if err != nil {
		log.Fatal("preparing statements", zap.Error(err))
	}
	defer repo.Close()

	uploads, err := upload.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatal("creating upload store", zap.Error(err))
	}

	metrics.Init()
	router := service.New(repo, uploads, log).SetupHttpRouter()
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
