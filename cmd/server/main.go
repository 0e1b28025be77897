package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotikasir/bakery-pos/app/config"
	"github.com/rotikasir/bakery-pos/app/localstore"
	"github.com/rotikasir/bakery-pos/app/remote"
	"github.com/rotikasir/bakery-pos/app/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	blobs, closeBlobs, err := openLocalStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer closeBlobs()

	client, err := remote.New(remote.Config{
		Endpoint:        cfg.RemoteURL,
		Credential:      cfg.RemoteKey,
		BreakerFailures: cfg.RemoteBreakerFailures,
		BreakerCooldown: cfg.RemoteBreakerCooldown,
	})
	if err != nil {
		log.Fatalf("Failed to set up remote database: %v", err)
	}
	defer client.Close()

	local := store.NewLocalBackend(localstore.NewAdapter(blobs), cfg.SeedDefaultProducts)
	remoteBackend := store.NewRemoteBackend(client)
	facade := store.NewFacade(local, remoteBackend, store.Options{
		RemoteEnabled:        remoteBackend.Available(),
		MirrorToLocal:        cfg.MirrorToLocal,
		StrictPaymentMethods: cfg.StrictPaymentMethods,
	})
	backup := store.NewBackup(facade, local)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      newRouter(facade, backup, cfg.RequestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s (storage: %s)", cfg.HTTPAddr, facade.Mode())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}

// openLocalStore picks redis when LOCAL_REDIS_URL is set, the data directory otherwise.
func openLocalStore(cfg *config.Config) (localstore.BlobStore, func(), error) {
	if cfg.LocalRedisURL != "" {
		rs, err := localstore.NewRedisStoreFromURL(cfg.LocalRedisURL)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { rs.Close() }, nil
	}
	fs, err := localstore.NewFileStore(cfg.LocalDataDir)
	if err != nil {
		return nil, nil, err
	}
	return fs, func() {}, nil
}
