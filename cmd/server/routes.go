package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rotikasir/bakery-pos/app/api"
	"github.com/rotikasir/bakery-pos/app/backup"
	"github.com/rotikasir/bakery-pos/app/catalog"
	"github.com/rotikasir/bakery-pos/app/sales"
	"github.com/rotikasir/bakery-pos/app/store"
)

func newRouter(facade *store.Facade, bk *store.Backup, timeout time.Duration) http.Handler {
	catHandler := catalog.NewCatalogHandler(facade)
	salesHandler := sales.NewSalesHandler(facade, time.Local)
	backupHandler := backup.NewBackupHandler(bk)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.OKResponse(w, map[string]string{"status": "ok", "backend": facade.Mode()})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", catHandler.HandleGet)
			r.Post("/", catHandler.HandleCreate)
			r.Put("/{id}", catHandler.HandleUpdate)
			r.Delete("/{id}", catHandler.HandleDelete)
		})
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", salesHandler.HandleHistory)
			r.Post("/", salesHandler.HandleCheckout)
			r.Get("/{id}", salesHandler.HandleGetTransaction)
		})
		r.Get("/stats/today", salesHandler.HandleTodayStats)
		r.Route("/backup", func(r chi.Router) {
			r.Get("/export", backupHandler.HandleExport)
			r.Post("/import", backupHandler.HandleImport)
			r.Post("/cleanup", backupHandler.HandleCleanup)
			r.Delete("/local", backupHandler.HandleClearLocal)
		})
	})

	return r
}
