package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/rotikasir/bakery-pos/app/api"
	"github.com/rotikasir/bakery-pos/app/store"
)

const maxImportSize = 10 << 20

type CleanupResponse struct {
	Removed int `json:"removed"`
}

type BackupProvider interface {
	WriteExport(ctx context.Context, w io.Writer) error
	FileName() string
	Import(ctx context.Context, r io.Reader) (store.ImportResult, error)
	CleanupDuplicates(ctx context.Context) int
	ClearLocal(ctx context.Context)
}

type BackupHandler struct {
	repo BackupProvider
}

func NewBackupHandler(r BackupProvider) *BackupHandler {
	return &BackupHandler{repo: r}
}

func (h *BackupHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.repo.WriteExport(r.Context(), &buf); err != nil {
		api.StoreError(w, err, "Failed to export data")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.repo.FileName()))
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[http] failed to write export: %v", err)
	}
}

func (h *BackupHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxImportSize)

	result, err := h.repo.Import(r.Context(), body)
	if err != nil {
		api.StoreError(w, err, "Failed to import data")
		return
	}

	api.OKResponse(w, result)
}

func (h *BackupHandler) HandleCleanup(w http.ResponseWriter, r *http.Request) {
	api.OKResponse(w, CleanupResponse{Removed: h.repo.CleanupDuplicates(r.Context())})
}

func (h *BackupHandler) HandleClearLocal(w http.ResponseWriter, r *http.Request) {
	h.repo.ClearLocal(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
