package backup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rotikasir/bakery-pos/app/localstore"
	"github.com/rotikasir/bakery-pos/app/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock Repository ---

type MockBackupRepo struct {
	ExportErr error
	Removed   int
	cleared   bool
}

func (m *MockBackupRepo) WriteExport(_ context.Context, w io.Writer) error {
	if m.ExportErr != nil {
		return m.ExportErr
	}
	_, err := io.WriteString(w, `{"products":[],"transactions":[]}`)
	return err
}

func (m *MockBackupRepo) FileName() string {
	return "kasir-backup-2025-05-17.json"
}

func (m *MockBackupRepo) Import(_ context.Context, r io.Reader) (store.ImportResult, error) {
	_, err := io.ReadAll(r)
	return store.ImportResult{}, err
}

func (m *MockBackupRepo) CleanupDuplicates(context.Context) int {
	return m.Removed
}

func (m *MockBackupRepo) ClearLocal(context.Context) {
	m.cleared = true
}

func newBackup(t *testing.T) *store.Backup {
	files, err := localstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	local := store.NewLocalBackend(localstore.NewAdapter(files), false)
	now := func() time.Time { return time.Date(2025, 5, 17, 8, 0, 0, 0, time.UTC) }
	return store.NewBackup(store.NewFacade(local, nil, store.Options{Now: now}), local)
}

// --- Tests ---

func TestHandleExport(t *testing.T) {
	handler := NewBackupHandler(&MockBackupRepo{})
	rec := httptest.NewRecorder()

	handler.HandleExport(rec, httptest.NewRequest("GET", "/api/backup/export", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="kasir-backup-2025-05-17.json"`, rec.Header().Get("Content-Disposition"))
	assert.JSONEq(t, `{"products":[],"transactions":[]}`, rec.Body.String())
}

func TestHandleExport_Error(t *testing.T) {
	handler := NewBackupHandler(&MockBackupRepo{ExportErr: errors.New("disk gone")})
	rec := httptest.NewRecorder()

	handler.HandleExport(rec, httptest.NewRequest("GET", "/api/backup/export", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
	var errResp map[string]string
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, "Failed to export data", errResp["error"])
}

func TestHandleImport(t *testing.T) {
	testCases := []struct {
		name               string
		body               string
		expectedStatusCode int
		expectedResult     store.ImportResult
	}{
		{
			name:               "Both collections",
			body:               `{"products":[{"id":"1","name":"Roti Tawar","price":12000}],"transactions":[]}`,
			expectedStatusCode: http.StatusOK,
			expectedResult:     store.ImportResult{Products: true, Transactions: true},
		},
		{
			name:               "Only products",
			body:               `{"products":[]}`,
			expectedStatusCode: http.StatusOK,
			expectedResult:     store.ImportResult{Products: true},
		},
		{
			name:               "Invalid document",
			body:               `not json`,
			expectedStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			handler := NewBackupHandler(newBackup(t))
			req := httptest.NewRequest("POST", "/api/backup/import", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			// Act
			handler.HandleImport(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.expectedStatusCode == http.StatusOK {
				var resp store.ImportResult
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, tc.expectedResult, resp)
			}
		})
	}
}

func TestHandleCleanupAndClear(t *testing.T) {
	repo := &MockBackupRepo{Removed: 3}
	handler := NewBackupHandler(repo)

	rec := httptest.NewRecorder()
	handler.HandleCleanup(rec, httptest.NewRequest("POST", "/api/backup/cleanup", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":3}`, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.HandleClearLocal(rec, httptest.NewRequest("DELETE", "/api/backup/local", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, repo.cleared)
}

func TestExportThenImport(t *testing.T) {
	source := NewBackupHandler(newBackup(t))
	exported := httptest.NewRecorder()
	source.HandleExport(exported, httptest.NewRequest("GET", "/api/backup/export", nil))
	require.Equal(t, http.StatusOK, exported.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(exported.Body.Bytes(), &doc))
	assert.Equal(t, "2025-05-17T08:00:00Z", doc["exportDate"])

	target := NewBackupHandler(newBackup(t))
	rec := httptest.NewRecorder()
	target.HandleImport(rec, httptest.NewRequest("POST", "/api/backup/import", exported.Body))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"products":true,"transactions":true}`, rec.Body.String())
}
