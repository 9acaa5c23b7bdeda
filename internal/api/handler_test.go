package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/disha-ai/alert-sync/internal/bus"
	"github.com/disha-ai/alert-sync/internal/mockapi"
	"github.com/disha-ai/alert-sync/internal/models"
	"github.com/disha-ai/alert-sync/internal/relay"
	"github.com/disha-ai/alert-sync/internal/storage"
	"github.com/disha-ai/alert-sync/internal/store"
)

func setupTestAPI(t *testing.T) (*gin.Engine, *store.Store, *bus.Bus) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	shared := storage.NewShared(storage.NewMemory())
	t.Cleanup(func() { shared.Close() })

	b := bus.New()
	s, err := store.New(store.Options{
		Handle:    shared.Handle(),
		Bus:       b,
		Transport: relay.NewStorageTransport(shared.Handle(), 200*time.Millisecond),
		Client:    mockapi.NewSimulated(0, 0),
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(s.Close)

	router := gin.New()
	NewHandler(s, b).RegisterRoutes(router)
	return router, s, b
}

func createTestAlert(t *testing.T, router *gin.Engine) models.Alert {
	t.Helper()

	body, _ := json.Marshal(models.AlertInput{
		Title:       "Flood Warning",
		Description: "Heavy rainfall",
		Severity:    models.SeverityHigh,
		Location:    "Kolkata",
		Type:        models.AlertTypeWeather,
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/alerts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created models.Alert
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("bad create response: %v", err)
	}
	return created
}

func TestHandler_CreateAndList(t *testing.T) {
	router, _, _ := setupTestAPI(t)

	created := createTestAlert(t, router)
	if created.Status != models.StatusActive || created.ID == "" {
		t.Errorf("unexpected created alert: %+v", created)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/alerts", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Alerts []models.Alert `json:"alerts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad list response: %v", err)
	}
	if len(resp.Alerts) != 1 || resp.Alerts[0].Title != "Flood Warning" {
		t.Errorf("unexpected alerts: %+v", resp.Alerts)
	}
}

func TestHandler_CreateValidationError(t *testing.T) {
	router, _, _ := setupTestAPI(t)

	body := []byte(`{"description":"no title","location":"Kolkata"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/alerts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("title")) {
		t.Errorf("error should name the missing field: %s", w.Body.String())
	}
}

func TestHandler_ListTranslated(t *testing.T) {
	router, _, _ := setupTestAPI(t)
	createTestAlert(t, router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/alerts?lang=hi", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("बाढ़ की चेतावनी")) {
		t.Errorf("expected translated title in response: %s", w.Body.String())
	}
}

func TestHandler_UpdateStatus(t *testing.T) {
	router, s, _ := setupTestAPI(t)
	created := createTestAlert(t, router)

	body := []byte(`{"status":"resolved"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/alerts/"+created.ID, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if s.List()[0].Status != models.StatusResolved {
		t.Error("status not updated")
	}
}

func TestHandler_UpdateUnknownID(t *testing.T) {
	router, _, _ := setupTestAPI(t)

	body := []byte(`{"status":"resolved"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/alerts/nonexistent", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHandler_Delete(t *testing.T) {
	router, s, _ := setupTestAPI(t)
	created := createTestAlert(t, router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/alerts/"+created.ID, nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if len(s.List()) != 0 {
		t.Error("alert not deleted")
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/alerts/"+created.ID, nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}
}

func TestHandler_Refresh(t *testing.T) {
	router, s, _ := setupTestAPI(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/alerts/refresh", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(s.List()) == 0 {
		t.Error("refresh should seed alerts")
	}
}

func TestHandler_Health(t *testing.T) {
	router, _, _ := setupTestAPI(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(1))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	limited := false
	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code == http.StatusTooManyRequests {
			limited = true
		}
	}
	if !limited {
		t.Error("expected rate limit to trip within burst")
	}
}
