package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/asram/pickup-service/internal/config"
	"github.com/asram/pickup-service/internal/model"
	"github.com/asram/pickup-service/internal/service"
)

type stubPickupStore struct {
	snapshot []model.Pickup
}

func (s *stubPickupStore) Reload(ctx context.Context) error { return nil }

func (s *stubPickupStore) Snapshot() ([]model.Pickup, error) { return s.snapshot, nil }

func (s *stubPickupStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Pickup, error) {
	for _, p := range s.snapshot {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubPickupStore) Insert(ctx context.Context, pickup model.Pickup) (*model.Pickup, error) {
	pickup.ID = uuid.New()
	s.snapshot = append(s.snapshot, pickup)
	return &pickup, nil
}

func (s *stubPickupStore) Update(ctx context.Context, id uuid.UUID, patch model.PickupPatch) error {
	return nil
}

func (s *stubPickupStore) Complete(ctx context.Context, id uuid.UUID, litres float64) error {
	return nil
}

func (s *stubPickupStore) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type stubClientStore struct {
	clients map[uuid.UUID]model.Client
}

func (s *stubClientStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	if client, ok := s.clients[id]; ok {
		return &client, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubClientStore) List(ctx context.Context) ([]model.Client, error) {
	out := make([]model.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubClientStore) AddLitres(ctx context.Context, id uuid.UUID, litres float64) error {
	return nil
}

func stubAuth(principal model.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("principal", principal)
		c.Next()
	}
}

func newTestRouter(t *testing.T, pickups *stubPickupStore, clients *stubClientStore, principal model.Principal) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Pickups: config.PickupsConfig{HistoricalMinLitres: 1, HistoricalMaxLitres: 1000},
	}
	pickupService := service.NewPickupService(pickups, clients, nil, cfg, zerolog.Nop())
	historyService := service.NewHistoryService(pickups, clients, nil, 0, nil, nil, zerolog.Nop())
	handler := NewHandler(pickupService, historyService, clients, zerolog.Nop())

	return NewRouter(handler, stubAuth(principal), "test")
}

func adminPrincipal() model.Principal {
	return model.Principal{UserID: uuid.New(), Role: model.RoleAdmin}
}

func TestHandler_ListPickups(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pickups := &stubPickupStore{snapshot: []model.Pickup{
		{ID: uuid.New(), District: "Centro", Date: &date},
		{ID: uuid.New(), District: "Chamberi", Date: &date},
	}}
	router := newTestRouter(t, pickups, &stubClientStore{}, adminPrincipal())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/pickups?district=Centro", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Pickups []model.Pickup `json:"pickups"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Pickups, 1)
	assert.Equal(t, "Centro", body.Pickups[0].District)
}

func TestHandler_ListPickups_InvalidClientID(t *testing.T) {
	router := newTestRouter(t, &stubPickupStore{}, &stubClientStore{}, adminPrincipal())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/pickups?client_id=nope", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_DeletePickup_Forbidden(t *testing.T) {
	pickupID := uuid.New()
	pickups := &stubPickupStore{snapshot: []model.Pickup{{ID: pickupID}}}
	principal := model.Principal{UserID: uuid.New(), Role: model.RoleAgent}
	router := newTestRouter(t, pickups, &stubClientStore{}, principal)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/pickups/"+pickupID.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_AddHistoricalEntry_LitresOutOfRange(t *testing.T) {
	clientID := uuid.New()
	clients := &stubClientStore{clients: map[uuid.UUID]model.Client{
		clientID: {ID: clientID, Name: "Maria"},
	}}
	router := newTestRouter(t, &stubPickupStore{}, clients, adminPrincipal())

	payload, _ := json.Marshal(map[string]interface{}{
		"date":   "2024-05-20",
		"litres": 1001,
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/clients/"+clientID.String()+"/history/entries", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_AddHistoricalEntry_Created(t *testing.T) {
	clientID := uuid.New()
	clients := &stubClientStore{clients: map[uuid.UUID]model.Client{
		clientID: {ID: clientID, Name: "Maria", Address: "Calle Mayor 1"},
	}}
	pickups := &stubPickupStore{}
	router := newTestRouter(t, pickups, clients, adminPrincipal())

	payload, _ := json.Marshal(map[string]interface{}{
		"date":   "2024-05-20",
		"litres": 25,
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/clients/"+clientID.String()+"/history/entries", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var created model.Pickup
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Historical)
	assert.Equal(t, model.PickupStatusCompleted, created.Status)
	assert.Equal(t, 25.0, created.Litres)
}

func TestHandler_ClientHistory(t *testing.T) {
	clientID := uuid.New()
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pickups := &stubPickupStore{snapshot: []model.Pickup{
		{ID: uuid.New(), ClientID: &clientID, Date: &date, Litres: 5},
	}}
	clients := &stubClientStore{clients: map[uuid.UUID]model.Client{
		clientID: {ID: clientID, Name: "Maria"},
	}}
	router := newTestRouter(t, pickups, clients, adminPrincipal())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/clients/"+clientID.String()+"/history", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var history model.ClientHistory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Equal(t, 5.0, history.TotalLitres)
	assert.Equal(t, 150.0, history.AverageLitres30d)
}

func TestHandler_ClientHistory_NotFound(t *testing.T) {
	router := newTestRouter(t, &stubPickupStore{}, &stubClientStore{}, adminPrincipal())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/clients/"+uuid.New().String()+"/history", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Healthz_Public(t *testing.T) {
	router := newTestRouter(t, &stubPickupStore{}, &stubClientStore{}, adminPrincipal())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
