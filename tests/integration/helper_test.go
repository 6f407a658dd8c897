package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	adaptershttp "github.com/motorlot/financing/internal/adapter/http"
	"github.com/motorlot/financing/internal/adapter/http/handler"
	"github.com/motorlot/financing/internal/adapter/repository/postgres"
	redisrepo "github.com/motorlot/financing/internal/adapter/repository/redis"
	infraredis "github.com/motorlot/financing/internal/infrastructure/redis"
	"github.com/motorlot/financing/internal/usecase"
	"github.com/motorlot/financing/tests/testutil"
)

// testServer bundles the full HTTP stack against real backing services.
type testServer struct {
	Server *httptest.Server
	DB     *testutil.TestDB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)
	testDB.TruncateAll(ctx)

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { redisClient.Close() })

	pool := testDB.Pool
	txManager := postgres.NewTxManager(pool)
	unitRepo := postgres.NewUnitRepository(pool)
	periodRepo := postgres.NewPeriodRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	idGen := postgres.NewULIDGenerator()

	cache := redisrepo.NewCache(redisClient)
	unitLock := redisrepo.NewUnitLock(redisClient, 30*time.Second, 5*time.Second)

	unitUC := usecase.NewUnitUseCase(txManager, unitRepo, auditRepo, idGen, unitLock, cache, nil)
	financingUC := usecase.NewFinancingUseCase(txManager, unitRepo, periodRepo, outboxRepo, auditRepo, idGen, unitLock, cache, nil)
	paymentUC := usecase.NewPaymentUseCase(txManager, unitRepo, periodRepo, paymentRepo, outboxRepo, auditRepo, idGen, unitLock, cache, nil)
	summaryUC := usecase.NewSummaryUseCase(txManager, unitRepo, periodRepo, cache, 0)
	consistencyUC := usecase.NewConsistencyUseCase(unitRepo, periodRepo, paymentRepo)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		UnitHandler:      handler.NewUnitHandler(unitUC),
		FinancingHandler: handler.NewFinancingHandler(financingUC, consistencyUC),
		PaymentHandler:   handler.NewPaymentHandler(paymentUC, summaryUC),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		Logger:           zerolog.Nop(),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testServer{Server: server, DB: testDB}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	resp.Body.Close()

	return resp, decoded
}

func (ts *testServer) mustCreateUnit(t *testing.T, stockNumber string) string {
	t.Helper()

	resp, body := ts.do(t, http.MethodPost, "/api/v1/units", map[string]any{
		"stock_number":        stockNumber,
		"vin":                 "1HGCM82633A" + stockNumber,
		"model":               "2025 Touring Sedan",
		"base_cost":           "1000000",
		"transport_cost":      "15000",
		"accessory_cost":      "5000",
		"other_costs":         "2500",
		"principal_basis":     "BASE_COST_ONLY",
		"interest_start_date": "2025-01-01",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unit creation failed with status %d: %v", resp.StatusCode, body)
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		t.Fatalf("expected unit id in response, got %v", body)
	}

	return id
}
