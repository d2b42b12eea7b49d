package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/posprint/internal/application/service"
	"github.com/sangkips/posprint/internal/config"
	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/sangkips/posprint/internal/infrastructure/repository"
	"github.com/sangkips/posprint/internal/presentation/http/handler"
	"github.com/sangkips/posprint/pkg/printer"
	"github.com/sangkips/posprint/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	jobs [][]byte
}

func (s *recordingSender) Supports(t printer.Transport) bool {
	return t == printer.TransportUSB
}

func (s *recordingSender) Send(_ context.Context, _ printer.Target, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, data)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

type testServer struct {
	router *gin.Engine
	sender *recordingSender
	jwt    *utils.JWTManager
}

const agentKey = "till-secret-key"

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		App:       config.AppConfig{Name: "posprint"},
		RateLimit: config.RateLimitConfig{Requests: 1000, Duration: 1},
	}

	printers := repository.NewStaticPrinterRepository([]entity.Printer{{
		Name: "Counter", Role: enum.PrinterRoleCounter, Type: enum.TransportUSB,
		VendorID: 0x0416, ProductID: 0x5011, IsActive: true,
	}})
	jobs := repository.NewMemoryPrintJobRepository(0)
	profiles := repository.NewMemoryBusinessProfileRepository(&entity.BusinessProfile{Name: "Spice Route", Footer: "Thank you! Visit again"})
	sender := &recordingSender{}

	dispatcher := service.NewPrintDispatcher(printers, sender, service.DispatcherOptions{
		Numbers:  service.NewBillNumberer(repository.NewMemoryBillSequence(100), service.DefaultBillSequence),
		Profiles: profiles,
		Jobs:     jobs,
	})

	hash, err := utils.HashPassword(agentKey)
	require.NoError(t, err)
	jwtManager := utils.NewJWTManager("test-secret", time.Hour, "")
	auth := service.NewAuthService([]service.AgentCredential{{ClientID: "till-1", KeyHash: hash}}, jwtManager)

	h := &Handlers{
		Auth:    handler.NewAuthHandler(auth),
		Print:   handler.NewPrintHandler(dispatcher, nil, service.NewPreviewService(profiles)),
		Printer: handler.NewPrinterHandler(service.NewPrinterService(printers, jobs, printer.NewConnectionManager(nil), nil, nil)),
		Profile: handler.NewBusinessProfileHandler(service.NewBusinessProfileService(profiles, entity.BusinessProfile{})),
	}
	router := Setup(h, &Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: repository.NewMemoryIdempotencyRepository(),
	})
	return &testServer{router: router, sender: sender, jwt: jwtManager}
}

func (s *testServer) token(t *testing.T, scopes ...string) string {
	t.Helper()
	tok, err := s.jwt.GenerateAccessToken("till-1", scopes)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(method, path, token, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

const billBody = `{"bill":{"items":[{"name":"Masala Dosa","unit_price":"120","quantity":2}],
	"sub_total":"240","final_amount":"240","payment_method":"cash"}}`

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "posprint")
}

func TestTokenIssuance(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/auth/token", "", `{"client_id":"till-1","key":"`+agentKey+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out service.TokenOutput
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &out))
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Equal(t, []string{utils.ScopePrint}, out.Scopes)

	claims, err := s.jwt.ValidateAccessToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "till-1", claims.ClientID)

	w = s.do(http.MethodPost, "/api/v1/auth/token", "", `{"client_id":"till-1","key":"wrong-key-123"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/printers", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/printers", "not-a-jwt", "").Code)

	bridgeOnly := s.token(t, utils.ScopeBridge)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/v1/print/bill", bridgeOnly, billBody).Code)
}

func TestPrintBill(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/print/bill", s.token(t, utils.ScopePrint), billBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Result service.DispatchResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.True(t, data.Result.Success)
	assert.Equal(t, "usb", data.Result.Method)

	require.Equal(t, 1, s.sender.count())
	job := s.sender.jobs[0]
	assert.Equal(t, []byte{0x1B, 0x40}, job[:2])
	assert.True(t, bytes.Contains(job, []byte("101")), "bill number from sequence")
	assert.True(t, bytes.HasSuffix(job, []byte{0x1B, 0x70, 0x00, 0x19, 0xFA}), "cash sale opens the drawer")
}

func TestPrintBillIdempotent(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, utils.ScopePrint)

	first := s.do(http.MethodPost, "/api/v1/print/bill", tok, billBody, "Idempotency-Key", "sale-42")
	require.Equal(t, http.StatusOK, first.Code)

	second := s.do(http.MethodPost, "/api/v1/print/bill", tok, billBody, "Idempotency-Key", "sale-42")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, s.sender.count())

	changed := strings.Replace(billBody, `"quantity":2`, `"quantity":3`, 1)
	conflict := s.do(http.MethodPost, "/api/v1/print/bill", tok, changed, "Idempotency-Key", "sale-42")
	assert.Equal(t, http.StatusUnprocessableEntity, conflict.Code)
}

func TestPrintBillValidation(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, utils.ScopePrint)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/print/bill", tok, `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/print/bill", tok, `{"bill":{"items":[]}}`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/print/bill", tok, `{"role":"bar",`+billBody[1:]).Code)
}

func TestKOTWithoutKitchenPrinterStillMarksCartSent(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, utils.ScopePrint)

	body := `{"header":{"table_number":"T4","kot_number":7},
		"cart":[{"name":"Paneer Tikka","unit_price":"180","quantity":2,"sent_quantity":0}]}`
	w := s.do(http.MethodPost, "/api/v1/print/kot/from-cart", tok, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Result service.DispatchResult `json:"result"`
		Cart   []entity.CartItem      `json:"cart"`
		KOT    entity.KOTData         `json:"kot"`
	}
	env := decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "KOT generated but printing failed", env.Message)
	assert.False(t, data.Result.Success)
	assert.Equal(t, service.ErrorConfiguration, data.Result.Kind)
	assert.NotEmpty(t, data.Result.Error)
	assert.Equal(t, data.Cart[0].Quantity, data.Cart[0].SentQuantity)
	assert.Equal(t, 2, data.KOT.Items[0].Quantity)
}

func TestKOTFromCartNothingPending(t *testing.T) {
	s := newTestServer(t)

	body := `{"cart":[{"name":"Lassi","unit_price":"60","quantity":1,"sent_quantity":1}]}`
	w := s.do(http.MethodPost, "/api/v1/print/kot/from-cart", s.token(t, utils.ScopePrint), body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Nothing new to send to the kitchen", decode(t, w).Message)
}

func TestQueueDisabled(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/v1/print/queue", s.token(t, utils.ScopePrint), `{"document":"kot"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPreviewBill(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, utils.ScopePrint)
	bill := `{"items":[{"name":"Masala Dosa","unit_price":"120","quantity":1}],"final_amount":"120"}`

	w := s.do(http.MethodPost, "/api/v1/preview/bill?format=80mm", tok, bill)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Spice Route")
	assert.Contains(t, w.Body.String(), "Masala Dosa")

	w = s.do(http.MethodPost, "/api/v1/preview/bill?output=escpos", tok, bill)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, 0, s.sender.count(), "previews never print")

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/preview/bill?format=a4", tok, bill).Code)
}

func TestPrintersAndJobs(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, utils.ScopePrint)

	w := s.do(http.MethodGet, "/api/v1/printers", tok, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []entity.Printer
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &list))
	require.Len(t, list, 1)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/printers/nope/status", tok, "").Code)
	w = s.do(http.MethodGet, "/api/v1/printers/"+list[0].ID.String()+"/status", tok, "")
	assert.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/v1/print/bill", tok, billBody).Code)
	w = s.do(http.MethodGet, "/api/v1/print-jobs?document=bill", tok, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestBusinessProfileNeedsAdminToUpdate(t *testing.T) {
	s := newTestServer(t)
	body := `{"name":"Spice Route Indiranagar","gstin":"29abcde1234f1z5"}`

	w := s.do(http.MethodGet, "/api/v1/business-profile", s.token(t, utils.ScopePrint), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Spice Route")

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPut, "/api/v1/business-profile", s.token(t, utils.ScopePrint), body).Code)

	w = s.do(http.MethodPut, "/api/v1/business-profile", s.token(t, utils.ScopeAdmin), body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "29ABCDE1234F1Z5")
}

func TestBridgeRoutesAbsentWithoutBridge(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/v1/bridge/discover", s.token(t, utils.ScopeAdmin), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimitFallback(t *testing.T) {
	rl := rateLimit(config.RateLimitConfig{})
	assert.Equal(t, float64(10), rl.RequestsPerSecond)

	rl = rateLimit(config.RateLimitConfig{Requests: 120, Duration: 60})
	assert.Equal(t, float64(2), rl.RequestsPerSecond)
	assert.Equal(t, 120, rl.BurstSize)
}
