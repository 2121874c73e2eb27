package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/stockpeek/edge-gateway/internal/controller"
	"github.com/stockpeek/edge-gateway/internal/service"
	"github.com/stockpeek/edge-gateway/internal/storage/memory"
	"github.com/stockpeek/edge-gateway/internal/util"
)

const (
	testUsername = "admin"
	testPassword = "opensesame"
)

// The upstream stub answers both the primary and the fallback shape,
// so routing works whichever session state the test runs in.
func newUpstreamStub() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/"):
			w.Write([]byte(`{"quoteSummary":{"result":[{"price":{"symbol":"AAPL","shortName":"Apple Inc.","currency":"USD","regularMarketPrice":{"raw":196.89,"fmt":"196.89"},"regularMarketTime":1718208000},"summaryDetail":{}}],"error":null}}`))
		default:
			w.Write([]byte(`{"symbol":"AAPL","close":"196.89"}`))
		}
	}))
}

func newTestServer(t *testing.T) (*echo.Echo, *util.TaskGroup) {
	t.Helper()

	upstream := newUpstreamStub()
	t.Cleanup(upstream.Close)

	log := zap.NewNop().Sugar()

	salt, hash, err := service.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	authCfg := &util.AuthConfig{
		Username:      testUsername,
		Salt:          salt,
		PasswordHash:  hash,
		MaxAttempts:   5,
		AttemptWindow: time.Minute,
	}
	tokens := service.NewTokenService(&util.TokenConfig{
		JwtSecretKey: []byte("test-secret-key"),
		AccessTTL:    24 * time.Hour,
	})
	limiter := service.NewLoginRateLimiter(memory.NewAttemptRepository(), authCfg.MaxAttempts, authCfg.AttemptWindow)
	auth := service.NewAuthService(authCfg, tokens, limiter, log)

	providers := &util.ProvidersConfig{
		TwelveDataBaseURL: upstream.URL,
		TwelveDataAPIKey:  "td-key",
		YahooBaseURL:      upstream.URL,
		FinnhubBaseURL:    upstream.URL,
		FinnhubAPIKey:     "fh-key",
		UpstreamTimeout:   5 * time.Second,
	}
	tasks := &util.TaskGroup{}
	router := service.NewRouter(providers, service.NewCachePolicy(util.NewCachePolicyConfig()), memory.NewCacheRepository(), tasks, log)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = ErrorHandler(log)
	e.Use(echomiddleware.RequestIDWithConfig(RequestIDConfig()))
	e.Use(echomiddleware.CORSWithConfig(CORSMiddlewareConfig()))
	controller.RegisterHandlers(e, controller.NewController(log, auth, router))

	return e, tasks
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestLoginAndVerify(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"opensesame"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body)
	}

	var login struct {
		Success   bool   `json:"success"`
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expiresIn"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if !login.Success || login.Token == "" {
		t.Fatalf("unexpected login response: %+v", login)
	}
	if login.ExpiresIn != 86400 {
		t.Fatalf("expiresIn = %d, want 86400", login.ExpiresIn)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+login.Token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("verify status = %d, body %s", rec.Code, rec.Body)
	}
	var verify struct {
		Valid    bool   `json:"valid"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &verify); err != nil {
		t.Fatalf("decode verify response: %v", err)
	}
	if !verify.Valid || verify.Username != testUsername {
		t.Fatalf("unexpected verify response: %+v", verify)
	}
}

func TestLoginValidation(t *testing.T) {
	e, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing password", `{"username":"admin"}`},
		{"missing username", `{"password":"opensesame"}`},
		{"malformed json", `{"username":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/api/auth/login", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401, body %s", rec.Code, rec.Body)
	}
}

func TestLoginRateLimited(t *testing.T) {
	e, _ := newTestServer(t)

	for i := 0; i < 5; i++ {
		rec := doJSON(e, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"nope"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i+1, rec.Code)
		}
	}

	// The sixth attempt is rejected before credential verification,
	// even with the correct password.
	rec := doJSON(e, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"opensesame"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429, body %s", rec.Code, rec.Body)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
	var resp struct {
		RetryAfter int `json:"retryAfter"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RetryAfter <= 0 || resp.RetryAfter > 60 {
		t.Fatalf("retryAfter = %d, want within the attempt window", resp.RetryAfter)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/api/auth/verify", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no header: status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not.a.token")
	rec2 := httptest.NewRecorder()
	e.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d, want 401", rec2.Code)
	}
	var verify struct {
		Valid bool   `json:"valid"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec2.Body.Bytes(), &verify); err != nil {
		t.Fatalf("decode verify response: %v", err)
	}
	if verify.Valid || verify.Error == "" {
		t.Fatalf("unexpected verify response: %+v", verify)
	}
}

func TestQuoteEndpoint(t *testing.T) {
	e, tasks := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/api/quote?symbol=AAPL", "")
	tasks.Wait(context.Background())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	if got := rec.Header().Get("X-Cache"); got != "MISS" {
		t.Fatalf("X-Cache = %q, want MISS", got)
	}
	if got := rec.Header().Get("X-Market-Open"); got != "true" && got != "false" {
		t.Fatalf("X-Market-Open = %q", got)
	}
	if rec.Header().Get("X-Cache-TTL") == "" {
		t.Fatal("missing X-Cache-TTL header")
	}
	if rec.Header().Get(echo.HeaderAccessControlAllowOrigin) != "*" {
		t.Fatal("missing CORS header on a market-data response")
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload["symbol"] != "AAPL" {
		t.Fatalf("symbol = %v, want AAPL", payload["symbol"])
	}
	if src, _ := payload["source"].(string); src == "" {
		t.Fatal("response body is missing the source tag")
	}
}

func TestQuoteRequiresSymbol(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/api/quote", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp controller.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Error == "" {
		t.Fatal("error body is missing the reason")
	}
}

func TestPreflightGetsCORSHeaders(t *testing.T) {
	e, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/quote", nil)
	req.Header.Set(echo.HeaderOrigin, "https://stockpeek.example")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodGet)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get(echo.HeaderAccessControlAllowOrigin) != "*" {
		t.Fatal("missing Access-Control-Allow-Origin")
	}
	if rec.Header().Get(echo.HeaderAccessControlAllowMethods) == "" {
		t.Fatal("missing Access-Control-Allow-Methods")
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	e, _ := newTestServer(t)

	if rec := doJSON(e, http.MethodGet, "/api/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown route status = %d, want 404", rec.Code)
	}
	if rec := doJSON(e, http.MethodGet, "/api/auth/login", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("wrong method status = %d, want 405", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp["status"] != "ok" {
		t.Fatalf("status field = %q, want ok", resp["status"])
	}
}
