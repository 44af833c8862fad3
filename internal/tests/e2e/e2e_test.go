package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"log/slog"

	"bitslow-market/internal/handlers"
	"bitslow-market/internal/lib/bitslow"
	"bitslow-market/internal/lib/jwt"
	"bitslow-market/internal/middlewares"
	"bitslow-market/internal/routes"
	"bitslow-market/internal/services"
	"bitslow-market/internal/tests/memstore"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	server  *httptest.Server
	storage *memstore.Storage
	jwtGen  *jwt.Generator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gin.SetMode(gin.TestMode)
	storage := memstore.New()
	jwtGen := jwt.NewGenerator("secret", time.Minute, 24*time.Hour)

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	authService := services.NewAuthService(log, storage, storage, jwtGen)
	ledgerService := services.NewLedgerService(log, storage)

	authHandler := handlers.NewAuthHandler(log, authService)
	ledgerHandler := handlers.NewLedgerHandler(log, ledgerService)

	authMiddleware := middlewares.NewAuthMiddleware(jwtGen, storage)
	router := routes.InitRoutes(authHandler, ledgerHandler, authMiddleware, nil)

	return &testServer{server: httptest.NewServer(router), storage: storage, jwtGen: jwtGen}
}

func (s *testServer) close() {
	s.server.Close()
}

func (s *testServer) url(path string) string {
	return s.server.URL + path
}

func (s *testServer) signup(t *testing.T, name, email string) (access, refresh string) {
	t.Helper()
	body := map[string]string{
		"name":        name,
		"email":       email,
		"password":    "strongPass",
		"phoneNumber": "0123456789",
		"address":     "1 Ledger St",
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(s.url("/api/signup"), "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	access = resp.Header.Get(middlewares.TokenHeader)
	require.NotEmpty(t, access)

	var parsed struct {
		RefreshToken string `json:"refreshToken"`
	}
	err = json.NewDecoder(resp.Body).Decode(&parsed)
	require.NoError(t, err)
	require.NotEmpty(t, parsed.RefreshToken)

	return access, parsed.RefreshToken
}

func (s *testServer) get(t *testing.T, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, s.url(path), nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set(middlewares.TokenHeader, token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (s *testServer) post(t *testing.T, path, token string, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, s.url(path), nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set(middlewares.TokenHeader, token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func (s *testServer) generate(t *testing.T, token string, bit1, bit2, bit3 int, amount float64) *http.Response {
	t.Helper()
	return s.post(t, "/api/generate", token, map[string]string{
		"Bit1":   fmt.Sprintf("%d", bit1),
		"Bit2":   fmt.Sprintf("%d", bit2),
		"Bit3":   fmt.Sprintf("%d", bit3),
		"Amount": fmt.Sprintf("%g", amount),
	})
}

func TestSignupAndProtectedFlow(t *testing.T) {
	srv := newTestServer(t)
	defer srv.close()

	access, _ := srv.signup(t, "Alice", "alice@example.com")

	resp := srv.get(t, "/api/protected", access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var protected struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	decode(t, resp, &protected)
	require.Equal(t, "alice@example.com", protected.User.Email)

	resp = srv.get(t, "/api/protected", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = srv.get(t, "/api/protected", "garbage-token")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestSignupRejectsDuplicateEmailWith404(t *testing.T) {
	srv := newTestServer(t)
	defer srv.close()

	srv.signup(t, "Alice", "alice@example.com")

	body, err := json.Marshal(map[string]string{
		"name":        "Alicia",
		"email":       "alice@example.com",
		"password":    "otherPass1",
		"phoneNumber": "0123456789",
		"address":     "2 Ledger St",
	})
	require.NoError(t, err)

	resp, err := http.Post(srv.url("/api/signup"), "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMintBuyAndHistoryFlow(t *testing.T) {
	srv := newTestServer(t)
	defer srv.close()

	aliceToken, _ := srv.signup(t, "Alice", "alice@example.com")
	bobToken, _ := srv.signup(t, "Bob", "bob@example.com")

	resp := srv.get(t, "/api/findbits", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var bits struct {
		Bit1 int `json:"bit1"`
		Bit2 int `json:"bit2"`
		Bit3 int `json:"bit3"`
	}
	decode(t, resp, &bits)
	require.True(t, bitslow.Triple{Bit1: bits.Bit1, Bit2: bits.Bit2, Bit3: bits.Bit3}.Valid())

	resp = srv.generate(t, aliceToken, bits.Bit1, bits.Bit2, bits.Bit3, 100)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = srv.get(t, "/api/marketplace", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var market []struct {
		CoinID int64   `json:"coin_id"`
		Owner  *string `json:"owner"`
		Hash   string  `json:"hash"`
		Value  float64 `json:"value"`
	}
	decode(t, resp, &market)
	require.Len(t, market, 1)
	require.NotNil(t, market[0].Owner)
	require.Equal(t, "Alice", *market[0].Owner)
	require.Equal(t, bitslow.ComputeHash(bits.Bit1, bits.Bit2, bits.Bit3), market[0].Hash)

	coinID := market[0].CoinID

	resp = srv.post(t, fmt.Sprintf("/api/buy/%d", coinID), bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bought struct {
		Name string `json:"name"`
	}
	decode(t, resp, &bought)
	require.Equal(t, "Bob", bought.Name)

	resp = srv.get(t, "/api/marketplace", "")
	decode(t, resp, &market)
	require.Len(t, market, 1)
	require.NotNil(t, market[0].Owner)
	require.Equal(t, "Bob", *market[0].Owner)

	resp = srv.get(t, fmt.Sprintf("/api/history/%d", coinID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history struct {
		Names []string `json:"names"`
	}
	decode(t, resp, &history)
	require.Equal(t, []string{"Alice"}, history.Names)

	// A second purchase by the current owner conflicts.
	resp = srv.post(t, fmt.Sprintf("/api/buy/%d", coinID), bobToken, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestGenerateRejectsDuplicateTripleWith409(t *testing.T) {
	srv := newTestServer(t)
	defer srv.close()

	aliceToken, _ := srv.signup(t, "Alice", "alice@example.com")

	resp := srv.generate(t, aliceToken, 1, 2, 3, 50)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = srv.generate(t, aliceToken, 1, 2, 3, 50)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestGenerateRejectsInvalidHeadersWith400(t *testing.T) {
	srv := newTestServer(t)
	defer srv.close()

	aliceToken, _ := srv.signup(t, "Alice", "alice@example.com")

	// Repeated component.
	resp := srv.generate(t, aliceToken, 4, 4, 5, 50)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Unparsable amount.
	resp = srv.post(t, "/api/generate", aliceToken, map[string]string{
		"Bit1": "1", "Bit2": "2", "Bit3": "3", "Amount": "lots",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRefreshIssuesUsableAccessToken(t *testing.T) {
	srv := newTestServer(t)
	defer srv.close()

	_, refresh := srv.signup(t, "Alice", "alice@example.com")

	resp := srv.get(t, "/api/refresh", refresh)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var exchanged struct {
		AccessToken string `json:"accessToken"`
	}
	decode(t, resp, &exchanged)
	require.NotEmpty(t, exchanged.AccessToken)

	resp = srv.get(t, "/api/protected", exchanged.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = srv.get(t, "/api/refresh", "garbage-token")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = srv.get(t, "/api/refresh", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestClientEndpointMapsUnknownIDTo401(t *testing.T) {
	srv := newTestServer(t)
	defer srv.close()

	srv.signup(t, "Alice", "alice@example.com")

	resp := srv.get(t, "/api/client/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info struct {
		Client struct {
			Name string `json:"name"`
		} `json:"client"`
	}
	decode(t, resp, &info)
	require.Equal(t, "Alice", info.Client.Name)

	resp = srv.get(t, "/api/client/999", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = srv.get(t, "/api/client/not-a-number", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestFindBitsReports204WhenSpaceIsExhausted(t *testing.T) {
	srv := newTestServer(t)
	defer srv.close()

	aliceToken, _ := srv.signup(t, "Alice", "alice@example.com")

	for b1 := bitslow.BitMin; b1 <= bitslow.BitMax; b1++ {
		for b2 := bitslow.BitMin; b2 <= bitslow.BitMax; b2++ {
			for b3 := bitslow.BitMin; b3 <= bitslow.BitMax; b3++ {
				triple := bitslow.Triple{Bit1: b1, Bit2: b2, Bit3: b3}
				if !triple.Valid() {
					continue
				}
				resp := srv.generate(t, aliceToken, b1, b2, b3, 10)
				require.Equal(t, http.StatusOK, resp.StatusCode)
				resp.Body.Close()
			}
		}
	}

	resp := srv.get(t, "/api/findbits", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}
