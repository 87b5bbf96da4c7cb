package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitpal/splitpal/internal/auth"
	"github.com/splitpal/splitpal/internal/directory"
	"github.com/splitpal/splitpal/internal/notify"
	"github.com/splitpal/splitpal/internal/service"
	"github.com/splitpal/splitpal/internal/storage/sqlite"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testServer struct {
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	dir := directory.New(store)
	authn := auth.NewPasswordAuthenticator(store)
	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	ledger := service.NewLedgerService(store, dir, notify.Noop{})
	reports := service.NewReportService(store, dir)

	srv := New(authn, jwtManager, ledger, reports, dir)
	return &testServer{router: srv.Router()}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// register creates an account and returns its token and user id.
func (ts *testServer) register(t *testing.T, name string) (token, userID string) {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    name + "@example.com",
		"name":     name,
		"password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var session struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	return session.Token, session.User.ID
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)
	token, userID := ts.register(t, "alice")
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, userID)

	rec := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "correct horse",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "alice@example.com",
		"name":     "alice",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/dashboard", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)
	token, userID := ts.register(t, "alice")

	rec := ts.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	decodeBody(t, rec, &profile)
	assert.Equal(t, userID, profile.ID)
	assert.Equal(t, "alice@example.com", profile.Email)
}

func TestExpenseFlow(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, aliceID := ts.register(t, "alice")
	_, bobID := ts.register(t, "bob")

	rec := ts.do(t, http.MethodPost, "/api/expenses", aliceToken, map[string]any{
		"description": "Dinner",
		"amount":      30.00,
		"paidBy":      aliceID,
		"splitType":   "equal",
		"participants": []map[string]any{
			{"userId": aliceID},
			{"userId": bobID},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &created)
	require.NotEmpty(t, created.ID)

	rec = ts.do(t, http.MethodGet, "/api/balances/"+bobID, aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balance struct {
		Balance float64 `json:"balance"`
	}
	decodeBody(t, rec, &balance)
	assert.InDelta(t, 15.00, balance.Balance, 0.001)

	rec = ts.do(t, http.MethodDelete, "/api/expenses/"+created.ID, aliceToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/expenses/"+created.ID, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExpenseValidationMapsTo400(t *testing.T) {
	ts := newTestServer(t)
	token, userID := ts.register(t, "alice")

	rec := ts.do(t, http.MethodPost, "/api/expenses", token, map[string]any{
		"description": "Bad",
		"amount":      0,
		"paidBy":      userID,
		"splitType":   "equal",
		"participants": []map[string]any{
			{"userId": userID},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettlementFlow(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, aliceID := ts.register(t, "alice")
	bobToken, bobID := ts.register(t, "bob")

	rec := ts.do(t, http.MethodPost, "/api/settlements", bobToken, map[string]any{
		"paidBy":     bobID,
		"receivedBy": aliceID,
		"amount":     12.50,
		"note":       "venmo",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &created)

	// A third party cannot record a settlement between others.
	carolToken, _ := ts.register(t, "carol")
	rec = ts.do(t, http.MethodPost, "/api/settlements", carolToken, map[string]any{
		"paidBy":     bobID,
		"receivedBy": aliceID,
		"amount":     1.00,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/settlements/"+created.ID, aliceToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGroupFlow(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, aliceID := ts.register(t, "alice")
	bobToken, bobID := ts.register(t, "bob")
	carolToken, carolID := ts.register(t, "carol")

	rec := ts.do(t, http.MethodPost, "/api/groups", aliceToken, map[string]any{
		"name":      "Trip",
		"memberIds": []string{bobID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &created)

	rec = ts.do(t, http.MethodPost, "/api/expenses", aliceToken, map[string]any{
		"description": "Hotel",
		"amount":      200.00,
		"groupId":     created.ID,
		"paidBy":      aliceID,
		"splitType":   "equal",
		"participants": []map[string]any{
			{"userId": aliceID},
			{"userId": bobID},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Non-members cannot see group balances.
	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/api/groups/%s/balances", created.ID), carolToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/groups/"+created.ID, bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Name     string `json:"name"`
		Expenses []struct {
			ID string `json:"id"`
		} `json:"expenses"`
	}
	decodeBody(t, rec, &detail)
	assert.Equal(t, "Trip", detail.Name)
	assert.Len(t, detail.Expenses, 1)

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/api/groups/%s/balances", created.ID), bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balances []struct {
		ID           string  `json:"id"`
		TotalBalance float64 `json:"totalBalance"`
	}
	decodeBody(t, rec, &balances)
	require.Len(t, balances, 2)
	var sum float64
	for _, b := range balances {
		sum += b.TotalBalance
	}
	assert.InDelta(t, 0, sum, 0.001)

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/api/groups/%s/members", created.ID), aliceToken, map[string]any{
		"memberIds": []string{carolID},
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/groups", carolToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var groups []struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &groups)
	assert.Len(t, groups, 1)
}

func TestDashboardAndSpending(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, aliceID := ts.register(t, "alice")
	_, bobID := ts.register(t, "bob")

	date := time.Now().UTC().Format(time.RFC3339)
	rec := ts.do(t, http.MethodPost, "/api/expenses", aliceToken, map[string]any{
		"description": "Groceries",
		"amount":      40.00,
		"date":        date,
		"paidBy":      aliceID,
		"splitType":   "equal",
		"participants": []map[string]any{
			{"userId": aliceID},
			{"userId": bobID},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/dashboard", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dashboard struct {
		TotalBalance float64 `json:"totalBalance"`
		YouAreOwed   float64 `json:"youAreOwed"`
	}
	decodeBody(t, rec, &dashboard)
	assert.InDelta(t, 20.00, dashboard.TotalBalance, 0.001)
	assert.InDelta(t, 20.00, dashboard.YouAreOwed, 0.001)

	rec = ts.do(t, http.MethodGet, "/api/dashboard/spending", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var spending struct {
		Total  float64 `json:"total"`
		Months []struct {
			Month int     `json:"month"`
			Total float64 `json:"total"`
		} `json:"months"`
	}
	decodeBody(t, rec, &spending)
	assert.Len(t, spending.Months, 12)
	assert.InDelta(t, 20.00, spending.Total, 0.001)

	rec = ts.do(t, http.MethodGet, "/api/dashboard/spending?year=badyear", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPairwiseBalanceUnknownUser(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.register(t, "alice")

	rec := ts.do(t, http.MethodGet, "/api/balances/ghost", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchUsers(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.register(t, "alice")
	ts.register(t, "alicia")

	rec := ts.do(t, http.MethodGet, "/api/users/search?q=ali", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var results []struct {
		Name string `json:"name"`
	}
	decodeBody(t, rec, &results)
	// The caller is excluded from their own search results.
	require.Len(t, results, 1)
	assert.Equal(t, "alicia", results[0].Name)
}
