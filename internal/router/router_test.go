package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finny/internal/config"
	"finny/internal/logger"
	"finny/internal/middleware"
	"finny/internal/testutil"
)

const testSecret = "router-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
}

// testApp holds the full application stack backed by an isolated in-memory SQLite.
type testApp struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func setupApp(t *testing.T) (*testApp, func(email string) string) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	router := New(Deps{Config: &config.Config{JWTSecret: testSecret}, DB: db})

	login := func(email string) string {
		user := testutil.CreateTestUserWithEmail(t, db, email)
		token, err := middleware.GenerateAccessToken(user.ID, user.Email, testSecret, time.Hour)
		require.NoError(t, err)
		return token
	}

	return &testApp{t: t, router: router, token: login("owner@test.com")}, login
}

func (app *testApp) request(method, path, body string) *httptest.ResponseRecorder {
	return app.requestAs(app.token, method, path, body)
}

func (app *testApp) requestAs(token, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	return rec
}

// create posts body and returns the id of the object under key.
func (app *testApp) create(path, key, body string) string {
	app.t.Helper()
	rec := app.request(http.MethodPost, path, body)
	require.Equal(app.t, http.StatusCreated, rec.Code, rec.Body.String())
	return parseJSON(app.t, rec)[key].(map[string]interface{})["id"].(string)
}

func (app *testApp) balance(accountID string) string {
	app.t.Helper()
	rec := app.request(http.MethodGet, "/api/v1/accounts/"+accountID, "")
	require.Equal(app.t, http.StatusOK, rec.Code, rec.Body.String())
	raw := parseJSON(app.t, rec)["account"].(map[string]interface{})["balance"]
	d, err := decimal.NewFromString(fmt.Sprint(raw))
	require.NoError(app.t, err)
	return d.StringFixed(2)
}

func (app *testApp) usage(tagID string) float64 {
	app.t.Helper()
	rec := app.request(http.MethodGet, "/api/v1/tags/"+tagID, "")
	require.Equal(app.t, http.StatusOK, rec.Code, rec.Body.String())
	return parseJSON(app.t, rec)["tag"].(map[string]interface{})["usage_count"].(float64)
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func TestHealthAndCORS(t *testing.T) {
	app, _ := setupApp(t)

	rec := app.requestAs("", http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = app.requestAs("", http.MethodOptions, "/api/v1/transactions", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app, _ := setupApp(t)

	for _, path := range []string{"/api/v1/accounts", "/api/v1/transactions", "/api/v1/tags", "/api/v1/categories"} {
		rec := app.requestAs("", http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := app.requestAs("not-a-jwt", http.MethodGet, "/api/v1/accounts", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLedgerFlow(t *testing.T) {
	app, _ := setupApp(t)

	checking := app.create("/api/v1/accounts", "account", `{"name":"Checking","type":"bank","initial_balance":"1000.00"}`)
	savings := app.create("/api/v1/accounts", "account", `{"name":"Savings","type":"bank"}`)
	food := app.create("/api/v1/categories", "category", `{"name":"Food","type":"expense"}`)
	tag := app.create("/api/v1/tags", "tag", `{"name":"groceries"}`)

	expense := app.create("/api/v1/transactions", "transaction", fmt.Sprintf(
		`{"amount":"50.25","type":"expense","account_id":%q,"category_id":%q,"tag_ids":[%q],"date":"2024-01-15","note":"weekly shop"}`,
		checking, food, tag))
	assert.Equal(t, "949.75", app.balance(checking))
	assert.Equal(t, float64(1), app.usage(tag))

	transfer := app.create("/api/v1/transactions", "transaction", fmt.Sprintf(
		`{"amount":100,"type":"transfer","account_id":%q,"to_account_id":%q,"date":"2024-01-16"}`,
		checking, savings))
	assert.Equal(t, "849.75", app.balance(checking))
	assert.Equal(t, "100.00", app.balance(savings))

	// Reprice the expense and drop its tag.
	rec := app.request(http.MethodPut, "/api/v1/transactions/"+expense, `{"amount":"70.00","tag_ids":[]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "830.00", app.balance(checking))
	assert.Equal(t, float64(0), app.usage(tag))

	rec = app.request(http.MethodDelete, "/api/v1/transactions/"+transfer, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "930.00", app.balance(checking))
	assert.Equal(t, "0.00", app.balance(savings))

	rec = app.request(http.MethodGet, "/api/v1/transactions/"+transfer, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.request(http.MethodGet, "/api/v1/transactions?account_id="+checking, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := parseJSON(t, rec)
	assert.Equal(t, float64(1), list["total_items"])

	rec = app.request(http.MethodGet, "/api/v1/accounts/total-balance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "930.00", parseJSON(t, rec)["total_balance"])

	rec = app.request(http.MethodGet, "/api/v1/accounts/"+checking+"/reconcile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	recon := parseJSON(t, rec)["reconciliation"].(map[string]interface{})
	assert.Equal(t, true, recon["consistent"])
}

func TestLedgerFlow_FailedWriteLeavesNoTrace(t *testing.T) {
	app, _ := setupApp(t)

	checking := app.create("/api/v1/accounts", "account", `{"name":"Checking","type":"bank","initial_balance":"200.00"}`)
	tag := app.create("/api/v1/tags", "tag", `{"name":"rent"}`)

	// A transfer to an account that does not exist must not debit the source
	// or count the tag.
	rec := app.request(http.MethodPost, "/api/v1/transactions", fmt.Sprintf(
		`{"amount":"75.00","type":"transfer","account_id":%q,"to_account_id":"0190c5a0-0000-7000-8000-00000000dead","tag_ids":[%q]}`,
		checking, tag))
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	assert.Equal(t, "200.00", app.balance(checking))
	assert.Equal(t, float64(0), app.usage(tag))

	rec = app.request(http.MethodPost, "/api/v1/transactions", fmt.Sprintf(
		`{"amount":"75.00","type":"transfer","account_id":%q}`, checking))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_TRANSFER", parseJSON(t, rec)["error"].(map[string]interface{})["code"])

	rec = app.request(http.MethodGet, "/api/v1/transactions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), parseJSON(t, rec)["total_items"])
}

func TestLedgerFlow_OwnerIsolation(t *testing.T) {
	app, login := setupApp(t)
	intruder := login("intruder@test.com")

	checking := app.create("/api/v1/accounts", "account", `{"name":"Checking","type":"bank","initial_balance":"10.00"}`)
	txn := app.create("/api/v1/transactions", "transaction", fmt.Sprintf(
		`{"amount":"1.00","type":"expense","account_id":%q}`, checking))

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/v1/accounts/" + checking, ""},
		{http.MethodGet, "/api/v1/transactions/" + txn, ""},
		{http.MethodPut, "/api/v1/transactions/" + txn, `{"amount":"5.00"}`},
		{http.MethodDelete, "/api/v1/transactions/" + txn, ""},
	} {
		rec := app.requestAs(intruder, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.path)
	}

	// Spending from someone else's account is rejected too.
	rec := app.requestAs(intruder, http.MethodPost, "/api/v1/transactions", fmt.Sprintf(
		`{"amount":"1.00","type":"expense","account_id":%q}`, checking))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, "9.00", app.balance(checking))
}
