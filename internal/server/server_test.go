package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/email-ledger/internal/ledger"
	"fjacquet/email-ledger/internal/logging"
	"fjacquet/email-ledger/internal/models"
)

type stubRunner struct {
	result      models.ProcessResult
	err         error
	onceCalls   int
	recentCalls int
	lastLimit   int
}

func (r *stubRunner) ProcessOnce(context.Context) (models.ProcessResult, error) {
	r.onceCalls++
	return r.result, r.err
}

func (r *stubRunner) ProcessRecent(_ context.Context, limit int) (models.ProcessResult, error) {
	r.recentCalls++
	r.lastLimit = limit
	return r.result, r.err
}

func newTestServer(t *testing.T, runner ProcessRunner) (*Server, *ledger.Store) {
	t.Helper()
	store, err := ledger.Open(":memory:", logging.NewMockLogger())
	require.NoError(t, err)
	require.NoError(t, store.Setup())
	t.Cleanup(func() { store.Close() })
	return New(store, runner, logging.NewMockLogger()), store
}

func seedTransaction(t *testing.T, store *ledger.Store, messageID, category, amount string) *models.Transaction {
	t.Helper()
	data := models.NewExtractedFinancialData()
	data.Vendor = "Uber"
	data.Description = "Trip"
	if amount != "" {
		data.SetAmount(decimal.RequireFromString(amount))
	}
	tx, err := store.Save(models.NormalizedContent{
		MessageID: messageID,
		Subject:   "Your Uber receipt",
		Sender:    "receipts@uber.com",
	}, data, models.Classification{Category: category})
	require.NoError(t, err)
	return tx
}

func doRequest(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echoContentType, "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

const echoContentType = "Content-Type"

func TestRootAndHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := doRequest(s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "email-ledger")

	rec = doRequest(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var health map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.NotEmpty(t, health["timestamp"])
}

func TestListTransactions(t *testing.T) {
	s, store := newTestServer(t, nil)
	seedTransaction(t, store, "msg-1", models.CategoryTransport, "18.20")
	seedTransaction(t, store, "msg-2", models.CategoryOther, "5.00")

	rec := doRequest(s, http.MethodGet, "/transactions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Transactions []models.Transaction `json:"transactions"`
		Count        int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)

	rec = doRequest(s, http.MethodGet, "/transactions?limit=1", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestGetTransaction(t *testing.T) {
	s, store := newTestServer(t, nil)
	tx := seedTransaction(t, store, "msg-1", models.CategoryTransport, "18.20")

	rec := doRequest(s, http.MethodGet, "/transactions/"+itoa(tx.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "msg-1", got.EmailID)

	rec = doRequest(s, http.MethodGet, "/transactions/9999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(s, http.MethodGet, "/transactions/not-a-number", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTransaction(t *testing.T) {
	s, store := newTestServer(t, nil)
	tx := seedTransaction(t, store, "msg-1", models.CategoryOther, "18.20")

	rec := doRequest(s, http.MethodPut, "/transactions/"+itoa(tx.ID),
		`{"vendor": "Uber BV", "category": "transport"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Uber BV", got.Vendor)
	assert.Equal(t, models.CategoryTransport, got.Category)

	rec = doRequest(s, http.MethodPut, "/transactions/"+itoa(tx.ID), `{"category": "bogus"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodPut, "/transactions/9999", `{"vendor": "x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteTransaction(t *testing.T) {
	s, store := newTestServer(t, nil)
	tx := seedTransaction(t, store, "msg-1", models.CategoryOther, "18.20")

	rec := doRequest(s, http.MethodDelete, "/transactions/"+itoa(tx.ID), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(s, http.MethodDelete, "/transactions/"+itoa(tx.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListByCategory(t *testing.T) {
	s, store := newTestServer(t, nil)
	seedTransaction(t, store, "msg-1", models.CategoryTransport, "18.20")
	seedTransaction(t, store, "msg-2", models.CategoryOther, "5.00")

	rec := doRequest(s, http.MethodGet, "/transactions/category/transport", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Category string               `json:"category"`
		Count    int                  `json:"count"`
		Txs      []models.Transaction `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)

	rec = doRequest(s, http.MethodGet, "/transactions/category/crypto", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummary(t *testing.T) {
	s, store := newTestServer(t, nil)
	seedTransaction(t, store, "msg-1", models.CategoryTransport, "18.20")
	seedTransaction(t, store, "msg-2", models.CategoryTransport, "17.30")
	seedTransaction(t, store, "msg-3", models.CategoryOther, "")

	rec := doRequest(s, http.MethodGet, "/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.SummaryStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(3), stats.TotalTransactions)
	assert.True(t, stats.TotalAmount.Equal(decimal.RequireFromString("35.50")))
	assert.Equal(t, int64(2), stats.CategoryBreakdown[models.CategoryTransport])
}

func TestProcessEmails(t *testing.T) {
	runner := &stubRunner{result: models.ProcessResult{RunID: "run-1", ProcessedCount: 3, SuccessfulExtractions: 2}}
	s, _ := newTestServer(t, runner)

	rec := doRequest(s, http.MethodPost, "/process-emails", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, runner.onceCalls)

	var result models.ProcessResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 3, result.ProcessedCount)
	assert.Equal(t, 2, result.SuccessfulExtractions)
}

func TestProcessEmailsFailure(t *testing.T) {
	runner := &stubRunner{err: errors.New("mailbox unavailable")}
	s, _ := newTestServer(t, runner)

	rec := doRequest(s, http.MethodPost, "/process-emails", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestProcessRecent(t *testing.T) {
	runner := &stubRunner{result: models.ProcessResult{RunID: "run-1"}}
	s, _ := newTestServer(t, runner)

	rec := doRequest(s, http.MethodPost, "/process-recent", `{"count": 5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, runner.lastLimit)

	rec = doRequest(s, http.MethodPost, "/process-recent", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, runner.lastLimit)

	rec = doRequest(s, http.MethodPost, "/process-recent", `{"count": -1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessRecentCountQueryParam(t *testing.T) {
	runner := &stubRunner{result: models.ProcessResult{RunID: "run-1"}}
	s, _ := newTestServer(t, runner)

	rec := doRequest(s, http.MethodPost, "/process-recent?count=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, runner.lastLimit)

	rec = doRequest(s, http.MethodPost, "/process-recent?count=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodPost, "/process-recent?count=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessingDisabledWithoutRunner(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := doRequest(s, http.MethodPost, "/process-emails", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doRequest(s, http.MethodPost, "/process-recent", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
