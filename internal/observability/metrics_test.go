package observability

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordRequestAccumulates(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/login", http.MethodPost, http.StatusOK, 20*time.Millisecond)
	m.RecordRequest("/login", http.MethodPost, http.StatusOK, 30*time.Millisecond)
	m.RecordRequest("/login", http.MethodPost, http.StatusUnauthorized, 5*time.Millisecond)

	count, total := m.RequestStats("/login", http.MethodPost, http.StatusOK)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, 50*time.Millisecond, total)

	count, total = m.RequestStats("/login", http.MethodPost, http.StatusUnauthorized)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 5*time.Millisecond, total)

	count, total = m.RequestStats("/me", http.MethodGet, http.StatusOK)
	assert.Zero(t, count)
	assert.Zero(t, total)
}

func TestMetrics_RecordError(t *testing.T) {
	m := NewMetrics()

	m.RecordError("/login", http.MethodPost, "UNAUTHORIZED")
	m.RecordError("/login", http.MethodPost, "UNAUTHORIZED")

	assert.Equal(t, int64(2), m.ErrorCount("/login", http.MethodPost, "UNAUTHORIZED"))
	assert.Zero(t, m.ErrorCount("/login", http.MethodPost, "VALIDATION_FAILED"))
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics

	m.RecordRequest("/login", http.MethodPost, http.StatusOK, time.Millisecond)
	m.RecordError("/login", http.MethodPost, "UNAUTHORIZED")

	count, total := m.RequestStats("/login", http.MethodPost, http.StatusOK)
	assert.Zero(t, count)
	assert.Zero(t, total)
	assert.Zero(t, m.ErrorCount("/login", http.MethodPost, "UNAUTHORIZED"))
}
