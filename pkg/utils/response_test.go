package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorOmitsEmptyDetails(t *testing.T) {
	rr := httptest.NewRecorder()

	RespondError(rr, http.StatusNotFound, "fruit not found")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"fruit not found"}`, rr.Body.String())
}

func TestRespondErrorDetails(t *testing.T) {
	rr := httptest.NewRecorder()

	RespondErrorDetails(rr, http.StatusUnprocessableEntity, "validation failed", []map[string]string{{"field": "name"}})

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body["error"])
	assert.Len(t, body["details"], 1)
}

func TestSendSSEEvent(t *testing.T) {
	rr := httptest.NewRecorder()
	SetupSSEHeaders(rr)

	require.NoError(t, SendSSEEvent(rr, rr, "fruit.created", map[string]int{"id": 1}))
	require.NoError(t, SendSSEComment(rr, rr, "ping"))

	assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
	assert.Equal(t, "event: fruit.created\ndata: {\"id\":1}\n\n: ping\n\n", rr.Body.String())
	assert.True(t, rr.Flushed)
}
