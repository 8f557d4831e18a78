package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentpipe/crm/pkg/httpapi"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	err := httpapi.WriteError(rec, http.StatusForbidden, "FORBIDDEN", "admin role required", map[string]string{
		"request_id": "req-1",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var envelope httpapi.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "FORBIDDEN", envelope.Code)
	assert.Equal(t, "admin role required", envelope.Message)
	assert.Equal(t, "req-1", envelope.Meta["request_id"])
}

func TestWriteJSON_NilPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, httpapi.WriteJSON(rec, http.StatusNoContent, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
