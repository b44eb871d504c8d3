package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportbot/internal/constants"
	"supportbot/internal/locales"
)

func TestParseTimeParam(t *testing.T) {
	t.Run("пустое значение допустимо", func(t *testing.T) {
		got, ok := parseTimeParam("")
		assert.True(t, ok)
		assert.Nil(t, got)
	})

	t.Run("дата без времени", func(t *testing.T) {
		got, ok := parseTimeParam("2025-06-01")
		require.True(t, ok)
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), *got)
	})

	t.Run("RFC3339", func(t *testing.T) {
		got, ok := parseTimeParam("2025-06-01T10:30:00Z")
		require.True(t, ok)
		require.NotNil(t, got)
		assert.Equal(t, 10, got.Hour())
	})

	t.Run("мусор отклоняется", func(t *testing.T) {
		_, ok := parseTimeParam("01.06.2025")
		assert.False(t, ok)
	})
}

func TestParsePagination(t *testing.T) {
	newReq := func(query string) *http.Request {
		return httptest.NewRequest(http.MethodGet, "/api/v1/session"+query, nil)
	}

	limit, offset := parsePagination(newReq(""))
	assert.Equal(t, 50, limit)
	assert.Equal(t, 0, offset)

	limit, offset = parsePagination(newReq("?limit=10&offset=30"))
	assert.Equal(t, 10, limit)
	assert.Equal(t, 30, offset)

	// Недопустимые значения откатываются на значения по умолчанию.
	limit, offset = parsePagination(newReq("?limit=-5&offset=-1"))
	assert.Equal(t, 50, limit)
	assert.Equal(t, 0, offset)

	limit, _ = parsePagination(newReq("?limit=100000"))
	assert.Equal(t, 50, limit)
}

func TestWriteJSONErrorLocalizesMessage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/7?lang=ru", nil)
	rec := httptest.NewRecorder()

	writeJSONError(rec, req, http.StatusNotFound, constants.ERR_USER_NOT_FOUND)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body jsonResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, constants.ERR_USER_NOT_FOUND, body.Code)
	assert.Equal(t, locales.ErrorMessage(constants.ERR_USER_NOT_FOUND, "ru"), body.Message)
}

func TestWriteJSONErrorDefaultsToUzbek(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/7", nil)
	rec := httptest.NewRecorder()

	writeJSONError(rec, req, http.StatusNotFound, constants.ERR_SESSION_NOT_FOUND)

	var body jsonResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, locales.ErrorMessage(constants.ERR_SESSION_NOT_FOUND, constants.LANG_UZ), body.Message)
}

func TestWriteJSONSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSONSuccess(rec, "ok", map[string]int{"value": 1})

	assert.Equal(t, http.StatusOK, rec.Code)
	var body jsonResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "success", body.Status)
	assert.Zero(t, body.Code)
	assert.NotNil(t, body.Data)
}
