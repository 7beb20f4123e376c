package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

func TestWriteServiceError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", models.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", models.ErrNotFound), http.StatusNotFound},
		{"validation", &models.ValidationError{Field: "media_type", Message: "must be audio or video"}, http.StatusBadRequest},
		{"upstream", &models.UpstreamError{Provider: "dolby", Operation: "submit_enhance", StatusCode: 503, Message: "unavailable"}, http.StatusBadGateway},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, WriteServiceError(rec, tc.err))
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), `"status":"error"`)
		})
	}
}

func TestUserID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/media/audios", nil)
	assert.Equal(t, "anonymous", UserID(r))

	r.Header.Set("X-User-ID", "user_42")
	assert.Equal(t, "user_42", UserID(r))
}

func TestRequireUserID(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/media/dubbing", nil)

	id, ok := RequireUserID(rec, r)
	assert.False(t, ok)
	assert.Empty(t, id)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	r.Header.Set("X-User-ID", "user_42")
	id, ok = RequireUserID(rec, r)
	assert.True(t, ok)
	assert.Equal(t, "user_42", id)
	assert.Zero(t, rec.Body.Len())
}

func TestDecodeAndValidate(t *testing.T) {
	type payload struct {
		MediaID   string `json:"media_id" validate:"required"`
		MediaType string `json:"media_type" validate:"required,oneof=audio video"`
	}

	t.Run("valid body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"media_id":"aud_1","media_type":"audio"}`))
		var p payload
		assert.True(t, DecodeAndValidate(rec, r, &p))
		assert.Equal(t, "aud_1", p.MediaID)
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"media_id":`))
		var p payload
		assert.False(t, DecodeAndValidate(rec, r, &p))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("failing validation tag", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"media_id":"aud_1","media_type":"image"}`))
		var p payload
		assert.False(t, DecodeAndValidate(rec, r, &p))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
