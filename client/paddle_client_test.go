package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaddleClientExtractTextFromBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Images []string `json:"images"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"aW1n"}, body.Images)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[[{"text":"Total factura 52,30 €","confidence":0.9},{"text":" ","confidence":0.1},{"text":"Consumo 300 kWh","confidence":0.7}]]}`))
	}))
	defer srv.Close()

	text, conf, err := NewPaddleClient(srv.URL).ExtractTextFromBytes(context.Background(), []byte("img"))
	require.NoError(t, err)

	assert.Equal(t, "Total factura 52,30 €\nConsumo 300 kWh\n", text)
	assert.InDelta(t, 80.0, conf, 0.001)
}

func TestPaddleClientErrors(t *testing.T) {
	_, _, err := NewPaddleClient("").ExtractTextFromBytes(context.Background(), []byte("img"))
	assert.ErrorIs(t, err, ErrPaddleDisabled)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, _, err = NewPaddleClient(srv.URL).ExtractTextFromBytes(context.Background(), []byte("img"))
	assert.ErrorContains(t, err, "status 503")

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer empty.Close()

	_, _, err = NewPaddleClient(empty.URL).ExtractTextFromBytes(context.Background(), []byte("img"))
	assert.Error(t, err)
}
