package tagger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClassify(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/tags", r.URL.Path)
		require.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Result{
			Rating:        "questionable",
			GeneralTags:   []string{"outdoors", "rain"},
			CharacterTags: []string{"someone"},
		})
	}))
	defer server.Close()

	client, err := New(&Config{BaseURL: server.URL, Timeout: time.Second}, zap.NewNop())
	require.NoError(t, err)

	result, err := client.Classify(context.Background(), []byte("image-bytes"))
	require.NoError(t, err)

	assert.Equal(t, []byte("image-bytes"), gotBody)
	assert.Equal(t, "questionable", result.Rating)
	assert.Equal(t, []string{"outdoors", "rain"}, result.GeneralTags)
	assert.Equal(t, []string{"someone"}, result.CharacterTags)
}

func TestClassifyErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := New(&Config{BaseURL: server.URL, Timeout: time.Second}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Classify(context.Background(), []byte("image-bytes"))
	assert.ErrorContains(t, err, "503")
}

func TestClassifyEmptyInput(t *testing.T) {
	client, err := New(&Config{BaseURL: "http://localhost:1"}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Classify(context.Background(), nil)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, (&Config{}).Validate())
	assert.NoError(t, (&Config{BaseURL: "http://tagger:5000"}).Validate())
}
