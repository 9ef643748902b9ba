package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRemote_Predict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "http://phish.test/login", req.URL)

		_ = json.NewEncoder(w).Encode(predictResponse{Verdict: "Given website is a phishing site"})
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, 5*time.Second, zap.NewNop())
	verdict, err := r.Predict(context.Background(), "http://phish.test/login")
	require.NoError(t, err)
	assert.Equal(t, "Given website is a phishing site", verdict)
}

func TestRemote_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-200", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}},
		{"empty verdict", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"verdict": ""}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewRemote(srv.URL, 5*time.Second, zap.NewNop()).Predict(context.Background(), "http://example.com")
			assert.Error(t, err)
		})
	}
}

func TestRemote_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	_, err := NewRemote(endpoint, time.Second, zap.NewNop()).Predict(context.Background(), "http://example.com")
	assert.Error(t, err)
}
