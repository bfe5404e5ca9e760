package httpclient

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("with default config", func(t *testing.T) {
		client := NewWithDefaults()
		assert.NotNil(t, client)
		assert.NotNil(t, client.client)
		assert.NotNil(t, client.breaker)
		assert.NotNil(t, client.logger)
	})

	t.Run("with custom config", func(t *testing.T) {
		cfg := Config{
			Timeout:          10 * time.Second,
			RetryAttempts:    2,
			CircuitThreshold: 10,
		}
		client := New(cfg)
		assert.Equal(t, 2, client.config.RetryAttempts)
		assert.Equal(t, 10, client.config.CircuitThreshold)
	})
}

func TestClient_Get(t *testing.T) {
	t.Run("successful request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("#EXTM3U\n"))
		}))
		defer server.Close()

		client := NewWithDefaults()
		resp, err := client.Get(context.Background(), server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "#EXTM3U\n", string(body))
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewWithDefaults()
		_, err := client.Get(context.Background(), server.URL)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnexpectedCode)
	})

	t.Run("retries on 503", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("ok"))
		}))
		defer server.Close()

		cfg := DefaultConfig()
		cfg.RetryAttempts = 2
		cfg.RetryDelay = time.Millisecond
		client := New(cfg)

		resp, err := client.Get(context.Background(), server.URL)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, int32(2), calls.Load())
	})
}

func TestClient_GzipDecompression(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gw := gzip.NewWriter(w)
		gw.Write([]byte("compressed payload"))
		gw.Close()
	}))
	defer server.Close()

	client := NewWithDefaults()
	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "compressed payload", string(body))
}

func TestClient_GetWithProxyFallback(t *testing.T) {
	t.Run("direct success skips proxy", func(t *testing.T) {
		var proxyCalls atomic.Int32
		proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			proxyCalls.Add(1)
		}))
		defer proxy.Close()

		origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("direct"))
		}))
		defer origin.Close()

		cfg := DefaultConfig()
		cfg.ProxyPrefix = proxy.URL + "/fetch?url="
		client := New(cfg)

		resp, err := client.GetWithProxyFallback(context.Background(), origin.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "direct", string(body))
		assert.Equal(t, int32(0), proxyCalls.Load())
	})

	t.Run("falls back to proxy exactly once", func(t *testing.T) {
		origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer origin.Close()

		var proxyCalls atomic.Int32
		proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			proxyCalls.Add(1)
			w.Write([]byte("proxied"))
		}))
		defer proxy.Close()

		cfg := DefaultConfig()
		cfg.ProxyPrefix = proxy.URL + "/fetch?url="
		client := New(cfg)

		resp, err := client.GetWithProxyFallback(context.Background(), origin.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "proxied", string(body))
		assert.Equal(t, int32(1), proxyCalls.Load())
	})

	t.Run("both legs fail", func(t *testing.T) {
		origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer origin.Close()

		proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer proxy.Close()

		cfg := DefaultConfig()
		cfg.ProxyPrefix = proxy.URL + "/fetch?url="
		client := New(cfg)

		_, err := client.GetWithProxyFallback(context.Background(), origin.URL)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFetchFailed)
	})

	t.Run("no proxy configured returns direct error", func(t *testing.T) {
		origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer origin.Close()

		client := NewWithDefaults()
		_, err := client.GetWithProxyFallback(context.Background(), origin.URL)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrFetchFailed)
	})

	t.Run("cancellation is never retried", func(t *testing.T) {
		var proxyCalls atomic.Int32
		proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			proxyCalls.Add(1)
		}))
		defer proxy.Close()

		origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("never reached"))
		}))
		defer origin.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		cfg := DefaultConfig()
		cfg.ProxyPrefix = proxy.URL + "/fetch?url="
		client := New(cfg)

		_, err := client.GetWithProxyFallback(ctx, origin.URL)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, int32(0), proxyCalls.Load())
	})
}

func TestCircuitBreaker(t *testing.T) {
	t.Run("opens after threshold failures", func(t *testing.T) {
		cb := NewCircuitBreaker(3, time.Minute, 1)
		assert.Equal(t, CircuitClosed, cb.State())

		for i := 0; i < 3; i++ {
			assert.True(t, cb.Allow())
			cb.RecordFailure()
		}
		assert.Equal(t, CircuitOpen, cb.State())
		assert.False(t, cb.Allow())
	})

	t.Run("half-open after timeout then closes on success", func(t *testing.T) {
		cb := NewCircuitBreaker(1, 10*time.Millisecond, 1)
		cb.RecordFailure()
		assert.Equal(t, CircuitOpen, cb.State())

		time.Sleep(20 * time.Millisecond)
		assert.True(t, cb.Allow())
		assert.Equal(t, CircuitHalfOpen, cb.State())

		cb.RecordSuccess()
		assert.Equal(t, CircuitClosed, cb.State())
	})

	t.Run("half-open failure reopens", func(t *testing.T) {
		cb := NewCircuitBreaker(1, 10*time.Millisecond, 1)
		cb.RecordFailure()
		time.Sleep(20 * time.Millisecond)
		require.True(t, cb.Allow())

		cb.RecordFailure()
		assert.Equal(t, CircuitOpen, cb.State())
	})

	t.Run("reset closes circuit", func(t *testing.T) {
		cb := NewCircuitBreaker(1, time.Minute, 1)
		cb.RecordFailure()
		require.Equal(t, CircuitOpen, cb.State())

		cb.Reset()
		assert.Equal(t, CircuitClosed, cb.State())
		assert.Equal(t, 0, cb.Failures())
	})
}

func TestObfuscateURL(t *testing.T) {
	u, err := url.Parse("http://example.com/get.php?username=bob&password=hunter2&type=m3u_plus")
	require.NoError(t, err)

	got := obfuscateURL(u)
	assert.Contains(t, got, "username=bob")
	assert.Contains(t, got, "password=%2A%2A%2A")
	assert.NotContains(t, got, "hunter2")
}
