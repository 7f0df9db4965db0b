package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryingTransportRetriesOnServerError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	opts := DefaultRetryOptions()
	opts.BaseDelay = time.Millisecond
	opts.MaxDelay = 5 * time.Millisecond

	client := &http.Client{Transport: NewRetryingTransport(nil, opts)}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, attempts)
}

func TestRetryingTransportFailsImmediatelyOnNonRetryableStatus(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewRetryingTransport(nil, DefaultRetryOptions())}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1, attempts)
}

func TestRetryingTransportHonorsRetryAfterSeconds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	opts := DefaultRetryOptions()
	opts.BaseDelay = time.Millisecond
	client := &http.Client{Transport: NewRetryingTransport(nil, opts)}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, attempts)
}

func TestFakeClientBlocksCreateListDelete(t *testing.T) {
	f := NewFakeClient()
	ctx := context.Background()

	created, err := f.Blocks().Create(ctx, map[string]any{"name": "conventions", "value": "v1"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	list, err := f.Blocks().List(ctx, ListParams{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, f.Blocks().Delete(ctx, created.ID))
	list, err = f.Blocks().List(ctx, ListParams{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFakeClientAgentAttachBlock(t *testing.T) {
	f := NewFakeClient()
	ctx := context.Background()

	require.NoError(t, f.Agents().AttachBlock(ctx, "agent-1", "block-1"))
	attached, err := f.Agents().ListBlocks(ctx, "agent-1")
	require.NoError(t, err)
	require.Len(t, attached, 1)

	require.NoError(t, f.Agents().DetachBlock(ctx, "agent-1", "block-1"))
	attached, err = f.Agents().ListBlocks(ctx, "agent-1")
	require.NoError(t, err)
	assert.Empty(t, attached)
}
