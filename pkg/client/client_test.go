package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mindburn-Labs/contacts/pkg/api"
	"github.com/Mindburn-Labs/contacts/pkg/client"
	"github.com/Mindburn-Labs/contacts/pkg/handler"
	"github.com/Mindburn-Labs/contacts/pkg/store"
)

func newServer(t *testing.T, mem *store.MemoryStore) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.New(mem, handler.WithLogger(logger))
	srv := httptest.NewServer(api.NewServer(context.Background(), h, api.ServerConfig{}, logger))
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateContact(t *testing.T) {
	mem := store.NewMemoryStore()
	srv := newServer(t, mem)
	c := client.New(srv.URL + "/")

	msg, err := c.CreateContact(context.Background(), "john", "doe")
	require.NoError(t, err)
	assert.Equal(t, "Hello john doe!", msg)
	assert.Equal(t, 1, mem.Len())
}

func TestCreateContact_APIError(t *testing.T) {
	srv := newServer(t, store.NewMemoryStore())
	c := client.New(srv.URL)

	_, err := c.CreateContact(context.Background(), "john", "")

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid field: last_name", apiErr.Message)
	assert.Equal(t, "contacts api 400: Invalid field: last_name", err.Error())
}

func TestCreateContact_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := client.New(srv.URL).CreateContact(context.Background(), "a", "b")

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestHealth(t *testing.T) {
	srv := newServer(t, store.NewMemoryStore())

	status, err := client.New(srv.URL, client.WithTimeout(time.Second)).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status["status"])
}

func TestCreateContact_ContextCancelled(t *testing.T) {
	srv := newServer(t, store.NewMemoryStore())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.New(srv.URL, client.WithHTTPClient(srv.Client())).CreateContact(ctx, "a", "b")
	assert.ErrorIs(t, err, context.Canceled)
}
