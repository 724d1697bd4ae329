package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	pkgError "github.com/jivitsolutions/jivit-site/pkg/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_SignsAndDelivers(t *testing.T) {
	var got struct {
		Event   string         `json:"event"`
		Payload map[string]any `json:"payload"`
	}
	var signature, event string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		signature = r.Header.Get(HeaderSignature)
		event = r.Header.Get(HeaderEvent)
		assert.Equal(t, "sha256="+Sign(body, "s3cret"), signature)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(Options{URLs: []string{srv.URL}, Secret: "s3cret"})
	err := c.Send(context.Background(), "lead.created", map[string]any{"email": "ana@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "lead.created", event)
	assert.Equal(t, "lead.created", got.Event)
	assert.Equal(t, "ana@example.com", got.Payload["email"])
	assert.NotEmpty(t, signature)
}

func TestSend_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(Options{URLs: []string{srv.URL}, Retries: 3, Backoff: time.Millisecond})
	require.NoError(t, c.Send(context.Background(), "lead.created", nil))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSend_GivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Options{URLs: []string{srv.URL}, Retries: 2, Backoff: time.Millisecond})
	err := c.Send(context.Background(), "lead.created", nil)

	var wErr pkgError.WebhookError
	require.ErrorAs(t, err, &wErr)
	assert.Equal(t, http.StatusBadGateway, wErr.Status)
}

func TestSend_Disabled(t *testing.T) {
	var c *Client
	assert.False(t, c.Enabled())
	assert.NoError(t, c.Send(context.Background(), "x", nil))
	assert.False(t, New(Options{}).Enabled())
}
