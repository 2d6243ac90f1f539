package docai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	documentai "google.golang.org/api/documentai/v1"
	"google.golang.org/api/option"
)

func TestSplitGcsUri(t *testing.T) {
	bucket, object, err := splitGcsUri("gs://condo-docs/results/doc-1/")
	require.NoError(t, err)
	assert.Equal(t, "condo-docs", bucket)
	assert.Equal(t, "results/doc-1/", object)
}

func TestSplitGcsUri_Invalid(t *testing.T) {
	cases := []string{
		"https://condo-docs/results",
		"gs://",
		"gs://bucket-only",
	}
	for _, uri := range cases {
		_, _, err := splitGcsUri(uri)
		assert.Error(t, err, uri)
	}
}

// pollClient wires a Client's analysis service to a fake operation
// endpoint so the polling loop runs against canned responses.
func pollClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := documentai.NewService(context.Background(),
		option.WithEndpoint(srv.URL),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)

	return &Client{
		docs: svc,
		cfg:  Config{PollInterval: time.Millisecond, MaxPollAttempts: 3},
	}
}

const testOperation = "projects/p/locations/us/operations/op-1"

func TestWaitForCompletionTimesOut(t *testing.T) {
	var polls int32
	client := pollClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&polls, 1)
		fmt.Fprintf(w, `{"name":%q,"done":false}`, testOperation)
	})

	err := client.WaitForCompletion(context.Background(), testOperation)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out after 3 attempts")
	assert.EqualValues(t, 3, atomic.LoadInt32(&polls))
}

func TestWaitForCompletionErrorPayload(t *testing.T) {
	client := pollClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"name":%q,"done":true,"error":{"code":3,"message":"processor crashed"}}`, testOperation)
	})

	err := client.WaitForCompletion(context.Background(), testOperation)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "processor crashed")
}

func TestWaitForCompletionSuccess(t *testing.T) {
	// Pending once, then done: the loop must keep polling through a
	// not-done report instead of giving up.
	var polls int32
	client := pollClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&polls, 1) == 1 {
			fmt.Fprintf(w, `{"name":%q,"done":false}`, testOperation)
			return
		}
		fmt.Fprintf(w, `{"name":%q,"done":true}`, testOperation)
	})

	err := client.WaitForCompletion(context.Background(), testOperation)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&polls))
}

func TestWaitForCompletionContextCancelled(t *testing.T) {
	client := pollClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"name":%q,"done":false}`, testOperation)
	})
	client.cfg.PollInterval = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.WaitForCompletion(ctx, testOperation)
	require.ErrorIs(t, err, context.Canceled)
}
