package imageresolver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func htmlResponse(r *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"text/html"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    r,
	}
}

func newTestResolver(calls *int32, rt roundTripFunc) *Resolver {
	client := resty.New().SetTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		atomic.AddInt32(calls, 1)
		return rt(r)
	}))
	return NewWithClient(client, Config{Timeout: time.Second})
}

const sharePage = `<!DOCTYPE html><html><head>
<meta property="og:title" content="photo">
<meta property="og:image" content="https://i.ibb.co/Xyz123/photo.jpg">
</head><body></body></html>`

func TestResolve_NonMatchingURLsMakeNoRequest(t *testing.T) {
	var calls int32
	r := newTestResolver(&calls, func(req *http.Request) (*http.Response, error) {
		return htmlResponse(req, 200, sharePage), nil
	})

	for _, raw := range []string{
		"",
		"https://i.ibb.co/Xyz123/photo.jpg",
		"https://example.com/ibb.co/x.png",
		"https://cdn.example.com/a.png",
		"not a url",
		"ibb.co/abc",
	} {
		res := r.Resolve(context.Background(), raw)
		assert.Equal(t, raw, res.URL, raw)
		assert.Equal(t, Unchanged, res.Outcome, raw)
		assert.NoError(t, res.Err, raw)
	}
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestResolve_ShareLink(t *testing.T) {
	var calls int32
	var gotURL string
	r := newTestResolver(&calls, func(req *http.Request) (*http.Response, error) {
		gotURL = req.URL.String()
		return htmlResponse(req, 200, sharePage), nil
	})

	for _, raw := range []string{"https://ibb.co/Xyz123", "https://www.ibb.co/Xyz123"} {
		res := r.Resolve(context.Background(), raw)
		require.NoError(t, res.Err)
		assert.Equal(t, Resolved, res.Outcome)
		assert.Equal(t, "https://i.ibb.co/Xyz123/photo.jpg", res.URL)
		assert.Equal(t, raw, gotURL)
	}
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestResolve_PageWithoutDirectImage(t *testing.T) {
	var calls int32
	r := newTestResolver(&calls, func(req *http.Request) (*http.Response, error) {
		return htmlResponse(req, 200, `<html><head>
<meta property="og:image" content="https://elsewhere.example/x.jpg">
</head></html>`), nil
	})

	res := r.Resolve(context.Background(), "https://ibb.co/abc")
	assert.NoError(t, res.Err)
	assert.Equal(t, Unchanged, res.Outcome)
	assert.Equal(t, "https://ibb.co/abc", res.URL)
}

func TestResolve_FetchFailures(t *testing.T) {
	tests := []struct {
		name string
		rt   roundTripFunc
	}{
		{"transport error", func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		}},
		{"not found", func(req *http.Request) (*http.Response, error) {
			return htmlResponse(req, 404, "gone"), nil
		}},
		{"server error", func(req *http.Request) (*http.Response, error) {
			return htmlResponse(req, 500, sharePage), nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			r := newTestResolver(&calls, tt.rt)
			res := r.Resolve(context.Background(), "https://ibb.co/abc")
			assert.ErrorIs(t, res.Err, ErrUpstreamFetch)
			assert.Equal(t, Unchanged, res.Outcome)
			assert.Equal(t, "https://ibb.co/abc", res.URL)
		})
	}
}

func TestResolve_ContextCancelled(t *testing.T) {
	var calls int32
	r := newTestResolver(&calls, func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := r.Resolve(ctx, "https://ibb.co/slow")
	assert.ErrorIs(t, res.Err, ErrUpstreamFetch)
	assert.Equal(t, "https://ibb.co/slow", res.URL)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "resolved", Resolved.String())
	assert.Equal(t, "unchanged", Unchanged.String())
}

func TestResolve_OversizedPageIsNotRead(t *testing.T) {
	var calls int32
	client := resty.New().SetTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return htmlResponse(req, 200, sharePage+strings.Repeat("<p>filler</p>", 200)), nil
	}))
	r := NewWithClient(client, Config{Timeout: time.Second, MaxBodyBytes: len(sharePage)})

	res := r.Resolve(context.Background(), "https://ibb.co/Xyz123")
	require.ErrorIs(t, res.Err, ErrUpstreamFetch)
	assert.Equal(t, Unchanged, res.Outcome)
	assert.Equal(t, "https://ibb.co/Xyz123", res.URL)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestNewWithClient_DefaultBodyLimit(t *testing.T) {
	var calls int32
	r := newTestResolver(&calls, func(req *http.Request) (*http.Response, error) {
		return htmlResponse(req, 200, sharePage), nil
	})
	res := r.Resolve(context.Background(), "https://ibb.co/Xyz123")
	require.NoError(t, res.Err)
	assert.Equal(t, Resolved, res.Outcome)
}
