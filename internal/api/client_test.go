package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/propdesk/internal/notify"
)

type recordingNotifier struct {
	got []notify.Notification
}

func (r *recordingNotifier) Notify(n notify.Notification) { r.got = append(r.got, n) }

func TestClient_InjectsBearerAndRequestID(t *testing.T) {
	var gotAuth, gotID, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotID = r.Header.Get("X-Request-ID")
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", StaticToken("secret"))
	body, err := c.Do(context.Background(), http.MethodGet, "/project", Options{
		Params: url.Values{"page": {"1"}, "limit": {"10"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.NotEmpty(t, gotID)
	assert.Equal(t, "limit=10&page=1", gotQuery)
}

func TestClient_OmitsAuthorizationWithoutToken(t *testing.T) {
	var hadAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	_, err := New(srv.URL, StaticToken("")).Do(context.Background(), http.MethodDelete, "/project/1", Options{})
	require.NoError(t, err)
	assert.False(t, hadAuth)
}

func TestClient_SendsJSONBody(t *testing.T) {
	var got map[string]any
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Do(context.Background(), http.MethodPost, "/city", Options{
		Body: map[string]string{"name": "Pune"},
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "Pune", got["name"])
}

func TestClient_APIErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "string message", status: 400, body: `{"message":"name is required"}`, message: "name is required"},
		{name: "array message joined", status: 422, body: `{"message":["name is required","email must be valid"]}`, message: "name is required, email must be valid"},
		{name: "missing message", status: 500, body: `{"error":"boom"}`, message: GenericMessage},
		{name: "non json body", status: 502, body: `<html>bad gateway</html>`, message: GenericMessage},
		{name: "empty array", status: 400, body: `{"message":[]}`, message: GenericMessage},
		{name: "blank string", status: 404, body: `{"message":"  "}`, message: GenericMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			n := &recordingNotifier{}
			_, err := New(srv.URL, nil, WithNotifier(n)).Do(context.Background(), http.MethodGet, "/x", Options{})
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, tt.message, Message(err))
			assert.Equal(t, tt.status, StatusCode(err))
			assert.Empty(t, n.got, "API errors are surfaced by the caller")
		})
	}
}

func TestClient_NetworkErrorNotifiesOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	n := &recordingNotifier{}
	_, err := New(addr, nil, WithNotifier(n)).Do(context.Background(), http.MethodGet, "/city", Options{})
	require.Error(t, err)

	assert.True(t, IsNetwork(err))
	assert.False(t, IsCanceled(err))
	assert.Equal(t, OfflineMessage, Message(err))
	require.Len(t, n.got, 1)
	assert.Equal(t, OfflineMessage, n.got[0].Title)
	assert.Equal(t, notify.LevelError, n.got[0].Level)
}

func TestClient_TimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	n := &recordingNotifier{}
	c := New(srv.URL, nil, WithNotifier(n), WithTimeout(20*time.Millisecond))
	_, err := c.Do(context.Background(), http.MethodGet, "/slow", Options{})
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.Len(t, n.got, 1)
}

func TestWithTimeout_IndependentOfOptionOrder(t *testing.T) {
	shared := &http.Client{}

	before := New("http://api", nil, WithTimeout(3*time.Second), WithHTTPClient(shared))
	after := New("http://api", nil, WithHTTPClient(shared), WithTimeout(3*time.Second))

	assert.Equal(t, 3*time.Second, before.httpClient.Timeout)
	assert.Equal(t, 3*time.Second, after.httpClient.Timeout)
	assert.Zero(t, shared.Timeout)
	assert.NotSame(t, shared, after.httpClient)

	plain := New("http://api", nil, WithHTTPClient(shared))
	assert.Same(t, shared, plain.httpClient)
}

func TestClient_CanceledRequestDoesNotNotify(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	n := &recordingNotifier{}
	c := New(srv.URL, nil, WithNotifier(n))

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Do(ctx, http.MethodGet, "/project", Options{})
		errCh <- err
	}()
	<-started
	cancel()

	err := <-errCh
	require.Error(t, err)
	assert.True(t, IsCanceled(err))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, n.got)
}

func TestClient_NeverRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Do(context.Background(), http.MethodGet, "/leads", Options{})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_RecordsSpan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Project not found"}`))
	}))
	defer srv.Close()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, err := New(srv.URL, nil, WithTracer(tp.Tracer("test"))).Do(context.Background(), http.MethodGet, "/project/9", Options{})
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "http.GET", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "Project not found", spans[0].Status().Description)
}

func TestFetch_DecodesAndPropagatesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(`[{"id":1,"name":"Pune"}]`))
		case "/garbage":
			_, _ = w.Write([]byte(`{not json`))
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer srv.Close()

	type city struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	c := New(srv.URL, nil)

	got, err := Fetch[[]city](context.Background(), c, http.MethodGet, "/ok", Options{})
	require.NoError(t, err)
	require.Equal(t, []city{{ID: 1, Name: "Pune"}}, got)

	_, err = Fetch[[]city](context.Background(), c, http.MethodGet, "/garbage", Options{})
	require.ErrorContains(t, err, "decoding response")

	_, err = Fetch[[]city](context.Background(), c, http.MethodGet, "/denied", Options{})
	require.Equal(t, http.StatusForbidden, StatusCode(err))
}
