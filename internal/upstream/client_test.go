package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/qldt-dashboard/internal/models"
	"github.com/noah-isme/qldt-dashboard/pkg/config"
)

type recordedCall struct {
	endpoint string
	status   int
}

type fakeObserver struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (f *fakeObserver) ObserveUpstreamCall(endpoint string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{endpoint: endpoint, status: status})
}

type capturedRequest struct {
	path    string
	headers http.Header
	body    string
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *fakeObserver, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured.path = r.URL.Path
		captured.headers = r.Header.Clone()
		captured.body = string(body)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	observer := &fakeObserver{}
	client, err := NewClient(config.UpstreamConfig{
		BaseURL:      srv.URL,
		UserAgent:    "test-agent",
		LoginPath:    "/api/auth/login",
		LogoutPath:   "/api/auth/logout",
		CoursesPath:  "/courses",
		SectionsPath: "/sections",
		RegisterPath: "/register",
	}, nil, observer)
	require.NoError(t, err)
	return client, observer, captured
}

func TestLoginSendsFormWithoutToken(t *testing.T) {
	client, observer, captured := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"t1","expires_in":3600}`))
	})

	raw, err := client.Login(context.Background(), "sv01", "p@ss word")
	require.NoError(t, err)

	assert.JSONEq(t, `{"access_token":"t1","expires_in":3600}`, string(raw))
	assert.Equal(t, "/api/auth/login", captured.path)
	assert.Equal(t, "application/x-www-form-urlencoded", captured.headers.Get("Content-Type"))
	assert.Empty(t, captured.headers.Get("Authorization"))
	assert.Equal(t, "test-agent", captured.headers.Get("User-Agent"))
	assert.Equal(t, "application/json, text/plain, */*", captured.headers.Get("Accept"))

	form, err := url.ParseQuery(captured.body)
	require.NoError(t, err)
	assert.Equal(t, "sv01", form.Get("username"))
	assert.Equal(t, "p@ss word", form.Get("password"))
	assert.Equal(t, "password", form.Get("grant_type"))

	assert.Equal(t, []recordedCall{{endpoint: EndpointLogin, status: http.StatusOK}}, observer.calls)
}

func TestRegisteredCoursesSendsBearerAndJSON(t *testing.T) {
	client, _, captured := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	})

	_, err := client.RegisteredCourses(context.Background(), "tok")
	require.NoError(t, err)

	assert.Equal(t, "/courses", captured.path)
	assert.Equal(t, "Bearer tok", captured.headers.Get("Authorization"))
	assert.Equal(t, "application/json", captured.headers.Get("Content-Type"))
	assert.JSONEq(t, `{"is_CVHT":false,"is_Clear":true}`, captured.body)
}

func TestSectionsRequestBody(t *testing.T) {
	client, _, captured := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.Sections(context.Background(), "tok")
	require.NoError(t, err)

	assert.JSONEq(t, `{"is_CVHT":false,"additional":{"paging":{"limit":99999,"page":1},"ordering":[{"name":"","order_type":""}]}}`, captured.body)
}

func TestRegisterSectionKeepsRawID(t *testing.T) {
	client, _, captured := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"is_thanh_cong":true}}`))
	})

	_, err := client.RegisterSection(context.Background(), "tok", models.CartEntry{SectionID: "42", RawID: json.RawMessage(`42`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"filter":{"id_to_hoc":42,"is_checked":true,"sv_nganh":1}}`, captured.body)

	_, err = client.RegisterSection(context.Background(), "tok", models.CartEntry{SectionID: "ABC-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"filter":{"id_to_hoc":"ABC-1","is_checked":true,"sv_nganh":1}}`, captured.body)
}

func TestLogoutSendsEmptyObject(t *testing.T) {
	client, _, captured := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.Logout(context.Background(), "tok"))
	assert.Equal(t, "{}", captured.body)
	assert.Equal(t, "Bearer tok", captured.headers.Get("Authorization"))
}

func TestNon2xxBecomesTransportError(t *testing.T) {
	client, observer, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Token hết hạn"}`))
	})

	_, err := client.RegisteredCourses(context.Background(), "stale")
	require.Error(t, err)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusUnauthorized, transportErr.StatusCode)
	assert.Equal(t, EndpointCourses, transportErr.Endpoint)
	assert.True(t, transportErr.Rejected())
	assert.Contains(t, err.Error(), "Token hết hạn")
	assert.Equal(t, http.StatusUnauthorized, observer.calls[0].status)
}

func TestNetworkFailureBecomesTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	observer := &fakeObserver{}
	client, err := NewClient(config.UpstreamConfig{BaseURL: baseURL, CoursesPath: "/courses"}, nil, observer)
	require.NoError(t, err)

	_, err = client.RegisteredCourses(context.Background(), "tok")

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Zero(t, transportErr.StatusCode)
	assert.False(t, transportErr.Rejected())
	assert.Equal(t, []recordedCall{{endpoint: EndpointCourses, status: 0}}, observer.calls)
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(config.UpstreamConfig{}, nil, nil)
	assert.Error(t, err)

	_, err = NewClient(config.UpstreamConfig{BaseURL: "http://x", ProxyURL: "::bad"}, nil, nil)
	assert.Error(t, err)

	client, err := NewClient(config.UpstreamConfig{BaseURL: "http://x", ProxyURL: "http://113.160.132.195:8080"}, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, client.http.Transport)
}

func TestSnippetTruncates(t *testing.T) {
	long := strings.Repeat("ă", maxErrorBody+10)

	out := snippet([]byte(long))

	assert.True(t, strings.HasSuffix(out, "..."))
	assert.Equal(t, maxErrorBody+3, len([]rune(out)))
}
