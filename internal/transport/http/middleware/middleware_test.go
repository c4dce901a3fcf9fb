package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"qa-assignment-api/internal/transport/http/ez"
	resp "qa-assignment-api/internal/transport/http/response"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func engine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, resp.OK(gin.H{"subject": c.GetString(ez.KeySubject)}))
	})
	return r
}

func get(r http.Handler, target string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, m := range mutate {
		m(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func codeOf(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var body resp.Resp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Code
}

type stubVerifier map[string]string

func (s stubVerifier) Verify(tok string) (string, error) {
	if sub, ok := s[tok]; ok {
		return sub, nil
	}
	return "", errors.New("bad token")
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		name, header, query, want string
	}{
		{"header", "Bearer abc", "", "abc"},
		{"lowercase scheme", "bearer abc", "", "abc"},
		{"query fallback", "", "xyz", "xyz"},
		{"header wins", "Bearer abc", "xyz", "abc"},
		{"basic ignored", "Basic Zm9v", "", ""},
		{"none", "", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			target := "/"
			if tc.query != "" {
				target += "?token=" + tc.query
			}
			c.Request = httptest.NewRequest(http.MethodGet, target, nil)
			if tc.header != "" {
				c.Request.Header.Set("Authorization", tc.header)
			}
			assert.Equal(t, tc.want, BearerToken(c))
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	r := engine(OptionalAuth(stubVerifier{"good": "jane@buggy.com"}))

	w := get(r, "/ok?token=bad")
	assert.Equal(t, resp.CodeOK, codeOf(t, w))
	assert.Contains(t, w.Body.String(), `"subject":""`)

	w = get(r, "/ok?token=good")
	assert.Contains(t, w.Body.String(), `"subject":"jane@buggy.com"`)

	w = get(r, "/ok", func(req *http.Request) { req.Header.Set("Authorization", "Bearer good") })
	assert.Contains(t, w.Body.String(), `"subject":"jane@buggy.com"`)
}

func TestRateLimit(t *testing.T) {
	r := engine(RateLimit(0.001, 1))
	assert.Equal(t, resp.CodeOK, codeOf(t, get(r, "/ok")))
	assert.Equal(t, resp.CodeTooManyRequests, codeOf(t, get(r, "/ok")))
}

func TestRateLimitPerIP(t *testing.T) {
	r := engine(RateLimitPerIP(0.001, 1))
	from := func(addr string) func(*http.Request) {
		return func(req *http.Request) { req.RemoteAddr = addr }
	}
	assert.Equal(t, resp.CodeOK, codeOf(t, get(r, "/ok", from("10.0.0.1:1000"))))
	assert.Equal(t, resp.CodeTooManyRequests, codeOf(t, get(r, "/ok", from("10.0.0.1:1001"))))
	assert.Equal(t, resp.CodeOK, codeOf(t, get(r, "/ok", from("10.0.0.2:1000"))))
}

func TestConcurrencyLimit(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	r := gin.New()
	r.Use(ConcurrencyLimit(1))
	r.GET("/slow", func(c *gin.Context) {
		close(entered)
		<-release
		c.JSON(http.StatusOK, resp.OK(nil))
	})

	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- get(r, "/slow") }()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	busy := get(r, "/slow", func(req *http.Request) { *req = *req.WithContext(ctx) })
	assert.Equal(t, resp.CodeServerError, codeOf(t, busy))

	close(release)
	assert.Equal(t, resp.CodeOK, codeOf(t, <-done))
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(8))
	r.POST("/echo", func(c *gin.Context) { c.JSON(http.StatusOK, resp.OK(nil)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("a", 64))))
	assert.Equal(t, resp.CodeBadRequest, codeOf(t, w))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("tiny")))
	assert.Equal(t, resp.CodeOK, codeOf(t, w))
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	assert.Equal(t, resp.CodeTimeout, codeOf(t, get(r, "/slow")))
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(RequestID(), Recovery(zap.New(core)))
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	w := get(r, "/boom")
	assert.Equal(t, resp.CodeServerError, codeOf(t, w))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "panic recovered", logs.All()[0].Message)
	assert.NotEmpty(t, logs.All()[0].ContextMap()["rid"])
}

func TestRequestID(t *testing.T) {
	r := engine(RequestID())

	w := get(r, "/ok", func(req *http.Request) { req.Header.Set(KeyRequestID, "fixed-id") })
	assert.Equal(t, "fixed-id", w.Header().Get(KeyRequestID))

	for _, bad := range []string{strings.Repeat("x", maxRequestIDLen+1), "has space", "tab\tinside"} {
		got := get(r, "/ok", func(req *http.Request) { req.Header.Set(KeyRequestID, bad) }).Header().Get(KeyRequestID)
		assert.NotEqual(t, bad, got)
		assert.Len(t, got, 36)
	}

	a := get(r, "/ok").Header().Get(KeyRequestID)
	b := get(r, "/ok").Header().Get(KeyRequestID)
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestAccessLog_MasksSecrets(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := engine(RequestID(), AccessLog(zap.New(core)))

	get(r, "/ok?token=s3cr3t&page=2")
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "HTTP", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "/ok", fields["path"])
	assert.NotEmpty(t, fields["rid"])
	q, ok := fields["query"].(map[string][]string)
	require.True(t, ok)
	assert.Equal(t, []string{"****"}, q["token"])
	assert.Equal(t, []string{"2"}, q["page"])
}

func TestAccessLog_ErrorsAtErrorLevel(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(AccessLog(zap.New(core)))
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("store exploded"))
		c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, ""))
	})
	get(r, "/fail")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zap.ErrorLevel, logs.All()[0].Level)
	assert.Contains(t, logs.All()[0].ContextMap()["errors"], "store exploded")
}

func TestRequestIDField(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/log", func(c *gin.Context) { l.Info("hit", RequestIDField(c)) })

	get(r, "/log", func(req *http.Request) { req.Header.Set(KeyRequestID, "abc-123") })
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "abc-123", logs.All()[0].ContextMap()["rid"])
}

func TestMetrics_LabelsEnvelopeCode(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	g := ez.New(r.Group(""))
	ez.RegisterAction(g, ez.Action[struct{}, gin.H]{
		Method:  http.MethodGet,
		Path:    "/envelope-code/:id",
		Binder:  ez.BindNone,
		Handler: func(*gin.Context, *struct{}) (gin.H, error) { return nil, ez.NotFound("gone") },
	})

	series := httpReqTotal.WithLabelValues("/envelope-code/:id", http.MethodGet, "200", "404")
	before := testutil.ToFloat64(series)
	get(r, "/envelope-code/1")
	get(r, "/envelope-code/2")
	assert.Equal(t, before+2, testutil.ToFloat64(series))
	assert.Equal(t, float64(0), testutil.ToFloat64(httpInFlight))
}

func TestMetrics_LimiterRejectionsCounted(t *testing.T) {
	r := gin.New()
	r.Use(Metrics(), RateLimit(0.001, 1))
	r.GET("/limited-route", func(c *gin.Context) { ez.Reply(c, resp.OK(nil)) })

	rejected := httpReqTotal.WithLabelValues("/limited-route", http.MethodGet, "200", "429")
	before := testutil.ToFloat64(rejected)
	get(r, "/limited-route")
	get(r, "/limited-route")
	assert.Equal(t, before+1, testutil.ToFloat64(rejected))
}

func TestIPLimiter_EvictsIdleBuckets(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newIPLimiter(1, 1, time.Minute, func() time.Time { return now })

	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"))
	assert.Equal(t, 2, l.size())

	now = now.Add(30 * time.Second)
	assert.True(t, l.allow("10.0.0.2"))

	// .1 has been idle a full minute, .2 only thirty seconds
	now = now.Add(30 * time.Second)
	assert.True(t, l.allow("10.0.0.3"))
	assert.Equal(t, 2, l.size())

	now = now.Add(2 * time.Minute)
	assert.True(t, l.allow("10.0.0.4"))
	assert.Equal(t, 1, l.size())
}
