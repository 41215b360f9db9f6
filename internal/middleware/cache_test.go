package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/multi-user-blog/internal/config"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"items":[]}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, gotHdr)
	assert.Equal(t, `{"items":[]}`, string(body))

	_, _, _, ok = decodePayload(bs[:5])
	assert.False(t, ok)
	_, _, _, ok = decodePayload(bs[:10])
	assert.False(t, ok)
}

func TestCacheKeyFrom(t *testing.T) {
	e := echo.New()
	key := func(strategy, method, target string) string {
		req := httptest.NewRequest(method, target, nil)
		return cacheKeyFrom(config.CacheConfig{Prefix: "blog:cache", KeyStrategy: strategy}, e.NewContext(req, httptest.NewRecorder()))
	}

	assert.Regexp(t, `^blog:cache:[0-9a-f]{40}$`, key("", http.MethodGet, "/posts/1"))
	assert.Equal(t, key("", http.MethodGet, "/posts/1"), key("route_query", http.MethodGet, "/posts/1"))
	assert.NotEqual(t, key("", http.MethodGet, "/posts/1"), key("", http.MethodGet, "/posts/2"))
	assert.NotEqual(t, key("", http.MethodGet, "/posts?a=1"), key("", http.MethodGet, "/posts?a=2"))
	assert.Equal(t, key("route", http.MethodGet, "/posts?a=1"), key("route", http.MethodGet, "/posts?a=2"))
	assert.NotEqual(t, key("method_route", http.MethodGet, "/posts"), key("method_route", http.MethodHead, "/posts"))
}

func TestNewRedisCache_PassThroughWithoutClient(t *testing.T) {
	calls := 0
	e := echo.New()
	e.Use(NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil))
	e.GET("/", func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "front page")
	})

	for i := 0; i < 2; i++ {
		apitest.New().Handler(e).Get("/").Expect(t).Status(http.StatusOK).Body("front page").End()
	}
	assert.Equal(t, 2, calls)
}
