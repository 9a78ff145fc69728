package utils

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cppla/forumcore/config"
)

func TestTokenRoundTrip(t *testing.T) {
	config.Set(config.AppConfig{JWTSecret: "test-secret"})

	tok, err := GenerateToken("u-1", "alice", "admin", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "admin", claims.Role)

	expired, err := GenerateToken("u-1", "alice", "", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired)
	assert.Error(t, err)

	noUser, err := GenerateToken("", "ghost", "", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(noUser)
	assert.Error(t, err)

	config.Set(config.AppConfig{JWTSecret: "rotated"})
	_, err = ParseToken(tok)
	assert.Error(t, err)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "<p>ok</p>", Sanitize(`<p onclick="x()">ok</p><script>alert(1)</script>`))
	assert.Equal(t, "Tom & Jerry", SanitizePlain("<b>Tom</b> & Jerry"))
}

func TestListCacheKeyIsOrderIndependent(t *testing.T) {
	a := ListCacheKey("all", url.Values{"page": {"1"}, "category": {"tools"}})
	b := ListCacheKey("all", url.Values{"category": {"tools"}, "page": {"1"}})
	assert.Equal(t, a, b)
	assert.Contains(t, a, PostsCachePrefix)
	assert.NotEqual(t, a, ListCacheKey("all", url.Values{"page": {"2"}, "category": {"tools"}}))
}

func TestCacheWithoutRedisIsANoop(t *testing.T) {
	config.Set(config.AppConfig{JWTSecret: "x"})
	CacheSetJSON("cache:posts:test", map[string]int{"a": 1}, time.Minute)
	_, ok := CacheGetBytes("cache:posts:test")
	assert.False(t, ok)
	InvalidateByPrefix(PostsCachePrefix)
}

func TestPageResponse(t *testing.T) {
	body := PageResponse([]int{1, 2}, 2, 12, 3, 6)
	b, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":[1,2],"count":2,"total":12,"page":3,"pages":6}`, string(b))

	empty := PageResponse([]int{}, 0, 0, 1, 0)
	b, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":[],"count":0,"total":0,"page":1,"pages":0}`, string(b))
}

func TestRecoveryWithZap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Ginzap(zaptest.NewLogger(t), time.RFC3339, true), RecoveryWithZap(zaptest.NewLogger(t), true))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var env JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, 50000, env.Code)
}

func TestRollingFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "gin.log")
	l, err := NewRollingFileLogger(path, config.AppConfig{LogLevel: "info"})
	require.NoError(t, err)
	l.Info("hello")
	require.NoError(t, l.Sync())
	assert.FileExists(t, path)

	nop, err := NewRollingFileLogger("", config.AppConfig{})
	require.NoError(t, err)
	nop.Info("dropped")
}

func TestServerRunDrainsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(ln.Addr().String(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), DefaultReadTimeout, DefaultWriteTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestInitLogger(t *testing.T) {
	prev := Logger
	t.Cleanup(func() {
		Logger = prev
		Sugar = prev.Sugar()
	})
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, InitLogger(config.AppConfig{LogLevel: "warn", LogPath: path}))
	Logger.Warn("written")
	Logger.Info("filtered")
	assert.FileExists(t, path)
}
