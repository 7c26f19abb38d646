package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, seen
}

func TestGeneratesIDWhenMissing(t *testing.T) {
	w, seen := serve(t, httptest.NewRequest(http.MethodGet, "/ping", nil))

	echoed := w.Header().Get(Header)
	require.NotEmpty(t, echoed)
	assert.Equal(t, echoed, seen)
	_, err := uuid.Parse(echoed)
	assert.NoError(t, err)
}

func TestKeepsCallerSuppliedID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(Header, "trace-abc-123")

	w, seen := serve(t, req)

	assert.Equal(t, "trace-abc-123", w.Header().Get(Header))
	assert.Equal(t, "trace-abc-123", seen)
}

func TestReplacesOversizedID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(Header, strings.Repeat("x", 200))

	w, _ := serve(t, req)

	echoed := w.Header().Get(Header)
	require.NotEmpty(t, echoed)
	assert.NotContains(t, echoed, "xxx")
}
