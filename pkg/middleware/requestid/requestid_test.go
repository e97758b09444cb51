package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(header string) (*httptest.ResponseRecorder, string) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(Header, header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, seen
}

func TestMiddlewareReusesInboundID(t *testing.T) {
	w, seen := serve("desk-42")
	assert.Equal(t, "desk-42", seen)
	assert.Equal(t, "desk-42", w.Header().Get(Header))
}

func TestMiddlewareReplacesBadIDs(t *testing.T) {
	for _, in := range []string{"", "has space", strings.Repeat("x", 65)} {
		w, seen := serve(in)
		assert.NotEqual(t, in, seen)
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, w.Header().Get(Header))
	}
}
