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

func serve(header string) (*httptest.ResponseRecorder, string) {
	gin.SetMode(gin.TestMode)
	var seen string
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusNoContent)
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(Header, header)
	}
	r.ServeHTTP(w, req)
	return w, seen
}

func TestMiddlewareReusesClientID(t *testing.T) {
	w, seen := serve("edit-42.retry_1")
	assert.Equal(t, "edit-42.retry_1", seen)
	assert.Equal(t, "edit-42.retry_1", w.Header().Get(Header))
}

func TestMiddlewareReplacesUnusableID(t *testing.T) {
	for _, header := range []string{"", "bad id\r\n", strings.Repeat("a", maxLength+1)} {
		w, seen := serve(header)
		_, err := uuid.Parse(seen)
		require.NoError(t, err, "header %q", header)
		assert.Equal(t, seen, w.Header().Get(Header))
	}
}
