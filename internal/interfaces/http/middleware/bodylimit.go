package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// multipartOverhead covers form boundaries and part headers around an upload.
const multipartOverhead = 1 << 20

// BodyLimit caps request bodies at limit bytes.  Multipart uploads are
// allowed uploadLimit plus form overhead instead.
func BodyLimit(limit, uploadLimit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil {
			c.Next()
			return
		}
		n := limit
		if uploadLimit > 0 && strings.HasPrefix(c.ContentType(), "multipart/") {
			n = uploadLimit + multipartOverhead
		}
		if n > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
