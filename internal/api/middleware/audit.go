package middleware

import (
	"bytes"
	"io"
	log "log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const auditBodyLimit = 16384

type responseBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r *responseBodyWriter) Write(b []byte) (int, error) {
	if r.body.Len() < auditBodyLimit {
		r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}

func (r *responseBodyWriter) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// AuditMiddleware 记录请求与响应体；websocket 握手只记一条
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			log.InfoContext(ctx, "Recv Upgrade",
				log.String("path", c.Request.URL.Path),
				log.String("query", redactQuery(c.Request.URL.Query())),
			)
			c.Next()
			return
		}

		var reqBody []byte
		if c.Request.Body != nil {
			reqBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(reqBody))
		}
		if len(reqBody) > auditBodyLimit {
			reqBody = reqBody[:auditBodyLimit]
		}

		log.InfoContext(ctx, "Recv Request",
			log.String("method", c.Request.Method),
			log.String("path", c.Request.URL.Path),
			log.String("query", redactQuery(c.Request.URL.Query())),
			log.String("req_body", string(reqBody)),
		)

		w := &responseBodyWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w
		startTime := time.Now()

		c.Next()

		log.InfoContext(c.Request.Context(), "Send Response",
			log.Int("status", c.Writer.Status()),
			log.Duration("latency", time.Since(startTime)),
			log.String("res_body", w.body.String()),
		)
	}
}

// redactQuery websocket 的 token 放在 query 中，不能落日志
func redactQuery(q url.Values) string {
	if q.Has(tokenQueryKey) {
		q.Set(tokenQueryKey, "***")
	}
	decoded, err := url.QueryUnescape(q.Encode())
	if err != nil {
		return q.Encode()
	}
	return decoded
}
