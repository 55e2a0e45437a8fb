package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-todo-api/internal/handlers"
)

// RequestIDHeader はリクエストIDを受け渡すヘッダーです。
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware はリクエストごとにIDを割り当て、コンテキストとレスポンスヘッダーに設定するミドルウェアです。
// クライアントが X-Request-ID を送ってきた場合はそれを引き継ぎます。
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.New().String()
		}
		c.Set(handlers.RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}
