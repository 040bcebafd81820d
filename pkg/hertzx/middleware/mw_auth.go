package middleware

import (
	"context"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hatcher/voyage/pkg/jwtx"
	"github.com/hatcher/voyage/pkg/resp"
	"net/http"
	"strings"
)

const AuthUserKey = "auth-user-id"

// AuthMW jwt鉴权中间件
func AuthMW(j *jwtx.Jwt) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		token := extractBearer(string(c.GetHeader("Authorization")))
		userID, err := j.ExtractUserID(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.Failed, "unauthorized"))
			return
		}
		c.Set(AuthUserKey, userID)
		c.Next(ctx)
	}
}

// AuthUser 获取当前登录用户id
func AuthUser(c *app.RequestContext) (int64, bool) {
	v, exists := c.Get(AuthUserKey)
	if !exists {
		return 0, false
	}
	userID, ok := v.(int64)
	return userID, ok
}

func extractBearer(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
