package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/gatehouse/marketplace/internal/logging"
)

// Context keys set by jwtAuthMiddleware
const (
	ctxAccountID = "account_id"
	ctxPlan      = "plan"
)

// jwtAuthMiddleware validates HMAC-signed bearer tokens issued by the
// account service. The account comes from "uid" or "sub"; an optional
// "plan" claim carries the account's plan slug.
func jwtAuthMiddleware(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			abortUnauthorized(c, "invalid authorization format")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			abortUnauthorized(c, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "invalid token claims")
			return
		}

		var accountID string
		if uid, ok := claims["uid"].(string); ok {
			accountID = uid
		} else if sub, ok := claims["sub"].(string); ok {
			accountID = sub
		}
		if accountID == "" {
			abortUnauthorized(c, "token has no subject")
			return
		}

		c.Set(ctxAccountID, accountID)
		if plan, ok := claims["plan"].(string); ok {
			c.Set(ctxPlan, plan)
		}
		c.Request = c.Request.WithContext(logging.WithAccountID(c.Request.Context(), accountID))

		c.Next()
	}
}

// adminAuthMiddleware validates the admin API key in constant time
func adminAuthMiddleware(adminAPIKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-Admin-API-Key")
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(adminAPIKey)) != 1 {
			abortUnauthorized(c, "unauthorized admin access")
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Error:     msg,
		RequestID: c.GetString("request_id"),
	})
}

// corsMiddleware allows the configured browser origins. Any localhost port
// is allowed so the frontend dev server works out of the box.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}

	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if allowed[origin] {
				return true
			}
			return strings.HasPrefix(origin, "http://localhost:")
		},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
