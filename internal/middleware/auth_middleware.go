package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenNotFound = apperror.New(apperror.CodeUnauthorized, "Token not found", http.StatusUnauthorized)
	ErrInvalidToken  = apperror.New("INVALID_TOKEN", "Invalid token", http.StatusUnauthorized)
	ErrTokenExpired  = apperror.New("TOKEN_EXPIRED", "Token expired", http.StatusUnauthorized)
)

// AuthMiddleware validates an HS256 bearer token (or the access_token cookie)
// and stores the person_id claim in the gin context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			abortWith(c, ErrTokenNotFound)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			errObj := ErrInvalidToken
			if errors.Is(err, jwt.ErrTokenExpired) {
				errObj = ErrTokenExpired
			}
			abortWith(c, errObj)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortWith(c, ErrInvalidToken)
			return
		}

		personID := claimAsID(claims["person_id"])
		if personID == "" {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Person ID not found in token", nil)
			c.Abort()
			return
		}

		c.Set("person_id", personID)
		c.Next()
	}
}

// claimAsID accepts numeric and string claims.
func claimAsID(v interface{}) string {
	switch id := v.(type) {
	case string:
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			return ""
		}
		return id
	case float64:
		if id <= 0 || id != float64(int64(id)) {
			return ""
		}
		return strconv.FormatInt(int64(id), 10)
	default:
		return ""
	}
}

func abortWith(c *gin.Context, err *apperror.AppError) {
	response.Error(c, err.HTTPStatus, err.Code, err.Message, nil)
	c.Abort()
}
