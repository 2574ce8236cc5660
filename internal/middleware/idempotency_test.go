package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdempotentRouter(rdb *redis.Client, calls *[]string) *gin.Engine {
	r := newRouter(
		func(c *gin.Context) { c.Set("person_id", "4") },
		middleware.Idempotency(rdb, time.Hour),
	)
	r.POST("/leaves/:id/approve", func(c *gin.Context) {
		*calls = append(*calls, c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	return r
}

func postApprove(r *gin.Engine, id string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/leaves/"+id+"/approve", nil)
	req.Header.Set("Idempotency-Key", "k1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_KeyIsScopedToLeave(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	var calls []string
	r := newIdempotentRouter(rdb, &calls)

	// leave 1 already has a cached result under k1, leave 2 does not
	redisMock.ExpectGet("idemp:/leaves/2/approve:4:k1").RedisNil()
	redisMock.ExpectSetNX("idemp:/leaves/2/approve:4:k1:lock", "locked", 30*time.Second).SetVal(true)

	w := postApprove(r, "2")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, []string{"2"}, calls)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestIdempotency_ReplaysSamePath(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	var calls []string
	r := newIdempotentRouter(rdb, &calls)

	redisMock.ExpectGet("idemp:/leaves/1/approve:4:k1").SetVal(`{"id":1,"status":"ALLOWED"}`)

	w := postApprove(r, "1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
	assert.Empty(t, calls)

	var env struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "ALLOWED", env.Data["status"])
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestIdempotency_InFlightConflict(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	var calls []string
	r := newIdempotentRouter(rdb, &calls)

	redisMock.ExpectGet("idemp:/leaves/3/approve:4:k1").RedisNil()
	redisMock.ExpectSetNX("idemp:/leaves/3/approve:4:k1:lock", "locked", 30*time.Second).SetVal(false)

	w := postApprove(r, "3")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, calls)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}
