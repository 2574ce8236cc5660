package leave

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHandler(service Service, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, rdb: rdb, logger: l}
}

// log prefers the request scoped logger set up by ContextLogger.
func (h *Handler) log(c *gin.Context) *zap.Logger {
	return contextutil.GetLogger(c.Request.Context(), h.logger)
}

func getActorID(c *gin.Context) string {
	return c.GetString("person_id")
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.log(c).Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) writeBindError(c *gin.Context, op string, err error) {
	h.log(c).Warn("http "+op+" leave validation failed", zap.Error(err))
	httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
	details := httpErr.Details
	if details == nil {
		details = err.Error()
	}
	response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", httpErr.Message, details)
}

// releaseIdempotency drops the in-flight lock set by the idempotency
// middleware and stores successful results under the request's cache key.
func (h *Handler) releaseIdempotency(c *gin.Context) func(data interface{}) {
	if h.rdb == nil {
		return func(interface{}) {}
	}
	ctx := c.Request.Context()
	lockKey := c.GetString("idempotency_lock_key")
	return func(data interface{}) {
		if lockKey != "" {
			h.rdb.Del(ctx, lockKey)
		}
		ck := c.GetString("idempotency_cache_key")
		if ck == "" || data == nil {
			return
		}
		ttl := c.GetDuration("idempotency_ttl")
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		payload, err := json.Marshal(data)
		if err != nil {
			return
		}
		if err := h.rdb.Set(ctx, ck, payload, ttl).Err(); err != nil {
			h.log(c).Warn("cache idempotent response failed", zap.String("key", ck), zap.Error(err))
		}
	}
}

func (h *Handler) submitLike(c *gin.Context, op string, call func(actorID string, req SubmitLeaveRequest) (LeaveResponse, error)) {
	done := h.releaseIdempotency(c)
	actorID := getActorID(c)
	h.log(c).Debug("http "+op+" leave", zap.String("actor_id", actorID))

	var req SubmitLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		done(nil)
		h.writeBindError(c, op, err)
		return
	}

	resp, err := call(actorID, req)
	if err != nil {
		done(nil)
		h.writeServiceError(c, err)
		return
	}

	done(resp)
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Submit(c *gin.Context) {
	h.submitLike(c, "submit", func(actorID string, req SubmitLeaveRequest) (LeaveResponse, error) {
		return h.service.Submit(c.Request.Context(), actorID, req)
	})
}

func (h *Handler) DirectAllow(c *gin.Context) {
	h.submitLike(c, "direct allow", func(actorID string, req SubmitLeaveRequest) (LeaveResponse, error) {
		return h.service.DirectAllow(c.Request.Context(), actorID, req)
	})
}

func (h *Handler) ConvertFromSickLeave(c *gin.Context) {
	h.submitLike(c, "convert", func(actorID string, req SubmitLeaveRequest) (LeaveResponse, error) {
		return h.service.ConvertFromSickLeave(c.Request.Context(), actorID, req)
	})
}

func (h *Handler) GetByID(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListByPerson(c *gin.Context) {
	actorID := getActorID(c)
	personID := c.DefaultQuery("person_id", actorID)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	h.log(c).Debug("http list leaves",
		zap.String("actor_id", actorID),
		zap.String("person_id", personID),
		zap.Int("page", page),
	)

	resp, total, err := h.service.ListByPerson(c.Request.Context(), actorID, personID, page, pageSize)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) GetComments(c *gin.Context) {
	resp, err := h.service.GetComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Edit(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	actorID := getActorID(c)

	var req EditLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, "edit", err)
		return
	}

	resp, err := h.service.Edit(ctx, actorID, id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

// bindDecision accepts an empty body.
func bindDecision(c *gin.Context) (DecisionRequest, error) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		return DecisionRequest{}, err
	}
	return req, nil
}

func (h *Handler) decide(c *gin.Context, op string, call func(actorID, id string, req DecisionRequest) (LeaveResponse, error)) {
	done := h.releaseIdempotency(c)
	id := c.Param("id")
	actorID := getActorID(c)
	h.log(c).Debug("http "+op+" leave", zap.String("leave_id", id), zap.String("actor_id", actorID))

	req, err := bindDecision(c)
	if err != nil {
		done(nil)
		h.writeBindError(c, op, err)
		return
	}

	resp, err := call(actorID, id, req)
	if err != nil {
		done(nil)
		h.writeServiceError(c, err)
		return
	}

	done(resp)
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	h.decide(c, "approve", func(actorID, id string, req DecisionRequest) (LeaveResponse, error) {
		return h.service.Approve(c.Request.Context(), actorID, id, req)
	})
}

func (h *Handler) Reject(c *gin.Context) {
	h.decide(c, "reject", func(actorID, id string, req DecisionRequest) (LeaveResponse, error) {
		return h.service.Reject(c.Request.Context(), actorID, id, req)
	})
}

func (h *Handler) Cancel(c *gin.Context) {
	h.decide(c, "cancel", func(actorID, id string, req DecisionRequest) (LeaveResponse, error) {
		return h.service.Cancel(c.Request.Context(), actorID, id, req)
	})
}

func (h *Handler) DirectCancel(c *gin.Context) {
	h.decide(c, "direct cancel", func(actorID, id string, req DecisionRequest) (LeaveResponse, error) {
		return h.service.DirectCancel(c.Request.Context(), actorID, id, req)
	})
}

func (h *Handler) DeclineCancellationRequest(c *gin.Context) {
	h.decide(c, "decline cancellation", func(actorID, id string, req DecisionRequest) (LeaveResponse, error) {
		return h.service.DeclineCancellationRequest(c.Request.Context(), actorID, id, req)
	})
}

func (h *Handler) Remind(c *gin.Context) {
	done := h.releaseIdempotency(c)
	resp, err := h.service.Remind(c.Request.Context(), getActorID(c), c.Param("id"))
	if err != nil {
		done(nil)
		h.writeServiceError(c, err)
		return
	}

	done(resp)
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Refer(c *gin.Context) {
	done := h.releaseIdempotency(c)

	var req ReferLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		done(nil)
		h.writeBindError(c, "refer", err)
		return
	}

	resp, err := h.service.Refer(c.Request.Context(), getActorID(c), c.Param("id"), req)
	if err != nil {
		done(nil)
		h.writeServiceError(c, err)
		return
	}

	done(resp)
	response.Success(c, http.StatusOK, resp, nil)
}
