package http

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MikeRez0/ypshop/internal/core/domain"
	"github.com/MikeRez0/ypshop/internal/core/port"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"
const idempotencyKeyHeader = "Idempotency-Key"
const idempotentReplayHeader = "Idempotent-Replayed"

func requestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set(requestIDHeader, id)
		ctx.Header(requestIDHeader, id)
		ctx.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		logger.Info("request",
			zap.String("id", ctx.GetString(requestIDHeader)),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

var errIdempotencyMismatch = errors.New("idempotency key was used with a different request")

// fingerprint identifies a request body; it is stored in front of the
// cached response, separated by a newline.
func fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// idempotent replays the stored response for a repeated Idempotency-Key.
// Only 201 responses are remembered, so a rejected order may be retried.
// Reusing a key with a different body is answered with 422.
func idempotent(cache port.IdempotencyCache, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := ctx.GetHeader(idempotencyKeyHeader)
		if cache == nil || key == "" {
			ctx.Next()
			return
		}

		body, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: domain.ErrBadRequest.Error()})
			return
		}
		ctx.Request.Body = io.NopCloser(bytes.NewReader(body))
		bodyPrint := fingerprint(body)

		stored, err := cache.Get(ctx, key)
		if err != nil {
			logger.Warn("idempotency cache get", zap.String("key", key), zap.Error(err))
		}
		if stored != "" {
			storedPrint, response, _ := strings.Cut(stored, "\n")
			if storedPrint != bodyPrint {
				ctx.AbortWithStatusJSON(http.StatusUnprocessableEntity,
					errorResponse{Error: errIdempotencyMismatch.Error()})
				return
			}
			ctx.Header(idempotentReplayHeader, "true")
			ctx.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(response))
			ctx.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: ctx.Writer, body: &bytes.Buffer{}}
		ctx.Writer = rec
		ctx.Next()

		if rec.Status() != http.StatusCreated {
			return
		}
		if err := cache.Set(ctx, key, bodyPrint+"\n"+rec.body.String(), ttl); err != nil {
			logger.Warn("idempotency cache set", zap.String("key", key), zap.Error(err))
		}
	}
}
