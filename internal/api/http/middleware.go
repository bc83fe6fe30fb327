package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/chat-registration/internal/observability"
	apperrors "github.com/spec-kit/chat-registration/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
// Error handling sits innermost so the request logger sees the final status.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestID())
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
}

// NewApp builds a fiber app whose unmatched routes answer with the same
// error body as handlers.
func NewApp(logger *zap.Logger) *fiber.App {
	return fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			if domainErr.HTTPStatus >= 500 {
				logger.Error("unhandled error", zap.Error(err))
			}
			return c.Status(domainErr.HTTPStatus).JSON(apperrors.ErrorBody(domainErr))
		},
	})
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed",
						zap.String("path", c.Path()),
						zap.String("request_id", observability.RequestIDFromContext(c.UserContext())),
						zap.Error(domainErr.Unwrap()))
				}
				err = c.Status(domainErr.HTTPStatus).JSON(apperrors.ErrorBody(domainErr))
			}
		}()
		return c.Next()
	}
}
