// Package httpapi exposes the order intake, status and media download
// endpoints alongside the health checks.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"luxlife-studio/pkg/config"
	"luxlife-studio/pkg/errutil"
	"luxlife-studio/pkg/health"
	"luxlife-studio/pkg/middleware"
	"luxlife-studio/pkg/minio"
	"luxlife-studio/services/credit"
	"luxlife-studio/services/order"

	"github.com/gin-gonic/gin"
	miniogo "github.com/minio/minio-go/v7"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("httpapi",
	fx.Provide(
		func(s *order.Service) Orders { return s },
		func(s *credit.Service) Credits { return s },
		func(s *minio.Storage) Media { return s },
		New,
	),
	fx.Invoke(Register),
)

type Orders interface {
	Create(ctx context.Context, in order.CreateInput) (*order.Order, error)
	Get(ctx context.Context, id string) (*order.Order, error)
}

type Credits interface {
	Balance(ctx context.Context, userID string) (*credit.Balance, error)
}

type Media interface {
	Open(ctx context.Context, path, token string) (io.ReadCloser, miniogo.ObjectInfo, error)
}

type Handler struct {
	orders  Orders
	credits Credits
	media   Media
}

type Params struct {
	fx.In
	Orders  Orders
	Credits Credits
	Media   Media
}

func New(p Params) *Handler {
	return &Handler{orders: p.Orders, credits: p.Credits, media: p.Media}
}

func Register(r *gin.Engine, cfg *config.Config, hs health.HealthService, h *Handler) {
	r.Use(gin.Recovery(), otelgin.Middleware(cfg.AppName), middleware.AccessLog(), middleware.Error())

	r.GET("/ping", hs.Ping)
	r.GET("/healthz/live", hs.Liveness)
	r.GET("/healthz/ready", hs.Readiness)

	v1 := r.Group("/v1")
	v1.POST("/orders", h.CreateOrder)
	v1.GET("/orders/:id", h.GetOrder)
	v1.GET("/users/:uid/credits", h.GetCredits)

	r.GET("/media/*path", h.Media)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var in order.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(errutil.BadRequest("invalid order request", errutil.WithErr(err)))
		return
	}

	o, err := h.orders.Create(c.Request.Context(), in)
	if err != nil {
		// The record exists even when publishing failed; the caller can
		// retry the trigger later.
		if o != nil {
			zap.L().Warn("order stored but not published", zap.String("order_id", o.ID), zap.Error(err))
			c.JSON(http.StatusAccepted, o)
			return
		}
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *Handler) GetOrder(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) GetCredits(c *gin.Context) {
	b, err := h.credits.Balance(c.Request.Context(), c.Param("uid"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if b == nil {
		_ = c.Error(errutil.NotFound("user has no credit profile"))
		return
	}
	c.JSON(http.StatusOK, b)
}

// Media streams a stored object when the token query parameter matches the
// object's download token.
func (h *Handler) Media(c *gin.Context) {
	path := strings.TrimPrefix(c.Param("path"), "/")
	if path == "" {
		_ = c.Error(errutil.NotFound("object not found"))
		return
	}

	body, info, err := h.media.Open(c.Request.Context(), path, c.Query("token"))
	switch {
	case errors.Is(err, minio.ErrInvalidToken):
		_ = c.Error(errutil.Forbidden("invalid download token"))
		return
	case minio.IsNotFound(err):
		_ = c.Error(errutil.NotFound("object not found"))
		return
	case err != nil:
		_ = c.Error(err)
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, body, nil)
}
