package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"storefront/internal/auth"
	"storefront/internal/checkout"
	"storefront/internal/orders"
	"storefront/internal/stores/kafka"
	"storefront/pkg/ctxmanage"
	"storefront/pkg/logkey"
)

// requestIdentity adapts the authenticated claims of the current request into
// the orchestrator's identity source.
type requestIdentity struct {
	ident auth.Identity
}

func (r requestIdentity) Current() (auth.Identity, bool) {
	return r.ident, true
}

func (h *Handler) Checkout(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := claimsFromRequest(c)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orch, err := h.orchestratorFor(c.Request.Context(), claims)
	if err != nil {
		slog.Error("error preparing checkout", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare checkout"})
		return
	}

	order, err := orch.Submit(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrSubmitInFlight):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "A checkout is already in progress"})
		case errors.Is(err, checkout.ErrEmptyCart):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
		case errors.Is(err, checkout.ErrUnauthenticated):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "You must be logged in to checkout"})
		default:
			slog.Error("order submission failed", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		}
		return
	}

	slog.Info("order placed", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.OrderID, order.ID), slog.String(logkey.UserID, order.UserID))

	// Downstream notifications must not delay or fail the response.
	go h.afterCheckout(order, claims.Email)

	c.JSON(http.StatusOK, order)
}

func (h *Handler) afterCheckout(order orders.Order, email string) {
	if h.k != nil {
		data, err := json.Marshal(kafka.OrderCompletedEvent{
			OrderID:     order.ID,
			UserID:      order.UserID,
			TotalAmount: order.TotalAmount,
			CreatedAt:   order.CreatedAt,
		})
		if err != nil {
			slog.Error("failed to marshal OrderCompletedEvent", slog.String(logkey.ERROR, err.Error()))
		} else if err := h.k.ProduceMessage(kafka.TopicOrderCompleted, []byte(order.ID), data); err != nil {
			slog.Error("failed to produce message", slog.String(logkey.ERROR, err.Error()),
				slog.String(logkey.OrderID, order.ID))
		}
	}

	if h.mailConf != nil && email != "" {
		if err := h.mailConf.SendOrderConfirmation(email, order.ID); err != nil {
			slog.Error("failed to send confirmation email", slog.String(logkey.ERROR, err.Error()),
				slog.String(logkey.OrderID, order.ID))
		}
	}
}

func (h *Handler) orchestratorFor(ctx context.Context, claims auth.Claims) (*checkout.Orchestrator, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if orch, ok := h.checkouts[claims.Subject]; ok {
		return orch, nil
	}

	store, err := h.carts.For(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	ident := requestIdentity{ident: auth.Identity{UID: claims.Subject, Email: claims.Email}}
	orch, err := checkout.NewOrchestrator(store, h.o, ident)
	if err != nil {
		return nil, err
	}
	h.checkouts[claims.Subject] = orch
	return orch, nil
}
