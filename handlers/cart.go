package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"storefront/internal/cart"
	"storefront/internal/stores/docstore"
	"storefront/pkg/ctxmanage"
	"storefront/pkg/logkey"
)

func (h *Handler) GetCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := claimsFromRequest(c)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	store, err := h.carts.For(c.Request.Context(), claims.Subject)
	if err != nil {
		slog.Error("error loading cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      store.Items(),
		"total":      store.Total(),
		"item_count": store.ItemCount(),
	})
}

func (h *Handler) AddCartItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := claimsFromRequest(c)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var request struct {
		ProductID string `json:"product_id"`
	}
	if err := c.ShouldBindJSON(&request); err != nil || request.ProductID == "" {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Product ID must be valid"})
		return
	}

	product, err := h.p.ByID(c.Request.Context(), request.ProductID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		slog.Error("error fetching product", slog.String(logkey.TraceID, traceId),
			slog.String("ProductID", request.ProductID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	store, err := h.carts.For(c.Request.Context(), claims.Subject)
	if err != nil {
		slog.Error("error loading cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}
	store.AddItem(c.Request.Context(), product)

	slog.Info("product added to cart", slog.String(logkey.TraceID, traceId),
		slog.String("ProductID", request.ProductID), slog.String(logkey.UserID, claims.Subject))
	c.JSON(http.StatusOK, gin.H{"items": store.Items(), "total": store.Total()})
}

func (h *Handler) UpdateCartQuantity(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := claimsFromRequest(c)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// The quantity selector offers 1-10; mirror that bound here.
	var request struct {
		ProductID string `json:"product_id" validate:"required"`
		Quantity  int    `json:"quantity" validate:"required,min=1,max=10"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": http.StatusText(http.StatusBadRequest)})
		return
	}
	if err := h.validate.Struct(request); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Quantity must be between 1 and 10"})
		return
	}

	store, err := h.carts.For(c.Request.Context(), claims.Subject)
	if err != nil {
		slog.Error("error loading cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	if err := store.SetQuantity(c.Request.Context(), request.ProductID, request.Quantity); err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Quantity must be at least 1"})
			return
		}
		slog.Error("error updating quantity", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update quantity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": store.Items(), "total": store.Total()})
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := claimsFromRequest(c)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	store, err := h.carts.For(c.Request.Context(), claims.Subject)
	if err != nil {
		slog.Error("error loading cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}
	store.RemoveItem(c.Request.Context(), c.Param("id"))

	c.JSON(http.StatusOK, gin.H{"items": store.Items(), "total": store.Total()})
}

func (h *Handler) ClearCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := claimsFromRequest(c)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	store, err := h.carts.For(c.Request.Context(), claims.Subject)
	if err != nil {
		slog.Error("error loading cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}
	store.Clear(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
