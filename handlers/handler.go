package handlers

import (
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/mail"
	"storefront/internal/orders"
	"storefront/internal/products"
	"storefront/internal/stores/kafka"
	"storefront/internal/users"
	"storefront/middleware"
	"storefront/pkg/ctxmanage"
)

type Handler struct {
	p        *products.Conf
	o        *orders.Conf
	u        *users.Conf
	carts    *cart.Manager
	keys     *auth.Keys
	k        *kafka.Conf // nil when no broker is configured
	mailConf *mail.Conf  // nil when no smtp host is configured
	validate *validator.Validate

	mu        sync.Mutex
	checkouts map[string]*checkout.Orchestrator
}

func NewHandler(p *products.Conf, o *orders.Conf, u *users.Conf, carts *cart.Manager,
	keys *auth.Keys, k *kafka.Conf, mailConf *mail.Conf) *Handler {
	return &Handler{
		p:         p,
		o:         o,
		u:         u,
		carts:     carts,
		keys:      keys,
		k:         k,
		mailConf:  mailConf,
		validate:  validator.New(),
		checkouts: map[string]*checkout.Orchestrator{},
	}
}

func API(endpointPrefix string, a *auth.Keys, p *products.Conf, o *orders.Conf,
	u *users.Conf, carts *cart.Manager, k *kafka.Conf, mailConf *mail.Conf) *gin.Engine {

	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	m, err := middleware.NewMid(a)
	if err != nil {
		panic(err)
	}

	h := NewHandler(p, o, u, carts, a, k, mailConf)
	r.Use(middleware.Logger(), gin.Recovery())
	r.GET("/ping", healthCheck)
	v1 := r.Group(endpointPrefix)
	{
		v1.POST("/signup", h.Signup)
		v1.POST("/login", h.Login)
		v1.GET("/products/list", h.ListProducts)
		v1.GET("/products/view/:id", h.GetProduct)
		v1.GET("/products/categories", h.ListCategories)

		v1.Use(m.Authentication())
		v1.GET("/cart/items", m.Authorize(h.GetCart, auth.RoleUser))
		v1.POST("/cart/add-item", m.Authorize(h.AddCartItem, auth.RoleUser))
		v1.POST("/cart/update-quantity", m.Authorize(h.UpdateCartQuantity, auth.RoleUser))
		v1.DELETE("/cart/remove-item/:id", m.Authorize(h.RemoveCartItem, auth.RoleUser))
		v1.DELETE("/cart/clear", m.Authorize(h.ClearCart, auth.RoleUser))

		v1.POST("/checkout", m.Authorize(h.Checkout, auth.RoleUser))
		v1.GET("/orders/list", m.Authorize(h.ListOrders, auth.RoleUser))
		v1.GET("/orders/view/:id", m.Authorize(h.GetOrder, auth.RoleUser))

		v1.GET("/profile", m.Authorize(h.GetProfile, auth.RoleUser))
		v1.PUT("/profile/update", m.Authorize(h.UpdateProfile, auth.RoleUser))
		v1.DELETE("/profile/delete", m.Authorize(h.DeleteProfile, auth.RoleUser))

		v1.POST("/products/create", m.Authorize(h.CreateProduct, auth.RoleAdmin))
		v1.PUT("/products/update/:id", m.Authorize(h.UpdateProduct, auth.RoleAdmin))
		v1.DELETE("/products/delete/:id", m.Authorize(h.DeleteProduct, auth.RoleAdmin))
		v1.GET("/orders/all", m.Authorize(h.ListAllOrders, auth.RoleAdmin))
	}

	return r
}

func healthCheck(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	fmt.Println("healthCheck handler ", traceId)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func claimsFromRequest(c *gin.Context) (auth.Claims, bool) {
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	return claims, ok
}
