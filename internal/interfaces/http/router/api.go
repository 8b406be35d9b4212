package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/handler"
)

// Handlers bundles the HTTP handlers of the storefront API
type Handlers struct {
	Inventory *handler.InventoryHandler
	Cart      *handler.CartHandler
	Payment   *handler.PaymentHandler
	Order     *handler.OrderHandler
	Health    *handler.HealthHandler
}

// Groups returns the domain route groups of the API
func (h Handlers) Groups() []*DomainGroup {
	inventory := NewDomainGroup("inventory", "/inventory").
		GET("/:sku", h.Inventory.GetItem).
		GET("/:sku/availability", h.Inventory.Availability).
		GET("/:sku/stock", h.Inventory.Stock).
		POST("/:sku/adjustments", h.Inventory.Adjust).
		PATCH("/:sku/status", h.Inventory.UpdateStatus)

	products := NewDomainGroup("product", "/products").
		PATCH("/:sku/status", h.Inventory.UpdateProductStatus)

	carts := NewDomainGroup("cart", "/carts").
		GET("/:id", h.Cart.GetCart).
		POST("/:id/lines", h.Cart.AddLine).
		PUT("/:id/lines", h.Cart.SetQuantities).
		DELETE("/:id/lines/:sku", h.Cart.RemoveLine).
		PATCH("/:id/lines/:lineId", h.Cart.AdjustLine).
		POST("/:id/checkout", h.Cart.Checkout)

	users := NewDomainGroup("user", "/users").
		GET("/:id/cart", h.Cart.GetUserCart).
		GET("/:id/orders", h.Order.ListByUser).
		GET("/:id/orders/counts", h.Order.CountByStatus)

	orders := NewDomainGroup("order", "/orders").
		GET("", h.Order.Lookup).
		GET("/:id", h.Order.GetOrder).
		GET("/:id/refunds", h.Order.ListRefunds).
		POST("/:id/refund", h.Order.RefundOrder).
		PATCH("/:id/status", h.Payment.AdvanceStatus)

	orderLines := NewDomainGroup("order-line", "/order-lines").
		POST("/:id/refund", h.Order.RefundLine)

	payments := NewDomainGroup("payment", "/payments").
		POST("/callback", h.Payment.Callback)

	system := NewDomainGroup("system", "").
		GET("/health", h.Health.Health)

	return []*DomainGroup{inventory, products, carts, users, orders, orderLines, payments, system}
}

// Mount registers every API route on engine and returns the route table
func Mount(engine *gin.Engine, h Handlers, opts ...RouterOption) []RouteInfo {
	r := NewRouter(engine, opts...)
	var routes []RouteInfo
	for _, g := range h.Groups() {
		r.Register(g)
		routes = append(routes, g.Routes(r.BasePath())...)
	}
	r.Setup()
	return routes
}
