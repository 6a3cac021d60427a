package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sudharshini/backend/internal/domain/identity"
	"github.com/sudharshini/backend/internal/interfaces/http/handler"
	"github.com/sudharshini/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers groups every HTTP handler the API exposes
type Handlers struct {
	System   *handler.SystemHandler
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Order    *handler.OrderHandler
	Delivery *handler.DeliveryHandler
	Product  *handler.ProductHandler
	Stock    *handler.StockHandler
	Review   *handler.ReviewHandler
	Supplier *handler.SupplierHandler
	Cart     *handler.CartHandler
	Report   *handler.ReportHandler
}

// Guards are the access middlewares attached to route groups
type Guards struct {
	auth     gin.HandlerFunc
	optional gin.HandlerFunc
	roles    middleware.RoleConfig
	limit    gin.HandlerFunc
}

// NewGuards builds JWT, optional JWT and role guards around the validator.
// authLimit may be nil.
func NewGuards(validator middleware.TokenValidator, authLimit gin.HandlerFunc, log *zap.Logger) Guards {
	return Guards{
		auth: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			Validator: validator,
			Logger:    log,
		}),
		optional: middleware.OptionalJWTAuthMiddleware(validator),
		roles:    middleware.RoleConfig{Logger: log},
		limit:    authLimit,
	}
}

func (g Guards) role(roles ...identity.Role) []gin.HandlerFunc {
	return []gin.HandlerFunc{g.auth, middleware.RequireRolesWithConfig(g.roles, roles...)}
}

func (g Guards) admin() []gin.HandlerFunc {
	return g.role(identity.RoleAdmin)
}

func (g Guards) limited(h gin.HandlerFunc) []gin.HandlerFunc {
	if g.limit == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{g.limit, h}
}

func with(chain []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(chain)+1)
	return append(append(out, chain...), h)
}

// Routes returns the domain groups of the API, ready for Router.Register
func Routes(h Handlers, g Guards) []RouteRegistrar {
	health := NewDomainGroup("system", "/health")
	health.GET("", h.System.Health)

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/customer/register", g.limited(h.Auth.Register)...)
	authRoutes.POST("/customer/login", g.limited(h.Auth.Login)...)
	authRoutes.POST("/customer/send-otp", g.limited(h.Auth.SendOTP)...)
	authRoutes.POST("/customer/verify-otp", g.limited(h.Auth.VerifyOTP)...)
	authRoutes.POST("/admin/login", g.limited(h.Auth.AdminLogin)...)
	authRoutes.POST("/refresh", g.limited(h.Auth.RefreshToken)...)
	authRoutes.POST("/logout", g.auth, h.Auth.Logout)
	authRoutes.GET("/profile", g.auth, h.Auth.GetProfile)
	authRoutes.PUT("/profile", g.auth, h.Auth.UpdateProfile)
	authRoutes.POST("/change-password", g.auth, h.Auth.ChangePassword)

	adminRoutes := authRoutes.Group("admin", "/admin").Use(g.admin()...)
	adminRoutes.GET("/users", h.User.ListUsers)
	adminRoutes.GET("/delivery-men", h.User.ListDeliveryMen)
	adminRoutes.POST("/delivery-men", h.User.CreateDeliveryMan)
	adminRoutes.GET("/delivery-men/:id", h.User.GetDeliveryMan)
	adminRoutes.PUT("/delivery-men/:id", h.User.UpdateDeliveryMan)
	adminRoutes.DELETE("/delivery-men/:id", h.User.DeleteDeliveryMan)

	orders := NewDomainGroup("orders", "/orders")
	orders.POST("", with(g.role(identity.RoleCustomer), h.Order.Create)...)
	orders.GET("/my-orders", with(g.role(identity.RoleCustomer), h.Order.MyOrders)...)
	orders.GET("/all", with(g.admin(), h.Order.All)...)
	orders.GET("/customer/:customerId", with(g.admin(), h.Order.ByCustomer)...)
	orders.GET("/by-order-number/:orderNumber", h.Order.ByOrderNumber)
	orders.GET("/by-tracking-id/:trackingId", h.Order.ByTrackingID)
	orders.GET("/:id", g.auth, h.Order.Get)
	orders.GET("/:id/tracking", h.Order.Tracking)
	orders.GET("/:id/location-tracking", g.optional, h.Order.LocationTracking)
	orders.PATCH("/:id/status", with(g.admin(), h.Order.UpdateStatus)...)

	delivery := NewDomainGroup("delivery", "/delivery").Use(g.role(identity.RoleDeliveryMan)...)
	delivery.GET("/available-orders", h.Delivery.AvailableOrders)
	delivery.GET("/my-orders", h.Delivery.MyOrders)
	delivery.GET("/orders/:orderId", h.Delivery.OrderDetails)
	delivery.POST("/orders/:orderId/accept", h.Delivery.Accept)
	delivery.POST("/orders/:orderId/update-status", h.Delivery.UpdateStatus)
	delivery.POST("/orders/:orderId/update-location", h.Delivery.UpdateLocation)
	delivery.POST("/orders/:orderId/generate-fake-locations", h.Delivery.GenerateRoute)

	products := NewDomainGroup("products", "/products")
	products.GET("", h.Product.List)
	products.GET("/:id", h.Product.Get)
	products.POST("", with(g.admin(), h.Product.Create)...)
	products.POST("/upload", with(g.admin(), h.Product.UploadImage)...)
	products.PUT("/:id", with(g.admin(), h.Product.Update)...)
	products.DELETE("/:id", with(g.admin(), h.Product.Delete)...)

	stock := NewDomainGroup("stock", "/stock").Use(g.admin()...)
	stock.POST("/in", h.Stock.StockIn)
	stock.POST("/out", h.Stock.StockOut)
	stock.GET("/history/:productId", h.Stock.History)

	reviews := NewDomainGroup("reviews", "/reviews")
	reviews.GET("/product/:productId", h.Review.ForProduct)
	reviews.GET("/user/me", g.auth, h.Review.Mine)
	reviews.POST("/product/:productId", g.auth, h.Review.Upsert)
	reviews.DELETE("/:reviewId", g.auth, h.Review.Delete)

	suppliers := NewDomainGroup("suppliers", "/suppliers").Use(g.admin()...)
	suppliers.GET("", h.Supplier.List)
	suppliers.GET("/:id", h.Supplier.Get)
	suppliers.POST("", h.Supplier.Create)
	suppliers.PUT("/:id", h.Supplier.Update)
	suppliers.DELETE("/:id", h.Supplier.Delete)

	cart := NewDomainGroup("cart", "/cart").Use(g.role(identity.RoleCustomer)...)
	cart.GET("", h.Cart.Get)
	cart.DELETE("", h.Cart.Clear)
	cart.POST("/items", h.Cart.AddItem)
	cart.PUT("/items/:itemId", h.Cart.UpdateItem)
	cart.DELETE("/items/:itemId", h.Cart.RemoveItem)

	reports := NewDomainGroup("reports", "/reports").Use(g.admin()...)
	reports.GET("/summary", h.Report.Summary)

	return []RouteRegistrar{health, authRoutes, orders, delivery, products, stock, reviews, suppliers, cart, reports}
}
