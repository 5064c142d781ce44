package routes

import (
	"matjarna/analytics"
	"matjarna/auth"
	"matjarna/cart"
	"matjarna/checkout"
	"matjarna/coupon"
	"matjarna/media"
	"matjarna/middleware"
	"matjarna/orders"
	"matjarna/products"
	"matjarna/ratelim"
	"matjarna/reviews"
	"matjarna/shipping"
	"matjarna/upsell"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/uploads/*filepath", http.Dir("static/uploads"))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/login", rl.Limit(auth.Login))
	router.POST("/api/auth/token/refresh", rl.Limit(auth.RefreshToken))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.Logout))
	router.POST("/api/auth/password", middleware.RequireAdmin(auth.ChangePassword))
}

func AddCatalogRoutes(router *httprouter.Router) {
	router.GET("/api/products", products.GetProducts)
	router.GET("/api/products/:slug", products.GetProductBySlug)
	router.GET("/api/categories", products.GetCategories)

	router.POST("/api/admin/products", middleware.RequireAdmin(products.CreateProduct))
	router.GET("/api/admin/products", middleware.RequireAdmin(products.GetAllProducts))
	router.GET("/api/admin/products/:id", middleware.RequireAdmin(products.GetProduct))
	router.PUT("/api/admin/products/:id", middleware.RequireAdmin(products.UpdateProduct))
	router.DELETE("/api/admin/products/:id", middleware.RequireAdmin(products.DeleteProduct))

	router.POST("/api/admin/products/:id/images", middleware.RequireAdmin(products.AddImage))
	router.PUT("/api/admin/products/:id/images/:imageId/primary", middleware.RequireAdmin(products.SetPrimaryImage))
	router.DELETE("/api/admin/products/:id/images/:imageId", middleware.RequireAdmin(products.DeleteImage))

	router.GET("/api/admin/categories", middleware.RequireAdmin(products.GetAllCategories))
	router.POST("/api/admin/categories", middleware.RequireAdmin(products.CreateCategory))
	router.PUT("/api/admin/categories/:id", middleware.RequireAdmin(products.UpdateCategory))
	router.DELETE("/api/admin/categories/:id", middleware.RequireAdmin(products.DeleteCategory))
}

func AddCartRoutes(router *httprouter.Router) {
	router.GET("/api/cart", cart.GetCart)
	router.POST("/api/cart/items", cart.AddToCart)
	router.PUT("/api/cart/items/:itemId", cart.UpdateCartItem)
	router.DELETE("/api/cart/items/:itemId", cart.RemoveCartItem)
	router.POST("/api/cart/coupon", cart.ApplyCoupon)
	router.DELETE("/api/cart/coupon", cart.RemoveCoupon)
	router.DELETE("/api/cart", cart.ClearCart)
}

func AddCouponRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/coupons/validate", rl.Limit(coupon.ValidateHandler))

	router.POST("/api/admin/coupons", middleware.RequireAdmin(coupon.CreateCoupon))
	router.GET("/api/admin/coupons", middleware.RequireAdmin(coupon.GetCoupons))
	router.PUT("/api/admin/coupons/:couponId", middleware.RequireAdmin(coupon.UpdateCoupon))
	router.DELETE("/api/admin/coupons/:couponId", middleware.RequireAdmin(coupon.DeleteCoupon))
}

func AddShippingRoutes(router *httprouter.Router) {
	router.GET("/api/shipping/rates", shipping.GetRates)

	router.POST("/api/admin/shipping/rates", middleware.RequireAdmin(shipping.CreateRate))
	router.GET("/api/admin/shipping/rates", middleware.RequireAdmin(shipping.GetAllRates))
	router.PUT("/api/admin/shipping/rates/:rateId", middleware.RequireAdmin(shipping.UpdateRate))
	router.DELETE("/api/admin/shipping/rates/:rateId", middleware.RequireAdmin(shipping.DeleteRate))
}

func AddUpsellRoutes(router *httprouter.Router) {
	router.GET("/api/upsell/offer", upsell.EvaluateHandler)
	router.POST("/api/upsell/dismiss/:ruleId", upsell.DismissRule)

	router.POST("/api/admin/upsell/rules", middleware.RequireAdmin(upsell.CreateRule))
	router.GET("/api/admin/upsell/rules", middleware.RequireAdmin(upsell.GetRules))
	router.PUT("/api/admin/upsell/rules/:ruleId", middleware.RequireAdmin(upsell.UpdateRule))
	router.DELETE("/api/admin/upsell/rules/:ruleId", middleware.RequireAdmin(upsell.DeleteRule))
}

func AddCheckoutRoutes(router *httprouter.Router, h *checkout.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/checkout", rl.Limit(h.SubmitOrder))
	router.POST("/api/checkout/draft", h.SaveDraft)
}

func AddOrderRoutes(router *httprouter.Router, hub *orders.Hub) {
	router.GET("/api/orders/track/:orderNumber", orders.TrackOrder)
	router.GET("/api/orders/track/:orderNumber/qr", orders.TrackingQR)

	router.GET("/api/admin/orders", middleware.RequireAdmin(orders.GetOrders))
	router.GET("/api/admin/orders/:orderId", middleware.RequireAdmin(orders.GetOrder))
	router.PUT("/api/admin/orders/:orderId/status", middleware.RequireAdmin(orders.UpdateStatus))
	router.GET("/api/admin/orders/:orderId/invoice", middleware.RequireAdmin(orders.PrintInvoice))
	router.GET("/ws/admin/orders", middleware.Authenticate(orders.FeedHandler(hub)))
}

func AddReviewRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/reviews/product/:id", rl.Limit(reviews.SubmitReview))
	router.GET("/api/reviews/product/:id", reviews.GetProductReviews)

	router.GET("/api/admin/reviews", middleware.RequireAdmin(reviews.GetAllReviews))
	router.PUT("/api/admin/reviews/:id", middleware.RequireAdmin(reviews.ModerateReview))
	router.DELETE("/api/admin/reviews/:id", middleware.RequireAdmin(reviews.DeleteReview))
}

func AddMediaRoutes(router *httprouter.Router, uploadLimiter *ratelim.RateLimiter) {
	router.POST("/api/images/upload", uploadLimiter.Limit(middleware.RequireAdmin(media.UploadImage)))
}

func AddAbandonedCartRoutes(router *httprouter.Router) {
	router.GET("/api/admin/abandoned-carts", middleware.RequireAdmin(checkout.GetAbandonedCarts))
	router.DELETE("/api/admin/abandoned-carts/:sessionId", middleware.RequireAdmin(checkout.DeleteAbandonedCart))
}

func AddAnalyticsRoutes(router *httprouter.Router) {
	router.GET("/api/admin/analytics", middleware.RequireAdmin(analytics.Dashboard))
}
