package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"matjarna/checkout"
	"matjarna/orders"
	"matjarna/ratelim"
	"matjarna/routes"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		duration := time.Since(start)
		log.Printf("%s %s from %s - %v", r.Method, r.RequestURI, r.RemoteAddr, duration)
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

// setupRouter builds the router with everything except the order feed, which
// is added in main so the hub does not have to be global.
func setupRouter(rl, strict, upload *ratelim.RateLimiter, checkoutHandler *checkout.Handler) *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", Index)

	routes.AddStaticRoutes(router)
	routes.AddAuthRoutes(router, strict)
	routes.AddCatalogRoutes(router)
	routes.AddCartRoutes(router)
	routes.AddCouponRoutes(router, rl)
	routes.AddShippingRoutes(router)
	routes.AddUpsellRoutes(router)
	routes.AddCheckoutRoutes(router, checkoutHandler, strict)
	routes.AddReviewRoutes(router, strict)
	routes.AddMediaRoutes(router, upload)
	routes.AddAnalyticsRoutes(router)
	routes.AddAbandonedCartRoutes(router)

	return router
}

// sweepOrphans periodically reclaims order items whose header write failed.
func sweepOrphans(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
			removed, err := orders.SweepOrphanedItems(sweepCtx, 30*time.Minute)
			cancel()
			if err != nil {
				log.Println("orphan sweep error:", err)
			} else if removed > 0 {
				log.Printf("orphan sweep removed %d order items", removed)
			}
		}
	}
}

func main() {
	// load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	} else if port[0] != ':' {
		port = ":" + port
	}

	// general API budget, a tighter one for login, checkout and reviews, and
	// an upload budget of 20 per minute
	rateLimiter := ratelim.NewRateLimiter(10, 20)
	strictLimiter := ratelim.NewRateLimiter(1, 5)
	uploadLimiter := ratelim.NewRateLimiter(rate.Every(3*time.Second), 20)

	// order feed hub for the admin dashboard
	hub := orders.NewHub()
	go hub.Run()

	// abandoned-cart saver fires 2s after the last field edit
	saver := checkout.NewSaver(2*time.Second, nil)
	checkoutHandler := checkout.NewHandler(saver, hub)

	router := setupRouter(rateLimiter, strictLimiter, uploadLimiter, checkoutHandler)
	routes.AddOrderRoutes(router, hub)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sweepOrphans(sweepCtx)

	// apply middleware: CORS -> security headers -> logging -> router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Session-ID"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Println("Shutting down order feed...")
		hub.Stop()
		stopSweep()
	})

	go func() {
		log.Printf("Server listening on %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutdown signal received; shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Graceful shutdown failed: %v", err)
	}

	log.Println("Server stopped cleanly")
}
