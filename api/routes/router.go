package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adiprasetyo/lokalmart-backend/api/controllers"
	"github.com/adiprasetyo/lokalmart-backend/api/middleware"
	"github.com/adiprasetyo/lokalmart-backend/internal/activity"
	"github.com/adiprasetyo/lokalmart-backend/internal/archive"
	"github.com/adiprasetyo/lokalmart-backend/internal/auth"
	"github.com/adiprasetyo/lokalmart-backend/internal/cart"
	"github.com/adiprasetyo/lokalmart-backend/internal/chat"
	checkoutsvc "github.com/adiprasetyo/lokalmart-backend/internal/checkout"
	"github.com/adiprasetyo/lokalmart-backend/internal/coupons"
	"github.com/adiprasetyo/lokalmart-backend/internal/events"
	"github.com/adiprasetyo/lokalmart-backend/internal/media"
	"github.com/adiprasetyo/lokalmart-backend/internal/memberships"
	"github.com/adiprasetyo/lokalmart-backend/internal/orders"
	"github.com/adiprasetyo/lokalmart-backend/internal/points"
	"github.com/adiprasetyo/lokalmart-backend/internal/products"
	"github.com/adiprasetyo/lokalmart-backend/internal/reviews"
	"github.com/adiprasetyo/lokalmart-backend/internal/stores"
	"github.com/adiprasetyo/lokalmart-backend/internal/support"
	"github.com/adiprasetyo/lokalmart-backend/internal/users"
	"github.com/adiprasetyo/lokalmart-backend/pkg/auth/session"
	"github.com/adiprasetyo/lokalmart-backend/pkg/config"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	"github.com/adiprasetyo/lokalmart-backend/pkg/logger"
	pkgredis "github.com/adiprasetyo/lokalmart-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. Nil health probes are
// skipped by the readiness handler.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Redis    *pkgredis.Client
	Sessions session.AccessSessionChecker

	HealthProbes map[string]controllers.Pinger

	Auth        auth.Service
	Users       users.Service
	Stores      stores.Service
	Products    products.Service
	Cart        cart.Service
	Checkout    checkoutsvc.Service
	Coupons     coupons.Service
	Orders      orders.Service
	Points      points.Service
	Memberships memberships.Service
	Events      events.Service
	Chat        chat.Service
	Reviews     reviews.Service
	Support     support.Service
	Media       media.Service
	Activity    activity.Service
	Archive     archive.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.HealthProbes))
	})

	// The auth service enforces per-email limits itself, so the middleware
	// policies here only count per-IP.
	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login", cfg.AuthRateLimit.LoginWindow, cfg.AuthRateLimit.LoginIPLimit, 0,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register", cfg.AuthRateLimit.RegisterWindow, cfg.AuthRateLimit.RegisterIPLimit, 0,
	)
	passthrough := func(next http.Handler) http.Handler { return next }
	loginLimiter, registerLimiter := passthrough, passthrough
	var idemStore pkgredis.IdempotencyStore
	if d.Redis != nil {
		loginLimiter = middleware.AuthRateLimit(loginPolicy, d.Redis, logg)
		registerLimiter = middleware.AuthRateLimit(registerPolicy, d.Redis, logg)
		idemStore = d.Redis
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(loginLimiter).Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.With(registerLimiter).Post("/register", controllers.AuthRegister(d.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(d.Auth, cfg.JWT, logg))
	})

	// Public catalog and storefront surface.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(d.Products, logg))
		r.Get("/{productID}", controllers.ProductsGet(d.Products, logg))
		r.Get("/{productID}/reviews", controllers.ReviewsList(d.Reviews, logg))
		r.Get("/{productID}/reviews/summary", controllers.ReviewsSummary(d.Reviews, logg))
	})
	r.Route("/api/v1/stores", func(r chi.Router) {
		r.Get("/levels", controllers.StoresLevels(d.Stores, logg))
		r.Get("/{sellerID}", controllers.StoresStorefront(d.Stores, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", controllers.UsersMe(d.Users, logg))
			r.Patch("/me", controllers.UsersUpdateMe(d.Users, logg))
			r.Get("/{userID}", controllers.UsersGet(d.Users, logg))
			r.Post("/{userID}/follow", controllers.UsersFollow(d.Users, logg))
			r.Delete("/{userID}/follow", controllers.UsersUnfollow(d.Users, logg))
		})

		r.Post("/stores/open", controllers.StoresOpen(d.Stores, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartList(d.Cart, logg))
			r.Post("/items", controllers.CartUpsertItem(d.Cart, logg))
			r.Post("/items/{itemID}/coupon", controllers.CartApplyCoupon(d.Cart, logg))
			r.Delete("/items/{itemID}/coupon", controllers.CartRemoveCoupon(d.Cart, logg))
			r.Delete("/items/{itemID}", controllers.CartRemoveItem(d.Cart, logg))
			r.Delete("/", controllers.CartClear(d.Cart, logg))
		})

		r.Post("/checkout", controllers.Checkout(d.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersListMine(d.Orders, logg))
			r.Get("/{orderID}", controllers.OrdersGet(d.Orders, logg))
			r.Post("/{orderID}/proof", controllers.OrdersAttachProof(d.Orders, logg))
			r.Post("/{orderID}/cancel", controllers.OrdersCancel(d.Orders, logg))
		})

		r.Get("/points/history", controllers.PointsHistory(d.Points, logg))

		r.Route("/memberships", func(r chi.Router) {
			r.Get("/plans", controllers.MembershipPlansList(d.Memberships, logg))
			r.Post("/purchase", controllers.MembershipPurchase(d.Memberships, logg))
		})

		r.Route("/events/wheel", func(r chi.Router) {
			r.Get("/", controllers.EventsWheelConfig(d.Events, logg))
			r.Post("/spin", controllers.EventsWheelSpin(d.Events, logg))
		})

		r.Route("/chat/sessions", func(r chi.Router) {
			r.Post("/", controllers.ChatOpenSession(d.Chat, logg))
			r.Get("/", controllers.ChatListSessions(d.Chat, logg))
			r.Get("/{sessionID}/messages", controllers.ChatListMessages(d.Chat, logg))
			r.Post("/{sessionID}/messages", controllers.ChatSendMessage(d.Chat, logg))
			r.Post("/{sessionID}/close", controllers.ChatCloseSession(d.Chat, logg))
		})

		r.Post("/products/{productID}/reviews", controllers.ReviewsSubmit(d.Reviews, logg))
		r.Delete("/products/{productID}/reviews/{userID}", controllers.ReviewsDelete(d.Reviews, logg))

		r.Route("/support", func(r chi.Router) {
			r.Post("/reports", controllers.SupportFileReport(d.Support, logg))
			r.Post("/feedback", controllers.SupportSubmitFeedback(d.Support, logg))
		})

		r.Route("/media", func(r chi.Router) {
			r.Post("/", controllers.MediaUpload(d.Media, logg))
			r.Get("/", controllers.MediaList(d.Media, logg))
			r.Delete("/{mediaID}", controllers.MediaDelete(d.Media, logg))
		})

		r.Route("/seller", func(r chi.Router) {
			r.Use(middleware.RequireSeller(logg))
			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.SellerProductCreate(d.Products, logg))
				r.Patch("/{productID}", controllers.SellerProductUpdate(d.Products, logg))
				r.Delete("/{productID}", controllers.SellerProductDelete(d.Products, logg))
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.SellerOrdersList(d.Orders, logg))
				r.Patch("/{orderID}/status", controllers.OrdersTransition(d.Orders, d.Users, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminUsersList(d.Users, logg))
			r.Patch("/{userID}/banned", controllers.AdminUserSetBanned(d.Users, logg))
			r.Patch("/{userID}/verified", controllers.AdminUserSetVerified(d.Users, logg))
			r.Delete("/{userID}", controllers.AdminUserDelete(d.Users, logg))
			r.Get("/{userID}/points", controllers.AdminPointsHistory(d.Points, logg))
			r.Get("/{userID}/activity", controllers.AdminUserActivityList(d.Activity, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminProductCreate(d.Products, d.Users, logg))
			r.Patch("/{productID}/flash-sale", controllers.AdminProductSetFlashSale(d.Products, d.Users, logg))
			r.Patch("/{productID}/boost", controllers.AdminProductSetBoosted(d.Products, d.Users, logg))
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Post("/", controllers.AdminCouponCreate(d.Coupons, logg))
			r.Get("/", controllers.AdminCouponsList(d.Coupons, logg))
			r.Patch("/{couponID}", controllers.AdminCouponUpdate(d.Coupons, logg))
			r.Delete("/{couponID}", controllers.AdminCouponDelete(d.Coupons, logg))
		})

		r.Post("/points/adjust", controllers.AdminPointsAdjust(d.Points, d.Users, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrdersList(d.Orders, logg))
			r.Patch("/{orderID}/status", controllers.OrdersTransition(d.Orders, d.Users, logg))
		})

		r.Route("/memberships/plans", func(r chi.Router) {
			r.Post("/", controllers.AdminPlanCreate(d.Memberships, d.Users, logg))
			r.Patch("/{planID}", controllers.AdminPlanUpdate(d.Memberships, d.Users, logg))
			r.Delete("/{planID}", controllers.AdminPlanDelete(d.Memberships, d.Users, logg))
		})

		r.Put("/events/wheel", controllers.AdminWheelConfigUpdate(d.Events, d.Users, logg))

		r.Patch("/stores/{sellerID}/status", controllers.AdminStoreSetStatus(d.Stores, d.Users, logg))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", controllers.AdminReportsList(d.Support, logg))
			r.Patch("/{reportID}", controllers.AdminReportResolve(d.Support, d.Users, logg))
		})
		r.Get("/feedback", controllers.AdminFeedbackList(d.Support, logg))

		r.Get("/activity", controllers.AdminActivityList(d.Activity, logg))
		r.Get("/archives", controllers.AdminArchivesList(d.Archive, logg))
	})

	return r
}
