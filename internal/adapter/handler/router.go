package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/funkystitch/storefront/internal/core/service"
)

// NewRouter wires the public, authenticated and admin route trees.
func NewRouter(
	users *UserHandler,
	products *ProductHandler,
	carts *CartHandler,
	orders *OrderHandler,
	userService *service.UserService,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/contact", users.Contact)

		r.Route("/users", func(r chi.Router) {
			r.Post("/register", users.Register)
			r.Post("/verify-otp", users.VerifyOTP)
			r.Post("/login", users.Login)
			r.Post("/logout", users.Logout)
			r.Post("/forgot-password", users.ForgotPassword)
			r.Put("/reset-password/{token}", users.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth(userService))
				r.Get("/profile", users.GetProfile)
				r.Put("/profile", users.UpdateProfile)
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth(userService), RequireAdmin)
				r.Get("/", users.ListUsers)
				r.Get("/{id}", users.GetUser)
				r.Put("/{id}", users.AdminUpdateUser)
				r.Delete("/{id}", users.DeleteUser)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.List)
			r.Get("/top", products.Top)
			r.Get("/{id}", products.Get)

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth(userService))
				r.Post("/{id}/reviews", products.AddReview)
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth(userService), RequireAdmin)
				r.Post("/", products.Create)
				r.Put("/{id}", products.Update)
				r.Delete("/{id}", products.Delete)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(RequireAuth(userService))
			r.Get("/", carts.Get)
			r.Put("/", carts.Put)
			r.Delete("/", carts.Delete)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(RequireAuth(userService))
			r.Post("/", orders.Place)
			r.Get("/mine", orders.ListMine)
			r.Get("/{id}", orders.Get)
			r.Get("/track/{id}", orders.Track)
			r.Put("/{id}/pay", orders.Pay)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Get("/", orders.ListAll)
				r.Delete("/{id}", orders.Delete)
				r.Put("/{id}/ship", orders.Ship)
				r.Put("/{id}/deliver", orders.Deliver)
			})
		})
	})

	return r
}
