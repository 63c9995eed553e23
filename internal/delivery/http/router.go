package http

import (
	"net/http"

	"eventify/internal/delivery/http/controllers"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Events     *controllers.EventController
	RSVPs      *controllers.RSVPController
	Categories *controllers.CategoryController
	Admin      *controllers.AdminController
	Auth       *controllers.AuthController
}

// NewRouter initializes the HTTP router with all application routes.
// requireAdmin guards the admin surface; imageDir is served under /static/images/.
func NewRouter(c Controllers, requireAdmin func(http.HandlerFunc) http.HandlerFunc, imageDir string) *http.ServeMux {
	mux := http.NewServeMux()

	// Catalog
	mux.HandleFunc("GET /{$}", c.Events.Home)
	mux.HandleFunc("GET /events/search", c.Events.Search)
	mux.HandleFunc("POST /search", c.Events.Search)
	mux.HandleFunc("GET /events/{eventID}", c.Events.GetEvent)
	mux.HandleFunc("POST /events", c.Events.CreateEvent)
	mux.HandleFunc("POST /events/{eventID}", c.Events.UpdateEvent)
	mux.HandleFunc("DELETE /events/{eventID}", c.Events.DeleteEvent)

	// RSVPs
	mux.HandleFunc("POST /events/{eventID}/rsvp", c.RSVPs.Submit)

	// Categories
	mux.HandleFunc("GET /categories", c.Categories.List)
	mux.HandleFunc("POST /categories", c.Categories.Add)

	// Admin
	mux.HandleFunc("GET /admin/dashboard", requireAdmin(c.Admin.Dashboard))
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Uploaded images
	mux.Handle("GET "+controllers.ImagePathPrefix, http.StripPrefix(controllers.ImagePathPrefix, http.FileServer(http.Dir(imageDir))))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
