package utils

import (
	"net/http"
	"sync"

	_ "github.com/akolanti/OCRBot/cmd/api/docs"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/http-swagger"
)

var (
	routerOnce sync.Once
	router     *chi.Mux
)

// GetNewUUID is used for turn ids and generated trace ids.
func GetNewUUID() string {
	return uuid.NewString()
}

type RouterClient struct {
	Router *chi.Mux
}

func GetChiURLParam(request *http.Request, key string) string {
	return chi.URLParam(request, key)
}

// GetRouter returns the process wide router with /metrics and the swagger UI mounted.
// The api routes are added by the server.
func GetRouter() RouterClient {
	routerOnce.Do(func() {
		router = chi.NewRouter()
		router.Use(chimiddleware.Recoverer, chimiddleware.CleanPath)
		router.Handle("/metrics", promhttp.Handler())
		mountSwagger(router)
	})
	return RouterClient{Router: router}
}

func mountSwagger(r chi.Router) {
	r.Handle("/swagger", http.RedirectHandler("/swagger/index.html", http.StatusMovedPermanently))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
