package swagger

import (
	"net/http"

	"github.com/go-chi/chi"
	httpSwagger "github.com/swaggo/http-swagger"
)

const DocumentPath = "/openapi.yml"

// Mount publishes the OpenAPI document read from specPath at DocumentPath and
// the Swagger UI pointing at it under /swagger/.
func Mount(r chi.Router, specPath string) {
	r.Get(DocumentPath, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		http.ServeFile(w, req, specPath)
	})
	r.Handle("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(DocumentPath),
		httpSwagger.DocExpansion("list"),
	))
}
