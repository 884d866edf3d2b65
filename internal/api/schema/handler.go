package schema

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"gopkg.in/yaml.v3"

	"github.com/Vasu1712/scenyx-chat/pkg/logger"
)

const schemaPath = "/api/schema/"

// Handler serves the document as YAML, or JSON with ?format=json.
func Handler(doc *Document) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			body []byte
			err  error
		)
		if r.URL.Query().Get("format") == "json" {
			w.Header().Set("Content-Type", "application/vnd.oai.openapi+json")
			body, err = json.MarshalIndent(doc, "", "  ")
		} else {
			w.Header().Set("Content-Type", "application/vnd.oai.openapi")
			body, err = yaml.Marshal(doc)
		}
		if err != nil {
			logger.Error().Err(err).Msg("encode schema")
			http.Error(w, "could not encode schema", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write(body)
	}
}

// RegisterRoutes mounts the schema and its Swagger UI.
func RegisterRoutes(r *mux.Router, doc *Document) {
	r.HandleFunc(schemaPath, Handler(doc)).Methods(http.MethodGet).Name("schema")
	r.PathPrefix(schemaPath + "swagger-ui/").
		Handler(httpSwagger.Handler(httpSwagger.URL(schemaPath + "?format=json"))).
		Methods(http.MethodGet).
		Name("swagger-ui")
}
