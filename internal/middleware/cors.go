package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS lets browser clients on any origin call the API. Preflights that
// carry Access-Control-Request-Method are answered here, so routes with
// their own preflight responder must not be mounted behind it.
var CORS = cors.Handler(cors.Options{
	AllowedOrigins: []string{"*"},
	AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	AllowedHeaders: []string{"Content-Type"},
	MaxAge:         300,
})

// SetRelayCORSHeaders writes the fixed header set of the relay endpoint.
func SetRelayCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}
