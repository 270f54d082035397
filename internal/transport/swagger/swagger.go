package swagger

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Handler serves the swagger UI pointed at the OpenAPI document mounted at
// /openapi.yml.
func Handler() http.Handler {
	return httpSwagger.Handler(httpSwagger.URL("/openapi.yml"))
}
