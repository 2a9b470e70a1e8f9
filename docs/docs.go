// Package docs serves the OpenAPI document consumed by the Swagger UI.
package docs

import _ "embed"

//go:embed openapi.json
var OpenAPI []byte
