package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dafibh/budgetpro/budgetpro-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

// OpenAPI3Spec represents an OpenAPI 3.0 spec structure
type OpenAPI3Spec struct {
	OpenAPI    string                 `json:"openapi"`
	Info       map[string]interface{} `json:"info"`
	Servers    []Server               `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// Server represents an OpenAPI 3.0 server
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// DefaultServers is used when no servers are configured
var DefaultServers = []Server{
	{URL: "http://localhost:8080/api/v1", Description: "Local Development"},
}

// Fields of a Swagger 2.0 non-body parameter that move into its schema
var schemaFields = []string{"type", "format", "enum", "default", "minimum", "maximum", "items"}

// toOpenAPI3 rewrites definition refs to component refs and moves parameter
// type information into schema objects
func toOpenAPI3(node interface{}) interface{} {
	switch v := node.(type) {
	case map[string]interface{}:
		if isParameter(v) && v["in"] != "body" {
			return convertParameter(v)
		}
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				out[key] = strings.Replace(ref, "#/definitions/", "#/components/schemas/", 1)
				continue
			}
			out[key] = toOpenAPI3(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = toOpenAPI3(item)
		}
		return out
	default:
		return node
	}
}

func isParameter(v map[string]interface{}) bool {
	_, hasIn := v["in"]
	_, hasName := v["name"]
	return hasIn && hasName
}

func convertParameter(param map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, field := range []string{"name", "in", "description", "required"} {
		if val, ok := param[field]; ok {
			out[field] = val
		}
	}

	schema := make(map[string]interface{})
	for _, field := range schemaFields {
		if val, ok := param[field]; ok {
			schema[field] = toOpenAPI3(val)
		}
	}
	if len(schema) > 0 {
		out["schema"] = schema
	}
	return out
}

// OpenAPI3Handler serves the generated Swagger 2.0 document converted to
// OpenAPI 3.0 with the given servers
func OpenAPI3Handler(servers []Server) echo.HandlerFunc {
	if len(servers) == 0 {
		servers = DefaultServers
	}

	return func(c echo.Context) error {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			return NewInternalError(c, "Failed to read swagger doc")
		}

		var swagger2 map[string]interface{}
		if err := json.Unmarshal([]byte(doc), &swagger2); err != nil {
			return NewInternalError(c, "Failed to parse swagger doc")
		}

		info, _ := swagger2["info"].(map[string]interface{})
		paths, _ := swagger2["paths"].(map[string]interface{})

		components := make(map[string]interface{})
		if definitions, ok := swagger2["definitions"].(map[string]interface{}); ok {
			components["schemas"] = toOpenAPI3(definitions)
		}

		converted, _ := toOpenAPI3(paths).(map[string]interface{})
		return c.JSON(http.StatusOK, OpenAPI3Spec{
			OpenAPI:    "3.0.3",
			Info:       info,
			Servers:    servers,
			Paths:      converted,
			Components: components,
		})
	}
}
