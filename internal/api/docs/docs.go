// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/scan/{ticker}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["scan"],
                "summary": "Scan a ticker",
                "parameters": [
                    {"type": "string", "description": "Ticker symbol", "name": "ticker", "in": "path", "required": true},
                    {"type": "string", "default": "BVMF", "description": "Exchange code", "name": "exchange", "in": "query"},
                    {"type": "boolean", "description": "Ignore the cached result", "name": "refresh", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/search": {
            "get": {
                "produces": ["application/json"],
                "tags": ["search"],
                "summary": "Search stored tickers",
                "parameters": [
                    {"type": "string", "description": "Ticker or company name fragment", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.Suggestion"}}}
                }
            }
        },
        "/tickers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tickers"],
                "summary": "Ticker tape quotes",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.TickerQuote"}}}
                }
            }
        },
        "/profiles": {
            "get": {
                "produces": ["application/json"],
                "tags": ["scan"],
                "summary": "List scoring profiles",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProfilesResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "dto.Suggestion": {
            "type": "object",
            "properties": {
                "ticker": {"type": "string"},
                "name": {"type": "string"},
                "score": {"type": "number"}
            }
        },
        "dto.TickerQuote": {
            "type": "object",
            "properties": {
                "symbol": {"type": "string"},
                "price": {"type": "number"},
                "change_percent": {"type": "number"}
            }
        },
        "dto.ProfilesResponse": {
            "type": "object",
            "properties": {
                "active": {"type": "string"},
                "available": {"type": "array", "items": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Stock Scanner API",
	Description:      "Fundamental indicator scanner and scoring API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
