// Package docs holds the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go
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
        "/api/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}}
                }
            }
        },
        "/api/authorize": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Authorize a navigation",
                "parameters": [
                    {"type": "string", "description": "Target path", "name": "path", "in": "query", "required": true},
                    {"type": "string", "description": "HTTP method, GET by default", "name": "method", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authorizeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a visitor or dealer",
                "parameters": [
                    {"description": "Account details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/auth/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {"303": {"description": "See Other"}}
            }
        },
        "/api/listings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["listings"],
                "summary": "Browse listings",
                "parameters": [
                    {"type": "string", "name": "make", "in": "query"},
                    {"type": "string", "name": "fuel", "in": "query"},
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.listingListResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["listings"],
                "summary": "Create a listing",
                "parameters": [
                    {"description": "Listing", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.listingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.listingResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/listings/{id}/leads": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["leads"],
                "summary": "Contact the dealer",
                "parameters": [
                    {"type": "string", "description": "Listing ID", "name": "id", "in": "path", "required": true},
                    {"description": "Contact form", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.leadRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.leadResponse"}},
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handler.acceptedResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.errorResponse": {"type": "object", "properties": {"error": {"type": "string"}}},
        "handler.acceptedResponse": {"type": "object", "properties": {"message": {"type": "string"}}},
        "handler.sessionResponse": {
            "type": "object",
            "properties": {
                "role": {"type": "string"},
                "is_logged_in": {"type": "boolean"},
                "email": {"type": "string"},
                "source": {"type": "string"}
            }
        },
        "handler.authorizeResponse": {
            "type": "object",
            "properties": {
                "path": {"type": "string"},
                "allowed": {"type": "boolean"},
                "access": {"type": "string"},
                "redirect": {"type": "string"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "handler.registerRequest": {
            "type": "object",
            "required": ["email", "password", "display_name"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "display_name": {"type": "string"},
                "role": {"type": "string", "enum": ["visitor", "stand", "dealer"]},
                "dealer_name": {"type": "string"},
                "phone": {"type": "string"},
                "city": {"type": "string"}
            }
        },
        "handler.authResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "session": {"$ref": "#/definitions/handler.sessionResponse"},
                "redirect": {"type": "string"}
            }
        },
        "handler.listingRequest": {
            "type": "object",
            "required": ["title", "make", "model", "year", "price", "fuel"],
            "properties": {
                "title": {"type": "string"},
                "make": {"type": "string"},
                "model": {"type": "string"},
                "year": {"type": "integer"},
                "price": {"type": "number"},
                "currency": {"type": "string"},
                "mileage_km": {"type": "integer"},
                "fuel": {"type": "string", "enum": ["gasoline", "diesel", "electric", "hybrid", "lpg"]},
                "transmission": {"type": "string", "enum": ["manual", "automatic"]},
                "description": {"type": "string"},
                "images": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.listingResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "dealer_id": {"type": "string"},
                "title": {"type": "string"},
                "make": {"type": "string"},
                "model": {"type": "string"},
                "year": {"type": "integer"},
                "price": {"type": "number"},
                "currency": {"type": "string"},
                "fuel": {"type": "string"},
                "status": {"type": "string"},
                "images": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.listingListResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/handler.listingResponse"}},
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "handler.leadRequest": {
            "type": "object",
            "required": ["name", "email", "message"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.leadResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "listing_id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "message": {"type": "string"},
                "created_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "standmarket API",
	Description:      "Car marketplace: session resolution, route authorization, listings and leads.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
