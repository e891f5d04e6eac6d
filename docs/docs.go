// Package docs регистрирует OpenAPI-описание для /swagger/doc.json.
// Файл поддерживается вручную по аннотациям в handlers (формат swag init).
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
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a club manager account",
                "parameters": [
                    {"description": "account", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.RegisterInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.envelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.envelope"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handlers.envelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in and receive a bearer token",
                "parameters": [
                    {"description": "credentials", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.LoginInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.envelope"}}
                }
            }
        },
        "/clubs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["clubs"],
                "summary": "List clubs",
                "parameters": [
                    {"type": "string", "description": "name or city", "name": "search", "in": "query"},
                    {"type": "string", "description": "country", "name": "country", "in": "query"},
                    {"type": "integer", "description": "page", "name": "page", "in": "query"},
                    {"type": "integer", "description": "page size", "name": "pageSize", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.envelope"}}
                }
            }
        },
        "/tournaments": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "List tournaments",
                "parameters": [
                    {"type": "string", "description": "name or location", "name": "search", "in": "query"},
                    {"type": "string", "description": "tournament status", "name": "status", "in": "query"},
                    {"type": "integer", "description": "organizer", "name": "organizerId", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.envelope"}}
                }
            }
        },
        "/registrations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["registrations"],
                "summary": "List team registrations",
                "parameters": [
                    {"type": "integer", "description": "tournament", "name": "tournamentId", "in": "query"},
                    {"type": "integer", "description": "age group", "name": "ageGroupId", "in": "query"},
                    {"type": "integer", "description": "club", "name": "clubId", "in": "query"},
                    {"type": "string", "description": "pending|approved|rejected|withdrawn", "name": "status", "in": "query"},
                    {"type": "string", "description": "team or club name", "name": "search", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.envelope"}}
                }
            }
        },
        "/age-groups/{ageGroupID}/pots": {
            "get": {
                "produces": ["application/json"],
                "tags": ["draw"],
                "summary": "Pots of an age group with draw readiness",
                "parameters": [
                    {"type": "integer", "description": "age group", "name": "ageGroupID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.envelope"}}
                }
            }
        },
        "/age-groups/{ageGroupID}/draw": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["draw"],
                "summary": "Run the group draw for an age group",
                "parameters": [
                    {"type": "integer", "description": "age group", "name": "ageGroupID", "in": "path", "required": true},
                    {"description": "optional seed", "name": "input", "in": "body", "schema": {"$ref": "#/definitions/services.ExecuteDrawInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.envelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.envelope"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handlers.envelope"}}
                }
            }
        },
        "/dashboard/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Dashboard counters for the current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.envelope"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.apiError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {}
            }
        },
        "handlers.envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "error": {"$ref": "#/definitions/handlers.apiError"}
            }
        },
        "services.RegisterInput": {
            "type": "object",
            "required": ["email", "firstName", "password"],
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8}
            }
        },
        "services.LoginInput": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "services.ExecuteDrawInput": {
            "type": "object",
            "properties": {
                "seed": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Football Tournaments API",
	Description:      "Youth football tournament administration: clubs, registrations, pots and group draws.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
