// Package docs holds the OpenAPI description served under /swagger.
// Regenerate with: swag init -g internal/api/router.go -o docs
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
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.tokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Account details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.tokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/messages": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "Send a message",
                "parameters": [
                    {"type": "string", "description": "Client retry key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Message", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.sendMessageRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sentMessageEnvelope"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.sentMessageEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/messages/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "Get a message",
                "parameters": [
                    {"type": "string", "description": "Message ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageDetailEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/messages/{id}/read": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "Mark a message as read",
                "parameters": [
                    {"type": "string", "description": "Message ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.readReceiptEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List users",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.usersResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/users/{username}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get a user profile",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "username", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/users/{username}/from": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Messages sent by a user",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "username", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.outboxEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/users/{username}/to": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Messages received by a user",
                "parameters": [
                    {"type": "string", "description": "Username", "name": "username", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.inboxEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string", "description": "at most 72 bytes"},
                "username": {"type": "string", "maxLength": 64}
            }
        },
        "handler.registerRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "firstName": {"type": "string", "maxLength": 100},
                "lastName": {"type": "string", "maxLength": 100},
                "password": {"type": "string", "description": "at most 72 bytes"},
                "phone": {"type": "string", "maxLength": 32},
                "username": {"type": "string", "maxLength": 64}
            }
        },
        "handler.tokenResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}}
        },
        "handler.sendMessageRequest": {
            "type": "object",
            "required": ["body", "toUsername"],
            "properties": {
                "body": {"type": "string"},
                "toUsername": {"type": "string", "maxLength": 64}
            }
        },
        "handler.participantResponse": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "phone": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "handler.messageDetailResponse": {
            "type": "object",
            "properties": {
                "body": {"type": "string"},
                "fromUser": {"$ref": "#/definitions/handler.participantResponse"},
                "id": {"type": "string"},
                "readAt": {"type": "string", "x-nullable": true},
                "sentAt": {"type": "string"},
                "toUser": {"$ref": "#/definitions/handler.participantResponse"}
            }
        },
        "handler.messageDetailEnvelope": {
            "type": "object",
            "properties": {"message": {"$ref": "#/definitions/handler.messageDetailResponse"}}
        },
        "handler.sentMessageResponse": {
            "type": "object",
            "properties": {
                "body": {"type": "string"},
                "fromUsername": {"type": "string"},
                "id": {"type": "string"},
                "sentAt": {"type": "string"},
                "toUsername": {"type": "string"}
            }
        },
        "handler.sentMessageEnvelope": {
            "type": "object",
            "properties": {"message": {"$ref": "#/definitions/handler.sentMessageResponse"}}
        },
        "handler.readReceiptResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "readAt": {"type": "string"}
            }
        },
        "handler.readReceiptEnvelope": {
            "type": "object",
            "properties": {"message": {"$ref": "#/definitions/handler.readReceiptResponse"}}
        },
        "handler.userSummaryResponse": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "handler.usersResponse": {
            "type": "object",
            "properties": {
                "users": {"type": "array", "items": {"$ref": "#/definitions/handler.userSummaryResponse"}}
            }
        },
        "handler.userResponse": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "joinedAt": {"type": "string"},
                "lastLoginAt": {"type": "string"},
                "lastName": {"type": "string"},
                "phone": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "handler.userEnvelope": {
            "type": "object",
            "properties": {"user": {"$ref": "#/definitions/handler.userResponse"}}
        },
        "handler.inboxItemResponse": {
            "type": "object",
            "properties": {
                "body": {"type": "string"},
                "fromUser": {"$ref": "#/definitions/handler.participantResponse"},
                "id": {"type": "string"},
                "readAt": {"type": "string", "x-nullable": true},
                "sentAt": {"type": "string"}
            }
        },
        "handler.inboxEnvelope": {
            "type": "object",
            "properties": {
                "messages": {"type": "array", "items": {"$ref": "#/definitions/handler.inboxItemResponse"}}
            }
        },
        "handler.outboxItemResponse": {
            "type": "object",
            "properties": {
                "body": {"type": "string"},
                "id": {"type": "string"},
                "readAt": {"type": "string", "x-nullable": true},
                "sentAt": {"type": "string"},
                "toUser": {"$ref": "#/definitions/handler.participantResponse"}
            }
        },
        "handler.outboxEnvelope": {
            "type": "object",
            "properties": {
                "messages": {"type": "array", "items": {"$ref": "#/definitions/handler.outboxItemResponse"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "messagely API",
	Description:      "Direct messaging between registered users.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
