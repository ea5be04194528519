// Package docs registers the OpenAPI description served at /swagger in dev mode.
// Rebuild it from the handler annotations with `go generate` at the module root.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/loans": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["loans"],
                "summary": "List loans with paging, status filter and search",
                "parameters": [
                    {"type": "integer", "description": "page (1-based)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "items per page (max 100)", "name": "page_size", "in": "query"},
                    {"type": "string", "description": "all|pending|issued|rejected|returned", "name": "status", "in": "query"},
                    {"type": "string", "description": "book title or member name", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/loanquery.PageResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["loans"],
                "summary": "Request to borrow a book",
                "parameters": [
                    {"description": "book to borrow", "name": "body", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/loans.CreateLoanRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/loans.LoanResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/loans.errorDTO"}}
                }
            }
        },
        "/loans/due": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["loans"],
                "summary": "Issued loans due today, due soon and overdue",
                "parameters": [
                    {"type": "integer", "description": "due-soon window in days (default from config)", "name": "horizon", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/loanquery.DueReportResponse"}}
                }
            }
        },
        "/loans/{id}/decision": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["loans"],
                "summary": "Issue or reject a pending loan",
                "parameters": [
                    {"type": "integer", "description": "loan id", "name": "id", "in": "path", "required": true},
                    {"description": "issued or rejected", "name": "body", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/loans.DecideRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/loans.LoanResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/loans.errorDTO"}}
                }
            }
        }
    },
    "definitions": {
        "loans.CreateLoanRequest": {
            "type": "object",
            "required": ["book_id"],
            "properties": {"book_id": {"type": "integer"}}
        },
        "loans.DecideRequest": {
            "type": "object",
            "required": ["decision"],
            "properties": {"decision": {"type": "string", "enum": ["issued", "rejected"]}}
        },
        "loans.LoanResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "loan_ulid": {"type": "string"},
                "book_id": {"type": "integer"},
                "member_id": {"type": "integer"},
                "status": {"type": "string", "enum": ["pending", "issued", "rejected", "returned"]},
                "issue_date": {"type": "string", "format": "date-time"},
                "due_date": {"type": "string", "format": "date-time"},
                "return_date": {"type": "string", "format": "date-time"},
                "decided_by": {"type": "integer"},
                "decided_at": {"type": "string", "format": "date-time"},
                "returned_by": {"type": "integer"},
                "terminal": {"type": "boolean"}
            }
        },
        "loans.errorDTO": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
                }
            }
        },
        "loanquery.LoanViewResponse": {
            "allOf": [
                {"$ref": "#/definitions/loans.LoanResponse"},
                {"type": "object", "properties": {"book_title": {"type": "string"}, "member_name": {"type": "string"}}}
            ]
        },
        "loanquery.PageResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/loanquery.LoanViewResponse"}},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "loanquery.DueReportResponse": {
            "type": "object",
            "properties": {
                "today": {"type": "string", "format": "date"},
                "horizon_days": {"type": "integer"},
                "due_today": {"type": "array", "items": {"$ref": "#/definitions/loanquery.LoanViewResponse"}},
                "due_soon": {"type": "array", "items": {"$ref": "#/definitions/loanquery.LoanViewResponse"}},
                "overdue": {"type": "array", "items": {"$ref": "#/definitions/loanquery.LoanViewResponse"}}
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
	Title:            "BookHive circulation API",
	Description:      "Loan requests, decisions, returns and loan listings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
