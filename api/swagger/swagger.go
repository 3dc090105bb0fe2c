package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Goalie Roster API",
        "description": "Roster and session-history CSV import service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Imports", "description": "Roster and session CSV imports"},
        {"name": "Athletes", "description": "Roster read access and export"},
        {"name": "Observability", "description": "Probes and metrics"}
    ],
    "paths": {
        "/imports": {
            "post": {
                "tags": ["Imports"],
                "summary": "Import a roster or session CSV",
                "consumes": ["multipart/form-data", "text/csv"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file"},
                    {"name": "targetAthleteId", "in": "query", "type": "string"},
                    {"name": "async", "in": "query", "type": "boolean"},
                    {"name": "dryRun", "in": "query", "type": "boolean"},
                    {"name": "keepHistory", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "Dry run summary", "schema": {"$ref": "#/definitions/ImportEnvelope"}},
                    "201": {"description": "Imported", "schema": {"$ref": "#/definitions/ImportEnvelope"}},
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Empty file or invalid options", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "415": {"description": "Not a text file", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Header, email column, rows or target athlete unusable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Roster upsert failed or session rebuild partial; meta.summary set when partial", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Asynchronous imports disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/imports/{jobId}": {
            "get": {
                "tags": ["Imports"],
                "summary": "Asynchronous import status",
                "parameters": [
                    {"name": "jobId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown or expired job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/athletes": {
            "get": {
                "tags": ["Athletes"],
                "summary": "List athletes",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "team", "in": "query", "type": "string"},
                    {"name": "gradYear", "in": "query", "type": "integer"},
                    {"name": "claimed", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"},
                    {"name": "sortBy", "in": "query", "type": "string", "enum": ["id", "full_name", "email", "grad_year", "created_at", "updated_at"]},
                    {"name": "sortOrder", "in": "query", "type": "string", "enum": ["asc", "desc"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/athletes/export": {
            "get": {
                "tags": ["Athletes"],
                "summary": "Export the roster",
                "produces": ["text/csv", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "xlsx"]},
                    {"name": "team", "in": "query", "type": "string"},
                    {"name": "gradYear", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "File download", "schema": {"type": "file"}}
                }
            }
        },
        "/athletes/{id}": {
            "get": {
                "tags": ["Athletes"],
                "summary": "Get athlete",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/athletes/{id}/sessions": {
            "get": {
                "tags": ["Athletes"],
                "summary": "Athlete session history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Observability"],
                "summary": "Import metrics summary",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ImportSummary": {
            "type": "object",
            "properties": {
                "rows_parsed": {"type": "integer"},
                "rows_discarded": {"type": "integer"},
                "discard_reasons": {"type": "object", "additionalProperties": {"type": "integer"}},
                "athletes_affected": {"type": "integer"},
                "athletes_created": {"type": "integer"},
                "athletes_updated": {"type": "integer"},
                "session_rows_written": {"type": "integer"},
                "sessions_skipped": {"type": "boolean"},
                "partial": {"type": "boolean"},
                "warnings": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ImportEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object",
                    "properties": {
                        "summary": {"$ref": "#/definitions/ImportSummary"}
                    }
                },
                "meta": {"type": "object"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
