// Package swagger registers the API document with swag and serves the UI.
package swagger

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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Liveness and scraper capability",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.HealthResponse"}}
                }
            }
        },
        "/api/pln/postpaid": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["inquiry"],
                "summary": "Check a PLN postpaid bill",
                "description": "Tries the configured providers in order and returns the first bill found. Always answers 200; branch on status.",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/api.InquiryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.InquiryResponse"}}
                }
            }
        },
        "/api/cek-tagihan-pln": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["inquiry"],
                "summary": "Alias of /api/pln/postpaid",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/api.InquiryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.InquiryResponse"}}
                }
            }
        },
        "/api/providers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["inquiry"],
                "summary": "List providers in inquiry order",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/api.ProviderDTO"}}}
                }
            }
        },
        "/api/transactions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ledger"],
                "summary": "List dashboard transactions",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ledger"],
                "summary": "Record a transaction",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/transactions/{id}": {
            "delete": {
                "tags": ["ledger"],
                "summary": "Delete a transaction",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/pln-customers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ledger"],
                "summary": "List ledger customers",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ledger"],
                "summary": "Create a ledger customer",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/pln-customers/{customerNumber}": {
            "put": {
                "tags": ["ledger"],
                "summary": "Update a ledger customer",
                "parameters": [{"type": "string", "name": "customerNumber", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "tags": ["ledger"],
                "summary": "Delete a ledger customer",
                "parameters": [{"type": "string", "name": "customerNumber", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/pln-customers/{customerNumber}/bills": {
            "post": {
                "tags": ["ledger"],
                "summary": "Add a bill to a ledger customer",
                "parameters": [{"type": "string", "name": "customerNumber", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/pln-customers/{customerNumber}/bills/{billIndex}/pay": {
            "put": {
                "tags": ["ledger"],
                "summary": "Mark a bill as paid",
                "parameters": [
                    {"type": "string", "name": "customerNumber", "in": "path", "required": true},
                    {"type": "integer", "name": "billIndex", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        }
    },
    "definitions": {
        "api.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "scraper_available": {"type": "boolean"}
            }
        },
        "api.InquiryRequest": {
            "type": "object",
            "properties": {
                "customer_number": {"type": "string", "example": "531012345678"}
            }
        },
        "api.InquiryResponse": {
            "type": "object",
            "properties": {
                "status": {"description": "\"SUCCESS\" or false"},
                "source": {"type": "string"},
                "message": {"type": "string"},
                "data": {"$ref": "#/definitions/api.BillData"},
                "errors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "api.BillData": {
            "type": "object",
            "properties": {
                "nomor_id_pelanggan": {"type": "string"},
                "nama_pelanggan": {"type": "string"},
                "tarif_daya": {"type": "string"},
                "stand_meter": {"type": "string"},
                "periode_tagihan": {"type": "string"},
                "jumlah_tagihan_excl_fee": {"type": "integer"},
                "biaya_admin": {"type": "integer"},
                "total_pembayaran_incl_fee": {"type": "integer"},
                "jumlah_bulan": {"type": "integer"},
                "rincian_tagihan": {"type": "array", "items": {"$ref": "#/definitions/api.DetailData"}}
            }
        },
        "api.DetailData": {
            "type": "object",
            "properties": {
                "periode": {"type": "string"},
                "jumlah": {"type": "integer"},
                "denda": {"type": "integer"}
            }
        },
        "api.ProviderDTO": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "name": {"type": "string"},
                "kind": {"type": "string"},
                "url": {"type": "string"},
                "timeout_secs": {"type": "number"},
                "up": {"type": "boolean"},
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "tagihanpln API",
	Description:      "PLN postpaid bill inquiry with provider fallback.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
