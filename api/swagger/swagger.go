package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academy Desk API",
        "description": "Admissions, verification and fee reconciliation for the academy front desk",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Staff login and token rotation"},
        {"name": "Admissions", "description": "Direct admissions and fee collection"},
        {"name": "Verification", "description": "Public registrations awaiting approval"},
        {"name": "Config", "description": "Per-session admission prices"},
        {"name": "Drafts", "description": "Server-side admission drafts"},
        {"name": "Reports", "description": "Asynchronous dues exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "Token pair"}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate the refresh token",
                "responses": {"200": {"description": "Token pair"}}
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke the refresh token",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Logged out"}}
            }
        },
        "/config/session-price/{sessionId}": {
            "get": {
                "tags": ["Config"],
                "summary": "Resolve the admission price for a session",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "sessionId", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Price lookup", "schema": {"$ref": "#/definitions/PriceLookup"}}}
            },
            "put": {
                "tags": ["Config"],
                "summary": "Set the admission price for a session",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "sessionId", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Stored price"}, "403": {"description": "Owner only"}}
            },
            "delete": {
                "tags": ["Config"],
                "summary": "Remove the admission price for a session",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "sessionId", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Removed"}}
            }
        },
        "/config/session-prices": {
            "get": {
                "tags": ["Config"],
                "summary": "List configured session prices",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Prices"}}
            }
        },
        "/students": {
            "get": {
                "tags": ["Admissions"],
                "summary": "List students",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "classId", "type": "string"},
                    {"in": "query", "name": "sessionId", "type": "string"},
                    {"in": "query", "name": "feeStatus", "type": "string", "enum": ["paid", "partial", "inactive"]},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "limit", "type": "integer"}
                ],
                "responses": {"200": {"description": "Students with pagination"}}
            },
            "post": {
                "tags": ["Admissions"],
                "summary": "Admit a student",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/AdmissionRequest"}}],
                "responses": {"201": {"description": "Admitted"}, "400": {"description": "Validation error with meta.field"}, "409": {"description": "Pending registration already resolved"}}
            }
        },
        "/students/{id}/payments": {
            "get": {
                "tags": ["Admissions"],
                "summary": "List payments for a student",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Payments"}}
            },
            "post": {
                "tags": ["Admissions"],
                "summary": "Collect an outstanding balance",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"201": {"description": "Payment recorded"}, "400": {"description": "Amount exceeds balance"}}
            }
        },
        "/public/register": {
            "post": {
                "tags": ["Verification"],
                "summary": "Submit a public registration",
                "responses": {"201": {"description": "Pending registration"}, "403": {"description": "Registration closed"}}
            }
        },
        "/public/pending": {
            "get": {
                "tags": ["Verification"],
                "summary": "List pending registrations",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Pending registrations"}}
            }
        },
        "/public/approve/{id}": {
            "post": {
                "tags": ["Verification"],
                "summary": "Approve a pending registration",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/ApproveRequest"}}
                ],
                "responses": {"200": {"description": "Student and login credentials"}, "404": {"description": "Already handled"}}
            }
        },
        "/public/reject/{id}": {
            "delete": {
                "tags": ["Verification"],
                "summary": "Reject a pending registration",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Rejected"}}
            }
        },
        "/drafts/admission": {
            "get": {
                "tags": ["Drafts"],
                "summary": "Load the caller's admission draft",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Draft"}}
            },
            "put": {
                "tags": ["Drafts"],
                "summary": "Save the caller's admission draft",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Saved"}}
            },
            "delete": {
                "tags": ["Drafts"],
                "summary": "Clear the caller's admission draft",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Cleared"}}
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List desk accounts",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "role", "type": "string"},
                    {"in": "query", "name": "active", "type": "boolean"},
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "pageSize", "type": "integer"}
                ],
                "responses": {"200": {"description": "Accounts"}, "403": {"description": "Owner only"}}
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create a desk account",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Username taken"}}
            }
        },
        "/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get a desk account",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Account"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Users"],
                "summary": "Update a desk account",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Updated"}}
            },
            "delete": {
                "tags": ["Users"],
                "summary": "Deactivate a desk account",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deactivated"}}
            }
        },
        "/reports/dues": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a dues export",
                "security": [{"BearerAuth": []}],
                "responses": {"202": {"description": "Job queued"}}
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export job status",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Job status with download URL"}}
            }
        },
        "/reports/download/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished export",
                "parameters": [{"in": "path", "name": "token", "required": true, "type": "string"}],
                "responses": {"200": {"description": "File"}, "410": {"description": "Link expired"}}
            }
        }
    },
    "definitions": {
        "CreateUserRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "fullName": {"type": "string"},
                "role": {"type": "string", "enum": ["OWNER", "ADMIN", "STAFF"]},
                "password": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "PriceLookup": {
            "type": "object",
            "properties": {
                "found": {"type": "boolean"},
                "price": {"type": "number"}
            }
        },
        "AdmissionRequest": {
            "type": "object",
            "properties": {
                "studentName": {"type": "string"},
                "fatherName": {"type": "string"},
                "classId": {"type": "string"},
                "sessionId": {"type": "string"},
                "group": {"type": "string"},
                "subjects": {"type": "array", "items": {"type": "object"}},
                "parentPhone": {"type": "string"},
                "totalFee": {"type": "number"},
                "paidAmount": {"type": "number"},
                "discountAmount": {"type": "number"},
                "sessionRate": {"type": "number"},
                "isCustomFeeMode": {"type": "boolean"},
                "pendingRegistrationId": {"type": "string"}
            }
        },
        "ApproveRequest": {
            "type": "object",
            "properties": {
                "classId": {"type": "string"},
                "collectFee": {"type": "boolean"},
                "paidAmount": {"type": "number"},
                "customFee": {"type": "boolean"},
                "customTotal": {"type": "number"}
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
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
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
