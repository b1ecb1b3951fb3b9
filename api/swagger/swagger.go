package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Arsip Desa API",
        "description": "Village document archive: archives, document types, institution profile, users and reports.",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Authentication",
            "description": "Login and password"
        },
        {
            "name": "Archives",
            "description": "Archived documents and their files"
        },
        {
            "name": "DocumentTypes",
            "description": "Document category registry"
        },
        {
            "name": "Settings",
            "description": "Institution profile"
        },
        {
            "name": "Users",
            "description": "Account management"
        },
        {
            "name": "Dashboard",
            "description": "Headline counts"
        },
        {
            "name": "Reports",
            "description": "Period recaps and exports"
        },
        {
            "name": "Access",
            "description": "Page access gate"
        }
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Authenticate user",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/LoginRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "401": {
                        "description": "Invalid credentials",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Current user",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Change password",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ChangePasswordRequest"
                        }
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Changed"
                    },
                    "403": {
                        "description": "Old password mismatch",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/archives": {
            "get": {
                "tags": [
                    "Archives"
                ],
                "summary": "List archives",
                "parameters": [
                    {
                        "name": "month",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Month 1-12 or all"
                    },
                    {
                        "name": "year",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Year or all"
                    },
                    {
                        "name": "typeId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Document type ID or all"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "Archives"
                ],
                "summary": "Create archive",
                "parameters": [
                    {
                        "name": "title",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": "Title"
                    },
                    {
                        "name": "documentTypeId",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": "Document type ID"
                    },
                    {
                        "name": "file",
                        "in": "formData",
                        "type": "file",
                        "required": false,
                        "description": "Document"
                    }
                ],
                "consumes": [
                    "multipart/form-data",
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "500": {
                        "description": "Storage failure",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/archives/{id}": {
            "get": {
                "tags": [
                    "Archives"
                ],
                "summary": "Get archive metadata",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Archive ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "put": {
                "tags": [
                    "Archives"
                ],
                "summary": "Update archive",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Archive ID"
                    },
                    {
                        "name": "title",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": "Title"
                    },
                    {
                        "name": "documentTypeId",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": "Document type ID"
                    },
                    {
                        "name": "file",
                        "in": "formData",
                        "type": "file",
                        "required": false,
                        "description": "Document"
                    }
                ],
                "consumes": [
                    "multipart/form-data",
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Archives"
                ],
                "summary": "Delete archive",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Archive ID"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/archives/{id}/download": {
            "get": {
                "tags": [
                    "Archives"
                ],
                "summary": "Stream the archive file inline",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Archive ID"
                    },
                    {
                        "name": "token",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Signed download token"
                    }
                ],
                "produces": [
                    "application/octet-stream"
                ],
                "responses": {
                    "200": {
                        "description": "File",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/archives/{id}/download-url": {
            "get": {
                "tags": [
                    "Archives"
                ],
                "summary": "Issue a signed download URL",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Archive ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/document-types": {
            "get": {
                "tags": [
                    "DocumentTypes"
                ],
                "summary": "List document types",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "DocumentTypes"
                ],
                "summary": "Create document type",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateDocumentTypeRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/document-types/{id}": {
            "get": {
                "tags": [
                    "DocumentTypes"
                ],
                "summary": "Get document type",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Document type ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "put": {
                "tags": [
                    "DocumentTypes"
                ],
                "summary": "Update document type",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Document type ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateDocumentTypeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "DocumentTypes"
                ],
                "summary": "Delete document type",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Document type ID"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/settings": {
            "get": {
                "tags": [
                    "Settings"
                ],
                "summary": "Get institution profile",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Settings"
                ],
                "summary": "Save institution profile",
                "parameters": [
                    {
                        "name": "name",
                        "in": "formData",
                        "type": "string",
                        "required": true,
                        "description": "Name"
                    },
                    {
                        "name": "address",
                        "in": "formData",
                        "type": "string",
                        "required": true,
                        "description": "Address"
                    },
                    {
                        "name": "phone",
                        "in": "formData",
                        "type": "string",
                        "required": true,
                        "description": "Phone"
                    },
                    {
                        "name": "email",
                        "in": "formData",
                        "type": "string",
                        "required": true,
                        "description": "Email"
                    },
                    {
                        "name": "description",
                        "in": "formData",
                        "type": "string",
                        "required": true,
                        "description": "Description"
                    },
                    {
                        "name": "dashboardTitle",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": "Dashboard title"
                    },
                    {
                        "name": "logo",
                        "in": "formData",
                        "type": "file",
                        "required": false,
                        "description": "Logo image"
                    },
                    {
                        "name": "documents",
                        "in": "formData",
                        "type": "file",
                        "required": false,
                        "description": "Supporting PDF"
                    },
                    {
                        "name": "existingDocuments",
                        "in": "formData",
                        "type": "string",
                        "required": false,
                        "description": "JSON array of retained document IDs"
                    }
                ],
                "consumes": [
                    "multipart/form-data"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/settings/logo": {
            "get": {
                "tags": [
                    "Settings"
                ],
                "summary": "Stream the institution logo",
                "responses": {
                    "200": {
                        "description": "Image",
                        "schema": {
                            "type": "file"
                        }
                    }
                }
            }
        },
        "/settings/documents/{docId}": {
            "get": {
                "tags": [
                    "Settings"
                ],
                "summary": "Stream a supporting document",
                "parameters": [
                    {
                        "name": "docId",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Document ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "PDF",
                        "schema": {
                            "type": "file"
                        }
                    }
                }
            }
        },
        "/users": {
            "get": {
                "tags": [
                    "Users"
                ],
                "summary": "List users",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "Users"
                ],
                "summary": "Create login account",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateUserRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "409": {
                        "description": "Email taken",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/users/{uid}": {
            "get": {
                "tags": [
                    "Users"
                ],
                "summary": "Get user",
                "parameters": [
                    {
                        "name": "uid",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Account UID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "Users"
                ],
                "summary": "Insert or update user",
                "parameters": [
                    {
                        "name": "uid",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Account UID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpsertUserRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Users"
                ],
                "summary": "Delete user",
                "parameters": [
                    {
                        "name": "uid",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Account UID"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/users/{uid}/role": {
            "put": {
                "tags": [
                    "Users"
                ],
                "summary": "Change user role",
                "parameters": [
                    {
                        "name": "uid",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Account UID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SetRoleRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/dashboard": {
            "get": {
                "tags": [
                    "Dashboard"
                ],
                "summary": "Dashboard totals",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/reports/archives": {
            "get": {
                "tags": [
                    "Reports"
                ],
                "summary": "Archive report for a period",
                "parameters": [
                    {
                        "name": "month",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Month 1-12 or all"
                    },
                    {
                        "name": "year",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Year or all"
                    },
                    {
                        "name": "typeId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Document type ID or all"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/reports/archives/export": {
            "get": {
                "tags": [
                    "Reports"
                ],
                "summary": "Download the archive report",
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "csv or pdf"
                    },
                    {
                        "name": "month",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Month 1-12 or all"
                    },
                    {
                        "name": "year",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Year or all"
                    },
                    {
                        "name": "typeId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Document type ID or all"
                    }
                ],
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "responses": {
                    "200": {
                        "description": "File",
                        "schema": {
                            "type": "file"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/reports/archives/chart": {
            "get": {
                "tags": [
                    "Reports"
                ],
                "summary": "Category chart",
                "parameters": [
                    {
                        "name": "month",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Month 1-12 or all"
                    },
                    {
                        "name": "year",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Year or all"
                    },
                    {
                        "name": "typeId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Document type ID or all"
                    }
                ],
                "produces": [
                    "text/html"
                ],
                "responses": {
                    "200": {
                        "description": "HTML page"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/access/pages": {
            "get": {
                "tags": [
                    "Access"
                ],
                "summary": "Pages the caller may open",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/access/check": {
            "get": {
                "tags": [
                    "Access"
                ],
                "summary": "Check access to a page",
                "parameters": [
                    {
                        "name": "page",
                        "in": "query",
                        "type": "string",
                        "required": true,
                        "description": "Page path"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        }
    },
    "definitions": {
        "Envelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "type": "string"
                },
                "code": {
                    "type": "string"
                },
                "redirect": {
                    "type": "string"
                },
                "meta": {
                    "type": "object"
                }
            }
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            }
        },
        "ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "oldPassword": {
                    "type": "string"
                },
                "newPassword": {
                    "type": "string"
                }
            }
        },
        "CreateDocumentTypeRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                }
            }
        },
        "UpdateDocumentTypeRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                }
            }
        },
        "CreateUserRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                },
                "role": {
                    "type": "string",
                    "enum": [
                        "administrator",
                        "pengelola_arsip",
                        "pengguna"
                    ]
                },
                "firstName": {
                    "type": "string"
                },
                "lastName": {
                    "type": "string"
                }
            }
        },
        "UpsertUserRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "role": {
                    "type": "string"
                },
                "firstName": {
                    "type": "string"
                },
                "lastName": {
                    "type": "string"
                }
            }
        },
        "SetRoleRequest": {
            "type": "object",
            "properties": {
                "role": {
                    "type": "string"
                }
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
