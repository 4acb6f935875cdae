package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Nido API",
        "description": "Daycare management backend: groups, students, attendance, gallery and notices",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and account registration"},
        {"name": "Users", "description": "Account approval and removal"},
        {"name": "Groups", "description": "Classroom groups and teacher assignments"},
        {"name": "Students", "description": "Student roster"},
        {"name": "Attendance", "description": "Daily attendance and history"},
        {"name": "Activities", "description": "Photo and video gallery"},
        {"name": "Schedules", "description": "Monthly schedule documents"},
        {"name": "Announcements", "description": "Single latest-wins notice"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/api/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a new account (pending approval)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Username taken"}
                }
            }
        },
        "/api/users/pending": {
            "get": {
                "tags": ["Users"],
                "summary": "List accounts awaiting approval",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/users/teachers": {
            "get": {
                "tags": ["Users"],
                "summary": "List approved teacher accounts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/users/approve/{id}": {
            "post": {
                "tags": ["Users"],
                "summary": "Approve a pending account",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/api/users/{id}": {
            "delete": {
                "tags": ["Users"],
                "summary": "Delete an account",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Admin account cannot be deleted"}
                }
            }
        },
        "/api/groups": {
            "get": {
                "tags": ["Groups"],
                "summary": "List groups",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Groups"],
                "summary": "Create group",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateGroupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/groups/{id}": {
            "delete": {
                "tags": ["Groups"],
                "summary": "Delete group (students are detached)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/groups/{id}/teachers": {
            "get": {
                "tags": ["Groups"],
                "summary": "List assigned teachers",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Groups"],
                "summary": "Assign a teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignTeacherRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/groups/{id}/teachers/{userId}": {
            "delete": {
                "tags": ["Groups"],
                "summary": "Unassign a teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "userId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "grupo_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Enrol a student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/students/{id}": {
            "delete": {
                "tags": ["Students"],
                "summary": "Remove a student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/attendance": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record attendance for a group (today, upsert)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordAttendanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/attendance/history": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List attendance history",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/attendance/history/export": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Export attendance history as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/api/activities": {
            "get": {
                "tags": ["Activities"],
                "summary": "List gallery activities",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Activities"],
                "summary": "Upload a photo or video",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "description", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/activities/{id}": {
            "delete": {
                "tags": ["Activities"],
                "summary": "Delete a gallery activity",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/schedules": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List schedule documents",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Schedules"],
                "summary": "Upload a schedule document",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "title", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/schedules/{id}": {
            "delete": {
                "tags": ["Schedules"],
                "summary": "Delete a schedule document",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/announcement": {
            "get": {
                "tags": ["Announcements"],
                "summary": "Get the current announcement",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Announcements"],
                "summary": "Publish an announcement (replaces the previous one)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PublishAnnouncementRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Announcements"],
                "summary": "Clear the announcement slot",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["username", "password"]
        },
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["username", "password"]
        },
        "CreateGroupRequest": {
            "type": "object",
            "properties": {
                "nombre": {"type": "string"},
                "horario": {"type": "string"},
                "profesor": {"type": "string"}
            },
            "required": ["nombre"]
        },
        "AssignTeacherRequest": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"}
            },
            "required": ["userId"]
        },
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "nombre_completo": {"type": "string"},
                "edad": {"type": "integer"},
                "grupo_id": {"type": "string"},
                "foto_perfil": {"type": "string"}
            },
            "required": ["nombre_completo"]
        },
        "RecordAttendanceRequest": {
            "type": "object",
            "properties": {
                "groupId": {"type": "string"},
                "records": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/AttendanceRecordInput"}
                }
            },
            "required": ["groupId", "records"]
        },
        "AttendanceRecordInput": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "status": {"type": "string", "enum": ["present", "absent"]}
            },
            "required": ["studentId", "status"]
        },
        "PublishAnnouncementRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "message": {"type": "string"}
            },
            "required": ["title", "message"]
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
