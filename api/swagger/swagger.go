package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Department Timetable API",
        "description": "Timetable auto-generation and conflict resolution for department classes",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetables", "description": "Class timetables, generation and exports"},
        {"name": "Timetable Edits", "description": "Single block moves, removals and pool templates"},
        {"name": "Teachers", "description": "Cross-timetable teacher schedules"},
        {"name": "Observability", "description": "Health and metrics"}
    ],
    "paths": {
        "/timetables": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List timetables",
                "parameters": [
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "collegeYear", "in": "query", "type": "integer"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "division", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Timetables"],
                "summary": "Create a class timetable and auto-generate its entries",
                "description": "Partial placements succeed; meta.warnings lists what could not be placed.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTimetableRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Teacher conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/import": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Store a timetable with explicit entries",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveTimetableRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Teacher conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/lookup": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Find the timetable of a class",
                "parameters": [
                    {"name": "department", "in": "query", "type": "string", "required": true},
                    {"name": "collegeYear", "in": "query", "type": "integer", "required": true},
                    {"name": "semester", "in": "query", "type": "integer", "required": true},
                    {"name": "division", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Get timetable",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Timetables"],
                "summary": "Replace a timetable",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Teacher conflict or concurrent modification", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Timetables"],
                "summary": "Delete timetable",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/timetables/{id}/grid": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Render a timetable as a day x slot grid",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/export": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Download a timetable grid",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        },
        "/timetables/{id}/regenerate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Re-pack constraint and pool entries around fixed entries",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/RegenerateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/entries/{blockId}": {
            "patch": {
                "tags": ["Timetable Edits"],
                "summary": "Move a placed block",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "blockId", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PlacementRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Placement rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Timetable Edits"],
                "summary": "Move a placed block to the removed pool",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "blockId", "in": "path", "type": "string", "required": true},
                    {"name": "version", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/deleted/{blockId}/restore": {
            "post": {
                "tags": ["Timetable Edits"],
                "summary": "Restore a removed block",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "blockId", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PlacementRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Placement rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/deleted/{blockId}": {
            "delete": {
                "tags": ["Timetable Edits"],
                "summary": "Permanently drop a removed block",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "blockId", "in": "path", "type": "string", "required": true},
                    {"name": "version", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/templates": {
            "post": {
                "tags": ["Timetable Edits"],
                "summary": "Add an ad-hoc template to the pool",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TemplateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/templates/{blockId}": {
            "delete": {
                "tags": ["Timetable Edits"],
                "summary": "Remove a pool template",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "blockId", "in": "path", "type": "string", "required": true},
                    {"name": "version", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/templates/{blockId}/place": {
            "post": {
                "tags": ["Timetable Edits"],
                "summary": "Place one instance of a pool template",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "blockId", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PlacementRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Placement rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/schedule": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Personal schedule of one teacher across all timetables",
                "produces": ["application/json", "text/csv", "application/pdf"],
                "parameters": [
                    {"name": "teacherName", "in": "query", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["json", "csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Requirement": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "subjectName": {"type": "string"},
                "teacherName": {"type": "string"},
                "type": {"type": "string", "enum": ["SUBJECT", "LAB"]},
                "frequencyPerWeek": {"type": "integer"},
                "color": {"type": "string"}
            },
            "required": ["subjectName", "teacherName", "type", "frequencyPerWeek"]
        },
        "Entry": {
            "type": "object",
            "properties": {
                "blockId": {"type": "string"},
                "subjectName": {"type": "string"},
                "teacherName": {"type": "string"},
                "type": {"type": "string", "enum": ["SUBJECT", "LAB"]},
                "duration": {"type": "integer"},
                "color": {"type": "string"},
                "day": {"type": "string", "enum": ["Monday", "Tuesday", "Wednesday", "Thursday", "Friday"]},
                "slotIndex": {"type": "integer"}
            },
            "required": ["subjectName", "teacherName", "type"]
        },
        "TemplateRequest": {
            "type": "object",
            "properties": {
                "subjectName": {"type": "string"},
                "teacherName": {"type": "string"},
                "type": {"type": "string", "enum": ["SUBJECT", "LAB"]},
                "frequencyPerWeek": {"type": "integer"},
                "duration": {"type": "integer"},
                "color": {"type": "string"},
                "version": {"type": "integer"}
            },
            "required": ["subjectName", "teacherName", "type", "frequencyPerWeek"]
        },
        "CreateTimetableRequest": {
            "type": "object",
            "properties": {
                "department": {"type": "string"},
                "collegeYear": {"type": "integer"},
                "semester": {"type": "integer"},
                "division": {"type": "string"},
                "lunchSlotIndex": {"type": "integer"},
                "constraints": {"type": "array", "items": {"$ref": "#/definitions/Requirement"}},
                "seed": {"type": "integer"},
                "attempts": {"type": "integer"},
                "createdBy": {"type": "string"},
                "createdByName": {"type": "string"}
            },
            "required": ["department", "collegeYear", "semester", "division", "constraints"]
        },
        "SaveTimetableRequest": {
            "type": "object",
            "properties": {
                "department": {"type": "string"},
                "collegeYear": {"type": "integer"},
                "semester": {"type": "integer"},
                "division": {"type": "string"},
                "lunchSlotIndex": {"type": "integer"},
                "constraints": {"type": "array", "items": {"$ref": "#/definitions/Requirement"}},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/Entry"}},
                "deletedEntries": {"type": "array", "items": {"$ref": "#/definitions/Entry"}},
                "addedEntries": {"type": "array", "items": {"$ref": "#/definitions/TemplateRequest"}},
                "version": {"type": "integer"}
            },
            "required": ["department", "collegeYear", "semester", "division"]
        },
        "PlacementRequest": {
            "type": "object",
            "properties": {
                "day": {"type": "string", "enum": ["Monday", "Tuesday", "Wednesday", "Thursday", "Friday"]},
                "slotIndex": {"type": "integer"},
                "version": {"type": "integer"}
            },
            "required": ["day", "slotIndex"]
        },
        "RegenerateRequest": {
            "type": "object",
            "properties": {
                "seed": {"type": "integer"},
                "attempts": {"type": "integer"},
                "version": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalCount": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
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
