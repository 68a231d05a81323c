// Package docs registers the OpenAPI description served at /swagger.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/api/v1/control/events": {
            "post": {
                "description": "First source to press owns the command until it releases or cancels. Events that cause no transition return changed=false.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["control"],
                "summary": "Submit input event",
                "parameters": [{"description": "Input event", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.InputEventRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/rover_control.EventResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/control/keys": {
            "post": {
                "description": "WASD and arrow keys map to forward/left/backward/right on the keyboard source.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["control"],
                "summary": "Submit key event",
                "parameters": [{"description": "Key event", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.keyRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/rover_control.EventResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/control/state": {
            "get": {
                "produces": ["application/json"],
                "tags": ["control"],
                "summary": "Get command state",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/rover_control.StateResponse"}}}
            }
        },
        "/api/v1/telemetry": {
            "get": {
                "produces": ["application/json"],
                "tags": ["telemetry"],
                "summary": "Get telemetry snapshot",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/rover_control.TelemetryResponse"}}}
            }
        },
        "/api/v1/logs": {
            "get": {
                "description": "Entries in append order. Pass the previous response's last_seq as 'after' to fetch only newer entries. log_count stops growing once the retention cap is reached, so track last_seq to detect new entries.",
                "produces": ["application/json"],
                "tags": ["telemetry"],
                "summary": "List diagnostics log",
                "parameters": [
                    {"type": "integer", "example": 14, "description": "Return entries with seq greater than this", "name": "after", "in": "query"},
                    {"type": "integer", "example": 50, "description": "Return only the newest N entries (max 1000)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/rover_control.LogsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/analyze": {
            "post": {
                "description": "Classifies the uploaded image. Falls back to a default diagnosis when the model is unavailable.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Analyze crop image",
                "parameters": [{"type": "file", "description": "Crop photo", "name": "image", "in": "formData", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AnalysisResult"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/actions/{name}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["actions"],
                "summary": "Perform auxiliary action",
                "parameters": [{"enum": ["deploy_sensor", "arm_extend", "arm_retract", "capture_photo", "camera_on", "camera_off"], "type": "string", "description": "Action", "name": "name", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ActionResult"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "handlers.InputEventRequest": {
            "type": "object",
            "properties": {
                "source": {"description": "Input modality. Allowed: keyboard, pointer, touch", "type": "string", "example": "pointer"},
                "kind": {"description": "press | release | cancel, or a DOM event name", "type": "string", "example": "mousedown"},
                "direction": {"description": "forward | backward | left | right (required for press)", "type": "string", "example": "left"}
            }
        },
        "handlers.keyRequest": {
            "type": "object",
            "required": ["key"],
            "properties": {
                "key": {"type": "string", "example": "ArrowUp"},
                "pressed": {"type": "boolean"}
            }
        },
        "rover_control.StateResponse": {
            "type": "object",
            "properties": {
                "active_direction": {"type": "string", "enum": ["none", "forward", "backward", "left", "right"]},
                "owning_source": {"type": "string", "enum": ["keyboard", "pointer", "touch"]},
                "status": {"type": "string", "example": "Moving Forward"},
                "action_status": {"type": "string", "example": "Capturing Photo..."},
                "camera_on": {"type": "boolean"}
            }
        },
        "rover_control.EventResponse": {
            "type": "object",
            "properties": {
                "changed": {"type": "boolean"},
                "state": {"$ref": "#/definitions/rover_control.StateResponse"}
            }
        },
        "rover_control.TelemetryResponse": {
            "type": "object",
            "properties": {
                "temperature_c": {"type": "number"},
                "latency_ms": {"type": "integer"},
                "battery_pct": {"type": "integer"},
                "estimated_hours": {"type": "number"},
                "updated_at": {"type": "string"},
                "log_count": {"type": "integer"},
                "log_last_seq": {"type": "integer"}
            }
        },
        "rover_control.LogsResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "last_seq": {"type": "integer"},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/models.LogEntry"}}
            }
        },
        "models.LogEntry": {
            "type": "object",
            "properties": {
                "seq": {"type": "integer"},
                "timestamp": {"type": "string", "example": "10:00:03"},
                "time": {"type": "string"},
                "level": {"type": "string", "enum": ["OK", "INFO", "WARN", "ERROR"]},
                "message": {"type": "string"}
            }
        },
        "models.AnalysisResult": {
            "type": "object",
            "properties": {
                "disease": {"type": "string", "example": "Early Blight"},
                "confidence": {"type": "string", "example": "94%"}
            }
        },
        "models.ActionResult": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "message": {"type": "string"},
                "camera_on": {"type": "boolean"},
                "status": {"type": "string", "example": "Capturing Photo..."}
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
	Title:            "Rover Control API",
	Description:      "Operator input reconciliation and simulated telemetry for a field rover.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
