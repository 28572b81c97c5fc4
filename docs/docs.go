package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "Daybook API Documentation",
        "title": "Daybook API",
        "version": "1.0"
    },
    "host": "localhost:8080",
    "basePath": "/api/v1",
    "schemes": ["http"],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check",
                "description": "Check if server is running",
                "responses": {
                    "200": {
                        "description": "Server is healthy"
                    }
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Owner Login",
                "description": "Login with the owner password",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "credentials",
                        "description": "Login credentials",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "password": {
                                    "type": "string",
                                    "example": "correct horse battery staple"
                                }
                            }
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Login successful, returns a JWT"
                    },
                    "401": {
                        "description": "Invalid credentials"
                    }
                }
            }
        },
        "/days": {
            "get": {
                "tags": ["Days"],
                "summary": "List Days",
                "description": "List day logs between two dates, inclusive",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {
                        "in": "query",
                        "name": "from",
                        "type": "string",
                        "description": "Range start (YYYY-MM-DD)",
                        "required": true
                    },
                    {
                        "in": "query",
                        "name": "to",
                        "type": "string",
                        "description": "Range end (YYYY-MM-DD)",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Day logs in range"
                    },
                    "400": {
                        "description": "Invalid date range"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/days/{date}": {
            "get": {
                "tags": ["Days"],
                "summary": "Get Day",
                "description": "Get the log for one date with its tasks, creating it on first access",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {
                        "in": "path",
                        "name": "date",
                        "type": "string",
                        "description": "Calendar date (YYYY-MM-DD)",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Day log with tasks"
                    },
                    "400": {
                        "description": "Invalid date"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/days/{date}/notes": {
            "put": {
                "tags": ["Days"],
                "summary": "Update Day Notes",
                "description": "Replace the free-text notes of a day",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {
                        "in": "path",
                        "name": "date",
                        "type": "string",
                        "description": "Calendar date (YYYY-MM-DD)",
                        "required": true
                    },
                    {
                        "in": "body",
                        "name": "notes",
                        "description": "New notes, null to clear",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "notes": {
                                    "type": "string",
                                    "example": "Slow day, mostly errands."
                                }
                            }
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Updated day log"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/tasks": {
            "post": {
                "tags": ["Tasks"],
                "summary": "Create Task",
                "description": "Create a task on a calendar day. Recurring templates trigger instance generation immediately.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {
                        "in": "body",
                        "name": "task",
                        "description": "Task data",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "date": {
                                    "type": "string",
                                    "example": "2024-03-15"
                                },
                                "name": {
                                    "type": "string",
                                    "example": "Water the plants"
                                },
                                "notes": {
                                    "type": "string"
                                },
                                "tags": {
                                    "type": "array",
                                    "items": {"type": "string"}
                                },
                                "reminder_at": {
                                    "type": "string",
                                    "format": "date-time"
                                },
                                "is_recurring": {
                                    "type": "boolean"
                                },
                                "recurrence_rule": {
                                    "type": "string",
                                    "example": "{\"frequency\":\"weekly\",\"interval\":1,\"days_of_week\":[2,4]}"
                                },
                                "recurrence_end_date": {
                                    "type": "string",
                                    "format": "date-time"
                                },
                                "is_anchor": {
                                    "type": "boolean"
                                }
                            }
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Task created"
                    },
                    "400": {
                        "description": "Validation failed"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/tasks/{id}": {
            "get": {
                "tags": ["Tasks"],
                "summary": "Get Task",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "description": "Task ID",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Task"
                    },
                    "404": {
                        "description": "Task not found"
                    }
                }
            },
            "put": {
                "tags": ["Tasks"],
                "summary": "Update Task",
                "description": "Partial edit. Clearing is_recurring drops the rule; editing a template's rule only affects future generation.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "description": "Task ID",
                        "required": true
                    },
                    {
                        "in": "body",
                        "name": "task",
                        "description": "Fields to change",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Updated task"
                    },
                    "400": {
                        "description": "Validation failed"
                    },
                    "404": {
                        "description": "Task not found"
                    }
                }
            },
            "delete": {
                "tags": ["Tasks"],
                "summary": "Delete Task",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "description": "Task ID",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Task deleted"
                    },
                    "404": {
                        "description": "Task not found"
                    }
                }
            }
        },
        "/tasks/{id}/status": {
            "put": {
                "tags": ["Tasks"],
                "summary": "Update Task Status",
                "description": "Set the status to normal, in_progress, complete or not_completed",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "description": "Task ID",
                        "required": true
                    },
                    {
                        "in": "body",
                        "name": "status",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "status": {
                                    "type": "string",
                                    "example": "complete"
                                }
                            }
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Updated task"
                    },
                    "400": {
                        "description": "Invalid status"
                    },
                    "404": {
                        "description": "Task not found"
                    }
                }
            }
        },
        "/maintenance/generate": {
            "post": {
                "tags": ["Maintenance"],
                "summary": "Run Recurrence Generator",
                "description": "Materialize missing instances of all recurring templates over the horizon",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {
                        "description": "Run summary"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/maintenance/rollover": {
            "post": {
                "tags": ["Maintenance"],
                "summary": "Run Anchor Rollover",
                "description": "Carry yesterday's incomplete anchor tasks into today",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {
                        "description": "Run summary"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type 'Bearer' followed by a space and JWT token"
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "Daybook API",
	Description:      "Daybook API Documentation",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
