package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "IEP Planner API",
        "description": "Personalized 7-day learning plans for neurodiverse students",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {
            "name": "Plans",
            "description": "Plan generation, adaptation and export"
        },
        {
            "name": "Profiles",
            "description": "Student profiles and their sections"
        },
        {
            "name": "Resources",
            "description": "Teaching resources and strategies"
        },
        {
            "name": "Consultations",
            "description": "Expert consultation requests"
        },
        {
            "name": "Sharing",
            "description": "Read-only plan links"
        },
        {
            "name": "Operations",
            "description": "Health and readiness"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "Operations"
                ],
                "summary": "Liveness and configuration flags",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/plan/generate": {
            "post": {
                "tags": [
                    "Plans"
                ],
                "summary": "Generate a 7-day learning plan",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/StudentProfile"
                        }
                    }
                ]
            }
        },
        "/plan/adapt/{studentId}": {
            "post": {
                "tags": [
                    "Plans"
                ],
                "summary": "Adapt a plan from recorded progress",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Unknown student",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "studentId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Student ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/ProgressData"
                        }
                    }
                ]
            }
        },
        "/resources/{studentId}": {
            "get": {
                "tags": [
                    "Resources"
                ],
                "summary": "Search teaching resources",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Missing needs",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "studentId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Student ID"
                    },
                    {
                        "name": "needs",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/strategies/{challenge}": {
            "get": {
                "tags": [
                    "Resources"
                ],
                "summary": "Search teaching strategies",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "challenge",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Challenge to search for"
                    }
                ]
            }
        },
        "/profile": {
            "get": {
                "tags": [
                    "Profiles"
                ],
                "summary": "List student profiles",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "search",
                        "in": "query",
                        "type": "string"
                    }
                ]
            },
            "post": {
                "tags": [
                    "Profiles"
                ],
                "summary": "Create a student profile",
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/StudentProfile"
                        }
                    }
                ]
            }
        },
        "/profile/{id}": {
            "get": {
                "tags": [
                    "Profiles"
                ],
                "summary": "Get a student profile",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Unknown student",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Student ID"
                    }
                ]
            },
            "put": {
                "tags": [
                    "Profiles"
                ],
                "summary": "Create or replace a student profile",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Student ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/StudentProfile"
                        }
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Profiles"
                ],
                "summary": "Delete a student profile",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Student ID"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    }
                }
            }
        },
        "/profile/{id}/progress": {
            "put": {
                "tags": [
                    "Profiles"
                ],
                "summary": "Replace progress tracking data",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Student ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ProgressData"
                        }
                    }
                ]
            }
        },
        "/profile/{id}/calendar": {
            "put": {
                "tags": [
                    "Profiles"
                ],
                "summary": "Replace calendar data",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Student ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/profile/{id}/resources": {
            "put": {
                "tags": [
                    "Profiles"
                ],
                "summary": "Replace the saved resource library",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Student ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/profile/{id}/learning-style": {
            "put": {
                "tags": [
                    "Profiles"
                ],
                "summary": "Replace learning style assessment results",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Student ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/profile/{id}/cultural": {
            "put": {
                "tags": [
                    "Profiles"
                ],
                "summary": "Replace cultural context",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Student ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/profile/{id}/plan": {
            "get": {
                "tags": [
                    "Plans"
                ],
                "summary": "Get the latest plan of a student",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No plan",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Student ID"
                    }
                ]
            }
        },
        "/profile/{id}/plan/export": {
            "get": {
                "tags": [
                    "Plans"
                ],
                "summary": "Export the latest plan",
                "produces": [
                    "application/pdf",
                    "text/csv"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Student ID"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "pdf",
                            "csv"
                        ]
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "404": {
                        "description": "No plan",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/profile/{id}/consultations": {
            "get": {
                "tags": [
                    "Consultations"
                ],
                "summary": "List consultations",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Student ID"
                    }
                ]
            },
            "post": {
                "tags": [
                    "Consultations"
                ],
                "summary": "Request a consultation",
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Student ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ConsultationRequest"
                        }
                    }
                ]
            }
        },
        "/profile/{id}/consultations/{consultationId}": {
            "put": {
                "tags": [
                    "Consultations"
                ],
                "summary": "Update a consultation",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Unknown consultation",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Student ID"
                    },
                    {
                        "name": "consultationId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Consultation ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/profile/{id}/share": {
            "post": {
                "tags": [
                    "Sharing"
                ],
                "summary": "Create a read-only link to the latest plan",
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No plan",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Student ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/ShareRequest"
                        }
                    }
                ]
            }
        },
        "/shared/plan": {
            "get": {
                "tags": [
                    "Sharing"
                ],
                "summary": "Read a shared plan",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Invalid or expired link",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Passcode required",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "Authorization",
                        "in": "header",
                        "type": "string",
                        "description": "Bearer share token"
                    },
                    {
                        "name": "token",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "X-Share-Passcode",
                        "in": "header",
                        "type": "string"
                    }
                ]
            }
        }
    },
    "definitions": {
        "StudentProfile": {
            "type": "object",
            "required": [
                "name",
                "age"
            ],
            "properties": {
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "grade": {
                    "type": "string"
                },
                "diagnosis": {
                    "type": "string"
                },
                "diagnosisOther": {
                    "type": "string"
                },
                "strengths": {
                    "type": "string"
                },
                "struggles": {
                    "type": "string"
                },
                "learningStyle": {
                    "type": "string"
                },
                "attentionSpan": {
                    "type": "string"
                },
                "triggers": {
                    "type": "string"
                },
                "interests": {
                    "type": "string"
                },
                "currentAccommodations": {
                    "type": "string"
                },
                "age": {
                    "type": "integer"
                }
            }
        },
        "ProgressData": {
            "type": "object",
            "properties": {
                "weeklyProgress": {
                    "type": "object"
                },
                "whatWorked": {
                    "type": "string"
                },
                "challenges": {
                    "type": "string"
                },
                "nextSteps": {
                    "type": "string"
                },
                "overallRating": {
                    "type": "integer",
                    "minimum": 0,
                    "maximum": 5
                }
            }
        },
        "ConsultationRequest": {
            "type": "object",
            "required": [
                "type"
            ],
            "properties": {
                "type": {
                    "type": "string",
                    "enum": [
                        "plan-review",
                        "specific-question",
                        "strategy-development",
                        "progress-review"
                    ]
                },
                "urgency": {
                    "type": "string",
                    "enum": [
                        "normal",
                        "urgent",
                        "immediate"
                    ]
                },
                "specificQuestions": {
                    "type": "string"
                },
                "expertId": {
                    "type": "string"
                },
                "expertName": {
                    "type": "string"
                }
            }
        },
        "ShareRequest": {
            "type": "object",
            "properties": {
                "passcode": {
                    "type": "string"
                },
                "ttlHours": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                },
                "detail": {
                    "type": "string"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
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
