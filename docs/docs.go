// Package docs holds the OpenAPI document served under /swagger.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
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
                "operationId": "healthSystem",
                "summary": "Check the service and its dependencies",
                "tags": [
                    "system"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.HealthResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/handler.HealthResponse"
                        }
                    }
                }
            }
        },
        "/inbound-events": {
            "get": {
                "operationId": "listInboundEvents",
                "tags": [
                    "inbound-events"
                ],
                "parameters": [
                    {
                        "description": "Event state",
                        "name": "state",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "Source name",
                        "name": "source",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    }
                ],
                "responses": {}
            }
        },
        "/inbound-events/{id}": {
            "get": {
                "operationId": "getInboundEvent",
                "tags": [
                    "inbound-events"
                ],
                "responses": {}
            }
        },
        "/inbound-events/{id}/reprocess": {
            "post": {
                "operationId": "reprocessInboundEvent",
                "summary": "Run a NEEDS_REVIEW or FAILED event through the pipeline again",
                "tags": [
                    "inbound-events"
                ],
                "parameters": [
                    {
                        "description": "Event ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "format": "uuid"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-intake_WebhookResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/invoices/{id}": {
            "get": {
                "operationId": "getInvoice",
                "tags": [
                    "invoices"
                ],
                "responses": {}
            }
        },
        "/invoices/{id}/pay": {
            "post": {
                "operationId": "payInvoice",
                "summary": "Record payment of an invoice",
                "tags": [
                    "invoices"
                ],
                "parameters": [
                    {
                        "description": "Invoice ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "format": "uuid"
                    },
                    {
                        "description": "Payment time, now when omitted",
                        "name": "request",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/billing.MarkPaidRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-billing_InvoiceResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/jobs": {
            "post": {
                "operationId": "createJob",
                "summary": "Create and price a job",
                "tags": [
                    "jobs"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Job",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/pricing.CreateJobRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-pricing_JobResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            },
            "get": {
                "operationId": "listJobs",
                "tags": [
                    "jobs"
                ],
                "parameters": [
                    {
                        "description": "NOT_REQUIRED, PENDING or APPROVED",
                        "name": "approval",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "Customer ID",
                        "name": "customer_id",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "Allocation mode",
                        "name": "allocation_mode",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "Page number",
                        "name": "page",
                        "in": "query",
                        "required": false,
                        "type": "integer",
                        "default": 1
                    },
                    {
                        "description": "Items per page",
                        "name": "page_size",
                        "in": "query",
                        "required": false,
                        "type": "integer",
                        "default": 20
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-array_pricing_JobResponse"
                        }
                    }
                }
            }
        },
        "/jobs/{id}": {
            "get": {
                "operationId": "getJob",
                "tags": [
                    "jobs"
                ],
                "parameters": [
                    {
                        "description": "Job ID or job number",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-pricing_JobResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/jobs/{id}/approve": {
            "post": {
                "operationId": "approveJob",
                "summary": "Approve an undercharged job",
                "description": "approved_by defaults to the X-Actor header",
                "tags": [
                    "jobs"
                ],
                "parameters": [
                    {
                        "description": "Job ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "format": "uuid"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-pricing_JobResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/jobs/{id}/cascade": {
            "post": {
                "operationId": "cascadeJob",
                "summary": "Issue the job's purchase order chain",
                "description": "Idempotent. Answers 201 when at least one leg was created.",
                "tags": [
                    "jobs"
                ],
                "parameters": [
                    {
                        "description": "Job ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "format": "uuid"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-trade_CascadeResult"
                        }
                    },
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-trade_CascadeResult"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/jobs/{id}/invoices/customer": {
            "post": {
                "operationId": "generateCustomerInvoice",
                "summary": "Issue the customer invoice of a job",
                "description": "Idempotent. Answers 201 for a new invoice and 200 when one existed.",
                "tags": [
                    "invoices"
                ],
                "parameters": [
                    {
                        "description": "Job ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "format": "uuid"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-billing_GenerateResult"
                        }
                    },
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-billing_GenerateResult"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/jobs/{id}/purchase-orders": {
            "get": {
                "operationId": "listJobPurchaseOrders",
                "tags": [
                    "jobs"
                ],
                "parameters": [
                    {
                        "description": "Job ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "format": "uuid"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-array_trade_PurchaseOrderResponse"
                        }
                    }
                }
            }
        },
        "/jobs/{id}/reprice": {
            "post": {
                "operationId": "repriceJob",
                "tags": [
                    "jobs"
                ],
                "parameters": [
                    {
                        "description": "Job ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "format": "uuid"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-pricing_JobResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/pricing/quote": {
            "post": {
                "operationId": "quotePricing",
                "summary": "Price a job without storing it",
                "tags": [
                    "pricing"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Size, quantity and mode",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/pricing.QuoteRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-pricing_AllocationResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/purchase-orders/{id}": {
            "get": {
                "operationId": "getPurchaseOrder",
                "summary": "Get a purchase order",
                "tags": [
                    "purchase-orders"
                ],
                "parameters": [
                    {
                        "description": "Purchase order ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "format": "uuid"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-trade_PurchaseOrderResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/purchase-orders/{id}/acknowledge": {
            "post": {
                "operationId": "acknowledgePurchaseOrder",
                "tags": [
                    "purchase-orders"
                ],
                "responses": {}
            }
        },
        "/purchase-orders/{id}/cancel": {
            "post": {
                "operationId": "cancelPurchaseOrder",
                "tags": [
                    "purchase-orders"
                ],
                "responses": {}
            }
        },
        "/purchase-orders/{id}/invoices/settlement": {
            "post": {
                "operationId": "generateSettlementInvoice",
                "summary": "Issue the settlement invoice of a purchase order",
                "tags": [
                    "invoices"
                ],
                "parameters": [
                    {
                        "description": "Purchase order ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "format": "uuid"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-billing_GenerateResult"
                        }
                    },
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-billing_GenerateResult"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/reconciliation/audit": {
            "get": {
                "operationId": "auditReconciliation",
                "summary": "Compare purchase orders with their settlement invoices",
                "description": "Read only. format=csv|xlsx|table downloads the report as a file.",
                "tags": [
                    "reconciliation"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "json (default), csv, xlsx or table",
                        "name": "format",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "Job IDs",
                        "name": "job_id",
                        "in": "query",
                        "required": false,
                        "type": "array",
                        "items": {
                            "type": "string"
                        },
                        "collectionFormat": "multi"
                    },
                    {
                        "description": "Job numbers",
                        "name": "job_no",
                        "in": "query",
                        "required": false,
                        "type": "array",
                        "items": {
                            "type": "string"
                        },
                        "collectionFormat": "multi"
                    },
                    {
                        "description": "Purchase orders created at or after (RFC3339 or YYYY-MM-DD)",
                        "name": "from",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "Purchase orders created before (RFC3339 or YYYY-MM-DD)",
                        "name": "before",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-reconciliation_AuditReportResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            },
            "post": {
                "operationId": "auditAndRepairReconciliation",
                "summary": "Audit and repair every mismatched invoice in scope",
                "tags": [
                    "reconciliation"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-reconciliation_AuditReportResponse"
                        }
                    }
                }
            }
        },
        "/reconciliation/logs": {
            "get": {
                "operationId": "listSyncLogs",
                "summary": "List sync log entries, newest first",
                "tags": [
                    "reconciliation"
                ],
                "parameters": [
                    {
                        "description": "Invoice or purchase order ID",
                        "name": "subjectId",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "PO_UPDATE, MANUAL_AUDIT or SCHEDULED_AUDIT",
                        "name": "trigger",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "RFC3339 or YYYY-MM-DD",
                        "name": "since",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-array_reconciliation_SyncLogResponse"
                        }
                    }
                }
            }
        },
        "/reconciliation/repair": {
            "post": {
                "operationId": "repairReconciliation",
                "summary": "Set one settlement invoice to its purchase order's vendor amount",
                "tags": [
                    "reconciliation"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Invoice and purchase order",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/reconciliation.RepairRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-RepairResult"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/system/info": {
            "get": {
                "operationId": "getSystemSystemInfo",
                "summary": "Get system information",
                "tags": [
                    "system"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-SystemInfoResponse"
                        }
                    }
                }
            }
        },
        "/system/outbox/dead": {
            "get": {
                "operationId": "getOutboxDeadLetterEntries",
                "summary": "List dead letter entries",
                "tags": [
                    "outbox"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Page number",
                        "name": "page",
                        "in": "query",
                        "required": false,
                        "type": "integer",
                        "default": 1
                    },
                    {
                        "description": "Items per page",
                        "name": "page_size",
                        "in": "query",
                        "required": false,
                        "type": "integer",
                        "default": 20,
                        "maximum": 100
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-array_event_OutboxEntryDTO"
                        }
                    }
                }
            }
        },
        "/system/outbox/dead/retry-all": {
            "post": {
                "operationId": "retryAllDeadEntriesOutbox",
                "tags": [
                    "outbox"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-RetryAllResponse"
                        }
                    }
                }
            }
        },
        "/system/outbox/stats": {
            "get": {
                "operationId": "getOutboxStats",
                "tags": [
                    "outbox"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-event_OutboxStatsDTO"
                        }
                    }
                }
            }
        },
        "/system/outbox/{id}": {
            "get": {
                "operationId": "getOutboxEntry",
                "summary": "Get an outbox entry by ID",
                "tags": [
                    "outbox"
                ],
                "parameters": [
                    {
                        "description": "Outbox Entry ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "format": "uuid"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-event_OutboxEntryDTO"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/system/outbox/{id}/retry": {
            "post": {
                "operationId": "retryDeadEntryOutbox",
                "summary": "Retry a dead letter entry",
                "tags": [
                    "outbox"
                ],
                "parameters": [
                    {
                        "description": "Outbox Entry ID",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "format": "uuid"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-event_OutboxEntryDTO"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/system/ping": {
            "get": {
                "operationId": "pingSystem",
                "summary": "Ping the API",
                "tags": [
                    "system"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-PingResponse"
                        }
                    }
                }
            }
        },
        "/webhooks/email": {
            "post": {
                "operationId": "receiveEmailWebhook",
                "summary": "Receive a purchase order email",
                "description": "Rejected, duplicate and review outcomes are reported in the body with status 200.",
                "tags": [
                    "webhooks"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Source name, the configured default when omitted",
                        "name": "source",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "description": "Email as delivered by the mail provider",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/intake.EmailMessage"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-intake_WebhookResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/webhooks/{source}/purchase-orders": {
            "post": {
                "operationId": "receiveStructuredWebhook",
                "summary": "Receive a purchase order from a source system",
                "tags": [
                    "webhooks"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Source name",
                        "name": "source",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Source token",
                        "name": "X-Webhook-Token",
                        "in": "header",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "description": "Purchase order",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/intake.StructuredPayload"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.APIResponse-intake_WebhookResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "billing.GenerateResult": {
            "type": "object",
            "properties": {
                "invoice": {
                    "$ref": "#/definitions/billing.InvoiceResponse"
                },
                "created": {
                    "type": "boolean"
                }
            }
        },
        "billing.InvoiceResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "invoice_no": {
                    "type": "string"
                },
                "kind": {
                    "type": "string"
                },
                "from_company_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "to_company_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "job_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "purchase_order_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "amount": {
                    "type": "string",
                    "example": "0.00"
                },
                "status": {
                    "type": "string"
                },
                "issued_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "paid_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "version": {
                    "type": "integer"
                }
            }
        },
        "billing.MarkPaidRequest": {
            "type": "object",
            "properties": {
                "paid_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "dto.ErrorInfo": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "request_id": {
                    "type": "string"
                },
                "timestamp": {
                    "type": "string",
                    "format": "date-time"
                },
                "details": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.ValidationDetail"
                    }
                }
            }
        },
        "dto.Meta": {
            "type": "object",
            "properties": {
                "total": {
                    "type": "integer"
                },
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_pages": {
                    "type": "integer"
                }
            }
        },
        "dto.ValidationDetail": {
            "type": "object",
            "properties": {
                "field": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "event.OutboxEntryDTO": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "event_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "event_type": {
                    "type": "string"
                },
                "aggregate_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "aggregate_type": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "retry_count": {
                    "type": "integer"
                },
                "max_retries": {
                    "type": "integer"
                },
                "last_error": {
                    "type": "string"
                },
                "next_retry_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "processed_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "event.OutboxStatsDTO": {
            "type": "object",
            "properties": {
                "pending": {
                    "type": "integer"
                },
                "processing": {
                    "type": "integer"
                },
                "sent": {
                    "type": "integer"
                },
                "failed": {
                    "type": "integer"
                },
                "dead": {
                    "type": "integer"
                },
                "total": {
                    "type": "integer"
                }
            }
        },
        "handler.APIResponse-PingResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {
                    "$ref": "#/definitions/handler.PingResponse"
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "handler.APIResponse-RepairResult": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {
                    "$ref": "#/definitions/handler.RepairResult"
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "handler.APIResponse-RetryAllResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {
                    "$ref": "#/definitions/handler.RetryAllResponse"
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "handler.APIResponse-SystemInfoResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {
                    "$ref": "#/definitions/handler.SystemInfoResponse"
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "handler.APIResponse-array_event_OutboxEntryDTO": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/event.OutboxEntryDTO"
                    }
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "handler.APIResponse-array_pricing_JobResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/pricing.JobResponse"
                    }
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "handler.APIResponse-array_reconciliation_SyncLogResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/reconciliation.SyncLogResponse"
                    }
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "handler.APIResponse-array_trade_PurchaseOrderResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/trade.PurchaseOrderResponse"
                    }
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "handler.APIResponse-billing_GenerateResult": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {
                    "$ref": "#/definitions/billing.GenerateResult"
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "handler.APIResponse-billing_InvoiceResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {
                    "$ref": "#/definitions/billing.InvoiceResponse"
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "handler.APIResponse-event_OutboxEntryDTO": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {
                    "$ref": "#/definitions/event.OutboxEntryDTO"
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "handler.APIResponse-event_OutboxStatsDTO": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {
                    "$ref": "#/definitions/event.OutboxStatsDTO"
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "handler.APIResponse-intake_WebhookResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {
                    "$ref": "#/definitions/intake.WebhookResponse"
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "handler.APIResponse-pricing_AllocationResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {
                    "$ref": "#/definitions/pricing.AllocationResponse"
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "handler.APIResponse-pricing_JobResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {
                    "$ref": "#/definitions/pricing.JobResponse"
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "handler.APIResponse-reconciliation_AuditReportResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {
                    "$ref": "#/definitions/reconciliation.AuditReportResponse"
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "handler.APIResponse-trade_CascadeResult": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {
                    "$ref": "#/definitions/trade.CascadeResult"
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "handler.APIResponse-trade_PurchaseOrderResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {
                    "$ref": "#/definitions/trade.PurchaseOrderResponse"
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean",
                    "example": false
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                }
            }
        },
        "handler.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                },
                "checks": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                }
            }
        },
        "handler.PingResponse": {
            "type": "object",
            "properties": {
                "message": {
                    "type": "string",
                    "example": "pong"
                },
                "timestamp": {
                    "type": "string",
                    "example": "2026-01-23T12:00:00Z"
                }
            }
        },
        "handler.RepairResult": {
            "type": "object",
            "properties": {
                "repaired": {
                    "type": "boolean"
                },
                "log": {
                    "$ref": "#/definitions/reconciliation.SyncLogResponse"
                }
            }
        },
        "handler.RetryAllResponse": {
            "type": "object",
            "properties": {
                "count": {
                    "type": "integer"
                }
            }
        },
        "handler.SystemInfoResponse": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string",
                    "example": "printchain"
                },
                "version": {
                    "type": "string",
                    "example": "1.0.0"
                },
                "go_version": {
                    "type": "string",
                    "example": "go1.25.5"
                },
                "uptime": {
                    "type": "string",
                    "example": "1h30m45s"
                }
            }
        },
        "intake.EmailAttachment": {
            "type": "object",
            "properties": {
                "filename": {
                    "type": "string"
                },
                "contentType": {
                    "type": "string"
                },
                "content": {
                    "type": "string",
                    "format": "byte"
                }
            }
        },
        "intake.EmailMessage": {
            "type": "object",
            "properties": {
                "source": {
                    "type": "string"
                },
                "from": {
                    "type": "string"
                },
                "subject": {
                    "type": "string"
                },
                "text": {
                    "type": "string"
                },
                "attachments": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/intake.EmailAttachment"
                    }
                }
            },
            "required": [
                "from"
            ]
        },
        "intake.StructuredPayload": {
            "type": "object",
            "properties": {
                "componentId": {
                    "type": "string"
                },
                "estimateNumber": {
                    "type": "string"
                },
                "amount": {
                    "type": "string",
                    "example": "0.00"
                },
                "jobNo": {
                    "type": "string"
                },
                "customerCode": {
                    "type": "string"
                },
                "customerId": {
                    "type": "string"
                }
            }
        },
        "intake.WebhookResponse": {
            "type": "object",
            "properties": {
                "eventId": {
                    "type": "string",
                    "format": "uuid"
                },
                "state": {
                    "type": "string"
                },
                "reason": {
                    "type": "string"
                },
                "purchaseOrder": {
                    "$ref": "#/definitions/trade.PurchaseOrderResponse"
                }
            }
        },
        "pricing.AllocationResponse": {
            "type": "object",
            "properties": {
                "allocation_mode": {
                    "type": "string"
                },
                "size_key": {
                    "type": "string"
                },
                "quantity": {
                    "type": "integer"
                },
                "quantity_in_thousands": {
                    "type": "string",
                    "example": "0.00"
                },
                "standard_customer_cpm": {
                    "type": "string",
                    "example": "0.00"
                },
                "customer_cpm": {
                    "type": "string",
                    "example": "0.00"
                },
                "customer_total": {
                    "type": "string",
                    "example": "0.00"
                },
                "manufacturer_cpm": {
                    "type": "string",
                    "example": "0.00"
                },
                "manufacturer_total": {
                    "type": "string",
                    "example": "0.00"
                },
                "paper_cost_cpm": {
                    "type": "string",
                    "example": "0.00"
                },
                "paper_cost_total": {
                    "type": "string",
                    "example": "0.00"
                },
                "paper_charged_cpm": {
                    "type": "string",
                    "example": "0.00"
                },
                "paper_charged_total": {
                    "type": "string",
                    "example": "0.00"
                },
                "paper_weight_total": {
                    "type": "string",
                    "example": "0.00"
                },
                "broker_margin_cpm": {
                    "type": "string",
                    "example": "0.00"
                },
                "broker_margin_total": {
                    "type": "string",
                    "example": "0.00"
                },
                "intermediary_print_margin_cpm": {
                    "type": "string",
                    "example": "0.00"
                },
                "intermediary_print_margin_total": {
                    "type": "string",
                    "example": "0.00"
                },
                "intermediary_paper_margin_cpm": {
                    "type": "string",
                    "example": "0.00"
                },
                "intermediary_paper_margin_total": {
                    "type": "string",
                    "example": "0.00"
                },
                "intermediary_total_margin_cpm": {
                    "type": "string",
                    "example": "0.00"
                },
                "intermediary_total_margin_total": {
                    "type": "string",
                    "example": "0.00"
                },
                "requires_approval": {
                    "type": "boolean"
                },
                "undercharge_amount": {
                    "type": "string",
                    "example": "0.00"
                }
            }
        },
        "pricing.CreateJobRequest": {
            "type": "object",
            "properties": {
                "size_key": {
                    "type": "string"
                },
                "quantity": {
                    "type": "integer"
                },
                "allocation_mode": {
                    "type": "string"
                },
                "customer_cpm": {
                    "type": "string",
                    "example": "0.00"
                },
                "job_no": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "customer_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "broker_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "intermediary_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "manufacturer_id": {
                    "type": "string",
                    "format": "uuid"
                }
            },
            "required": [
                "size_key",
                "quantity",
                "customer_id",
                "broker_id",
                "intermediary_id",
                "manufacturer_id"
            ]
        },
        "pricing.JobResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "job_no": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "customer_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "broker_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "intermediary_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "manufacturer_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "financials": {
                    "$ref": "#/definitions/pricing.AllocationResponse"
                },
                "approval_status": {
                    "type": "string"
                },
                "approved_by": {
                    "type": "string"
                },
                "approved_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "priced_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "version": {
                    "type": "integer"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "pricing.QuoteRequest": {
            "type": "object",
            "properties": {
                "size_key": {
                    "type": "string"
                },
                "quantity": {
                    "type": "integer"
                },
                "allocation_mode": {
                    "type": "string"
                },
                "customer_cpm": {
                    "type": "string",
                    "example": "0.00"
                }
            },
            "required": [
                "size_key",
                "quantity"
            ]
        },
        "reconciliation.AuditReportResponse": {
            "type": "object",
            "properties": {
                "generated_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "total_pairs": {
                    "type": "integer"
                },
                "in_sync": {
                    "type": "integer"
                },
                "mismatched": {
                    "type": "integer"
                },
                "missing_invoices": {
                    "type": "integer"
                },
                "cancelled_unbilled": {
                    "type": "integer"
                },
                "percent_in_sync": {
                    "type": "string",
                    "example": "0.00"
                },
                "repaired": {
                    "type": "integer"
                },
                "rows": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/reconciliation.AuditRowResponse"
                    }
                }
            }
        },
        "reconciliation.AuditRowResponse": {
            "type": "object",
            "properties": {
                "job_no": {
                    "type": "string"
                },
                "purchase_order_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "po_number": {
                    "type": "string"
                },
                "leg": {
                    "type": "string"
                },
                "po_origin": {
                    "type": "string"
                },
                "po_target": {
                    "type": "string"
                },
                "po_vendor_amount": {
                    "type": "string",
                    "example": "0.00"
                },
                "invoice_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "invoice_no": {
                    "type": "string"
                },
                "invoice_from": {
                    "type": "string"
                },
                "invoice_to": {
                    "type": "string"
                },
                "invoice_amount": {
                    "type": "string",
                    "example": "0.00"
                },
                "mismatch": {
                    "type": "boolean"
                },
                "missing_invoice": {
                    "type": "boolean"
                },
                "difference": {
                    "type": "string",
                    "example": "0.00"
                }
            }
        },
        "reconciliation.RepairRequest": {
            "type": "object",
            "properties": {
                "invoice_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "purchase_order_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "actor": {
                    "type": "string"
                }
            },
            "required": [
                "invoice_id",
                "purchase_order_id"
            ]
        },
        "reconciliation.SyncLogResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "trigger": {
                    "type": "string"
                },
                "subject_type": {
                    "type": "string"
                },
                "subject_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "field": {
                    "type": "string"
                },
                "old_value": {
                    "type": "string"
                },
                "new_value": {
                    "type": "string"
                },
                "changed_by": {
                    "type": "string"
                },
                "notes": {
                    "type": "string"
                },
                "timestamp": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "trade.CascadeResult": {
            "type": "object",
            "properties": {
                "job_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "job_no": {
                    "type": "string"
                },
                "legs": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/trade.LegResult"
                    }
                }
            }
        },
        "trade.LegResult": {
            "type": "object",
            "properties": {
                "purchase_order": {
                    "$ref": "#/definitions/trade.PurchaseOrderResponse"
                },
                "created": {
                    "type": "boolean"
                }
            }
        },
        "trade.PurchaseOrderResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "po_number": {
                    "type": "string"
                },
                "job_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "leg": {
                    "type": "string"
                },
                "source": {
                    "type": "string"
                },
                "origin_company_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "target_company_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "original_amount": {
                    "type": "string",
                    "example": "0.00"
                },
                "vendor_amount": {
                    "type": "string",
                    "example": "0.00"
                },
                "margin_amount": {
                    "type": "string",
                    "example": "0.00"
                },
                "external_ref": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "version": {
                    "type": "integer"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Printchain API",
	Description:      "Print job pricing, purchase order cascade, invoicing and document reconciliation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
