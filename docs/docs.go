// Package docs содержит swagger-спецификацию HTTP API.
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
		"/products": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"products"
				],
				"summary": "Добавление товара",
				"parameters": [
					{
						"description": "Товар",
						"name": "product",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/http.CreateProductRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/http.ProductResponse"
						}
					},
					"400": {
						"description": "Ошибка валидации",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					},
					"409": {
						"description": "SKU уже занят",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			},
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"products"
				],
				"summary": "Список товаров",
				"parameters": [
					{
						"type": "string",
						"description": "Подстрока имени",
						"name": "name",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Подстрока категории",
						"name": "category",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Смещение",
						"name": "skip",
						"in": "query",
						"default": 0
					},
					{
						"type": "integer",
						"description": "Размер страницы",
						"name": "limit",
						"in": "query",
						"default": 100
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/http.ProductResponse"
							}
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					}
				}
			}
		},
		"/products/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"products"
				],
				"summary": "Товар по ID",
				"parameters": [
					{
						"type": "integer",
						"description": "ID товара",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.ProductResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					}
				}
			},
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"products"
				],
				"summary": "Частичное обновление товара",
				"parameters": [
					{
						"type": "integer",
						"description": "ID товара",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Изменяемые поля",
						"name": "product",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/http.UpdateProductRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.ProductResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			},
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"products"
				],
				"summary": "Удаление товара",
				"parameters": [
					{
						"type": "integer",
						"description": "ID товара",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.DeleteResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					}
				}
			}
		},
		"/inventory": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"inventory"
				],
				"summary": "Добавление остатка",
				"parameters": [
					{
						"description": "Остаток",
						"name": "inventory",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/http.CreateInventoryRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/http.InventoryResponse"
						}
					},
					"400": {
						"description": "Товар не существует или ошибка валидации",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			},
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"inventory"
				],
				"summary": "Список остатков",
				"parameters": [
					{
						"type": "string",
						"description": "Подстрока локации",
						"name": "location",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "ID товара",
						"name": "product_id",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Смещение",
						"name": "skip",
						"in": "query",
						"default": 0
					},
					{
						"type": "integer",
						"description": "Размер страницы",
						"name": "limit",
						"in": "query",
						"default": 100
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/http.InventoryResponse"
							}
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					}
				}
			}
		},
		"/inventory/low-stock": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"inventory"
				],
				"summary": "Остатки ниже порога",
				"parameters": [
					{
						"type": "integer",
						"description": "Порог",
						"name": "threshold",
						"in": "query",
						"default": 10
					},
					{
						"type": "integer",
						"description": "Смещение",
						"name": "skip",
						"in": "query",
						"default": 0
					},
					{
						"type": "integer",
						"description": "Размер страницы",
						"name": "limit",
						"in": "query",
						"default": 100
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/http.InventoryWithProductResponse"
							}
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					}
				}
			}
		},
		"/inventory/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"inventory"
				],
				"summary": "Остаток по ID",
				"parameters": [
					{
						"type": "integer",
						"description": "ID остатка",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.InventoryWithProductResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					}
				}
			},
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"inventory"
				],
				"summary": "Частичное обновление остатка",
				"parameters": [
					{
						"type": "integer",
						"description": "ID остатка",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Изменяемые поля",
						"name": "inventory",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/http.UpdateInventoryRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.InventoryResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			},
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"inventory"
				],
				"summary": "Удаление остатка",
				"parameters": [
					{
						"type": "integer",
						"description": "ID остатка",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.DeleteResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					}
				}
			}
		},
		"/inventory/{id}/adjust": {
			"patch": {
				"produces": [
					"application/json"
				],
				"tags": [
					"inventory"
				],
				"summary": "Изменение остатка на величину",
				"parameters": [
					{
						"type": "integer",
						"description": "ID остатка",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Изменение",
						"name": "quantity_change",
						"in": "query",
						"required": true
					},
					{
						"type": "string",
						"description": "Причина",
						"name": "reason",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "ID исполнителя",
						"name": "performed_by",
						"in": "query"
					},
					{
						"type": "boolean",
						"description": "Писать ли запись в журнал",
						"name": "create_transaction",
						"in": "query",
						"default": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.InventoryResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					}
				}
			}
		},
		"/inventory/{id}/set-quantity": {
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"inventory"
				],
				"summary": "Установка остатка",
				"parameters": [
					{
						"type": "integer",
						"description": "ID остатка",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Новое количество",
						"name": "new_quantity",
						"in": "query",
						"required": true
					},
					{
						"type": "string",
						"description": "Причина",
						"name": "reason",
						"in": "query",
						"required": true
					},
					{
						"type": "integer",
						"description": "ID исполнителя",
						"name": "performed_by",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.InventoryResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					}
				}
			}
		},
		"/transactions": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"transactions"
				],
				"summary": "Запись в журнал",
				"parameters": [
					{
						"description": "Запись",
						"name": "transaction",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/http.CreateTransactionRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/http.TransactionResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			},
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"transactions"
				],
				"summary": "Журнал движения остатков",
				"parameters": [
					{
						"type": "integer",
						"description": "ID товара",
						"name": "product_id",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "ID исполнителя",
						"name": "performed_by",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Подстрока причины",
						"name": "reason",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Смещение",
						"name": "skip",
						"in": "query",
						"default": 0
					},
					{
						"type": "integer",
						"description": "Размер страницы",
						"name": "limit",
						"in": "query",
						"default": 100
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/http.TransactionResponse"
							}
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					}
				}
			}
		},
		"/transactions/summary/{product_id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"transactions"
				],
				"summary": "Сводка по товару",
				"parameters": [
					{
						"type": "integer",
						"description": "ID товара",
						"name": "product_id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.TransactionSummaryResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					}
				}
			}
		},
		"/transactions/export/{product_id}": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"transactions"
				],
				"summary": "Выгрузка журнала товара в MinIO",
				"parameters": [
					{
						"type": "integer",
						"description": "ID товара",
						"name": "product_id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/http.ExportLedgerResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					},
					"501": {
						"description": "Not Implemented",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					}
				}
			}
		},
		"/transactions/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"transactions"
				],
				"summary": "Запись журнала по ID",
				"parameters": [
					{
						"type": "integer",
						"description": "ID записи",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.TransactionWithProductResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					}
				}
			},
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"transactions"
				],
				"summary": "Исправление записи журнала",
				"parameters": [
					{
						"type": "integer",
						"description": "ID записи",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Изменяемые поля",
						"name": "transaction",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/http.UpdateTransactionRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.TransactionResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				]
			},
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"transactions"
				],
				"summary": "Удаление записи журнала",
				"parameters": [
					{
						"type": "integer",
						"description": "ID записи",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/http.DeleteTransactionResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/http.ErrorResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"http.ErrorResponse": {
			"type": "object",
			"properties": {
				"code": {
					"type": "integer"
				},
				"message": {
					"type": "string"
				}
			}
		},
		"http.CreateProductRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string"
				},
				"sku": {
					"type": "string"
				},
				"category": {
					"type": "string"
				},
				"price": {
					"type": "string",
					"example": "599.99"
				}
			}
		},
		"http.UpdateProductRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string"
				},
				"sku": {
					"type": "string"
				},
				"category": {
					"type": "string"
				},
				"price": {
					"type": "string",
					"example": "599.99"
				}
			}
		},
		"http.CreateInventoryRequest": {
			"type": "object",
			"properties": {
				"product_id": {
					"type": "integer"
				},
				"quantity": {
					"type": "integer"
				},
				"location": {
					"type": "string"
				}
			}
		},
		"http.UpdateInventoryRequest": {
			"type": "object",
			"properties": {
				"quantity": {
					"type": "integer"
				},
				"location": {
					"type": "string"
				}
			}
		},
		"http.CreateTransactionRequest": {
			"type": "object",
			"properties": {
				"product_id": {
					"type": "integer"
				},
				"change_amount": {
					"type": "integer"
				},
				"reason": {
					"type": "string"
				},
				"performed_by": {
					"type": "integer"
				}
			}
		},
		"http.UpdateTransactionRequest": {
			"type": "object",
			"properties": {
				"change_amount": {
					"type": "integer"
				},
				"reason": {
					"type": "string",
					"x-nullable": true
				},
				"performed_by": {
					"type": "integer",
					"x-nullable": true
				}
			}
		},
		"http.ProductResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"name": {
					"type": "string"
				},
				"sku": {
					"type": "string"
				},
				"category": {
					"type": "string"
				},
				"price": {
					"type": "string",
					"example": "599.99"
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
		"http.InventoryResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"product_id": {
					"type": "integer"
				},
				"quantity": {
					"type": "integer"
				},
				"location": {
					"type": "string"
				},
				"updated_at": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"http.InventoryWithProductResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"product_id": {
					"type": "integer"
				},
				"quantity": {
					"type": "integer"
				},
				"location": {
					"type": "string"
				},
				"updated_at": {
					"type": "string",
					"format": "date-time"
				},
				"product": {
					"$ref": "#/definitions/http.ProductResponse"
				}
			}
		},
		"http.TransactionResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"product_id": {
					"type": "integer"
				},
				"change_amount": {
					"type": "integer"
				},
				"reason": {
					"type": "string"
				},
				"performed_by": {
					"type": "integer"
				},
				"created_at": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"http.TransactionWithProductResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"product_id": {
					"type": "integer"
				},
				"change_amount": {
					"type": "integer"
				},
				"reason": {
					"type": "string"
				},
				"performed_by": {
					"type": "integer"
				},
				"created_at": {
					"type": "string",
					"format": "date-time"
				},
				"product": {
					"$ref": "#/definitions/http.ProductResponse"
				}
			}
		},
		"http.DeleteTransactionResponse": {
			"type": "object",
			"properties": {
				"transaction": {
					"$ref": "#/definitions/http.TransactionResponse"
				},
				"warning": {
					"type": "string"
				}
			}
		},
		"http.TransactionSummaryResponse": {
			"type": "object",
			"properties": {
				"product_id": {
					"type": "integer"
				},
				"total_in": {
					"type": "integer"
				},
				"total_out": {
					"type": "integer"
				},
				"net_change": {
					"type": "integer"
				},
				"transaction_count": {
					"type": "integer"
				}
			}
		},
		"http.ExportLedgerResponse": {
			"type": "object",
			"properties": {
				"bucket": {
					"type": "string"
				},
				"object_key": {
					"type": "string"
				},
				"manifest_key": {
					"type": "string"
				},
				"entries": {
					"type": "integer"
				}
			}
		},
		"http.DeleteResponse": {
			"type": "object",
			"properties": {
				"deleted": {
					"type": "boolean"
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
	Title:            "Inventory Backend API",
	Description:      "Каталог товаров, остатки и журнал движения.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
