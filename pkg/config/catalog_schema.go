package config

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// catalogSchemaJSON 物品目录文件的结构约束
const catalogSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Merge grid item catalog",
  "type": "object",
  "properties": {
    "items": {
      "type": "array",
      "items": { "$ref": "#/$defs/item" }
    },
    "spawners": {
      "type": "array",
      "items": { "$ref": "#/$defs/spawner" }
    }
  },
  "anyOf": [
    { "required": ["items"] },
    { "required": ["spawners"] }
  ],
  "$defs": {
    "display": {
      "type": "object",
      "properties": {
        "id": { "type": "string", "pattern": "^[A-Za-z0-9_\\-]+$" },
        "displayName": { "type": "string" },
        "description": { "type": "string" },
        "icon": { "type": "string" },
        "visualScale": { "type": "number", "exclusiveMinimum": 0 }
      },
      "required": ["id"]
    },
    "item": {
      "allOf": [{ "$ref": "#/$defs/display" }],
      "properties": {
        "tier": { "type": "integer", "minimum": 1 },
        "nextTier": { "type": "string" }
      },
      "required": ["tier"]
    },
    "spawner": {
      "allOf": [{ "$ref": "#/$defs/display" }],
      "properties": {
        "maxSpawnsBeforeCooldown": { "type": "integer", "minimum": 0 },
        "cooldownSeconds": { "type": "number", "minimum": 0 },
        "spawns": {
          "type": "array",
          "minItems": 1,
          "items": {
            "type": "object",
            "properties": {
              "item": { "type": "string" },
              "weight": { "type": "number", "minimum": 0 }
            },
            "required": ["weight"]
          }
        }
      },
      "required": ["spawns"]
    }
  }
}`

const catalogSchemaURL = "catalog.schema.json"

var (
	catalogSchemaOnce sync.Once
	catalogSchema     *jsonschema.Schema
	catalogSchemaErr  error
)

func compiledCatalogSchema() (*jsonschema.Schema, error) {
	catalogSchemaOnce.Do(func() {
		catalogSchema, catalogSchemaErr = jsonschema.CompileString(catalogSchemaURL, catalogSchemaJSON)
	})
	return catalogSchema, catalogSchemaErr
}

// CatalogSchema 返回目录的 JSON Schema 文本（供编辑器和工具使用）
func CatalogSchema() string {
	return catalogSchemaJSON
}

// ValidateCatalogSchema 使用 JSON Schema 校验目录 YAML 的结构
//
// YAML 先解码为通用值，再经 JSON 重新编码，
// 保证数值类型与校验器期望的 JSON 数据模型一致。
func ValidateCatalogSchema(data []byte) error {
	schema, err := compiledCatalogSchema()
	if err != nil {
		return fmt.Errorf("failed to compile catalog schema: %w", err)
	}

	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to convert catalog to JSON: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return fmt.Errorf("failed to decode catalog JSON: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("catalog schema validation failed: %w", err)
	}
	return nil
}
