package forms

import (
	"encoding/json"
	"fmt"

	"github.com/qri-io/jsonschema"
)

// Field rules live as JSON Schema documents, compiled once at package load.
// The confirmation-match rule cannot be expressed in schema and is checked
// in Go after schema validation.

const registrationSchemaJSON = `{
	"type": "object",
	"required": ["email", "password", "confirm_password", "full_name", "role"],
	"properties": {
		"email": {"type": "string", "minLength": 3, "pattern": "^[^@\\s]+@[^@\\s]+\\.[^@\\s]+$"},
		"password": {"type": "string", "minLength": 8},
		"confirm_password": {"type": "string", "minLength": 1},
		"full_name": {"type": "string", "minLength": 2},
		"role": {"type": "string", "minLength": 1}
	}
}`

const loginSchemaJSON = `{
	"type": "object",
	"required": ["email", "password"],
	"properties": {
		"email": {"type": "string", "minLength": 3},
		"password": {"type": "string", "minLength": 1}
	}
}`

const jobSchemaJSON = `{
	"type": "object",
	"required": ["title", "description", "skills_required", "location", "employment_type"],
	"properties": {
		"title": {"type": "string", "minLength": 3},
		"description": {"type": "string", "minLength": 50},
		"skills_required": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}},
		"location": {"type": "string", "minLength": 2},
		"employment_type": {"type": "string", "minLength": 1}
	}
}`

const profileSchemaJSON = `{
	"type": "object",
	"required": ["full_name"],
	"properties": {
		"full_name": {"type": "string", "minLength": 2},
		"department": {"type": "string"}
	}
}`

const vendorSchemaJSON = `{
	"type": "object",
	"required": ["name", "registration_number", "categories", "contact_email"],
	"properties": {
		"name": {"type": "string", "minLength": 2},
		"registration_number": {"type": "string", "minLength": 3},
		"categories": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}},
		"contact_email": {"type": "string", "pattern": "^[^@\\s]+@[^@\\s]+\\.[^@\\s]+$"}
	}
}`

const reportSchemaJSON = `{
	"type": "object",
	"required": ["procurement_id", "category", "description"],
	"properties": {
		"procurement_id": {"type": "string", "minLength": 1},
		"category": {"type": "string", "minLength": 1},
		"description": {"type": "string", "minLength": 20}
	}
}`

const bidSchemaJSON = `{
	"type": "object",
	"required": ["bid_amount", "currency", "delivery_timeline"],
	"properties": {
		"bid_amount": {"type": "number", "exclusiveMinimum": 0},
		"currency": {"type": "string", "minLength": 3},
		"delivery_timeline": {"type": "string", "minLength": 2},
		"bid_validity_days": {"type": "integer", "minimum": 1}
	}
}`

func mustSchema(raw string) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(raw), rs); err != nil {
		panic(fmt.Sprintf("forms: bad schema: %v", err))
	}
	return rs
}

var (
	registrationSchema = mustSchema(registrationSchemaJSON)
	loginSchema        = mustSchema(loginSchemaJSON)
	jobSchema          = mustSchema(jobSchemaJSON)
	profileSchema      = mustSchema(profileSchemaJSON)
	vendorSchema       = mustSchema(vendorSchemaJSON)
	reportSchema       = mustSchema(reportSchemaJSON)
	bidSchema          = mustSchema(bidSchemaJSON)
)
