package contract

const sessionDataSchema = `{
	"type": "object",
	"required": ["session_data"],
	"properties": {
		"session_data": {"type": "object"}
	}
}`

// requestSchemas holds the request body schema of each processor operation,
// keyed by operation name.
var requestSchemas = map[string]string{
	"initiate": `{
		"type": "object",
		"required": ["amount", "currency_code"],
		"properties": {
			"amount": {"type": "integer", "minimum": 0},
			"currency_code": {"type": "string", "minLength": 3, "maxLength": 3},
			"email": {"type": "string"},
			"resource_id": {"type": "string"},
			"customer": {"type": "object"},
			"context": {"type": "object"}
		}
	}`,
	"authorize": `{
		"type": "object",
		"required": ["session_data"],
		"properties": {
			"session_data": {"type": "object"},
			"context": {"type": "object"}
		}
	}`,
	"update": `{
		"type": "object",
		"required": ["amount", "currency_code", "paymentSessionData"],
		"properties": {
			"amount": {"type": "integer", "minimum": 0},
			"currency_code": {"type": "string", "minLength": 3, "maxLength": 3},
			"paymentSessionData": {"type": "object"}
		}
	}`,
	"update-data": `{
		"type": "object",
		"required": ["session_id", "data"],
		"properties": {
			"session_id": {"type": "string", "minLength": 1},
			"data": {"type": "object"}
		}
	}`,
	"retrieve": sessionDataSchema,
	"cancel":   sessionDataSchema,
	"delete":   sessionDataSchema,
	"status":   sessionDataSchema,
	"capture": `{
		"type": "object",
		"required": ["token", "amount"],
		"properties": {
			"token": {"type": "string", "minLength": 1},
			"amount": {"type": "integer", "minimum": 0}
		}
	}`,
	"refund": `{
		"type": "object",
		"required": ["session_data", "amount"],
		"properties": {
			"session_data": {"type": "object"},
			"amount": {"type": "integer", "minimum": 0}
		}
	}`,
	"token": `{
		"type": "object",
		"required": ["amount", "currency"],
		"properties": {
			"amount": {"type": "integer", "minimum": 0},
			"currency": {"type": "string", "minLength": 3, "maxLength": 3}
		}
	}`,
}

