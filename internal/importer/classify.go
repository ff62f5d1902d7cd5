package importer

// Attribute type tags stored in entity_attributes.attr_type.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

// Classify maps a decoded JSON value to exactly one type tag.
//
// Every value has a defined tag; object is the catch-all, including null.
// The array check runs before the object fallback because a JSON array
// would otherwise be swallowed by it.
func Classify(v any) string {
	switch v.(type) {
	case string:
		return TypeString
	case bool:
		return TypeBoolean
	case float64, int, int64:
		return TypeNumber
	case []any:
		return TypeArray
	default:
		return TypeObject
	}
}
