// Package types holds the request/response contract exchanged with the
// sanitization engine. Field names are the wire format: renaming a JSON tag or
// changing a field's shape breaks every engine build in the field.
package types
