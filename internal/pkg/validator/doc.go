// Package validator validates request and configuration structs and turns
// failures into a snake_case field-to-message map.
//
// Callers depend on the Validator interface. V10Validator is backed by
// go-playground/validator v10 with English and Indonesian translations.
package validator
