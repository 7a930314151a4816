package listview

import (
	"bytes"
	"text/template"
)

// Dictionary resolves display strings by key. Implementations return the key
// itself when no translation exists.
type Dictionary interface {
	T(key string, data ...map[string]any) string
}

const (
	KeyNoData           = "Content.NoDataAvailable"
	KeyShowing          = "Content.ShowingRows"
	KeyFailedToLoad     = "Content.FailedToLoad"
	KeySaved            = "Content.SavedSuccessfully"
	KeyDeleted          = "Content.DeletedSuccessfully"
	KeyOperationFailed  = "Content.OperationFailed"
	KeyValidationFailed = "Content.ValidationFailed"
)

// English strings used when a table is built without a dictionary.
var fallbackMessages = map[string]string{
	KeyNoData:             "No data available",
	KeyShowing:            "Showing {{.Start}} to {{.End}} of {{.Total}}",
	KeyFailedToLoad:       "Failed to load data",
	KeySaved:              "Saved successfully",
	KeyDeleted:            "Deleted successfully",
	KeyOperationFailed:    "Operation failed",
	KeyValidationFailed:   "Please correct the highlighted fields",
	"Validation.required": "{{.Field}} is required",
	"Validation.email":    "{{.Field}} must be a valid email",
	"Validation.max":      "{{.Field}} must be at most {{.Param}}",
	"Validation.min":      "{{.Field}} must be at least {{.Param}}",
	"Validation.oneof":    "{{.Field}} must be one of: {{.Param}}",
	"Validation.gte":      "{{.Field}} must be {{.Param}} or more",
	"Validation.datetime": "{{.Field}} must be a date like {{.Param}}",
	"Validation.invalid":  "{{.Field}} is invalid",
}

type fallbackDictionary struct{}

// DefaultDictionary returns the built-in English dictionary.
func DefaultDictionary() Dictionary { return fallbackDictionary{} }

func (fallbackDictionary) T(key string, data ...map[string]any) string {
	msg, ok := fallbackMessages[key]
	if !ok {
		return key
	}
	if len(data) == 0 || data[0] == nil {
		return msg
	}
	tmpl, err := template.New(key).Parse(msg)
	if err != nil {
		return msg
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data[0]); err != nil {
		return msg
	}
	return buf.String()
}

func orDefault(d Dictionary) Dictionary {
	if d == nil {
		return DefaultDictionary()
	}
	return d
}
