package listview

import (
	"reflect"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
)

// StructValidator validates forms with v and returns localized messages keyed
// by field. Field names follow json tags when v is configured to use them.
func StructValidator[T any](v *validator.Validate, dict Dictionary) func(T) map[string]string {
	dict = orDefault(dict)
	return func(form T) map[string]string {
		err := v.Struct(form)
		if err == nil {
			return nil
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return map[string]string{"_": err.Error()}
		}
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = fieldMessage(dict, fe)
		}
		return out
	}
}

func fieldMessage(dict Dictionary, fe validator.FieldError) string {
	data := map[string]any{"Field": fe.Field(), "Param": fe.Param()}
	key := "Validation." + fe.Tag()
	if msg := dict.T(key, data); msg != key {
		return msg
	}
	return dict.T("Validation.invalid", data)
}

// JSONTagName makes validator report json field names.
func JSONTagName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
