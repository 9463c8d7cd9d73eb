// Package validate runs declarative field checks on request structs.
//
// Rules come from the `validate` struct tag (go-playground/validator syntax).
// The message reported for a failing field comes from its `msg` tag, and the
// parameter name from its `json` tag.
package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"devconnector/apperr"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return instance
}

// Struct checks req and returns every failing field, in declaration order.
// A nil slice means req is valid.
func Struct(req any) ([]apperr.FieldError, error) {
	err := engine().Struct(req)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	t := reflect.TypeOf(req)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	out := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperr.FieldError{
			Msg:   message(t, fe),
			Param: fe.Field(),
		})
	}
	return out, nil
}

// Check is Struct folded into a single error: nil, ValidationFailed, or the
// validator's own error for a non-struct argument.
func Check(req any) error {
	errs, err := Struct(req)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return apperr.ValidationFailed(errs)
	}
	return nil
}

func message(t reflect.Type, fe validator.FieldError) string {
	if f, ok := t.FieldByName(fe.StructField()); ok {
		if msg := f.Tag.Get("msg"); msg != "" {
			return msg
		}
	}
	return fe.Field() + " is invalid"
}
