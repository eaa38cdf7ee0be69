package config

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTrans "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate     *validator.Validate
	trans        ut.Translator
	validateOnce sync.Once

	identPattern = regexp.MustCompile(`^[A-Za-z0-9_]*$`)
)

func initValidator() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// "env" tag names the setting a field is read from
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("env"); name != "" && name != "-" {
			return name
		}

		return fld.Name
	})

	_ = validate.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		return identPattern.MatchString(fl.Field().String())
	})

	loc := en.New()
	uni := ut.New(loc, loc)
	trans, _ = uni.GetTranslator("en")
	_ = enTrans.RegisterDefaultTranslations(validate, trans)

	_ = validate.RegisterTranslation("ident", trans,
		func(t ut.Translator) error {
			return t.Add("ident", "{0} may only contain letters, digits and underscores", true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T("ident", fe.Field())
			return msg
		})
}

// ValidationError lists the failed rules of a settings struct.
type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))

	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Translate(trans))
	}

	return strings.Join(msgs, "; ")
}

// Fields returns the names of the settings that failed validation.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Errors))

	for _, fe := range e.Errors {
		fields = append(fields, fe.Field())
	}

	return fields
}

// Validate checks the validate tags of the struct v points to. Besides the validator
// built-ins, "ident" accepts letters, digits and underscores only.
func Validate(v any) error {
	validateOnce.Do(initValidator)

	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return &ValidationError{Errors: ve}
	}

	return err
}
