package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	es_translations "github.com/go-playground/validator/v10/translations/es"
)

var (
	// custom validation tags & texts
	ficheNumberTag  = "fiche_number"
	ficheNumberText = "{0} debe contener solo dígitos"

	requiredTag  = "required"
	requiredText = "{0} es obligatorio"
)

// NewValidator returns a validator with Spanish error messages.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	_es := es.New()
	uni := ut.New(_es, _es)
	translator, _ := uni.GetTranslator("es")
	InitValidators(validate, translator)
	return validate, translator
}

// InitValidators registers translations, tag names and custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = es_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON (or query) tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return ""
	})

	// register custom validators
	_ = validate.RegisterValidation(ficheNumberTag, ficheNumberValidation)
	RegisterCustomTranslation(validate, translator, ficheNumberTag, ficheNumberText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// ficheNumberValidation allows (partial) fiche codes: digits only.
func ficheNumberValidation(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
