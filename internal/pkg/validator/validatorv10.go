package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/id"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	idTranslations "github.com/go-playground/validator/v10/translations/id"

	"github.com/shandysiswandi/otptoken/internal/pkg/strcase"
)

var (
	// A SQL identifier that is safe to interpolate as a table or column name.
	reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reOtpCode    = regexp.MustCompile(`^[0-9]{6}$`)
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate    *validator.Validate
	uni         *ut.UniversalTranslator
	translators map[string]ut.Translator
}

// V10ValidationError is a field-to-message map returned when validation fails.
type V10ValidationError map[string]string

func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// NewV10Validator constructs a V10Validator with "en" and "id" translations.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLang := en.New()
	uni := ut.New(enLang, enLang, id.New())

	registers := map[string]func(*validator.Validate, ut.Translator) error{
		"en": enTranslations.RegisterDefaultTranslations,
		"id": idTranslations.RegisterDefaultTranslations,
	}

	translators := make(map[string]ut.Translator, len(registers))
	for locale, register := range registers {
		trans, ok := uni.GetTranslator(locale)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTranslatorNotFound, locale)
		}
		if err := register(validate, trans); err != nil {
			return nil, err
		}
		translators[locale] = trans
	}

	if err := v10CustomValidation(validate, translators); err != nil {
		return nil, err
	}

	return &V10Validator{validate: validate, uni: uni, translators: translators}, nil
}

// Validate validates data with English messages.
func (v *V10Validator) Validate(data any) error {
	return v.ValidateLocale("en", data)
}

// ValidateLocale validates data and translates messages to locale, falling
// back to English when the locale is unknown.
func (v *V10Validator) ValidateLocale(locale string, data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		return err
	}

	trans, ok := v.translators[locale]
	if !ok {
		trans = v.translators["en"]
	}

	errV10 := make(V10ValidationError, len(validateErrs))
	for _, fe := range validateErrs {
		errV10[strcase.ToLowerSnake(fe.Field())] = fe.Translate(trans)
	}

	return errV10
}

type customRule struct {
	tag      string
	re       *regexp.Regexp
	messages map[string]string
}

var customRules = []customRule{
	{
		tag: "identifier",
		re:  reIdentifier,
		messages: map[string]string{
			"en": "{0} must be a valid identifier",
			"id": "{0} harus berupa identifier yang valid",
		},
	},
	{
		tag: "otpcode",
		re:  reOtpCode,
		messages: map[string]string{
			"en": "{0} must be a 6 digit code",
			"id": "{0} harus berupa kode 6 digit",
		},
	},
}

func v10CustomValidation(validate *validator.Validate, translators map[string]ut.Translator) error {
	for _, rule := range customRules {
		re := rule.re
		err := validate.RegisterValidation(rule.tag, func(fl validator.FieldLevel) bool {
			s, ok := fl.Field().Interface().(string)
			return ok && re.MatchString(s)
		})
		if err != nil {
			return err
		}

		for locale, trans := range translators {
			msg := rule.messages[locale]
			err := validate.RegisterTranslation(rule.tag, trans,
				func(ut ut.Translator) error {
					return ut.Add(rule.tag, msg, false)
				},
				func(ut ut.Translator, fe validator.FieldError) string {
					t, err := ut.T(fe.Tag(), fe.Field())
					if err != nil {
						slog.Warn("warning: error translating", "tag", fe.Tag(), "error", err)
						return fe.Error()
					}
					return t
				},
			)
			if err != nil {
				return err
			}
		}
	}

	return nil
}
