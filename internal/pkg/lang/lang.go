// Package lang translates message keys with go-playground/universal-translator.
//
// Modules register their own catalogues, keyed by locale then message key.
// Lookups fall back to the fallback locale, then to the key itself.
package lang

import (
	"errors"
	"fmt"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/id"
	ut "github.com/go-playground/universal-translator"
)

// Fallback is the locale used when a requested one is unknown.
const Fallback = "en"

// ErrLocaleNotSupported is returned when a catalogue names an unknown locale.
var ErrLocaleNotSupported = errors.New("lang: locale not supported")

// Catalogue maps locale to message key to text.
type Catalogue map[string]map[string]string

// Translator looks up messages by locale and key.
type Translator struct {
	uni *ut.UniversalTranslator
}

// New builds a Translator for "en" and "id" and loads the catalogues.
func New(catalogues ...Catalogue) (*Translator, error) {
	fallback := en.New()
	supported := []locales.Translator{fallback, id.New()}

	tr := &Translator{uni: ut.New(fallback, supported...)}
	for _, c := range catalogues {
		if err := tr.Load(c); err != nil {
			return nil, err
		}
	}
	return tr, nil
}

// Load adds a catalogue, overriding existing keys.
func (t *Translator) Load(c Catalogue) error {
	for locale, messages := range c {
		trans, found := t.uni.GetTranslator(locale)
		if !found {
			return fmt.Errorf("%w: %q", ErrLocaleNotSupported, locale)
		}
		for key, text := range messages {
			if err := trans.Add(key, text, true); err != nil {
				return fmt.Errorf("lang: add %q/%q: %w", locale, key, err)
			}
		}
	}
	return nil
}

// Message returns the text for key in locale.
func (t *Translator) Message(locale, key string) string {
	if trans, found := t.uni.GetTranslator(locale); found {
		if msg, err := trans.T(key); err == nil {
			return msg
		}
	}

	if trans, found := t.uni.GetTranslator(Fallback); found {
		if msg, err := trans.T(key); err == nil {
			return msg
		}
	}

	return key
}
