package client

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// message keys - the english text doubles as the catalog key
const (
	msgNoResponse   = "No response received from the server. Please check your internet connection."
	msgUnknownError = "Unknown error"
)

func init() {
	_ = message.SetString(language.German, msgNoResponse, "Keine Antwort vom Server erhalten. Bitte überprüfen Sie Ihre Internetverbindung.")
	_ = message.SetString(language.German, msgUnknownError, "Unbekannter Fehler")
}

// SupportedLanguages lists the languages with translated normalizer messages
var SupportedLanguages = map[string]language.Tag{
	"en": language.English,
	"de": language.German,
}

var defaultNormalizer = NewNormalizer(language.English)

// Normalizer turns any error returned by the Client into a single display string.
// The fixed messages are resolved once, so the output for a given failure kind is constant.
type Normalizer struct {
	lang         language.Tag
	noResponse   string
	unknownError string
}

func NewNormalizer(lang language.Tag) *Normalizer {
	p := message.NewPrinter(lang)
	return &Normalizer{
		lang:         lang,
		noResponse:   p.Sprintf(msgNoResponse),
		unknownError: p.Sprintf(msgUnknownError),
	}
}

// NewNormalizerForCode returns a normalizer for one of the SupportedLanguages codes
func NewNormalizerForCode(code string) (*Normalizer, error) {
	tag, ok := SupportedLanguages[code]
	if !ok {
		return nil, fmt.Errorf("unsupported language %q (expects en or de)", code)
	}
	return NewNormalizer(tag), nil
}

// Language returns the language used for the fixed messages
func (n *Normalizer) Language() language.Tag {
	return n.lang
}

// Format maps err to a user-facing message:
//  1. server error with a detail message: the detail
//  2. server error without detail: "{status code} {status text}"
//  3. no response: the connectivity message
//  4. local failure: the failure message, or the unknown error message when there is none
//
// Errors that are not ClientErrors are treated as local failures. A nil error returns "".
func (n *Normalizer) Format(err error) string {
	if err == nil {
		return ""
	}

	var ce *ClientError
	if !errors.As(err, &ce) {
		if msg := err.Error(); msg != "" {
			return msg
		}
		return n.unknownError
	}

	switch ce.Kind {
	case KindServer:
		if ce.Detail != "" {
			return ce.Detail
		}
		if ce.StatusText == "" {
			return fmt.Sprintf("%d", ce.StatusCode)
		}
		return fmt.Sprintf("%d %s", ce.StatusCode, ce.StatusText)
	case KindNoResponse:
		return n.noResponse
	default:
		if ce.Message != "" {
			return ce.Message
		}
		return n.unknownError
	}
}
