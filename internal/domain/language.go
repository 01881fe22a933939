package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownLanguage = errors.New("unknown language")

type Language struct {
	Value      string
	Label      string
	NativeName string
}

var languages = []Language{
	{Value: "hindi", Label: "हिंदी (Hindi)", NativeName: "हिंदी"},
	{Value: "marathi", Label: "मराठी (Marathi)", NativeName: "मराठी"},
	{Value: "tamil", Label: "தமிழ் (Tamil)", NativeName: "தமிழ்"},
	{Value: "telugu", Label: "తెలుగు (Telugu)", NativeName: "తెలుగు"},
	{Value: "gujarati", Label: "ગુજરાતી (Gujarati)", NativeName: "ગુજરાતી"},
	{Value: "bengali", Label: "বাংলা (Bengali)", NativeName: "বাংলা"},
	{Value: "kannada", Label: "ಕನ್ನಡ (Kannada)", NativeName: "ಕನ್ನಡ"},
	{Value: "malayalam", Label: "മലയാളം (Malayalam)", NativeName: "മലയാളം"},
	{Value: "english", Label: "English", NativeName: "English"},
}

// Languages returns the supported content languages in display order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// LookupLanguage finds a language by its value, case-insensitively.
func LookupLanguage(value string) (Language, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, l := range languages {
		if l.Value == v {
			return l, nil
		}
	}
	return Language{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, value)
}
