package services

import (
	"github.com/abadojack/whatlanggo"
)

// DefaultLanguage is used when detection is inconclusive.
const DefaultLanguage = "English"

var languageNames = map[whatlanggo.Lang]string{
	whatlanggo.Eng: "English",
	whatlanggo.Spa: "Spanish",
	whatlanggo.Fra: "French",
	whatlanggo.Deu: "German",
	whatlanggo.Ita: "Italian",
	whatlanggo.Por: "Portuguese",
	whatlanggo.Nld: "Dutch",
	whatlanggo.Rus: "Russian",
	whatlanggo.Cmn: "Chinese",
	whatlanggo.Jpn: "Japanese",
	whatlanggo.Kor: "Korean",
	whatlanggo.Arb: "Arabic",
}

// minConfidence is the lowest detection confidence accepted. whatlanggo's
// own reliability cut-off rejects most one-sentence questions.
const minConfidence = 0.5

var detectOptions = whatlanggo.Options{Whitelist: supportedLanguages()}

func supportedLanguages() map[whatlanggo.Lang]bool {
	m := make(map[whatlanggo.Lang]bool, len(languageNames))
	for l := range languageNames {
		m[l] = true
	}
	return m
}

// DetectLanguage names the language text is written in, falling back to
// DefaultLanguage for short or ambiguous input.
func DetectLanguage(text string) string {
	info := whatlanggo.DetectWithOptions(text, detectOptions)
	if info.Confidence < minConfidence {
		return DefaultLanguage
	}
	if name, ok := languageNames[info.Lang]; ok {
		return name
	}
	return DefaultLanguage
}
