// Package translate splits long text into sentence-bounded chunks and
// translates them through a remote backend.
package translate

import (
	"strings"

	"github.com/GSKISBOT/fileconvertor/pkg/constants"
)

// Language is one entry of the catalog
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Languages is the fixed catalog in display order. "auto" is reserved for
// detection and is never a valid target.
var Languages = []Language{
	{constants.AutoLanguage, "Auto-detect"},
	{"en", "English"},
	{"es", "Spanish"},
	{"fr", "French"},
	{"de", "German"},
	{"it", "Italian"},
	{"pt", "Portuguese"},
	{"ru", "Russian"},
	{"ja", "Japanese"},
	{"ko", "Korean"},
	{"zh", "Chinese (Simplified)"},
	{"zh-tw", "Chinese (Traditional)"},
	{"ar", "Arabic"},
	{"hi", "Hindi"},
	{"ta", "Tamil"},
	{"te", "Telugu"},
	{"bn", "Bengali"},
	{"ur", "Urdu"},
	{"th", "Thai"},
	{"vi", "Vietnamese"},
	{"tr", "Turkish"},
	{"pl", "Polish"},
	{"nl", "Dutch"},
	{"sv", "Swedish"},
	{"no", "Norwegian"},
	{"da", "Danish"},
	{"fi", "Finnish"},
}

// PopularLanguages is shown on the first page of the language keyboard
var PopularLanguages = []string{"en", "es", "fr", "de", "it", "pt", "ru", "ja", "ko", "zh", "ar", "hi", "ta"}

var languageNames = func() map[string]string {
	m := make(map[string]string, len(Languages))
	for _, l := range Languages {
		m[l.Code] = l.Name
	}
	return m
}()

// LanguageName returns the display name for a code, or the upper-cased code
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return strings.ToUpper(code)
}

// IsSupportedTarget reports whether code can be chosen as a target language
func IsSupportedTarget(code string) bool {
	_, ok := languageNames[code]
	return ok && code != constants.AutoLanguage
}

// TargetLanguages returns every catalog entry except auto
func TargetLanguages() []Language {
	out := make([]Language, 0, len(Languages)-1)
	for _, l := range Languages {
		if l.Code != constants.AutoLanguage {
			out = append(out, l)
		}
	}
	return out
}

// OtherLanguages returns the targets that are not in PopularLanguages
func OtherLanguages() []Language {
	popular := make(map[string]bool, len(PopularLanguages))
	for _, code := range PopularLanguages {
		popular[code] = true
	}
	var out []Language
	for _, l := range TargetLanguages() {
		if !popular[l.Code] {
			out = append(out, l)
		}
	}
	return out
}
