package bot

import (
	"strings"

	"github.com/GSKISBOT/fileconvertor/pkg/constants"
	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/translate"
)

// Callback data
const (
	CallbackConvert       = "convert_to_docx"
	CallbackTranslate     = "translate_file"
	CallbackHelp          = "help"
	CallbackMainMenu      = "back_to_main"
	CallbackMoreLanguages = "show_more_languages"
	CallbackTranslateTo   = "translate_to_"
)

// MainMenuKeyboard offers the two modes and help
func MainMenuKeyboard() interfaces.Keyboard {
	return interfaces.Keyboard{
		{{Text: "📄 Convert Any File to DOCX", Data: CallbackConvert}},
		{{Text: "🌐 Translate File to Any Language", Data: CallbackTranslate}},
		{{Text: "ℹ️ Help", Data: CallbackHelp}},
	}
}

// BackKeyboard returns to the main menu
func BackKeyboard() interfaces.Keyboard {
	return interfaces.Keyboard{
		{{Text: "🔙 Back to Main Menu", Data: CallbackMainMenu}},
	}
}

// HomeKeyboard is offered when no mode is selected
func HomeKeyboard() interfaces.Keyboard {
	return interfaces.Keyboard{
		{{Text: "🏠 Main Menu", Data: CallbackMainMenu}},
	}
}

// LanguageKeyboard lists popular targets two per row with a "show more"
// button, or every target when showAll is set
func LanguageKeyboard(showAll bool) interfaces.Keyboard {
	var kb interfaces.Keyboard
	if showAll {
		kb = languageRows(translate.TargetLanguages(), constants.MoreLanguagesRow)
	} else {
		popular := make([]translate.Language, 0, len(translate.PopularLanguages))
		for _, code := range translate.PopularLanguages {
			popular = append(popular, translate.Language{Code: code, Name: translate.LanguageName(code)})
		}
		kb = languageRows(popular, constants.PopularLanguagesRow)
		kb = append(kb, []interfaces.Button{{Text: "🔽 Show More Languages", Data: CallbackMoreLanguages}})
	}
	return append(kb, BackKeyboard()...)
}

func languageRows(langs []translate.Language, perRow int) interfaces.Keyboard {
	var kb interfaces.Keyboard
	for i := 0; i < len(langs); i += perRow {
		end := min(i+perRow, len(langs))
		row := make([]interfaces.Button, 0, perRow)
		for _, l := range langs[i:end] {
			row = append(row, interfaces.Button{Text: l.Name, Data: CallbackTranslateTo + l.Code})
		}
		kb = append(kb, row)
	}
	return kb
}

// targetFromCallback extracts the language code from a translate_to_ button
func targetFromCallback(data string) (string, bool) {
	if !strings.HasPrefix(data, CallbackTranslateTo) {
		return "", false
	}
	return strings.TrimPrefix(data, CallbackTranslateTo), true
}
