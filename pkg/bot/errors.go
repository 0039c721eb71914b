package bot

import (
	"fmt"
	"html"
	"strings"

	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// UserMessageForError maps a workflow failure to the text shown to the user
func UserMessageForError(err error, supported []string) string {
	appErr, ok := utils.AsAppError(err)
	if !ok {
		if utils.GetErrorType(err) == utils.ErrorTypeTimeout {
			return "⌛ Processing took too long. Please try a smaller file."
		}
		return "❌ Error processing file. Please try again later."
	}

	switch appErr.Type {
	case utils.ErrorTypeSizeLimit:
		actual, _ := appErr.Context[utils.ContextActual].(int64)
		limit, _ := appErr.Context[utils.ContextLimit].(int64)
		return fmt.Sprintf("❌ File too large! Maximum size is %s.\nYour file: %s",
			utils.FormatSize(limit), utils.FormatSize(actual))
	case utils.ErrorTypeUnsupported:
		return fmt.Sprintf("❌ Unsupported file format: %s\nSupported formats: %s",
			html.EscapeString(appErr.ContextString(utils.ContextExtension)),
			html.EscapeString(strings.Join(supported, " ")))
	case utils.ErrorTypeExtraction:
		return fmt.Sprintf("❌ Could not read text from this file: %s", html.EscapeString(appErr.Message))
	case utils.ErrorTypeTranslation:
		return "❌ Translation failed. Please try again."
	case utils.ErrorTypeTimeout:
		return "⌛ Processing took too long. Please try a smaller file."
	case utils.ErrorTypeValidation:
		return "❌ " + html.EscapeString(appErr.Message)
	default:
		return "❌ Error processing file. Please try again later."
	}
}
