package bot

import (
	"fmt"
	"html"
	"strings"

	"github.com/GSKISBOT/fileconvertor/pkg/translate"
	"github.com/GSKISBOT/fileconvertor/pkg/types"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// Messages are HTML formatted; dynamic values go through html.EscapeString.
const (
	welcomeMessage = "🤖 <b>Welcome to File Converter &amp; Translator Bot!</b>\n\n" +
		"I can help you with:\n" +
		"• Convert any file to DOCX format\n" +
		"• Translate files between different languages\n\n" +
		"Choose an option below to get started:"

	mainMenuMessage = "🤖 <b>File Converter &amp; Translator Bot</b>\n\nChoose an option below:"

	convertModeMessage = "📄 <b>File Conversion Mode</b>\n\n" +
		"Please send me any file you want to convert to DOCX format.\n\n" +
		"<b>Supported formats:</b>\n%s\n" +
		"📎 <i>Just send your file and I'll convert it for you!</i>"

	translateModeMessage = "🌐 <b>File Translation Mode</b>\n\n" +
		"Please send me a file containing text you want to translate.\n\n" +
		"<b>Supported formats:</b>\n%s\n" +
		"I'll auto-detect the source language and let you choose the target language.\n\n" +
		"📎 <i>Send your file to get started!</i>"

	formatBullets = "• PDF documents\n" +
		"• Text files (TXT, RTF)\n" +
		"• Word documents (DOC, DOCX)\n" +
		"• OpenDocument files (ODT)\n" +
		"• Web pages (HTML)\n" +
		"• Images with text (JPG, PNG, etc.)\n"

	accessDeniedMessage = "🚫 <b>Access Denied</b>\n\n" +
		"You are not authorized to use this bot.\n" +
		"Please contact the administrator to get access.\n\n" +
		"Your User ID: <code>%d</code>\n" +
		"Send this ID to the bot administrator."

	accessDeniedShort    = "🚫 Access denied. Please contact administrator."
	selectModeFirst      = "❌ Please select a mode first using /start"
	sendFileNotText      = "📎 Please send a file rather than a text message."
	sendFileFirst        = "❌ Please send a file to translate first."
	processingMessage    = "⏳ Processing your file..."
	translatingMessage   = "⏳ Translating your file..."
	convertDoneMessage   = "✅ Conversion complete!"
	authUnavailable      = "⚠️ Authorization check failed. Please try again later."
	selectLanguageHeader = "🌐 <b>Select Target Language</b>\n\n"
)

func helpMessage(extensions []string, limit int64) string {
	names := make([]string, 0, len(translate.Languages))
	for _, l := range translate.TargetLanguages() {
		names = append(names, l.Name)
	}

	var b strings.Builder
	b.WriteString("🔧 <b>How to use this bot:</b>\n\n")
	b.WriteString("<b>File Conversion:</b>\n")
	b.WriteString("1. Click 'Convert Any File to DOCX'\n")
	b.WriteString("2. Send me any file (PDF, TXT, DOC, etc.)\n")
	b.WriteString("3. Get your converted DOCX file\n\n")
	b.WriteString("<b>File Translation:</b>\n")
	b.WriteString("1. Click 'Translate File to Any Language'\n")
	b.WriteString("2. Send me a file with text content\n")
	b.WriteString("3. Choose target language\n")
	b.WriteString("4. Get your translated DOCX file\n\n")
	b.WriteString("<b>Supported Languages:</b>\n")
	b.WriteString(html.EscapeString(strings.Join(names, ", ")))
	b.WriteString("\n\n<b>File Size Limit:</b> ")
	b.WriteString(utils.FormatSize(limit))
	b.WriteString("\n<b>Supported Formats:</b> ")
	b.WriteString(html.EscapeString(strings.Join(extensions, " ")))
	return b.String()
}

func accessDenied(userID int64) string {
	return fmt.Sprintf(accessDeniedMessage, userID)
}

func languageSelectionMessage(filename string, detection types.Detection) string {
	var b strings.Builder
	b.WriteString(selectLanguageHeader)
	if filename != "" {
		fmt.Fprintf(&b, "📄 %s\n", html.EscapeString(filename))
	}
	if detection.Language != "" {
		fmt.Fprintf(&b, "🔍 Detected language: <b>%s</b>", html.EscapeString(translate.LanguageName(detection.Language)))
		if detection.Confidence > 0 {
			fmt.Fprintf(&b, " (%.0f%%)", detection.Confidence*100)
		}
		b.WriteString("\n\n")
	}
	b.WriteString("Choose the language you want to translate to:")
	return b.String()
}

func translatedCaption(pair *types.LanguagePair) string {
	return fmt.Sprintf("✅ Translated from %s to %s",
		translate.LanguageName(pair.Source), translate.LanguageName(pair.Target))
}

func translationDone(target string) string {
	return fmt.Sprintf("✅ Translation to %s complete!", html.EscapeString(translate.LanguageName(target)))
}

func convertedCaption(name string) string {
	return "✅ Converted " + name
}
