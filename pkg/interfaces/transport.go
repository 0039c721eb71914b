package interfaces

import "context"

// Button is one inline keyboard button
type Button struct {
	Text string `json:"text"`
	Data string `json:"callback_data"`
}

// Keyboard is rows of inline buttons
type Keyboard [][]Button

// ChatTransport is the outbound side of a chat platform
type ChatTransport interface {
	// SendMessage posts a new message and returns its id
	SendMessage(ctx context.Context, chatID int64, text string, keyboard Keyboard) (int64, error)

	// EditMessage replaces the text and keyboard of an existing message
	EditMessage(ctx context.Context, chatID, messageID int64, text string, keyboard Keyboard) error

	// AnswerCallback acknowledges a button press
	AnswerCallback(ctx context.Context, callbackID string) error

	// SendDocument uploads a file to the chat
	SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) error

	// DownloadFile fetches an uploaded file's bytes by platform file id
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}
