package bot

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/GSKISBOT/fileconvertor/pkg/auth"
	"github.com/GSKISBOT/fileconvertor/pkg/constants"
	"github.com/GSKISBOT/fileconvertor/pkg/core"
	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
	"github.com/GSKISBOT/fileconvertor/pkg/types"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// Bot routes updates to the convert and translate workflows
type Bot struct {
	transport  interfaces.ChatTransport
	processor  *core.DefaultFileProcessor
	authorizer *auth.Authorizer
	sessions   *SessionStore
	logger     *logger.Logger
}

// New creates a bot
func New(transport interfaces.ChatTransport, processor *core.DefaultFileProcessor, authorizer *auth.Authorizer, log *logger.Logger) *Bot {
	return &Bot{
		transport:  transport,
		processor:  processor,
		authorizer: authorizer,
		sessions:   NewSessionStore(),
		logger:     log,
	}
}

// Sessions exposes the session store
func (b *Bot) Sessions() *SessionStore {
	return b.sessions
}

// Run handles updates until ctx is done or updates is closed. Each update
// gets its own goroutine; Run waits for them before returning.
func (b *Bot) Run(ctx context.Context, updates <-chan Update) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	sweep := time.NewTicker(constants.SessionSweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sweep.C:
			if n := b.sessions.Sweep(constants.SessionTTL); n > 0 {
				b.logger.Debug("Dropped %d idle sessions", n)
			}
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.HandleUpdate(ctx, upd)
			}()
		}
	}
}

// HandleUpdate processes one update. Failures are reported to the user and logged.
func (b *Bot) HandleUpdate(ctx context.Context, upd Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Panic handling update %d: %v", upd.ID, r)
		}
	}()

	log := b.logger.With("user_id", upd.User.ID, "update_id", upd.ID)

	allowed, err := b.authorizer.IsAuthorized(ctx, strconv.FormatInt(upd.User.ID, 10))
	if err != nil {
		log.Error("Authorization check failed: %v", err)
		b.deny(ctx, upd, authUnavailable)
		return
	}
	if !allowed {
		log.Info("Denied access to user %d", upd.User.ID)
		if upd.Command() == "start" {
			b.send(ctx, upd.ChatID, accessDenied(upd.User.ID), nil)
			return
		}
		b.deny(ctx, upd, accessDeniedShort)
		return
	}

	switch {
	case upd.Callback != nil:
		b.handleCallback(ctx, log, upd)
	case upd.Document != nil:
		b.handleFile(ctx, log, upd, *upd.Document)
	case upd.Photo != nil:
		photo := *upd.Photo
		if photo.FileName == "" {
			photo.FileName = fmt.Sprintf("photo_%d.jpg", upd.MessageID)
		}
		b.handleFile(ctx, log, upd, photo)
	case upd.Command() == "start":
		b.send(ctx, upd.ChatID, welcomeMessage, MainMenuKeyboard())
	case upd.Command() == "help":
		b.send(ctx, upd.ChatID, b.help(), BackKeyboard())
	case upd.Text != "":
		if b.sessions.Mode(upd.User.ID) == types.ModeNone {
			b.send(ctx, upd.ChatID, selectModeFirst, HomeKeyboard())
			return
		}
		b.send(ctx, upd.ChatID, sendFileNotText, BackKeyboard())
	}
}

func (b *Bot) deny(ctx context.Context, upd Update, text string) {
	if upd.Callback != nil {
		b.answer(ctx, upd.Callback.ID)
		b.edit(ctx, upd.ChatID, upd.Callback.MessageID, text, nil)
		return
	}
	b.send(ctx, upd.ChatID, text, nil)
}

func (b *Bot) handleCallback(ctx context.Context, log *logger.Logger, upd Update) {
	cb := upd.Callback
	b.answer(ctx, cb.ID)

	switch cb.Data {
	case CallbackConvert:
		b.sessions.SetMode(upd.User.ID, types.ModeConvert)
		b.edit(ctx, upd.ChatID, cb.MessageID, fmt.Sprintf(convertModeMessage, formatBullets), BackKeyboard())
	case CallbackTranslate:
		b.sessions.SetMode(upd.User.ID, types.ModeTranslate)
		b.edit(ctx, upd.ChatID, cb.MessageID, fmt.Sprintf(translateModeMessage, formatBullets), BackKeyboard())
	case CallbackHelp:
		b.edit(ctx, upd.ChatID, cb.MessageID, b.help(), BackKeyboard())
	case CallbackMainMenu:
		b.edit(ctx, upd.ChatID, cb.MessageID, mainMenuMessage, MainMenuKeyboard())
	case CallbackMoreLanguages:
		job := b.sessions.Job(upd.User.ID)
		if job == nil || job.State() != types.StateAwaitingLanguageSelection {
			b.edit(ctx, upd.ChatID, cb.MessageID, sendFileFirst, HomeKeyboard())
			return
		}
		name := ""
		if src := job.Source(); src != nil {
			name = src.Name
		}
		b.edit(ctx, upd.ChatID, cb.MessageID, languageSelectionMessage(name, job.Detection()), LanguageKeyboard(true))
	default:
		if target, ok := targetFromCallback(cb.Data); ok {
			b.translate(ctx, log, upd, target)
			return
		}
		log.Warn("Unknown callback data %q", cb.Data)
	}
}

func (b *Bot) handleFile(ctx context.Context, log *logger.Logger, upd Update, file Attachment) {
	mode := b.sessions.Mode(upd.User.ID)
	if mode == types.ModeNone {
		b.send(ctx, upd.ChatID, selectModeFirst, HomeKeyboard())
		return
	}

	// platform-reported size is checked before downloading
	if limit := b.processor.MaxFileSize(); file.Size > limit {
		b.send(ctx, upd.ChatID, UserMessageForError(utils.NewSizeLimitError(file.Size, limit), nil), nil)
		return
	}

	statusID, err := b.transport.SendMessage(ctx, upd.ChatID, processingMessage, nil)
	if err != nil {
		log.Error("Failed to send status message: %v", err)
		return
	}

	data, err := b.transport.DownloadFile(ctx, file.FileID)
	if err != nil {
		log.Error("Download of %s failed: %v", file.FileName, err)
		if _, ok := utils.AsAppError(err); !ok {
			err = utils.WrapError(err, utils.ErrorTypeNetwork, "download failed")
		}
		b.edit(ctx, upd.ChatID, statusID, UserMessageForError(err, nil), nil)
		return
	}
	src := types.NewSourceFile(file.FileName, data)
	log.Info("Received %s (%s) in %s mode", src.Name, utils.FormatSize(src.Size), mode)

	switch mode {
	case types.ModeConvert:
		b.convert(ctx, log, upd, statusID, src)
	case types.ModeTranslate:
		b.attach(ctx, log, upd, statusID, src)
	}
}

func (b *Bot) convert(ctx context.Context, log *logger.Logger, upd Update, statusID int64, src *types.SourceFile) {
	out, err := b.processor.ConvertDocument(ctx, src)
	if err != nil {
		log.Warn("Conversion of %s failed: %v", src.Name, err)
		b.edit(ctx, upd.ChatID, statusID, b.errorMessage(err), BackKeyboard())
		return
	}

	name := core.ConvertedFileName(src.Name)
	if err := b.transport.SendDocument(ctx, upd.ChatID, name, out, convertedCaption(src.Name)); err != nil {
		log.Error("Failed to deliver %s: %v", name, err)
		b.edit(ctx, upd.ChatID, statusID, UserMessageForError(err, nil), BackKeyboard())
		return
	}
	b.edit(ctx, upd.ChatID, statusID, convertDoneMessage, MainMenuKeyboard())
}

func (b *Bot) attach(ctx context.Context, log *logger.Logger, upd Update, statusID int64, src *types.SourceFile) {
	job := core.NewTranslationJob(b.processor)
	b.sessions.ReplaceJob(upd.User.ID, job)

	if err := job.Attach(ctx, src); err != nil {
		log.Warn("Preparing %s for translation failed: %v", src.Name, err)
		b.sessions.ClearJob(upd.User.ID, job)
		b.edit(ctx, upd.ChatID, statusID, b.errorMessage(err), BackKeyboard())
		return
	}

	b.edit(ctx, upd.ChatID, statusID, languageSelectionMessage(src.Name, job.Detection()), LanguageKeyboard(false))
}

func (b *Bot) translate(ctx context.Context, log *logger.Logger, upd Update, target string) {
	chatID, messageID := upd.ChatID, upd.Callback.MessageID

	job := b.sessions.Job(upd.User.ID)
	var src *types.SourceFile
	if job != nil && job.State() == types.StateAwaitingLanguageSelection {
		src = job.Source()
	}
	if src == nil {
		b.edit(ctx, chatID, messageID, sendFileFirst, HomeKeyboard())
		return
	}

	b.edit(ctx, chatID, messageID, translatingMessage, nil)

	out, pair, err := job.SelectLanguage(ctx, target)
	b.sessions.ClearJob(upd.User.ID, job)
	if err != nil {
		log.Warn("Translation to %s failed: %v", target, err)
		b.edit(ctx, chatID, messageID, b.errorMessage(err), BackKeyboard())
		return
	}

	name := core.TranslatedFileName(src.Name, target)
	if err := b.transport.SendDocument(ctx, chatID, name, out, translatedCaption(pair)); err != nil {
		log.Error("Failed to deliver %s: %v", name, err)
		b.edit(ctx, chatID, messageID, UserMessageForError(err, nil), BackKeyboard())
		return
	}
	job.Discard()
	b.edit(ctx, chatID, messageID, translationDone(target), MainMenuKeyboard())
}

func (b *Bot) help() string {
	return helpMessage(b.processor.Factory().SupportedExtensions(), b.processor.MaxFileSize())
}

func (b *Bot) errorMessage(err error) string {
	return UserMessageForError(err, b.processor.Factory().SupportedExtensions())
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, kb interfaces.Keyboard) {
	if _, err := b.transport.SendMessage(ctx, chatID, text, kb); err != nil {
		b.logger.Error("SendMessage to %d failed: %v", chatID, err)
	}
}

func (b *Bot) edit(ctx context.Context, chatID, messageID int64, text string, kb interfaces.Keyboard) {
	if err := b.transport.EditMessage(ctx, chatID, messageID, text, kb); err != nil {
		b.logger.Error("EditMessage %d in %d failed: %v", messageID, chatID, err)
	}
}

func (b *Bot) answer(ctx context.Context, callbackID string) {
	if err := b.transport.AnswerCallback(ctx, callbackID); err != nil {
		b.logger.Debug("AnswerCallback failed: %v", err)
	}
}
