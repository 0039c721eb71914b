package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GSKISBOT/fileconvertor/pkg/types"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// TranslationJob walks one translate-mode request through
// AwaitingFile -> AwaitingLanguageSelection -> Translating -> Done | Failed.
// Done and Failed are terminal.
type TranslationJob struct {
	mu        sync.Mutex
	processor *DefaultFileProcessor
	state     types.JobState
	source    *types.SourceFile
	text      string
	detection types.Detection
	pair      *types.LanguagePair
	output    []byte
	err       error
	busy      bool
	updatedAt time.Time
}

// NewTranslationJob creates a job waiting for its file
func NewTranslationJob(processor *DefaultFileProcessor) *TranslationJob {
	return &TranslationJob{
		processor: processor,
		state:     types.StateAwaitingFile,
		updatedAt: time.Now(),
	}
}

// State returns the current state
func (j *TranslationJob) State() types.JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Source returns the attached file, if any
func (j *TranslationJob) Source() *types.SourceFile {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.source
}

// Detection returns the detected source language
func (j *TranslationJob) Detection() types.Detection {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.detection
}

// Result returns the rendered document and language pair once Done
func (j *TranslationJob) Result() ([]byte, *types.LanguagePair) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.output, j.pair
}

// Err returns the failure that moved the job to Failed
func (j *TranslationJob) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// UpdatedAt returns the time of the last transition
func (j *TranslationJob) UpdatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.updatedAt
}

// Attach extracts the file's text and detects its language
func (j *TranslationJob) Attach(ctx context.Context, src *types.SourceFile) error {
	if err := j.begin(types.StateAwaitingFile, types.StateAwaitingFile); err != nil {
		return err
	}

	result, err := j.processor.ExtractText(ctx, src)
	if err != nil {
		return j.Fail(err)
	}

	detection, err := j.processor.DetectLanguage(ctx, result.Text)
	if err != nil {
		return j.Fail(err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state.Terminal() {
		return j.wrongState(types.StateAwaitingFile)
	}
	j.source = src
	j.text = result.Text
	j.detection = detection
	j.transition(types.StateAwaitingLanguageSelection)
	return nil
}

// SelectLanguage translates the attached text into target and renders the document
func (j *TranslationJob) SelectLanguage(ctx context.Context, target string) ([]byte, *types.LanguagePair, error) {
	if err := j.processor.validateTarget(target); err != nil {
		return nil, nil, err
	}
	if err := j.begin(types.StateAwaitingLanguageSelection, types.StateTranslating); err != nil {
		return nil, nil, err
	}

	j.mu.Lock()
	if j.source == nil {
		defer j.mu.Unlock()
		return nil, nil, j.wrongState(types.StateTranslating)
	}
	name, text, detection := j.source.Name, j.text, j.detection
	j.mu.Unlock()

	data, pair, err := j.processor.TranslateText(ctx, name, text, detection, target)
	if err != nil {
		return nil, nil, j.Fail(err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state != types.StateTranslating {
		return nil, nil, j.wrongState(types.StateTranslating)
	}
	j.output = data
	j.pair = pair
	j.text = ""
	j.transition(types.StateDone)
	return data, pair, nil
}

// Fail moves a non-terminal job to Failed and returns err
func (j *TranslationJob) Fail(err error) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.state.Terminal() {
		j.err = err
		j.release()
		j.transition(types.StateFailed)
	}
	return err
}

// Discard drops the held file and text. A job discarded before it
// finished ends up Failed.
func (j *TranslationJob) Discard() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.release()
	j.output = nil
	if !j.state.Terminal() {
		j.err = context.Canceled
		j.transition(types.StateFailed)
	}
}

// begin checks the expected state and moves to next
func (j *TranslationJob) begin(expected, next types.JobState) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.busy || j.state != expected {
		return j.wrongState(expected)
	}
	j.transition(next)
	j.busy = true
	return nil
}

func (j *TranslationJob) transition(next types.JobState) {
	j.state = next
	j.busy = false
	j.updatedAt = time.Now()
}

func (j *TranslationJob) release() {
	j.source = nil
	j.text = ""
}

func (j *TranslationJob) wrongState(expected types.JobState) error {
	if j.busy && j.state == expected {
		return utils.NewValidationError("translation job is busy", nil).WithContext("state", string(j.state))
	}
	return utils.NewValidationError(fmt.Sprintf("translation job is %s, expected %s", j.state, expected), nil).
		WithContext("state", string(j.state))
}
