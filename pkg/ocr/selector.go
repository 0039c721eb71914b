package ocr

import (
	"fmt"

	"github.com/GSKISBOT/fileconvertor/pkg/config"
	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
	"github.com/GSKISBOT/fileconvertor/pkg/ocr/engines"
	"github.com/GSKISBOT/fileconvertor/pkg/types"
)

// autoOrder is the preference order for the auto strategy
var autoOrder = []types.OCRStrategy{
	types.OCRStrategyTesseract,
	types.OCRStrategyLLMCaller,
}

// DefaultOCRSelector implements OCR tool selection
type DefaultOCRSelector struct {
	logger  *logger.Logger
	engines map[types.OCRStrategy]interfaces.OCREngine
}

// NewOCRSelector creates a selector with the built-in engines registered
func NewOCRSelector(cfg *config.Config, log *logger.Logger) *DefaultOCRSelector {
	selector := &DefaultOCRSelector{
		logger:  log,
		engines: make(map[types.OCRStrategy]interfaces.OCREngine),
	}

	selector.Register(types.OCRStrategyTesseract, engines.NewTesseractEngine(cfg, log))
	selector.Register(types.OCRStrategyLLMCaller, engines.NewLLMCallerEngine(cfg, log))

	return selector
}

// Register adds or replaces the engine for a strategy
func (s *DefaultOCRSelector) Register(strategy types.OCRStrategy, engine interfaces.OCREngine) {
	s.engines[strategy] = engine
}

// SelectOCRStrategy returns the engine for a strategy.
// The auto strategy picks the first available engine in preference order.
func (s *DefaultOCRSelector) SelectOCRStrategy(strategy types.OCRStrategy) (interfaces.OCREngine, error) {
	if strategy == types.OCRStrategyAuto || strategy == "" {
		for _, candidate := range autoOrder {
			if engine, ok := s.engines[candidate]; ok && engine.IsAvailable() {
				s.logger.Debug("Auto-selected OCR tool: %s", engine.GetDescription())
				return engine, nil
			}
		}
		return nil, fmt.Errorf("no OCR engines are available on this system")
	}

	engine, exists := s.engines[strategy]
	if !exists {
		return nil, fmt.Errorf("unknown OCR tool: %s", strategy)
	}

	if !engine.IsAvailable() {
		return nil, fmt.Errorf("OCR tool '%s' is not available on this system", engine.Name())
	}

	s.logger.Debug("Selected OCR tool: %s", engine.GetDescription())
	return engine, nil
}

// GetAvailableStrategies returns all available OCR strategies in preference order
func (s *DefaultOCRSelector) GetAvailableStrategies() []types.OCRStrategy {
	var available []types.OCRStrategy
	for _, strategy := range autoOrder {
		if engine, ok := s.engines[strategy]; ok && engine.IsAvailable() {
			available = append(available, strategy)
		}
	}
	return available
}
