package app

import (
	"go.uber.org/zap"

	"github.com/sandeepkv93/vtodo/internal/commands"
	"github.com/sandeepkv93/vtodo/internal/normalize"
	"github.com/sandeepkv93/vtodo/internal/observe"
)

// NewPipeline builds the normalizer and parser for lang. The segmenter is
// seeded with the command vocabulary so keywords always cut as single
// tokens. Converter or dictionary failures degrade to the fallbacks and
// are logged.
func NewPipeline(lang string, logger *zap.Logger, metrics *observe.Metrics) (*normalize.Normalizer, *commands.Parser) {
	if logger == nil {
		logger = zap.NewNop()
	}
	vocab := commands.VocabularyFor(lang)

	seg, err := normalize.SegmenterFor(lang, vocab.Words())
	if err != nil {
		logger.Warn("app: segmenter dictionary unavailable, using greedy segmentation", zap.Error(err))
	}
	conv, err := normalize.ConverterFor(lang)
	if err != nil {
		logger.Warn("app: script converter unavailable", zap.Error(err))
	}

	n := normalize.New(
		normalize.WithLexicon(normalize.LexiconFor(lang)),
		normalize.WithSegmenter(seg),
		normalize.WithConverter(conv),
		normalize.WithLogger(logger),
		normalize.WithMetrics(metrics),
	)
	return n, commands.NewParser(vocab)
}
