package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/shipment-cli/internal/catalog"
	"github.com/sells-group/shipment-cli/internal/extractor"
	"github.com/sells-group/shipment-cli/internal/pipeline"
	"github.com/sells-group/shipment-cli/internal/rules"
	"github.com/sells-group/shipment-cli/internal/store"
	anthropicpkg "github.com/sells-group/shipment-cli/pkg/anthropic"
)

// pipelineEnv holds the initialized catalog, rule engine, and processor
// needed by the extract/serve commands.
type pipelineEnv struct {
	Catalog   *catalog.Catalog
	Engine    *rules.Engine
	Processor *pipeline.Processor
}

// initPipeline loads the port catalog and dangerous-goods rules and wires
// the requested extractor into a Processor.
func initPipeline(offline bool) (*pipelineEnv, error) {
	cat, err := catalog.Load(cfg.Catalog.Path, catalog.Options{
		FuzzyThreshold: cfg.Catalog.FuzzyThreshold,
		PreferredNames: cfg.Catalog.PreferredNames,
	})
	if err != nil {
		return nil, eris.Wrap(err, "load port catalog")
	}

	ruleSet := rules.DefaultRuleSet()
	if cfg.Rules.PatternFile != "" {
		ruleSet, err = rules.LoadRuleSet(cfg.Rules.PatternFile)
		if err != nil {
			return nil, eris.Wrap(err, "load pattern rules")
		}
	}

	engine := rules.NewEngine(cat, ruleSet)

	var ex extractor.Extractor
	if offline {
		ex = extractor.NewOfflineExtractor(cat)
	} else {
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("anthropic key is required for the claude extractor (set SHIPMENT_ANTHROPIC_KEY or use --offline)")
		}
		ex = extractor.NewClaudeExtractor(anthropicpkg.NewClient(cfg.Anthropic.Key), cfg.Anthropic)
	}

	zap.L().Info("pipeline initialized",
		zap.String("extractor", ex.Name()),
		zap.Int("catalog_ports", cat.Len()),
	)

	return &pipelineEnv{
		Catalog:   cat,
		Engine:    engine,
		Processor: pipeline.New(ex, engine),
	}, nil
}

// initStore opens the configured store and runs migrations. Callers should
// defer Close.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}
