package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Google-eCarbon/ecarbon/pkg/cli/config"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/interfaces"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
	"github.com/Google-eCarbon/ecarbon/pkg/service/chunker"
	"github.com/Google-eCarbon/ecarbon/pkg/service/embedding"
	"github.com/Google-eCarbon/ecarbon/pkg/service/fetcher"
	"github.com/Google-eCarbon/ecarbon/pkg/service/vectorindex"
	"github.com/Google-eCarbon/ecarbon/pkg/service/verdict"
	"github.com/Google-eCarbon/ecarbon/pkg/usecase"
	"github.com/Google-eCarbon/ecarbon/pkg/utils/logging"
)

// buildUseCases assembles the full evaluation stack from CLI
// configuration and loads the guideline corpus into the vector index.
func buildUseCases(
	ctx context.Context,
	tuning *config.Tuning,
	corpusCfg *config.Corpus,
	geminiCfg *config.Gemini,
	repo interfaces.EvaluationRepository,
) (*usecase.UseCases, error) {
	llmClient, err := geminiCfg.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize Gemini client")
	}

	verdictClient, err := verdict.New(llmClient)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize verdict client")
	}

	fetchOpts := []fetcher.Option{}
	if tuning.FetchTimeout() > 0 {
		fetchOpts = append(fetchOpts, fetcher.WithTimeout(tuning.FetchTimeout()))
	}
	if tuning.UserAgent != "" {
		fetchOpts = append(fetchOpts, fetcher.WithUserAgent(tuning.UserAgent))
	}

	ucOpts := []usecase.Option{
		usecase.WithFetcher(fetcher.New(fetchOpts...)),
		usecase.WithVerdictClient(verdictClient),
		usecase.WithChunkMode(tuning.Mode()),
		usecase.WithTopK(tuning.TopK),
	}
	if tuning.ChunkSize > 0 {
		ucOpts = append(ucOpts, usecase.WithHTMLChunker(&chunker.HTMLChunker{ChunkSize: tuning.ChunkSize}))
	}

	uc := usecase.New(
		embedding.New(llmClient),
		vectorindex.New(model.EmbeddingDimension),
		repo,
		ucOpts...,
	)

	doc, err := corpusCfg.Load()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load corpus")
	}
	if err := uc.ReloadCorpus(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to index corpus")
	}

	logging.Default().Info("Corpus indexed",
		"title", doc.Title,
		"categories", len(doc.Categories),
		"chunk_mode", tuning.Mode(),
	)

	return uc, nil
}
