package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/Google-eCarbon/ecarbon/pkg/cli/config"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
	"github.com/Google-eCarbon/ecarbon/pkg/repository/memory"
)

func cmdSearch() *cli.Command {
	var query string
	var topK int
	var appCfg config.AppConfig
	var corpusCfg config.Corpus
	var geminiCfg config.Gemini

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "query",
			Aliases:     []string{"q"},
			Usage:       "Search query (required)",
			Required:    true,
			Destination: &query,
		},
		&cli.IntFlag{
			Name:        "top-k",
			Aliases:     []string{"k"},
			Usage:       "Maximum number of guidelines to return",
			Value:       5,
			Destination: &topK,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, corpusCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:    "search",
		Usage:   "Search the guideline corpus by semantic similarity",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			tuning, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load tuning profile")
			}

			uc, err := buildUseCases(ctx, tuning, &corpusCfg, &geminiCfg, memory.New())
			if err != nil {
				return err
			}

			results, err := uc.SearchGuidelines(ctx, query, topK)
			if err != nil {
				return goerr.Wrap(err, "search failed", goerr.V("query", query))
			}

			bold := color.New(color.Bold)
			cyan := color.New(color.FgCyan)

			bold.Printf("%d guideline(s) for %q\n\n", len(results), query)
			for _, r := range results {
				cyan.Printf("%2d. [%s] %s", r.RelevanceRank, r.Guideline.FullID, r.Guideline.Title)
				fmt.Printf("  (similarity: %.3f, category: %s)\n", r.Similarity, r.Guideline.CategoryName)
				for _, rc := range r.Guideline.RelatedChunks {
					fmt.Printf("      %s (%.3f)\n", rc.Type, model.Similarity(rc.Score))
				}
			}

			return nil
		},
	}
}
