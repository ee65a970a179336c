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

func cmdEvaluate() *cli.Command {
	var targetURL string
	var appCfg config.AppConfig
	var corpusCfg config.Corpus
	var geminiCfg config.Gemini

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "url",
			Usage:       "URL of the website to evaluate (required)",
			Required:    true,
			Destination: &targetURL,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, corpusCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:    "evaluate",
		Aliases: []string{"e"},
		Usage:   "Evaluate a website against the guideline corpus and print the report",
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

			result, err := uc.EvaluateWebsite(ctx, targetURL)
			if err != nil {
				return goerr.Wrap(err, "evaluation failed", goerr.V("url", targetURL))
			}

			printEvaluationResult(result)
			return nil
		},
	}
}

func printEvaluationResult(result *model.EvaluationResult) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	bold.Printf("Evaluation: %s\n", result.URL)

	scoreColor := green
	switch {
	case result.ComplianceScore < 50:
		scoreColor = red
	case result.ComplianceScore < 80:
		scoreColor = yellow
	}
	fmt.Print("Compliance: ")
	scoreColor.Printf("%.1f%%\n\n", result.ComplianceScore)

	for _, g := range result.Guidelines {
		if len(g.Violations) == 0 {
			green.Printf("  PASS  ")
		} else {
			red.Printf("  FAIL  ")
		}
		fmt.Printf("[%s] %s (impact: %s, effort: %s, score: %.2f)\n",
			g.FullID, g.Title, g.Impact, g.Effort, g.Score)

		for _, v := range g.Violations {
			yellow.Printf("        - %s\n", v.Explanation)
			if v.SuggestedFix != "" {
				fmt.Printf("          fix: %s\n", v.SuggestedFix)
			}
		}
	}

	if result.Structure != nil {
		fmt.Printf("\nStructure: %d tags, %d images (%d with alt), %d links, %d scripts\n",
			result.Structure.TotalTags,
			result.Structure.TotalImages,
			result.Structure.ImagesWithAlt,
			result.Structure.TotalLinks,
			result.Structure.TotalScripts,
		)
	}
}
