package cli

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/Google-eCarbon/ecarbon/pkg/cli/config"
	"github.com/Google-eCarbon/ecarbon/pkg/utils/logging"
)

func Run(ctx context.Context, args []string, version string) error {
	// .env is optional and only for local development
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logging.Default().Warn("failed to load .env file", "error", err.Error())
	}

	var loggerCfg config.Logger
	var closer func()

	app := &cli.Command{
		Name:    "ecarbon",
		Usage:   "Web sustainability guideline retrieval and evaluation engine",
		Version: version,
		Flags:   loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			logging.Default().Info("Starting ecarbon", "logger", loggerCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdEvaluate(),
			cmdSearch(),
			cmdMigrate(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
