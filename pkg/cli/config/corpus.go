package config

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
)

// Corpus holds CLI flags for the guideline corpus source
type Corpus struct {
	path string
}

// Flags returns CLI flags for corpus configuration
func (c *Corpus) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "corpus",
			Usage:       "Path to the guideline corpus JSON file (required)",
			Sources:     cli.EnvVars("ECARBON_CORPUS"),
			Destination: &c.path,
		},
	}
}

// LogAttrs returns log attributes for the corpus configuration
func (c *Corpus) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("path", c.path),
	}
}

// Load reads and validates the guideline document from the configured
// path.
func (c *Corpus) Load() (*model.GuidelineDocument, error) {
	if c.path == "" {
		return nil, goerr.New("corpus is required")
	}

	raw, err := os.ReadFile(c.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read corpus file", goerr.V("path", c.path))
	}

	var doc model.GuidelineDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, goerr.Wrap(err, "failed to parse corpus file", goerr.V("path", c.path))
	}

	if err := doc.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid corpus", goerr.V("path", c.path))
	}

	return &doc, nil
}
