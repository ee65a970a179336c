package verdict

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/interfaces"
	"github.com/Google-eCarbon/ecarbon/pkg/domain/model"
)

// client judges guideline compliance via an LLM session with a
// structured JSON response.
type client struct {
	llmClient gollem.LLMClient
}

var _ interfaces.VerdictClient = (*client)(nil)

// New creates a verdict client with the provided LLM client.
func New(llmClient gollem.LLMClient) (interfaces.VerdictClient, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}
	return &client{llmClient: llmClient}, nil
}

// Judge evaluates the chunk text against the guideline.
func (c *client) Judge(ctx context.Context, guideline *model.Guideline, chunk string) (*model.Verdict, error) {
	session, err := c.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(buildResponseSchema()),
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buildUserPrompt(guideline, chunk)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content from LLM")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("empty LLM response")
	}

	var v model.Verdict
	if err := json.Unmarshal([]byte(resp.Texts[0]), &v); err != nil {
		return nil, goerr.Wrap(err, "failed to parse LLM response", goerr.V("response", resp.Texts[0]))
	}
	return &v, nil
}

const systemPrompt = `You are a web sustainability auditor. Your task is to judge whether a fragment of a website violates a given Web Sustainability Guideline.

## Instructions:

1. Read the guideline, its intent, and its success criteria.
2. Examine the website content fragment.
3. Decide whether the fragment violates the guideline. Report a violation only when the fragment gives concrete evidence; absence of evidence is not a violation.
4. When you report a violation, explain what violates the guideline and suggest a concrete fix.`

func buildUserPrompt(g *model.Guideline, chunk string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## Guideline: %s\n\n", g.Title)
	if g.Intent != "" {
		fmt.Fprintf(&sb, "**Intent:** %s\n\n", g.Intent)
	}

	if len(g.Criteria) > 0 {
		sb.WriteString("**Success criteria:**\n")
		for _, c := range g.Criteria {
			fmt.Fprintf(&sb, "- %s: %s\n", c.Title, c.Description)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Website content fragment:\n\n")
	sb.WriteString(chunk)
	sb.WriteString("\n")

	return sb.String()
}

func buildResponseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "GuidelineVerdict",
		Description: "Judgement of one content fragment against one guideline",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"violation": {
				Type:        gollem.TypeBoolean,
				Description: "True when the fragment violates the guideline",
				Required:    true,
			},
			"explanation": {
				Type:        gollem.TypeString,
				Description: "What in the fragment violates or satisfies the guideline",
				Required:    true,
			},
			"suggested_fix": {
				Type:        gollem.TypeString,
				Description: "A concrete remediation when a violation is reported",
			},
		},
	}
}
