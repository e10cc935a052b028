package category

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for fallback classification.
const DefaultModelName = "gemini-2.0-flash"

// GeminiFallback implements Fallback using the Gemini API. The model is asked
// to answer with a bare taxonomy label; anything else is handled by the
// caller's Normalize step.
type GeminiFallback struct {
	client *genai.Client
	model  string
}

// NewGeminiFallback creates a Gemini-backed fallback classifier. The API key
// is read from the environment by the genai client when apiKey is empty.
func NewGeminiFallback(ctx context.Context, apiKey string) (*GeminiFallback, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiFallback{client: client, model: DefaultModelName}, nil
}

// SetModel overrides the model name, e.g. to pin a specific revision.
func (g *GeminiFallback) SetModel(model string) {
	g.model = model
}

// fewShot calibrates the model on the expected answer format. The examples
// match the ones the taxonomy was tuned against.
var fewShot = []struct{ description, label string }{
	{"PAYMENT RECIEVED FROM ABC CORP", "Income:Salary"},
	{"LULU HYPERMARKET SPENT", "Food:Groceries"},
	{"INVESTMENT IN MUTUAL FUND", "Investments:MutualFund"},
	{"RENT FOR APARTMENT", "Bills:Rent"},
	{"UPI TO DELHI PUBLIC SCHOOL", "Education:Tuition"},
}

// Classify sends the description to Gemini and returns the raw label text.
func (g *GeminiFallback) Classify(ctx context.Context, description string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: buildPrompt(description)}},
		},
	}

	resp, err := WithRetry(ctx, DefaultFallbackRetryConfig, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return cleanModelText(text), nil
}

func buildPrompt(description string) string {
	var b strings.Builder
	b.WriteString("You are an expert financial transaction classifier. ")
	b.WriteString("Classify a given transaction description into one and only one of the following granular categories: ")
	for i, l := range Taxonomy {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(l))
	}
	b.WriteString(".\nEnsure your response is ONLY the category name, without any other text or explanation.\n\nExamples:\n")
	for _, ex := range fewShot {
		fmt.Fprintf(&b, "%s -> %s\n", ex.description, ex.label)
	}
	fmt.Fprintf(&b, "\nTransaction: %s", description)
	return b.String()
}

// cleanModelText strips Markdown fences and surrounding quotes the model
// sometimes adds despite instructions.
func cleanModelText(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.Trim(s, "\"'`")
	// Keep only the first line; some models append an explanation anyway.
	if idx := strings.IndexByte(s, '\n'); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
