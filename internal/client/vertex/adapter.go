// Package vertexclient extracts expenses with Gemini models on Vertex AI.
package vertexclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"finbot/internal/extraction"
)

// Adapter owns the Vertex AI client and the extraction model settings.
type Adapter struct {
	client   *genai.Client
	model    string
	currency string
	log      *zap.SugaredLogger
}

// NewAdapter connects to Vertex AI. credentialsFile may be empty to use
// application default credentials.
func NewAdapter(ctx context.Context, log *zap.SugaredLogger, projectID, region, model, currency, credentialsFile string) (*Adapter, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := genai.NewClient(ctx, projectID, region, opts...)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		client:   client,
		model:    model,
		currency: currency,
		log:      log,
	}, nil
}

// Close releases the underlying client.
func (a *Adapter) Close() error {
	err := a.client.Close()
	if err != nil && a.log != nil {
		a.log.Errorw("vertex adapter close failed", "error", err)
	}
	return err
}

// Extract asks the model for the expenses in transcript, resolving relative
// dates against reference.
func (a *Adapter) Extract(ctx context.Context, transcript string, reference time.Time) (extraction.Result, error) {
	if a.model == "" {
		return nil, fmt.Errorf("vertex model is required")
	}

	model := a.client.GenerativeModel(a.model)
	configureModel(model)

	prompt := extraction.BuildPrompt(transcript, reference, a.currency)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("vertex generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("vertex returned no text")
	}
	return extraction.Parse(text, reference)
}

func configureModel(model *genai.GenerativeModel) {
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = responseSchema()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(b.String())
}

func expenseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"description":         {Type: genai.TypeString, Nullable: true},
			"amount":              {Type: genai.TypeNumber, Nullable: true},
			"date":                {Type: genai.TypeString, Nullable: true, Description: "YYYY-MM-DD"},
			"category_suggestion": {Type: genai.TypeString, Nullable: true},
			"is_essential":        {Type: genai.TypeBoolean, Nullable: true},
			"confidence":          {Type: genai.TypeNumber, Nullable: true},
		},
	}
}

// responseSchema mirrors the shapes extraction.Parse accepts: a single
// expense at the top level, a list under "expenses", or an error code.
func responseSchema() *genai.Schema {
	schema := expenseSchema()
	schema.Properties["expenses"] = &genai.Schema{
		Type:     genai.TypeArray,
		Nullable: true,
		Items:    expenseSchema(),
	}
	schema.Properties["error"] = &genai.Schema{
		Type:     genai.TypeString,
		Nullable: true,
		Enum:     []string{"NOT_DETECTED"},
	}
	return schema
}
