package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"history-graph/internal/logger"
	"history-graph/internal/models"

	"github.com/invopop/jsonschema"
	"github.com/ollama/ollama/api"
)

const extractionPrompt = `Extract every named entity from the historical passage below.
Return JSON of the form {"entities":[{"text":"...","type":"..."}]} listing
entities in the order they appear. Use the exact span text and OntoNotes
labels: GPE for countries, states and cities, ORG for organizations, PERSON
for people, and NORP, LOC, DATE or EVENT where they apply.

Passage:
%s`

// OllamaExtractor asks an Ollama-hosted model for entity mentions.
type OllamaExtractor struct {
	model  string
	format json.RawMessage
	client *api.Client
}

type NewOllamaExtractorParams struct {
	Model   string
	BaseURL string
	ApiKey  string
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewOllamaExtractor connects to BaseURL, or OLLAMA_HOST's default when empty.
func NewOllamaExtractor(params NewOllamaExtractorParams) (*OllamaExtractor, error) {
	if params.Model == "" {
		return nil, fmt.Errorf("ollama extractor: model is required")
	}

	var u *url.URL
	if params.BaseURL != "" {
		var err error
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama base url: %w", err)
		}
	}

	httpClient := http.DefaultClient
	if params.ApiKey != "" {
		httpClient = &http.Client{
			Transport: &headerTransport{
				headers: map[string]string{"Authorization": "Bearer " + params.ApiKey},
				rt:      http.DefaultTransport,
			},
		}
	}

	var client *api.Client
	if u != nil {
		client = api.NewClient(u, httpClient)
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
	}

	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	format, err := json.Marshal(reflector.Reflect(&entityList{}))
	if err != nil {
		return nil, fmt.Errorf("failed to build response schema: %w", err)
	}

	return &OllamaExtractor{
		model:  params.Model,
		format: format,
		client: client,
	}, nil
}

func (o *OllamaExtractor) Extract(ctx context.Context, text string) ([]models.Entity, error) {
	stream := false
	req := &api.ChatRequest{
		Model: o.model,
		Messages: []api.Message{
			{Role: "user", Content: fmt.Sprintf(extractionPrompt, text)},
		},
		Stream:  &stream,
		Format:  o.format,
		Options: map[string]any{"temperature": 0},
	}

	var content string
	err := o.client.Chat(ctx, req, func(cr api.ChatResponse) error {
		content += cr.Message.Content
		if cr.Done {
			logger.Debug("[Extract] Ollama extraction done",
				"model", o.model,
				"prompt_tokens", cr.Metrics.PromptEvalCount,
				"output_tokens", cr.Metrics.EvalCount)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat failed: %w", err)
	}

	var list entityList
	if err := unmarshalFlexible(content, &list); err != nil {
		return nil, fmt.Errorf("failed to decode entities: %w", err)
	}
	return list.toModels(), nil
}
