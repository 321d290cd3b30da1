package vertexclient

import (
	"context"
	"fmt"
	"log/slog"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"
)

type Adapter struct {
	client         *genai.Client
	prediction     *aiplatform.PredictionClient
	projectID      string
	region         string
	model          string
	embeddingModel string
	log            *slog.Logger
}

func NewAdapter(ctx context.Context, log *slog.Logger, projectID, region, model, embeddingModel string) (*Adapter, error) {
	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, err
	}

	prediction, err := aiplatform.NewPredictionClient(ctx,
		option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", region)))
	if err != nil {
		client.Close()
		return nil, err
	}

	return &Adapter{
		client:         client,
		prediction:     prediction,
		projectID:      projectID,
		region:         region,
		model:          model,
		embeddingModel: embeddingModel,
		log:            log,
	}, nil
}

func (a *Adapter) Close() error {
	err := a.client.Close()
	if perr := a.prediction.Close(); perr != nil && err == nil {
		err = perr
	}
	if err != nil && a.log != nil {
		a.log.Error("vertex adapter close failed", "error", err)
	}
	return err
}

// GenerateText runs a single-turn completion and returns the joined text
// parts of the first candidate.
func (a *Adapter) GenerateText(ctx context.Context, prompt string) (string, error) {
	if a.model == "" {
		return "", fmt.Errorf("vertex model is required")
	}

	model := a.client.GenerativeModel(a.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	var text string
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if p, ok := part.(genai.Text); ok {
				text += string(p)
			}
		}
	}
	return text, nil
}

// EmbedText returns the embedding vector for one piece of text.
func (a *Adapter) EmbedText(ctx context.Context, text string) ([]float32, error) {
	endpoint := fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s",
		a.projectID, a.region, a.embeddingModel)

	instance, err := structpb.NewValue(map[string]any{
		"content":   text,
		"task_type": "SEMANTIC_SIMILARITY",
	})
	if err != nil {
		return nil, err
	}

	resp, err := a.prediction.Predict(ctx, &aiplatformpb.PredictRequest{
		Endpoint:  endpoint,
		Instances: []*structpb.Value{instance},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Predictions) == 0 {
		return nil, fmt.Errorf("embedding response has no predictions")
	}

	values := resp.Predictions[0].GetStructValue().
		GetFields()["embeddings"].GetStructValue().
		GetFields()["values"].GetListValue().GetValues()
	if len(values) == 0 {
		return nil, fmt.Errorf("embedding response has no values")
	}

	vec := make([]float32, len(values))
	for i, v := range values {
		vec[i] = float32(v.GetNumberValue())
	}
	return vec, nil
}
