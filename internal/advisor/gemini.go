package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini is a Generator backed by the Google Gemini API.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini returns ErrNotConfigured when apiKey is empty.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	configure(model)
	return &Gemini{client: client, model: model}, nil
}

func configure(model *genai.GenerativeModel) {
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(Persona)}}
	model.SetTemperature(Temperature)
	model.SetMaxOutputTokens(MaxOutputTokens)
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockMediumAndAbove},
	}
}

func (g *Gemini) Generate(ctx context.Context, history []Turn, text string, images []Image) (string, error) {
	parts := messageParts(text, images)

	var (
		resp *genai.GenerateContentResponse
		err  error
	)
	if len(history) == 0 {
		resp, err = g.model.GenerateContent(ctx, parts...)
	} else {
		cs := g.model.StartChat()
		cs.History = historyContents(history)
		resp, err = cs.SendMessage(ctx, parts...)
	}
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func messageParts(text string, images []Image) []genai.Part {
	parts := make([]genai.Part, 0, len(images)+1)
	if text != "" {
		parts = append(parts, genai.Text(text))
	}
	for _, img := range images {
		parts = append(parts, genai.Blob{MIMEType: img.MIMEType, Data: img.Data})
	}
	return parts
}

func historyContents(history []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		contents = append(contents, &genai.Content{
			Role:  t.Role,
			Parts: []genai.Part{genai.Text(t.Text)},
		})
	}
	return contents
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("empty response from gemini")
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return "", fmt.Errorf("gemini returned no content (finish reason %s)", cand.FinishReason)
	}
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String(), nil
}
