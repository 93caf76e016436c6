package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"call-quality-go/internal/logger"
)

const (
	// Larger recordings go through the Files API.
	maxInlineAudio = 18 << 20
	filePollEvery  = 2 * time.Second
)

// Gemini implements Oracle using Google's Gemini API.
type Gemini struct {
	client  *genai.Client
	modelID string
	log     *logrus.Entry
}

// NewGemini creates a Gemini oracle.
func NewGemini(ctx context.Context, apiKey, modelID string, log *logrus.Entry) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("oracle: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("oracle: failed to create gemini client: %w", err)
	}
	return &Gemini{
		client:  client,
		modelID: modelID,
		log:     logger.Component(log, "oracle").WithField("model", modelID),
	}, nil
}

// Generate sends the prompt, with the recording attached when present, and
// asks for a JSON answer.
func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	model := g.client.GenerativeModel(g.modelID)
	model.SetTemperature(req.Temperature)
	model.SetTopP(0.95)
	model.SetTopK(40)
	model.SetMaxOutputTokens(8192)
	model.ResponseMIMEType = "application/json"

	var parts []genai.Part
	if len(req.Audio) > 0 {
		audio, cleanup, err := g.audioPart(ctx, req)
		if err != nil {
			return "", err
		}
		defer cleanup()
		parts = append(parts, audio)
	}
	parts = append(parts, genai.Text(req.Prompt))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("oracle: gemini %s failed: %w", req.Task, err)
	}
	if len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var out strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}

	fields := logrus.Fields{"task": req.Task, "finish_reason": candidate.FinishReason}
	if resp.UsageMetadata != nil {
		fields["input_tokens"] = resp.UsageMetadata.PromptTokenCount
		fields["output_tokens"] = resp.UsageMetadata.CandidatesTokenCount
	}
	g.log.WithFields(fields).Debug("gemini answered")

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// audioPart inlines small recordings and uploads large ones. cleanup removes
// the uploaded file.
func (g *Gemini) audioPart(ctx context.Context, req Request) (genai.Part, func(), error) {
	mime := req.MIMEType
	if mime == "" {
		mime = "audio/wav"
	}
	if len(req.Audio) <= maxInlineAudio {
		return genai.Blob{MIMEType: mime, Data: req.Audio}, func() {}, nil
	}

	file, err := g.client.UploadFile(ctx, "", bytes.NewReader(req.Audio), &genai.UploadFileOptions{MIMEType: mime})
	if err != nil {
		return nil, nil, fmt.Errorf("oracle: upload audio: %w", err)
	}
	name := file.Name
	cleanup := func() {
		if err := g.client.DeleteFile(context.Background(), name); err != nil {
			g.log.WithField("file", name).Warnf("delete uploaded audio: %v", err)
		}
	}

	for file.State == genai.FileStateProcessing {
		select {
		case <-ctx.Done():
			cleanup()
			return nil, nil, ctx.Err()
		case <-time.After(filePollEvery):
		}
		if file, err = g.client.GetFile(ctx, name); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("oracle: poll uploaded audio: %w", err)
		}
	}
	if file.State != genai.FileStateActive {
		cleanup()
		return nil, nil, fmt.Errorf("oracle: uploaded audio in state %v", file.State)
	}
	return genai.FileData{MIMEType: file.MIMEType, URI: file.URI}, cleanup, nil
}

// Close releases resources held by the Gemini client.
func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
