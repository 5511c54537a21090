// Package advisor forwards health questions to a generative-AI provider with a fixed
// persona and safety configuration, and relays the text reply.
package advisor

import (
	"context"
	"errors"
	"strings"

	"github.com/hashicorp/go-hclog"
)

const (
	// MaxHistory is how many prior turns are kept as chat context.
	MaxHistory = 10
	// MaxImageBytes caps each image attachment.
	MaxImageBytes = 5 << 20

	Temperature     float32 = 0.7
	MaxOutputTokens int32   = 1024

	RoleUser  = "user"
	RoleModel = "model"
)

var (
	ErrEmptyQuery    = errors.New("query is required")
	ErrEmptyMessage  = errors.New("message or image is required")
	ErrNotConfigured = errors.New("AI provider is not configured")
)

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// Turn is one prior exchange in a chat.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type Image struct {
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// Generator produces a reply from the provider. history is already trimmed and
// normalised, images already filtered.
type Generator interface {
	Generate(ctx context.Context, history []Turn, text string, images []Image) (string, error)
}

type Service struct {
	gen    Generator
	logger hclog.Logger
}

// NewService returns an advisor backed by gen. A nil gen yields ErrNotConfigured
// on every call.
func NewService(gen Generator, logger hclog.Logger) *Service {
	return &Service{gen: gen, logger: logger.Named("advisor")}
}

// Search answers a single free-text query.
func (s *Service) Search(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	if s.gen == nil {
		return "", ErrNotConfigured
	}
	return s.generate(ctx, nil, query, nil)
}

// Chat answers message in the context of the most recent history turns. Images that
// are not png, jpeg or webp, or are larger than MaxImageBytes, are dropped.
func (s *Service) Chat(ctx context.Context, history []Turn, message string, images []Image) (string, error) {
	message = strings.TrimSpace(message)
	images = AcceptImages(images)
	if message == "" && len(images) == 0 {
		return "", ErrEmptyMessage
	}
	if s.gen == nil {
		return "", ErrNotConfigured
	}
	return s.generate(ctx, RecentTurns(history), message, images)
}

func (s *Service) generate(ctx context.Context, history []Turn, text string, images []Image) (string, error) {
	reply, err := s.gen.Generate(ctx, history, text, images)
	if err != nil {
		s.logger.Error("provider call failed", "turns", len(history), "images", len(images), "error", err)
		return "", err
	}
	return reply, nil
}

// RecentTurns keeps the last MaxHistory non-empty turns and maps every role other
// than "user" to "model".
func RecentTurns(history []Turn) []Turn {
	turns := make([]Turn, 0, len(history))
	for _, t := range history {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		role := RoleModel
		if strings.EqualFold(t.Role, RoleUser) {
			role = RoleUser
		}
		turns = append(turns, Turn{Role: role, Text: t.Text})
	}
	if len(turns) > MaxHistory {
		turns = turns[len(turns)-MaxHistory:]
	}
	return turns
}

func AcceptImages(images []Image) []Image {
	var out []Image
	for _, img := range images {
		mimeType, _, _ := strings.Cut(img.MIMEType, ";")
		mimeType = strings.ToLower(strings.TrimSpace(mimeType))
		if !allowedImageTypes[mimeType] || len(img.Data) == 0 || len(img.Data) > MaxImageBytes {
			continue
		}
		out = append(out, Image{MIMEType: mimeType, Data: img.Data})
	}
	return out
}
