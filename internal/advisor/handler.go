package advisor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/team-gbm/hophacks-2025-backend/internal/respond"
)

const maxMultipartMemory = 32 << 20

type SearchRequest struct {
	Query string `json:"query"`
}

type ChatRequest struct {
	Message string  `json:"message"`
	History []Turn  `json:"history"`
	Images  []Image `json:"images"`
}

type Reply struct {
	Text string `json:"text"`
}

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/search", h.Search)
	r.Post("/chat", h.Chat)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	text, err := h.Service.Search(r.Context(), req.Query)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, Reply{Text: text})
}

// Chat accepts either a JSON ChatRequest or a multipart form with "message",
// "history" (JSON text) and image files under "images".
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	req, err := readChatRequest(r)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	text, err := h.Service.Chat(r.Context(), req.History, req.Message, req.Images)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, Reply{Text: text})
}

func readChatRequest(r *http.Request) (*ChatRequest, error) {
	req := &ChatRequest{}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := respond.Decode(r, req); err != nil {
			return nil, fmt.Errorf("invalid chat payload: %w", err)
		}
		return req, nil
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, fmt.Errorf("invalid multipart payload: %w", err)
	}
	req.Message = r.FormValue("message")
	if raw := r.FormValue("history"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.History); err != nil {
			return nil, fmt.Errorf("invalid history: %w", err)
		}
	}
	for _, fh := range r.MultipartForm.File["images"] {
		img, err := readImage(fh)
		if err != nil {
			return nil, err
		}
		if img != nil {
			req.Images = append(req.Images, *img)
		}
	}
	return req, nil
}

// readImage returns nil for files over MaxImageBytes.
func readImage(fh *multipart.FileHeader) (*Image, error) {
	if fh.Size > MaxImageBytes {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}
	if len(data) > MaxImageBytes {
		return nil, nil
	}
	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	return &Image{MIMEType: mimeType, Data: data}, nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyQuery), errors.Is(err, ErrEmptyMessage):
		respond.Error(w, http.StatusBadRequest, err.Error())
	default:
		respond.Error(w, http.StatusInternalServerError, err.Error())
	}
}
