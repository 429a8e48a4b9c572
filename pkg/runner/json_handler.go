package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/botflow/pkg/domain"
)

// Event is one JSON line written by JSONHandler.
type Event struct {
	Type    string `json:"type"` // "step" or "system"
	BlockID string `json:"block_id,omitempty"`
	StepID  string `json:"step_id,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Content string `json:"content,omitempty"`
	Input   bool   `json:"input,omitempty"`
}

// JSONHandler implements IOHandler for structured JSON-Lines communication.
// Answers may be JSON strings or raw lines.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, block *domain.Block, step domain.Step) (bool, error) {
	needsInput := step.Type == domain.StepTypeInput
	err := h.Encoder.Encode(Event{
		Type:    "step",
		BlockID: block.ID,
		StepID:  step.ID,
		Kind:    step.Type,
		Content: step.Content,
		Input:   needsInput,
	})
	return needsInput, err
}

func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		text = val
	}
	return SanitizeInput(text)
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Event{Type: "system", Content: msg})
}
