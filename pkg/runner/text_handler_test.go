package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/botflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out, WithTextHandlerRenderer(func(s string) (string, error) {
		return "Rendered: " + s, nil
	}))

	block := &domain.Block{ID: "b"}
	needsInput, err := handler.Output(context.Background(), block, domain.Step{ID: "s", Type: domain.StepTypeInput, Content: "Hello World"})
	require.NoError(t, err)
	assert.True(t, needsInput)
	assert.Contains(t, out.String(), "Rendered: Hello World")

	needsInput, err = handler.Output(context.Background(), block, domain.Step{ID: "t"})
	require.NoError(t, err)
	assert.False(t, needsInput)
}

func TestTextHandler_Input(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("  my user input  \nsecond"), out)

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "my user input", val)
	assert.Equal(t, "> ", out.String())

	val, err = handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", val, "a final line without newline is still read")

	_, err = handler.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestTextHandler_InputCanceled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	handler := NewTextHandler(pr, &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := handler.Input(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSanitizeInput(t *testing.T) {
	clean, err := SanitizeInput("hi\x1b[31m there\x00")
	require.NoError(t, err)
	assert.Equal(t, "hi there", clean)

	clean, err = SanitizeInput("\x1b[1;31mred\x1b[0m \x1b]0;title\x07done")
	require.NoError(t, err)
	assert.Equal(t, "red done", clean, "CSI and OSC sequences go away whole")

	clean, err = SanitizeInput("tab\tok")
	require.NoError(t, err)
	assert.Equal(t, "tab\tok", clean)

	_, err = SanitizeInput("\xff")
	assert.ErrorIs(t, err, ErrInvalidUTF8)

	t.Setenv(EnvMaxInputSize, "3")
	_, err = SanitizeInput("four")
	assert.ErrorIs(t, err, ErrInputTooLarge)
}
