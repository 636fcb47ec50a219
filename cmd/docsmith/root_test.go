package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"docsmith/internal/completion"
	"docsmith/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingCompleter struct {
	calls []completion.Request
	text  string
}

func (c *countingCompleter) Complete(_ context.Context, req completion.Request) (string, error) {
	c.calls = append(c.calls, req)
	return c.text, nil
}

type harness struct {
	stdout    bytes.Buffer
	factories int
	opts      completion.Options
	completer *countingCompleter
}

func newHarness(text string) *harness {
	return &harness{completer: &countingCompleter{text: text}}
}

func (h *harness) app() *app {
	return &app{
		stdout:    &h.stdout,
		newLogger: func(bool) (*zap.Logger, error) { return zap.NewNop(), nil },
		newCompleter: func(_ context.Context, opts completion.Options) (completion.Completer, error) {
			h.factories++
			h.opts = opts
			return h.completer, nil
		},
	}
}

func (h *harness) execute(t *testing.T, args ...string) error {
	t.Helper()
	for _, name := range []string{"DOCSMITH_API_KEY", "DOCSMITH_PROVIDER", "OPENAI_API_KEY", "GEMINI_API_KEY"} {
		t.Setenv(name, "")
	}
	cmd := newRootCmd(h.app())
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	return cmd.ExecuteContext(context.Background())
}

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.py")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

const twoFunctions = "def square(x):\n    return x * x\n\ndef cube(x):\n    \"\"\"Old.\"\"\"\n    return x ** 3\n\nif __name__ == '__main__':\n    print(square(2))\n"

func TestRoot_OutOfRangeSamplingFailsFast(t *testing.T) {
	path := writeSource(t, twoFunctions)
	for _, args := range [][]string{
		{"-e", "1.5"},
		{"-T", "-0.1"},
		{"-F", "2.1"},
		{"-p", "3"},
		{"-e", "NaN"},
		{"-T", "NaN"},
		{"-F", "NaN"},
		{"-p", "+Inf"},
	} {
		h := newHarness("unused")
		err := h.execute(t, append([]string{"-f", path, "-t", "key"}, args...)...)
		require.ErrorIs(t, err, config.ErrInvalid, args)
		assert.Zero(t, h.factories)
		assert.Empty(t, h.completer.calls)
		assert.Empty(t, h.stdout.String())
	}
}

func TestRoot_RequiresFileAndToken(t *testing.T) {
	h := newHarness("unused")
	assert.Error(t, h.execute(t, "-t", "key"))

	h = newHarness("unused")
	err := h.execute(t, "-f", writeSource(t, twoFunctions))
	assert.ErrorIs(t, err, config.ErrInvalid)
	assert.Zero(t, h.factories)
}

func TestRoot_Transcript(t *testing.T) {
	h := newHarness("Does X and returns Y.")
	err := h.execute(t,
		"-f", writeSource(t, twoFunctions),
		"-t", "key",
		"-e", "0.4",
		"--model", "gpt-test",
		"--delay", "0s",
	)
	require.NoError(t, err)

	assert.Equal(t, 1, h.factories)
	assert.Equal(t, completion.Options{Provider: "openai", APIKey: "key", Model: "gpt-test"}, h.opts)
	require.Len(t, h.completer.calls, 2)
	assert.Equal(t, 0.4, h.completer.calls[0].Temperature)
	assert.Equal(t, 1.0, h.completer.calls[0].TopP)
	assert.Equal(t, 0.2, h.completer.calls[0].PresencePenalty)

	out := h.stdout.String()
	assert.Contains(t, out, "# >>>>>>>>>>>>>>> METHOD/FUNCTION: square (1/2)\n\ndef square(x):\n    \"\"\"Does X and returns Y.\n    \"\"\"\n    return x * x\n")
	assert.Contains(t, out, "METHOD/FUNCTION: cube (2/2)")
	assert.NotContains(t, out, "Old.")
	assert.NotContains(t, out, "__main__")
}

func TestRoot_TreeSitterDocstringOnly(t *testing.T) {
	h := newHarness("Cubes x.")
	err := h.execute(t,
		"-f", writeSource(t, twoFunctions),
		"-t", "key",
		"--parser", "tree-sitter",
		"--docstring-only",
		"--delay", "0s",
	)
	require.NoError(t, err)

	out := h.stdout.String()
	assert.Contains(t, out, "METHOD/FUNCTION: cube (2/2)\n\n    \"\"\"Cubes x.\n    \"\"\"\n")
	assert.NotContains(t, out, "def cube")
}

func TestRoot_GeminiCredentialFromEnv(t *testing.T) {
	h := newHarness("Doc.")
	path := writeSource(t, twoFunctions)
	cmd := newRootCmd(h.app())
	for _, name := range []string{"DOCSMITH_API_KEY", "DOCSMITH_PROVIDER", "OPENAI_API_KEY"} {
		t.Setenv(name, "")
	}
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "-f", path, "--provider", "gemini", "--delay", "0s"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Equal(t, "gemini", h.opts.Provider)
	assert.Equal(t, "gemini-key", h.opts.APIKey)
}

func TestRoot_NoFunctions(t *testing.T) {
	h := newHarness("unused")
	err := h.execute(t, "-f", writeSource(t, "print('hi')\n"), "-t", "key")
	require.NoError(t, err)
	assert.Zero(t, h.factories)
	assert.Empty(t, h.stdout.String())
}

func TestRoot_UnknownParser(t *testing.T) {
	h := newHarness("unused")
	err := h.execute(t, "-f", writeSource(t, twoFunctions), "-t", "key", "--parser", "ast")
	assert.EqualError(t, err, "unsupported parser: ast")
}
