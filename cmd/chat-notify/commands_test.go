package main

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/chat-notify/pkg/config"
)

const testConfig = `
tick_duration: 1ms
batch_window: 0s
self:
  names: [Steve]
notifications:
  - name: self
    bold: "on"
  - name: urgent
    triggers:
      - string: urgent
    exclusions:
      - string: not urgent
    italic: "on"
    sound:
      enabled: true
      id: block.bell
    responses:
      - string: on it
        delay_ticks: 2
  - name: greet
    triggers:
      - type: regex
        string: 'hello (\w+)'
    responses:
      - string: hi (1)
        regex_groups: true
`

// setupConfig writes testConfig with a private history database and returns
// its path.
func setupConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := testConfig + "history_path: " + filepath.Join(dir, "history.db") + "\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestWatchCommand(t *testing.T) {
	path := setupConfig(t)
	input := "urgent: help\nthis is not urgent\nhello world\n<Steve> hi\nunterminated"

	stdout, stderr, err := run(t, input, "--config", path, "watch", "--no-reload")
	require.NoError(t, err)

	for _, line := range []string{"urgent: help", "this is not urgent", "hello world", "unterminated"} {
		assert.Contains(t, stdout, line+"\n")
	}
	assert.Contains(t, stdout, "[response message +2t] on it\n")
	assert.Contains(t, stdout, "[response message +0t] hi world\n")
	assert.Contains(t, stderr, "[ALERT] chat-notify: urgent: urgent: help (Rule: urgent)")
	assert.Equal(t, 1, strings.Count(stderr, "[ALERT]"))

	stdout, _, err = run(t, "", "--config", path, "history")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, stdout, "self")
	assert.Contains(t, stdout, "greet")
	assert.Contains(t, stdout, "urgent: help")
}

func TestWatchCommand_QuietNoHistory(t *testing.T) {
	path := setupConfig(t)

	stdout, stderr, err := run(t, "urgent\n", "--config", path, "--quiet", "--no-history", "watch", "--no-reload", "--no-echo")
	require.NoError(t, err)
	assert.Equal(t, "[response message +2t] on it\n", stdout)
	assert.NotContains(t, stderr, "[ALERT]")

	stdout, _, err = run(t, "", "--config", path, "history")
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(stdout))
}

func TestWatchCommand_File(t *testing.T) {
	path := setupConfig(t)
	input := filepath.Join(t.TempDir(), "chat.log")
	require.NoError(t, os.WriteFile(input, []byte("\x1b[31mhello there\x1b[0m\n"), 0o600))

	stdout, _, err := run(t, "", "--config", path, "--quiet", "watch", "--no-reload", input)
	require.NoError(t, err)
	assert.Contains(t, stdout, "hello there\n")
	assert.Contains(t, stdout, "hi there\n")

	_, _, err = run(t, "", "--config", path, "watch", filepath.Join(t.TempDir(), "absent.log"))
	assert.Error(t, err)
}

func TestCheckCommand(t *testing.T) {
	path := setupConfig(t)

	stdout, _, err := run(t, "", "--config", path, "check", "--json", "hello world")
	require.NoError(t, err)

	var got checkResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.True(t, got.Fired)
	assert.Equal(t, 2, got.Index)
	assert.Equal(t, "greet", got.Name)
	assert.Equal(t, []string{"hello world", "world"}, got.Groups)
	require.NotNil(t, got.Match)
	assert.Equal(t, spanJSON{Start: 0, End: 11}, *got.Match)
	assert.Equal(t, []scheduledJSON{{Kind: "message", DelayTicks: 0, Payload: "hi world"}}, got.Responses)
}

func TestCheckCommand_Text(t *testing.T) {
	path := setupConfig(t)

	stdout, _, err := run(t, "", "--config", path, "check", "urgent: help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Fired: urgent (#1, trigger 0)")
	assert.Contains(t, stdout, "Sound: block.bell")
	assert.Contains(t, stdout, "Reply: message after 2 ticks: on it")

	stdout, _, err = run(t, "", "--config", path, "check", "this is not urgent")
	require.NoError(t, err)
	assert.Equal(t, "No notification fired\n", stdout)

	stdout, _, err = run(t, "", "--config", path, "check", "--json", "--self", "urgent")
	require.NoError(t, err)
	var got checkResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.False(t, got.Fired)
	assert.Equal(t, -1, got.Index)
}

func TestListCommand(t *testing.T) {
	path := setupConfig(t)

	stdout, _, err := run(t, "", "--config", path, "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], `normal:"Steve" normal:"Steve"`)
	assert.Contains(t, lines[2], "urgent")
	assert.Contains(t, lines[2], "block.bell")
	assert.Contains(t, lines[3], `regex:"hello (\\w+)"`)
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	stdout, _, err := run(t, "", "--config", path, "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "self", cfg.Notifications[0].Name)

	_, _, err = run(t, "", "--config", path, "init")
	assert.ErrorContains(t, err, "already exists")

	_, _, err = run(t, "", "--config", path, "init", "--force")
	assert.NoError(t, err)
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input_format: xml\n"), 0o600))

	_, _, err := run(t, "", "--config", path, "list")
	assert.ErrorContains(t, err, "input_format")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "chat-notify version dev")
}

func TestWrapCommand_ExitCode(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := setupConfig(t)

	stdout, _, err := run(t, "", "--config", path, "--quiet", "wrap", "--", "sh", "-c", "echo hello pty; exit 3")

	var exit *exitCodeError
	require.True(t, errors.As(err, &exit), "got %v", err)
	assert.Equal(t, 3, exit.code)
	assert.Contains(t, stdout, "hello pty")
}

func TestFlagNormalization(t *testing.T) {
	path := setupConfig(t)

	stdout, _, err := run(t, "urgent\n", "--config", path, "--quiet", "--no_history", "watch", "--no_reload", "--no_echo")
	require.NoError(t, err)
	assert.Equal(t, "[response message +2t] on it\n", stdout)
}
