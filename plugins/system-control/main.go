// Package main is the macOS volume plugin. It sets the output volume via
// AppleScript.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Source string          `json:"source,omitempty"`
	Config json.RawMessage `json:"config,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type setParams struct {
	Level *float64 `json:"level"`
}

var errLevelRange = errors.New("level must be between 0 and 1")

// actionHandler runs one action with its raw params.
type actionHandler func(params json.RawMessage) error

var actionHandlers = map[string]actionHandler{
	"volume-set":  volumeSet,
	"volume-up":   func(json.RawMessage) error { return runAppleScript(stepScript(10)) },
	"volume-down": func(json.RawMessage) error { return runAppleScript(stepScript(-10)) },
	"volume-mute": func(json.RawMessage) error { return runAppleScript(muteScript) },
}

// runAppleScript is swapped out in tests.
var runAppleScript = func(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

const muteScript = `set volume output muted (not (output muted of (get volume settings)))`

func main() {
	handle(os.Stdin, os.Stdout)
}

// handle reads one request from r and writes one response to w.
func handle(r io.Reader, w io.Writer) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		writeResponse(w, Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	handler, ok := actionHandlers[req.Action]
	if !ok {
		writeResponse(w, Response{Error: fmt.Sprintf("unknown action: %s", req.Action)})
		return
	}

	if err := handler(req.Params); err != nil {
		writeResponse(w, Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)})
		return
	}

	writeResponse(w, Response{Success: true})
}

func writeResponse(w io.Writer, resp Response) {
	json.NewEncoder(w).Encode(resp)
}

// volumeSet sets the output volume from params {"level": 0..1}.
func volumeSet(raw json.RawMessage) error {
	level, err := parseLevel(raw)
	if err != nil {
		return err
	}
	return runAppleScript(setScript(level))
}

func parseLevel(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, errors.New("missing params")
	}
	var p setParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return 0, fmt.Errorf("invalid params: %w", err)
	}
	if p.Level == nil {
		return 0, errors.New("missing level")
	}
	if math.IsNaN(*p.Level) || *p.Level < 0 || *p.Level > 1 {
		return 0, errLevelRange
	}
	return *p.Level, nil
}

// setScript converts a 0..1 level to the 0..100 AppleScript scale.
func setScript(level float64) string {
	return fmt.Sprintf("set volume output volume %d", int(math.Round(level*100)))
}

func stepScript(delta int) string {
	return fmt.Sprintf("set volume output volume ((output volume of (get volume settings)) + %d)", delta)
}
