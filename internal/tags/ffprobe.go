// Copyright Justin Henderson, 2026. All rights reserved.

// Package tags reads embedded metadata from local music files by invoking
// ffprobe. The scan cares about one tag above all: the ISRC, which keys
// every catalog lookup and every persisted decision.
package tags

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
)

const binFFprobe = "ffprobe"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunOutput(name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunOutput(name string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

// Prober invokes ffprobe and parses its JSON output.
type Prober struct {
	exec executor
}

// NewProber returns a Prober using the ffprobe binary on PATH.
func NewProber() *Prober {
	return &Prober{exec: &osExecutor{}}
}

// Available reports whether the ffprobe binary exists on PATH.
func (p *Prober) Available() bool {
	_, err := p.exec.LookPath(binFFprobe)
	return err == nil
}

// ffprobe JSON output structures. FLAC and Opus files carry their Vorbis
// comments on the audio stream; MP3 files carry ID3 tags on the format.
// Both levels are read and merged.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string            `json:"duration"`
	Tags     map[string]string `json:"tags"`
}

type ffprobeStream struct {
	CodecType string            `json:"codec_type"`
	Tags      map[string]string `json:"tags"`
}

// Probe runs ffprobe against path and returns the parsed output.
func (p *Prober) Probe(path string) (*ffprobeOutput, error) {
	out, err := p.exec.RunOutput(binFFprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", path, err)
	}

	var probed ffprobeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output for %s: %w", path, err)
	}
	return &probed, nil
}
