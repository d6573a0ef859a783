// Package protocol provides quantification protocol file handling and
// persistence. A protocol records everything needed to reproduce an
// analysis run: the blot image, its alignment angle, the lane settings,
// the measured regions and the excluded lanes.
package protocol

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"blotquant/internal/analysis"
	"blotquant/internal/roi"
	"blotquant/pkg/geometry"
)

// Measurement kinds as stored in protocol files.
const (
	KindLoadingControl = "loading-control"
	KindTarget         = "target"
)

// File represents a quantification protocol file (.bqproto).
type File struct {
	Version    int       `json:"version"`
	Experiment string    `json:"experiment"`
	Created    time.Time `json:"created"`
	Modified   time.Time `json:"modified"`

	// Image path (relative to protocol file)
	ImagePath string `json:"image,omitempty"`

	// Alignment and lane settings
	Rotation   int  `json:"rotation"`
	Replicates int  `json:"replicates"`
	EqualN     bool `json:"equal_n"`
	StartLane  int  `json:"start_lane"`
	Welch      bool `json:"welch"`

	Measurements []Measurement    `json:"measurements,omitempty"`
	Exclusions   map[string][]int `json:"exclusions,omitempty"`
}

// Measurement is one recorded selection in display space.
type Measurement struct {
	Kind       string        `json:"kind"` // "loading-control" or "target"
	Group      string        `json:"group,omitempty"`
	Detail     string        `json:"detail,omitempty"`
	Name       string        `json:"name,omitempty"`
	Region     geometry.Rect `json:"region"`
	Separators []float64     `json:"separators,omitempty"`
}

// RecordKind maps the stored kind string to its history kind.
func (m *Measurement) RecordKind() (analysis.Kind, error) {
	switch m.Kind {
	case KindLoadingControl:
		return analysis.LoadingControl, nil
	case KindTarget:
		return analysis.Target, nil
	}
	return 0, fmt.Errorf("unknown measurement kind %q", m.Kind)
}

// New creates a new protocol with default analysis settings.
func New(experiment string) *File {
	now := time.Now()
	return &File{
		Version:    1,
		Experiment: experiment,
		Created:    now,
		Modified:   now,
		Replicates: 6,
		StartLane:  1,
		Welch:      true,
	}
}

// Load loads a protocol from a .bqproto file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proto File
	if err := json.Unmarshal(data, &proto); err != nil {
		return nil, err
	}
	if err := proto.Validate(); err != nil {
		return nil, err
	}

	return &proto, nil
}

// Save saves the protocol to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the protocol's settings and measurements.
func (p *File) Validate() error {
	if p.Replicates < 1 || p.Replicates > 20 {
		return fmt.Errorf("replicates %d out of range 1-20", p.Replicates)
	}
	if p.StartLane < 1 {
		return fmt.Errorf("start lane %d must be at least 1", p.StartLane)
	}
	if p.Rotation < roi.MinAngle || p.Rotation > roi.MaxAngle {
		return fmt.Errorf("rotation %d out of range %d..%d", p.Rotation, roi.MinAngle, roi.MaxAngle)
	}
	for i, m := range p.Measurements {
		if _, err := m.RecordKind(); err != nil {
			return fmt.Errorf("measurement %d: %w", i, err)
		}
		if m.Region.Empty() {
			return fmt.Errorf("measurement %d: empty region", i)
		}
	}
	return nil
}

// SetImage sets the image path, stored relative to the protocol file.
func (p *File) SetImage(protocolPath, imagePath string) {
	rel, err := filepath.Rel(filepath.Dir(protocolPath), imagePath)
	if err != nil {
		p.ImagePath = imagePath
	} else {
		p.ImagePath = rel
	}
	p.Modified = time.Now()
}

// GetImagePath returns the absolute path to the blot image.
func (p *File) GetImagePath(protocolPath string) string {
	if p.ImagePath == "" {
		return ""
	}
	if filepath.IsAbs(p.ImagePath) {
		return p.ImagePath
	}
	return filepath.Join(filepath.Dir(protocolPath), p.ImagePath)
}
