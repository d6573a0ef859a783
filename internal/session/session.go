// Package session holds the state of one quantification session and wires
// region extraction, lane segmentation, signal integration and the
// measurement history into the operations the surrounding application
// calls.
package session

import (
	"fmt"
	"sync"

	"blotquant/internal/analysis"
	"blotquant/internal/densitometry"
	"blotquant/internal/image"
	"blotquant/internal/lane"
	"blotquant/internal/roi"
	"blotquant/pkg/geometry"
)

// RegionExtractor turns a display-space region into a cropped intensity
// raster plus the separator positions remapped into raster space.
// *roi.Extractor is the production implementation.
type RegionExtractor interface {
	Extract(region geometry.Rect, separators []float64, angle int) (densitometry.Raster, []int, error)
}

// EventType identifies session events.
type EventType int

const (
	EventImageLoaded EventType = iota
	EventHistoryChanged
	EventExclusionsChanged
	EventReset
)

// EventListener is called after the session mutated and derived statistics
// should be refreshed.
type EventListener func()

// Settings are the per-session analysis settings.
type Settings struct {
	Replicates int  // lanes per selection, 1-20
	EqualN     bool // one region holds equal Control and Treatment halves
	StartLane  int  // 1-based first lane number, pads earlier lanes with 0
	RunWelch   bool // compute Welch's t-test in summaries
}

// DefaultSettings mirror a fresh session: six replicates, numbering from
// lane 1, significance test enabled.
func DefaultSettings() Settings {
	return Settings{Replicates: 6, StartLane: 1, RunWelch: true}
}

// Measurement describes one quantification request against the current
// image.
type Measurement struct {
	Kind       analysis.Kind
	Group      string // ignored in equal-N mode
	Detail     string
	Name       string
	Region     geometry.Rect // display space
	Separators []float64     // display space, may be empty
}

// Summary are the aggregate results for the most recently introduced
// target.
type Summary struct {
	Target    string
	Groups    map[string]analysis.GroupStats
	Change    float64
	HasChange bool
	PValue    float64
	HasPValue bool
}

// Session is the process-scoped state: the loaded image, rotation,
// settings, measurement history and exclusion registry. Every mutation and
// the statistics derived from it run under one lock, so readers never
// observe history and exclusions in a half-updated combination.
type Session struct {
	mu sync.RWMutex

	layer     *image.Layer
	extractor RegionExtractor
	display   geometry.Size
	rotation  int

	settings   Settings
	lastRegion *geometry.Rect

	history      *analysis.History
	exclusions   *analysis.ExclusionSet
	groupDetails []string

	listeners map[EventType][]EventListener
}

// New creates an empty session drawing on the given display size.
func New(display geometry.Size) *Session {
	return &Session{
		display:    display,
		settings:   DefaultSettings(),
		history:    analysis.NewHistory(),
		exclusions: analysis.NewExclusionSet(),
		listeners:  make(map[EventType][]EventListener),
	}
}

// On registers an event listener.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

func (s *Session) emit(event EventType) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener()
	}
}

// Display returns the display size regions are drawn in.
func (s *Session) Display() geometry.Size {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.display
}

// Configure replaces the analysis settings, clamping them into their valid
// ranges.
func (s *Session) Configure(settings Settings) {
	if settings.Replicates < 1 {
		settings.Replicates = 1
	}
	if settings.Replicates > 20 {
		settings.Replicates = 20
	}
	if settings.StartLane < 1 {
		settings.StartLane = 1
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
}

// Settings returns the current analysis settings.
func (s *Session) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetImage installs a loaded blot image and its extractor. Rotation resets
// to 0, matching a fresh alignment of the new blot.
func (s *Session) SetImage(layer *image.Layer, extractor RegionExtractor) {
	s.mu.Lock()
	s.layer = layer
	s.extractor = extractor
	s.rotation = 0
	if layer != nil {
		s.display = layer.DisplaySize()
	}
	s.lastRegion = nil
	s.mu.Unlock()

	s.emit(EventImageLoaded)
}

// Layer returns the loaded image layer, or nil.
func (s *Session) Layer() *image.Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layer
}

// SetRotation sets the alignment angle in integer degrees.
func (s *Session) SetRotation(degrees int) error {
	if degrees < roi.MinAngle || degrees > roi.MaxAngle {
		return fmt.Errorf("rotation %d out of range [%d, %d]", degrees, roi.MinAngle, roi.MaxAngle)
	}
	s.mu.Lock()
	s.rotation = degrees
	s.mu.Unlock()
	return nil
}

// Rotation returns the current alignment angle in degrees.
func (s *Session) Rotation() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rotation
}

// Measure runs the full pipeline for one selection: map the region into
// pixel space, segment it into lanes, integrate each lane's signal, and
// append the result to the history as one transaction. An empty region (or
// no loaded image) returns roi.ErrEmptyRegion and leaves the history
// untouched.
func (s *Session) Measure(m Measurement) (analysis.Transaction, error) {
	s.mu.Lock()

	if s.extractor == nil {
		s.mu.Unlock()
		return analysis.Transaction{}, roi.ErrEmptyRegion
	}

	raster, separators, err := s.extractor.Extract(m.Region, m.Separators, s.rotation)
	if err != nil {
		s.mu.Unlock()
		return analysis.Transaction{}, err
	}

	boundaries := lane.Boundaries(raster.Width, s.settings.Replicates, s.settings.EqualN, separators)
	intensities := densitometry.Intensities(raster, boundaries)

	group := m.Group
	if group == "" {
		group = analysis.GroupControl
	}
	detail := m.Detail
	if detail == "" {
		// The history forces the control half of an equal-N split to "None",
		// so the default here only reaches treatment records.
		detail = analysis.DetailNone
		if s.settings.EqualN || group == analysis.GroupTreatment {
			detail = analysis.DetailGeneric
		}
	} else {
		s.rememberDetail(detail)
	}
	name := m.Name
	if name == "" {
		name = m.Kind.String()
	}

	tx := s.history.Append(analysis.Spec{
		Kind:        m.Kind,
		Group:       group,
		Detail:      detail,
		Name:        name,
		EqualN:      s.settings.EqualN,
		StartLane:   s.settings.StartLane,
		Intensities: intensities,
	})

	region := m.Region
	s.lastRegion = &region
	s.mu.Unlock()

	s.emit(EventHistoryChanged)
	return tx, nil
}

// Profile extracts the region and returns its per-column mean intensity
// together with the separator positions in profile coordinates. Nothing is
// appended to the history; the caller plots the result to validate lane
// placement.
func (s *Session) Profile(region geometry.Rect, separators []float64) ([]float64, []int, error) {
	s.mu.RLock()
	extractor := s.extractor
	rotation := s.rotation
	s.mu.RUnlock()

	if extractor == nil {
		return nil, nil, roi.ErrEmptyRegion
	}
	raster, mapped, err := extractor.Extract(region, separators, rotation)
	if err != nil {
		return nil, nil, err
	}
	return densitometry.Profile(raster), mapped, nil
}

// PlanSeparators decides how a region edit affects its separators: they are
// regenerated evenly when none exist, when their count no longer matches
// the settings, or when the width changed by more than 5%; otherwise the
// manual positions persist unchanged.
func (s *Session) PlanSeparators(region geometry.Rect, current []float64) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	lastWidth := region.Width
	if s.lastRegion != nil {
		lastWidth = s.lastRegion.Width
	}
	r := region
	s.lastRegion = &r

	if lane.ShouldRegenerate(len(current), s.settings.Replicates, s.settings.EqualN, lastWidth, region.Width) {
		return lane.EvenSeparators(region.X, region.Width, s.settings.Replicates, s.settings.EqualN)
	}
	return current
}

func (s *Session) rememberDetail(detail string) {
	for _, d := range s.groupDetails {
		if d == detail {
			return
		}
	}
	s.groupDetails = append(s.groupDetails, detail)
}

// GroupDetails returns the remembered group detail labels in entry order,
// for dropdown re-selection across blots.
func (s *Session) GroupDetails() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.groupDetails))
	copy(out, s.groupDetails)
	return out
}

// Undo removes the most recent measurement transaction.
func (s *Session) Undo() bool {
	s.mu.Lock()
	_, ok := s.history.Undo()
	s.mu.Unlock()

	if ok {
		s.emit(EventHistoryChanged)
	}
	return ok
}

// Reset clears the measurement history and the exclusion registry
// together.
func (s *Session) Reset() {
	s.mu.Lock()
	s.history.Clear()
	s.exclusions.Clear()
	s.groupDetails = nil
	s.lastRegion = nil
	s.mu.Unlock()

	s.emit(EventReset)
}

// ToggleExclusion flips a lane's exclusion state within a group.
func (s *Session) ToggleExclusion(group string, laneIndex int) {
	s.mu.Lock()
	s.exclusions.Toggle(group, laneIndex)
	s.mu.Unlock()

	s.emit(EventExclusionsChanged)
}

// Exclusions returns the sorted excluded lane indices of a group.
func (s *Session) Exclusions(group string) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exclusions.Lanes(group)
}

// History returns a copy of the measurement records in append order.
func (s *Session) History() []analysis.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Records()
}

// TargetNames returns the distinct target names in order of first
// appearance.
func (s *Session) TargetNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.TargetNames()
}

// GroupStatistics computes mean, SEM and N per group for the named target,
// honoring the exclusion registry.
func (s *Session) GroupStatistics(target string) map[string]analysis.GroupStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return analysis.GroupStatistics(s.history.Records(), s.exclusions, target)
}

// PercentChange computes the Treatment-vs-Control relative change for the
// named target.
func (s *Session) PercentChange(target string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return analysis.PercentChange(s.history.Records(), s.exclusions, target)
}

// Significance computes Welch's t-test p-value for the named target. It is
// omitted when disabled in the settings or when either group has fewer than
// two values.
func (s *Session) Significance(target string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.settings.RunWelch {
		return 0, false
	}
	return analysis.Significance(s.history.Records(), s.exclusions, target)
}

// Summary aggregates the results of the most recently introduced target.
// It reports false until at least one target has been measured.
func (s *Session) Summary() (Summary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	target, ok := s.history.LatestTargetName()
	if !ok {
		return Summary{}, false
	}

	records := s.history.Records()
	summary := Summary{
		Target: target,
		Groups: analysis.GroupStatistics(records, s.exclusions, target),
	}
	summary.Change, summary.HasChange = analysis.PercentChange(records, s.exclusions, target)
	if s.settings.RunWelch {
		summary.PValue, summary.HasPValue = analysis.Significance(records, s.exclusions, target)
	}
	return summary, true
}
