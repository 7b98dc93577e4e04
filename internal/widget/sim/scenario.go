package sim

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"soundstage/internal/widget"
)

//go:embed demo.yaml
var demoScenario []byte

// Scenario scripts the simulated widget: its playlist and how badly it
// behaves.
type Scenario struct {
	Sounds []widget.Sound `yaml:"sounds"`
	// Waveforms maps sound IDs to waveform samples.
	Waveforms map[int64][]int `yaml:"waveforms"`

	// Loading is how long accessors answer with placeholders after a load.
	Loading time.Duration `yaml:"loading"`
	// Latency delays every accessor reply.
	Latency time.Duration `yaml:"latency"`
	// DropEvery drops every Nth accessor reply. Zero never drops.
	DropEvery int `yaml:"drop_every"`
	// FailEvery makes every Nth accessor call return an error. Zero never fails.
	FailEvery int `yaml:"fail_every"`
	// Duplicate delivers every reply twice.
	Duplicate bool `yaml:"duplicate"`
	// ProgressInterval is the playProgress cadence. Zero disables the
	// background clock; call Sim.Tick instead.
	ProgressInterval time.Duration `yaml:"progress_interval"`
	Volume           float64       `yaml:"volume"`
	AutoPlay         bool          `yaml:"autoplay"`
}

// Demo returns the built-in scenario.
func Demo() Scenario {
	sc, err := ParseScenario(demoScenario)
	if err != nil {
		panic(fmt.Sprintf("embedded demo scenario: %v", err))
	}
	return sc
}

// LoadScenario reads a YAML scenario file. An empty path returns Demo.
func LoadScenario(path string) (Scenario, error) {
	if path == "" {
		return Demo(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return Scenario{}, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// ParseScenario decodes and validates YAML scenario data.
func ParseScenario(data []byte) (Scenario, error) {
	sc := Scenario{Volume: 100}
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// Validate reports scenarios the simulator cannot play.
func (sc Scenario) Validate() error {
	if len(sc.Sounds) == 0 {
		return errors.New("scenario has no sounds")
	}
	seen := make(map[int64]struct{}, len(sc.Sounds))
	for i, s := range sc.Sounds {
		if s.ID == 0 {
			return fmt.Errorf("sound %d has no id", i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("sound id %d is repeated", s.ID)
		}
		seen[s.ID] = struct{}{}
		if s.DurationMS <= 0 {
			return fmt.Errorf("sound %d (%s) has no duration", s.ID, s.Title)
		}
	}
	if sc.DropEvery < 0 || sc.FailEvery < 0 {
		return errors.New("drop_every and fail_every must not be negative")
	}
	if sc.DropEvery == 1 {
		return errors.New("drop_every 1 would drop every reply")
	}
	if sc.Volume < 0 || sc.Volume > 100 {
		return errors.New("volume must be within 0..100")
	}
	if sc.Loading < 0 || sc.Latency < 0 || sc.ProgressInterval < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}
