package sculpt

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gekko3d/sculpt/history"
	"github.com/gekko3d/sculpt/physics"
	"github.com/gekko3d/sculpt/solver"
)

// Config holds every recognised engine option. Physics values are per tick.
type Config struct {
	VoxelSize    float32 `json:"voxel_size"`
	FloorY       float32 `json:"floor_y"`
	MaxVoxels    int     `json:"max_voxels"`
	HistoryDepth int     `json:"history_depth"`
	SelectHeight float32 `json:"select_height"`

	Gravity       float32 `json:"gravity"`
	Damping       float32 `json:"damping"`
	Bounce        float32 `json:"bounce"`
	RestSpeed     float32 `json:"rest_speed"`
	MorphSpeed    float32 `json:"morph_speed"`
	ArriveEpsilon float32 `json:"arrive_epsilon"`
	ScatterSpeed  float32 `json:"scatter_speed"`
	ScatterLift   float32 `json:"scatter_lift"`
	ScatterSpin   float32 `json:"scatter_spin"`

	MaterialPenalty   float32  `json:"material_penalty"`
	RebuildDelayScale Duration `json:"rebuild_delay_scale"`
	PlaceholderLift   float32  `json:"placeholder_lift"`

	// PurgeRubble drops surplus voxels when a rebuild settles instead of keeping
	// them on the floor as scenery.
	PurgeRubble bool `json:"purge_rubble"`

	// Seed fixes the random source for scatter and cloning; 0 seeds from the clock.
	Seed int64 `json:"seed"`
}

func DefaultConfig() Config {
	pp := physics.DefaultParams()
	sp := solver.DefaultParams()
	return Config{
		VoxelSize:    1.0,
		FloorY:       -12,
		MaxVoxels:    1500,
		HistoryDepth: history.DefaultDepth,
		SelectHeight: 40,

		Gravity:       pp.Gravity,
		Damping:       pp.Damping,
		Bounce:        pp.Bounce,
		RestSpeed:     pp.RestSpeed,
		MorphSpeed:    pp.MorphSpeed,
		ArriveEpsilon: pp.ArriveEpsilon,
		ScatterSpeed:  pp.ScatterSpeed,
		ScatterLift:   pp.ScatterLift,
		ScatterSpin:   pp.ScatterSpin,

		MaterialPenalty:   sp.MaterialPenalty,
		RebuildDelayScale: Duration(sp.RebuildDelayScale),
		PlaceholderLift:   sp.PlaceholderLift,
	}
}

// LoadConfig reads a JSON file on top of DefaultConfig. Keys absent from the file
// keep their defaults.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", filename, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", filename, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.VoxelSize <= 0:
		return fmt.Errorf("voxel_size must be positive, got %v", c.VoxelSize)
	case c.MaxVoxels <= 0:
		return fmt.Errorf("max_voxels must be positive, got %d", c.MaxVoxels)
	case c.HistoryDepth <= 0:
		return fmt.Errorf("history_depth must be positive, got %d", c.HistoryDepth)
	case c.Gravity <= 0:
		return fmt.Errorf("gravity must be positive, got %v", c.Gravity)
	case c.MorphSpeed <= 0 || c.MorphSpeed > 1:
		return fmt.Errorf("morph_speed must be in (0,1], got %v", c.MorphSpeed)
	case c.Damping < 0 || c.Damping > 1:
		return fmt.Errorf("damping must be in [0,1], got %v", c.Damping)
	case c.Bounce < 0 || c.Bounce >= 1:
		return fmt.Errorf("bounce must be in [0,1), got %v", c.Bounce)
	case c.RestSpeed <= 0:
		return fmt.Errorf("rest_speed must be positive, got %v", c.RestSpeed)
	case c.ArriveEpsilon <= 0:
		return fmt.Errorf("arrive_epsilon must be positive, got %v", c.ArriveEpsilon)
	case c.RebuildDelayScale < 0:
		return fmt.Errorf("rebuild_delay_scale must not be negative, got %v", c.RebuildDelayScale)
	}
	return nil
}

func (c Config) physicsParams() physics.Params {
	return physics.Params{
		FloorY:        c.FloorY,
		Gravity:       c.Gravity,
		Damping:       c.Damping,
		Bounce:        c.Bounce,
		RestSpeed:     c.RestSpeed,
		MorphSpeed:    c.MorphSpeed,
		ArriveEpsilon: c.ArriveEpsilon,
		ScatterSpeed:  c.ScatterSpeed,
		ScatterLift:   c.ScatterLift,
		ScatterSpin:   c.ScatterSpin,
	}
}

func (c Config) solverParams() solver.Params {
	return solver.Params{
		FloorY:            c.FloorY,
		MaterialPenalty:   c.MaterialPenalty,
		RebuildDelayScale: time.Duration(c.RebuildDelayScale),
		PlaceholderLift:   c.PlaceholderLift,
	}
}

// Duration marshals as a Go duration string ("120ms").
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
	var ms float64
	if err := json.Unmarshal(b, &ms); err != nil {
		return fmt.Errorf("duration must be a string or milliseconds: %s", b)
	}
	*d = Duration(ms * float64(time.Millisecond))
	return nil
}
