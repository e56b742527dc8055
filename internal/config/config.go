// Package config handles facet configuration loading and management.
package config

import "time"

// Config holds all facet settings.
type Config struct {
	Editor  EditorConfig  `yaml:"editor"`
	Kernel  KernelConfig  `yaml:"kernel"`
	Engine  EngineConfig  `yaml:"engine"`
	Logging LoggingConfig `yaml:"logging"`
}

// EditorConfig holds interactive editing settings.
type EditorConfig struct {
	MergeDistance   float64 `yaml:"merge_distance"`    // merge-by-distance tolerance
	DragSensitivity float64 `yaml:"drag_sensitivity"`  // pointer pixels to world units per unit of view distance
	DefaultShading  string  `yaml:"default_shading"`   // "flat" or "smooth"
	HistoryLimit    int     `yaml:"history_limit"`     // undo steps kept per scene
	FilletDivisions int     `yaml:"fillet_divisions"`  // default arc steps for fillet
	LoopCutSegments int     `yaml:"loop_cut_segments"` // default cuts for loop cut
}

// KernelConfig holds solid kernel settings.
type KernelConfig struct {
	MeshCells     int     `yaml:"mesh_cells"`     // marching cubes resolution along the longest axis
	WeldTolerance float64 `yaml:"weld_tolerance"` // distance below which imported vertices are merged
}

// EngineConfig holds script engine settings.
type EngineConfig struct {
	EvalTimeout time.Duration `yaml:"eval_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			MergeDistance:   0.0001,
			DragSensitivity: 0.002,
			DefaultShading:  "flat",
			HistoryLimit:    100,
			FilletDivisions: 4,
			LoopCutSegments: 1,
		},
		Kernel: KernelConfig{
			MeshCells:     200,
			WeldTolerance: 1e-6,
		},
		Engine: EngineConfig{
			EvalTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
