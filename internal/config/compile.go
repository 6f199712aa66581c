package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE string

// CompileError is a configuration error with an optional CUE position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// rawConfig mirrors the CUE layout for decoding.
type rawConfig struct {
	Deck struct {
		ID            string  `json:"id"`
		OffsetTop     int64   `json:"offset_top"`
		FreeScrolling bool    `json:"free_scrolling"`
		Cards         []int64 `json:"cards"`
	} `json:"deck"`
	Constants struct {
		Gap         int64  `json:"gap"`
		TopDistance int64  `json:"top_distance"`
		DeltaMin    int64  `json:"delta_min"`
		DeltaMax    int64  `json:"delta_max"`
		ScrollStep  int64  `json:"scroll_step"`
		TouchStep   int64  `json:"touch_step"`
		WheelMode   string `json:"wheel_mode"`
	} `json:"constants"`
	TimeoutsMS struct {
		Wheel int64 `json:"wheel"`
		Touch int64 `json:"touch"`
		Drag  int64 `json:"drag"`
		Click int64 `json:"click"`
	} `json:"timeouts_ms"`
	Viewport struct {
		MaxScroll   int64 `json:"max_scroll"`
		TrackHeight int64 `json:"track_height"`
	} `json:"viewport"`
}

// Load compiles every .cue file in dir as a single instance.
func Load(dir string) (Config, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return Config{}, fmt.Errorf("config directory: %w", err)
	}
	if !info.IsDir() {
		return Config{}, fmt.Errorf("config directory: not a directory: %s", dir)
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return Config{}, fmt.Errorf("scan config directory: %w", err)
	}
	if len(files) == 0 {
		return Config{}, fmt.Errorf("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return Config{}, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return Config{}, fmt.Errorf("loading CUE files: %w", formatCUEError(inst.Err))
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return Config{}, fmt.Errorf("building CUE value: %w", formatCUEError(err))
	}
	return Compile(value)
}

// LoadFiles compiles the given .cue files unified as one configuration.
func LoadFiles(paths ...string) (Config, error) {
	if len(paths) == 0 {
		return Config{}, fmt.Errorf("no config files given")
	}

	ctx := cuecontext.New()
	var value cue.Value
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		v := ctx.CompileBytes(data, cue.Filename(path))
		if err := v.Err(); err != nil {
			return Config{}, formatCUEError(err)
		}
		if i == 0 {
			value = v
		} else {
			value = value.Unify(v)
		}
	}
	return Compile(value)
}

// CompileString compiles configuration source held in memory.
func CompileString(src string) (Config, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename("config.cue"))
	if err := v.Err(); err != nil {
		return Config{}, formatCUEError(err)
	}
	return Compile(v)
}

// Compile unifies v with the schema, fills defaults and builds a Config.
func Compile(v cue.Value) (Config, error) {
	if err := v.Err(); err != nil {
		return Config{}, formatCUEError(err)
	}

	schema := v.Context().CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile schema: %w", err)
	}
	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, formatCUEError(err)
	}

	var raw rawConfig
	if err := unified.Decode(&raw); err != nil {
		return Config{}, formatCUEError(err)
	}

	cfg := Config{
		Deck: Deck{
			ID:            raw.Deck.ID,
			OffsetTop:     raw.Deck.OffsetTop,
			FreeScrolling: raw.Deck.FreeScrolling,
			CardHeights:   raw.Deck.Cards,
		},
		Constants: Constants{
			Gap:         raw.Constants.Gap,
			TopDistance: raw.Constants.TopDistance,
			DeltaMin:    raw.Constants.DeltaMin,
			DeltaMax:    raw.Constants.DeltaMax,
			ScrollStep:  raw.Constants.ScrollStep,
			TouchStep:   raw.Constants.TouchStep,
			WheelMode:   raw.Constants.WheelMode,
		},
		Timeouts: Timeouts{
			Wheel: time.Duration(raw.TimeoutsMS.Wheel) * time.Millisecond,
			Touch: time.Duration(raw.TimeoutsMS.Touch) * time.Millisecond,
			Drag:  time.Duration(raw.TimeoutsMS.Drag) * time.Millisecond,
			Click: time.Duration(raw.TimeoutsMS.Click) * time.Millisecond,
		},
		Viewport: Viewport{
			MaxScroll:   raw.Viewport.MaxScroll,
			TrackHeight: raw.Viewport.TrackHeight,
		},
	}

	if cfg.Constants.DeltaMin > cfg.Constants.DeltaMax {
		return Config{}, &CompileError{
			Field:   "constants.delta_min",
			Message: fmt.Sprintf("delta_min (%d) must not exceed delta_max (%d)", cfg.Constants.DeltaMin, cfg.Constants.DeltaMax),
			Pos:     unified.LookupPath(cue.ParsePath("constants.delta_min")).Pos(),
		}
	}
	return cfg, nil
}

// FindCUEFiles walks dir and returns every .cue file path.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// formatCUEError keeps the first CUE error together with its position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return &CompileError{Field: "cue", Message: first.Error()}
}
