// Package settings captures the tunable parameters of the petrel terrain
// and ocean engine. A Settings value is frozen at startup and passed by
// value into each component's constructor; nothing reads it ambiently and
// nothing mutates it mid-session.
package settings

import (
	"errors"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
	"runtime.link/api/xray"
)

// Settings for the whole engine.
type Settings struct {
	Seed int64 `yaml:"seed"`

	Terrain Terrain `yaml:"terrain"`
	Clipmap Clipmap `yaml:"clipmap"`
	Depth   Depth   `yaml:"depth"`
	Ocean   Ocean   `yaml:"ocean"`
}

// Terrain parameters shared by the mesh and depth-texture paths.
type Terrain struct {
	Octaves     int     `yaml:"octaves"`      // fractal noise octaves
	BaseScale   float64 `yaml:"base_scale"`   // world units per noise unit
	HeightScale float64 `yaml:"height_scale"` // world height of a full-range sample

	ContinentSpacing    float64 `yaml:"continent_spacing"`     // coarse seed-cell size
	ContinentRadiusMin  float64 `yaml:"continent_radius_min"`  // smallest land radius
	ContinentRadiusMax  float64 `yaml:"continent_radius_max"`  // largest land radius
	ContinentTransition float64 `yaml:"continent_transition"`  // coast ring width
	HomeRadius          float64 `yaml:"home_radius"`           // guaranteed land around spawn
	MinDepth            float64 `yaml:"min_depth"`             // ocean floor clamp, negative
	LevelTransition     float64 `yaml:"level_transition"`      // leveled-area blend band
	MaskCacheCells      int     `yaml:"mask_cache_cells"`      // continent cache capacity
	MaskCacheCellSize   float64 `yaml:"mask_cache_cell_size"`  // world units per cache cell
	OceanDetailScale    float64 `yaml:"ocean_detail_scale"`    // seabed detail frequency
	OceanDetailStrength float64 `yaml:"ocean_detail_strength"` // seabed detail amplitude
}

// Clipmap geometry parameters.
type Clipmap struct {
	Levels          int     `yaml:"levels"`           // concentric LOD rings
	Resolution      int     `yaml:"resolution"`       // vertices per ring side, 2^k+1
	InnerResolution int     `yaml:"inner_resolution"` // innermost ring, 2^k+1
	BaseScale       float64 `yaml:"base_scale"`       // finest vertex spacing
	Smoothing       float64 `yaml:"smoothing"`        // display-height approach rate 1/s
	SmoothedLevels  int     `yaml:"smoothed_levels"`  // innermost levels that smooth
}

// Depth texture parameters for the shoreline sampler.
type Depth struct {
	Resolution int     `yaml:"resolution"` // texels per side
	Range      float64 `yaml:"range"`      // world units covered per side
	Hysteresis float64 `yaml:"hysteresis"` // recenter after this much movement
	EdgeFade   int     `yaml:"edge_fade"`  // texels faded to the deep sentinel
}

// Wave is one Gerstner component.
type Wave struct {
	DirectionX float64 `yaml:"direction_x"`
	DirectionZ float64 `yaml:"direction_z"`
	Steepness  float64 `yaml:"steepness"`
	Wavelength float64 `yaml:"wavelength"`
}

// Ocean parameters.
type Ocean struct {
	ChunkSize    float64 `yaml:"chunk_size"`    // water tile side length
	ChunkRadius  int     `yaml:"chunk_radius"`  // tiles kept around the viewer
	Waves        [4]Wave `yaml:"waves"`         // Gerstner components
	FullDepth    float64 `yaml:"full_depth"`    // depth of undamped waves
	ClampDepth   float64 `yaml:"clamp_depth"`   // depth below which waves are killed
	FoamDepth    float64 `yaml:"foam_depth"`    // shoreline foam band
	FoamSteepest float64 `yaml:"foam_steepest"` // slope at which foam saturates
}

// Default returns the settings the engine ships with. They are also the
// fallback whenever a settings file is absent.
func Default() Settings {
	return Settings{
		Seed: 12345,
		Terrain: Terrain{
			Octaves:             6,
			BaseScale:           192,
			HeightScale:         48,
			ContinentSpacing:    2048,
			ContinentRadiusMin:  512,
			ContinentRadiusMax:  896,
			ContinentTransition: 256,
			HomeRadius:          512,
			MinDepth:            -0.4,
			LevelTransition:     3,
			MaskCacheCells:      4096,
			MaskCacheCellSize:   16,
			OceanDetailScale:    384,
			OceanDetailStrength: 0.1,
		},
		Clipmap: Clipmap{
			Levels:          6,
			Resolution:      33,
			InnerResolution: 65,
			BaseScale:       1,
			Smoothing:       6,
			SmoothedLevels:  4,
		},
		Depth: Depth{
			Resolution: 128,
			Range:      512,
			Hysteresis: 32,
			EdgeFade:   4,
		},
		Ocean: Ocean{
			ChunkSize:   32,
			ChunkRadius: 4,
			Waves: [4]Wave{
				{DirectionX: 1, DirectionZ: 0.3, Steepness: 0.25, Wavelength: 24},
				{DirectionX: 0.6, DirectionZ: -1, Steepness: 0.2, Wavelength: 13},
				{DirectionX: -0.4, DirectionZ: 0.9, Steepness: 0.15, Wavelength: 7},
				{DirectionX: 0.9, DirectionZ: 0.8, Steepness: 0.1, Wavelength: 3.5},
			},
			FullDepth:    2.5,
			ClampDepth:   0.08,
			FoamDepth:    0.6,
			FoamSteepest: 1.4,
		},
	}
}

// Load reads a yaml settings file, filling any omitted section from
// [Default]. The result is validated before it is returned, so a Settings
// value in circulation is always a checked one.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, xray.New(err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, xray.New(err)
	}
	if err := s.Validate(); err != nil {
		return s, xray.New(err)
	}
	return s, nil
}

// Validate reports configuration defects. Clipmap resolutions that are not
// of the form 2^k+1 degrade gracefully (slightly uneven seam alignment), so
// they warn rather than fail.
func (s Settings) Validate() error {
	if s.Terrain.Octaves < 1 {
		return errors.New("settings: terrain octaves must be at least 1")
	}
	if s.Terrain.BaseScale <= 0 || s.Terrain.HeightScale <= 0 {
		return errors.New("settings: terrain scales must be positive")
	}
	if s.Terrain.MinDepth >= 0 {
		return errors.New("settings: minimum depth must be below sea level")
	}
	if s.Terrain.ContinentTransition <= 0 {
		return errors.New("settings: continent transition width must be positive")
	}
	if s.Terrain.ContinentRadiusMin <= 0 || s.Terrain.ContinentRadiusMin > s.Terrain.ContinentRadiusMax {
		return errors.New("settings: continent radius range is inverted or empty")
	}
	if s.Terrain.ContinentRadiusMax+s.Terrain.ContinentTransition > s.Terrain.ContinentSpacing {
		return errors.New("settings: continent radius and transition exceed seed spacing")
	}
	if s.Terrain.HomeRadius < 0 {
		return errors.New("settings: home radius must not be negative")
	}
	if s.Terrain.MaskCacheCells < 16 {
		return errors.New("settings: continent mask cache too small")
	}
	if s.Clipmap.Levels < 2 {
		return errors.New("settings: clipmap needs at least 2 levels")
	}
	for _, resolution := range []int{s.Clipmap.Resolution, s.Clipmap.InnerResolution} {
		if resolution < 3 {
			return fmt.Errorf("settings: clipmap resolution %d too small", resolution)
		}
		if !isPowerOfTwoPlusOne(resolution) {
			log.Printf("settings: clipmap resolution %d is not 2^k+1, seams may land between vertices", resolution)
		}
	}
	if s.Depth.Resolution < 2 || s.Depth.Range <= 0 {
		return errors.New("settings: depth texture resolution and range must be positive")
	}
	if s.Depth.EdgeFade*2 >= s.Depth.Resolution {
		return errors.New("settings: depth texture edge fade swallows the whole texture")
	}
	if s.Ocean.ChunkSize <= 0 || s.Ocean.ChunkRadius < 1 {
		return errors.New("settings: ocean chunk size and radius must be positive")
	}
	if s.Ocean.FullDepth <= 0 || s.Ocean.FoamDepth <= 0 || s.Ocean.FoamSteepest <= 0 {
		return errors.New("settings: ocean depth and foam thresholds must be positive")
	}
	if s.Ocean.ClampDepth < 0 || s.Ocean.ClampDepth >= s.Ocean.FullDepth {
		return errors.New("settings: clamp depth must sit between zero and full wave depth")
	}
	for i, wave := range s.Ocean.Waves {
		if wave.Wavelength <= 0 {
			return fmt.Errorf("settings: wave %d has non-positive wavelength", i)
		}
		if wave.DirectionX == 0 && wave.DirectionZ == 0 {
			return fmt.Errorf("settings: wave %d has no direction", i)
		}
	}
	return nil
}

func isPowerOfTwoPlusOne(n int) bool {
	n--
	return n > 0 && n&(n-1) == 0
}
