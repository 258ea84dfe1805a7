package costmap

import (
	"image"
	"image/color"
	// register png.
	_ "image/png"
	"os"
	"path/filepath"

	// register ppm.
	_ "github.com/lmittmann/ppm"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// MapMetadata is the map-server style description of an occupancy image.
type MapMetadata struct {
	Image          string     `yaml:"image"`
	Resolution     float64    `yaml:"resolution"`
	Origin         [3]float64 `yaml:"origin"`
	Negate         int        `yaml:"negate"`
	OccupiedThresh float64    `yaml:"occupied_thresh"`
	FreeThresh     float64    `yaml:"free_thresh"`
}

// Validate ensures all parts of the metadata are valid.
func (md *MapMetadata) Validate() error {
	var err error
	if md.Image == "" {
		err = multierr.Append(err, errors.New(`"image" is required`))
	}
	if md.Resolution <= 0 {
		err = multierr.Append(err, errors.Errorf(`"resolution" must be positive, got %f`, md.Resolution))
	}
	if md.FreeThresh < 0 || md.OccupiedThresh > 1 || md.FreeThresh > md.OccupiedThresh {
		err = multierr.Append(err, errors.Errorf(
			`thresholds must satisfy 0 <= free_thresh (%f) <= occupied_thresh (%f) <= 1`, md.FreeThresh, md.OccupiedThresh))
	}
	return err
}

// LoadMap reads a map metadata YAML file and the occupancy image it references (relative paths are
// resolved against the YAML file's directory).
func LoadMap(yamlPath string) (*Map, error) {
	//nolint:gosec
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read map metadata")
	}
	md := MapMetadata{OccupiedThresh: 0.65, FreeThresh: 0.196}
	if err := yaml.Unmarshal(data, &md); err != nil {
		return nil, errors.Wrapf(err, "cannot parse map metadata %q", yamlPath)
	}
	if err := md.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid map metadata %q", yamlPath)
	}

	imgPath := md.Image
	if !filepath.IsAbs(imgPath) {
		imgPath = filepath.Join(filepath.Dir(yamlPath), imgPath)
	}
	//nolint:gosec
	f, err := os.Open(imgPath)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open map image")
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot decode map image %q", imgPath)
	}
	return NewMapFromImage(img, md)
}

// NewMapFromImage converts an occupancy image into a Map. The top image row becomes the highest grid
// row. Each pixel's occupancy probability is compared against the thresholds to mark it lethal, free
// or unknown.
func NewMapFromImage(img image.Image, md MapMetadata) (*Map, error) {
	bounds := img.Bounds()
	m, err := NewMap(bounds.Dx(), bounds.Dy(), md.Resolution, md.Origin[0], md.Origin[1])
	if err != nil {
		return nil, err
	}
	height := bounds.Dy()
	for row := 0; row < height; row++ {
		for col := 0; col < bounds.Dx(); col++ {
			occ := occupancy(img.At(bounds.Min.X+col, bounds.Min.Y+row), md.Negate != 0)
			cost := NoInformation
			switch {
			case occ > md.OccupiedThresh:
				cost = LethalObstacle
			case occ < md.FreeThresh:
				cost = FreeSpace
			}
			m.costs.Set(height-1-row, col, cost)
		}
	}
	return m, nil
}

// occupancy maps a pixel to [0, 1] where dark pixels are occupied unless negate is set.
func occupancy(c color.Color, negate bool) float64 {
	r, g, b, _ := c.RGBA()
	gray := (float64(r) + float64(g) + float64(b)) / 3 / 0xffff
	if negate {
		return gray
	}
	return 1 - gray
}
