package field

import (
	"fmt"
	"image"
	_ "image/png" // background images
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp" // background images
	"gopkg.in/yaml.v3"
)

// fixture is the YAML dump of a field used by the viewer and tests.
type fixture struct {
	// Scale divides every coordinate; 0 or 1 keeps raw values.
	Scale      float32          `yaml:"scale"`
	Background string           `yaml:"background"`
	Triangles  [][][3]float32   `yaml:"triangles"`
	Cameras    []fixtureCamera  `yaml:"cameras"`
	Gateways   []fixtureGateway `yaml:"gateways"`
	Triggers   []fixtureTrigger `yaml:"triggers"`
}

type fixtureCamera struct {
	Position [3]float32    `yaml:"position"`
	Axes     [3][3]float32 `yaml:"axes"`
	Zoom     float32       `yaml:"zoom"`
}

type fixtureGateway struct {
	Line    [2][3]float32 `yaml:"line"`
	FieldID uint16        `yaml:"field_id"`
}

type fixtureTrigger struct {
	Line   [2][3]float32 `yaml:"line"`
	DoorID uint8         `yaml:"door_id"`
}

// LoadFile reads a YAML field dump. A relative background path is resolved
// against the directory of the dump.
func LoadFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := Parse(raw, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return d, nil
}

// Parse decodes a YAML field dump. baseDir is used to resolve the background path.
func Parse(raw []byte, baseDir string) (*Data, error) {
	var fx fixture
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return nil, err
	}

	scale := fx.Scale
	if scale == 0 {
		scale = 1
	}
	vtx := func(p [3]float32) Vertex {
		return Vertex{X: p[0] / scale, Y: p[1] / scale, Z: p[2] / scale}
	}

	d := &Data{
		Mesh:  make([]Triangle, 0, len(fx.Triangles)),
		Views: make([]Camera, 0, len(fx.Cameras)),
		Exits: make([]Gateway, 0, len(fx.Gateways)),
		Doors: make([]Trigger, 0, len(fx.Triggers)),
	}

	for i, tri := range fx.Triangles {
		if len(tri) != 3 {
			return nil, fmt.Errorf("triangle %d has %d vertices, want 3", i, len(tri))
		}
		d.Mesh = append(d.Mesh, Triangle{Vertices: [3]Vertex{vtx(tri[0]), vtx(tri[1]), vtx(tri[2])}})
	}

	// Camera axes are unit-ish direction vectors and are not rescaled.
	for _, c := range fx.Cameras {
		cam := Camera{Position: vtx(c.Position), Zoom: c.Zoom}
		for i, a := range c.Axes {
			cam.Axes[i] = Vertex{X: a[0], Y: a[1], Z: a[2]}
		}
		d.Views = append(d.Views, cam)
	}

	for _, g := range fx.Gateways {
		d.Exits = append(d.Exits, Gateway{Line: [2]Vertex{vtx(g.Line[0]), vtx(g.Line[1])}, FieldID: g.FieldID})
	}
	for _, tr := range fx.Triggers {
		d.Doors = append(d.Doors, Trigger{Line: [2]Vertex{vtx(tr.Line[0]), vtx(tr.Line[1])}, DoorID: tr.DoorID})
	}

	if fx.Background != "" {
		path := fx.Background
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		img, err := loadImage(path)
		if err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
		d.Image = img
	}

	return d, nil
}

// loadImage decodes PNG, BMP or TGA. TGA has no magic number and is picked by extension.
func loadImage(path string) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		img, err := decodeTGA(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}
