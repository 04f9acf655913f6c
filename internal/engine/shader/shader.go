// Package shader resolves shader programs by logical name.
//
// A program "name" is the pair name.vert / name.frag inside a file system.
// The built-in GLSL programs are embedded.
package shader

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/Faultbox/fieldview/internal/engine/rhi"
)

// Built-in program names.
const (
	Walkmesh   = "walkmesh"
	Background = "background"
)

// Uniform and sampler names used by the built-in programs.
const (
	UniformBlock      = "Uniforms"
	BackgroundSampler = "background"
)

// ErrProgramNotFound is returned when a program has no source.
var ErrProgramNotFound = errors.New("shader: program not found")

//go:embed glsl/*.vert glsl/*.frag
var builtin embed.FS

// Library loads programs from a file system and caches them.
type Library struct {
	fsys  fs.FS
	dir   string
	cache map[string]rhi.ShaderSource
}

// New returns a library reading name.vert / name.frag from dir in fsys.
func New(fsys fs.FS, dir string) *Library {
	return &Library{fsys: fsys, dir: dir, cache: make(map[string]rhi.ShaderSource)}
}

// Builtin returns the library of embedded GLSL programs.
func Builtin() *Library {
	return New(builtin, "glsl")
}

// Program returns the sources of the named program.
func (l *Library) Program(name string) (rhi.ShaderSource, error) {
	if src, ok := l.cache[name]; ok {
		return src, nil
	}

	vert, err := l.read(name + ".vert")
	if err != nil {
		return rhi.ShaderSource{}, err
	}
	frag, err := l.read(name + ".frag")
	if err != nil {
		return rhi.ShaderSource{}, err
	}

	src := rhi.ShaderSource{Name: name, Vertex: vert, Fragment: frag}
	l.cache[name] = src
	return src, nil
}

func (l *Library) read(file string) ([]byte, error) {
	data, err := fs.ReadFile(l.fsys, path.Join(l.dir, file))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", file, ErrProgramNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty: %w", file, ErrProgramNotFound)
	}
	return data, nil
}
