package glrhi

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/fieldview/internal/engine/rhi"
)

// ShaderError carries the driver's info log for a failed compile or link.
type ShaderError struct {
	Program string
	Stage   string // "vertex", "fragment" or "link"
	Log     string
}

func (e *ShaderError) Error() string {
	return fmt.Sprintf("program %q %s: %s", e.Program, e.Stage, strings.TrimRight(e.Log, "\x00\n "))
}

var stages = []struct {
	name string
	kind uint32
	src  func(rhi.ShaderSource) []byte
}{
	{"vertex", gl.VERTEX_SHADER, func(s rhi.ShaderSource) []byte { return s.Vertex }},
	{"fragment", gl.FRAGMENT_SHADER, func(s rhi.ShaderSource) []byte { return s.Fragment }},
}

// linkProgram compiles every stage of src and links them. Stage objects are
// released once the program exists.
func linkProgram(src rhi.ShaderSource) (uint32, error) {
	program := gl.CreateProgram()
	shaders := make([]uint32, 0, len(stages))
	defer func() {
		for _, s := range shaders {
			gl.DetachShader(program, s)
			gl.DeleteShader(s)
		}
	}()

	for _, st := range stages {
		s, err := compileStage(src.Name, st.name, st.kind, st.src(src))
		if err != nil {
			gl.DeleteProgram(program)
			return 0, err
		}
		gl.AttachShader(program, s)
		shaders = append(shaders, s)
	}

	gl.LinkProgram(program)
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		log := infoLog(program, gl.GetProgramiv, gl.GetProgramInfoLog)
		gl.DeleteProgram(program)
		return 0, &ShaderError{Program: src.Name, Stage: "link", Log: log}
	}
	return program, nil
}

func compileStage(program, stage string, kind uint32, source []byte) (uint32, error) {
	s := gl.CreateShader(kind)
	csrc, free := gl.Strs(string(source) + "\x00")
	gl.ShaderSource(s, 1, csrc, nil)
	free()
	gl.CompileShader(s)

	var status int32
	gl.GetShaderiv(s, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		log := infoLog(s, gl.GetShaderiv, gl.GetShaderInfoLog)
		gl.DeleteShader(s)
		return 0, &ShaderError{Program: program, Stage: stage, Log: log}
	}
	return s, nil
}

func infoLog(obj uint32, param func(uint32, uint32, *int32), read func(uint32, int32, *int32, *uint8)) string {
	var n int32
	param(obj, gl.INFO_LOG_LENGTH, &n)
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n+1)
	read(obj, n, nil, &buf[0])
	return string(buf)
}

// resolveBindings looks up every binding of desc in the linked program.
// A binding the program does not declare is an error.
func resolveBindings(program uint32, desc rhi.PipelineDescriptor) (blocks map[string]uint32, samplers map[string]int32, err error) {
	blocks = make(map[string]uint32)
	samplers = make(map[string]int32)
	for _, b := range desc.Bindings {
		name := gl.Str(b.Name + "\x00")
		if b.Type == rhi.BindingSampledTexture {
			loc := gl.GetUniformLocation(program, name)
			if loc < 0 {
				return nil, nil, fmt.Errorf("program %q has no sampler %q", desc.Shader.Name, b.Name)
			}
			samplers[b.Name] = loc
			continue
		}
		idx := gl.GetUniformBlockIndex(program, name)
		if idx == gl.INVALID_INDEX {
			return nil, nil, fmt.Errorf("program %q has no uniform block %q", desc.Shader.Name, b.Name)
		}
		blocks[b.Name] = idx
	}
	return blocks, samplers, nil
}
