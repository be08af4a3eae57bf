//go:build !nogpu

package wgpu

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"
)

type bindingKind uint8

const (
	bindUniform bindingKind = iota
	bindTexture
	bindSampler
)

func (k bindingKind) String() string {
	switch k {
	case bindUniform:
		return "uniform"
	case bindTexture:
		return "texture"
	default:
		return "sampler"
	}
}

// binding is one resource declaration of a program.
type binding struct {
	name       string
	index      uint32
	kind       bindingKind
	size       uint64 // uniform buffer size, 16-byte aligned
	visibility gputypes.ShaderStage
}

// bindingDecl matches `@group(G) @binding(B) var<space> name: type;`.
var bindingDecl = regexp.MustCompile(
	`@group\(\s*(\d+)\s*\)\s*@binding\(\s*(\d+)\s*\)\s*var(<\s*(\w+)\s*(?:,\s*\w+\s*)?>)?\s+(\w+)\s*:\s*([^;]+);`)

// reflectBindings collects the bindings of both stages ordered by binding
// index. A binding declared in both stages must agree on name and type.
func reflectBindings(vertexSource, fragmentSource string) ([]binding, error) {
	byIndex := make(map[uint32]*binding)
	stages := []struct {
		name   string
		source string
		stage  gputypes.ShaderStage
	}{
		{"vertex", vertexSource, gputypes.ShaderStageVertex},
		{"fragment", fragmentSource, gputypes.ShaderStageFragment},
	}
	for _, st := range stages {
		for _, m := range bindingDecl.FindAllStringSubmatch(stripComments(st.source), -1) {
			b, err := parseBinding(m)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", st.name, err)
			}
			b.visibility = st.stage
			prev, ok := byIndex[b.index]
			if !ok {
				byIndex[b.index] = &b
				continue
			}
			if prev.name != b.name || prev.kind != b.kind || prev.size != b.size {
				return nil, fmt.Errorf("%s: binding %d declared as %q (%s) and %q (%s)",
					st.name, b.index, prev.name, prev.kind, b.name, b.kind)
			}
			prev.visibility |= st.stage
		}
	}

	out := make([]binding, 0, len(byIndex))
	for _, b := range byIndex {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].index < out[j].index })
	return out, nil
}

func parseBinding(m []string) (binding, error) {
	group, _ := strconv.ParseUint(m[1], 10, 32)
	index, _ := strconv.ParseUint(m[2], 10, 32)
	space, name, typ := m[4], m[5], strings.TrimSpace(m[6])
	if group != 0 {
		return binding{}, fmt.Errorf("%s: only @group(0) is supported, got %d", name, group)
	}
	b := binding{name: name, index: uint32(index)}
	switch {
	case space == "uniform":
		size, ok := uniformTypeSize(typ)
		if !ok {
			return binding{}, fmt.Errorf("%s: unsupported uniform type %q", name, typ)
		}
		b.kind = bindUniform
		b.size = alignUp(size, 16)
	case space != "":
		return binding{}, fmt.Errorf("%s: unsupported address space %q", name, space)
	case strings.HasPrefix(typ, "texture_2d"):
		b.kind = bindTexture
	case typ == "sampler":
		b.kind = bindSampler
	default:
		return binding{}, fmt.Errorf("%s: unsupported binding type %q", name, typ)
	}
	return b, nil
}

var lineComment = regexp.MustCompile(`//[^\n]*`)

func stripComments(src string) string {
	return lineComment.ReplaceAllString(src, "")
}

// uniformTypeSize returns the size of a WGSL type in the uniform address
// space. Structs are not supported.
func uniformTypeSize(typ string) (uint64, bool) {
	typ = strings.ReplaceAll(typ, " ", "")
	switch typ {
	case "f32", "i32", "u32":
		return 4, true
	case "vec2f", "vec2i", "vec2u":
		return 8, true
	case "vec3f", "vec3i", "vec3u":
		return 12, true
	case "vec4f", "vec4i", "vec4u":
		return 16, true
	case "mat2x2f":
		return 16, true
	case "mat3x3f":
		return 48, true
	case "mat4x4f":
		return 64, true
	}
	if inner, ok := generic(typ, "array"); ok {
		comma := strings.LastIndexByte(inner, ',')
		if comma < 0 {
			return 0, false
		}
		elem, ok := uniformTypeSize(inner[:comma])
		if !ok {
			return 0, false
		}
		n, err := strconv.ParseUint(inner[comma+1:], 10, 32)
		if err != nil || n == 0 {
			return 0, false
		}
		return n * alignUp(elem, 16), true
	}
	for _, prefix := range []string{"vec2", "vec3", "vec4", "mat2x2", "mat3x3", "mat4x4"} {
		inner, ok := generic(typ, prefix)
		if !ok {
			continue
		}
		if inner != "f32" && (strings.HasPrefix(prefix, "mat") || (inner != "i32" && inner != "u32")) {
			return 0, false
		}
		switch prefix {
		case "vec2":
			return 8, true
		case "vec3":
			return 12, true
		case "vec4", "mat2x2":
			return 16, true
		case "mat3x3":
			return 48, true
		default:
			return 64, true
		}
	}
	return 0, false
}

// generic returns T for "name<T>".
func generic(typ, name string) (string, bool) {
	if !strings.HasPrefix(typ, name+"<") || !strings.HasSuffix(typ, ">") {
		return "", false
	}
	return typ[len(name)+1 : len(typ)-1], true
}

func alignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}
