package batch

import "fmt"

// AddUniform registers name with kind. Registering a name twice keeps the
// first registration. A name the program does not use is still recorded and
// later writes to it are discarded.
func (p *Program) AddUniform(name string, kind UniformKind) error {
	if err := p.assertBound("AddUniform"); err != nil {
		return err
	}
	if _, ok := p.uniforms[name]; ok {
		return nil
	}
	if kind == 0 || kind > UniformMat4 {
		return fmt.Errorf("%w: %q has kind %v", ErrTypeMismatch, name, kind)
	}
	slot, ok := p.ctx.backend.UniformSlot(p.handle, name)
	if !ok {
		slot = -1
		Logger().Debug("batch: uniform not active in program", "name", name)
	}
	p.uniforms[name] = uniform{slot: slot, kind: kind}
	return nil
}

// HasUniform reports whether name was registered.
func (p *Program) HasUniform(name string) bool {
	_, ok := p.uniforms[name]
	return ok
}

// lookupUniform returns the registration for name. ok is false for
// unregistered names, which setters ignore silently.
func (p *Program) lookupUniform(op, name string, want uniformFamily) (u uniform, ok bool, err error) {
	if err := p.assertBound(op); err != nil {
		return uniform{}, false, err
	}
	u, ok = p.uniforms[name]
	if !ok {
		return uniform{}, false, nil
	}
	if u.kind.family() != want {
		return uniform{}, false, fmt.Errorf("%w: %s on %q declared as %v", ErrTypeMismatch, op, name, u.kind)
	}
	return u, true, nil
}

// SetUniformInt sets an int uniform.
func (p *Program) SetUniformInt(name string, v int32) error {
	u, ok, err := p.lookupUniform("SetUniformInt", name, familyInt)
	if !ok {
		return err
	}
	p.ctx.backend.SetUniformInts(p.handle, u.slot, u.kind, []int32{v})
	return nil
}

// SetUniformIntVec sets an ivec2, ivec3 or ivec4 uniform. The number of
// values must match the declared kind.
func (p *Program) SetUniformIntVec(name string, v ...int32) error {
	u, ok, err := p.lookupUniform("SetUniformIntVec", name, familyIntVec)
	if !ok {
		return err
	}
	if len(v) != u.kind.Components() {
		return fmt.Errorf("%w: %q is %v, got %d values", ErrValueLength, name, u.kind, len(v))
	}
	p.ctx.backend.SetUniformInts(p.handle, u.slot, u.kind, v)
	return nil
}

// SetUniformIntArray sets an int array uniform.
func (p *Program) SetUniformIntArray(name string, v []int32) error {
	u, ok, err := p.lookupUniform("SetUniformIntArray", name, familyIntArray)
	if !ok {
		return err
	}
	p.ctx.backend.SetUniformInts(p.handle, u.slot, u.kind, v)
	return nil
}

// SetUniformFloat sets a float uniform.
func (p *Program) SetUniformFloat(name string, v float32) error {
	u, ok, err := p.lookupUniform("SetUniformFloat", name, familyFloat)
	if !ok {
		return err
	}
	p.ctx.backend.SetUniformFloats(p.handle, u.slot, u.kind, []float32{v})
	return nil
}

// SetUniformFloatVec sets a vec2, vec3 or vec4 uniform.
func (p *Program) SetUniformFloatVec(name string, v ...float32) error {
	u, ok, err := p.lookupUniform("SetUniformFloatVec", name, familyFloatVec)
	if !ok {
		return err
	}
	if len(v) != u.kind.Components() {
		return fmt.Errorf("%w: %q is %v, got %d values", ErrValueLength, name, u.kind, len(v))
	}
	p.ctx.backend.SetUniformFloats(p.handle, u.slot, u.kind, v)
	return nil
}

// SetUniformFloatArray sets a float array uniform.
func (p *Program) SetUniformFloatArray(name string, v []float32) error {
	u, ok, err := p.lookupUniform("SetUniformFloatArray", name, familyFloatArray)
	if !ok {
		return err
	}
	p.ctx.backend.SetUniformFloats(p.handle, u.slot, u.kind, v)
	return nil
}

// SetUniformMatrix sets a mat2, mat3 or mat4 uniform from row-major values.
func (p *Program) SetUniformMatrix(name string, rowMajor []float32) error {
	u, ok, err := p.lookupUniform("SetUniformMatrix", name, familyMatrix)
	if !ok {
		return err
	}
	if len(rowMajor) != u.kind.Components() {
		return fmt.Errorf("%w: %q is %v, got %d values", ErrValueLength, name, u.kind, len(rowMajor))
	}
	p.ctx.backend.SetUniformFloats(p.handle, u.slot, u.kind, rowMajor)
	return nil
}
