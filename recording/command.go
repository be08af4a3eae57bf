package recording

import "github.com/gogpu/batch"

// CommandType identifies the type of a command.
type CommandType uint8

const (
	// Program commands
	CmdCompile         CommandType = iota // Compile a program
	CmdDestroyProgram                     // Release a program
	CmdConfigureLayout                    // Configure the vertex layout
	CmdUseProgram                         // Activate a program
	CmdUploadVertices                     // Replace vertex buffer contents
	CmdUploadIndices                      // Replace index buffer contents
	CmdSetUniform                         // Upload uniform values

	// Texture commands
	CmdCreateTexture  // Create a texture
	CmdUpdateTexture  // Overwrite a texture region
	CmdDestroyTexture // Release a texture
	CmdBindTexture    // Bind a texture to a slot
	CmdSetSampling    // Change filter, wrap or border color

	// Drawing commands
	CmdDraw // Indexed draw call
)

var commandTypeNames = [...]string{
	CmdCompile:         "Compile",
	CmdDestroyProgram:  "DestroyProgram",
	CmdConfigureLayout: "ConfigureLayout",
	CmdUseProgram:      "UseProgram",
	CmdUploadVertices:  "UploadVertices",
	CmdUploadIndices:   "UploadIndices",
	CmdSetUniform:      "SetUniform",
	CmdCreateTexture:   "CreateTexture",
	CmdUpdateTexture:   "UpdateTexture",
	CmdDestroyTexture:  "DestroyTexture",
	CmdBindTexture:     "BindTexture",
	CmdSetSampling:     "SetSampling",
	CmdDraw:            "Draw",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is the interface implemented by all command types.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// CompileCommand records a successful CompileProgram.
type CompileCommand struct {
	Program batch.ProgramHandle
}

// Type implements Command.
func (CompileCommand) Type() CommandType { return CmdCompile }

// DestroyProgramCommand records a DestroyProgram.
type DestroyProgramCommand struct {
	Program batch.ProgramHandle
}

// Type implements Command.
func (DestroyProgramCommand) Type() CommandType { return CmdDestroyProgram }

// ConfigureLayoutCommand records a ConfigureLayout.
type ConfigureLayoutCommand struct {
	Program batch.ProgramHandle
	Layout  batch.VertexLayout
}

// Type implements Command.
func (ConfigureLayoutCommand) Type() CommandType { return CmdConfigureLayout }

// UseProgramCommand records a UseProgram.
type UseProgramCommand struct {
	Program batch.ProgramHandle
}

// Type implements Command.
func (UseProgramCommand) Type() CommandType { return CmdUseProgram }

// UploadVerticesCommand records a vertex upload.
type UploadVerticesCommand struct {
	Program batch.ProgramHandle
	// Size is the uploaded length in bytes.
	Size int
}

// Type implements Command.
func (UploadVerticesCommand) Type() CommandType { return CmdUploadVertices }

// UploadIndicesCommand records an index upload.
type UploadIndicesCommand struct {
	Program batch.ProgramHandle
	Count   int
}

// Type implements Command.
func (UploadIndicesCommand) Type() CommandType { return CmdUploadIndices }

// SetUniformCommand records a uniform upload. Exactly one of Ints and
// Floats is set.
type SetUniformCommand struct {
	Program batch.ProgramHandle
	Slot    int
	Kind    batch.UniformKind
	Ints    []int32
	Floats  []float32
}

// Type implements Command.
func (SetUniformCommand) Type() CommandType { return CmdSetUniform }

// CreateTextureCommand records a CreateTexture.
type CreateTextureCommand struct {
	Texture    batch.TextureHandle
	Descriptor batch.TextureDescriptor
}

// Type implements Command.
func (CreateTextureCommand) Type() CommandType { return CmdCreateTexture }

// UpdateTextureCommand records an UpdateTexture.
type UpdateTextureCommand struct {
	Texture             batch.TextureHandle
	X, Y, Width, Height int
}

// Type implements Command.
func (UpdateTextureCommand) Type() CommandType { return CmdUpdateTexture }

// DestroyTextureCommand records a DestroyTexture.
type DestroyTextureCommand struct {
	Texture batch.TextureHandle
}

// Type implements Command.
func (DestroyTextureCommand) Type() CommandType { return CmdDestroyTexture }

// BindTextureCommand records a BindTexture.
type BindTextureCommand struct {
	Texture batch.TextureHandle
	Slot    int
}

// Type implements Command.
func (BindTextureCommand) Type() CommandType { return CmdBindTexture }

// SetSamplingCommand records a SetTextureSampling.
type SetSamplingCommand struct {
	Texture  batch.TextureHandle
	Sampling batch.Sampling
}

// Type implements Command.
func (SetSamplingCommand) Type() CommandType { return CmdSetSampling }

// DrawCommand records a DrawIndexed. Draw indexes Backend.Draws.
type DrawCommand struct {
	Program  batch.ProgramHandle
	Topology batch.Topology
	Count    int
	Draw     int
}

// Type implements Command.
func (DrawCommand) Type() CommandType { return CmdDraw }
