package recording

// The recording backend never compiles these; they document the layout the
// default program expects and supply the uniform names.
const defaultVertexShader = `#version 330 core
layout(location = 0) in vec2 a_position;
layout(location = 1) in vec4 a_color;
layout(location = 2) in vec2 a_texcoord;
uniform mat4 u_projection;
out vec4 v_color;
out vec2 v_texcoord;
void main() {
	v_color = a_color;
	v_texcoord = a_texcoord;
	gl_Position = u_projection * vec4(a_position, 0.0, 1.0);
}
`

const defaultFragmentShader = `#version 330 core
in vec4 v_color;
in vec2 v_texcoord;
uniform sampler2D u_texture;
out vec4 frag_color;
void main() {
	frag_color = texture(u_texture, v_texcoord) * v_color;
}
`
