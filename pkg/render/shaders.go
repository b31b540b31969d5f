package render

// Uniform block bindings shared by the built-in shaders.
const (
	BindingTransform   uint32 = 0
	BindingCamera      uint32 = 1
	BindingLight       uint32 = 2
	BindingMaterial    uint32 = 3
	BindingEnvironment uint32 = 4
)

// Shader file names. LoadShaderSources and the watcher key sources by these.
const (
	ShaderCommonVert     = "common.vert"
	ShaderBlinnPhongFrag = "blinnphong.frag"
	ShaderUnlitVert      = "unlitColor.vert"
	ShaderUnlitFrag      = "unlitColor.frag"
	ShaderGridVert       = "grid.vert"
	ShaderGridFrag       = "grid.frag"
)

// DefaultShaders returns a fresh copy of the built-in shader sources.
func DefaultShaders() map[string]string {
	return map[string]string{
		ShaderCommonVert:     commonVertSource,
		ShaderBlinnPhongFrag: blinnPhongFragSource,
		ShaderUnlitVert:      unlitVertSource,
		ShaderUnlitFrag:      unlitFragSource,
		ShaderGridVert:       gridVertSource,
		ShaderGridFrag:       gridFragSource,
	}
}

// Vertex shader for lit meshes
const commonVertSource = `
#version 450 core
layout(location = 0) in vec3 inPos;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inTexcoord;
layout(location = 3) in vec4 inColor;

layout(std140, binding = 0) uniform Transform {
    mat4 M;
};
layout(std140, binding = 1) uniform Camera {
    mat4 V;
    mat4 P;
    vec3 eyePos;
    float near;
    float far;
};

out gl_PerVertex {
    vec4 gl_Position;
};

layout(location = 0) out vec3 outWorldPos;
layout(location = 1) out vec3 outNormal;
layout(location = 2) out vec2 outTexcoord;
layout(location = 3) out vec4 outColor;

void main() {
    vec4 worldPos = M * vec4(inPos, 1.0);
    outWorldPos = worldPos.xyz;
    outNormal = mat3(transpose(inverse(M))) * inNormal;
    outTexcoord = inTexcoord;
    outColor = inColor;
    gl_Position = P * V * worldPos;
}
`

// Blinn-Phong fragment shader with one directional light
const blinnPhongFragSource = `
#version 450 core
layout(location = 0) in vec3 inWorldPos;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inTexcoord;
layout(location = 3) in vec4 inColor;

layout(std140, binding = 1) uniform Camera {
    mat4 V;
    mat4 P;
    vec3 eyePos;
    float near;
    float far;
};
layout(std140, binding = 2) uniform Light {
    vec3 lightColor;
    float lightIntensity;
    vec3 lightDir;
};
layout(std140, binding = 3) uniform Material {
    vec4 baseColor;
    float shininess;
    int baseColorTexIndex;
    int normalTexIndex;
};
layout(std140, binding = 4) uniform Environment {
    vec3 ambientColor;
    float ambientIntensity;
};

layout(location = 0) out vec4 outColor;

void main() {
    vec3 N = normalize(inNormal);
    vec3 L = normalize(lightDir);
    vec3 V = normalize(eyePos - inWorldPos);
    vec3 H = normalize(L + V);

    vec3 albedo = baseColor.rgb * inColor.rgb;
    vec3 ambient = ambientColor * ambientIntensity * albedo;
    vec3 diffuse = max(dot(N, L), 0.0) * albedo;
    vec3 specular = pow(max(dot(N, H), 0.0), shininess) * vec3(1.0);

    outColor = vec4(ambient + (diffuse + specular) * lightColor * lightIntensity, baseColor.a);
}
`

// Unlit vertex colour shaders for gizmos
const unlitVertSource = `
#version 450 core
layout(location = 0) in vec3 inPos;
layout(location = 3) in vec4 inColor;

layout(std140, binding = 0) uniform Transform {
    mat4 M;
};
layout(std140, binding = 1) uniform Camera {
    mat4 V;
    mat4 P;
    vec3 eyePos;
    float near;
    float far;
};

out gl_PerVertex {
    vec4 gl_Position;
};

layout(location = 0) out vec4 outColor;

void main() {
    outColor = inColor;
    gl_Position = P * V * M * vec4(inPos, 1.0);
}
`

const unlitFragSource = `
#version 450 core
layout(location = 0) in vec4 inColor;
layout(location = 0) out vec4 outColor;

void main() {
    outColor = inColor;
}
`

// Infinite ground grid generated from gl_VertexID
const gridVertSource = `
#version 450 core
layout(std140, binding = 1) uniform Camera {
    mat4 V;
    mat4 P;
    vec3 eyePos;
    float near;
    float far;
};

out gl_PerVertex {
    vec4 gl_Position;
};

layout(location = 0) out vec3 outNearPoint;
layout(location = 1) out vec3 outFarPoint;

const vec2 corners[6] = vec2[](
    vec2(-1, -1), vec2(1, -1), vec2(1, 1),
    vec2(-1, -1), vec2(1, 1), vec2(-1, 1)
);

vec3 unproject(vec2 p, float z) {
    vec4 v = inverse(P * V) * vec4(p, z, 1.0);
    return v.xyz / v.w;
}

void main() {
    vec2 p = corners[gl_VertexID];
    outNearPoint = unproject(p, -1.0);
    outFarPoint = unproject(p, 1.0);
    gl_Position = vec4(p, 0.0, 1.0);
}
`

const gridFragSource = `
#version 450 core
layout(location = 0) in vec3 inNearPoint;
layout(location = 1) in vec3 inFarPoint;

layout(std140, binding = 1) uniform Camera {
    mat4 V;
    mat4 P;
    vec3 eyePos;
    float near;
    float far;
};

layout(location = 0) out vec4 outColor;

void main() {
    float t = -inNearPoint.y / (inFarPoint.y - inNearPoint.y);
    if (t <= 0.0) discard;
    vec3 pos = inNearPoint + t * (inFarPoint - inNearPoint);

    vec2 coord = pos.xz;
    vec2 derivative = fwidth(coord);
    vec2 grid = abs(fract(coord - 0.5) - 0.5) / derivative;
    float line = min(grid.x, grid.y);
    float alpha = 1.0 - min(line, 1.0);

    vec4 clip = P * V * vec4(pos, 1.0);
    gl_FragDepth = clip.z / clip.w * 0.5 + 0.5;
    float fade = clamp(1.0 - length(pos - eyePos) / far, 0.0, 1.0);
    outColor = vec4(vec3(0.5), alpha * fade);
}
`
