// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// ShadowVertexShader is the vertex shader for the depth-only shadow pass.
//
//go:embed shadow.vert
var ShadowVertexShader string

// ShadowFragmentShader is the fragment shader for the depth-only shadow pass.
//
//go:embed shadow.frag
var ShadowFragmentShader string

// MeshVertexShader is the vertex shader for the PBR mesh pass.
//
//go:embed mesh.vert
var MeshVertexShader string

// MeshFragmentShader is the fragment shader for the PBR mesh pass.
//
//go:embed mesh.frag
var MeshFragmentShader string

// GroundVertexShader is the vertex shader for the shadow-receiving ground quad.
//
//go:embed ground.vert
var GroundVertexShader string

// GroundFragmentShader is the fragment shader for the shadow-receiving ground quad.
//
//go:embed ground.frag
var GroundFragmentShader string

// BackgroundVertexShader is the vertex shader for the fullscreen backdrop.
//
//go:embed background.vert
var BackgroundVertexShader string

// BackgroundFragmentShader is the fragment shader for the fullscreen backdrop.
//
//go:embed background.frag
var BackgroundFragmentShader string
