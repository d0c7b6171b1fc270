// Package pbr holds the user-tunable shading controls and a CPU
// reference of the Cook-Torrance lighting model the fragment shader
// implements. The reference keeps the shader math testable.
package pbr

import "github.com/chewxy/math32"

// Roughness is clamped away from zero so the microfacet distribution
// never becomes singular.
const (
	MinRoughness = 0.04
	MaxRoughness = 1.0
)

// Controls are the scalar intensities passed by value into the
// fragment stage each frame.
type Controls struct {
	KeyIntensity      float32 // direct light scale, [0, 3]
	AmbientIntensity  float32 // ambient diffuse scale, [0, 0.5]
	SpecularIntensity float32 // specular scale, [0, 2]
	RoughnessBias     float32 // added to material roughness, [-0.5, 0.5]
}

// DefaultControls returns the neutral control set.
func DefaultControls() Controls {
	return Controls{
		KeyIntensity:      1.0,
		AmbientIntensity:  0.2,
		SpecularIntensity: 1.0,
		RoughnessBias:     0.0,
	}
}

// Clamp returns the controls with every value forced into its legal
// range.
func (c Controls) Clamp() Controls {
	c.KeyIntensity = clamp(c.KeyIntensity, 0, 3)
	c.AmbientIntensity = clamp(c.AmbientIntensity, 0, 0.5)
	c.SpecularIntensity = clamp(c.SpecularIntensity, 0, 2)
	c.RoughnessBias = clamp(c.RoughnessBias, -0.5, 0.5)
	return c
}

// EffectiveRoughness applies the bias to a material roughness factor
// and clamps the result to the legal shading range.
func (c Controls) EffectiveRoughness(roughness float32) float32 {
	return clamp(roughness+c.RoughnessBias, MinRoughness, MaxRoughness)
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
