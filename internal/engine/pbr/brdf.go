package pbr

import (
	"github.com/chewxy/math32"

	"github.com/quietfall/stageview/pkg/math"
)

// This file mirrors the lighting math in the mesh fragment shader.
// Any change here must be reflected in shaders/mesh.frag and vice
// versa.

// Surface is one shaded point's material state after texturing.
type Surface struct {
	Albedo    math.Vec3
	Metallic  float32
	Roughness float32
}

// ShadeResult splits the direct lighting into its two terms so tests
// can compare their balance.
type ShadeResult struct {
	Diffuse  math.Vec3
	Specular math.Vec3
}

// distributionGGX is the GGX normal distribution function.
func distributionGGX(nDotH, roughness float32) float32 {
	a := roughness * roughness
	a2 := a * a
	denom := nDotH*nDotH*(a2-1) + 1
	return a2 / (math32.Pi * denom * denom)
}

// geometrySchlickGGX is one direction's Smith shadowing term.
func geometrySchlickGGX(nDotV, roughness float32) float32 {
	r := roughness + 1
	k := r * r / 8
	return nDotV / (nDotV*(1-k)+k)
}

// geometrySmith combines the view and light shadowing terms.
func geometrySmith(nDotV, nDotL, roughness float32) float32 {
	return geometrySchlickGGX(nDotV, roughness) * geometrySchlickGGX(nDotL, roughness)
}

// fresnelSchlick approximates Fresnel reflectance at the given cosine.
func fresnelSchlick(cosTheta float32, f0 math.Vec3) math.Vec3 {
	t := math32.Pow(1-cosTheta, 5)
	return math.Vec3{
		X: f0.X + (1-f0.X)*t,
		Y: f0.Y + (1-f0.Y)*t,
		Z: f0.Z + (1-f0.Z)*t,
	}
}

// ShadeHeadlight evaluates the direct Cook-Torrance contribution for
// the headlight model, where the light direction coincides with the
// view direction and NdotL equals NdotV.
func ShadeHeadlight(s Surface, nDotV float32, c Controls) ShadeResult {
	nDotV = clamp(nDotV, 1e-4, 1)
	roughness := c.EffectiveRoughness(s.Roughness)

	// Headlight: L == V, so H == V, NdotH == NdotV, and HdotV == 1
	// (which makes the Fresnel term exactly F0).
	f0 := math.Vec3{
		X: mix(0.04, s.Albedo.X, s.Metallic),
		Y: mix(0.04, s.Albedo.Y, s.Metallic),
		Z: mix(0.04, s.Albedo.Z, s.Metallic),
	}

	d := distributionGGX(nDotV, roughness)
	g := geometrySmith(nDotV, nDotV, roughness)
	f := fresnelSchlick(1, f0)

	denom := 4*nDotV*nDotV + 1e-4
	specular := f.Scale(d * g / denom).Scale(nDotV * c.KeyIntensity * c.SpecularIntensity)

	// Energy conservation: diffuse receives what the surface does not
	// reflect, and metals have no diffuse response.
	kd := math.Vec3{
		X: (1 - f.X) * (1 - s.Metallic),
		Y: (1 - f.Y) * (1 - s.Metallic),
		Z: (1 - f.Z) * (1 - s.Metallic),
	}
	diffuse := kd.Mul(s.Albedo).Scale(nDotV * c.KeyIntensity / math32.Pi)

	return ShadeResult{Diffuse: diffuse, Specular: specular}
}

// ToneMap applies the Reinhard operator componentwise.
func ToneMap(color math.Vec3) math.Vec3 {
	return math.Vec3{
		X: color.X / (color.X + 1),
		Y: color.Y / (color.Y + 1),
		Z: color.Z / (color.Z + 1),
	}
}

func mix(a, b, t float32) float32 {
	return a + (b-a)*t
}
