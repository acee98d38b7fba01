package kernel

import (
	"github.com/chewxy/math32"
	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/types"
)

var white = types.Vec3{1, 1, 1}

// Schlick's approximation of the Fresnel reflectance.
func schlick(cosine, etaRatio float32) float32 {
	r0 := (1 - etaRatio) / (1 + etaRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math32.Pow(1-cosine, 5)
}

// Scatter an incoming ray at a surface hit. Returns false if the ray is
// absorbed or the material is emissive. Dielectrics update the absorption
// state of the record when the ray crosses their boundary.
func scatter(mat *scene.Material, r Ray, rec *HitRecord, albedo types.Vec3, rng *Rng) (Ray, types.Vec3, bool) {
	switch mat.Type {
	case scene.LambertianMaterial:
		return scatterLambertian(rec, rng), albedo, true
	case scene.MetalMaterial:
		dir := r.Direction.Reflect(rec.Normal).Normalize().Add(rng.InUnitSphere().Mul(mat.Fuzz))
		if dir.Dot(rec.Normal) <= 0 {
			return Ray{}, types.Vec3{}, false
		}
		return NewRay(rec.Position, dir), albedo, true
	case scene.DielectricMaterial:
		return scatterDielectric(mat, r, rec, albedo, rng)
	case scene.GlossyMaterial:
		cosine := math32.Min(r.Direction.Neg().Dot(rec.Normal), 1)
		eta := mat.RefractiveIndex
		if eta <= 0 {
			eta = 1.5
		}
		if rng.Float32() < schlick(cosine, 1/eta)*mat.Gloss {
			dir := r.Direction.Reflect(rec.Normal).Add(rng.InUnitSphere().Mul(mat.Fuzz))
			if dir.Dot(rec.Normal) > 0 {
				return NewRay(rec.Position, dir), white, true
			}
		}
		return scatterLambertian(rec, rng), albedo, true
	}
	return Ray{}, types.Vec3{}, false
}

func scatterLambertian(rec *HitRecord, rng *Rng) Ray {
	dir := rec.Normal.Add(rng.UnitVector())
	if dir.NearZero() {
		dir = rec.Normal
	}
	return NewRay(rec.Position, dir)
}

func scatterDielectric(mat *scene.Material, r Ray, rec *HitRecord, albedo types.Vec3, rng *Rng) (Ray, types.Vec3, bool) {
	ri := mat.RefractiveIndex
	if ri <= 0 {
		ri = 1
	}
	etaRatio := ri
	if rec.FrontFace {
		etaRatio = 1 / ri
	}

	cosTheta := math32.Min(r.Direction.Neg().Dot(rec.Normal), 1)
	sinTheta := math32.Sqrt(math32.Max(1-cosTheta*cosTheta, 0))
	cannotRefract := etaRatio*sinTheta > 1

	// Absorbing media tint by distance instead of per boundary
	attenuation := albedo
	if mat.Density > 0 {
		attenuation = white
	}

	reflectance := schlick(cosTheta, etaRatio) * mat.Gloss
	if cannotRefract || (reflectance > 0 && rng.Float32() < reflectance) {
		return NewRay(rec.Position, r.Direction.Reflect(rec.Normal)), attenuation, true
	}

	if rec.FrontFace {
		rec.IsAbsorbing = mat.Density > 0
		rec.Absorption = mat.Color.Mul(mat.Density)
	} else {
		rec.IsAbsorbing = false
		rec.Absorption = types.Vec3{}
	}
	return NewRay(rec.Position, r.Direction.Refract(rec.Normal, etaRatio)), attenuation, true
}
