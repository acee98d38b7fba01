package types

import (
	"math"
	"testing"
)

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 1, 0}, math.Pi/2)

	out := q.Rotate(Vec3{1, 0, 0})
	exp := Vec3{0, 0, -1}
	if !ApproxEqual(out, exp, 1e-5) {
		t.Fatalf("expected rotated vector to be %v; got %v", exp, out)
	}

	back := q.InverseRotate(out)
	exp = Vec3{1, 0, 0}
	if !ApproxEqual(back, exp, 1e-5) {
		t.Fatalf("expected inverse rotation to restore %v; got %v", exp, back)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{}.Normalize()
	if !q.IsIdent() {
		t.Fatalf("expected zero quaternion to normalize to identity; got %v", q)
	}

	q = QuatXYZW(0, 0, 2, 0).Normalize()
	if q.Len() < 0.9999 || q.Len() > 1.0001 {
		t.Fatalf("expected unit length; got %f", q.Len())
	}
}

func TestVecRefract(t *testing.T) {
	// Matching indices should not bend the ray
	dir := Vec3{0.6, -0.8, 0}
	out := dir.Refract(Vec3{0, 1, 0}, 1.0)
	if !ApproxEqual(out, dir, 1e-5) {
		t.Fatalf("expected refracted dir to be %v; got %v", dir, out)
	}

	refl := dir.Reflect(Vec3{0, 1, 0})
	exp := Vec3{0.6, 0.8, 0}
	if !ApproxEqual(refl, exp, 1e-5) {
		t.Fatalf("expected reflected dir to be %v; got %v", exp, refl)
	}
}

func TestNormalizeZero(t *testing.T) {
	if out := (Vec3{}).Normalize(); out != (Vec3{}) {
		t.Fatalf("expected zero vector; got %v", out)
	}
	if axis := (Vec3{1, 5, 2}).MaxAxis(); axis != 1 {
		t.Fatalf("expected max axis to be 1; got %d", axis)
	}
}
