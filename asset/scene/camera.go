package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/microsoft/morphcharts-sub000/types"
)

// Stores the ray directions at the four corners of the camera frustum
// (top-left, top-right, bottom-left, bottom-right). Per pixel rays are
// generated by bilinear interpolation of the corner rays.
type Frustum [4]types.Vec4

func (fr Frustum) String() string {
	return fmt.Sprintf(
		"Frustum Rays:\nTL : (%3.3f, %3.3f, %3.3f)\nTR : (%3.3f, %3.3f, %3.3f)\nBL : (%3.3f, %3.3f, %3.3f)\nBR : (%3.3f, %3.3f, %3.3f)",
		fr[0][0], fr[0][1], fr[0][2],
		fr[1][0], fr[1][1], fr[1][2],
		fr[2][0], fr[2][1], fr[2][2],
		fr[3][0], fr[3][1], fr[3][2],
	)
}

// Interpolate the corner rays for a point on the image plane; (0, 0) is the
// top-left corner and (1, 1) the bottom-right corner.
func (fr Frustum) Ray(u, v float32) types.Vec3 {
	top := fr[0].Vec3().Lerp(fr[1].Vec3(), u)
	bottom := fr[2].Vec3().Lerp(fr[3].Vec3(), u)
	return top.Lerp(bottom, v)
}

// A perspective camera.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Vertical field of view in degrees.
	FOV float32

	ViewMat  mgl32.Mat4
	ProjMat  mgl32.Mat4
	Frustum  Frustum
	aspect   float32
	nearClip float32
}

func NewCamera(fov float32) *Camera {
	c := &Camera{
		ViewMat:  mgl32.Ident4(),
		ProjMat:  mgl32.Ident4(),
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
		aspect:   1,
		nearClip: 1,
	}
	c.SetupProjection(1)
	return c
}

// Setup camera projection matrix.
func (c *Camera) SetupProjection(aspect float32) {
	if aspect <= 0 {
		aspect = 1
	}
	c.aspect = aspect
	c.ProjMat = mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.nearClip, 1000)
	c.Update()
}

// Get the aspect ratio used by the projection matrix.
func (c *Camera) Aspect() float32 {
	return c.aspect
}

// Recalculate the view matrix and frustum rays.
func (c *Camera) Update() {
	c.ViewMat = mgl32.LookAtV(mgl32.Vec3(c.Position), mgl32.Vec3(c.LookAt), mgl32.Vec3(c.Up))
	c.updateFrustum()
}

func (c *Camera) InvViewProjMat() mgl32.Mat4 {
	return c.ProjMat.Mul4(c.ViewMat).Inv()
}

// Generate a ray vector for each corner of the camera frustum by
// multiplying clip space vectors for each corner with the inverse
// view/projection matrix, applying perspective and subtracting the
// camera eye position.
func (c *Camera) updateFrustum() {
	invProjViewMat := c.InvViewProjMat()
	corners := [4]mgl32.Vec4{
		{-1, 1, -1, 1},
		{1, 1, -1, 1},
		{-1, -1, -1, 1},
		{1, -1, -1, 1},
	}
	for index, corner := range corners {
		v := invProjViewMat.Mul4x1(corner)
		world := v.Vec3().Mul(1.0 / v.W())
		c.Frustum[index] = types.Vec3(world).Sub(c.Position).Vec4(0)
	}
}
