package render

import (
	"unsafe"

	"github.com/lloydmeta/gol/gfx"
	lin "github.com/xlab/linmath"
)

// Mat2 is a column-major 2x2 matrix, matching the GLSL mat2 the vertex
// shader multiplies positions by.
type Mat2 [2]lin.Vec2

// Identity returns the 2x2 identity matrix.
func Identity() Mat2 {
	return Mat2{{1, 0}, {0, 1}}
}

// MulVec2 multiplies the matrix by v.
func (m Mat2) MulVec2(v lin.Vec2) lin.Vec2 {
	return lin.Vec2{
		m[0][0]*v[0] + m[1][0]*v[1],
		m[0][1]*v[0] + m[1][1]*v[1],
	}
}

// Inverse returns the inverse matrix. A singular matrix returns the zero
// matrix; the layout only ever produces diagonal scale matrices with
// non-zero entries, so this does not arise in practice.
func (m Mat2) Inverse() Mat2 {
	det := m[0][0]*m[1][1] - m[1][0]*m[0][1]
	if det == 0 {
		return Mat2{}
	}
	inv := 1 / det
	return Mat2{
		{m[1][1] * inv, -m[0][1] * inv},
		{-m[1][0] * inv, m[0][0] * inv},
	}
}

// Transform is the CPU reference of the vertex stage: a uniform scale matrix
// plus a per-instance translate.
type Transform struct {
	Scale     Mat2
	Translate lin.Vec2
}

// Apply transforms a vertex position exactly as the vertex shader does:
// position' = Scale*position + Translate, extended with z=0 and w=1. The
// colour is forwarded untouched.
func (t Transform) Apply(position lin.Vec2, colour lin.Vec4) (lin.Vec4, lin.Vec4) {
	p := t.Scale.MulVec2(position)
	return lin.Vec4{p[0] + t.Translate[0], p[1] + t.Translate[1], 0, 1}, colour
}

// Unapply maps a transformed point back to the original position. It is the
// inverse of Apply and backs mouse picking.
func (t Transform) Unapply(position lin.Vec2) lin.Vec2 {
	return t.Scale.Inverse().MulVec2(lin.Vec2{
		position[0] - t.Translate[0],
		position[1] - t.Translate[1],
	})
}

// Locals is the uniform block consumed by the vertex shader. std140 pads
// each mat2 column to 16 bytes, so the two columns are stored as vec4s.
type Locals struct {
	Scale [2]lin.Vec4
}

// SetScale packs the 2x2 scale matrix into the std140 layout.
func (l *Locals) SetScale(m Mat2) {
	l.Scale[0] = lin.Vec4{m[0][0], m[0][1], 0, 0}
	l.Scale[1] = lin.Vec4{m[1][0], m[1][1], 0, 0}
}

func (l *Locals) Bytes() []byte {
	return gfx.ToBytes(unsafe.Pointer(&l.Scale[0][0]), int(unsafe.Sizeof(*l)))
}
