package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	lin "github.com/xlab/linmath"
)

func TestTransformApply(t *testing.T) {
	tr := Transform{
		Scale:     Identity(),
		Translate: lin.Vec2{3, 4},
	}

	pos, colour := tr.Apply(lin.Vec2{1, 2}, lin.Vec4{1, 0, 0, 1})

	assert.Equal(t, lin.Vec4{4, 6, 0, 1}, pos)
	assert.Equal(t, lin.Vec4{1, 0, 0, 1}, colour)
}

func TestTransformApplyScaled(t *testing.T) {
	tr := Transform{
		Scale:     Mat2{{0.5, 0}, {0, 0.25}},
		Translate: lin.Vec2{-1, 1},
	}

	pos, colour := tr.Apply(lin.Vec2{2, 4}, lin.Vec4{0.2, 0.4, 0.5, 1})

	assert.InDelta(t, 0.0, float64(pos[0]), 1e-6)
	assert.InDelta(t, 2.0, float64(pos[1]), 1e-6)
	assert.Equal(t, float32(0), pos[2])
	assert.Equal(t, float32(1), pos[3])
	assert.Equal(t, lin.Vec4{0.2, 0.4, 0.5, 1}, colour)
}

func TestTransformUnapplyRoundTrip(t *testing.T) {
	tr := Transform{
		Scale:     Mat2{{0.018, 0}, {0, 0.0225}},
		Translate: lin.Vec2{-0.3, 0.7},
	}

	in := lin.Vec2{0.25, -0.5}
	pos, _ := tr.Apply(in, lin.Vec4{})
	out := tr.Unapply(lin.Vec2{pos[0], pos[1]})

	assert.InDelta(t, float64(in[0]), float64(out[0]), 1e-5)
	assert.InDelta(t, float64(in[1]), float64(out[1]), 1e-5)
}

func TestMat2Inverse(t *testing.T) {
	m := Mat2{{2, 0}, {0, 4}}
	inv := m.Inverse()

	assert.Equal(t, Mat2{{0.5, 0}, {0, 0.25}}, inv)

	// Singular matrices invert to zero rather than NaN.
	assert.Equal(t, Mat2{}, Mat2{}.Inverse())
}

func TestLocalsPacking(t *testing.T) {
	var l Locals
	l.SetScale(Mat2{{0.6, 0}, {0, 0.9}})

	assert.Equal(t, lin.Vec4{0.6, 0, 0, 0}, l.Scale[0])
	assert.Equal(t, lin.Vec4{0, 0.9, 0, 0}, l.Scale[1])

	// std140 mat2: two vec4 columns.
	assert.Len(t, l.Bytes(), 32)
}
