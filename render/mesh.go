package render

import (
	"unsafe"

	"github.com/lloydmeta/gol/gfx"
	vk "github.com/vulkan-go/vulkan"
	lin "github.com/xlab/linmath"
)

// Vertex is one corner of the unit quad.
type Vertex struct {
	Position lin.Vec2
}

// VertexData is the quad's vertex buffer contents.
type VertexData []Vertex

// QuadVertices is the unit quad every cell is drawn as, scaled down and
// translated per instance in the vertex stage.
var QuadVertices = VertexData{
	{Position: lin.Vec2{-0.5, 0.5}},
	{Position: lin.Vec2{-0.5, -0.5}},
	{Position: lin.Vec2{0.5, -0.5}},
	{Position: lin.Vec2{0.5, 0.5}},
}

// QuadIndices draws the quad as two triangles.
var QuadIndices = gfx.IndexSliceUint16{0, 1, 2, 2, 3, 0}

func (v VertexData) Bytes() []byte {
	size := int(unsafe.Sizeof(Vertex{})) * len(v)
	return gfx.ToBytes(unsafe.Pointer(&v[0]), size)
}

func (v VertexData) GetBindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(unsafe.Sizeof(Vertex{})),
		InputRate: vk.VertexInputRateVertex,
	}
}

func (v VertexData) GetAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   vk.FormatR32g32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Position)),
		},
	}
}

// CellInstance is the per-cell instance attribute block: where the cell's
// quad goes and what colour it is.
type CellInstance struct {
	Translate lin.Vec2
	Colour    lin.Vec4
}

// InstanceData is the instance buffer contents, one entry per cell.
type InstanceData []CellInstance

func (d InstanceData) Bytes() []byte {
	size := int(unsafe.Sizeof(CellInstance{})) * len(d)
	return gfx.ToBytes(unsafe.Pointer(&d[0]), size)
}

func (d InstanceData) GetBindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   1,
		Stride:    uint32(unsafe.Sizeof(CellInstance{})),
		InputRate: vk.VertexInputRateInstance,
	}
}

func (d InstanceData) GetAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{
			Binding:  1,
			Location: 1,
			Format:   vk.FormatR32g32Sfloat,
			Offset:   uint32(unsafe.Offsetof(CellInstance{}.Translate)),
		},
		{
			Binding:  1,
			Location: 2,
			Format:   vk.FormatR32g32b32a32Sfloat,
			Offset:   uint32(unsafe.Offsetof(CellInstance{}.Colour)),
		},
	}
}
