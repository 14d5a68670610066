package gfx

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

var end = "\x00"
var endChar byte = '\x00'

// IDestructable is anything owning Vulkan resources that must be released.
type IDestructable interface {
	Destroy()
}

// ByteSourcer provides raw bytes destined for a device buffer.
type ByteSourcer interface {
	Bytes() []byte
}

// VertexSourcer describes vertex data along with its input binding and
// attribute layout.
type VertexSourcer interface {
	ByteSourcer
	GetBindingDescription() vk.VertexInputBindingDescription
	GetAttributeDescriptions() []vk.VertexInputAttributeDescription
}

// IndexSourcer describes index data for indexed draws.
type IndexSourcer interface {
	ByteSourcer
	IndexType() vk.IndexType
}

// IGraphicsPipelineConfig generates pipeline create info for the current
// screen extent.
type IGraphicsPipelineConfig interface {
	VKGraphicsPipelineCreateInfo(extent vk.Extent2D) (vk.GraphicsPipelineCreateInfo, error)
	Destroy()
}

// IndexSliceUint16 is a convenience IndexSourcer over a uint16 slice.
type IndexSliceUint16 []uint16

func (i IndexSliceUint16) Bytes() []byte {
	size := len(i) * int(unsafe.Sizeof(uint16(0)))
	return ToBytes(unsafe.Pointer(&i[0]), size)
}

func (i IndexSliceUint16) IndexType() vk.IndexType {
	return vk.IndexTypeUint16
}

// ToBytes takes an unsafe.Pointer and length in bytes and converts it to a
// byte slice.
func ToBytes(ptr unsafe.Pointer, lenInBytes int) []byte {
	const m = 0x7fffffff
	return (*[m]byte)(ptr)[:lenInBytes]
}

func safeString(s string) string {
	if len(s) == 0 {
		return end
	}
	if s[len(s)-1] != endChar {
		return s + end
	}
	return s
}

func safeStrings(list []string) []string {
	for i := range list {
		list[i] = safeString(list[i])
	}
	return list
}
