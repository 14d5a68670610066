package gfx

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Buffer is a hunk of data which is bound to device memory and then read by
// the pipeline through descriptor sets or vertex bindings.
type Buffer struct {
	Device   *Device
	VKBuffer vk.Buffer
	Size     uint64
	Usage    vk.BufferUsageFlagBits
}

func (d *Device) CreateBufferWithOptions(sizeInBytes uint64, usage vk.BufferUsageFlagBits, sharing vk.SharingMode) (*Buffer, error) {
	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(sizeInBytes),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: sharing,
	}

	var buffer vk.Buffer
	err := vk.Error(vk.CreateBuffer(d.VKDevice, &bufferCreateInfo, nil, &buffer))
	if err != nil {
		return nil, err
	}

	return &Buffer{
		VKBuffer: buffer,
		Device:   d,
		Size:     sizeInBytes,
		Usage:    usage,
	}, nil
}

func (b *Buffer) VKMemoryRequirements() vk.MemoryRequirements {
	var memoryRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(b.Device.VKDevice, b.VKBuffer, &memoryRequirements)
	return memoryRequirements
}

// DSInfo describes this buffer for a descriptor set write.
func (b *Buffer) DSInfo(offset int) vk.DescriptorBufferInfo {
	return vk.DescriptorBufferInfo{
		Buffer: b.VKBuffer,
		Offset: vk.DeviceSize(offset),
		Range:  vk.DeviceSize(b.Size),
	}
}

func (b *Buffer) Bind(memory *DeviceMemory, offset uint64) error {
	return vk.Error(vk.BindBufferMemory(b.Device.VKDevice, b.VKBuffer, memory.VKDeviceMemory, vk.DeviceSize(offset)))
}

func (b *Buffer) String() string {
	return fmt.Sprintf("{ Size: %d Usage: %s }", b.Size, usageToString(b.Usage))
}

func (b *Buffer) Destroy() {
	vk.DestroyBuffer(b.Device.VKDevice, b.VKBuffer, nil)
}

func usageToString(usage vk.BufferUsageFlagBits) string {
	switch {
	case usage&vk.BufferUsageVertexBufferBit != 0:
		return "vertex"
	case usage&vk.BufferUsageIndexBufferBit != 0:
		return "index"
	case usage&vk.BufferUsageUniformBufferBit != 0:
		return "uniform"
	case usage&vk.BufferUsageTransferSrcBit != 0:
		return "transfer-src"
	case usage&vk.BufferUsageTransferDstBit != 0:
		return "transfer-dst"
	default:
		return fmt.Sprintf("0x%x", int(usage))
	}
}

// BufferResource is a buffer based resource, for example a vertex buffer,
// index buffer or UBO, which has been allocated from a larger pool of device
// memory. Vulkan limits the number of memory allocations an application may
// make, so applications should sub-allocate from pools; a BufferResource is
// a buffer managed that way by the ResourceManager.
type BufferResource struct {
	Buffer
	ResourcePool    *BufferResourcePool
	Allocation      *Allocation
	StagingResource *BufferResource
}

// VKMappedMemoryRange is provided so that the buffer implements the
// MappedMemoryRanger interface used by Device.FlushMappedRanges.
func (r *BufferResource) VKMappedMemoryRange() vk.MappedMemoryRange {
	return vk.MappedMemoryRange{
		SType:  vk.StructureTypeMappedMemoryRange,
		Memory: r.ResourcePool.Memory.VKDeviceMemory,
		Offset: vk.DeviceSize(r.Allocation.Offset),
		Size:   vk.DeviceSize(r.Allocation.Size),
	}
}

// RequiresStaging indicates that this resource lives in device local memory
// and must be staged before it can be populated.
func (r *BufferResource) RequiresStaging() bool {
	return r.ResourcePool.NeedsStaging
}

func (r *BufferResource) String() string {
	return r.Buffer.String()
}

// AllocateStagingResource allocates an appropriate resource which can be
// used for staging this resource. Once allocated it must be explicitly
// freed. The staging resource comes from the pool named 'staging', which
// the program must create.
func (r *BufferResource) AllocateStagingResource() error {
	if !r.ResourcePool.NeedsStaging {
		return fmt.Errorf("resource does not require staging")
	}
	stagingPool := r.ResourcePool.ResourceManager.GetStagingPool()
	if stagingPool == nil {
		return fmt.Errorf("no pool named '%s' exists for staging resources, please ensure it has been created", StagingPoolName)
	}
	var err error
	r.StagingResource, err = stagingPool.AllocateBuffer(r.Buffer.Size, vk.BufferUsageTransferSrcBit)
	return err
}

// FreeStagingResource frees the staging resource associated with this
// resource.
func (r *BufferResource) FreeStagingResource() {
	if r.StagingResource != nil {
		r.StagingResource.Free()
		r.StagingResource = nil
	}
}

// CmdCopyBufferFromStagedResource populates the buffer from its previously
// allocated staging resource.
func (c *CommandBuffer) CmdCopyBufferFromStagedResource(resource *BufferResource) {
	vk.CmdCopyBuffer(c.VK(), resource.StagingResource.Buffer.VKBuffer, resource.Buffer.VKBuffer, 1, []vk.BufferCopy{
		{
			SrcOffset: 0,
			DstOffset: vk.DeviceSize(resource.Allocation.Offset),
			Size:      vk.DeviceSize(resource.Allocation.Size),
		},
	})
}

// Bytes returns a byte slice over the mapped pool memory backing this
// resource, which can be read from or copied to. The pool memory must be
// mapped first and the resource must not require staging.
func (r *BufferResource) Bytes() []byte {
	if r.RequiresStaging() {
		return nil
	}

	if r.ResourcePool.Memory.Ptr == nil {
		return nil
	}
	const m = 0x7fffffff
	s := r.Allocation.Offset
	e := r.Allocation.Offset + r.Allocation.Size

	return (*[m]byte)(r.ResourcePool.Memory.Ptr)[s:e]
}

func (r *BufferResource) Destroy() {
	r.Free()
}

// Free this resource and its associated resources.
func (r *BufferResource) Free() {
	if r.StagingResource != nil {
		r.StagingResource.Free()
		r.StagingResource = nil
	}
	if r.Allocation != nil {
		r.ResourcePool.Allocator.Free(r.Allocation)
		r.Allocation = nil
	}
	if r.Buffer.VKBuffer != vk.NullBuffer {
		r.Buffer.Destroy()
		r.Buffer.VKBuffer = vk.NullBuffer
	}
}
