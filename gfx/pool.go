package gfx

import (
	"fmt"
	"image"
	"log"
	"time"
	"unsafe"

	"github.com/docker/go-units"
	vk "github.com/vulkan-go/vulkan"
)

// StagingPoolName is the name of the host visible pool used to stage data
// into device local pools.
const StagingPoolName = "staging"

var errInsufficientPoolSpace = fmt.Errorf("insufficient storage space in resource pool")

// ResourceManager tracks named pools of buffer and image memory. Vulkan
// limits the number of raw memory allocations, so each pool allocates one
// block of device memory up front and sub-allocates from it.
type ResourceManager struct {
	Device      *Device
	bufferPools map[string]*BufferResourcePool
	imagePools  map[string]*ImageResourcePool
}

func (d *Device) CreateResourceManager() *ResourceManager {
	return &ResourceManager{
		Device:      d,
		bufferPools: make(map[string]*BufferResourcePool),
		imagePools:  make(map[string]*ImageResourcePool),
	}
}

func (r *ResourceManager) GetStagingPool() *BufferResourcePool {
	return r.bufferPools[StagingPoolName]
}

func (r *ResourceManager) HasStagingPool() bool {
	return r.bufferPools[StagingPoolName] != nil
}

// AllocateStagingPool creates the host visible pool used as the source of
// staged transfers.
func (r *ResourceManager) AllocateStagingPool(size uint64) (*BufferResourcePool, error) {
	return r.AllocateBufferPoolWithOptions(StagingPoolName, size, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit, vk.BufferUsageTransferSrcBit, vk.SharingModeExclusive)
}

// AllocateHostVertexAndIndexBufferPool creates a host visible pool suitable
// for vertex and index data that is rewritten from the CPU.
func (r *ResourceManager) AllocateHostVertexAndIndexBufferPool(name string, size uint64) (*BufferResourcePool, error) {
	return r.AllocateBufferPoolWithOptions(name, size, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit, vk.BufferUsageVertexBufferBit|vk.BufferUsageIndexBufferBit, vk.SharingModeExclusive)
}

// AllocateHostUniformBufferPool creates a host visible pool for uniform
// buffers.
func (r *ResourceManager) AllocateHostUniformBufferPool(name string, size uint64) (*BufferResourcePool, error) {
	return r.AllocateBufferPoolWithOptions(name, size, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit, vk.BufferUsageUniformBufferBit, vk.SharingModeExclusive)
}

// AllocateDeviceTexturePool creates a device local pool for sampled
// textures. Textures placed in it must be staged.
func (r *ResourceManager) AllocateDeviceTexturePool(name string, size uint64) (*ImageResourcePool, error) {
	return r.AllocateImagePoolWithOptions(name, size, vk.MemoryPropertyDeviceLocalBit, vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit, vk.SharingModeExclusive)
}

func (r *ResourceManager) AllocateBufferPoolWithOptions(name string, size uint64, mprops vk.MemoryPropertyFlagBits, usage vk.BufferUsageFlagBits, sharing vk.SharingMode) (*BufferResourcePool, error) {
	// FIXME this could be smarter about detecting integrated devices to
	// see whether staging is really needed
	needsStaging := mprops&vk.MemoryPropertyDeviceLocalBit == vk.MemoryPropertyDeviceLocalBit

	p := &BufferResourcePool{
		Device:           r.Device,
		Name:             name,
		Usage:            usage,
		Sharing:          sharing,
		MemoryProperties: mprops,
		Size:             size,
		Allocator:        &LinearAllocator{Size: size},
		NeedsStaging:     needsStaging,
		ResourceManager:  r,
	}

	if needsStaging {
		usage |= vk.BufferUsageTransferDstBit
	}

	// A throwaway buffer determines which memory types the pool must be
	// compatible with.
	buffer, err := r.Device.CreateBufferWithOptions(size, usage, sharing)
	if err != nil {
		return nil, err
	}
	defer buffer.Destroy()

	mr := buffer.VKMemoryRequirements()
	mr.Deref()

	memory, err := r.Device.Allocate(int(size), mr.MemoryTypeBits, mprops)
	if err != nil {
		return nil, err
	}
	p.Memory = memory

	r.bufferPools[name] = p

	return p, nil
}

func (r *ResourceManager) AllocateImagePoolWithOptions(name string, size uint64, mprops vk.MemoryPropertyFlagBits, usage vk.ImageUsageFlagBits, sharing vk.SharingMode) (*ImageResourcePool, error) {
	needsStaging := mprops&vk.MemoryPropertyDeviceLocalBit == vk.MemoryPropertyDeviceLocalBit

	p := &ImageResourcePool{
		Device:           r.Device,
		Name:             name,
		Usage:            usage,
		Sharing:          sharing,
		MemoryProperties: mprops,
		Size:             size,
		Allocator:        &LinearAllocator{Size: size},
		NeedsStaging:     needsStaging,
		ResourceManager:  r,
	}

	if needsStaging {
		usage |= vk.ImageUsageTransferDstBit
	}

	probe, err := r.Device.CreateImageWithOptions(vk.Extent2D{Width: 16, Height: 16}, vk.FormatR8g8b8a8Unorm, vk.ImageTilingOptimal, usage)
	if err != nil {
		return nil, err
	}
	defer probe.Destroy()

	mr := probe.VKMemoryRequirements()
	mr.Deref()

	memory, err := r.Device.Allocate(int(size), mr.MemoryTypeBits, mprops)
	if err != nil {
		return nil, err
	}
	p.Memory = memory

	r.imagePools[name] = p

	return p, nil
}

func (r *ResourceManager) BufferPool(name string) *BufferResourcePool {
	return r.bufferPools[name]
}

func (r *ResourceManager) ImagePool(name string) *ImageResourcePool {
	return r.imagePools[name]
}

// LogDetails logs the usage of every pool.
func (r *ResourceManager) LogDetails() {
	for name, pool := range r.bufferPools {
		log.Printf("Buffer Pool: %s", name)
		pool.LogDetails()
	}
	for name, pool := range r.imagePools {
		log.Printf("Image Pool: %s", name)
		pool.LogDetails()
	}
}

func (r *ResourceManager) Destroy() {
	for _, p := range r.bufferPools {
		p.Destroy()
	}
	for _, p := range r.imagePools {
		p.Destroy()
	}
}

// BufferResourcePool sub-allocates buffers from a single block of device
// memory.
type BufferResourcePool struct {
	Device           *Device
	Name             string
	Usage            vk.BufferUsageFlagBits
	Sharing          vk.SharingMode
	MemoryProperties vk.MemoryPropertyFlagBits
	Size             uint64
	Allocator        Allocator
	Memory           *DeviceMemory
	NeedsStaging     bool
	ResourceManager  *ResourceManager
}

// AllocateFor allocates a buffer sized and flagged for the given source.
func (p *BufferResourcePool) AllocateFor(src ByteSourcer) (*BufferResource, error) {
	switch s := src.(type) {
	case VertexSourcer:
		return p.AllocateBuffer(uint64(len(s.Bytes())), vk.BufferUsageVertexBufferBit)
	case IndexSourcer:
		return p.AllocateBuffer(uint64(len(s.Bytes())), vk.BufferUsageIndexBufferBit)
	default:
		return nil, fmt.Errorf("unknown buffer object type")
	}
}

func (p *BufferResourcePool) AllocateBuffer(size uint64, usage vk.BufferUsageFlagBits) (*BufferResource, error) {
	buffer, err := p.Device.CreateBufferWithOptions(size, usage, vk.SharingModeExclusive)
	if err != nil {
		return nil, err
	}

	mr := buffer.VKMemoryRequirements()
	mr.Deref()

	allocation := p.Allocator.Allocate(uint64(mr.Size), uint64(mr.Alignment))
	if allocation == nil {
		buffer.Destroy()
		return nil, errInsufficientPoolSpace
	}

	err = buffer.Bind(p.Memory, allocation.Offset)
	if err != nil {
		buffer.Destroy()
		p.Allocator.Free(allocation)
		return nil, err
	}

	ret := &BufferResource{
		Allocation:   allocation,
		ResourcePool: p,
	}

	ret.VKBuffer = buffer.VKBuffer
	ret.Device = buffer.Device
	ret.Size = buffer.Size
	ret.Usage = usage

	allocation.Object = ret

	return ret, nil
}

func (p *BufferResourcePool) LogDetails() {
	log.Printf("Size: %s, Usage: %s", units.HumanSize(float64(p.Size)), usageToString(p.Usage))
	p.Allocator.LogDetails()
}

func (p *BufferResourcePool) Destroy() {
	if p.Allocator != nil {
		p.Allocator.DestroyContents()
		p.Allocator = nil
	}
	if p.Memory != nil {
		p.Memory.Destroy()
		p.Memory = nil
	}
	delete(p.ResourceManager.bufferPools, p.Name)
}

// ImageResourcePool sub-allocates images from a single block of device
// memory.
type ImageResourcePool struct {
	Device           *Device
	Name             string
	Usage            vk.ImageUsageFlagBits
	Sharing          vk.SharingMode
	MemoryProperties vk.MemoryPropertyFlagBits
	Size             uint64
	Allocator        Allocator
	Memory           *DeviceMemory
	NeedsStaging     bool
	ResourceManager  *ResourceManager
}

func (p *ImageResourcePool) AllocateImage(extent vk.Extent2D, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlagBits) (*ImageResource, error) {
	i, err := p.Device.CreateImageWithOptions(extent, format, tiling, usage)
	if err != nil {
		return nil, err
	}

	mr := i.VKMemoryRequirements()
	mr.Deref()

	allocation := p.Allocator.Allocate(uint64(mr.Size), uint64(mr.Alignment))
	if allocation == nil {
		i.Destroy()
		return nil, errInsufficientPoolSpace
	}

	err = vk.Error(vk.BindImageMemory(p.Device.VKDevice, i.VKImage, p.Memory.VKDeviceMemory, vk.DeviceSize(allocation.Offset)))
	if err != nil {
		i.Destroy()
		p.Allocator.Free(allocation)
		return nil, err
	}

	img := &ImageResource{
		Allocation:   allocation,
		ResourcePool: p,
	}
	img.VKImage = i.VKImage
	img.Device = i.Device
	img.VKFormat = i.VKFormat
	img.Size = uint64(mr.Size)
	img.Extent = extent

	allocation.Object = img

	return img, nil
}

// StageTextureFromImage uploads an RGBA image into the pool via the staging
// pool, transitioning it to the shader read layout. It blocks until the
// transfer completes.
func (p *ImageResourcePool) StageTextureFromImage(srcImg *image.RGBA, cmd *CommandBuffer, queue *Queue) (*ImageResource, error) {
	b := srcImg.Bounds()

	extent := vk.Extent2D{
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
	}

	img, err := p.AllocateImage(extent, vk.FormatR8g8b8a8Unorm, vk.ImageTilingOptimal, vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit)
	if err != nil {
		return nil, err
	}

	if err := img.AllocateStagingResource(); err != nil {
		img.Free()
		return nil, err
	}
	defer img.FreeStagingResource()

	if !img.StagingResource.ResourcePool.Memory.IsMapped() {
		if _, err := img.StagingResource.ResourcePool.Memory.Map(); err != nil {
			img.Free()
			return nil, err
		}
	}

	srb := img.StagingResource.Bytes()
	if srb == nil {
		img.Free()
		return nil, fmt.Errorf("unable to map bytes for image data, make sure staging buffer has been mapped")
	}

	pixels := ToBytes(unsafe.Pointer(&srcImg.Pix[0]), len(srcImg.Pix))
	copy(srb, pixels)

	cmd.BeginOneTime()
	cmd.TransitionImageLayout(img, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
	cmd.StageImageResource(img)
	cmd.TransitionImageLayout(img, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	cmd.End()

	f, err := p.Device.CreateFence()
	if err != nil {
		img.Free()
		return nil, err
	}
	defer f.Destroy()

	err = queue.SubmitWithFence(f, cmd)
	if err != nil {
		img.Free()
		return nil, err
	}

	p.Device.WaitForFences(true, 100*time.Second, f)

	return img, nil
}

func (p *ImageResourcePool) LogDetails() {
	log.Printf("Size: %s", units.HumanSize(float64(p.Size)))
	p.Allocator.LogDetails()
}

func (p *ImageResourcePool) Destroy() {
	if p.Allocator != nil {
		p.Allocator.DestroyContents()
		p.Allocator = nil
	}
	if p.Memory != nil {
		p.Memory.Destroy()
		p.Memory = nil
	}
	if p.ResourceManager != nil {
		delete(p.ResourceManager.imagePools, p.Name)
	}
}
