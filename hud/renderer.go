package hud

import (
	"fmt"
	"image"
	"unsafe"

	imgui "github.com/inkyblackness/imgui-go"
	"github.com/lloydmeta/gol/app"
	"github.com/lloydmeta/gol/gfx"
	vk "github.com/vulkan-go/vulkan"
	lin "github.com/xlab/linmath"
)

// PipelineName is the graphics pipeline the overlay is drawn with.
const PipelineName = "hud"

const (
	geometryPoolName = "hud-geometry"
	fontPoolName     = "hud-fonts"
)

// Renderer turns imgui draw data into Vulkan command buffers. Vertex and
// index data changes every frame, so buffers are allocated per frame from a
// host visible pool and freed once the GPU is done with them.
type Renderer struct {
	io   imgui.IO
	base *app.AppBase

	ubo       ubo
	uboBuffer *gfx.BufferResource

	// Per frame vertex and index buffers; freed two frames later, when the
	// synchronous draw loop guarantees the GPU no longer reads them.
	transientBuffers []*gfx.BufferResource

	descriptorPool      *gfx.DescriptorPool
	descriptorSetLayout *gfx.DescriptorSetLayout
	descriptorSet       *gfx.DescriptorSet
	pipelineLayout      *gfx.PipelineLayout

	fontTexture *gfx.ImageResource
	fontView    *gfx.ImageView
	fontSampler vk.Sampler

	maxVertexes int
	maxIndexes  int
}

// ubo holds the orthographic projection mapping imgui's pixel coordinates
// to NDC.
type ubo struct {
	Proj lin.Mat4x4
}

func (u *ubo) Bytes() []byte {
	return gfx.ToBytes(unsafe.Pointer(&u.Proj[0]), int(unsafe.Sizeof(*u)))
}

// NewRenderer creates a renderer sized for a modest UI; the stats panel
// needs far fewer vertexes than the default leaves room for.
func NewRenderer(io imgui.IO, base *app.AppBase) (*Renderer, error) {
	return &Renderer{io: io, base: base, maxVertexes: 50 * 1000, maxIndexes: 50 * 1000}, nil
}

func (r *Renderer) GetBindingDescription() vk.VertexInputBindingDescription {
	vertexSize, _, _, _ := imgui.VertexBufferLayout()

	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(vertexSize),
		InputRate: vk.VertexInputRateVertex,
	}
}

func (r *Renderer) GetAttributeDescriptions() []vk.VertexInputAttributeDescription {
	_, offsetPos, offsetUv, offsetCol := imgui.VertexBufferLayout()

	return []vk.VertexInputAttributeDescription{
		{Binding: 0, Location: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(offsetPos)},
		{Binding: 0, Location: 1, Format: vk.FormatR32g32Sfloat, Offset: uint32(offsetUv)},
		{Binding: 0, Location: 2, Format: vk.FormatR8g8b8a8Uint, Offset: uint32(offsetCol)},
	}
}

func (r *Renderer) Init() error {
	if !r.base.ResourceManager.HasStagingPool() {
		if _, err := r.base.ResourceManager.AllocateStagingPool(8 * 1024 * 1024); err != nil {
			return err
		}
	}

	if err := r.createBuffers(); err != nil {
		return err
	}
	if err := r.createFontTexture(); err != nil {
		return err
	}
	if err := r.createDescriptorSet(); err != nil {
		return err
	}
	if err := r.createGraphicsPipeline(); err != nil {
		return err
	}

	r.transientBuffers = make([]*gfx.BufferResource, 0)
	return nil
}

func (r *Renderer) Destroy() {
	r.uboBuffer.Free()
	r.fontTexture.Free()

	for _, b := range r.transientBuffers {
		b.Free()
	}
	r.transientBuffers = nil

	r.fontView.Destroy()
	vk.DestroySampler(r.base.Device.VKDevice, r.fontSampler, nil)

	r.descriptorPool.Destroy()
	r.descriptorSetLayout.Destroy()

	pool := r.base.ResourceManager.BufferPool(geometryPoolName)
	if pool != nil {
		pool.Memory.Unmap()
		pool.Destroy()
	}
	if fonts := r.base.ResourceManager.ImagePool(fontPoolName); fonts != nil {
		fonts.Destroy()
	}
}

// freeTransientBuffers releases all but the most recent frame's vertex and
// index buffer pair.
func (r *Renderer) freeTransientBuffers() {
	for len(r.transientBuffers) > 2 {
		var a, b *gfx.BufferResource

		a, r.transientBuffers = r.transientBuffers[0], r.transientBuffers[1:]
		b, r.transientBuffers = r.transientBuffers[0], r.transientBuffers[1:]

		a.Free()
		b.Free()
	}
}

func (r *Renderer) setupProjection() {
	extent := r.base.GetScreenExtent()

	proj := lin.Mat4x4{
		{2.0, 0, 0, 0},
		{0, 2.0, 0, 0},
		{0, 0, 1, 0},
		{-1, -1, 0, 1},
	}
	proj[0][0] /= float32(extent.Width)
	proj[1][1] /= float32(extent.Height)

	r.ubo.Proj = proj
	copy(r.uboBuffer.Bytes(), r.ubo.Bytes())
}

// Render records secondary command buffers drawing the given imgui draw
// data.
func (r *Renderer) Render(renderPass vk.RenderPass, framebuffer vk.Framebuffer, drawData imgui.DrawData) ([]vk.CommandBuffer, error) {
	extent := r.base.GetScreenExtent()

	drawData.ScaleClipRects(imgui.Vec2{X: 1.0, Y: 1.0})

	r.freeTransientBuffers()
	r.setupProjection()

	indexType := vk.IndexTypeUint16
	if imgui.IndexBufferLayout() == 4 {
		indexType = vk.IndexTypeUint32
	}

	pool := r.base.ResourceManager.BufferPool(geometryPoolName)

	buffers := make([]vk.CommandBuffer, 0)

	for _, list := range drawData.CommandLists() {
		cmdb, err := r.base.GraphicsCommandPool.AllocateBuffer(vk.CommandBufferLevelSecondary)
		if err != nil {
			return nil, err
		}

		vertexData, vertexDataSize := list.VertexBuffer()
		indexData, indexDataSize := list.IndexBuffer()

		vbuff, err := pool.AllocateBuffer(uint64(vertexDataSize), vk.BufferUsageVertexBufferBit)
		if err != nil {
			return nil, fmt.Errorf("unable to allocate vertex buffer: %w", err)
		}
		r.transientBuffers = append(r.transientBuffers, vbuff)

		ibuff, err := pool.AllocateBuffer(uint64(indexDataSize), vk.BufferUsageIndexBufferBit)
		if err != nil {
			return nil, fmt.Errorf("unable to allocate index buffer: %w", err)
		}
		r.transientBuffers = append(r.transientBuffers, ibuff)

		copy(vbuff.Bytes(), gfx.ToBytes(vertexData, vertexDataSize))
		copy(ibuff.Bytes(), gfx.ToBytes(indexData, indexDataSize))

		if err := r.base.Device.FlushMappedRanges(vbuff, ibuff); err != nil {
			return nil, err
		}

		if err := cmdb.BeginContinueRenderPass(renderPass, framebuffer); err != nil {
			return nil, err
		}

		viewport := vk.Viewport{
			Width:    float32(extent.Width),
			Height:   float32(extent.Height),
			MinDepth: 0.0,
			MaxDepth: 1.0,
		}
		vk.CmdSetViewport(cmdb.VK(), 0, 1, []vk.Viewport{viewport})

		vk.CmdBindPipeline(cmdb.VK(), vk.PipelineBindPointGraphics, r.base.GraphicsPipelines[PipelineName])
		cmdb.CmdBindDescriptorSets(vk.PipelineBindPointGraphics, r.pipelineLayout, 0, r.descriptorSet)

		vk.CmdBindVertexBuffers(cmdb.VK(), 0, 1, []vk.Buffer{vbuff.VKBuffer}, []vk.DeviceSize{0})
		vk.CmdBindIndexBuffer(cmdb.VK(), ibuff.VKBuffer, vk.DeviceSize(0), indexType)

		var offset int
		for _, cmd := range list.Commands() {
			if cmd.HasUserCallback() {
				cmd.CallUserCallback(list)
			} else {
				clipRect := cmd.ClipRect()

				scissor := vk.Rect2D{
					Offset: vk.Offset2D{X: int32(clipRect.X), Y: int32(clipRect.Y)},
					Extent: vk.Extent2D{
						Width:  uint32(clipRect.Z - clipRect.X),
						Height: uint32(clipRect.W - clipRect.Y),
					},
				}
				vk.CmdSetScissor(cmdb.VK(), 0, 1, []vk.Rect2D{scissor})

				vk.CmdDrawIndexed(cmdb.VK(), uint32(cmd.ElementCount()), 1, uint32(offset), 0, 0)
			}
			offset += cmd.ElementCount()
		}

		if err := cmdb.End(); err != nil {
			return nil, err
		}
		buffers = append(buffers, cmdb.VK())
	}

	return buffers, nil
}

func (r *Renderer) createBuffers() error {
	vertexSize, _, _, _ := imgui.VertexBufferLayout()
	indexSize := imgui.IndexBufferLayout()
	uboSize := int(unsafe.Sizeof(ubo{}))

	poolSize := vertexSize*r.maxVertexes + indexSize*r.maxIndexes + uboSize + 64*1024

	pool, err := r.base.ResourceManager.AllocateHostVertexAndIndexBufferPool(geometryPoolName, uint64(poolSize))
	if err != nil {
		return fmt.Errorf("unable to allocate overlay geometry pool: %w", err)
	}

	r.uboBuffer, err = pool.AllocateBuffer(uint64(uboSize), vk.BufferUsageUniformBufferBit)
	if err != nil {
		return fmt.Errorf("unable to allocate buffer for projection: %w", err)
	}

	_, err = pool.Memory.Map()
	return err
}

func (r *Renderer) createFontTexture() error {
	fontTexture := r.io.Fonts().TextureDataRGBA32()

	tpool, err := r.base.ResourceManager.AllocateDeviceTexturePool(fontPoolName, 8*1024*1024)
	if err != nil {
		return err
	}

	cb, err := r.base.GraphicsCommandPool.AllocateBuffer(vk.CommandBufferLevelPrimary)
	if err != nil {
		return err
	}
	defer r.base.GraphicsCommandPool.FreeBuffer(cb)

	fontImg := image.NewRGBA(image.Rectangle{Max: image.Point{X: fontTexture.Width, Y: fontTexture.Height}})
	fontImg.Pix = gfx.ToBytes(fontTexture.Pixels, fontTexture.Width*fontTexture.Height*4)

	r.fontTexture, err = tpool.StageTextureFromImage(fontImg, cb, r.base.GraphicsQueue)
	if err != nil {
		return err
	}

	r.fontView, err = r.fontTexture.CreateImageViewWithAspectMask(vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return err
	}

	var sampler vk.Sampler
	err = vk.Error(vk.CreateSampler(r.base.Device.VKDevice, &vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		CompareOp:               vk.CompareOpAlways,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
	}, nil, &sampler))
	if err != nil {
		return err
	}
	r.fontSampler = sampler

	return nil
}

func (r *Renderer) createDescriptorSet() error {
	dpool := r.base.Device.NewDescriptorPool()
	dpool.AddPoolSize(vk.DescriptorTypeUniformBuffer, 1)
	dpool.AddPoolSize(vk.DescriptorTypeCombinedImageSampler, 1)
	_, err := r.base.Device.CreateDescriptorPool(dpool, 1)
	if err != nil {
		return err
	}
	r.descriptorPool = dpool

	dsl := r.base.Device.NewDescriptorSetLayout()
	dsl.AddBinding(vk.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
	})
	dsl.AddBinding(vk.DescriptorSetLayoutBinding{
		Binding:         1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
	})
	_, err = r.base.Device.CreateDescriptorSetLayout(dsl)
	if err != nil {
		return err
	}
	r.descriptorSetLayout = dsl

	r.descriptorSet, err = dpool.Allocate(dsl)
	if err != nil {
		return err
	}
	r.descriptorSet.AddBuffer(0, vk.DescriptorTypeUniformBuffer, &r.uboBuffer.Buffer, 0)
	r.descriptorSet.AddCombinedImageSampler(1, vk.ImageLayoutShaderReadOnlyOptimal, r.fontView.VKImageView, r.fontSampler)
	r.descriptorSet.Write()

	r.pipelineLayout, err = r.base.Device.CreatePipelineLayout(dsl)
	return err
}

func (r *Renderer) createGraphicsPipeline() error {
	gc := r.base.CreateGraphicsPipelineConfig()

	gc.AddVertexDescriptor(r)
	gc.AddBlendAttachment(vk.PipelineColorBlendAttachmentState{
		ColorWriteMask:      vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
		SrcColorBlendFactor: vk.BlendFactorSrcAlpha,
		DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorOne,
		DstAlphaBlendFactor: vk.BlendFactorZero,
		AlphaBlendOp:        vk.BlendOpAdd,
		BlendEnable:         vk.True,
	})

	err := gc.AddShaderStageFromFile("shaders/hud.vert.spv", "main", vk.ShaderStageVertexBit)
	if err != nil {
		return err
	}
	err = gc.AddShaderStageFromFile("shaders/hud.frag.spv", "main", vk.ShaderStageFragmentBit)
	if err != nil {
		return err
	}

	gc.SetDynamicState(vk.DynamicStateViewport, vk.DynamicStateScissor)
	gc.SetCullMode(vk.CullModeNone)
	gc.DepthTestEnable = false
	gc.DepthWriteEnable = false
	gc.SetPipelineLayout(r.pipelineLayout)

	r.base.AddGraphicsPipelineConfig(PipelineName, gc)

	return nil
}
