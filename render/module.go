package render

import (
	"fmt"
	"log"
	"unsafe"

	"github.com/lloydmeta/gol/app"
	"github.com/lloydmeta/gol/gfx"
	"github.com/lloydmeta/gol/life"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
	lin "github.com/xlab/linmath"
)

// PipelineName is the graphics pipeline the board is drawn with.
const PipelineName = "life"

const geometryPoolName = "life-geometry"

// Module draws the board. It keeps the quad, index, instance and uniform
// buffers in one host visible pool; per frame only the instance colours are
// rewritten. It also handles clicks, toggling the cell under the cursor.
type Module struct {
	base *app.AppBase
	game *app.Game

	layout    Layout
	width     int
	height    int
	instances InstanceData
	locals    Locals

	vertexBuffer   *gfx.BufferResource
	indexBuffer    *gfx.BufferResource
	instanceBuffer *gfx.BufferResource
	localsBuffer   *gfx.BufferResource

	descriptorPool      *gfx.DescriptorPool
	descriptorSetLayout *gfx.DescriptorSetLayout
	descriptorSet       *gfx.DescriptorSet
	pipelineLayout      *gfx.PipelineLayout
}

// NewModule creates the board renderer and registers its pipeline config.
// The board dimensions are fixed for the module's lifetime.
func NewModule(base *app.AppBase, game *app.Game) (*Module, error) {
	m := &Module{base: base, game: game}

	game.With(func(grid *life.Grid) {
		m.width = grid.Width()
		m.height = grid.Height()
	})
	m.layout = NewLayout(m.width, m.height)
	m.instances = make(InstanceData, m.width*m.height)

	if err := m.createBuffers(); err != nil {
		return nil, err
	}
	if err := m.createDescriptorSet(); err != nil {
		return nil, err
	}
	if err := m.createGraphicsPipeline(); err != nil {
		return nil, err
	}

	if err := m.Relayout(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Module) createBuffers() error {
	uboSize := uint64(unsafe.Sizeof(Locals{}))

	poolSize := uint64(len(QuadVertices.Bytes())+len(QuadIndices.Bytes())+len(m.instances.Bytes())) + uboSize
	// Headroom for the driver's per-buffer alignment requirements.
	poolSize += 64 * 1024

	pool, err := m.base.ResourceManager.AllocateHostVertexAndIndexBufferPool(geometryPoolName, poolSize)
	if err != nil {
		return fmt.Errorf("unable to allocate geometry pool: %w", err)
	}

	m.vertexBuffer, err = pool.AllocateFor(QuadVertices)
	if err != nil {
		return fmt.Errorf("unable to allocate vertex buffer: %w", err)
	}
	m.indexBuffer, err = pool.AllocateFor(QuadIndices)
	if err != nil {
		return fmt.Errorf("unable to allocate index buffer: %w", err)
	}
	m.instanceBuffer, err = pool.AllocateBuffer(uint64(len(m.instances.Bytes())), vk.BufferUsageVertexBufferBit)
	if err != nil {
		return fmt.Errorf("unable to allocate instance buffer: %w", err)
	}
	m.localsBuffer, err = pool.AllocateBuffer(uboSize, vk.BufferUsageUniformBufferBit)
	if err != nil {
		return fmt.Errorf("unable to allocate buffer for locals: %w", err)
	}

	if _, err := pool.Memory.Map(); err != nil {
		return fmt.Errorf("unable to map geometry pool: %w", err)
	}

	copy(m.vertexBuffer.Bytes(), QuadVertices.Bytes())
	copy(m.indexBuffer.Bytes(), QuadIndices.Bytes())

	return m.base.Device.FlushMappedRanges(m.vertexBuffer, m.indexBuffer)
}

func (m *Module) createDescriptorSet() error {
	dpool := m.base.Device.NewDescriptorPool()
	dpool.AddPoolSize(vk.DescriptorTypeUniformBuffer, 1)
	_, err := m.base.Device.CreateDescriptorPool(dpool, 1)
	if err != nil {
		return err
	}
	m.descriptorPool = dpool

	dsl := m.base.Device.NewDescriptorSetLayout()
	dsl.AddBinding(vk.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
	})
	_, err = m.base.Device.CreateDescriptorSetLayout(dsl)
	if err != nil {
		return err
	}
	m.descriptorSetLayout = dsl

	m.descriptorSet, err = dpool.Allocate(dsl)
	if err != nil {
		return err
	}
	m.descriptorSet.AddBuffer(0, vk.DescriptorTypeUniformBuffer, &m.localsBuffer.Buffer, 0)
	m.descriptorSet.Write()

	m.pipelineLayout, err = m.base.Device.CreatePipelineLayout(dsl)
	return err
}

func (m *Module) createGraphicsPipeline() error {
	gc := m.base.CreateGraphicsPipelineConfig()

	gc.AddVertexDescriptor(QuadVertices)
	gc.AddVertexDescriptor(m.instances)

	err := gc.AddShaderStageFromFile("shaders/life.vert.spv", "main", vk.ShaderStageVertexBit)
	if err != nil {
		return err
	}
	err = gc.AddShaderStageFromFile("shaders/life.frag.spv", "main", vk.ShaderStageFragmentBit)
	if err != nil {
		return err
	}

	gc.SetCullMode(vk.CullModeNone)
	gc.DepthTestEnable = false
	gc.DepthWriteEnable = false
	gc.SetPipelineLayout(m.pipelineLayout)

	m.base.AddGraphicsPipelineConfig(PipelineName, gc)

	return nil
}

// Relayout rewrites every instance and the scale uniform. It runs once at
// startup and again whenever the swapchain is recreated.
func (m *Module) Relayout() error {
	m.game.With(func(grid *life.Grid) {
		m.layout.FillInstances(m.instances, grid)
	})
	m.locals.SetScale(m.layout.ScaleMatrix())

	copy(m.instanceBuffer.Bytes(), m.instances.Bytes())
	copy(m.localsBuffer.Bytes(), m.locals.Bytes())

	return m.base.Device.FlushMappedRanges(m.instanceBuffer, m.localsBuffer)
}

// NewFrame re-uploads the instance colours from the current board state.
func (m *Module) NewFrame(base *app.AppBase) {
	m.game.With(func(grid *life.Grid) {
		m.layout.UpdateColours(m.instances, grid)
	})

	copy(m.instanceBuffer.Bytes(), m.instances.Bytes())

	if err := base.Device.FlushMappedRanges(m.instanceBuffer); err != nil {
		log.Printf("error flushing instance buffer: %v", err)
	}
}

func (m *Module) PostFrame() {
}

// CreateCommandBuffers records the instanced draw into a secondary command
// buffer continuing the frame's render pass.
func (m *Module) CreateCommandBuffers(renderPass vk.RenderPass, framebuffer vk.Framebuffer, base *app.AppBase) ([]vk.CommandBuffer, error) {
	cmdb, err := base.GraphicsCommandPool.AllocateBuffer(vk.CommandBufferLevelSecondary)
	if err != nil {
		return nil, err
	}

	if err := cmdb.BeginContinueRenderPass(renderPass, framebuffer); err != nil {
		return nil, err
	}

	vk.CmdBindPipeline(cmdb.VK(), vk.PipelineBindPointGraphics, base.GraphicsPipelines[PipelineName])
	cmdb.CmdBindDescriptorSets(vk.PipelineBindPointGraphics, m.pipelineLayout, 0, m.descriptorSet)

	vk.CmdBindVertexBuffers(cmdb.VK(), 0, 2,
		[]vk.Buffer{m.vertexBuffer.VKBuffer, m.instanceBuffer.VKBuffer},
		[]vk.DeviceSize{0, 0})
	vk.CmdBindIndexBuffer(cmdb.VK(), m.indexBuffer.VKBuffer, vk.DeviceSize(0), QuadIndices.IndexType())

	vk.CmdDrawIndexed(cmdb.VK(), uint32(len(QuadIndices)), uint32(len(m.instances)), 0, 0, 0)

	if err := cmdb.End(); err != nil {
		return nil, err
	}

	return []vk.CommandBuffer{cmdb.VK()}, nil
}

func (m *Module) Destroy() {
	m.localsBuffer.Free()
	m.instanceBuffer.Free()
	m.indexBuffer.Free()
	m.vertexBuffer.Free()

	m.descriptorPool.Destroy()
	m.descriptorSetLayout.Destroy()

	pool := m.base.ResourceManager.BufferPool(geometryPoolName)
	if pool != nil {
		pool.Memory.Unmap()
		pool.Destroy()
	}
}

// MouseButtonChange toggles the cell under the cursor on left click.
func (m *Module) MouseButtonChange(rawButton glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) bool {
	if rawButton != glfw.MouseButtonLeft || action != glfw.Press {
		return false
	}

	x, y := m.base.Window.GetCursorPos()
	w, h := m.base.Window.GetSize()
	if w == 0 || h == 0 {
		return false
	}

	ndc := lin.Vec2{
		2*float32(x)/float32(w) - 1,
		2*float32(y)/float32(h) - 1,
	}

	coord, ok := m.layout.CellAt(ndc)
	if !ok {
		return false
	}

	m.game.With(func(grid *life.Grid) {
		grid.Toggle(coord.I, coord.J)
	})

	return true
}

func (m *Module) KeyChange(key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) bool {
	return false
}

func (m *Module) MouseScrollChange(x, y float64) bool {
	return false
}

func (m *Module) CharChange(char rune) bool {
	return false
}
