// Package app hosts the windowed application: a GLFW window driving the
// graphics layer, pluggable graphics and input modules, and the simulation
// clock that advances the board independently of the render loop.
package app

import (
	"fmt"
	"log"
	"runtime"

	"github.com/lloydmeta/gol/gfx"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// IGraphicsModule draws into the frame via secondary command buffers.
type IGraphicsModule interface {
	NewFrame(base *AppBase)
	PostFrame()
	Destroy()
	CreateCommandBuffers(renderPass vk.RenderPass, framebuffer vk.Framebuffer, app *AppBase) ([]vk.CommandBuffer, error)
}

// IInputModule receives window input. Modules are offered events in
// registration order; returning true consumes the event.
type IInputModule interface {
	KeyChange(key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) bool
	MouseScrollChange(x, y float64) bool
	MouseButtonChange(rawButton glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) bool
	CharChange(char rune) bool
}

// AppBase owns the window and the graphics app, and fans frames and input
// out to the registered modules.
type AppBase struct {
	gfx.GraphicsApp

	// ClearColour fills the framebuffer before any module draws.
	ClearColour [4]float32

	GraphicsModules []IGraphicsModule
	InputModules    []IInputModule

	priorCommandBuffers []vk.CommandBuffer
}

// NewAppBase initializes GLFW and Vulkan and opens the window. It must be
// called from the main goroutine, which it locks to the OS thread.
func NewAppBase(appName string, width, height int, debug bool) (*AppBase, error) {
	runtime.LockOSThread()

	err := glfw.Init()
	if err != nil {
		return nil, fmt.Errorf("unable to initialize glfw: %w", err)
	}

	if !glfw.VulkanSupported() {
		return nil, fmt.Errorf("vulkan is unsupported")
	}

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())

	err = vk.Init()
	if err != nil {
		return nil, fmt.Errorf("unable to initialize vulkan: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(width, height, appName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create window: %w", err)
	}

	gapp, err := gfx.NewGraphicsApp(appName, gfx.Version{Major: 0, Minor: 1, Patch: 0})
	if err != nil {
		return nil, fmt.Errorf("unable to initialize vulkan app: %w", err)
	}

	base := &AppBase{
		GraphicsApp: *gapp,
		ClearColour: [4]float32{0.1, 0.2, 0.3, 1},
	}

	if err := base.SetWindow(window); err != nil {
		return nil, err
	}
	if debug {
		base.EnableDebugging()
	}

	return base, nil
}

// Init initializes the graphics app and hooks up window callbacks. Modules
// should be added before PrepareToDraw.
func (b *AppBase) Init() error {
	err := b.GraphicsApp.Init()
	if err != nil {
		return fmt.Errorf("unable to initialize vulkan instance: %w", err)
	}

	b.MakeCommandBuffer = func(buffer *gfx.CommandBuffer, frame int) {
		b.makeCommandBuffers(buffer, frame)
	}

	b.Window.SetMouseButtonCallback(b.mouseButtonChange)
	b.Window.SetScrollCallback(b.mouseScrollChange)
	b.Window.SetKeyCallback(b.keyChange)
	b.Window.SetCharCallback(b.charChange)
	b.Window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		b.Resize()
	})

	return nil
}

func (b *AppBase) AddGraphicsModule(g IGraphicsModule) {
	b.GraphicsModules = append(b.GraphicsModules, g)
}

func (b *AppBase) AddInputModule(i IInputModule) {
	b.InputModules = append(b.InputModules, i)
}

func (b *AppBase) charChange(window *glfw.Window, char rune) {
	for _, i := range b.InputModules {
		if i.CharChange(char) {
			break
		}
	}
}

func (b *AppBase) keyChange(window *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	for _, i := range b.InputModules {
		if i.KeyChange(key, scancode, action, mods) {
			break
		}
	}
}

func (b *AppBase) mouseScrollChange(window *glfw.Window, x, y float64) {
	for _, i := range b.InputModules {
		if i.MouseScrollChange(x, y) {
			break
		}
	}
}

func (b *AppBase) mouseButtonChange(window *glfw.Window, rawButton glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	for _, i := range b.InputModules {
		if i.MouseButtonChange(rawButton, action, mods) {
			break
		}
	}
}

// makeCommandBuffers records the frame's primary command buffer: begin the
// render pass, then execute every module's secondary buffers.
func (b *AppBase) makeCommandBuffers(buffer *gfx.CommandBuffer, frame int) {
	clearValues := make([]vk.ClearValue, 2)
	clearValues[0].SetColor(b.ClearColour[:])
	clearValues[1].SetDepthStencil(1, 0)

	buffer.Begin()

	renderPassBeginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  b.VKRenderPass,
		Framebuffer: b.Framebuffers[frame],
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: b.GetScreenExtent(),
		},
		ClearValueCount: 2,
		PClearValues:    clearValues,
	}

	vk.CmdBeginRenderPass(buffer.VK(), &renderPassBeginInfo, vk.SubpassContentsSecondaryCommandBuffers)

	if len(b.priorCommandBuffers) > 0 {
		vk.FreeCommandBuffers(b.Device.VKDevice, b.GraphicsCommandPool.VKCommandPool, uint32(len(b.priorCommandBuffers)), b.priorCommandBuffers)
	}

	buffers := make([]vk.CommandBuffer, 0)
	for _, g := range b.GraphicsModules {
		cmds, err := g.CreateCommandBuffers(b.VKRenderPass, b.Framebuffers[frame], b)
		if err != nil {
			log.Printf("error generating command buffer: %v", err)
		}
		buffers = append(buffers, cmds...)
	}
	b.priorCommandBuffers = buffers

	if len(buffers) > 0 {
		vk.CmdExecuteCommands(buffer.VK(), uint32(len(buffers)), buffers)
	}

	vk.CmdEndRenderPass(buffer.VK())
	buffer.End()
}

func (b *AppBase) ShouldClose() bool {
	return b.Window.ShouldClose()
}

func (b *AppBase) NewFrame() {
	glfw.PollEvents()

	for _, g := range b.GraphicsModules {
		g.NewFrame(b)
	}
}

func (b *AppBase) PostFrame() {
	for _, g := range b.GraphicsModules {
		g.PostFrame()
	}
}

func (b *AppBase) Destroy() {
	for _, g := range b.GraphicsModules {
		g.Destroy()
	}
	b.GraphicsApp.Destroy()
}
