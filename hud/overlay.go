// Package hud draws a small Dear ImGui overlay with simulation statistics
// on top of the board.
package hud

import (
	"fmt"
	"math"

	"github.com/inkyblackness/imgui-go"
	"github.com/lloydmeta/gol/app"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// Overlay is a graphics module rendering the stats panel. It also consumes
// mouse input while the cursor is over the panel, so clicks there do not
// fall through to the board.
type Overlay struct {
	context  *imgui.Context
	io       imgui.IO
	renderer *Renderer

	game   *app.Game
	window *glfw.Window

	time             float64
	mouseJustPressed [3]bool
	wantMouse        bool
}

// NewOverlay creates the overlay and its renderer. Must be called after the
// base's Init, before PrepareToDraw.
func NewOverlay(base *app.AppBase, game *app.Game) (*Overlay, error) {
	context := imgui.CreateContext(nil)
	io := imgui.CurrentIO()

	renderer, err := NewRenderer(io, base)
	if err != nil {
		return nil, err
	}
	if err := renderer.Init(); err != nil {
		return nil, err
	}

	return &Overlay{
		context:  context,
		io:       io,
		renderer: renderer,
		game:     game,
		window:   base.Window,
	}, nil
}

func (o *Overlay) NewFrame(base *app.AppBase) {
	o.wantMouse = o.io.WantCaptureMouse()

	currentTime := glfw.GetTime()
	if o.time > 0 {
		o.io.SetDeltaTime(float32(currentTime - o.time))
	}
	o.time = currentTime

	if o.window.GetAttrib(glfw.Focused) != 0 {
		x, y := o.window.GetCursorPos()
		o.io.SetMousePosition(imgui.Vec2{X: float32(x), Y: float32(y)})
	} else {
		o.io.SetMousePosition(imgui.Vec2{X: -math.MaxFloat32, Y: -math.MaxFloat32})
	}

	for i := 0; i < len(o.mouseJustPressed); i++ {
		down := o.mouseJustPressed[i] || (o.window.GetMouseButton(mouseButtonByIndex[i]) == glfw.Press)
		o.io.SetMouseButtonDown(i, down)
		o.mouseJustPressed[i] = false
	}
}

func (o *Overlay) PostFrame() {
}

func (o *Overlay) Destroy() {
	o.renderer.Destroy()
}

func (o *Overlay) CreateCommandBuffers(renderPass vk.RenderPass, framebuffer vk.Framebuffer, base *app.AppBase) ([]vk.CommandBuffer, error) {
	extent := base.GetScreenExtent()
	o.io.SetDisplaySize(imgui.Vec2{X: float32(extent.Width), Y: float32(extent.Height)})

	imgui.NewFrame()
	o.drawStats()
	imgui.Render()

	return o.renderer.Render(renderPass, framebuffer, imgui.RenderedDrawData())
}

func (o *Overlay) drawStats() {
	generation, population := o.game.Stats()

	imgui.Begin("Game of Life")
	imgui.Text(fmt.Sprintf("Generation: %d", generation))
	imgui.Text(fmt.Sprintf("Population: %d", population))
	imgui.Text(fmt.Sprintf("Update rate: %d/s", o.game.UpdateRate()))
	if o.game.Paused() {
		imgui.Text("Paused (Space resumes, S steps)")
	} else {
		imgui.Text("Running (Space pauses)")
	}
	imgui.End()
}

var mouseButtonByIndex = map[int]glfw.MouseButton{
	0: glfw.MouseButton1,
	1: glfw.MouseButton2,
	2: glfw.MouseButton3,
}

var indexByMouseButton = map[glfw.MouseButton]int{
	glfw.MouseButton1: 0,
	glfw.MouseButton2: 1,
	glfw.MouseButton3: 2,
}

func (o *Overlay) MouseButtonChange(rawButton glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) bool {
	if !o.wantMouse {
		return false
	}

	index, known := indexByMouseButton[rawButton]
	if known && action == glfw.Press {
		o.mouseJustPressed[index] = true
	}

	return true
}

func (o *Overlay) MouseScrollChange(x, y float64) bool {
	if !o.wantMouse {
		return false
	}
	o.io.AddMouseWheelDelta(float32(x), float32(y))
	return true
}

// The overlay is display only; keyboard input always falls through to the
// game.
func (o *Overlay) KeyChange(key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) bool {
	return false
}

func (o *Overlay) CharChange(char rune) bool {
	return false
}
