package gfx

import (
	"fmt"

	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// FrameLag is the number of frames that may be in flight at once.
var FrameLag = 3

// GraphicsApp is a utility object which implements many of the core
// requirements to get to a functioning Vulkan app. It sets up the
// appropriate devices and does most of the preparation needed to begin
// drawing.
//
// See https://vulkan-tutorial.com/ for a good walkthrough of what this code
// does.
type GraphicsApp struct {
	Instance *Instance
	App      *App

	Window    *glfw.Window
	VKSurface vk.Surface

	Device         *Device
	PhysicalDevice *PhysicalDevice

	GraphicsPipelineConfigs map[string]IGraphicsPipelineConfig

	// GraphicsPipelines is generated from GraphicsPipelineConfigs.
	GraphicsPipelines map[string]vk.Pipeline

	ResourceManager *ResourceManager

	GraphicsQueue *Queue
	PresentQueue  *Queue
	PipelineCache *PipelineCache

	GraphicsCommandPool    *CommandPool
	GraphicsCommandBuffers []*CommandBuffer

	DefaultNumSwapchainImages int

	presentCompleteSemaphore []vk.Semaphore
	renderCompleteSemaphore  []vk.Semaphore
	waitFences               []vk.Fence

	frameIndex int

	screenExtent vk.Extent2D

	Swapchain           *Swapchain
	SwapchainImages     []*Image
	SwapchainImageViews []*ImageView
	DepthImage          *ImageResource
	DepthImageView      *ImageView
	Framebuffers        []vk.Framebuffer

	resized bool

	VKRenderPass vk.RenderPass

	// ConfigureRenderPass may be supplied to customize the render pass.
	ConfigureRenderPass func(renderPass vk.RenderPassCreateInfo)

	// MakeCommandBuffer records the draw commands for a frame.
	MakeCommandBuffer func(command *CommandBuffer, frame int)

	// OnPrepare is called after the swapchain, render pass and
	// framebuffers exist, both on startup and after a resize, before
	// command buffers are filled.
	OnPrepare func() error
}

// NewGraphicsApp creates a new graphics app with the given name and version.
func NewGraphicsApp(name string, version Version) (*GraphicsApp, error) {
	app := &App{Name: name, Version: version}
	return &GraphicsApp{App: app}, nil
}

// PhysicalDevices returns a list of physical devices.
func (p *GraphicsApp) PhysicalDevices() ([]*PhysicalDevice, error) {
	if p.Instance == nil {
		return nil, fmt.Errorf("platform hasn't been initialized yet")
	}
	return p.Instance.PhysicalDevices()
}

// EnableLayer enables the named layer if the runtime supports it.
func (p *GraphicsApp) EnableLayer(layer string) bool {
	supportedLayers, err := SupportedLayers()
	if err != nil {
		return false
	}

	for _, slayer := range supportedLayers {
		if layer == slayer {
			p.App.EnableLayer(layer)
			return true
		}
	}
	return false
}

// EnableExtension enables the named extension if the runtime supports it.
func (p *GraphicsApp) EnableExtension(extension string) bool {
	supportedExtensions, err := SupportedExtensions()
	if err != nil {
		return false
	}

	for _, sextension := range supportedExtensions {
		if extension == sextension {
			p.App.EnableExtension(extension)
			return true
		}
	}
	return false
}

// EnableDebugging enables the commonly used validation layers. It must be
// called before Init.
func (p *GraphicsApp) EnableDebugging() bool {
	if p.Instance != nil {
		return false
	}
	p.App.EnableDebugging()
	return true
}

// CreateGraphicsPipelineConfig creates a graphics pipeline configuration for
// customization.
func (p *GraphicsApp) CreateGraphicsPipelineConfig() *GraphicsPipelineConfig {
	return p.Device.CreateGraphicsPipelineConfig()
}

// AddGraphicsPipelineConfig registers a pipeline config under a name; the
// built pipeline appears in GraphicsPipelines under the same name.
func (p *GraphicsApp) AddGraphicsPipelineConfig(name string, config IGraphicsPipelineConfig) {
	if p.GraphicsPipelineConfigs == nil {
		p.GraphicsPipelineConfigs = make(map[string]IGraphicsPipelineConfig)
	}
	p.GraphicsPipelineConfigs[name] = config
}

// NumFramebuffers returns the number of framebuffers that will be created.
func (p *GraphicsApp) NumFramebuffers() int {
	return p.DefaultNumSwapchainImages
}

// SetWindow sets the GLFW window for the graphics app. It must be called
// before Init.
func (p *GraphicsApp) SetWindow(window *glfw.Window) error {
	if p.Instance != nil {
		return fmt.Errorf("window must be set prior to initialization")
	}

	p.Window = window

	extensions := p.Window.GetRequiredInstanceExtensions()

	for _, ext := range extensions {
		if !p.EnableExtension(ext) {
			return fmt.Errorf("extension '%s' required by glfw is not supported by vulkan", ext)
		}
	}

	p.refreshScreenExtent()

	return nil
}

// Init creates the instance, surface, logical device, queues, command pool
// and resource manager.
func (p *GraphicsApp) Init() error {
	var err error

	p.Instance, err = p.App.CreateInstance()
	if err != nil {
		return err
	}

	if p.Window != nil && p.VKSurface == vk.NullSurface {
		surface, err := p.Window.CreateWindowSurface(p.Instance.VKInstance, nil)
		if err != nil {
			return err
		}
		p.VKSurface = vk.SurfaceFromPointer(surface)
	}

	physicalDevices, err := p.Instance.PhysicalDevices()
	if err != nil {
		return fmt.Errorf("error getting devices: %w", err)
	}

	if len(physicalDevices) == 0 {
		return fmt.Errorf("no devices found")
	}

	// FIXME device selection should probably be smarter than this
	pdevice := physicalDevices[0]

	queues, err := pdevice.QueueFamilies()
	if err != nil {
		return fmt.Errorf("unable to load device queue families: %w", err)
	}

	gqueues := queues.FilterGraphicsAndPresent(p.VKSurface)

	if len(gqueues) == 0 {
		return fmt.Errorf("no graphics capable queues found on device: %v", pdevice)
	}

	ldevice, err := pdevice.CreateLogicalDeviceWithOptions(gqueues, &CreateDeviceOptions{
		EnabledExtensions: []string{"VK_KHR_swapchain"},
	})
	if err != nil {
		return fmt.Errorf("unable to create device: %w", err)
	}

	p.Device = ldevice
	p.PhysicalDevice = pdevice

	if len(gqueues) == 1 {
		// Single graphics and present queue.
		queue := ldevice.GetQueue(gqueues[0])

		p.GraphicsQueue = queue
		p.PresentQueue = queue
	} else {
		// Separate graphics and present queues.
		pq := gqueues.FilterPresent(p.VKSurface)
		gq := gqueues.FilterGraphics()

		p.GraphicsQueue = ldevice.GetQueue(gq[0])
		p.PresentQueue = ldevice.GetQueue(pq[0])
	}

	p.DefaultNumSwapchainImages, err = p.Device.DefaultNumSwapchainImages(p.VKSurface)
	if err != nil {
		return err
	}

	p.GraphicsCommandPool, err = p.Device.CreateCommandPool(p.GraphicsQueue.QueueFamily)
	if err != nil {
		return err
	}

	p.ResourceManager = p.Device.CreateResourceManager()

	return nil
}

// PrepareToDraw creates the objects required to start drawing. It must be
// called after Init and after MakeCommandBuffer is set.
func (p *GraphicsApp) PrepareToDraw() error {
	err := p.prepareToDraw()
	if err != nil {
		return err
	}
	p.fillCmdBuffers()
	return nil
}

func (p *GraphicsApp) prepareToDraw() error {
	var err error

	if p.MakeCommandBuffer == nil {
		return fmt.Errorf("no function to make command buffers has been configured")
	}

	err = p.createSwapchainAndImages()
	if err != nil {
		return err
	}

	err = p.createRenderPass()
	if err != nil {
		return err
	}

	if p.PipelineCache != nil {
		p.PipelineCache.Destroy()
	}

	p.PipelineCache, err = p.Device.CreatePipelineCache()
	if err != nil {
		return err
	}

	err = p.createGraphicsPipelines()
	if err != nil {
		return err
	}

	err = p.createDepthImage()
	if err != nil {
		return err
	}

	err = p.createFramebuffers()
	if err != nil {
		return err
	}

	err = p.createCommandBuffers()
	if err != nil {
		return err
	}

	err = p.createSyncObjects()
	if err != nil {
		return err
	}

	if p.OnPrepare != nil {
		err = p.OnPrepare()
		if err != nil {
			return err
		}
	}

	p.frameIndex = 0

	return nil
}

func (p *GraphicsApp) fillCmdBuffers() {
	for i := range p.GraphicsCommandBuffers {
		p.MakeCommandBuffer(p.GraphicsCommandBuffers[i], i)
	}
}

func (p *GraphicsApp) resize() error {
	// FIXME minimization

	p.PresentQueue.WaitIdle()
	p.GraphicsQueue.WaitIdle()
	p.Device.WaitIdle()

	p.destroyFramebuffers()
	p.destroyDepthImage()

	for _, c := range p.GraphicsCommandBuffers {
		p.GraphicsCommandPool.FreeBuffer(c)
	}
	p.destroyGraphicsPipelines()
	p.destroyRenderPass()

	for _, views := range p.SwapchainImageViews {
		views.Destroy()
	}

	p.Swapchain.Destroy()

	p.refreshScreenExtent()

	if err := p.createSwapchainAndImages(); err != nil {
		return err
	}
	if err := p.createRenderPass(); err != nil {
		return err
	}
	if err := p.createGraphicsPipelines(); err != nil {
		return err
	}
	if err := p.createDepthImage(); err != nil {
		return err
	}
	if err := p.createFramebuffers(); err != nil {
		return err
	}
	if err := p.createCommandBuffers(); err != nil {
		return err
	}
	if p.OnPrepare != nil {
		if err := p.OnPrepare(); err != nil {
			return err
		}
	}
	p.fillCmdBuffers()

	p.resized = false

	p.frameIndex = 0

	return nil
}

// Resize signals that the swapchain must be recreated before the next frame.
func (p *GraphicsApp) Resize() {
	p.refreshScreenExtent()
	p.resized = true
}

// DrawFrameSync draws one frame at a time to the GPU. It does not utilize
// the GPU particularly well but simplifies application development, because
// it ensures that the resources utilized by the command buffers are not also
// currently in use by the GPU. The MakeCommandBuffer callback is invoked to
// populate the frame's command buffer.
//
// See https://vulkan-tutorial.com/Uniform_buffers/Descriptor_layout_and_buffer
// for a discussion of how memory usage and frame drawing might require a
// more sophisticated resource allocation approach.
func (p *GraphicsApp) DrawFrameSync() error {
	var imageIndex uint32
	var err error

	res := vk.AcquireNextImage(p.Device.VKDevice, p.Swapchain.VKSwapchain, vk.MaxUint64, p.presentCompleteSemaphore[p.frameIndex], vk.NullFence, &imageIndex)

	if res == vk.ErrorOutOfDate || p.resized {
		return p.resize()
	}
	err = vk.Error(res)
	if err != nil {
		return err
	}

	vk.WaitForFences(p.Device.VKDevice, 1, []vk.Fence{p.waitFences[p.frameIndex]}, vk.True, vk.MaxUint64)
	vk.ResetFences(p.Device.VKDevice, 1, []vk.Fence{p.waitFences[p.frameIndex]})

	p.GraphicsCommandBuffers[int(imageIndex)].Reset()
	p.MakeCommandBuffer(p.GraphicsCommandBuffers[int(imageIndex)], int(imageIndex))

	waitSemaphores := []vk.Semaphore{p.presentCompleteSemaphore[p.frameIndex]}
	signalSemaphores := []vk.Semaphore{p.renderCompleteSemaphore[p.frameIndex]}
	waitStages := []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)}

	submitInfo := []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      waitSemaphores,
		PWaitDstStageMask:    waitStages,
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    signalSemaphores,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{p.GraphicsCommandBuffers[imageIndex].VKCommandBuffer},
	}}

	err = vk.Error(vk.QueueSubmit(p.GraphicsQueue.VKQueue, 1, submitInfo, p.waitFences[p.frameIndex]))
	if err != nil {
		return err
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{p.Swapchain.VKSwapchain},
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    signalSemaphores,
		PImageIndices:      []uint32{imageIndex},
	}

	res = vk.QueuePresent(p.PresentQueue.VKQueue, &presentInfo)
	if res == vk.ErrorOutOfDate || res == vk.Suboptimal || p.resized {
		return p.resize()
	}
	err = vk.Error(res)
	if err != nil {
		return err
	}

	p.frameIndex = (p.frameIndex + 1) % FrameLag

	p.PresentQueue.WaitIdle()
	p.GraphicsQueue.WaitIdle()

	return nil
}

func (p *GraphicsApp) createGraphicsPipelines() error {
	if len(p.GraphicsPipelineConfigs) == 0 {
		return nil
	}

	configs := make([]vk.GraphicsPipelineCreateInfo, len(p.GraphicsPipelineConfigs))
	nameToID := make(map[string]int)
	i := 0

	for name, gconfig := range p.GraphicsPipelineConfigs {
		config, err := gconfig.VKGraphicsPipelineCreateInfo(p.GetScreenExtent())
		if err != nil {
			return fmt.Errorf("error generating graphics pipeline config '%s': %w", name, err)
		}
		config.RenderPass = p.VKRenderPass
		configs[i] = config
		nameToID[name] = i
		i++
	}

	graphicsPipelines := make([]vk.Pipeline, len(configs))
	err := vk.Error(vk.CreateGraphicsPipelines(p.Device.VKDevice, p.PipelineCache.VKPipelineCache,
		uint32(len(configs)),
		configs,
		nil,
		graphicsPipelines))
	if err != nil {
		return err
	}

	p.GraphicsPipelines = make(map[string]vk.Pipeline)
	for name := range p.GraphicsPipelineConfigs {
		p.GraphicsPipelines[name] = graphicsPipelines[nameToID[name]]
	}

	return nil
}

func (p *GraphicsApp) destroyGraphicsPipelines() {
	for _, g := range p.GraphicsPipelines {
		vk.DestroyPipeline(p.Device.VKDevice, g, nil)
	}
	p.GraphicsPipelines = nil
}

func (p *GraphicsApp) refreshScreenExtent() {
	if p.Window != nil {
		width, height := p.Window.GetFramebufferSize()
		p.screenExtent = vk.Extent2D{Width: uint32(width), Height: uint32(height)}
	}
}

// GetScreenExtent gets the current screen extent.
func (p *GraphicsApp) GetScreenExtent() vk.Extent2D {
	return p.screenExtent
}

// Destroy tears down the graphics application.
func (p *GraphicsApp) Destroy() {
	vk.DeviceWaitIdle(p.Device.VKDevice)

	p.destroyCommandBuffers()

	p.destroyGraphicsPipelines()

	for _, g := range p.GraphicsPipelineConfigs {
		g.Destroy()
	}

	if p.PipelineCache != nil {
		p.PipelineCache.Destroy()
	}

	p.ResourceManager.Destroy()

	p.destroyFramebuffers()

	p.destroyDepthImage()

	p.destroyRenderPass()

	p.destroySwapchainAndImages()

	p.destroySyncObjects()

	p.GraphicsCommandPool.Destroy()

	vk.DestroySurface(p.Instance.VKInstance, p.VKSurface, nil)

	p.Device.Destroy()

	p.Instance.Destroy()
}

// VKRenderPassCreateInfo is a utility function which creates the render pass
// info; the application can set ConfigureRenderPass to customize it.
func (p *GraphicsApp) VKRenderPassCreateInfo() vk.RenderPassCreateInfo {
	attachmentDescriptions := []vk.AttachmentDescription{
		{
			Format:         p.Swapchain.Format,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutPresentSrc,
		},
		{
			Format:         vk.FormatD32Sfloat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}

	depthAttachmentRef := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	colorAttachments := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpassDescriptions := []vk.SubpassDescription{{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    1,
		PColorAttachments:       colorAttachments,
		PDepthStencilAttachment: &depthAttachmentRef,
	}}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
	}

	return vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 2,
		PAttachments:    attachmentDescriptions,
		SubpassCount:    1,
		PSubpasses:      subpassDescriptions,
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
}

func (p *GraphicsApp) createRenderPass() error {
	renderPassCreateInfo := p.VKRenderPassCreateInfo()

	if p.ConfigureRenderPass != nil {
		p.ConfigureRenderPass(renderPassCreateInfo)
	}

	var renderPass vk.RenderPass

	err := vk.Error(vk.CreateRenderPass(p.Device.VKDevice, &renderPassCreateInfo, nil, &renderPass))
	if err != nil {
		return err
	}

	p.VKRenderPass = renderPass

	return nil
}

func (p *GraphicsApp) destroyRenderPass() {
	vk.DestroyRenderPass(p.Device.VKDevice, p.VKRenderPass, nil)
	p.VKRenderPass = vk.NullRenderPass
}

func (p *GraphicsApp) createSwapchainAndImages() error {
	extent := p.GetScreenExtent()

	options := &CreateSwapchainOptions{
		ActualSize:                extent,
		DesiredNumSwapchainImages: p.DefaultNumSwapchainImages,
	}

	swapchain, err := p.Device.CreateSwapchain(p.VKSurface, p.GraphicsQueue, p.PresentQueue, options)
	if err != nil {
		return err
	}
	p.Swapchain = swapchain

	images, err := swapchain.GetImages()
	if err != nil {
		return err
	}
	p.SwapchainImages = images

	p.SwapchainImageViews = make([]*ImageView, len(images))
	for i, image := range images {
		view, err := image.CreateImageView()
		if err != nil {
			return err
		}
		p.SwapchainImageViews[i] = view
	}
	return nil
}

func (p *GraphicsApp) destroySwapchainAndImages() {
	for _, views := range p.SwapchainImageViews {
		views.Destroy()
	}
	p.SwapchainImageViews = nil

	p.Swapchain.Destroy()
}

func (p *GraphicsApp) createDepthImage() error {
	var err error

	p.DepthImage, err = p.ResourceManager.NewImageResourceWithOptions(p.Swapchain.Extent, vk.FormatD32Sfloat, vk.ImageTilingOptimal, vk.ImageUsageDepthStencilAttachmentBit, vk.SharingModeExclusive, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return err
	}

	p.DepthImageView, err = p.DepthImage.CreateImageViewWithAspectMask(vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	return err
}

func (p *GraphicsApp) destroyDepthImage() {
	if p.DepthImageView != nil {
		p.DepthImageView.Destroy()
		p.DepthImageView = nil
	}
	if p.DepthImage != nil {
		p.DepthImage.Destroy()
		p.DepthImage = nil
	}
}

func (p *GraphicsApp) createFramebuffers() error {
	p.Framebuffers = make([]vk.Framebuffer, len(p.SwapchainImageViews))
	for i, view := range p.SwapchainImageViews {
		attachments := []vk.ImageView{
			view.VKImageView,
			p.DepthImageView.VKImageView,
		}
		fbCreateInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      p.VKRenderPass,
			Layers:          1,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           p.Swapchain.Extent.Width,
			Height:          p.Swapchain.Extent.Height,
		}
		err := vk.Error(vk.CreateFramebuffer(p.Device.VKDevice, &fbCreateInfo, nil, &p.Framebuffers[i]))
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *GraphicsApp) destroyFramebuffers() {
	for i := range p.Framebuffers {
		vk.DestroyFramebuffer(p.Device.VKDevice, p.Framebuffers[i], nil)
	}
	p.Framebuffers = nil
}

func (p *GraphicsApp) createCommandBuffers() error {
	var err error
	p.GraphicsCommandBuffers = make([]*CommandBuffer, len(p.SwapchainImageViews))
	for i := range p.SwapchainImageViews {
		p.GraphicsCommandBuffers[i], err = p.GraphicsCommandPool.AllocateBuffer(vk.CommandBufferLevelPrimary)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *GraphicsApp) destroyCommandBuffers() {
	for _, c := range p.GraphicsCommandBuffers {
		p.GraphicsCommandPool.FreeBuffer(c)
	}
	p.GraphicsCommandBuffers = nil
}

func (p *GraphicsApp) createSyncObjects() error {
	if p.presentCompleteSemaphore != nil {
		return nil
	}

	p.presentCompleteSemaphore = make([]vk.Semaphore, FrameLag)
	p.renderCompleteSemaphore = make([]vk.Semaphore, FrameLag)

	for i := 0; i < FrameLag; i++ {
		p.presentCompleteSemaphore[i], _ = p.Device.VKCreateSemaphore()
		p.renderCompleteSemaphore[i], _ = p.Device.VKCreateSemaphore()
	}

	p.waitFences = make([]vk.Fence, FrameLag)
	for i := 0; i < FrameLag; i++ {
		p.waitFences[i], _ = p.Device.VKCreateFence(true)
	}

	return nil
}

func (p *GraphicsApp) destroySyncObjects() {
	for i := 0; i < FrameLag; i++ {
		p.Device.VKDestroySemaphore(p.presentCompleteSemaphore[i])
		p.Device.VKDestroySemaphore(p.renderCompleteSemaphore[i])
	}
	p.presentCompleteSemaphore = nil
	p.renderCompleteSemaphore = nil

	for _, fence := range p.waitFences {
		p.Device.VKDestroyFence(fence)
	}
	p.waitFences = nil
}
