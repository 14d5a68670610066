/*
Package gfx is a thin abstraction atop the Vulkan bindings for Go, carved to
what a 2D instanced renderer needs. Vulkan leaves nearly everything that
OpenGL used to manage - device selection, memory pools, synchronization,
pipeline construction - to the application, so this package wraps the common
setup and frame plumbing while keeping the escape hatches open: every object
exposes its native Vulkan handle through VK-prefixed fields, and applications
are expected to call native vulkan-go APIs for anything not wrapped here.

The pieces, roughly in the order an application touches them:

	App / Instance    application info, layers/extensions, the Vulkan instance
	PhysicalDevice    hardware discovery, queue families, memory types
	Device / Queue    the logical device and its work queues
	ResourceManager   named pools of buffer and image memory with a linear
	                  sub-allocator, plus a staging pool for device-local data
	Swapchain         presentation images
	GraphicsPipelineConfig
	                  declarative graphics pipeline construction
	GraphicsApp       window surface, swapchain, framebuffers, render pass and
	                  a synchronous draw loop driven by a command buffer
	                  callback

See https://vulkan-tutorial.com/ for a walkthrough of the underlying setup
this package automates.
*/
package gfx
