//go:build !nogpu

package wgpu

import (
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/batch"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan HAL backend used by Open.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

//go:embed shaders/batch_vertex.wgsl
var defaultVertexShader string

//go:embed shaders/batch_fragment.wgsl
var defaultFragmentShader string

// Errors returned by the wgpu backend.
var (
	ErrNoDevice          = errors.New("wgpu: no GPU device available")
	ErrProviderNotHAL    = errors.New("wgpu: provider does not expose HAL device and queue")
	ErrUnknownProgram    = errors.New("wgpu: unknown program")
	ErrUnknownTexture    = errors.New("wgpu: unknown texture")
	ErrNoLayout          = errors.New("wgpu: program has no vertex layout")
	ErrNoTarget          = errors.New("wgpu: no current target")
	ErrUnsupportedFormat = errors.New("wgpu: unsupported texture format")
	ErrRegionOutOfBounds = errors.New("wgpu: region outside texture")
	ErrGPUTimeout        = errors.New("wgpu: timed out waiting for GPU")
)

// fenceTimeout bounds every wait for submitted work.
const fenceTimeout = 5 * time.Second

// Backend is a batch.Backend backed by a HAL device.
//
// The Backend is not safe for concurrent use.
type Backend struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	external bool // device is owned by someone else

	format gputypes.TextureFormat

	nextProgram batch.ProgramHandle
	nextTexture batch.TextureHandle
	programs    map[batch.ProgramHandle]*program
	textures    map[batch.TextureHandle]*texture
	bound       map[int]batch.TextureHandle
	active      batch.ProgramHandle
	current     *Target

	samplers map[samplerKey]hal.Sampler
	fallback *texture
}

var _ batch.Backend = (*Backend)(nil)

// New wraps an existing device and queue. The caller keeps ownership of
// both; Close releases only what the backend created.
func New(device hal.Device, queue hal.Queue) *Backend {
	b := newBackend(device, queue)
	b.external = true
	return b
}

func newBackend(device hal.Device, queue hal.Queue) *Backend {
	return &Backend{
		device:   device,
		queue:    queue,
		format:   gputypes.TextureFormatRGBA8Unorm,
		programs: make(map[batch.ProgramHandle]*program),
		textures: make(map[batch.TextureHandle]*texture),
		bound:    make(map[int]batch.TextureHandle),
		samplers: make(map[samplerKey]hal.Sampler),
	}
}

// NewFromProvider shares the device of a host application such as a gogpu
// window. The provider must also implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue. Targets default to the
// provider's surface format.
func NewFromProvider(provider gpucontext.DeviceProvider) (*Backend, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrProviderNotHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrProviderNotHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrProviderNotHAL)
	}
	b := New(device, queue)
	if f := provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		b.format = f
	}
	return b, nil
}

// Open creates a standalone Vulkan device, preferring a discrete or
// integrated GPU.
func Open() (*Backend, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", ErrNoDevice)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no adapters found", ErrNoDevice)
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}
	b := newBackend(openDev.Device, openDev.Queue)
	b.instance = instance
	batch.Logger().Info("wgpu: device opened", "adapter", selected.Info.Name)
	return b, nil
}

// Name implements batch.Backend.
func (b *Backend) Name() string { return "wgpu" }

// Device returns the HAL device.
func (b *Backend) Device() hal.Device { return b.device }

// Queue returns the HAL queue.
func (b *Backend) Queue() hal.Queue { return b.queue }

// Format returns the color format of new targets.
func (b *Backend) Format() gputypes.TextureFormat { return b.format }

// DefaultShaders implements batch.Backend.
func (b *Backend) DefaultShaders() (vertex, fragment string) {
	return defaultVertexShader, defaultFragmentShader
}

// Close releases every program, texture and sampler, then the device if
// the backend opened it.
func (b *Backend) Close() {
	for h := range b.programs {
		b.DestroyProgram(h)
	}
	for h := range b.textures {
		b.DestroyTexture(h)
	}
	if b.fallback != nil {
		b.fallback.destroy(b.device)
		b.fallback = nil
	}
	for k, s := range b.samplers {
		b.device.DestroySampler(s)
		delete(b.samplers, k)
	}
	if b.external {
		b.device = nil
		b.queue = nil
		return
	}
	if b.device != nil {
		b.device.Destroy()
		b.device = nil
	}
	if b.instance != nil {
		b.instance.Destroy()
		b.instance = nil
	}
	b.queue = nil
}

// submit ends the encoding, submits it and waits for completion.
func (b *Backend) submit(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)

	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ok, err := b.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if !ok {
		return ErrGPUTimeout
	}
	return nil
}

func init() {
	batch.RegisterBackend("wgpu", func() (batch.Backend, error) {
		return Open()
	})
}
