// Package shader builds Metal libraries from WGSL. Sources are translated to
// Metal Shading Language with naga and compiled by the device.
package shader

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/msl"

	"github.com/tsawler/go-mtl/metal_bridge"
)

// ErrValidation is matched by errors from WGSL that parses but fails naga's
// IR validation.
var ErrValidation = errors.New("wgsl validation failed")

var pkgLogger atomic.Pointer[slog.Logger]

// SetLogger sets the logger for translation diagnostics. nil restores
// slog.Default.
func SetLogger(l *slog.Logger) { pkgLogger.Store(l) }

func logger() *slog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// Options controls translation.
type Options struct {
	// LanguageVersion is the MSL version to emit and compile against. Zero
	// means 2.1.
	LanguageVersion metal_bridge.LanguageVersion

	// Unchecked turns off the bounds checks naga inserts around buffer,
	// texture and array accesses.
	Unchecked bool

	// ZeroWorkgroupMemory clears threadgroup memory on kernel entry.
	ZeroWorkgroupMemory bool

	// BoundLoops adds an iteration limit to every loop.
	BoundLoops bool

	SkipValidation bool
}

// DefaultOptions matches naga's MSL defaults.
func DefaultOptions() Options {
	return Options{
		LanguageVersion:     metal_bridge.LanguageVersion2_1,
		ZeroWorkgroupMemory: true,
		BoundLoops:          true,
	}
}

func (o Options) version() metal_bridge.LanguageVersion {
	if o.LanguageVersion == 0 {
		return metal_bridge.LanguageVersion2_1
	}
	return o.LanguageVersion
}

func (o Options) msl() msl.Options {
	v := o.version()
	opts := msl.Options{
		LangVersion:                   msl.Version{Major: uint8(v >> 16), Minor: uint8(v & 0xffff)},
		BoundsCheckPolicies:           msl.DefaultBoundsCheckPolicies(),
		ZeroInitializeWorkgroupMemory: o.ZeroWorkgroupMemory,
		ForceLoopBounding:             o.BoundLoops,
	}
	if o.Unchecked {
		opts.BoundsCheckPolicies = msl.BoundsCheckPolicies{}
	}
	return opts
}

// EntryPoint is a shader entry point after translation.
type EntryPoint struct {
	// Name is the entry point's name in the WGSL source.
	Name string
	// Function is the name of the generated MSL function, the name to pass
	// to Library.NewFunction.
	Function string
	Type     metal_bridge.FunctionType
	// Workgroup is the @workgroup_size of a compute entry point.
	Workgroup metal_bridge.Size
}

// Translation is WGSL translated to MSL.
type Translation struct {
	Source      string
	EntryPoints []EntryPoint
	// RequiresSizesBuffer reports that the shader reads the length of a
	// runtime-sized array and expects the sizes buffer to be bound.
	RequiresSizesBuffer bool
}

// EntryPoint finds an entry point by its WGSL name.
func (t *Translation) EntryPoint(name string) (EntryPoint, bool) {
	for _, ep := range t.EntryPoints {
		if ep.Name == name {
			return ep, true
		}
	}
	return EntryPoint{}, false
}

func functionType(stage ir.ShaderStage) metal_bridge.FunctionType {
	switch stage {
	case ir.StageVertex:
		return metal_bridge.FunctionTypeVertex
	case ir.StageFragment:
		return metal_bridge.FunctionTypeFragment
	default:
		return metal_bridge.FunctionTypeKernel
	}
}

// TranslateWGSL parses, lowers, validates and translates WGSL source to MSL.
func TranslateWGSL(source string, opts Options) (*Translation, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("wgsl: %w", err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("wgsl: lowering: %w", err)
	}
	if len(module.EntryPoints) == 0 {
		return nil, fmt.Errorf("wgsl: source has no entry points")
	}

	if !opts.SkipValidation {
		problems, err := naga.Validate(module)
		if err != nil {
			return nil, fmt.Errorf("wgsl: %w", err)
		}
		if len(problems) > 0 {
			for _, p := range problems[1:] {
				logger().Debug("wgsl validation", "error", p.Error())
			}
			return nil, fmt.Errorf("%w: %w", ErrValidation, problems[0])
		}
	}

	src, info, err := msl.Compile(module, opts.msl())
	if err != nil {
		return nil, err
	}

	t := &Translation{
		Source:              src,
		RequiresSizesBuffer: info.RequiresSizesBuffer,
	}
	for _, ep := range module.EntryPoints {
		fn := info.EntryPointNames[ep.Name]
		if fn == "" {
			fn = ep.Name
		}
		t.EntryPoints = append(t.EntryPoints, EntryPoint{
			Name:     ep.Name,
			Function: fn,
			Type:     functionType(ep.Stage),
			Workgroup: metal_bridge.Size{
				Width:  uint(ep.Workgroup[0]),
				Height: uint(ep.Workgroup[1]),
				Depth:  uint(ep.Workgroup[2]),
			},
		})
	}
	sort.Slice(t.EntryPoints, func(i, j int) bool { return t.EntryPoints[i].Name < t.EntryPoints[j].Name })
	logger().Debug("translated wgsl", "entryPoints", len(t.EntryPoints), "bytes", len(src))
	return t, nil
}

// NewLibraryFromWGSL translates source and compiles the result on device.
// The returned Translation names the MSL functions of each entry point.
func NewLibraryFromWGSL(device *metal_bridge.Device, source string, opts Options) (*metal_bridge.Library, *Translation, error) {
	t, err := TranslateWGSL(source, opts)
	if err != nil {
		return nil, nil, err
	}
	compileOpts := metal_bridge.NewCompileOptions()
	if compileOpts != nil {
		defer compileOpts.Release()
		compileOpts.SetLanguageVersion(opts.version())
	}
	lib, err := device.NewLibraryWithSource(t.Source, compileOpts)
	if err != nil {
		return nil, t, fmt.Errorf("compiling translated wgsl: %w", err)
	}
	return lib, t, nil
}
