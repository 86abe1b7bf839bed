package shader

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/go-mtl/foundation"
	"github.com/tsawler/go-mtl/metal_bridge"
	"github.com/tsawler/go-mtl/objc"
	"github.com/tsawler/go-mtl/objc/objctest"
)

const doubleWGSL = `
@group(0) @binding(0) var<storage, read_write> data: array<f32, 64>;

@compute @workgroup_size(64)
fn double_values(@builtin(global_invocation_id) id: vec3<u32>) {
	data[id.x] = data[id.x] * 2.0;
}
`

const triangleWGSL = `
struct VertexOutput {
	@builtin(position) position: vec4<f32>,
	@location(0) color: vec3<f32>
}

@vertex
fn vs_main(@builtin(vertex_index) vertex_index: u32) -> VertexOutput {
	let positions = array<vec2<f32>, 3>(
		vec2<f32>(0.0, 0.5),
		vec2<f32>(-0.5, -0.5),
		vec2<f32>(0.5, -0.5)
	);
	var out: VertexOutput;
	out.position = vec4<f32>(positions[vertex_index], 0.0, 1.0);
	out.color = vec3<f32>(1.0, 0.0, 0.0);
	return out;
}

@fragment
fn fs_main(input: VertexOutput) -> @location(0) vec4<f32> {
	return vec4<f32>(input.color, 1.0);
}
`

func TestTranslateCompute(t *testing.T) {
	tr, err := TranslateWGSL(doubleWGSL, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, tr.EntryPoints, 1)
	ep, ok := tr.EntryPoint("double_values")
	require.True(t, ok)
	assert.Equal(t, metal_bridge.FunctionTypeKernel, ep.Type)
	assert.Equal(t, metal_bridge.Size{Width: 64, Height: 1, Depth: 1}, ep.Workgroup)
	require.NotEmpty(t, ep.Function)
	assert.Contains(t, tr.Source, "kernel void "+ep.Function+"(")
	assert.Contains(t, tr.Source, "#include <metal_stdlib>")

	_, ok = tr.EntryPoint("missing")
	assert.False(t, ok)
}

func TestTranslateRenderStages(t *testing.T) {
	tr, err := TranslateWGSL(triangleWGSL, Options{})
	require.NoError(t, err)

	require.Len(t, tr.EntryPoints, 2)
	assert.Equal(t, "fs_main", tr.EntryPoints[0].Name)
	assert.Equal(t, metal_bridge.FunctionTypeFragment, tr.EntryPoints[0].Type)
	assert.Equal(t, "vs_main", tr.EntryPoints[1].Name)
	assert.Equal(t, metal_bridge.FunctionTypeVertex, tr.EntryPoints[1].Type)
	assert.Contains(t, tr.Source, "vertex ")
	assert.Contains(t, tr.Source, "fragment ")
}

func TestTranslateErrors(t *testing.T) {
	_, err := TranslateWGSL("fn broken( {", DefaultOptions())
	assert.ErrorContains(t, err, "wgsl")

	_, err = TranslateWGSL("fn helper() -> f32 { return 1.0; }", DefaultOptions())
	assert.ErrorContains(t, err, "no entry points")
}

func TestOptionsVersion(t *testing.T) {
	opts := Options{LanguageVersion: metal_bridge.LanguageVersion3_0, Unchecked: true}
	m := opts.msl()
	assert.EqualValues(t, 3, m.LangVersion.Major)
	assert.EqualValues(t, 0, m.LangVersion.Minor)
	assert.Zero(t, m.BoundsCheckPolicies.Buffer)

	m = Options{}.msl()
	assert.EqualValues(t, 2, m.LangVersion.Major)
	assert.EqualValues(t, 1, m.LangVersion.Minor)
	assert.NotZero(t, m.BoundsCheckPolicies.Buffer)
}

func TestNewLibraryFromWGSL(t *testing.T) {
	rt := objctest.Install(t)
	rt.Function("MTLCreateSystemDefaultDevice", func() objc.ID { return rt.NewObject("MTLDevice") })

	var compiled string
	var version uint64
	rt.HandleError("MTLDevice.newLibraryWithSource:options:error:", func(self objc.ID, args []uintptr) (uintptr, objc.ID) {
		compiled = objc.GoString(objc.ID(args[0]))
		version = objc.SendUint(objc.ID(args[1]), "languageVersion")
		if strings.Contains(compiled, "fragment") {
			return 0, rt.NewError("MTLLibraryErrorDomain", 3, "program_source: error")
		}
		return uintptr(rt.NewObject("MTLLibrary")), 0
	})

	device, err := metal_bridge.SystemDefaultDevice()
	require.NoError(t, err)
	defer device.Release()

	opts := DefaultOptions()
	opts.LanguageVersion = metal_bridge.LanguageVersion2_3
	lib, tr, err := NewLibraryFromWGSL(device, doubleWGSL, opts)
	require.NoError(t, err)
	defer lib.Release()
	assert.Equal(t, tr.Source, compiled)
	assert.EqualValues(t, metal_bridge.LanguageVersion2_3, version)

	_, tr, err = NewLibraryFromWGSL(device, triangleWGSL, DefaultOptions())
	require.Error(t, err)
	assert.NotNil(t, tr)
	var nsErr *foundation.Error
	require.True(t, errors.As(err, &nsErr))
	assert.Equal(t, "MTLLibraryErrorDomain", nsErr.Domain)
	assert.ErrorIs(t, err, metal_bridge.ErrCreate)

	_, _, err = NewLibraryFromWGSL(device, "fn broken( {", DefaultOptions())
	assert.Error(t, err)
}
