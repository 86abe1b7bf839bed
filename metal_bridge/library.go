package metal_bridge

import (
	"fmt"

	"github.com/tsawler/go-mtl/foundation"
	"github.com/tsawler/go-mtl/objc"
)

// CompileOptions is an MTLCompileOptions.
type CompileOptions struct {
	*objc.Object
}

func NewCompileOptions() *CompileOptions {
	return wrap[CompileOptions](objc.New("MTLCompileOptions"))
}

func (o *CompileOptions) FastMathEnabled() bool { return objc.SendBool(o, "fastMathEnabled") }

func (o *CompileOptions) SetFastMathEnabled(b bool) { objc.SendVoid(o, "setFastMathEnabled:", b) }

func (o *CompileOptions) LanguageVersion() LanguageVersion {
	return LanguageVersion(objc.SendUint(o, "languageVersion"))
}

func (o *CompileOptions) SetLanguageVersion(v LanguageVersion) {
	objc.SendVoid(o, "setLanguageVersion:", v)
}

func (o *CompileOptions) PreserveInvariance() bool { return objc.SendBool(o, "preserveInvariance") }

func (o *CompileOptions) SetPreserveInvariance(b bool) {
	objc.SendVoid(o, "setPreserveInvariance:", b)
}

// SetPreprocessorMacros defines each key as its value, as -D would.
func (o *CompileOptions) SetPreprocessorMacros(macros map[string]string) {
	dict := foundation.NewStringDictionary(macros)
	defer dict.Release()
	objc.SendVoid(o, "setPreprocessorMacros:", dict)
}

// Library is an MTLLibrary. It is safe for concurrent use.
type Library struct {
	*objc.Object
}

// NewLibraryWithSource compiles Metal Shading Language source. Compiler
// diagnostics come back as a *foundation.Error in MTLLibraryErrorDomain.
// opts may be nil.
func (d *Device) NewLibraryWithSource(source string, opts *CompileOptions) (*Library, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	obj, err := createWithError("library", d, "newLibraryWithSource:options:error:", source, opts)
	return wrap[Library](obj), err
}

// NewLibraryWithURL loads a compiled .metallib.
func (d *Device) NewLibraryWithURL(path string) (*Library, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	url := foundation.NewFileURL(path)
	if url == nil {
		return nil, &CreateError{Object: "library", Err: ErrUnsupported}
	}
	defer url.Release()
	obj, err := createWithError("library", d, "newLibraryWithURL:error:", url)
	return wrap[Library](obj), err
}

// NewDefaultLibrary loads the default.metallib bundled with the app.
func (d *Device) NewDefaultLibrary() (*Library, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	obj, err := created("default library", objc.Send(d, "newDefaultLibrary"))
	return wrap[Library](obj), err
}

func (l *Library) Label() string     { return label(l) }
func (l *Library) SetLabel(s string) { setLabel(l, s) }
func (l *Library) Device() *Device   { return deviceOf(l) }

// FunctionNames lists the library's public functions.
func (l *Library) FunctionNames() []string {
	arr := foundation.ArrayFrom(objc.Send(l, "functionNames"))
	if arr == nil {
		return nil
	}
	defer arr.Release()
	return arr.Strings()
}

// NewFunction looks up a function by name.
func (l *Library) NewFunction(name string) (*Function, error) {
	obj := objc.Send(l, "newFunctionWithName:", name)
	if obj == nil {
		if !objc.Available() {
			return nil, ErrUnsupported
		}
		return nil, fmt.Errorf("failed to get function '%s' from library", name)
	}
	return wrap[Function](obj), nil
}

// Function is an MTLFunction.
type Function struct {
	*objc.Object
}

func (f *Function) Name() string      { return objc.SendString(f, "name") }
func (f *Function) Label() string     { return label(f) }
func (f *Function) SetLabel(s string) { setLabel(f, s) }
func (f *Function) Device() *Device   { return deviceOf(f) }

func (f *Function) FunctionType() FunctionType {
	return FunctionType(objc.SendUint(f, "functionType"))
}
