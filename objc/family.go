package objc

import "strings"

// Family is the method family of a selector, which decides whether its
// object result is returned retained.
type Family int

const (
	FamilyNone Family = iota
	FamilyAlloc
	FamilyCopy
	FamilyInit
	FamilyMutableCopy
	FamilyNew
)

var familyNames = [...]string{
	FamilyNone:        "none",
	FamilyAlloc:       "alloc",
	FamilyCopy:        "copy",
	FamilyInit:        "init",
	FamilyMutableCopy: "mutableCopy",
	FamilyNew:         "new",
}

func (f Family) String() string {
	if f >= 0 && int(f) < len(familyNames) {
		return familyNames[f]
	}
	return "unknown"
}

// prefixes are checked longest first so mutableCopy is not mistaken for
// anything shorter.
var familyPrefixes = []struct {
	prefix string
	family Family
}{
	{"mutableCopy", FamilyMutableCopy},
	{"alloc", FamilyAlloc},
	{"copy", FamilyCopy},
	{"init", FamilyInit},
	{"new", FamilyNew},
}

// MethodFamily classifies a selector. Leading underscores are ignored and a
// family prefix only counts when the selector ends there or continues with a
// character that is not a lowercase letter: newBuffer and new are in the new
// family, newt and newer are not.
func MethodFamily(sel string) Family {
	name := strings.TrimLeft(sel, "_")
	for _, p := range familyPrefixes {
		if !strings.HasPrefix(name, p.prefix) {
			continue
		}
		rest := name[len(p.prefix):]
		if rest == "" || rest[0] < 'a' || rest[0] > 'z' {
			return p.family
		}
	}
	return FamilyNone
}

// ReturnsRetained reports whether sel hands its caller a +1 object.
func ReturnsRetained(sel string) bool {
	return MethodFamily(sel) != FamilyNone
}
