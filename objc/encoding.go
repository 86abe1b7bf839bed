package objc

import (
	"fmt"
	"strings"
)

// EncodingSize returns the size in bytes of a value with the given
// Objective-C type encoding, laid out with natural alignment on a 64-bit
// target. Method qualifiers (r, n, N, o, O, R, V) are skipped.
func EncodingSize(enc string) uintptr {
	size, _, rest, err := parseEncoding(enc)
	if err != nil {
		panic(err)
	}
	if rest != "" {
		panic(fmt.Sprintf("objc: trailing %q in type encoding %q", rest, enc))
	}
	return size
}

// EncodingAlign returns the alignment of a value with the given encoding.
func EncodingAlign(enc string) uintptr {
	_, align, _, err := parseEncoding(enc)
	if err != nil {
		panic(err)
	}
	return align
}

// StructName returns the tag of a struct encoding, e.g. MTLSize for
// "{MTLSize=QQQ}", or "" if enc is not a struct.
func StructName(enc string) string {
	if !strings.HasPrefix(enc, "{") {
		return ""
	}
	end := strings.IndexAny(enc, "=}")
	if end < 0 {
		return ""
	}
	return enc[1:end]
}

func parseEncoding(enc string) (size, align uintptr, rest string, err error) {
	enc = strings.TrimLeft(enc, "rnNoORV")
	if enc == "" {
		return 0, 0, "", fmt.Errorf("objc: empty type encoding")
	}
	switch enc[0] {
	case 'c', 'C', 'B':
		return 1, 1, enc[1:], nil
	case 's', 'S':
		return 2, 2, enc[1:], nil
	case 'i', 'I', 'f':
		return 4, 4, enc[1:], nil
	case 'l', 'L':
		// long is 32 bits in the encoding scheme even on 64-bit targets.
		return 4, 4, enc[1:], nil
	case 'q', 'Q', 'd', '@', '#', ':', '*':
		return 8, 8, enc[1:], nil
	case 'v':
		return 0, 1, enc[1:], nil
	case '^':
		_, _, rest, err := parseEncoding(enc[1:])
		return 8, 8, rest, err
	case '[':
		i := 1
		for i < len(enc) && enc[i] >= '0' && enc[i] <= '9' {
			i++
		}
		var n uintptr
		fmt.Sscanf(enc[1:i], "%d", &n)
		elemSize, elemAlign, rest, err := parseEncoding(enc[i:])
		if err != nil {
			return 0, 0, "", err
		}
		if !strings.HasPrefix(rest, "]") {
			return 0, 0, "", fmt.Errorf("objc: unterminated array in %q", enc)
		}
		return n * elemSize, elemAlign, rest[1:], nil
	case '{':
		eq := strings.IndexAny(enc, "=}")
		if eq < 0 {
			return 0, 0, "", fmt.Errorf("objc: unterminated struct in %q", enc)
		}
		rest = enc[eq:]
		if rest[0] == '}' {
			return 0, 1, rest[1:], nil
		}
		rest = rest[1:]
		align = 1
		for rest != "" && rest[0] != '}' {
			var fs, fa uintptr
			fs, fa, rest, err = parseEncoding(rest)
			if err != nil {
				return 0, 0, "", err
			}
			size = alignUp(size, fa) + fs
			if fa > align {
				align = fa
			}
		}
		if rest == "" {
			return 0, 0, "", fmt.Errorf("objc: unterminated struct in %q", enc)
		}
		return alignUp(size, align), align, rest[1:], nil
	}
	return 0, 0, "", fmt.Errorf("objc: unsupported type encoding %q", enc)
}

func alignUp(n, a uintptr) uintptr {
	if a == 0 {
		return n
	}
	return (n + a - 1) / a * a
}
