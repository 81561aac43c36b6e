package psd

import "fmt"

// packBits compresses one row with the PackBits scheme used by PSD RLE.
func packBits(src []byte) []byte {
	out := make([]byte, 0, len(src)+len(src)/128+1)
	for i := 0; i < len(src); {
		// Run of identical bytes.
		run := 1
		for i+run < len(src) && run < 128 && src[i+run] == src[i] {
			run++
		}
		if run >= 2 {
			out = append(out, byte(1-run), src[i])
			i += run
			continue
		}

		// Literal span up to the next run of two or more.
		start := i
		for i < len(src) && i-start < 128 {
			if i+1 < len(src) && src[i] == src[i+1] {
				break
			}
			i++
		}
		out = append(out, byte(i-start-1))
		out = append(out, src[start:i]...)
	}
	return out
}

// unpackBits expands a PackBits row to exactly n bytes.
func unpackBits(src []byte, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for i := 0; i < len(src); {
		c := int8(src[i])
		i++
		switch {
		case c >= 0:
			k := int(c) + 1
			if i+k > len(src) {
				return nil, fmt.Errorf("psd: truncated literal run")
			}
			out = append(out, src[i:i+k]...)
			i += k
		case c != -128:
			if i >= len(src) {
				return nil, fmt.Errorf("psd: truncated repeat run")
			}
			for k := 0; k < 1-int(c); k++ {
				out = append(out, src[i])
			}
			i++
		}
	}
	if len(out) != n {
		return nil, fmt.Errorf("psd: row decoded to %d bytes, want %d", len(out), n)
	}
	return out, nil
}
