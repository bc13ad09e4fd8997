package kernelctl

import (
	"os"
	"strconv"
	"strings"
)

// Plain-text kernel files: read the whole thing, trim, parse. Errors map to
// the caller's unavailable/zero semantics.

func readString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func readInt(path string) (int, error) {
	s, err := readString(path)
	if err != nil {
		return -1, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return -1, err
	}
	return v, nil
}

// readUint returns 0 on any error; monotonic counters treat absence as zero.
func readUint(path string) uint64 {
	s, err := readString(path)
	if err != nil {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func writeInt(path string, v int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(v)), 0o644)
}
