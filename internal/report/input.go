package report

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// EnableRawInput puts stdin into raw mode and streams single key presses on
// the returned channel. The restore function must run before any final
// output is printed, or line endings will be mangled.
func EnableRawInput() (<-chan byte, func(), error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, nil, fmt.Errorf("stdin is not a terminal")
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, nil, fmt.Errorf("raw mode: %w", err)
	}

	keys := make(chan byte, 16)
	go func() {
		defer close(keys)
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 1 {
				keys <- buf[0]
			}
		}
	}()

	restore := func() { term.Restore(fd, old) }
	return keys, restore, nil
}
