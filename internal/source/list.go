package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineSize is the longest line accepted in a list file.
const maxLineSize = 64 * 1024

// ParseList reads one URL per line. Blank lines and lines starting with '#'
// are ignored, surrounding whitespace is trimmed, and order is preserved.
func ParseList(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	urls := make([]string, 0)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return urls, nil
}

// ReadListFile reads a URL list from path. "-" reads standard input.
func ReadListFile(path string) ([]string, error) {
	if path == "-" {
		return ParseList(os.Stdin)
	}

	f, err := os.Open(path) //nolint:gosec // User-provided list path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open URL list: %w", err)
	}
	defer f.Close()

	urls, err := ParseList(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read URL list %s: %w", path, err)
	}
	return urls, nil
}
