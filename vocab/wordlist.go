package vocab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadWordList reads one word per line. Blank lines and lines starting with
// '#' are skipped, surrounding whitespace is trimmed and duplicates are
// dropped keeping the first occurrence.
func ReadWordList(r io.Reader) ([]string, error) {
	seen := make(map[string]struct{})
	var words []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// LoadWordList reads a word list file.
func LoadWordList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	words, err := ReadWordList(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return words, nil
}
