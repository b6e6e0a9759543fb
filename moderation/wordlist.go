package moderation

import (
	"alumni-net/errors"
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"path"
	"slices"
	"strings"
)

//go:embed censored/*.txt
var defaultDictionaries embed.FS

// WordList is the merged content of a dictionary folder.
type WordList struct {
	Words     []string
	Languages []string
}

// DefaultWordList loads the dictionaries shipped with the binary.
func DefaultWordList() (WordList, error) {
	return LoadWordList(defaultDictionaries, "censored")
}

// LoadWordList reads every "{lang}.txt" file of dir, one word per line.
// Words are deduplicated and sorted, blank lines ignored.
func LoadWordList(fsys fs.FS, dir string) (WordList, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return WordList{}, err
	}

	var languages []string
	unique := make(map[string]struct{})
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return WordList{}, err
		}
		// Scanner copes with \r\n endings
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				unique[strings.ToLower(line)] = struct{}{}
			}
		}
		if err := scanner.Err(); err != nil {
			return WordList{}, err
		}
	}

	if len(unique) == 0 {
		return WordList{}, errors.ErrEmptyWords
	}
	words := make([]string, 0, len(unique))
	for w := range unique {
		words = append(words, w)
	}
	slices.Sort(words)
	return WordList{Words: words, Languages: languages}, nil
}

// Merge appends extra words not already present.
func (w WordList) Merge(extra ...string) WordList {
	merged := slices.Clone(w.Words)
	for _, word := range extra {
		word = strings.ToLower(strings.TrimSpace(word))
		if word != "" && !slices.Contains(merged, word) {
			merged = append(merged, word)
		}
	}
	return WordList{Words: merged, Languages: w.Languages}
}
