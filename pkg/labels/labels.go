package labels

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Labels maps class indices to human-readable names
type Labels map[int]string

// Get returns the label for id, falling back to the numeric id when the
// mapping has no entry for it.
func (l Labels) Get(id int) string {
	if name, ok := l[id]; ok {
		return name
	}
	return strconv.Itoa(id)
}

// Load reads a label file. Each line is either "<index> <label>" or a bare
// label; the first line decides which format applies to the whole file.
// Bare labels are numbered sequentially from 0.
func Load(path string) (Labels, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open label file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads labels from r using the same format rules as Load.
func Parse(r io.Reader) (Labels, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read label file: %w", err)
	}

	labels := Labels{}
	if len(lines) == 0 {
		return labels, nil
	}

	firstToken, _, _ := strings.Cut(lines[0], " ")
	if _, err := strconv.Atoi(firstToken); err == nil {
		// Indexed format: "<index> <label>" per line
		for _, line := range lines {
			idx, label, found := strings.Cut(line, " ")
			if !found {
				return nil, fmt.Errorf("malformed label line %q", line)
			}
			i, err := strconv.Atoi(idx)
			if err != nil {
				return nil, fmt.Errorf("malformed label index %q: %w", idx, err)
			}
			labels[i] = strings.TrimSpace(label)
		}
		return labels, nil
	}

	for i, line := range lines {
		labels[i] = strings.TrimSpace(line)
	}
	return labels, nil
}

// Save writes the mapping in indexed format, ordered by index, so that
// reloading it with Load yields the same mapping.
func Save(path string, labels Labels) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create label file: %w", err)
	}
	defer f.Close()

	ids := make([]int, 0, len(labels))
	for id := range labels {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	w := bufio.NewWriter(f)
	for _, id := range ids {
		if _, err := fmt.Fprintf(w, "%d %s\n", id, labels[id]); err != nil {
			return fmt.Errorf("failed to write label file: %w", err)
		}
	}
	return w.Flush()
}
