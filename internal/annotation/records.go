package annotation

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/samber/lo"
)

// LoadRecords reads a JSON array of records
func LoadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse records %s: %w", path, err)
	}
	return records, nil
}

// WriteRecords writes records as a JSON array
func WriteRecords(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}

// SeenFiles lists the images already covered by records
func SeenFiles(records []Record) []string {
	return lo.Map(records, func(r Record, _ int) string { return r.ImgFile })
}

// Pending returns the sorted, de-duplicated images not in seen. When rng is non-nil
// the result is shuffled with it.
func Pending(images, seen []string, rng *rand.Rand) []string {
	pending := lo.Uniq(lo.Without(images, seen...))
	sort.Strings(pending)

	if rng != nil {
		rng.Shuffle(len(pending), func(i, j int) {
			pending[i], pending[j] = pending[j], pending[i]
		})
	}
	return pending
}

// ReadImageList reads one image filename per line, ignoring blank lines
func ReadImageList(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image list: %w", err)
	}
	return lo.Compact(lo.Map(strings.Split(string(data), "\n"), func(line string, _ int) string {
		return strings.TrimSpace(line)
	})), nil
}
