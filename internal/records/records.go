// Package records holds the in-memory record model and decodes delimited
// JSON input into it.
package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Record is one decoded JSON object. Numbers are json.Number.
type Record map[string]any

// Batch is every record read for one run, in input order.
type Batch struct {
	Records []Record
	// Sources is the number of input objects the records came from.
	Sources int
}

// Add appends the records decoded from one input object.
func (b *Batch) Add(recs []Record) {
	b.Records = append(b.Records, recs...)
	b.Sources++
}

// Len returns the number of records.
func (b *Batch) Len() int {
	return len(b.Records)
}

// Fields returns the sorted top-level field names across all records.
func (b *Batch) Fields() []string {
	seen := make(map[string]struct{})
	for _, r := range b.Records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Chunks splits the batch into slices of at most n records. n <= 0 returns one chunk.
func (b *Batch) Chunks(n int) [][]Record {
	if len(b.Records) == 0 {
		return nil
	}
	if n <= 0 || n >= len(b.Records) {
		return [][]Record{b.Records}
	}
	var chunks [][]Record
	for start := 0; start < len(b.Records); start += n {
		end := start + n
		if end > len(b.Records) {
			end = len(b.Records)
		}
		chunks = append(chunks, b.Records[start:end])
	}
	return chunks
}

// MarshalLine encodes r as one compact JSON line without a trailing newline.
func (r Record) MarshalLine() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]any(r)); err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
