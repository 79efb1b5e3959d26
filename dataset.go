package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// datasetColumns is the required CSV header, in order.
var datasetColumns = []string{"word", "partOfSpeech", "definition", "example", "etymology"}

// Dataset is an ordered sequence of entries. Order is significant: rows are
// processed and checkpointed in sequence, and resumption depends on it.
type Dataset []Entry

// missingPlaceholders are cell values treated the same as an empty cell.
// Exported datasets from the original spreadsheets use these as fillers.
var missingPlaceholders = map[string]bool{
	"na":  true,
	"nan": true,
	"n/a": true,
}

// fieldMissing reports whether a stored value counts as missing.
// Whitespace-only values are missing so cosmetically "filled" junk
// doesn't escape enrichment.
func fieldMissing(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v == "" || missingPlaceholders[v]
}

// missingFields returns the enrichable fields of the entry that still need
// a value, in column order.
func missingFields(e *Entry) []FieldKind {
	var missing []FieldKind
	for _, kind := range enrichableFields {
		if fieldMissing(e.Field(kind)) {
			missing = append(missing, kind)
		}
	}
	return missing
}

// LoadDataset loads a dataset from a local file path or an http(s) URL.
func LoadDataset(source string) (Dataset, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return loadDatasetFromURL(source)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	return readDataset(f)
}

// loadDatasetFromURL fetches a CSV dataset over HTTP.
func loadDatasetFromURL(url string) (Dataset, error) {
	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching dataset from URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error %d when fetching dataset", resp.StatusCode)
	}

	return readDataset(resp.Body)
}

// readDataset parses CSV rows into a Dataset. The header must match
// datasetColumns exactly; rows with an empty word are skipped.
func readDataset(r io.Reader) (Dataset, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}

	header := records[0]
	if len(header) != len(datasetColumns) {
		return nil, fmt.Errorf("expected %d columns %v, got %d", len(datasetColumns), datasetColumns, len(header))
	}
	for i, col := range datasetColumns {
		if strings.TrimSpace(header[i]) != col {
			return nil, fmt.Errorf("column %d must be %q, got %q", i+1, col, header[i])
		}
	}

	dataset := make(Dataset, 0, len(records)-1)
	for _, row := range records[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		dataset = append(dataset, Entry{
			Word:         strings.TrimSpace(row[0]),
			PartOfSpeech: row[1],
			Definition:   row[2],
			Example:      row[3],
			Etymology:    row[4],
		})
	}

	if len(dataset) == 0 {
		return nil, fmt.Errorf("dataset has no rows")
	}

	return dataset, nil
}

// writeDataset writes the dataset as CSV with the standard header.
// Present values round-trip unchanged.
func writeDataset(w io.Writer, dataset Dataset) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(datasetColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := range dataset {
		e := &dataset[i]
		record := []string{e.Word, e.PartOfSpeech, e.Definition, e.Example, e.Etymology}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFile saves the dataset to path.
func (d Dataset) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	if err := writeDataset(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
