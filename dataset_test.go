package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFieldMissing(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		missing bool
	}{
		{"empty", "", true},
		{"whitespace only", "   \t ", true},
		{"na placeholder", "Na", true},
		{"nan placeholder", "nan", true},
		{"uppercase nan", "NaN", true},
		{"n/a placeholder", "N/A", true},
		{"padded placeholder", "  na  ", true},
		{"real value", "verb", false},
		{"value containing na", "banana", false},
		{"sentence", "A domesticated feline.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fieldMissing(tt.value); got != tt.missing {
				t.Errorf("fieldMissing(%q) = %v, want %v", tt.value, got, tt.missing)
			}
		})
	}
}

func TestMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  []FieldKind
	}{
		{
			"all missing",
			Entry{Word: "cat"},
			[]FieldKind{FieldPartOfSpeech, FieldDefinition, FieldExample, FieldEtymology},
		},
		{
			"partially filled",
			Entry{Word: "run", PartOfSpeech: "verb", Etymology: "From Old English rinnan."},
			[]FieldKind{FieldDefinition, FieldExample},
		},
		{
			"placeholders count as missing",
			Entry{Word: "cat", PartOfSpeech: "noun", Definition: "Na", Example: "  ", Etymology: "nan"},
			[]FieldKind{FieldDefinition, FieldExample, FieldEtymology},
		},
		{
			"fully filled",
			Entry{Word: "cat", PartOfSpeech: "noun", Definition: "a feline", Example: "The cat sat.", Etymology: "From Latin cattus."},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := missingFields(&tt.entry)
			if len(got) != len(tt.want) {
				t.Fatalf("missingFields() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("missingFields()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReadDataset(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantRows    int
		expectError bool
	}{
		{
			"valid dataset",
			"word,partOfSpeech,definition,example,etymology\nrun,verb,,,\ncat,,,,\n",
			2,
			false,
		},
		{
			"skips rows with empty word",
			"word,partOfSpeech,definition,example,etymology\nrun,verb,,,\n,,,,\n",
			1,
			false,
		},
		{
			"wrong column name",
			"word,pos,definition,example,etymology\nrun,verb,,,\n",
			0,
			true,
		},
		{
			"wrong column count",
			"word,partOfSpeech,definition\nrun,verb,\n",
			0,
			true,
		},
		{
			"header only",
			"word,partOfSpeech,definition,example,etymology\n",
			0,
			true,
		},
		{
			"empty file",
			"",
			0,
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dataset, err := readDataset(strings.NewReader(tt.content))

			if tt.expectError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("readDataset() error = %v", err)
			}
			if len(dataset) != tt.wantRows {
				t.Errorf("got %d rows, want %d", len(dataset), tt.wantRows)
			}
		})
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	original := Dataset{
		{Word: "run", PartOfSpeech: "verb", Definition: "to move quickly", Example: "I run daily.", Etymology: "From Old English."},
		{Word: "cat", PartOfSpeech: "noun", Definition: "a feline, often kept as a pet", Example: "", Etymology: ""},
	}

	path := filepath.Join(t.TempDir(), "dataset.csv")
	if err := original.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loaded, err := LoadDataset(path)
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}

	if len(loaded) != len(original) {
		t.Fatalf("got %d rows, want %d", len(loaded), len(original))
	}
	for i := range original {
		if loaded[i] != original[i] {
			t.Errorf("row %d = %+v, want %+v", i, loaded[i], original[i])
		}
	}
}

func TestLoadDatasetFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("word,partOfSpeech,definition,example,etymology\nrun,verb,,,\n"))
	}))
	defer server.Close()

	dataset, err := LoadDataset(server.URL)
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}
	if len(dataset) != 1 || dataset[0].Word != "run" {
		t.Errorf("unexpected dataset: %+v", dataset)
	}
}

func TestLoadDatasetFromURLHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := LoadDataset(server.URL); err == nil {
		t.Error("expected error for HTTP 404, got none")
	}
}

func TestLoadDatasetMissingFile(t *testing.T) {
	if _, err := LoadDataset(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file, got none")
	}
}

func TestWriteFileCreatesReadableCSV(t *testing.T) {
	dataset := Dataset{{Word: "quote", Definition: `he said "hi", then left`}}

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := dataset.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written file: %v", err)
	}
	if !strings.HasPrefix(string(data), "word,partOfSpeech,definition,example,etymology") {
		t.Errorf("output missing header: %q", string(data))
	}

	loaded, err := LoadDataset(path)
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}
	if loaded[0].Definition != dataset[0].Definition {
		t.Errorf("quoted value did not round-trip: %q", loaded[0].Definition)
	}
}
