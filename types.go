package main

// FieldKind names one enrichable column of the dataset. The value doubles
// as the CSV column header.
type FieldKind string

const (
	FieldPartOfSpeech FieldKind = "partOfSpeech"
	FieldDefinition   FieldKind = "definition"
	FieldExample      FieldKind = "example"
	FieldEtymology    FieldKind = "etymology"
)

// enrichableFields lists the fields the pipeline may fill, in column order.
var enrichableFields = []FieldKind{
	FieldPartOfSpeech,
	FieldDefinition,
	FieldExample,
	FieldEtymology,
}

// Entry is one dictionary row. Word is the immutable key; the remaining
// fields may be filled by the pipeline but are never overwritten once present.
type Entry struct {
	Word         string
	PartOfSpeech string
	Definition   string
	Example      string
	Etymology    string
}

// Field returns the current value of the given field.
func (e *Entry) Field(kind FieldKind) string {
	switch kind {
	case FieldPartOfSpeech:
		return e.PartOfSpeech
	case FieldDefinition:
		return e.Definition
	case FieldExample:
		return e.Example
	case FieldEtymology:
		return e.Etymology
	}
	return ""
}

// SetField sets the value of the given field.
func (e *Entry) SetField(kind FieldKind, value string) {
	switch kind {
	case FieldPartOfSpeech:
		e.PartOfSpeech = value
	case FieldDefinition:
		e.Definition = value
	case FieldExample:
		e.Example = value
	case FieldEtymology:
		e.Etymology = value
	}
}

// OutcomeStatus represents the outcome of processing one field of one row
type OutcomeStatus string

const (
	OutcomeFilled  OutcomeStatus = "filled"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// FieldOutcome records the result of one (row, field) attempt.
type FieldOutcome struct {
	Field  FieldKind
	Status OutcomeStatus
	Value  string
	Err    error
}

// RowResult is emitted to the progress sink after each row completes.
type RowResult struct {
	Index    int
	Total    int
	Word     string
	Outcomes []FieldOutcome
}

// RunResult aggregates the outcome counts of a full pipeline run.
type RunResult struct {
	Rows    int
	Filled  int
	Failed  int
	Skipped int
}
