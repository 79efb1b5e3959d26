package main

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// EnrichmentProcessor drives the row-by-row enrichment pipeline: classify
// missing fields, resolve them with bounded retries, checkpoint after every
// row, and report progress.
type EnrichmentProcessor struct {
	resolver   FieldResolver
	config     *Config
	checkpoint *CheckpointWriter
	progress   func(RowResult)
}

// NewEnrichmentProcessor creates a processor with the configured backend.
func NewEnrichmentProcessor(cfg *Config) (*EnrichmentProcessor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	resolver, err := NewFieldResolver(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating %s resolver: %w", cfg.Settings.Backend, err)
	}

	return &EnrichmentProcessor{
		resolver:   resolver,
		config:     cfg,
		checkpoint: NewCheckpointWriter(cfg.Settings.CheckpointPath),
		progress:   logProgress,
	}, nil
}

// SetProgressFunc replaces the default log-based progress sink.
func (p *EnrichmentProcessor) SetProgressFunc(fn func(RowResult)) {
	if fn != nil {
		p.progress = fn
	}
}

// ProcessFile loads a dataset from a file path or URL, resumes from the last
// checkpoint if one exists, runs the pipeline, and writes the final output.
func (p *EnrichmentProcessor) ProcessFile(ctx context.Context, source, outputPath string) (*RunResult, error) {
	dataset, err := LoadDataset(source)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}

	if prior, err := p.checkpoint.Load(); err != nil {
		log.Printf("Warning: ignoring unreadable checkpoint: %v", err)
	} else if prior != nil {
		restored := mergeCheckpoint(dataset, prior)
		log.Printf("Resuming from checkpoint %s: %d fields restored", p.checkpoint.Path(), restored)
	}

	result, err := p.Run(ctx, dataset)
	if err != nil {
		return result, err
	}

	if outputPath == "" {
		outputPath = p.config.Settings.OutputPath
	}
	if outputPath == "" {
		outputPath = defaultOutputPath(source)
	}
	if err := dataset.WriteFile(outputPath); err != nil {
		return result, fmt.Errorf("writing output: %w", err)
	}
	log.Printf("✓ Enriched dataset saved to %s", outputPath)

	if err := p.checkpoint.Clear(); err != nil {
		log.Printf("Warning: could not remove checkpoint: %v", err)
	}

	return result, nil
}

// Run processes every row in sequence order. It mutates the dataset in
// place, checkpoints after each completed row, and returns outcome counts.
// On context cancellation it stops at the next row boundary; everything
// already checkpointed survives.
func (p *EnrichmentProcessor) Run(ctx context.Context, dataset Dataset) (*RunResult, error) {
	result := &RunResult{Rows: len(dataset)}

	log.Printf("Processing %d rows with the %s backend...", len(dataset), p.resolver.Name())

	for i := range dataset {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("run interrupted at row %d: %w", i+1, err)
		}

		entry := &dataset[i]
		outcomes := p.processEntry(ctx, entry)

		if err := p.checkpoint.Save(dataset); err != nil {
			if p.config.Settings.StrictCheckpoint {
				return result, fmt.Errorf("checkpoint save failed at row %d: %w", i+1, err)
			}
			log.Printf("Warning: checkpoint save failed: %v (continuing in memory)", err)
		}

		for _, o := range outcomes {
			switch o.Status {
			case OutcomeFilled:
				result.Filled++
			case OutcomeFailed:
				result.Failed++
			case OutcomeSkipped:
				result.Skipped++
			}
		}

		p.progress(RowResult{
			Index:    i,
			Total:    len(dataset),
			Word:     entry.Word,
			Outcomes: outcomes,
		})
	}

	log.Printf("Enrichment complete: %d rows, %d filled, %d failed, %d skipped",
		result.Rows, result.Filled, result.Failed, result.Skipped)
	return result, nil
}

// processEntry attempts every missing field of one entry. A field whose
// retries are exhausted is recorded as failed and left empty; the remaining
// fields of the row are still attempted.
func (p *EnrichmentProcessor) processEntry(ctx context.Context, entry *Entry) []FieldOutcome {
	missing := make(map[FieldKind]bool)
	for _, kind := range missingFields(entry) {
		missing[kind] = true
	}

	outcomes := make([]FieldOutcome, 0, len(enrichableFields))
	for _, field := range enrichableFields {
		if !missing[field] {
			outcomes = append(outcomes, FieldOutcome{Field: field, Status: OutcomeSkipped})
			continue
		}

		value, err := withRetry(ctx, p.config.Settings.MaxAttempts, p.config.RetryDelay(),
			func() (string, error) {
				return p.resolver.Resolve(ctx, entry, field)
			},
			func(attempt int, err error) {
				log.Printf("  ✗ %s/%s attempt %d: %v", entry.Word, field, attempt, err)
			})
		if err != nil {
			outcomes = append(outcomes, FieldOutcome{Field: field, Status: OutcomeFailed, Err: err})
			continue
		}

		entry.SetField(field, value)
		outcomes = append(outcomes, FieldOutcome{Field: field, Status: OutcomeFilled, Value: value})
	}

	return outcomes
}

// mergeCheckpoint copies filled values from a prior checkpoint into the
// freshly loaded dataset, keyed by word. Values present in the source are
// authoritative and never replaced. Returns the number of fields restored.
func mergeCheckpoint(dataset Dataset, prior Dataset) int {
	byWord := make(map[string]*Entry, len(prior))
	for i := range prior {
		byWord[prior[i].Word] = &prior[i]
	}

	restored := 0
	for i := range dataset {
		saved, ok := byWord[dataset[i].Word]
		if !ok {
			continue
		}
		for _, kind := range enrichableFields {
			if fieldMissing(dataset[i].Field(kind)) && !fieldMissing(saved.Field(kind)) {
				dataset[i].SetField(kind, saved.Field(kind))
				restored++
			}
		}
	}
	return restored
}

// logProgress is the default progress sink.
func logProgress(r RowResult) {
	var marks []string
	for _, o := range r.Outcomes {
		switch o.Status {
		case OutcomeFilled:
			marks = append(marks, string(o.Field))
		case OutcomeFailed:
			marks = append(marks, string(o.Field)+"(failed)")
		}
	}
	summary := "all fields present"
	if len(marks) > 0 {
		summary = strings.Join(marks, ", ")
	}
	log.Printf("[%d/%d] %s: %s", r.Index+1, r.Total, r.Word, summary)
}

// defaultOutputPath derives the output file name from the dataset source.
func defaultOutputPath(source string) string {
	trimmed := strings.TrimSuffix(source, ".csv")
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return "enriched.csv"
	}
	return trimmed + ".enriched.csv"
}
