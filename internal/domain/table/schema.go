package table

import "fmt"

// Schema declares the column set a table kind must carry. Required
// columns are validated once at ingestion rather than checked piecemeal
// through the pipeline.
type Schema struct {
	Required []string
	Optional []string
}

// TriggerSchema is the column set every per-detector trigger group must
// provide for ranking derivation and duration binning.
var TriggerSchema = Schema{
	Required: []string{ColSNR, ColChisq, ColChisqDOF, ColTemplateDuration},
}

// Validate reports whether t carries every required column.
func (s Schema) Validate(t *Table) error {
	for _, name := range s.Required {
		if _, ok := t.Column(name); !ok {
			return fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	return nil
}
