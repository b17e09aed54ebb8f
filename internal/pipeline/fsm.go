package pipeline

import (
	"fmt"

	"github.com/veritext/veritext/internal/models"
)

// transitions is the exhaustive state table for the processing pipeline.
// PROCESSING is deliberately absent from any source of a PROCESSING edge: a
// run already in flight cannot be restarted. COMPLETED and ERROR re-enter the
// pipeline through the reprocess edge, and the intermediate stage statuses
// may re-enter too so a crashed run can be resumed from the top.
var transitions = map[models.EssayStatus][]models.EssayStatus{
	models.StatusUploaded:          {models.StatusProcessing, models.StatusError},
	models.StatusProcessing:        {models.StatusGrammarChecked, models.StatusError},
	models.StatusGrammarChecked:    {models.StatusPlagiarismChecked, models.StatusProcessing, models.StatusError},
	models.StatusPlagiarismChecked: {models.StatusCompleted, models.StatusProcessing, models.StatusError},
	models.StatusCompleted:         {models.StatusProcessing},
	models.StatusError:             {models.StatusProcessing},
}

// canTransition reports whether the edge from → to exists in the state table.
func canTransition(from, to models.EssayStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// invalidTransition is returned when a caller requests an edge the table does
// not contain. It indicates a programming error, not recoverable input.
func invalidTransition(from, to models.EssayStatus) error {
	return fmt.Errorf("pipeline: invalid transition %s -> %s", from, to)
}
