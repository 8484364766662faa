package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"postmark/internal/dataset"
	"postmark/internal/review"
)

// NotAnnotated is the label literal emitted for records without a saved
// annotation.
const NotAnnotated = "Not Annotated"

var header = []string{"image_key", "label", "explanation"}

// Write serializes one row per record, in record order, as UTF-8 CSV
// with header image_key,label,explanation. Annotated records emit their
// stored label and explanation verbatim; the rest emit NotAnnotated and
// an empty explanation. It fails only when the destination does.
func Write(w io.Writer, records []dataset.Record, annotations map[string]review.Annotation) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, record := range records {
		row := []string{record.Key, NotAnnotated, ""}
		if annotation, ok := annotations[record.Key]; ok {
			row[1] = string(annotation.Label)
			row[2] = annotation.Explanation
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row for %s: %w", record.Key, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
