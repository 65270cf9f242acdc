package results

import (
	"fmt"
	"io"
)

// FormatText writes one line per source followed by the totals.
func (s *Summary) FormatText(w io.Writer) error {
	for _, r := range s.Sources {
		status := "Success"
		if r.Error != nil {
			status = fmt.Sprintf("Failed: %v", r.Error)
		}
		_, err := fmt.Fprintf(w, "%s: %s (%d document(s) in %d ms)\n",
			r.Source, status, r.Documents, r.Duration.Milliseconds())
		if err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "--------------------------------------------------------------------------------"); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Processed sources: %d\n", s.ProcessedSources); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Documents:         %d (%.2f/s)\n", s.Documents, s.DocumentsPerSecond()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Succeeded sources: %d (%.1f%%)\n", s.SucceededSources, s.SuccessPercentage()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Failed sources:    %d (%.1f%%)\n", s.FailedSources, s.FailurePercentage()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Duration:          %d ms\n", s.TotalDuration.Milliseconds()); err != nil {
		return err
	}

	return nil
}
