package results

import (
	"time"
)

// SourceResult describes how one input was processed.
type SourceResult struct {
	Source    string
	Documents int
	Duration  time.Duration
	Error     error
}

type SourceResultBuilder struct {
	source    string
	documents int
	duration  time.Duration
	err       error
}

func NewSourceResultBuilder(source string) *SourceResultBuilder {
	return &SourceResultBuilder{
		source: source,
	}
}

func (b *SourceResultBuilder) WithDocuments(count int) *SourceResultBuilder {
	b.documents = count
	return b
}

func (b *SourceResultBuilder) WithDuration(duration time.Duration) *SourceResultBuilder {
	b.duration = duration
	return b
}

func (b *SourceResultBuilder) WithError(err error) *SourceResultBuilder {
	b.err = err
	return b
}

func (b *SourceResultBuilder) Build() SourceResult {
	return SourceResult{
		Source:    b.source,
		Documents: b.documents,
		Duration:  b.duration,
		Error:     b.err,
	}
}

type Summary struct {
	Sources          []SourceResult
	ProcessedSources int
	Documents        int
	SucceededSources int
	FailedSources    int
	TotalDuration    time.Duration
}

func NewSummary(expectedSources int) *Summary {
	return &Summary{
		Sources: make([]SourceResult, 0, expectedSources),
	}
}

func (s *Summary) Add(builder *SourceResultBuilder) {
	result := builder.Build()

	s.Sources = append(s.Sources, result)
	s.ProcessedSources++
	s.Documents += result.Documents

	if result.Error != nil {
		s.FailedSources++
	} else {
		s.SucceededSources++
	}
}

func (s *Summary) SetTotalDuration(duration time.Duration) {
	s.TotalDuration = duration
}

// FirstError returns the error of the first failed source, if any.
func (s *Summary) FirstError() error {
	for _, r := range s.Sources {
		if r.Error != nil {
			return r.Error
		}
	}
	return nil
}

func (s *Summary) DocumentsPerSecond() float64 {
	if s.TotalDuration == 0 {
		return 0
	}
	return float64(s.Documents) / s.TotalDuration.Seconds()
}

func (s *Summary) SuccessPercentage() float64 {
	if s.ProcessedSources == 0 {
		return 0
	}
	return (float64(s.SucceededSources) / float64(s.ProcessedSources)) * 100
}

func (s *Summary) FailurePercentage() float64 {
	if s.ProcessedSources == 0 {
		return 0
	}
	return (float64(s.FailedSources) / float64(s.ProcessedSources)) * 100
}
