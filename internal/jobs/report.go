package jobs

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidateReport checks a report payload at the AI boundary before it is
// persisted as a job result. The payload must be a JSON object with a
// non-empty decisionSummary; the remaining sections are optional but must
// have the right shape when present.
func ValidateReport(raw json.RawMessage) (json.RawMessage, error) {
	var report struct {
		DecisionSummary string `json:"decisionSummary"`
		KeyMetrics      []struct {
			Name           string `json:"name"`
			Value          string `json:"value"`
			Interpretation string `json:"interpretation"`
		} `json:"keyMetrics"`
		Scenarios *struct {
			Optimistic  string `json:"optimistic"`
			Realistic   string `json:"realistic"`
			Pessimistic string `json:"pessimistic"`
		} `json:"scenarios"`
		Recommendations []string `json:"recommendations"`
		Alternatives    []string `json:"alternatives"`
	}

	// Unknown fields are tolerated; only the shape of known sections is
	// enforced.
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, fmt.Errorf("report is not a JSON object: %w", err)
	}
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("report schema mismatch: %w", err)
	}
	if strings.TrimSpace(report.DecisionSummary) == "" {
		return nil, fmt.Errorf("report schema mismatch: decisionSummary is required")
	}
	for i, metric := range report.KeyMetrics {
		if strings.TrimSpace(metric.Name) == "" {
			return nil, fmt.Errorf("report schema mismatch: keyMetrics[%d] missing name", i)
		}
	}
	return raw, nil
}
