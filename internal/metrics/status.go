package metrics

import "sort"

// OutcomeBucket is the failure count for one operation/outcome pair.
type OutcomeBucket struct {
	Operation string `json:"operation"`
	Outcome   string `json:"outcome"`
	Count     int    `json:"count"`
}

// FlattenOutcomes converts a nested operation->outcome map into a sorted slice of OutcomeBucket rows.
// Rows are sorted by descending count, then by operation/outcome for stability.
func FlattenOutcomes(buckets map[string]map[string]int) []OutcomeBucket {
	if len(buckets) == 0 {
		return nil
	}
	rows := make([]OutcomeBucket, 0)
	for operation, outcomes := range buckets {
		for outcome, count := range outcomes {
			rows = append(rows, OutcomeBucket{Operation: operation, Outcome: outcome, Count: count})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			if rows[i].Operation == rows[j].Operation {
				return rows[i].Outcome < rows[j].Outcome
			}
			return rows[i].Operation < rows[j].Operation
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}
