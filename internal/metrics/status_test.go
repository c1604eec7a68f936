package metrics

import (
	"reflect"
	"testing"
)

func TestFlattenOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		buckets map[string]map[string]int
		want    []OutcomeBucket
	}{
		{
			name:    "nil buckets",
			buckets: nil,
			want:    nil,
		},
		{
			name:    "empty buckets",
			buckets: map[string]map[string]int{},
			want:    nil,
		},
		{
			name: "single bucket",
			buckets: map[string]map[string]int{
				"update": {"409": 10},
			},
			want: []OutcomeBucket{
				{Operation: "update", Outcome: "409", Count: 10},
			},
		},
		{
			name: "multiple buckets sorted by count desc",
			buckets: map[string]map[string]int{
				"update": {
					"409": 10,
					"500": 5,
				},
				"read": {
					"decode": 20,
				},
			},
			want: []OutcomeBucket{
				{Operation: "read", Outcome: "decode", Count: 20},
				{Operation: "update", Outcome: "409", Count: 10},
				{Operation: "update", Outcome: "500", Count: 5},
			},
		},
		{
			name: "tie breaking by operation then outcome",
			buckets: map[string]map[string]int{
				"update": {
					"409":       10,
					"transport": 10,
				},
				"read": {
					"decode": 10,
				},
			},
			want: []OutcomeBucket{
				{Operation: "read", Outcome: "decode", Count: 10},
				{Operation: "update", Outcome: "409", Count: 10},
				{Operation: "update", Outcome: "transport", Count: 10},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlattenOutcomes(tt.buckets)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FlattenOutcomes() = %v, want %v", got, tt.want)
			}
		})
	}
}
