package suite

import (
	"testing"

	"github.com/torosent/glt/internal/scenario"
)

func describe(plan []Step) []string {
	out := make([]string, len(plan))
	for i, s := range plan {
		d := s.Kind.Slug()
		if s.Reset {
			d = "reset+" + d
		}
		if !s.Report {
			d += "(populate)"
		}
		out[i] = d
	}
	return out
}

func TestNewPlan(t *testing.T) {
	tests := []struct {
		name string
		opts PlanOptions
		want []string
	}{
		{
			name: "default suite",
			opts: PlanOptions{},
			want: []string{
				"reset+writes",
				"reset+build(populate)",
				"crawl",
				"read",
				"crawl-and-update",
				"contentious-update",
			},
		},
		{
			name: "subset keeps canonical order and gets populated",
			opts: PlanOptions{Selected: []scenario.Kind{scenario.ContentiousUpdate, scenario.Read}},
			want: []string{
				"reset+build(populate)",
				"read",
				"contentious-update",
			},
		},
		{
			name: "explicit build is reported",
			opts: PlanOptions{Selected: []scenario.Kind{scenario.Crawl, scenario.Build}},
			want: []string{
				"reset+build",
				"crawl",
			},
		},
		{
			name: "writes only",
			opts: PlanOptions{Selected: []scenario.Kind{scenario.Write}},
			want: []string{"reset+writes"},
		},
		{
			name: "skip setup",
			opts: PlanOptions{SkipSetup: true},
			want: []string{
				"writes",
				"build(populate)",
				"crawl",
				"read",
				"crawl-and-update",
				"contentious-update",
			},
		},
		{
			name: "skip setup without build",
			opts: PlanOptions{SkipSetup: true, Selected: []scenario.Kind{scenario.Crawl}},
			want: []string{"crawl"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describe(NewPlan(tt.opts))
			if len(got) != len(tt.want) {
				t.Fatalf("plan = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("plan = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestNewPlanContentiousOverride(t *testing.T) {
	plan := NewPlan(PlanOptions{
		Selected:               []scenario.Kind{scenario.Read, scenario.ContentiousUpdate},
		Concurrency:            20,
		Number:                 50,
		ContentiousConcurrency: 5,
		ContentiousNumber:      20,
	})
	for _, s := range plan {
		wantC, wantN := 20, 50
		if s.Kind == scenario.ContentiousUpdate {
			wantC, wantN = 5, 20
		}
		if s.Concurrency != wantC || s.Number != wantN {
			t.Errorf("%s: concurrency=%d number=%d, want %d/%d", s.Kind, s.Concurrency, s.Number, wantC, wantN)
		}
	}
}

func TestNewPlanContentiousWithoutOverride(t *testing.T) {
	plan := NewPlan(PlanOptions{
		Selected:    []scenario.Kind{scenario.ContentiousUpdate},
		SkipSetup:   true,
		Concurrency: 3,
		Number:      4,
	})
	if len(plan) != 1 || plan[0].Concurrency != 3 || plan[0].Number != 4 {
		t.Fatalf("unexpected plan %+v", plan)
	}
}
