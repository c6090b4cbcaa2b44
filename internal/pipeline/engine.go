package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/agastia7500-collab/arima/internal/race"
	"github.com/agastia7500-collab/arima/internal/stats"
	"github.com/agastia7500-collab/arima/pkg/llm"
)

// RunContext is the static context every stage may interpolate: roster
// text, the formatted stats block, today's lookup text and, for the
// single-horse pipeline, the selected entrant.
type RunContext struct {
	RosterText string
	NumberList string
	StatsText  string
	LookupText string
	Entrant    race.Entrant
}

// lookupOrFallback lets stage builders interpolate the lookup text without
// caring whether today's fetch succeeded.
func (rc RunContext) lookupOrFallback() string {
	if rc.LookupText == "" {
		return stats.NoDataSentinel
	}
	return rc.LookupText
}

// StageFunc issues at most one call to the text-generation service and
// returns its output verbatim. Upstream holds the named outputs listed in
// the stage's Needs.
type StageFunc func(ctx context.Context, client llm.Completer, rc RunContext, upstream map[string]string) (string, error)

// Stage is one named step of a pipeline. Needs declares which earlier
// stages' outputs it consumes; stages with disjoint needs may run
// concurrently.
type Stage struct {
	Name  string
	Title string
	Box   string
	Needs []string
	Run   StageFunc
}

// Pipeline is a fixed ordered list of stages implementing one feature.
type Pipeline struct {
	Name   string
	Stages []Stage
	waves  [][]int
}

// New builds a pipeline and resolves its dependency waves. Needs may only
// reference stages declared earlier; anything else is a programming error.
func New(name string, stages ...Stage) (*Pipeline, error) {
	level := make(map[string]int, len(stages))
	var waves [][]int

	for i, st := range stages {
		if st.Name == "" || st.Run == nil {
			return nil, fmt.Errorf("pipeline %s: stage %d is incomplete", name, i)
		}
		if _, dup := level[st.Name]; dup {
			return nil, fmt.Errorf("pipeline %s: duplicate stage %q", name, st.Name)
		}

		lv := 0
		for _, need := range st.Needs {
			nl, ok := level[need]
			if !ok {
				return nil, fmt.Errorf("pipeline %s: stage %q needs unknown upstream %q", name, st.Name, need)
			}
			if nl+1 > lv {
				lv = nl + 1
			}
		}
		level[st.Name] = lv

		for len(waves) <= lv {
			waves = append(waves, nil)
		}
		waves[lv] = append(waves[lv], i)
	}

	return &Pipeline{Name: name, Stages: stages, waves: waves}, nil
}

func mustNew(name string, stages ...Stage) *Pipeline {
	p, err := New(name, stages...)
	if err != nil {
		panic(err)
	}
	return p
}

// StageNames returns the stage names in declaration order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.Stages))
	for i, st := range p.Stages {
		names[i] = st.Name
	}
	return names
}

// Run executes the pipeline wave by wave. Stages within a wave run
// concurrently. A failing stage never aborts the run: its output becomes
// an inline error string and downstream stages consume that text like any
// other upstream output. emit is called once per completed stage and must
// be safe for concurrent use.
func (p *Pipeline) Run(ctx context.Context, client llm.Completer, rc RunContext, emit func(stage, text string)) {
	outputs := make(map[string]string, len(p.Stages))
	var mu sync.Mutex

	for _, wave := range p.waves {
		g := new(errgroup.Group)
		for _, idx := range wave {
			st := p.Stages[idx]

			upstream := make(map[string]string, len(st.Needs))
			mu.Lock()
			for _, need := range st.Needs {
				upstream[need] = outputs[need]
			}
			mu.Unlock()

			g.Go(func() error {
				text, err := st.Run(ctx, client, rc, upstream)
				if err != nil {
					slog.Error("pipeline stage failed", "pipeline", p.Name, "stage", st.Name, "error", err)
					text = "エラー: " + err.Error()
				}
				mu.Lock()
				outputs[st.Name] = text
				mu.Unlock()
				emit(st.Name, text)
				return nil
			})
		}
		g.Wait()
	}
}
