package race

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// DrawUnassigned marks an entrant whose post draw has not happened yet.
const DrawUnassigned = 0

const unassignedLabel = "未定"

// Entrant is one race participant. The registry is read-only after load;
// yearly roster changes go through the JSON file, not the code.
type Entrant struct {
	Number   int    `json:"number"`
	Draw     int    `json:"draw"`
	Name     string `json:"name"`
	SexAge   string `json:"sex_age"`
	Jockey   string `json:"jockey"`
	Sire     string `json:"sire"`
	LastRace string `json:"last_race"`
}

// DrawLabel renders the post draw, or 未定 before the draw.
func (e Entrant) DrawLabel() string {
	if e.Draw == DrawUnassigned {
		return unassignedLabel
	}
	return fmt.Sprintf("%d", e.Draw)
}

// PromptLine renders one entrant the way every prompt expects it:
// 1枠1番 ダノンデサイル（牡3歳・横山典弘・キタサンブラック産駒・前走菊花賞1着）
func (e Entrant) PromptLine() string {
	return fmt.Sprintf("%s枠%d番 %s（%s・%s・%s産駒・前走%s）",
		e.DrawLabel(), e.Number, e.Name, e.SexAge, e.Jockey, e.Sire, e.LastRace)
}

//go:embed roster.json
var defaultRoster []byte

type Registry struct {
	entrants []Entrant
	byNumber map[int]Entrant
}

// Load reads the roster from path, or the embedded default when path is
// empty. The returned registry never changes afterwards.
func Load(path string) (*Registry, error) {
	raw := defaultRoster
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading roster file: %w", err)
		}
		raw = b
	}

	var entrants []Entrant
	if err := json.Unmarshal(raw, &entrants); err != nil {
		return nil, fmt.Errorf("parsing roster: %w", err)
	}
	if len(entrants) == 0 {
		return nil, fmt.Errorf("roster is empty")
	}

	sort.Slice(entrants, func(i, j int) bool { return entrants[i].Number < entrants[j].Number })

	byNumber := make(map[int]Entrant, len(entrants))
	for _, e := range entrants {
		if e.Number <= 0 {
			return nil, fmt.Errorf("roster entry %q has invalid number %d", e.Name, e.Number)
		}
		if _, dup := byNumber[e.Number]; dup {
			return nil, fmt.Errorf("roster has duplicate number %d", e.Number)
		}
		byNumber[e.Number] = e
	}

	return &Registry{entrants: entrants, byNumber: byNumber}, nil
}

func (r *Registry) Entrants() []Entrant {
	out := make([]Entrant, len(r.entrants))
	copy(out, r.entrants)
	return out
}

func (r *Registry) ByNumber(n int) (Entrant, bool) {
	e, ok := r.byNumber[n]
	return e, ok
}

func (r *Registry) Len() int {
	return len(r.entrants)
}

// PromptList renders the full field, one entrant per line.
func (r *Registry) PromptList() string {
	lines := make([]string, len(r.entrants))
	for i, e := range r.entrants {
		lines[i] = e.PromptLine()
	}
	return strings.Join(lines, "\n")
}

// NumberList renders the compact 馬番 map used by the sign-theory stages:
// 1ダノンデサイル 2ジャスティンパレス ...
func (r *Registry) NumberList() string {
	parts := make([]string, len(r.entrants))
	for i, e := range r.entrants {
		parts[i] = fmt.Sprintf("%d%s", e.Number, e.Name)
	}
	return strings.Join(parts, " ")
}

// Placeholder returns a stand-in entrant for a number that is not in the
// roster, so selection of an unknown number still renders.
func Placeholder(n int) Entrant {
	return Entrant{
		Number:   n,
		Draw:     DrawUnassigned,
		Name:     "未登録",
		SexAge:   unassignedLabel,
		Jockey:   unassignedLabel,
		Sire:     unassignedLabel,
		LastRace: unassignedLabel,
	}
}
