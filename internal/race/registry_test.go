package race

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultRoster(t *testing.T) {
	r, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if r.Len() != 16 {
		t.Errorf("expected 16 entrants, got %d", r.Len())
	}

	e, ok := r.ByNumber(9)
	if !ok {
		t.Fatal("entrant 9 not found")
	}
	if e.Name != "ドウデュース" {
		t.Errorf("entrant 9 name = %q", e.Name)
	}
	if e.Draw != 5 {
		t.Errorf("entrant 9 draw = %d", e.Draw)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.json")
	content := `[
		{"number": 2, "draw": 0, "name": "テストホース", "sex_age": "牡4歳", "jockey": "某騎手", "sire": "某種牡馬", "last_race": "某レース1着"},
		{"number": 1, "draw": 1, "name": "アルファ", "sex_age": "牝3歳", "jockey": "誰か", "sire": "何か", "last_race": "どこか2着"}
	]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Sorted by number regardless of file order.
	entrants := r.Entrants()
	if entrants[0].Number != 1 || entrants[1].Number != 2 {
		t.Errorf("entrants not sorted by number: %+v", entrants)
	}
}

func TestLoadRejectsBadRosters(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty list", `[]`},
		{"malformed json", `{not json`},
		{"zero number", `[{"number": 0, "name": "x"}]`},
		{"duplicate number", `[{"number": 1, "name": "a"}, {"number": 1, "name": "b"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "roster.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPromptLine(t *testing.T) {
	e := Entrant{Number: 9, Draw: 5, Name: "ドウデュース", SexAge: "牡5歳", Jockey: "武豊", Sire: "ハーツクライ", LastRace: "天皇賞秋1着"}
	got := e.PromptLine()
	want := "5枠9番 ドウデュース（牡5歳・武豊・ハーツクライ産駒・前走天皇賞秋1着）"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPromptLineUnassignedDraw(t *testing.T) {
	e := Entrant{Number: 3, Draw: DrawUnassigned, Name: "テスト", SexAge: "牡4歳", Jockey: "誰か", Sire: "何か", LastRace: "前走不明"}
	got := e.PromptLine()
	if !strings.Contains(got, "未定枠3番") {
		t.Errorf("unassigned draw not rendered as 未定: %q", got)
	}
}

func TestPromptList(t *testing.T) {
	r, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	list := r.PromptList()
	lines := strings.Split(list, "\n")
	if len(lines) != 16 {
		t.Errorf("expected 16 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "1枠1番 ダノンデサイル") {
		t.Errorf("unexpected first line: %q", lines[0])
	}
}

func TestNumberList(t *testing.T) {
	r, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	list := r.NumberList()
	if !strings.HasPrefix(list, "1ダノンデサイル 2ジャスティンパレス") {
		t.Errorf("unexpected prefix: %q", list)
	}
	if !strings.HasSuffix(list, "16ハヤヤッコ") {
		t.Errorf("unexpected suffix: %q", list)
	}
}

func TestPlaceholder(t *testing.T) {
	e := Placeholder(99)
	if e.Number != 99 {
		t.Errorf("number = %d", e.Number)
	}
	if e.Name == "" || e.Jockey == "" {
		t.Error("placeholder fields must be non-empty so prompts still render")
	}
	if !strings.Contains(e.PromptLine(), "未登録") {
		t.Errorf("placeholder prompt line: %q", e.PromptLine())
	}
}
