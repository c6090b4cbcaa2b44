package stats

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// NoDataSentinel is interpolated into prompts wherever a stats block would
// go but no workbook could be loaded. Stage builders never special-case it.
const NoDataSentinel = "データなし"

// Recognized sheets, rendered in this order. Unknown sheets are ignored,
// missing ones silently skipped.
var promptSheets = []struct {
	Sheet string
	Title string
}{
	{"年齢", "年齢別期待値"},
	{"枠順", "枠順別期待値"},
	{"騎手", "騎手別期待値（中山2500m）"},
	{"血統", "血統（種牡馬）別期待値"},
	{"前走クラス", "前走クラス別期待値"},
	{"前走レース別", "前走レース別期待値"},
	{"馬体重増減", "馬体重増減別期待値"},
}

// Table holds the raw rows of every sheet in one historical-stats workbook.
type Table struct {
	sheets map[string][][]string
}

func (t *Table) Sheet(name string) ([][]string, bool) {
	rows, ok := t.sheets[name]
	return rows, ok
}

// Loader reads stats workbooks and caches the result per source identity
// for the process lifetime. Load failures are cached too: a broken source
// stays "no data" rather than being re-read on every prompt.
type Loader struct {
	mu    sync.Mutex
	cache map[string]*Table
}

func NewLoader() *Loader {
	return &Loader{cache: make(map[string]*Table)}
}

// LoadFile loads the workbook at path. Any failure degrades to nil, which
// FormatForPrompt renders as the no-data sentinel.
func (l *Loader) LoadFile(path string) *Table {
	key := "file:" + path

	l.mu.Lock()
	if t, seen := l.cache[key]; seen {
		l.mu.Unlock()
		return t
	}
	l.mu.Unlock()

	var t *Table
	f, err := excelize.OpenFile(path)
	if err != nil {
		slog.Warn("stats workbook unavailable, prompts will carry no-data sentinel", "path", path, "error", err)
	} else {
		defer f.Close()
		t = readSheets(f)
	}

	l.mu.Lock()
	l.cache[key] = t
	l.mu.Unlock()
	return t
}

// LoadBytes loads an uploaded workbook. The cache key includes a content
// hash so a different upload under the same name is a distinct identity.
func (l *Loader) LoadBytes(name string, data []byte) *Table {
	sum := sha256.Sum256(data)
	key := "upload:" + name + ":" + hex.EncodeToString(sum[:8])

	l.mu.Lock()
	if t, seen := l.cache[key]; seen {
		l.mu.Unlock()
		return t
	}
	l.mu.Unlock()

	var t *Table
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		slog.Warn("uploaded stats workbook unreadable", "name", name, "error", err)
	} else {
		defer f.Close()
		t = readSheets(f)
	}

	l.mu.Lock()
	l.cache[key] = t
	l.mu.Unlock()
	return t
}

func readSheets(f *excelize.File) *Table {
	sheets := make(map[string][][]string)
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			slog.Warn("skipping unreadable sheet", "sheet", name, "error", err)
			continue
		}
		sheets[name] = rows
	}
	if len(sheets) == 0 {
		return nil
	}
	return &Table{sheets: sheets}
}

// FormatForPrompt renders the recognized sheets as titled plain-text
// blocks. A nil or empty table renders as the literal no-data sentinel so
// callers can interpolate the result unconditionally.
func FormatForPrompt(t *Table) string {
	if t == nil || len(t.sheets) == 0 {
		return NoDataSentinel
	}

	var sb strings.Builder
	for _, s := range promptSheets {
		rows, ok := t.sheets[s.Sheet]
		if !ok || len(rows) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("【%s】\n%s\n\n", s.Title, renderRows(rows)))
	}

	out := strings.TrimRight(sb.String(), "\n")
	if out == "" {
		return NoDataSentinel
	}
	return out
}

// renderRows pads every column to its widest cell so the table survives as
// readable plain text inside a prompt.
func renderRows(rows [][]string) string {
	widths := make([]int, 0)
	for _, row := range rows {
		for i, cell := range row {
			w := utf8.RuneCountInString(cell)
			if i >= len(widths) {
				widths = append(widths, w)
			} else if w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	for ri, row := range rows {
		if ri > 0 {
			sb.WriteByte('\n')
		}
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(cell)
			if i < len(row)-1 {
				sb.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)))
			}
		}
	}
	return sb.String()
}
