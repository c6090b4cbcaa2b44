package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/agastia7500-collab/arima/pkg/llm"
)

// Race-region calendar days, not server-local ones.
var jst = time.FixedZone("JST", 9*60*60)

const dateLayout = "2006-01-02"

// Cache memoizes one broad web-search call per JST calendar day. It is
// session-scoped; the mutex and singleflight group keep the one-attempt
// invariant when concurrent requests share a session.
type Cache struct {
	mu      sync.Mutex
	sf      singleflight.Group
	text    string
	date    string
	lastErr string
	now     func() time.Time
}

func New() *Cache {
	return &Cache{now: time.Now}
}

// NewWithClock is for tests that need to move the calendar day.
func NewWithClock(now func() time.Time) *Cache {
	return &Cache{now: now}
}

// Ensure returns today's lookup text, fetching it at most once per day.
// On failure it clears any cached value so stale text from a prior day is
// never served, records a diagnostic for display, and returns "".
func (c *Cache) Ensure(ctx context.Context, client llm.Completer, query string) string {
	today := c.now().In(jst).Format(dateLayout)

	c.mu.Lock()
	if c.date == today && c.text != "" {
		text := c.text
		c.mu.Unlock()
		return text
	}
	c.mu.Unlock()

	v, _, _ := c.sf.Do(today, func() (interface{}, error) {
		// A concurrent caller may have filled the cache while this one
		// waited on the flight group.
		c.mu.Lock()
		if c.date == today && c.text != "" {
			text := c.text
			c.mu.Unlock()
			return text, nil
		}
		c.mu.Unlock()

		text, err := client.Complete(ctx, llm.Request{
			System:    lookupSystemPrompt,
			User:      query,
			MaxTokens: 2000,
			WebSearch: true,
		})

		c.mu.Lock()
		defer c.mu.Unlock()

		if err != nil || strings.TrimSpace(text) == "" {
			c.text = ""
			c.date = ""
			if err != nil {
				c.lastErr = fmt.Sprintf("最新情報の取得に失敗しました: %v", err)
				slog.Error("daily lookup failed", "date", today, "error", err)
			} else {
				c.lastErr = "最新情報の取得結果が空でした"
				slog.Warn("daily lookup returned empty text", "date", today)
			}
			return "", nil
		}

		c.text = text
		c.date = today
		c.lastErr = ""
		slog.Info("daily lookup refreshed", "date", today, "chars", len(text))
		return text, nil
	})

	return v.(string)
}

// LastError reports the diagnostic from the most recent failed attempt, or
// "" after a success.
func (c *Cache) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Cached exposes the stored text and its date for display.
func (c *Cache) Cached() (text, date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, c.date
}

const lookupSystemPrompt = `あなたは競馬情報のリサーチャーです。Web検索を使って、有馬記念（中山芝2500m）に関する最新情報を収集し、日本語で簡潔にまとめてください。
【収集対象】
- 出走予定馬の最終追い切り・調教評価
- 騎手の乗り替わりや出走回避の情報
- 当日の馬場状態・天候の見込み
- 直前のオッズ動向や注目点
【出力】項目ごとの箇条書きで、推測と事実を区別すること`
