package pipeline

import (
	"context"
	"fmt"

	"github.com/agastia7500-collab/arima/internal/race"
	"github.com/agastia7500-collab/arima/pkg/llm"
)

// Pipeline and stage names double as result-store keys.
const (
	NameComprehensive = "comprehensive"
	NameEvaluation    = "evaluation"
	NameSign          = "sign"

	StageTrend     = "trend"
	StageSelection = "selection"
	StageBetting   = "betting"

	StageHorse  = "horse"
	StageJockey = "jockey"
	StageCourse = "course"
	StageTotal  = "total"

	StageEvents = "events"
	StageSigns  = "signs"
	StageBets   = "bets"
)

// Comprehensive is the three-step prediction chain: trend analysis feeds
// horse selection, which feeds the betting suggestion.
func Comprehensive() *Pipeline {
	return mustNew(NameComprehensive,
		Stage{
			Name:  StageTrend,
			Title: "📊 データ傾向",
			Box:   "box-trend",
			Run: func(ctx context.Context, client llm.Completer, rc RunContext, _ map[string]string) (string, error) {
				return client.Complete(ctx, llm.Request{
					System:      trendSystemPrompt,
					User:        fmt.Sprintf("データ分析:\n%s\n【最新情報】\n%s", rc.StatsText, rc.lookupOrFallback()),
					Temperature: 0.5,
					MaxTokens:   1000,
				})
			},
		},
		Stage{
			Name:  StageSelection,
			Title: "🏇 推奨馬",
			Box:   "box-selection",
			Needs: []string{StageTrend},
			Run: func(ctx context.Context, client llm.Completer, rc RunContext, up map[string]string) (string, error) {
				return client.Complete(ctx, llm.Request{
					System:      fmt.Sprintf(selectionSystemFmt, rc.RosterText),
					User:        fmt.Sprintf("【分析結果】\n%s", up[StageTrend]),
					Temperature: 0.7,
					MaxTokens:   1500,
				})
			},
		},
		Stage{
			Name:  StageBetting,
			Title: "💰 買い目",
			Box:   "box-betting",
			Needs: []string{StageSelection},
			Run: func(ctx context.Context, client llm.Completer, rc RunContext, up map[string]string) (string, error) {
				return client.Complete(ctx, llm.Request{
					System:      bettingSystemPrompt,
					User:        fmt.Sprintf("予想:\n%s", up[StageSelection]),
					Temperature: 0.6,
					MaxTokens:   1000,
				})
			},
		},
	)
}

// Evaluation scores one entrant on three independent axes, then joins
// them. The three leaf stages share no data and run concurrently; the
// total stage consumes only their outputs, never the raw context.
func Evaluation() *Pipeline {
	return mustNew(NameEvaluation,
		Stage{
			Name:  StageHorse,
			Title: "🐴 馬分析",
			Box:   "box-horse",
			Run: func(ctx context.Context, client llm.Completer, rc RunContext, _ map[string]string) (string, error) {
				e := rc.Entrant
				return client.Complete(ctx, llm.Request{
					System:      horseSystemPrompt,
					User:        fmt.Sprintf("馬名:%s 性齢:%s 血統:%s 前走:%s\n%s\n【最新情報】\n%s", e.Name, e.SexAge, e.Sire, e.LastRace, rc.StatsText, rc.lookupOrFallback()),
					Temperature: 0.6,
					MaxTokens:   800,
				})
			},
		},
		Stage{
			Name:  StageJockey,
			Title: "🏇 騎手分析",
			Box:   "box-jockey",
			Run: func(ctx context.Context, client llm.Completer, rc RunContext, _ map[string]string) (string, error) {
				e := rc.Entrant
				return client.Complete(ctx, llm.Request{
					System:      jockeySystemPrompt,
					User:        fmt.Sprintf("騎手:%s 騎乗馬:%s\n%s\n【最新情報】\n%s", e.Jockey, e.Name, rc.StatsText, rc.lookupOrFallback()),
					Temperature: 0.6,
					MaxTokens:   800,
				})
			},
		},
		Stage{
			Name:  StageCourse,
			Title: "🏟️ コース分析",
			Box:   "box-course",
			Run: func(ctx context.Context, client llm.Completer, rc RunContext, _ map[string]string) (string, error) {
				e := rc.Entrant
				return client.Complete(ctx, llm.Request{
					System:      courseSystemPrompt,
					User:        fmt.Sprintf("馬名:%s 枠:%s枠 前走:%s\n%s\n【最新情報】\n%s", e.Name, e.DrawLabel(), e.LastRace, rc.StatsText, rc.lookupOrFallback()),
					Temperature: 0.6,
					MaxTokens:   800,
				})
			},
		},
		Stage{
			Name:  StageTotal,
			Title: "📊 総合評価",
			Box:   "box-total",
			Needs: []string{StageHorse, StageJockey, StageCourse},
			Run: func(ctx context.Context, client llm.Completer, rc RunContext, up map[string]string) (string, error) {
				return client.Complete(ctx, llm.Request{
					System:      totalSystemPrompt,
					User:        fmt.Sprintf("【%s】\n馬分析:%s\n騎手分析:%s\nコース分析:%s", rc.Entrant.Name, up[StageHorse], up[StageJockey], up[StageCourse]),
					Temperature: 0.6,
					MaxTokens:   800,
				})
			},
		},
	)
}

// SignTheory mines the curated events list for numeric coincidences. The
// events stage reads its source directly, no LLM call.
func SignTheory(events EventsSource) *Pipeline {
	return mustNew(NameSign,
		Stage{
			Name:  StageEvents,
			Title: "📅 出来事一覧",
			Box:   "box-events",
			Run: func(ctx context.Context, _ llm.Completer, _ RunContext, _ map[string]string) (string, error) {
				return events.Events(ctx)
			},
		},
		Stage{
			Name:  StageSigns,
			Title: "🔢 抽出数字",
			Box:   "box-signs",
			Needs: []string{StageEvents},
			Run: func(ctx context.Context, client llm.Completer, rc RunContext, up map[string]string) (string, error) {
				return client.Complete(ctx, llm.Request{
					System:      signsSystemPrompt,
					User:        fmt.Sprintf("出来事:\n%s", up[StageEvents]),
					Temperature: 0.7,
					MaxTokens:   1000,
				})
			},
		},
		Stage{
			Name:  StageBets,
			Title: "💰 サイン理論買い目",
			Box:   "box-bets",
			Needs: []string{StageEvents, StageSigns},
			Run: func(ctx context.Context, client llm.Completer, rc RunContext, up map[string]string) (string, error) {
				return client.Complete(ctx, llm.Request{
					System:      fmt.Sprintf(betsSystemFmt, rc.NumberList),
					User:        fmt.Sprintf("出来事:\n%s\n数字:\n%s", up[StageEvents], up[StageSigns]),
					Temperature: 0.9,
					MaxTokens:   1000,
				})
			},
		},
	)
}

// EntrantContext stamps the selected entrant into a run context, falling
// back to a placeholder when the number is not in the registry so stage
// construction never breaks on an out-of-range selection.
func EntrantContext(rc RunContext, reg *race.Registry, number int) RunContext {
	e, ok := reg.ByNumber(number)
	if !ok {
		e = race.Placeholder(number)
	}
	rc.Entrant = e
	return rc
}
