package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agastia7500-collab/arima/internal/race"
	"github.com/agastia7500-collab/arima/internal/stats"
	"github.com/agastia7500-collab/arima/pkg/llm"
)

// recordingClient captures every request and answers with the prompt
// length, so chaining can be verified by prompt capture rather than by
// matching opaque content.
type recordingClient struct {
	mu       sync.Mutex
	requests []llm.Request
	fail     map[string]error // system-prompt substring -> error
}

func (r *recordingClient) Complete(_ context.Context, req llm.Request) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	for substr, err := range r.fail {
		if strings.Contains(req.System, substr) {
			return "", err
		}
	}
	return fmt.Sprintf("len:%d", len(req.User)), nil
}

func (r *recordingClient) bySystem(substr string) (llm.Request, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if strings.Contains(req.System, substr) {
			return req, true
		}
	}
	return llm.Request{}, false
}

type stageSink struct {
	mu     sync.Mutex
	order  []string
	stages map[string]string
}

func newStageSink() *stageSink {
	return &stageSink{stages: make(map[string]string)}
}

func (s *stageSink) emit(stage, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = append(s.order, stage)
	s.stages[stage] = text
}

func testContext() RunContext {
	return RunContext{
		RosterText: "1枠1番 テストホース（牡4歳・某騎手・某種牡馬産駒・前走某レース1着）",
		NumberList: "1テストホース 2アルファ",
		StatsText:  stats.NoDataSentinel,
		LookupText: "",
		Entrant:    race.Entrant{Number: 1, Draw: 1, Name: "テストホース", SexAge: "牡4歳", Jockey: "某騎手", Sire: "某種牡馬", LastRace: "某レース1着"},
	}
}

func TestComprehensiveChainsStageOutputs(t *testing.T) {
	client := &recordingClient{}
	sink := newStageSink()

	Comprehensive().Run(context.Background(), client, testContext(), sink.emit)

	require.Equal(t, []string{StageTrend, StageSelection, StageBetting}, sink.order)

	trendReq, ok := client.bySystem("競馬データアナリスト")
	require.Equal(t, true, ok)
	// First stage sees only static context plus the no-data fallbacks.
	assert.Contains(t, trendReq.User, stats.NoDataSentinel)
	assert.Equal(t, 0.5, trendReq.Temperature)
	assert.Equal(t, int64(1000), trendReq.MaxTokens)

	selReq, ok := client.bySystem("競馬予想の専門家")
	require.Equal(t, true, ok)
	assert.Contains(t, selReq.User, sink.stages[StageTrend])
	assert.Contains(t, selReq.System, "テストホース")

	betReq, ok := client.bySystem("馬券アドバイザー")
	require.Equal(t, true, ok)
	assert.Contains(t, betReq.User, sink.stages[StageSelection])
}

func TestComprehensiveStageFailureDegradesInline(t *testing.T) {
	client := &recordingClient{fail: map[string]error{"競馬データアナリスト": errors.New("provider down")}}
	sink := newStageSink()

	Comprehensive().Run(context.Background(), client, testContext(), sink.emit)

	// All three stages still produce output.
	require.Equal(t, 3, len(sink.stages))
	assert.Equal(t, "エラー: provider down", sink.stages[StageTrend])

	// Downstream stage consumed the inline error text.
	selReq, ok := client.bySystem("競馬予想の専門家")
	require.Equal(t, true, ok)
	assert.Contains(t, selReq.User, "エラー: provider down")
}

func TestEvaluationLeavesAreIndependent(t *testing.T) {
	client := &recordingClient{}
	sink := newStageSink()

	Evaluation().Run(context.Background(), client, testContext(), sink.emit)

	require.Equal(t, 4, len(sink.stages))
	// Total always completes last, after all three leaves.
	assert.Equal(t, StageTotal, sink.order[3])

	// Leaf prompts carry only static context, not each other's outputs.
	horseReq, ok := client.bySystem("馬の能力を分析")
	require.Equal(t, true, ok)
	assert.Contains(t, horseReq.User, "馬名:テストホース")
	assert.NotContains(t, horseReq.User, "len:")

	// The join stage consumes exactly the three leaf outputs.
	totalReq, ok := client.bySystem("3分析を統合")
	require.Equal(t, true, ok)
	assert.Contains(t, totalReq.User, sink.stages[StageHorse])
	assert.Contains(t, totalReq.User, sink.stages[StageJockey])
	assert.Contains(t, totalReq.User, sink.stages[StageCourse])
	assert.NotContains(t, totalReq.User, stats.NoDataSentinel)
}

func TestEvaluationWaves(t *testing.T) {
	p := Evaluation()
	require.Equal(t, 2, len(p.waves))
	assert.Equal(t, 3, len(p.waves[0]))
	assert.Equal(t, 1, len(p.waves[1]))
}

func TestSignTheoryUsesStaticEventsWithoutClientCall(t *testing.T) {
	client := &recordingClient{}
	sink := newStageSink()

	SignTheory(StaticEvents("【スポーツ】\n- 背番号17の優勝")).Run(context.Background(), client, testContext(), sink.emit)

	assert.Equal(t, "【スポーツ】\n- 背番号17の優勝", sink.stages[StageEvents])

	// Only signs and bets hit the LLM.
	client.mu.Lock()
	calls := len(client.requests)
	client.mu.Unlock()
	assert.Equal(t, 2, calls)

	signsReq, ok := client.bySystem("数字を抽出")
	require.Equal(t, true, ok)
	assert.Contains(t, signsReq.User, "背番号17")

	betsReq, ok := client.bySystem("サイン理論から買い目")
	require.Equal(t, true, ok)
	assert.Contains(t, betsReq.User, "背番号17")
	assert.Contains(t, betsReq.User, sink.stages[StageSigns])
	assert.Contains(t, betsReq.System, "1テストホース")
}

func TestSignTheoryEventsSourceFailure(t *testing.T) {
	client := &recordingClient{}
	sink := newStageSink()

	failing := eventsFunc(func(context.Context) (string, error) {
		return "", errors.New("source unavailable")
	})

	SignTheory(failing).Run(context.Background(), client, testContext(), sink.emit)

	assert.Equal(t, "エラー: source unavailable", sink.stages[StageEvents])
	// The remaining stages still ran with the error text in context.
	assert.Equal(t, 3, len(sink.stages))
}

type eventsFunc func(ctx context.Context) (string, error)

func (f eventsFunc) Events(ctx context.Context) (string, error) { return f(ctx) }

func TestMissingStatsNeverRaises(t *testing.T) {
	client := &recordingClient{}
	sink := newStageSink()

	rc := testContext()
	rc.StatsText = stats.NoDataSentinel
	rc.LookupText = ""

	for _, p := range []*Pipeline{Comprehensive(), Evaluation()} {
		p.Run(context.Background(), client, rc, sink.emit)
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	for _, req := range client.requests {
		if strings.Contains(req.System, "統合") || strings.Contains(req.System, "専門家") || strings.Contains(req.System, "アドバイザー") {
			continue // join and chained stages see upstream text, not raw stats
		}
		assert.Contains(t, req.User, stats.NoDataSentinel)
	}
}

func TestPlaceholderEntrantRenders(t *testing.T) {
	reg, err := race.Load("")
	require.NoError(t, err)

	rc := EntrantContext(testContext(), reg, 99)
	assert.Equal(t, "未登録", rc.Entrant.Name)

	client := &recordingClient{}
	sink := newStageSink()
	Evaluation().Run(context.Background(), client, rc, sink.emit)

	courseReq, ok := client.bySystem("コース適性")
	require.Equal(t, true, ok)
	assert.Contains(t, courseReq.User, "枠:未定枠")
}

func TestNewValidation(t *testing.T) {
	noop := func(context.Context, llm.Completer, RunContext, map[string]string) (string, error) {
		return "", nil
	}

	_, err := New("p", Stage{Name: "a", Run: noop}, Stage{Name: "b", Needs: []string{"missing"}, Run: noop})
	assert.NotEqual(t, nil, err)

	_, err = New("p", Stage{Name: "a", Run: noop}, Stage{Name: "a", Run: noop})
	assert.NotEqual(t, nil, err)

	_, err = New("p", Stage{Name: "", Run: noop})
	assert.NotEqual(t, nil, err)
}
