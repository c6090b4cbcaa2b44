package pipeline

import "fmt"

// Prompt text for every stage. System prompts describe the role and a
// strict output-format contract; user messages interpolate the static
// context and upstream stage outputs. Stage outputs are used verbatim, no
// parsing or format validation.

const trendSystemPrompt = `あなたは競馬データアナリストです。過去10年のデータから有馬記念で好走しやすい条件を分析してください。
【出力】簡潔に箇条書きで
- 年齢: 好走しやすい年齢
- 枠順: 有利な枠
- 騎手: 期待値の高い騎手TOP3
- 血統: 好走血統TOP3
- 前走: 好走しやすい前走レース
- 馬体重: 好走しやすい増減幅`

const selectionSystemFmt = `あなたは競馬予想の専門家です。データ分析結果を踏まえ、推奨馬を選定してください。
【出走馬】
%s
【出力形式】
◎本命: [馬番]馬名 - 選定理由
○対抗: [馬番]馬名 - 選定理由
▲単穴: [馬番]馬名 - 選定理由
☆穴馬: [馬番]馬名 - 選定理由
✕危険馬: [馬番]馬名 - 過信禁物な理由`

const bettingSystemPrompt = `馬券アドバイザーとして買い目を提案してください。
【出力形式】
■ 本線（堅実）馬連・ワイド
■ 勝負（中配当）三連複・三連単
■ 穴狙い ワイド・三連複
■ 投資配分`

const horseSystemPrompt = `馬の能力を分析。【出力】■ 評価: ★5段階 ■ 血統評価(2-3文) ■ 年齢評価(2-3文) ■ 能力・実績(2-3文)`

const jockeySystemPrompt = `騎手を分析。【出力】■ 評価: ★5段階 ■ コース成績(2-3文) ■ 騎乗スタイル(2-3文) ■ 馬との相性(2-3文)`

const courseSystemPrompt = `コース適性を分析。【出力】■ 評価: ★5段階 ■ 枠順評価(2-3文) ■ コース適性(2-3文) ■ 展開予想(2-3文)`

const totalSystemPrompt = `3分析を統合して総合評価。【出力】■ 総合評価: ★5段階 ■ 期待度: A-E ■ 総評(4-5文) ■ 馬券的妙味(単勝/連軸/穴馬) ■ 一言`

const signsSystemPrompt = `出来事から馬番に使える数字を抽出。【出力】表形式で 出来事|数字|意味 ※16以下優先`

const betsSystemFmt = `サイン理論から買い目を導出。
【馬番】%s
【出力】■ 最重要サイン→馬番 ■ 準重要サイン→馬番 ■ 買い目(馬連/三連複/ワイド) ■ 大穴予想
⚠️エンターテイメントです！`

// LookupQuery builds the fixed multi-part query for the daily broad
// lookup: what to gather for this field under these race conditions.
func LookupQuery(rosterText string) string {
	return fmt.Sprintf(`有馬記念（中山芝2500m・グランプリ）の直前情報を調べてください。
【出走予定馬】
%s
【調べる内容】
- 各馬の最終追い切りと調教評価
- 騎手の乗り替わり・出走回避
- 馬場状態と天候の見込み
- オッズ動向と直前の注目点`, rosterText)
}
