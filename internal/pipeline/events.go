package pipeline

import "context"

// EventsSource supplies the sign-theory events text. The default is a
// curated static block; an LLM-backed source can be swapped in without
// touching the pipeline.
type EventsSource interface {
	Events(ctx context.Context) (string, error)
}

// StaticEvents serves a fixed events block.
type StaticEvents string

func (s StaticEvents) Events(_ context.Context) (string, error) {
	return string(s), nil
}

// Events2025 is the curated list of 2025 happenings the sign stages mine
// for numeric cues.
const Events2025 = StaticEvents(`【スポーツ】
- 大谷翔平がワールドシリーズ連覇、シリーズMVP（背番号17）
- 佐々木朗希がメジャー1年目で新人王争い（背番号11）
- 大の里が横綱昇進、年間最多勝（初場所13勝）
【政治】
- 高市早苗が第104代内閣総理大臣に就任（10月21日）
- 参議院選挙で与党過半数割れ（7月20日投開票）
【芸能】
- 国宝が実写邦画の興行収入歴代1位を更新（公開6月6日）
- Mrs. GREEN APPLEがドームツアー5大ドーム完走
【社会現象】
- 大阪・関西万博が閉幕、来場者2500万人超（10月13日閉幕）
- 令和7年・昭和100年の節目の年`)
