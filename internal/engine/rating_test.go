// rating_test.go

package engine

import (
	"math"
	"testing"
)

// TestKFactorTiers K系数按场次分档
func TestKFactorTiers(t *testing.T) {
	p := DefaultRatingParams()

	tests := []struct {
		games int
		want  int
	}{
		{0, 32},
		{29, 32},
		{30, 16},
		{100, 16},
	}

	for _, tt := range tests {
		if got := p.KFactor(tt.games); got != tt.want {
			t.Errorf("KFactor(%d) = %d, 期望 %d", tt.games, got, tt.want)
		}
	}
}

// TestExpectedScore 期望胜率
func TestExpectedScore(t *testing.T) {
	if got := ExpectedScore(1000, 1000); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("同分期望胜率 = %f, 期望 0.5", got)
	}

	higher := ExpectedScore(1400, 1000)
	if higher <= 0.5 || higher >= 1.0 {
		t.Errorf("高分方期望胜率 = %f, 应在(0.5, 1.0)内", higher)
	}

	// 相差400分时期望胜率约为0.909
	if math.Abs(higher-1.0/(1.0+0.1)) > 1e-9 {
		t.Errorf("相差400分的期望胜率 = %f", higher)
	}
}

// TestDeltaEqualRatings 同分对局的评分变化
func TestDeltaEqualRatings(t *testing.T) {
	p := DefaultRatingParams()

	// 新手赢同分对手: round(32 * 0.5) = 16
	if got := p.Delta(1000, 1000, true, 0); got != 16 {
		t.Errorf("新手同分胜利 delta = %d, 期望 16", got)
	}

	// 老手赢同分对手: round(16 * 0.5) = 8
	if got := p.Delta(1000, 1000, true, 50); got != 8 {
		t.Errorf("老手同分胜利 delta = %d, 期望 8", got)
	}
}

// TestDeltaNewPlayerSwingsLarger 新手的评分波动不小于老手
func TestDeltaNewPlayerSwingsLarger(t *testing.T) {
	p := DefaultRatingParams()

	for _, won := range []bool{true, false} {
		newDelta := p.Delta(1000, 1000, won, 10)
		expDelta := p.Delta(1000, 1000, won, 60)
		if math.Abs(float64(newDelta)) < math.Abs(float64(expDelta)) {
			t.Errorf("won=%v: 新手|delta|=%d 应不小于老手|delta|=%d", won, newDelta, expDelta)
		}
	}
}

// TestDeltaMonotonic 击败弱者的收益不超过击败同等对手
func TestDeltaMonotonic(t *testing.T) {
	p := DefaultRatingParams()

	beatWeaker := p.Delta(1200, 1000, true, 0)
	beatEqual := p.Delta(1200, 1200, true, 0)
	if beatWeaker > beatEqual {
		t.Errorf("击败弱者 delta=%d 不应超过击败同等对手 delta=%d", beatWeaker, beatEqual)
	}
}

// TestDeltaSigns 胜者评分不降，败者评分不升
func TestDeltaSigns(t *testing.T) {
	p := DefaultRatingParams()

	ratings := [][2]int{{1000, 1000}, {800, 1400}, {1400, 800}}
	for _, pair := range ratings {
		if d := p.Delta(pair[0], pair[1], true, 0); d < 0 {
			t.Errorf("胜利 delta(%d vs %d) = %d, 不应为负", pair[0], pair[1], d)
		}
		if d := p.Delta(pair[0], pair[1], false, 0); d > 0 {
			t.Errorf("失败 delta(%d vs %d) = %d, 不应为正", pair[0], pair[1], d)
		}
	}
}
