// scoring_test.go

package engine

import (
	"strings"
	"testing"
)

// TestScoreDeterministic 相同文本两次评分必须得到完全相同的向量
func TestScoreDeterministic(t *testing.T) {
	texts := []string{
		"",
		"이긴다!",
		"Behold! The dragon's blazing storm strikes!",
		"I will crush and shatter your guard with relentless fury!",
		"★ 무자비한 폭풍이 온다 ★",
	}

	for _, text := range texts {
		first := Score(text)
		second := Score(text)
		if first != second {
			t.Errorf("文本 %q 两次评分不一致: %+v vs %+v", text, first, second)
		}
	}
}

// TestScoreBounds 任意输入下各维度与总分都必须在[0,10]内
func TestScoreBounds(t *testing.T) {
	texts := []string{
		"",
		"a",
		"hi there",
		"이긴다!",
		strings.Repeat("z", 500),
		strings.Repeat("crush shatter annihilate devastate ", 20),
		"🔥🔥🔥⚡⚡⚡💀💀💀",
		"Behold! Witness the unstoppable tempest! No mercy! Rise! Charge! " +
			"I will crush, shatter and annihilate your guard, exploit every weakness with relentless fury!",
		"fire flame ice frost lightning thunder storm arcane magic spell",
	}

	for _, text := range texts {
		v := Score(text)
		for i, d := range v.Dimensions() {
			if d < 0 || d > 10 {
				t.Errorf("文本 %q 的维度 %s 超出范围: %.1f", text, DimensionNames[i], d)
			}
		}
		if v.Total < 0 || v.Total > 10 {
			t.Errorf("文本 %q 的总分超出范围: %.2f", text, v.Total)
		}
	}
}

// TestScoreLengthBands 长度维度的分段边界
func TestScoreLengthBands(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"韩文短文本4字符", "이긴다!", 3},
		{"9字符", strings.Repeat("a", 9), 3},
		{"10字符", strings.Repeat("a", 10), 6},
		{"29字符", strings.Repeat("a", 29), 6},
		{"30字符", strings.Repeat("a", 30), 10},
		{"50字符无特殊标记", strings.Repeat("a", 50), 10},
		{"100字符", strings.Repeat("a", 100), 10},
		{"101字符", strings.Repeat("a", 101), 8},
		{"150字符", strings.Repeat("a", 150), 8},
		{"151字符", strings.Repeat("a", 151), 6},
	}

	for _, tt := range tests {
		v := Score(tt.text)
		if v.Length != tt.want {
			t.Errorf("%s: 长度维度 = %.1f, 期望 %.1f", tt.name, v.Length, tt.want)
		}
	}
}

// TestScoreRichTextBeatsPlain 精心构造的文本总分应高于平淡文本
func TestScoreRichTextBeatsPlain(t *testing.T) {
	rich := Score("Behold! The dragon's blazing storm strikes! I will crush your guard and exploit every weakness with relentless fury!")
	plain := Score("hello")

	if rich.Total <= plain.Total {
		t.Errorf("丰富文本总分 %.2f 应高于平淡文本 %.2f", rich.Total, plain.Total)
	}
}

// TestExcellenceCount 卓越维度计数
func TestExcellenceCount(t *testing.T) {
	v := ScoreVector{
		Creativity:      8.0,
		Impact:          9.5,
		Focus:           7.9,
		LinguisticPower: 8.1,
		Strategy:        5.0,
		EmotionMomentum: 10.0,
		Length:          3.0,
	}
	if got := v.ExcellenceCount(); got != 4 {
		t.Errorf("ExcellenceCount = %d, 期望 4", got)
	}
}

// TestScoreEmptyText 空文本仍应得到合法向量
func TestScoreEmptyText(t *testing.T) {
	v := Score("")
	if v.Length != 3 {
		t.Errorf("空文本长度维度 = %.1f, 期望 3", v.Length)
	}
	if v.Total <= 0 {
		t.Errorf("空文本总分 = %.2f, 应大于0(各维度有基准分)", v.Total)
	}
}
