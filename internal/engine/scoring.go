// scoring.go

package engine

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// 维度名称
const (
	DimCreativity      = "creativity"
	DimImpact          = "impact"
	DimFocus           = "focus"
	DimLinguisticPower = "linguistic_power"
	DimStrategy        = "strategy"
	DimEmotionMomentum = "emotion_momentum"
	DimLength          = "length"
)

// DimensionNames 维度的固定顺序
var DimensionNames = [7]string{
	DimCreativity, DimImpact, DimFocus, DimLinguisticPower,
	DimStrategy, DimEmotionMomentum, DimLength,
}

// 维度权重，合计1.0
var dimensionWeights = map[string]float64{
	DimCreativity:      0.15,
	DimImpact:          0.15,
	DimFocus:           0.15,
	DimLinguisticPower: 0.15,
	DimStrategy:        0.15,
	DimEmotionMomentum: 0.15,
	DimLength:          0.10,
}

// 每个维度的累积基准分
const dimensionBase = 5.0

// ScoreVector 七维评分向量，各维度及总分均在[0,10]内
type ScoreVector struct {
	Creativity      float64 `json:"creativity"`
	Impact          float64 `json:"impact"`
	Focus           float64 `json:"focus"`
	LinguisticPower float64 `json:"linguistic_power"`
	Strategy        float64 `json:"strategy"`
	EmotionMomentum float64 `json:"emotion_momentum"`
	Length          float64 `json:"length"`
	Total           float64 `json:"total"`
}

// Dimensions 按固定顺序返回七个维度值
func (v *ScoreVector) Dimensions() [7]float64 {
	return [7]float64{
		v.Creativity, v.Impact, v.Focus, v.LinguisticPower,
		v.Strategy, v.EmotionMomentum, v.Length,
	}
}

// Dimension 按名称取维度值
func (v *ScoreVector) Dimension(name string) float64 {
	switch name {
	case DimCreativity:
		return v.Creativity
	case DimImpact:
		return v.Impact
	case DimFocus:
		return v.Focus
	case DimLinguisticPower:
		return v.LinguisticPower
	case DimStrategy:
		return v.Strategy
	case DimEmotionMomentum:
		return v.EmotionMomentum
	case DimLength:
		return v.Length
	}
	return 0
}

// ExcellenceCount 达到卓越线(≥8)的维度数
func (v *ScoreVector) ExcellenceCount() int {
	count := 0
	for _, d := range v.Dimensions() {
		if d >= 8 {
			count++
		}
	}
	return count
}

// Score 对战斗文本进行七维评分。纯函数，相同输入必得相同输出，
// 所有随机性都在战斗结算器中，不在这里。
func Score(text string) ScoreVector {
	lower := strings.ToLower(strings.TrimSpace(text))
	words := splitWords(lower)

	v := ScoreVector{
		Creativity:      scoreCreativity(text, lower, words),
		Impact:          scoreImpact(lower, words),
		Focus:           scoreFocus(lower, words),
		LinguisticPower: scoreLinguisticPower(lower),
		Strategy:        scoreStrategy(lower),
		EmotionMomentum: scoreEmotionMomentum(lower),
		Length:          scoreLength(text),
	}

	// 各维度先保留一位小数再加权
	v.Creativity = round1(clampDim(v.Creativity))
	v.Impact = round1(clampDim(v.Impact))
	v.Focus = round1(clampDim(v.Focus))
	v.LinguisticPower = round1(clampDim(v.LinguisticPower))
	v.Strategy = round1(clampDim(v.Strategy))
	v.EmotionMomentum = round1(clampDim(v.EmotionMomentum))
	v.Length = round1(clampDim(v.Length))

	total := 0.0
	for _, name := range DimensionNames {
		total += v.Dimension(name) * dimensionWeights[name]
	}
	v.Total = round2(total)

	return v
}

// scoreCreativity 创意维度: 字符多样性、装饰符号、修辞模式、画面感名词
func scoreCreativity(raw, lower string, words []string) float64 {
	score := dimensionBase

	// 字符多样性
	runeSet := make(map[rune]struct{})
	runeCount := 0
	for _, r := range lower {
		if unicode.IsSpace(r) {
			continue
		}
		runeSet[r] = struct{}{}
		runeCount++
	}
	if runeCount > 0 {
		diversity := float64(len(runeSet)) / float64(runeCount)
		switch {
		case diversity >= 0.8:
			score += 1.5
		case diversity >= 0.6:
			score += 1.0
		case diversity >= 0.4:
			score += 0.5
		}
	}

	// 装饰符号或emoji
	if containsDecorative(raw) {
		score += 1.0
	}

	// 修辞模式: 所有格比喻(X's Y)或明喻标记
	if strings.Contains(lower, "'s ") || strings.Contains(lower, "의 ") {
		score += 1.0
	} else if strings.Contains(lower, "like a ") || strings.Contains(lower, "like the ") ||
		strings.Contains(lower, "as a ") || strings.Contains(lower, "처럼") {
		score += 1.0
	}

	// 画面感名词，每个+0.5，最多+1.5
	score += countHits(lower, evocativeNouns, 0.5, 1.5)

	return score
}

// scoreImpact 冲击力维度: 戏剧性开场、强力收尾、高强度短语
func scoreImpact(lower string, words []string) float64 {
	score := dimensionBase

	// 戏剧性开场: 感叹开头或开场词领衔
	if strings.HasPrefix(lower, "!") || strings.HasPrefix(lower, "！") {
		score += 1.5
	} else if len(words) > 0 {
		for _, opener := range dramaticOpeners {
			if words[0] == opener {
				score += 1.5
				break
			}
		}
	}

	// 强力收尾: 结尾的强调标点
	trimmed := strings.TrimRight(lower, " ")
	if strings.HasSuffix(trimmed, "!!") || strings.HasSuffix(trimmed, "?!") ||
		strings.HasSuffix(trimmed, "!") || strings.HasSuffix(trimmed, "…") ||
		strings.HasSuffix(trimmed, "...") {
		score += 1.5
	}

	// 高强度短语，每个+1.0，最多+2.0
	score += countHits(lower, intensityPhrases, 1.0, 2.0)

	return score
}

// scoreFocus 专注度维度: 主题集中度、合理篇幅、多句结构
func scoreFocus(lower string, words []string) float64 {
	score := dimensionBase

	// 主题集中度: 在固定主题词集上统计命中
	dominant := 0
	totalHits := 0
	for _, themeWords := range themeWordSets {
		hits := 0
		for _, w := range themeWords {
			if strings.Contains(lower, w) {
				hits++
			}
		}
		totalHits += hits
		if hits > dominant {
			dominant = hits
		}
	}
	if totalHits > 0 {
		concentration := float64(dominant) / float64(totalHits)
		if dominant >= 2 && concentration >= 0.6 {
			score += 2.0
		} else {
			score += 1.0
		}
	}

	// 合理的词数(5-20)
	if len(words) >= 5 && len(words) <= 20 {
		score += 1.5
	}

	// 多句结构
	if countSentences(lower) >= 2 {
		score += 1.0
	}

	return score
}

// scoreLinguisticPower 语言力量维度: 强力动词与生动形容词
func scoreLinguisticPower(lower string) float64 {
	score := dimensionBase
	score += countHits(lower, actionVerbs, 0.75, 3.0)
	score += countHits(lower, vividAdjectives, 0.5, 2.0)
	return score
}

// scoreStrategy 战略维度: 攻防词汇与针对弱点的语言
func scoreStrategy(lower string) float64 {
	score := dimensionBase

	hasOffense := containsAny(lower, offensiveWords)
	hasDefense := containsAny(lower, defensiveWords)
	if hasOffense && hasDefense {
		score += 2.0
	} else if hasOffense || hasDefense {
		score += 1.0
	}

	// 准备/针对弱点的语言，每个+1.0，最多+2.0
	score += countHits(lower, preparationWords, 1.0, 2.0)

	return score
}

// scoreEmotionMomentum 情绪动力维度: 感叹密度、情绪词、战吼
func scoreEmotionMomentum(lower string) float64 {
	score := dimensionBase

	exclaims := strings.Count(lower, "!") + strings.Count(lower, "！")
	switch {
	case exclaims >= 3:
		score += 1.5
	case exclaims >= 1:
		score += 1.0
	}

	score += countHits(lower, emotionWords, 0.5, 1.5)
	score += countHits(lower, battleCries, 1.0, 2.0)

	return score
}

// scoreLength 长度维度: 按字符数分段
func scoreLength(text string) float64 {
	n := utf8.RuneCountInString(text)
	switch {
	case n < 10:
		return 3
	case n < 30:
		return 6
	case n <= 100:
		return 10 // 最佳区间
	case n <= 150:
		return 8
	default:
		return 6
	}
}

// 辅助函数

// splitWords 按非字母数字切分单词
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// countSentences 统计句子数
func countSentences(s string) int {
	count := 0
	for _, r := range s {
		switch r {
		case '.', '!', '?', '！', '？', '。':
			count++
		}
	}
	return count
}

// countHits 统计词表命中并按步进加分，带上限
func countHits(lower string, vocab []string, step, limit float64) float64 {
	bonus := 0.0
	for _, w := range vocab {
		if strings.Contains(lower, w) {
			bonus += step
			if bonus >= limit {
				return limit
			}
		}
	}
	return bonus
}

// containsAny 是否命中词表中任意一项
func containsAny(lower string, vocab []string) bool {
	for _, w := range vocab {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// containsDecorative 是否包含装饰符号或emoji
func containsDecorative(s string) bool {
	for _, r := range s {
		if strings.ContainsRune(decorativeRunes, r) {
			return true
		}
		// emoji与图形符号区段
		if r >= 0x1F300 && r <= 0x1FAFF {
			return true
		}
		if unicode.Is(unicode.So, r) {
			return true
		}
	}
	return false
}

// clampDim 将维度值限制在[0,10]
func clampDim(v float64) float64 {
	return math.Min(10, math.Max(0, v))
}

// round1 保留一位小数
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// round2 保留两位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
