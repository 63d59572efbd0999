// narrative.go

package engine

import (
	"fmt"
	"sort"
	"strings"
)

// DetailLevel 解说详细程度
type DetailLevel int

const (
	// DetailSummary 简短解说+一条建议
	DetailSummary DetailLevel = iota
	// DetailFull 双方全维度拆解
	DetailFull
)

// detailRevealInterval 每隔多少场触发一次深度解析
const detailRevealInterval = 7

// DetailPolicy 解说详细程度策略: 攻方结算后的总场次每满7场揭示一次深度解析
func DetailPolicy(totalBattlesAfterThisOne int) DetailLevel {
	if totalBattlesAfterThisOne > 0 && totalBattlesAfterThisOne%detailRevealInterval == 0 {
		return DetailFull
	}
	return DetailSummary
}

// 维度展示名
var dimensionLabels = map[string]string{
	DimCreativity:      "创意",
	DimImpact:          "冲击力",
	DimFocus:           "专注度",
	DimLinguisticPower: "语言力量",
	DimStrategy:        "战略",
	DimEmotionMomentum: "情绪动力",
	DimLength:          "篇幅",
}

// dimensionGap 维度差值
type dimensionGap struct {
	name string
	gap  float64
}

// marginTier 胜负差距档位
func marginTier(gap float64) string {
	switch {
	case gap < 20:
		return "险胜"
	case gap < 50:
		return "明显优势"
	default:
		return "压倒性胜利"
	}
}

// BuildSummary 生成单行解说: 胜者、差距档位、最多3个领先维度
func BuildSummary(winnerName string, scoreGap float64, winnerVec, loserVec *ScoreVector) string {
	tier := marginTier(scoreGap)

	gaps := sortedGaps(winnerVec, loserVec)
	var leads []string
	for _, g := range gaps {
		if g.gap <= 0 || len(leads) >= 3 {
			break
		}
		leads = append(leads, dimensionLabels[g.name])
	}

	if len(leads) == 0 {
		return fmt.Sprintf("%s 取得%s。", winnerName, tier)
	}
	return fmt.Sprintf("%s 取得%s，在%s上领先对手。", winnerName, tier, strings.Join(leads, "、"))
}

// BuildDetail 按策略生成解说正文
func BuildDetail(level DetailLevel, winnerName, loserName string, winnerVec, loserVec *ScoreVector) string {
	if level == DetailFull {
		return buildFullBreakdown(winnerName, loserName, winnerVec, loserVec)
	}
	return buildCoachingDetail(winnerName, winnerVec, loserVec)
}

// buildFullBreakdown 双方全维度拆解
func buildFullBreakdown(winnerName, loserName string, winnerVec, loserVec *ScoreVector) string {
	var b strings.Builder
	b.WriteString("【深度解析】\n")
	for _, name := range DimensionNames {
		b.WriteString(fmt.Sprintf("%s: %s %.1f vs %s %.1f\n",
			dimensionLabels[name], winnerName, winnerVec.Dimension(name),
			loserName, loserVec.Dimension(name)))
	}
	b.WriteString(fmt.Sprintf("总分: %s %.2f vs %s %.2f",
		winnerName, winnerVec.Total, loserName, loserVec.Total))
	return b.String()
}

// buildCoachingDetail 简短说明+针对最大差距维度的一条建议
func buildCoachingDetail(winnerName string, winnerVec, loserVec *ScoreVector) string {
	gaps := sortedGaps(winnerVec, loserVec)
	top := gaps[0]

	explanation := fmt.Sprintf("%s 在%s维度拉开了最大差距(%.1f分)。",
		winnerName, dimensionLabels[top.name], top.gap)
	return explanation + "提示: " + coachingTips[top.name]
}

// sortedGaps 胜者减败者的维度差，按差值降序排列，同差值按维度固定顺序
func sortedGaps(winnerVec, loserVec *ScoreVector) []dimensionGap {
	order := make(map[string]int, len(DimensionNames))
	gaps := make([]dimensionGap, 0, len(DimensionNames))
	for i, name := range DimensionNames {
		order[name] = i
		gaps = append(gaps, dimensionGap{
			name: name,
			gap:  round1(winnerVec.Dimension(name) - loserVec.Dimension(name)),
		})
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].gap != gaps[j].gap {
			return gaps[i].gap > gaps[j].gap
		}
		return order[gaps[i].name] < order[gaps[j].name]
	})
	return gaps
}
