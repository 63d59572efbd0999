// rating.go

package engine

import (
	"math"
)

// RatingParams ELO评分更新参数
type RatingParams struct {
	// NewPlayerGameThreshold 低于该场次使用KNew
	NewPlayerGameThreshold int
	// KNew 新手K系数
	KNew int
	// KExperienced 老手K系数
	KExperienced int
}

// DefaultRatingParams 默认评分参数
func DefaultRatingParams() RatingParams {
	return RatingParams{
		NewPlayerGameThreshold: 30,
		KNew:                   32,
		KExperienced:           16,
	}
}

// ExpectedScore 基于双方评分的期望胜率
func ExpectedScore(selfRating, opponentRating int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(opponentRating-selfRating)/400.0))
}

// KFactor 按场次取K系数
func (p RatingParams) KFactor(gamesPlayed int) int {
	if gamesPlayed < p.NewPlayerGameThreshold {
		return p.KNew
	}
	return p.KExperienced
}

// Delta 单侧评分变化量。每场战斗对每一方各调用一次，
// 传入该方自己的场次数与对手的赛前评分，双方K系数可以不同。
func (p RatingParams) Delta(selfRating, opponentRating int, won bool, gamesPlayed int) int {
	k := float64(p.KFactor(gamesPlayed))
	expected := ExpectedScore(selfRating, opponentRating)

	actual := 0.0
	if won {
		actual = 1.0
	}

	return int(math.Round(k * (actual - expected)))
}
