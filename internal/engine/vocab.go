// vocab.go

package engine

// 文本评分使用的词表，全部小写匹配

// evocativeNouns 富有画面感的名词
var evocativeNouns = []string{
	"storm", "thunder", "blade", "phoenix", "dragon", "shadow", "flame",
	"abyss", "tempest", "avalanche", "inferno", "eclipse", "comet",
	"vortex", "titan", "wyvern", "raven", "serpent", "aurora",
	"폭풍", "번개", "칼날", "용", "그림자", "불꽃", "심연",
}

// dramaticOpeners 戏剧性的开场词
var dramaticOpeners = []string{
	"behold", "witness", "tremble", "beware", "fear", "silence",
	"now", "finally", "tonight", "각오해라", "드디어", "보아라",
}

// intensityPhrases 高强度短语
var intensityPhrases = []string{
	"no mercy", "last stand", "final blow", "all or nothing",
	"to the end", "never surrender", "with everything", "one strike",
	"beyond limits", "끝장을 내겠다", "전력을 다해", "마지막 일격",
}

// themeWordSets 主题词集，用于专注度评分
var themeWordSets = map[string][]string{
	"elemental": {
		"fire", "flame", "ice", "frost", "lightning", "thunder", "storm",
		"arcane", "magic", "spell", "mana", "rune", "elemental", "blaze",
		"불", "얼음", "번개", "마법", "주문",
	},
	"melee": {
		"sword", "blade", "axe", "fist", "strike", "slash", "steel",
		"spear", "hammer", "shield", "duel", "parry", "thrust",
		"검", "칼", "주먹", "창",
	},
	"dark": {
		"shadow", "darkness", "void", "curse", "death", "grave", "night",
		"demon", "abyss", "doom", "plague", "dread",
		"어둠", "저주", "죽음", "악마",
	},
	"light": {
		"light", "holy", "radiant", "dawn", "sun", "divine", "blessing",
		"justice", "pure", "sacred", "glory", "halo",
		"빛", "신성", "태양", "정의",
	},
	"nature": {
		"wind", "earth", "forest", "thorn", "root", "river", "mountain",
		"beast", "wolf", "bear", "vine", "stone", "tide",
		"바람", "대지", "숲", "늑대",
	},
}

// actionVerbs 强力动作动词
var actionVerbs = []string{
	"crush", "shatter", "annihilate", "devastate", "obliterate",
	"pierce", "strike", "smash", "unleash", "dominate", "destroy",
	"overwhelm", "vanquish", "conquer", "demolish", "rend",
	"부순다", "꿰뚫는다", "쓸어버린다", "이긴다",
}

// vividAdjectives 生动的形容词
var vividAdjectives = []string{
	"unstoppable", "relentless", "ferocious", "blazing", "merciless",
	"savage", "thunderous", "colossal", "invincible", "untamed",
	"searing", "crushing", "howling", "unbreakable",
	"무자비한", "거침없는", "압도적인",
}

// offensiveWords 进攻性战术词汇
var offensiveWords = []string{
	"attack", "assault", "charge", "rush", "ambush", "onslaught",
	"offensive", "barrage", "flank", "blitz",
	"공격", "돌격", "기습",
}

// defensiveWords 防御性战术词汇
var defensiveWords = []string{
	"defend", "guard", "block", "shield", "counter", "parry",
	"fortify", "endure", "withstand", "deflect",
	"방어", "수비", "반격",
}

// preparationWords 准备/针对弱点的词汇
var preparationWords = []string{
	"prepare", "plan", "strategy", "exploit", "weakness", "opening",
	"predict", "anticipate", "outsmart", "trap", "bait",
	"약점", "전략", "허점",
}

// emotionWords 情绪词汇
var emotionWords = []string{
	"rage", "fury", "passion", "spirit", "courage", "pride",
	"wrath", "resolve", "burning", "heart", "soul", "fearless",
	"분노", "투지", "용기", "영혼",
}

// battleCries 战吼感叹词
var battleCries = []string{
	"charge", "onward", "rise", "awaken", "come", "graaah",
	"hyaa", "uooo", "let's go", "bring it",
	"가자", "간다", "받아라", "덤벼라", "우오오",
}

// decorativeRunes 装饰性符号，按rune匹配
const decorativeRunes = "★☆✦✧♪♬♥♡✨⚡🔥💀⚔🗡🛡⟡†‡※❖〜"

// coachingTips 每个维度对应的提升建议
var coachingTips = map[string]string{
	DimCreativity:      "尝试加入比喻或少见的意象，让文本更有新鲜感",
	DimImpact:          "用感叹式开场或强力收尾，给对手当头一击",
	DimFocus:           "围绕一个主题展开，5到20个词是理想篇幅",
	DimLinguisticPower: "多用强力动词和生动的形容词",
	DimStrategy:        "同时点明攻势与防守，并针对对手的弱点",
	DimEmotionMomentum: "注入情绪词汇或战吼，让气势贯穿全文",
	DimLength:          "把文本控制在30到100个字符的最佳区间",
}
