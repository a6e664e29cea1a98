package sentiment

// Word polarities on the [-1, 1] scale. The list leans towards the vocabulary of
// company and market news.
var defaultLexicon = map[string]float64{
	// positive
	"good": 0.7, "great": 0.8, "excellent": 1.0, "amazing": 0.6, "awesome": 1.0,
	"best": 1.0, "better": 0.5, "strong": 0.43, "stronger": 0.5, "strongest": 0.6,
	"positive": 0.23, "gain": 0.4, "gains": 0.4, "gained": 0.4, "growth": 0.5,
	"grow": 0.4, "grows": 0.4, "growing": 0.4, "surge": 0.6, "surges": 0.6,
	"surged": 0.6, "soar": 0.7, "soars": 0.7, "soared": 0.7, "rally": 0.5,
	"rallies": 0.5, "rallied": 0.5, "record": 0.3, "beat": 0.4, "beats": 0.4,
	"upgrade": 0.5, "upgraded": 0.5, "bullish": 0.6, "profit": 0.4, "profits": 0.4,
	"profitable": 0.5, "win": 0.8, "wins": 0.8, "success": 0.3, "successful": 0.75,
	"innovative": 0.5, "innovation": 0.4, "impressive": 1.0, "love": 0.5,
	"loved": 0.7, "popular": 0.6, "boost": 0.4, "boosts": 0.4, "boosted": 0.4,
	"improve": 0.4, "improved": 0.4, "improves": 0.4, "outperform": 0.5,
	"outperforms": 0.5, "optimistic": 0.5, "opportunity": 0.3, "robust": 0.4,
	"solid": 0.3, "happy": 0.8, "exciting": 0.3, "excited": 0.38, "powerful": 0.3,
	"launch": 0.1, "launches": 0.1, "up": 0.1, "higher": 0.25, "high": 0.16,
	"rise": 0.3, "rises": 0.3, "rising": 0.3, "rose": 0.3, "jump": 0.3,
	"jumps": 0.3, "jumped": 0.3, "top": 0.5, "leading": 0.3, "leader": 0.3,
	"easy": 0.43, "free": 0.4, "nice": 0.6, "perfect": 1.0, "fantastic": 0.4,
	"wonderful": 1.0, "recover": 0.3, "recovery": 0.3, "rebound": 0.3,
	"dividend": 0.1, "buy": 0.2, "upside": 0.4, "confident": 0.5, "confidence": 0.4,

	// negative
	"bad": -0.7, "worse": -0.4, "worst": -1.0, "poor": -0.4, "weak": -0.38,
	"weaker": -0.4, "weakness": -0.4, "negative": -0.3, "loss": -0.4,
	"losses": -0.4, "lose": -0.4, "loses": -0.4, "lost": -0.4, "decline": -0.4,
	"declines": -0.4, "declined": -0.4, "drop": -0.4, "drops": -0.4,
	"dropped": -0.4, "fall": -0.4, "falls": -0.4, "fell": -0.4, "falling": -0.4,
	"plunge": -0.7, "plunges": -0.7, "plunged": -0.7, "slump": -0.6,
	"slumps": -0.6, "crash": -0.8, "crashes": -0.8, "tumble": -0.6,
	"tumbles": -0.6, "downgrade": -0.5, "downgraded": -0.5, "bearish": -0.6,
	"miss": -0.4, "misses": -0.4, "missed": -0.4, "risk": -0.2, "risks": -0.2,
	"risky": -0.5, "concern": -0.3, "concerns": -0.3, "worried": -0.5,
	"worry": -0.4, "fear": -0.5, "fears": -0.5, "lawsuit": -0.5, "lawsuits": -0.5,
	"fine": -0.1, "fined": -0.5, "inquiry": -0.3, "investigation": -0.3,
	"antitrust": -0.3, "ban": -0.5, "banned": -0.5, "delay": -0.4,
	"delays": -0.4, "delayed": -0.4, "recall": -0.5, "problem": -0.4,
	"problems": -0.4, "issue": -0.2, "issues": -0.2, "bug": -0.4, "bugs": -0.4,
	"fail": -0.5, "fails": -0.5, "failed": -0.5, "failure": -0.6, "cut": -0.3,
	"cuts": -0.3, "layoffs": -0.6, "down": -0.16, "lower": -0.2, "low": -0.2,
	"sell": -0.2, "selloff": -0.6, "volatile": -0.3, "volatility": -0.3,
	"uncertain": -0.4, "uncertainty": -0.4, "slow": -0.3, "slowdown": -0.5,
	"disappointing": -0.6, "disappointed": -0.75, "terrible": -1.0,
	"awful": -1.0, "hate": -0.8, "angry": -0.5, "sad": -0.5, "expensive": -0.5,
	"overpriced": -0.6, "threat": -0.4, "threats": -0.4, "tariff": -0.2,
	"tariffs": -0.2, "downside": -0.4, "warning": -0.4, "warns": -0.4,
}

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "none": {}, "nothing": {}, "neither": {},
	"nor": {}, "without": {}, "hardly": {}, "isn't": {}, "aren't": {},
	"wasn't": {}, "weren't": {}, "don't": {}, "doesn't": {}, "didn't": {},
	"won't": {}, "can't": {}, "cannot": {}, "couldn't": {}, "shouldn't": {},
	"wouldn't": {},
}

var intensifiers = map[string]struct{}{
	"very": {}, "really": {}, "extremely": {}, "highly": {}, "incredibly": {},
	"so": {}, "too": {}, "most": {}, "more": {}, "much": {}, "super": {},
	"significantly": {}, "sharply": {}, "hugely": {},
}

// Modifier weights applied to the next lexicon word.
const (
	negationFactor  = -0.5
	intensifyFactor = 1.3
)
