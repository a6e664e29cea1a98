package domain

// Well-known artifact keys shared between stages.
const (
	ArtifactArticles  = "news_articles"
	ArtifactPosts     = "social_posts"
	ArtifactMarket    = "stock_data"
	ArtifactSentiment = "sentiment"
	ArtifactReport    = "daily_report"
)

// Stage names in pipeline order.
const (
	StageCollectNews   = "collect-news"
	StageCollectSocial = "collect-social"
	StageCollectMarket = "collect-market"
	StageAnalyze       = "analyze"
	StageDeliver       = "deliver"
)
