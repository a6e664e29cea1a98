package domain

import "time"

// Article is a news item produced by the news collectors. URL is its identity.
type Article struct {
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	URL       string    `json:"url"`
	Published time.Time `json:"published"`
	Summary   string    `json:"summary"`
}

// MaxSnippetRunes bounds SocialPost.Text.
const MaxSnippetRunes = 500

// SocialPost is a discussion item from a social or community platform.
type SocialPost struct {
	Platform string    `json:"platform"`
	Title    string    `json:"title"`
	URL      string    `json:"url"`
	Score    int       `json:"score"`
	Comments int       `json:"comments"`
	Created  time.Time `json:"created"`
	Text     string    `json:"text"`
}

// DedupeArticles keeps the first article seen for every URL.
func DedupeArticles(articles []Article) []Article {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]Article, 0, len(articles))
	for _, article := range articles {
		if _, ok := seen[article.URL]; ok {
			continue
		}
		seen[article.URL] = struct{}{}
		unique = append(unique, article)
	}
	return unique
}

// DedupePosts keeps the first post seen for every URL.
func DedupePosts(posts []SocialPost) []SocialPost {
	seen := make(map[string]struct{}, len(posts))
	unique := make([]SocialPost, 0, len(posts))
	for _, post := range posts {
		if _, ok := seen[post.URL]; ok {
			continue
		}
		seen[post.URL] = struct{}{}
		unique = append(unique, post)
	}
	return unique
}
