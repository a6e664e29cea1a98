package ports

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"DailyBrief/internal/domain"
)

// ErrArtifactNotFound is returned by ArtifactStore.Read for a key that was
// never written.
var ErrArtifactNotFound = errors.New("artifact not found")

// ArticleSource pulls fresh news articles from upstream providers.
type ArticleSource interface {
	FetchDaily(ctx context.Context, day time.Time) ([]domain.Article, error)
}

// PostSource gathers community discussions about the subject.
type PostSource interface {
	FetchPosts(ctx context.Context) ([]domain.SocialPost, error)
}

// QuoteSource retrieves the market snapshot for a symbol.
type QuoteSource interface {
	Snapshot(ctx context.Context, symbol string) (domain.MarketSnapshot, error)
}

// ArtifactStore is the key -> JSON document area shared between stages.
// Delete of a missing key is not an error.
type ArtifactStore interface {
	Read(ctx context.Context, key string, v any) error
	Write(ctx context.Context, key string, v any) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Completer is a text-in/text-out call to an external AI model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Messenger transmits one message to a destination (chat id, channel).
type Messenger interface {
	Send(ctx context.Context, destination, text string) error
}

// Stage is one isolated unit of the pipeline.
type Stage interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
