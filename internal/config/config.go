package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone    = "UTC"
	defaultRunTime     = "07:00"
	defaultGeminiModel = "gemini-2.5-flash"
	configPathEnv      = "DAILYBRIEF_CONFIG"
	dotEnvFile         = ".env"

	logLevelEnv       = "LOG_LEVEL"
	subjectNameEnv    = "SUBJECT_NAME"
	subjectSymbolEnv  = "SUBJECT_SYMBOL"
	scheduleTimeEnv   = "SCHEDULE_TIME"
	timezoneEnv       = "SCHEDULE_TIMEZONE"
	artifactDirEnv    = "ARTIFACT_DIR"
	aiProviderEnv     = "AI_PROVIDER"
	aiModelEnv        = "AI_MODEL"
	geminiAPIKeyEnv   = "GEMINI_API_KEY"
	claudeAPIKeyEnv   = "ANTHROPIC_API_KEY"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// AI providers understood by the analysis stage.
const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
)

// ErrMissing marks a required configuration value that is absent.
var ErrMissing = errors.New("missing required configuration")

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Subject       SubjectConfig      `yaml:"subject"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Collectors    CollectorConfig    `yaml:"collectors"`
	Analysis      AnalysisConfig     `yaml:"analysis"`
	Notifications NotificationConfig `yaml:"notifications"`
	Sites         []SiteConfig       `yaml:"sites"`
}

// LoggingConfig sets the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SubjectConfig names the entity the report is about.
type SubjectConfig struct {
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol"`
}

// SchedulerConfig defines when the daily run fires.
type SchedulerConfig struct {
	Time       string         `yaml:"time"`
	Timezone   string         `yaml:"timezone"`
	RunOnStart bool           `yaml:"runOnStart"`
	location   *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// CronExpression converts the HH:MM run time into a daily cron spec.
func (s SchedulerConfig) CronExpression() (string, error) {
	hour, minute, err := parseClock(s.Time)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// PipelineConfig tunes the artifact area and per-stage limits.
type PipelineConfig struct {
	ArtifactDir  string `yaml:"artifactDir"`
	StageTimeout string `yaml:"stageTimeout"`
}

// Timeout returns the per-stage timeout, defaulting to five minutes.
func (p PipelineConfig) Timeout() time.Duration {
	return durationOr(p.StageTimeout, 5*time.Minute)
}

// CollectorConfig groups the collector limits.
type CollectorConfig struct {
	News   NewsConfig   `yaml:"news"`
	Social SocialConfig `yaml:"social"`
	Market MarketConfig `yaml:"market"`
}

// NewsConfig bounds the article list.
type NewsConfig struct {
	MaxArticles int `yaml:"maxArticles"`
	MinArticles int `yaml:"minArticles"`
}

// SocialConfig lists the discussion sources.
type SocialConfig struct {
	MaxPosts    int              `yaml:"maxPosts"`
	SearchURL   string           `yaml:"searchUrl"`
	QueryLimit  int              `yaml:"queryLimit"`
	Queries     []string         `yaml:"queries"`
	Feeds       []FeedConfig     `yaml:"feeds"`
	HackerNews  HackerNewsConfig `yaml:"hackerNews"`
	RequestWait string           `yaml:"requestWait"`
}

// HackerNewsConfig controls the Hacker News keyword scan.
type HackerNewsConfig struct {
	Enabled  bool     `yaml:"enabled"`
	BaseURL  string   `yaml:"baseUrl"`
	Scan     int      `yaml:"scan"`
	Keywords []string `yaml:"keywords"`
}

// MarketConfig points the quote collector at its provider.
type MarketConfig struct {
	BaseURL   string  `yaml:"baseUrl"`
	RateLimit float64 `yaml:"rateLimit"`
}

// AnalysisConfig selects the insight tier and its AI provider.
type AnalysisConfig struct {
	UseAI        bool    `yaml:"useAi"`
	Provider     string  `yaml:"provider"`
	Model        string  `yaml:"model"`
	APIKey       string  `yaml:"apiKey"`
	Endpoint     string  `yaml:"endpoint"`
	Timeout      string  `yaml:"timeout"`
	Temperature  float32 `yaml:"temperature"`
	MaxTokens    int     `yaml:"maxTokens"`
	SystemPrompt string  `yaml:"systemPrompt"`
}

// CallTimeout bounds a single summarization call.
func (a AnalysisConfig) CallTimeout() time.Duration {
	return durationOr(a.Timeout, 60*time.Second)
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken   string `yaml:"botToken"`
	ChatID     string `yaml:"chatId"`
	APIURL     string `yaml:"apiUrl"`
	MaxRetries int    `yaml:"maxRetries"`
	BaseDelay  string `yaml:"baseDelay"`
	ChunkPause string `yaml:"chunkPause"`
}

// RetryBaseDelay is the first backoff step between attempts.
func (t TelegramConfig) RetryBaseDelay() time.Duration {
	return durationOr(t.BaseDelay, time.Second)
}

// PauseBetweenChunks is the wait between consecutive message parts.
func (t TelegramConfig) PauseBetweenChunks() time.Duration {
	return durationOr(t.ChunkPause, time.Second)
}

// SiteConfig describes a single news site with its scanner strategy.
type SiteConfig struct {
	Name    string            `yaml:"name"`
	Scanner string            `yaml:"scanner"`
	Feeds   []FeedConfig      `yaml:"feeds"`
	Options map[string]string `yaml:"options"`
}

// FeedConfig holds one concrete feed endpoint and how many entries to take.
type FeedConfig struct {
	Name  string `yaml:"name"`
	URL   string `yaml:"url"`
	Limit int    `yaml:"limit"`
}

// Load reads .env, the YAML configuration (if present) and applies environment
// overrides. An explicit path that cannot be read or parsed is an error; the
// path taken from the environment falls back to defaults with a warning.
func Load(path string) (Config, error) {
	if _, err := os.Stat(dotEnvFile); err == nil {
		if err := godotenv.Load(dotEnvFile); err != nil {
			log.Printf("config: cannot load %s: %v", dotEnvFile, err)
		}
	}

	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(configPathEnv)
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err != nil && explicit:
			return Config{}, errors.Wrapf(err, "read config %s", path)
		case err != nil:
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		default:
			merged, decodeErr := decodeOnto(cfg, raw)
			if decodeErr != nil {
				if explicit {
					return Config{}, errors.Wrapf(decodeErr, "parse config %s", path)
				}
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, decodeErr)
			} else {
				cfg = merged
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}

	if _, err := cfg.Scheduler.CronExpression(); err != nil {
		log.Printf("config: invalid schedule time %q: %v (using %s)", cfg.Scheduler.Time, err, defaultRunTime)
		cfg.Scheduler.Time = defaultRunTime
	}

	return cfg, nil
}

// decodeOnto overlays the YAML document on top of base; absent keys keep
// their base value.
func decodeOnto(base Config, raw []byte) (Config, error) {
	if err := yaml.Unmarshal(raw, &base); err != nil {
		return Config{}, err
	}
	return base, nil
}

// ValidateTelegram checks the delivery credentials before any network call.
func (c Config) ValidateTelegram() error {
	var missing []string
	if strings.TrimSpace(c.Notifications.Telegram.BotToken) == "" {
		missing = append(missing, "bot token")
	}
	if strings.TrimSpace(c.Notifications.Telegram.ChatID) == "" {
		missing = append(missing, "chat id")
	}
	if len(missing) == 0 {
		return nil
	}
	err := errors.Wrapf(ErrMissing, "telegram %s", strings.Join(missing, ", "))
	return errors.WithHintf(err, "set %s and %s or notifications.telegram in the config file", telegramTokenEnv, telegramChatIDEnv)
}

// ValidateAI checks that the selected provider can be contacted.
func (c Config) ValidateAI() error {
	a := c.Analysis
	if strings.TrimSpace(a.APIKey) == "" {
		err := errors.Wrapf(ErrMissing, "%s api key", a.Provider)
		return errors.WithHintf(err, "set %s or analysis.apiKey", apiKeyEnvFor(a.Provider))
	}
	switch a.Provider {
	case ProviderGemini, ProviderClaude:
		return nil
	case ProviderOpenAI:
		if a.Endpoint == "" || a.Model == "" {
			return errors.Wrap(ErrMissing, "openai endpoint or model")
		}
		return nil
	default:
		return errors.Newf("unknown ai provider %q", a.Provider)
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(subjectNameEnv); v != "" {
		c.Subject.Name = v
	}
	if v := os.Getenv(subjectSymbolEnv); v != "" {
		c.Subject.Symbol = v
	}
	if v := os.Getenv(scheduleTimeEnv); v != "" {
		c.Scheduler.Time = v
	}
	if v := os.Getenv(timezoneEnv); v != "" {
		c.Scheduler.Timezone = v
	}
	if v := os.Getenv(artifactDirEnv); v != "" {
		c.Pipeline.ArtifactDir = v
	}
	if v := os.Getenv(aiProviderEnv); v != "" {
		c.Analysis.Provider = strings.ToLower(v)
		if c.Analysis.Provider != ProviderGemini && c.Analysis.Model == defaultGeminiModel {
			c.Analysis.Model = ""
		}
	}
	if v := os.Getenv(aiModelEnv); v != "" {
		c.Analysis.Model = v
	}
	if v := os.Getenv(apiKeyEnvFor(c.Analysis.Provider)); v != "" {
		c.Analysis.APIKey = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func apiKeyEnvFor(provider string) string {
	switch provider {
	case ProviderClaude:
		return claudeAPIKeyEnv
	case ProviderOpenAI:
		return openAIAPIKeyEnv
	default:
		return geminiAPIKeyEnv
	}
}

func parseClock(value string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, 0, errors.Newf("expected HH:MM, got %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, errors.Newf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, errors.Newf("invalid minute in %q", value)
	}
	return hour, minute, nil
}

func durationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Subject:   SubjectConfig{Name: "Apple", Symbol: "AAPL"},
		Scheduler: SchedulerConfig{Time: defaultRunTime, Timezone: defaultTimezone, location: tz},
		Pipeline:  PipelineConfig{ArtifactDir: ".tmp", StageTimeout: "5m"},
		Collectors: CollectorConfig{
			News: NewsConfig{MaxArticles: 50, MinArticles: 5},
			Social: SocialConfig{
				MaxPosts:   30,
				SearchURL:  "https://news.google.com/rss/search",
				QueryLimit: 10,
				Queries: []string{
					"Apple stock analysis",
					"AAPL stock opinion",
					"Apple earnings discussion",
				},
				Feeds: []FeedConfig{
					{Name: "seeking_alpha", URL: "https://seekingalpha.com/api/sa/combined/AAPL.xml", Limit: 15},
				},
				HackerNews: HackerNewsConfig{
					Enabled:  true,
					BaseURL:  "https://hacker-news.firebaseio.com/v0",
					Scan:     50,
					Keywords: []string{"apple", "aapl", "iphone", "ipad", "mac", "ios"},
				},
				RequestWait: "1s",
			},
			Market: MarketConfig{BaseURL: "https://query1.finance.yahoo.com", RateLimit: 2},
		},
		Analysis: AnalysisConfig{
			UseAI:       true,
			Provider:    ProviderGemini,
			Model:       defaultGeminiModel,
			Timeout:     "60s",
			Temperature: 0.3,
			MaxTokens:   4096,
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{
				APIURL:     "https://api.telegram.org",
				MaxRetries: 3,
				BaseDelay:  "1s",
				ChunkPause: "1s",
			},
		},
		Sites: []SiteConfig{
			{
				Name:    "Google News",
				Scanner: "google-news",
				Options: map[string]string{"query": "Apple OR AAPL", "endpoint": "https://news.google.com/rss/search"},
				Feeds:   []FeedConfig{{Name: "search", Limit: 20}},
			},
			{
				Name:    "Apple Newsroom",
				Scanner: "rss",
				Feeds:   []FeedConfig{{Name: "newsroom", URL: "https://www.apple.com/newsroom/rss-feed.rss", Limit: 10}},
			},
			{
				Name:    "MacRumors",
				Scanner: "rss",
				Feeds:   []FeedConfig{{Name: "front", URL: "https://www.macrumors.com/feed/", Limit: 10}},
			},
			{
				Name:    "9to5Mac",
				Scanner: "rss",
				Feeds:   []FeedConfig{{Name: "front", URL: "https://9to5mac.com/feed/", Limit: 10}},
			},
			{
				Name:    "AppleInsider",
				Scanner: "rss",
				Feeds:   []FeedConfig{{Name: "news", URL: "https://appleinsider.com/rss/news/", Limit: 10}},
			},
		},
	}
}
