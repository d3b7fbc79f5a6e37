package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/BradenHooton/portfolio/internal/models"
	"golang.org/x/time/rate"
)

const (
	DefaultGitHubGraphQLURL = "https://api.github.com/graphql"

	githubStatsTTL     = 10 * time.Minute
	githubTopLanguages = 4
	githubStarWeight   = 10
)

const contributionsQuery = `query($login: String!) {
  user(login: $login) {
    contributionsCollection {
      totalCommitContributions
      contributionCalendar {
        totalContributions
        weeks { contributionDays { date contributionCount color } }
      }
    }
    repositories(first: 20, orderBy: {field: PUSHED_AT, direction: DESC}, privacy: PUBLIC, isFork: false) {
      nodes {
        name
        url
        stargazerCount
        diskUsage
        primaryLanguage { name color }
      }
    }
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type contributionsResponse struct {
	Data *struct {
		User *githubUser `json:"user"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type githubUser struct {
	ContributionsCollection struct {
		TotalCommitContributions int `json:"totalCommitContributions"`
		ContributionCalendar     struct {
			TotalContributions int `json:"totalContributions"`
			Weeks              []struct {
				ContributionDays []models.ContributionDay `json:"contributionDays"`
			} `json:"weeks"`
		} `json:"contributionCalendar"`
	} `json:"contributionsCollection"`
	Repositories struct {
		Nodes []githubRepo `json:"nodes"`
	} `json:"repositories"`
}

type githubRepo struct {
	Name            string           `json:"name"`
	URL             string           `json:"url"`
	StargazerCount  int              `json:"stargazerCount"`
	DiskUsage       *int             `json:"diskUsage"`
	PrimaryLanguage *models.Language `json:"primaryLanguage"`
}

// GitHubOptions configures the contributions client.
type GitHubOptions struct {
	Token             string
	DefaultUsername   string
	APIURL            string
	RequestsPerMinute int
}

// GitHubService fetches and summarizes a user's public contribution activity.
type GitHubService struct {
	client  *http.Client
	opts    GitHubOptions
	limiter *rate.Limiter
	views   *ViewCache
	logger  *slog.Logger
}

func NewGitHubService(opts GitHubOptions, client *http.Client, views *ViewCache, logger *slog.Logger) *GitHubService {
	if opts.APIURL == "" {
		opts.APIURL = DefaultGitHubGraphQLURL
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 30
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GitHubService{
		client:  client,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), opts.RequestsPerMinute),
		views:   views,
		logger:  logger,
	}
}

// Contributions returns the summarized calendar for username, falling back
// to the configured default user. Results are cached per user.
func (s *GitHubService) Contributions(ctx context.Context, username string) (*models.ContributionStats, error) {
	if s.opts.Token == "" {
		return nil, models.ErrGitHubNotConfigured
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = s.opts.DefaultUsername
	}
	if username == "" {
		return nil, models.NewValidationError("username", "Missing username. Provide ?username= or set GITHUB_USERNAME.")
	}

	key := "github:" + strings.ToLower(username)
	return cachedView(s.views, key, githubStatsTTL, func() (*models.ContributionStats, error) {
		return s.fetch(ctx, username)
	})
}

func (s *GitHubService) fetch(ctx context.Context, username string) (*models.ContributionStats, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("github rate limiter: %w", err)
	}

	body, err := json.Marshal(graphQLRequest{
		Query:     contributionsQuery,
		Variables: map[string]any{"login": username},
	})
	if err != nil {
		return nil, fmt.Errorf("encode github query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build github request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.opts.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("github request failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: github request: %v", models.ErrUpstream, err)
	}
	defer resp.Body.Close()

	var decoded contributionsResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&decoded)

	if resp.StatusCode != http.StatusOK || len(decoded.Errors) > 0 {
		messages := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			messages = append(messages, e.Message)
		}
		msg := strings.Join(messages, ", ")
		if msg == "" {
			msg = fmt.Sprintf("GitHub API error (status %d)", resp.StatusCode)
		}
		s.logger.Warn("github api error", slog.Int("status", resp.StatusCode), slog.String("message", msg))
		return nil, fmt.Errorf("%w: %s", models.ErrUpstream, msg)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: decode github response: %v", models.ErrUpstream, decodeErr)
	}
	if decoded.Data == nil || decoded.Data.User == nil {
		return nil, models.ErrNotFound
	}

	return summarizeContributions(username, decoded.Data.User), nil
}

func summarizeContributions(username string, user *githubUser) *models.ContributionStats {
	calendar := user.ContributionsCollection.ContributionCalendar

	days := make([]models.ContributionDay, 0, len(calendar.Weeks)*7)
	for _, week := range calendar.Weeks {
		days = append(days, week.ContributionDays...)
	}
	// ISO dates sort lexically
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	dayCount := len(days)
	if dayCount == 0 {
		dayCount = 1
	}

	streak := 0
	for i := len(days) - 1; i >= 0 && days[i].ContributionCount > 0; i-- {
		streak++
	}

	return &models.ContributionStats{
		Username:             username,
		TotalContributions:   calendar.TotalContributions,
		DailyAverage:         int(math.Round(float64(calendar.TotalContributions) / float64(dayCount))),
		CurrentStreak:        streak,
		TotalCommitsThisYear: user.ContributionsCollection.TotalCommitContributions,
		TopLanguages:         topLanguages(user.Repositories.Nodes),
		MostActiveRepo:       mostActiveRepo(user.Repositories.Nodes),
		Days:                 days,
	}
}

func topLanguages(repos []githubRepo) []models.LanguageCount {
	counts := make([]models.LanguageCount, 0)
	index := make(map[string]int)
	for _, repo := range repos {
		if repo.PrimaryLanguage == nil {
			continue
		}
		if i, ok := index[repo.PrimaryLanguage.Name]; ok {
			counts[i].Size++
			continue
		}
		index[repo.PrimaryLanguage.Name] = len(counts)
		counts = append(counts, models.LanguageCount{Language: *repo.PrimaryLanguage, Size: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Size > counts[j].Size })
	if len(counts) > githubTopLanguages {
		counts = counts[:githubTopLanguages]
	}
	return counts
}

// mostActiveRepo scores repositories by disk usage plus weighted stars.
func mostActiveRepo(repos []githubRepo) *models.ActiveRepo {
	var (
		best      *githubRepo
		bestScore int
	)
	for i := range repos {
		score := repos[i].StargazerCount * githubStarWeight
		if repos[i].DiskUsage != nil {
			score += *repos[i].DiskUsage
		}
		if best == nil || score > bestScore {
			best, bestScore = &repos[i], score
		}
	}
	if best == nil {
		return nil
	}
	return &models.ActiveRepo{
		Name:            best.Name,
		URL:             best.URL,
		StargazerCount:  best.StargazerCount,
		PrimaryLanguage: best.PrimaryLanguage,
	}
}
