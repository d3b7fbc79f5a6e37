package models

// ContributionDay is one cell of the contribution calendar.
type ContributionDay struct {
	Date              string `json:"date"`
	ContributionCount int    `json:"contributionCount"`
	Color             string `json:"color"`
}

// Language is a repository's primary language as reported by GitHub.
type Language struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

// LanguageCount counts recently pushed repositories by primary language.
type LanguageCount struct {
	Language
	Size int `json:"size"`
}

type ActiveRepo struct {
	Name            string    `json:"name"`
	URL             string    `json:"url"`
	StargazerCount  int       `json:"stargazerCount"`
	PrimaryLanguage *Language `json:"primaryLanguage"`
}

// ContributionStats backs the homepage GitHub activity widget.
type ContributionStats struct {
	Username             string            `json:"username"`
	TotalContributions   int               `json:"totalContributions"`
	DailyAverage         int               `json:"dailyAverage"`
	CurrentStreak        int               `json:"currentStreak"`
	TotalCommitsThisYear int               `json:"totalCommitsThisYear"`
	TopLanguages         []LanguageCount   `json:"topLanguages"`
	MostActiveRepo       *ActiveRepo       `json:"mostActiveRepo"`
	Days                 []ContributionDay `json:"days"`
}
