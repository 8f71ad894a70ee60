package trending

import "fmt"

// Period is the trending window GitHub accepts in the `since` query parameter.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

// Periods lists all valid windows in tab order.
func Periods() []Period {
	return []Period{PeriodDaily, PeriodWeekly, PeriodMonthly}
}

// Key derives the cache key for a (language, period) pair. An empty language
// means the unfiltered overall feed.
func Key(language string, period Period) string {
	if language == "" {
		language = "all"
	}
	return fmt.Sprintf("%s-%s", language, period)
}

// Contributor is one "Built by" entry on a trending listing.
type Contributor struct {
	Username   string `json:"username"`
	AvatarURL  string `json:"avatar_url"`
	ProfileURL string `json:"profile_url"`
}

// Repository is one parsed trending listing, in page order.
type Repository struct {
	FullName     string        `json:"full_name"`
	Owner        string        `json:"owner"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	URL          string        `json:"url"`
	Language     string        `json:"language"`
	Stars        int           `json:"stars"`
	Forks        int           `json:"forks"`
	PeriodStars  int           `json:"period_stars"`
	PeriodLabel  string        `json:"period_label"`
	AvatarURL    string        `json:"avatar_url"`
	Contributors []Contributor `json:"contributors,omitempty"`
}
