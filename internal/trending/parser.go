package trending

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

const (
	githubBase  = "https://github.com"
	avatarsHost = "avatars.githubusercontent.com"
)

var periodStarsRe = regexp.MustCompile(`(\d[\d,]*)\s+stars?\s+(today|this week|this month)`)

// Parse extracts the repository listings from a trending page. The error is
// only ever a read failure on r; a document that doesn't look like a trending
// page at all yields an empty slice and a nil error. Listing order follows
// document order, which is GitHub's own ranking.
func Parse(r io.Reader) ([]Repository, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing trending page: %w", err)
	}
	return ParseDocument(doc), nil
}

// ParseDocument is the io-free half of Parse.
func ParseDocument(doc *html.Node) []Repository {
	entries := findAll(doc, func(n *html.Node) bool {
		return isElem(n, "article") && hasClass(n, "Box-row")
	})
	if len(entries) == 0 {
		// Older revisions of the page didn't class the rows.
		entries = findAll(doc, func(n *html.Node) bool { return isElem(n, "article") })
	}

	repos := make([]Repository, 0, len(entries))
	for _, entry := range entries {
		if repo, ok := parseEntry(entry); ok {
			repos = append(repos, repo)
		}
	}
	return repos
}

// parseEntry extracts one listing. Only a missing or malformed title link
// disqualifies the whole entry; every other field degrades to its zero value.
func parseEntry(entry *html.Node) (Repository, bool) {
	link := findFirst(entry, func(n *html.Node) bool {
		return isElem(n, "a") && isHeading(n.Parent)
	})
	if link == nil {
		link = findFirst(entry, func(n *html.Node) bool {
			return isElem(n, "a") && strings.Count(attr(n, "href"), "/") == 2
		})
	}
	if link == nil {
		return Repository{}, false
	}

	fullName := normalizeTitle(textContent(link))
	if fullName == "" {
		fullName = strings.Trim(attr(link, "href"), "/")
	}
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return Repository{}, false
	}

	repo := Repository{
		FullName: fullName,
		Owner:    owner,
		Name:     name,
		URL:      githubBase + "/" + fullName,
	}

	if p := findFirst(entry, func(n *html.Node) bool { return isElem(n, "p") }); p != nil {
		repo.Description = collapseSpace(textContent(p))
	}

	repo.Language = collapseSpace(textContent(findFirst(entry, func(n *html.Node) bool {
		return isElem(n, "span") && attr(n, "itemprop") == "programmingLanguage"
	})))

	repo.Stars = parseCount(textContent(findFirst(entry, func(n *html.Node) bool {
		return isElem(n, "a") && strings.HasSuffix(attr(n, "href"), "/stargazers")
	})))
	repo.Forks = parseCount(textContent(findFirst(entry, func(n *html.Node) bool {
		href := attr(n, "href")
		return isElem(n, "a") && (strings.HasSuffix(href, "/forks") || strings.HasSuffix(href, "/network/members"))
	})))

	repo.PeriodStars, repo.PeriodLabel = parsePeriodStars(entry)

	repo.AvatarURL = findAvatar(entry)
	if repo.AvatarURL == "" {
		repo.AvatarURL = githubBase + "/" + owner + ".png"
	}

	repo.Contributors = parseContributors(entry)

	return repo, true
}

// parsePeriodStars tries successively looser locators for the "N stars today"
// badge, ending with a scan of all text in the entry.
func parsePeriodStars(entry *html.Node) (int, string) {
	candidates := []func(*html.Node) bool{
		func(n *html.Node) bool {
			return isElem(n, "span") && hasClass(n, "d-inline-block") && hasClass(n, "float-sm-right")
		},
		func(n *html.Node) bool {
			return isElem(n, "span") && hasClass(n, "float-sm-right")
		},
		func(n *html.Node) bool {
			if n.Type != html.ElementNode {
				return false
			}
			for _, a := range n.Attr {
				if strings.Contains(a.Val, "float-sm-right") {
					return true
				}
			}
			return false
		},
	}
	for _, match := range candidates {
		if n := findFirst(entry, match); n != nil {
			if count, label, ok := matchPeriodStars(textContent(n)); ok {
				return count, label
			}
		}
	}
	if count, label, ok := matchPeriodStars(textContent(entry)); ok {
		return count, label
	}
	return 0, ""
}

func matchPeriodStars(text string) (int, string, bool) {
	m := periodStarsRe.FindStringSubmatch(collapseSpace(text))
	if m == nil {
		return 0, "", false
	}
	return parseCount(m[1]), m[2], true
}

func findAvatar(entry *html.Node) string {
	img := findFirst(entry, func(n *html.Node) bool {
		return isElem(n, "img") && strings.Contains(attr(n, "src"), avatarsHost)
	})
	if img == nil {
		return ""
	}
	return attr(img, "src")
}

// parseContributors collects up to five profile links from the "Built by"
// block, in page order. Links without a path or a nested avatar are skipped.
func parseContributors(entry *html.Node) []Contributor {
	marker := findFirst(entry, func(n *html.Node) bool {
		return n.Type == html.TextNode && strings.Contains(n.Data, "Built by")
	})
	if marker == nil || marker.Parent == nil {
		return nil
	}

	var contributors []Contributor
	for _, link := range findAll(marker.Parent, func(n *html.Node) bool { return isElem(n, "a") }) {
		if len(contributors) == 5 {
			break
		}
		username := strings.Trim(attr(link, "href"), "/")
		if username == "" {
			continue
		}
		img := findFirst(link, func(n *html.Node) bool {
			return isElem(n, "img") && attr(n, "src") != ""
		})
		if img == nil {
			continue
		}
		contributors = append(contributors, Contributor{
			Username:   username,
			AvatarURL:  attr(img, "src"),
			ProfileURL: githubBase + "/" + username,
		})
	}
	return contributors
}

// parseCount turns star/fork text like "12,345" into an int, defaulting to 0.
func parseCount(s string) int {
	s = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// normalizeTitle collapses "owner /\n  name" into "owner/name".
func normalizeTitle(s string) string {
	s = collapseSpace(s)
	s = strings.ReplaceAll(s, " / ", "/")
	s = strings.ReplaceAll(s, "/ ", "/")
	s = strings.ReplaceAll(s, " /", "/")
	return s
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isElem(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

func isHeading(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "h1", "h2", "h3":
		return true
	}
	return false
}

// findAll walks n depth-first and returns every element matching pred, in
// document order.
func findAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if (n.Type == html.ElementNode || n.Type == html.TextNode) && pred(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func findFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if (n.Type == html.ElementNode || n.Type == html.TextNode) && pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
