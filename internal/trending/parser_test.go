package trending

import (
	"strings"
	"testing"
)

const fixturePage = `<!DOCTYPE html>
<html><body>
<main>
<article class="Box-row">
  <h2 class="h3 lh-condensed">
    <a href="/rust-lang/rust">
      rust-lang /
      rust
    </a>
  </h2>
  <p class="col-9 color-fg-muted my-1 pr-4">
    Empowering everyone to build reliable and efficient software.
  </p>
  <div class="f6 color-fg-muted mt-2">
    <span itemprop="programmingLanguage">Rust</span>
    <a class="Link--muted d-inline-block mr-3" href="/rust-lang/rust/stargazers">
      <svg class="octicon octicon-star"></svg>
      92,345
    </a>
    <a class="Link--muted d-inline-block mr-3" href="/rust-lang/rust/forks">
      <svg class="octicon octicon-repo-forked"></svg>
      11,982
    </a>
    <span class="d-inline-block mr-3">
      Built by
      <a class="d-inline-block" href="/alice"><img class="avatar mb-1" src="https://avatars.githubusercontent.com/u/1?s=40" alt=""></a>
      <a class="d-inline-block" href="/bob"><img class="avatar mb-1" src="https://avatars.githubusercontent.com/u/2?s=40" alt=""></a>
      <a class="d-inline-block" href="/carol"><img class="avatar mb-1" src="https://avatars.githubusercontent.com/u/3?s=40" alt=""></a>
    </span>
    <span class="d-inline-block float-sm-right">
      <svg class="octicon octicon-star"></svg>
      142 stars today
    </span>
  </div>
</article>
<article class="Box-row">
  <h2 class="h3 lh-condensed">
    <a href="/tinygo-org/tinygo">tinygo-org / tinygo</a>
  </h2>
  <div class="f6 color-fg-muted mt-2">
    <a class="Link--muted" href="/tinygo-org/tinygo/stargazers">15,003</a>
  </div>
</article>
</main>
</body></html>`

func mustParse(t *testing.T, doc string) []Repository {
	t.Helper()
	repos, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return repos
}

func TestParseFixturePage(t *testing.T) {
	repos := mustParse(t, fixturePage)
	if len(repos) != 2 {
		t.Fatalf("expected 2 repos, got %d", len(repos))
	}

	first := repos[0]
	if first.FullName != "rust-lang/rust" {
		t.Errorf("expected rust-lang/rust first, got %q", first.FullName)
	}
	if first.Owner != "rust-lang" || first.Name != "rust" {
		t.Errorf("owner/name split wrong: %q / %q", first.Owner, first.Name)
	}
	if first.URL != "https://github.com/rust-lang/rust" {
		t.Errorf("unexpected URL %q", first.URL)
	}
	if first.Description != "Empowering everyone to build reliable and efficient software." {
		t.Errorf("unexpected description %q", first.Description)
	}
	if first.Language != "Rust" {
		t.Errorf("expected language Rust, got %q", first.Language)
	}
	if first.Stars != 92345 {
		t.Errorf("expected 92345 stars, got %d", first.Stars)
	}
	if first.Forks != 11982 {
		t.Errorf("expected 11982 forks, got %d", first.Forks)
	}
	if first.PeriodStars != 142 || first.PeriodLabel != "today" {
		t.Errorf("expected (142, today), got (%d, %q)", first.PeriodStars, first.PeriodLabel)
	}
	if first.AvatarURL != "https://avatars.githubusercontent.com/u/1?s=40" {
		t.Errorf("unexpected avatar %q", first.AvatarURL)
	}
	if len(first.Contributors) != 3 {
		t.Fatalf("expected 3 contributors, got %d", len(first.Contributors))
	}
	if first.Contributors[0].Username != "alice" || first.Contributors[2].Username != "carol" {
		t.Errorf("contributor order wrong: %+v", first.Contributors)
	}
	if first.Contributors[1].ProfileURL != "https://github.com/bob" {
		t.Errorf("unexpected profile URL %q", first.Contributors[1].ProfileURL)
	}

	second := repos[1]
	if second.FullName != "tinygo-org/tinygo" {
		t.Errorf("expected tinygo-org/tinygo second, got %q", second.FullName)
	}
	if second.Description != "" {
		t.Errorf("expected empty description, got %q", second.Description)
	}
	if second.Language != "" {
		t.Errorf("expected empty language, got %q", second.Language)
	}
	if second.Forks != 0 {
		t.Errorf("expected 0 forks by default, got %d", second.Forks)
	}
	if second.PeriodStars != 0 || second.PeriodLabel != "" {
		t.Errorf("expected (0, \"\"), got (%d, %q)", second.PeriodStars, second.PeriodLabel)
	}
	if len(second.Contributors) != 0 {
		t.Errorf("expected no contributors, got %d", len(second.Contributors))
	}
	// No avatar on the page: synthesized from the owner name.
	if second.AvatarURL != "https://github.com/tinygo-org.png" {
		t.Errorf("unexpected fallback avatar %q", second.AvatarURL)
	}
}

func TestParsePreservesDocumentOrder(t *testing.T) {
	entry := func(name string) string {
		return `<article class="Box-row"><h2><a href="/o/` + name + `">o / ` + name + `</a></h2></article>`
	}
	forward := mustParse(t, entry("one")+entry("two")+entry("three"))
	reversed := mustParse(t, entry("three")+entry("two")+entry("one"))

	if len(forward) != 3 || len(reversed) != 3 {
		t.Fatalf("expected 3 repos each, got %d and %d", len(forward), len(reversed))
	}
	for i := range forward {
		if forward[i].Name != reversed[len(reversed)-1-i].Name {
			t.Errorf("order not preserved: %v vs %v", forward, reversed)
		}
	}
}

func TestParseDropsEntryWithoutSlash(t *testing.T) {
	doc := `<article class="Box-row"><h2><a href="">not-a-repo-title</a></h2></article>` +
		`<article class="Box-row"><h2><a href="/o/keep">o / keep</a></h2></article>`
	repos := mustParse(t, doc)
	if len(repos) != 1 {
		t.Fatalf("expected malformed entry dropped, got %d repos", len(repos))
	}
	if repos[0].FullName != "o/keep" {
		t.Errorf("expected o/keep to survive, got %q", repos[0].FullName)
	}
}

func TestParseSkipsEntryWithoutTitleLink(t *testing.T) {
	doc := `<article class="Box-row"><p>nothing here</p></article>` +
		`<article class="Box-row"><h2><a href="/o/r">o / r</a></h2></article>`
	repos := mustParse(t, doc)
	if len(repos) != 1 {
		t.Fatalf("expected 1 repo, got %d", len(repos))
	}
}

func TestParseEmptyAndMalformedDocuments(t *testing.T) {
	for _, doc := range []string{"", "<html></html>", "garbage <<< not html", "<article></article>"} {
		repos := mustParse(t, doc)
		if len(repos) != 0 {
			t.Errorf("expected 0 repos for %q, got %d", doc, len(repos))
		}
	}
}

func TestPeriodStarsFallbackStrategies(t *testing.T) {
	head := `<article class="Box-row"><h2><a href="/o/r">o / r</a></h2>`
	tests := []struct {
		name string
		body string
		want int
		label string
	}{
		{"exact class", `<span class="d-inline-block float-sm-right">88 stars today</span>`, 88, "today"},
		{"relaxed class", `<span class="float-sm-right other">1,204 stars this week</span>`, 1204, "this week"},
		{"attribute substring", `<div data-view="float-sm-right badge">7 stars this month</div>`, 7, "this month"},
		{"text scan", `<div><em>312 stars this week</em></div>`, 312, "this week"},
		{"singular star", `<span class="d-inline-block float-sm-right">1 star today</span>`, 1, "today"},
		{"no match", `<div>popular repository</div>`, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := mustParse(t, head+tt.body+`</article>`)
			if len(repos) != 1 {
				t.Fatalf("expected 1 repo, got %d", len(repos))
			}
			if repos[0].PeriodStars != tt.want || repos[0].PeriodLabel != tt.label {
				t.Errorf("got (%d, %q), want (%d, %q)", repos[0].PeriodStars, repos[0].PeriodLabel, tt.want, tt.label)
			}
		})
	}
}

func TestContributorsCappedAtFive(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<article class="Box-row"><h2><a href="/o/r">o / r</a></h2><span>Built by`)
	for _, u := range []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7"} {
		b.WriteString(`<a href="/` + u + `"><img src="https://avatars.githubusercontent.com/` + u + `"></a>`)
	}
	b.WriteString(`</span></article>`)

	repos := mustParse(t, b.String())
	if len(repos) != 1 {
		t.Fatalf("expected 1 repo, got %d", len(repos))
	}
	if len(repos[0].Contributors) != 5 {
		t.Errorf("expected contributors capped at 5, got %d", len(repos[0].Contributors))
	}
}

func TestContributorsSkipUnusableLinks(t *testing.T) {
	doc := `<article class="Box-row"><h2><a href="/o/r">o / r</a></h2><span>Built by` +
		`<a href="/"><img src="https://avatars.githubusercontent.com/x"></a>` + // no path
		`<a href="/noavatar">text only</a>` + // no image
		`<a href="/good"><img src="https://avatars.githubusercontent.com/good"></a>` +
		`</span></article>`
	repos := mustParse(t, doc)
	if len(repos[0].Contributors) != 1 {
		t.Fatalf("expected 1 usable contributor, got %d", len(repos[0].Contributors))
	}
	if repos[0].Contributors[0].Username != "good" {
		t.Errorf("expected good, got %q", repos[0].Contributors[0].Username)
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"12,345", 12345},
		{"  92,345 ", 92345},
		{"7", 7},
		{"", 0},
		{"n/a", 0},
		{"stars", 0},
	}
	for _, tt := range tests {
		if got := parseCount(tt.input); got != tt.want {
			t.Errorf("parseCount(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		language string
		period   Period
		want     string
	}{
		{"Go", PeriodDaily, "Go-daily"},
		{"", PeriodWeekly, "all-weekly"},
		{"C++", PeriodMonthly, "C++-monthly"},
	}
	for _, tt := range tests {
		if got := Key(tt.language, tt.period); got != tt.want {
			t.Errorf("Key(%q, %q) = %q, want %q", tt.language, tt.period, got, tt.want)
		}
	}
}

func TestPeriodValid(t *testing.T) {
	for _, p := range Periods() {
		if !p.Valid() {
			t.Errorf("expected %q valid", p)
		}
	}
	if Period("yearly").Valid() {
		t.Error("expected yearly invalid")
	}
	if Period("").Valid() {
		t.Error("expected empty period invalid")
	}
}
