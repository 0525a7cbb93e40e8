package dashfm

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Server table columns on the account page (1-based in the markup)
const (
	serverNameColumn = 0
	serverLinkColumn = 5
)

// ParseServers scrapes the server table of the account page. Column 1 holds
// the name and column 6 a link whose s query parameter is the server id.
// Rows without a parseable id are skipped.
func ParseServers(page string) ([]Server, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, &ParseError{Path: PathAccount, Err: err}
	}

	servers := make([]Server, 0)
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() <= serverLinkColumn {
			return
		}

		href, ok := cells.Eq(serverLinkColumn).Find("a").First().Attr("href")
		if !ok {
			return
		}
		id, ok := serverIDFromHref(href)
		if !ok {
			return
		}

		servers = append(servers, Server{
			Name: strings.TrimSpace(cells.Eq(serverNameColumn).Text()),
			ID:   id,
		})
	})

	return servers, nil
}

func serverIDFromHref(href string) (int, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return 0, false
	}
	id, err := strconv.Atoi(u.Query().Get("s"))
	if err != nil {
		return 0, false
	}
	return id, true
}

var (
	ansiCodes    = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)
	sectionCodes = regexp.MustCompile(`§[0-9a-fk-orA-FK-OR]`)
)

// ConsoleText turns console backend output into plain text. The backend may
// answer with an HTML fragment using <br> line breaks or with raw text.
func ConsoleText(body string) string {
	text := body
	if strings.Contains(body, "<") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err == nil {
			doc.Find("br").Each(func(_ int, br *goquery.Selection) {
				br.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: "\n"})
			})
			text = doc.Text()
		}
	}
	text = ansiCodes.ReplaceAllString(text, "")
	text = sectionCodes.ReplaceAllString(text, "")
	return strings.ReplaceAll(text, "\r\n", "\n")
}

// ParseScriptErrors finds the last error block Skript printed while reloading
// the script called name. It returns nil if the last reload of that script
// reported no errors.
//
// A block looks like:
//
//	[Skript] Reloading test.sk...
//	[Skript] Line 2: (test.sk)
//	    Can't understand this event: 'on foo'
//	[Skript] Encountered 1 error while reloading test.sk! (5ms)
func ParseScriptErrors(console, name string) *ConsoleErrorReport {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	quoted := regexp.QuoteMeta(base)

	summary := regexp.MustCompile(`(?i)Encountered (\d+) errors? while reloading (?:\S*/)?` + quoted + `(?:[!.\s(]|$)`)
	reloading := regexp.MustCompile(`(?i)Reloading (?:\S*/)?` + quoted)
	success := regexp.MustCompile(`(?i)Successfully reloaded (?:\S*/)?` + quoted)

	matches := summary.FindAllStringSubmatchIndex(console, -1)
	if len(matches) == 0 {
		return nil
	}
	last := matches[len(matches)-1]

	// A later clean reload supersedes the error block
	for _, ok := range success.FindAllStringIndex(console, -1) {
		if ok[0] > last[0] {
			return nil
		}
	}

	count, err := strconv.Atoi(console[last[2]:last[3]])
	if err != nil {
		return nil
	}

	start := 0
	if len(matches) > 1 {
		start = lineEnd(console, matches[len(matches)-2][1])
	}
	for _, r := range reloading.FindAllStringIndex(console, -1) {
		if r[0] < last[0] && r[0] >= start {
			start = lineEnd(console, r[1])
		}
	}
	end := lineStart(console, last[0])
	if start > end {
		start = end
	}

	return &ConsoleErrorReport{
		FileName:   base,
		ErrorCount: count,
		Detail:     trimBlock(console[start:end]),
	}
}

func lineStart(s string, i int) int {
	return strings.LastIndex(s[:i], "\n") + 1
}

func lineEnd(s string, i int) int {
	if j := strings.Index(s[i:], "\n"); j >= 0 {
		return i + j + 1
	}
	return len(s)
}

// trimBlock drops blank lines and surrounding whitespace
func trimBlock(block string) string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimRight(line, " \t"))
		}
	}
	return strings.Join(lines, "\n")
}
