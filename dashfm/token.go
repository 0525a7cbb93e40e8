package dashfm

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// tokenField is the name of the hidden anti-forgery input on every form page
const tokenField = "token"

// ExtractToken returns the value of the anti-forgery field in html.
// ok is false when the page carries no such field, which usually means the
// page was not the expected form (for example a login redirect).
func ExtractToken(html string) (token string, ok bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	input := doc.Find("input[name=" + tokenField + "]").First()
	if input.Length() == 0 {
		return "", false
	}

	token, _ = input.Attr("value")
	if token == "" {
		return "", false
	}
	return token, true
}
