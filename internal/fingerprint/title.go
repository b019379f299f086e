package fingerprint

import (
	"strings"

	"golang.org/x/net/html"
)

// pageTitle returns the text of the first <title> element in body.
func pageTitle(body string) (string, bool) {
	if !strings.Contains(strings.ToLower(body), "<title") {
		return "", false
	}
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", false
	}

	var title string
	var found bool
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			found = true
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return title, found && title != ""
}
