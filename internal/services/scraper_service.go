package services

import (
	"context"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	defaultCommunityName        = "Garje Marathi Global"
	defaultCommunityDescription = "A global community platform for Marathi professionals and enthusiasts."
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// CommunityInfo is what we know about the community itself, scraped from the
// public website.
type CommunityInfo struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	ContactEmail string `json:"contact_email,omitempty"`
}

// ScraperService pulls name, description and contact email off the community
// homepage. Any failure falls back to static defaults so startup never blocks
// on the website being up.
type ScraperService struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewScraperService(baseURL string) *ScraperService {
	return &ScraperService{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *ScraperService) ScrapeHomepage(ctx context.Context) CommunityInfo {
	fallback := CommunityInfo{
		Name:        defaultCommunityName,
		Description: defaultCommunityDescription,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL, nil)
	if err != nil {
		return fallback
	}
	req.Header.Set("User-Agent", "GarjeMarathiAI/1.0")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		log.Printf("⚠️ Failed to scrape homepage: %v", err)
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("⚠️ Homepage returned status %d", resp.StatusCode)
		return fallback
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		log.Printf("⚠️ Failed to parse homepage HTML: %v", err)
		return fallback
	}

	info := fallback

	// Community name: <title> text before the first "|"
	if title := nodeText(findNode(doc, "title")); title != "" {
		if idx := strings.Index(title, "|"); idx >= 0 {
			title = title[:idx]
		}
		if title = strings.TrimSpace(title); title != "" {
			info.Name = title
		}
	}

	if desc := extractDescription(doc); desc != "" {
		info.Description = desc
	}
	info.ContactEmail = extractEmail(doc)

	return info
}

// extractDescription prefers the meta description tag, then falls back to the
// first ~200 chars of visible page text.
func extractDescription(doc *html.Node) string {
	if meta := findMeta(doc, "description"); meta != "" {
		return meta
	}

	// Prefer <main>, then whatever the body has
	content := findNode(doc, "main")
	if content == nil {
		content = findNode(doc, "body")
	}
	if content == nil {
		return ""
	}

	text := strings.Join(strings.Fields(nodeText(content)), " ")
	return strings.TrimSpace(truncateRunes(text, 200))
}

func extractEmail(doc *html.Node) string {
	// mailto links are the most reliable signal
	var mailto string
	walkNodes(doc, func(n *html.Node) {
		if mailto != "" || n.Type != html.ElementNode || n.Data != "a" {
			return
		}
		for _, attr := range n.Attr {
			if attr.Key == "href" && strings.HasPrefix(attr.Val, "mailto:") {
				mailto = strings.TrimPrefix(attr.Val, "mailto:")
				return
			}
		}
	})
	if mailto != "" {
		return mailto
	}

	// otherwise grab anything that looks like an email in the page text
	return emailPattern.FindString(nodeText(doc))
}

// --- HTML walking helpers ---

func walkNodes(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkNodes(c, fn)
	}
}

func findNode(doc *html.Node, tag string) *html.Node {
	var found *html.Node
	walkNodes(doc, func(n *html.Node) {
		if found == nil && n.Type == html.ElementNode && n.Data == tag {
			found = n
		}
	})
	return found
}

func findMeta(doc *html.Node, name string) string {
	var content string
	walkNodes(doc, func(n *html.Node) {
		if content != "" || n.Type != html.ElementNode || n.Data != "meta" {
			return
		}
		var metaName, metaContent string
		for _, attr := range n.Attr {
			switch attr.Key {
			case "name":
				metaName = attr.Val
			case "content":
				metaContent = attr.Val
			}
		}
		if metaName == name && metaContent != "" {
			content = metaContent
		}
	})
	return content
}

func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	walkNodes(n, func(c *html.Node) {
		// skip script/style bodies, they are not visible text
		if c.Type == html.TextNode && c.Parent != nil &&
			c.Parent.Data != "script" && c.Parent.Data != "style" {
			sb.WriteString(c.Data)
			sb.WriteString(" ")
		}
	})
	return strings.TrimSpace(sb.String())
}
