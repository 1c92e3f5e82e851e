// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package collector

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/fieldreport/sentinel/internal/errkind"
	"github.com/fieldreport/sentinel/internal/logging"
	"github.com/fieldreport/sentinel/internal/models"
)

// apiResult is the shared JSON shape returned by both the Search API and
// News API strategies (§4.C strategies 1-2): a page of results, each
// either already reduced to text or carrying the raw HTML of the
// article page to be reduced with extractBodyText.
type apiResult struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	HTML        string    `json:"html"`
	PublishedAt time.Time `json:"published_at"`
}

type apiResponse struct {
	Results []apiResult `json:"results"`
}

// buildSearchAPIURL constructs a request for strategy 1: one page of
// results for query, restricted to the last window.
func buildSearchAPIURL(endpoint, query string, window time.Duration) string {
	q := url.Values{}
	q.Set("q", query)
	q.Set("window", window.String())
	return fmt.Sprintf("%s?%s", endpoint, q.Encode())
}

// buildNewsAPIURL constructs a request for strategy 2: the last-window
// articles for a conflict-keyword cohort.
func buildNewsAPIURL(endpoint, keywordCohort string, window time.Duration) string {
	q := url.Values{}
	q.Set("keywords", keywordCohort)
	q.Set("window", window.String())
	return fmt.Sprintf("%s?%s", endpoint, q.Encode())
}

// parseAPIResponse turns one Search/News API response body into Article
// drafts, reducing any raw-HTML result to text via extractBodyText.
func parseAPIResponse(respBody []byte, source *models.Source, query string, round models.DiscoveryRound) ([]*models.Article, error) {
	var resp apiResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, errkind.New(errkind.Parse, "collector", err)
	}

	articles := make([]*models.Article, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.URL == "" {
			continue
		}
		text := r.Content
		if text == "" && r.HTML != "" {
			extracted, err := extractBodyText(r.HTML)
			if err != nil {
				logging.Warn().Err(err).Str("url", r.URL).Msg("collector: skipping article, body extraction failed")
				continue
			}
			text = extracted
		}
		if text == "" {
			continue
		}

		published := r.PublishedAt
		if published.IsZero() {
			published = time.Now()
		}

		articles = append(articles, &models.Article{
			URL:            models.CanonicalizeURL(r.URL),
			Headline:       r.Title,
			Body:           text,
			PublishedAt:    published,
			SourceID:       source.ID,
			DiscoveryRound: round,
			DiscoveryQuery: query,
		})
	}
	return articles, nil
}

// rssFeed is the minimal RSS 2.0 shape strategy 3 needs.
type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// rssDateLayouts are tried in order; RFC1123Z is the RSS 2.0 spec
// default, RFC3339 covers Atom-flavored feeds registered under the same
// RSS source kind.
var rssDateLayouts = []string{time.RFC1123Z, time.RFC1123, time.RFC3339}

// parseRSSFeed turns one RSS feed body into Article drafts. RSS is
// fetched, not queried, so every item is tagged with the empty query.
func parseRSSFeed(feedBody []byte, source *models.Source, round models.DiscoveryRound) ([]*models.Article, error) {
	var feed rssFeed
	if err := xml.Unmarshal(feedBody, &feed); err != nil {
		return nil, errkind.New(errkind.Parse, "collector", err)
	}

	articles := make([]*models.Article, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		if item.Link == "" {
			continue
		}
		text := collapseWhitespace(item.Description)
		if text == "" {
			continue
		}

		articles = append(articles, &models.Article{
			URL:            models.CanonicalizeURL(item.Link),
			Headline:       item.Title,
			Body:           text,
			PublishedAt:    parseRSSDate(item.PubDate),
			SourceID:       source.ID,
			DiscoveryRound: round,
		})
	}
	return articles, nil
}

func parseRSSDate(raw string) time.Time {
	for _, layout := range rssDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Now()
}
