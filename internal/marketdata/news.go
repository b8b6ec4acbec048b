package marketdata

import (
	"context"
	"net/url"
	"strings"
	"time"

	"stocksense/internal/adapters/config"
)

const newsBaseURL = "https://newsapi.org/v2"

// ArticleCategory buckets an article's subject
type ArticleCategory string

const (
	CategoryPolitics   ArticleCategory = "politics"
	CategoryBusiness   ArticleCategory = "business"
	CategoryTechnology ArticleCategory = "technology"
	CategoryGeneral    ArticleCategory = "general"
)

// Impact grades an article's expected market impact
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// ArticleSentiment is the keyword-derived tone of an article
type ArticleSentiment string

const (
	SentimentPositive ArticleSentiment = "positive"
	SentimentNegative ArticleSentiment = "negative"
	SentimentNeutral ArticleSentiment = "neutral"
)

// Article is a market news item enriched with impact analysis
type Article struct {
	SourceName      string           `json:"sourceName"`
	Author          string           `json:"author,omitempty"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	URL             string           `json:"url"`
	PublishedAt     time.Time        `json:"publishedAt"`
	Category        ArticleCategory  `json:"category"`
	Impact          Impact           `json:"impact"`
	AffectedSectors []string         `json:"affectedSectors"`
	Sentiment       ArticleSentiment `json:"sentiment"`
}

// NewsClient fetches market headlines, degrading to canned payloads on
// any failure
type NewsClient struct {
	http *httpClient
}

func NewNewsClient(cfg config.ProviderConfig) *NewsClient {
	return &NewsClient{
		http: newHTTPClient("newsapi", newsBaseURL, cfg.NewsAPIKey, "apiKey", cfg.HTTPTimeout, cfg.RatePerSecond),
	}
}

type rawArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

type articlesPayload struct {
	Articles []rawArticle `json:"articles"`
}

// Breaking returns top business headlines
func (c *NewsClient) Breaking(ctx context.Context) Result[[]Article] {
	const endpoint = "/top-headlines"

	params := url.Values{}
	params.Set("category", "business")
	params.Set("country", "us")
	params.Set("pageSize", "10")

	var payload articlesPayload
	if err := c.http.getJSON(ctx, endpoint, params, &payload); err != nil {
		return Fallback(enhance(mockBreakingNews(time.Now()), nil), c.http.fellBack(endpoint, err))
	}

	c.http.live(endpoint)
	return Live(enhance(payload.Articles, nil))
}

// Political returns market-relevant political news
func (c *NewsClient) Political(ctx context.Context) Result[[]Article] {
	const endpoint = "/everything"

	params := url.Values{}
	params.Set("q", "politics AND (market OR economy OR trade OR regulation OR policy)")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", "15")
	params.Set("language", "en")

	var payload articlesPayload
	if err := c.http.getJSON(ctx, endpoint, params, &payload); err != nil {
		return Fallback(enhance(mockPoliticalNews(time.Now()), nil), c.http.fellBack(endpoint, err))
	}

	c.http.live(endpoint)
	return Live(enhance(payload.Articles, nil))
}

// SectorNews returns recent news per requested sector
func (c *NewsClient) SectorNews(ctx context.Context, sectors []string) Result[map[string][]Article] {
	const endpoint = "/everything"

	out := make(map[string][]Article, len(sectors))
	allLive := true
	var reason string

	for _, sector := range sectors {
		params := url.Values{}
		params.Set("q", sectorQuery(sector))
		params.Set("sortBy", "publishedAt")
		params.Set("pageSize", "5")
		params.Set("language", "en")

		var payload articlesPayload
		if err := c.http.getJSON(ctx, endpoint, params, &payload); err != nil {
			allLive = false
			reason = c.http.fellBack(endpoint, err)
			out[sector] = enhance(mockSectorNews(time.Now()), []string{sector})
			continue
		}
		c.http.live(endpoint)
		out[sector] = enhance(payload.Articles, []string{sector})
	}

	if !allLive {
		return Fallback(out, reason)
	}
	return Live(out)
}

// enhance classifies raw articles into enriched ones. Sectors override
// detection when the caller already scoped the query to a sector.
func enhance(raw []rawArticle, sectors []string) []Article {
	out := make([]Article, 0, len(raw))
	for _, a := range raw {
		affected := sectors
		if len(affected) == 0 {
			affected = affectedSectors(a.Title, a.Description)
		}
		out = append(out, Article{
			SourceName:      a.Source.Name,
			Author:          a.Author,
			Title:           a.Title,
			Description:     a.Description,
			URL:             a.URL,
			PublishedAt:     a.PublishedAt,
			Category:        categorize(a.Title, a.Description),
			Impact:          assessImpact(a.Title, a.Description),
			AffectedSectors: affected,
			Sentiment:       articleSentiment(a.Title, a.Description),
		})
	}
	return out
}

var (
	highImpactKeywords = []string{
		"breaking", "federal reserve", "interest rate", "inflation", "recession",
		"crisis", "bankruptcy", "merger", "acquisition", "earnings beat", "earnings miss",
	}
	mediumImpactKeywords = []string{
		"regulation", "policy", "guidance", "forecast", "outlook", "upgrade", "downgrade",
	}
	positiveKeywords = []string{
		"gain", "growth", "profit", "beat", "exceed", "strong", "positive", "bullish", "upgrade", "success",
	}
	negativeKeywords = []string{
		"loss", "decline", "fall", "miss", "weak", "negative", "bearish", "downgrade", "crisis", "concern",
	}

	newsSectorKeywords = map[string][]string{
		"Technology":    {"tech", "ai", "software", "chip", "semiconductor", "cloud", "digital"},
		"Healthcare":    {"health", "pharma", "medical", "drug", "biotech", "vaccine"},
		"Finance":       {"bank", "financial", "credit", "loan", "payment", "fintech"},
		"Energy":        {"oil", "gas", "renewable", "solar", "wind", "energy"},
		"Consumer":      {"retail", "consumer", "shopping", "brand"},
		"Automotive":    {"auto", "car", "electric vehicle", "transportation"},
		"Real Estate":   {"real estate", "housing", "property", "mortgage"},
		"Aerospace":     {"aerospace", "defense", "airline", "aviation"},
		"Telecom":       {"telecom", "wireless", "mobile", "5g"},
		"Entertainment": {"media", "entertainment", "streaming", "gaming"},
	}

	sectorQueries = map[string]string{
		"Technology":    "technology OR tech OR AI OR software OR semiconductor OR chip",
		"Healthcare":    "healthcare OR pharma OR medical OR biotech OR drug",
		"Finance":       "finance OR bank OR fintech OR payment OR credit",
		"Energy":        "energy OR oil OR gas OR renewable OR solar",
		"Consumer":      "retail OR consumer OR brand OR shopping",
		"Automotive":    "automotive OR car OR electric vehicle OR EV",
		"Real Estate":   "real estate OR housing OR property OR REIT",
		"Aerospace":     "aerospace OR defense OR airline OR aviation",
		"Telecom":       "telecom OR wireless OR mobile OR 5G",
		"Entertainment": "entertainment OR media OR streaming OR gaming",
	}
)

func categorize(title, description string) ArticleCategory {
	text := strings.ToLower(title + " " + description)

	for _, kw := range []string{"politic", "congress", "senate", "government", "regulation", "policy"} {
		if strings.Contains(text, kw) {
			return CategoryPolitics
		}
	}
	for _, kw := range []string{"tech", "ai", "software", "chip", "semiconductor"} {
		if strings.Contains(text, kw) {
			return CategoryTechnology
		}
	}
	for _, kw := range []string{"business", "market", "stock", "earnings", "revenue"} {
		if strings.Contains(text, kw) {
			return CategoryBusiness
		}
	}
	return CategoryGeneral
}

func assessImpact(title, description string) Impact {
	text := strings.ToLower(title + " " + description)

	for _, kw := range highImpactKeywords {
		if strings.Contains(text, kw) {
			return ImpactHigh
		}
	}
	for _, kw := range mediumImpactKeywords {
		if strings.Contains(text, kw) {
			return ImpactMedium
		}
	}
	return ImpactLow
}

func affectedSectors(title, description string) []string {
	text := strings.ToLower(title + " " + description)

	var sectors []string
	for sector, keywords := range newsSectorKeywords {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				sectors = append(sectors, sector)
				break
			}
		}
	}
	return sectors
}

func articleSentiment(title, description string) ArticleSentiment {
	text := strings.ToLower(title + " " + description)

	var positive, negative int
	for _, kw := range positiveKeywords {
		if strings.Contains(text, kw) {
			positive++
		}
	}
	for _, kw := range negativeKeywords {
		if strings.Contains(text, kw) {
			negative++
		}
	}

	if positive > negative {
		return SentimentPositive
	}
	if negative > positive {
		return SentimentNegative
	}
	return SentimentNeutral
}

func sectorQuery(sector string) string {
	if q, ok := sectorQueries[sector]; ok {
		return q
	}
	return sector
}

func mockBreakingNews(now time.Time) []rawArticle {
	mk := func(source, author, title, description, link string, at time.Time) rawArticle {
		var a rawArticle
		a.Source.Name = source
		a.Author = author
		a.Title = title
		a.Description = description
		a.URL = link
		a.PublishedAt = at
		return a
	}
	return []rawArticle{
		mk("Reuters", "Reuters Staff",
			"Fed Signals Potential Rate Cut as Inflation Cools",
			"Federal Reserve officials hint at monetary policy changes following latest inflation data, potentially impacting all sectors.",
			"https://example.com/fed-rates", now),
		mk("Bloomberg", "Bloomberg News",
			"Tech Stocks Rally on AI Earnings Beat",
			"Major technology companies exceed earnings expectations, driven by artificial intelligence revenue growth.",
			"https://example.com/tech-rally", now),
		mk("CNBC", "",
			"Oil Prices Surge on Geopolitical Tensions",
			"Energy sector sees significant gains as international conflicts affect global oil supply chains.",
			"https://example.com/oil-surge", now.Add(-24*time.Hour)),
	}
}

func mockPoliticalNews(now time.Time) []rawArticle {
	mk := func(source, title, description, link string, at time.Time) rawArticle {
		var a rawArticle
		a.Source.Name = source
		a.Title = title
		a.Description = description
		a.URL = link
		a.PublishedAt = at
		return a
	}
	return []rawArticle{
		mk("Politico",
			"Senate Passes New Tech Regulation Bill",
			"Bipartisan legislation targets big tech companies with new privacy and antitrust measures, potentially affecting technology sector valuations.",
			"https://example.com/tech-regulation", now),
		mk("Washington Post",
			"Healthcare Policy Changes Under Congressional Review",
			"Proposed healthcare reforms could significantly impact pharmaceutical and insurance companies.",
			"https://example.com/healthcare-policy", now.Add(-24*time.Hour)),
	}
}

func mockSectorNews(now time.Time) []rawArticle {
	var a rawArticle
	a.Source.Name = "TechCrunch"
	a.Title = "AI Breakthrough Drives Semiconductor Demand"
	a.Description = "New artificial intelligence capabilities require advanced chip architectures, boosting semiconductor sector outlook."
	a.URL = "https://example.com/ai-chips"
	a.PublishedAt = now
	return []rawArticle{a}
}
