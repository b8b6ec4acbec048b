package knowledge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stocksense/pkg/logger"
)

// Definition is a term definition with its provenance. When the
// instant answer lookup cannot be reached the definition comes from
// the local set and FromFallback carries the reason.
type Definition struct {
	Term         string   `json:"term"`
	Definition   string   `json:"definition"`
	Related      []string `json:"related"`
	FromFallback bool     `json:"from_fallback"`
	Reason       string   `json:"reason,omitempty"`
}

// DefinitionClient resolves term definitions via the DuckDuckGo
// instant answer API.
type DefinitionClient struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

func NewDefinitionClient(timeout time.Duration) *DefinitionClient {
	return &DefinitionClient{
		baseURL: "https://api.duckduckgo.com",
		client:  &http.Client{Timeout: timeout},
		log:     logger.Get().With("component", "definition_lookup"),
	}
}

type instantAnswer struct {
	Abstract      string `json:"Abstract"`
	RelatedTopics []struct {
		Text string `json:"Text"`
	} `json:"RelatedTopics"`
}

// Lookup fetches the definition for a term. Any failure, from network
// errors to empty answers, yields the local fallback definition.
func (c *DefinitionClient) Lookup(ctx context.Context, term string) Definition {
	q := url.Values{}
	q.Set("q", term+" finance definition")
	q.Set("format", "json")
	q.Set("no_html", "1")
	q.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+q.Encode(), nil)
	if err != nil {
		return c.fallback(term, "request build failed")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return c.fallback(term, "lookup unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.fallback(term, "lookup returned "+resp.Status)
	}

	var answer instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return c.fallback(term, "lookup response unparseable")
	}
	if strings.TrimSpace(answer.Abstract) == "" {
		return c.fallback(term, "no instant answer")
	}

	related := make([]string, 0, 4)
	for _, t := range answer.RelatedTopics {
		if t.Text == "" {
			continue
		}
		related = append(related, t.Text)
		if len(related) == 4 {
			break
		}
	}

	return Definition{
		Term:       term,
		Definition: answer.Abstract,
		Related:    related,
	}
}

func (c *DefinitionClient) fallback(term, reason string) Definition {
	c.log.Debugw("definition lookup fell back", "term", term, "reason", reason)
	d := localDefinition(term)
	d.Reason = reason
	return d
}

func localDefinition(term string) Definition {
	key := strings.ToLower(strings.TrimSpace(term))
	if local, ok := localDefinitions[key]; ok {
		return Definition{
			Term:         term,
			Definition:   local.Definition,
			Related:      local.Related,
			FromFallback: true,
		}
	}
	return Definition{
		Term:         term,
		Definition:   "Financial term related to " + key,
		Related:      relatedConcepts(key),
		FromFallback: true,
	}
}
