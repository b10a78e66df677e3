// Package confluence adapts Confluence Cloud and Data Center content
// operations to the flat result/error envelope the tool layer expects.
package confluence

import (
	"github.com/danielolaszy/atlas/internal/atlassian"
	"github.com/danielolaszy/atlas/internal/config"
)

// Client handles interactions with the Confluence API.
type Client struct {
	rest *atlassian.Client
}

// NewClient creates a Confluence client from a validated configuration
// bundle. No network I/O happens here.
func NewClient(cfg config.ServiceConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rest, err := atlassian.NewClient(cfg.ClientOptions())
	if err != nil {
		return nil, err
	}
	return &Client{rest: rest}, nil
}

// page mirrors the content API payload for pages and comments.
type page struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Status string `json:"status"`
	Title  string `json:"title"`
	Space  *struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	} `json:"space"`
	Version *struct {
		Number int    `json:"number"`
		When   string `json:"when"`
		By     *struct {
			DisplayName string `json:"displayName"`
			Email       string `json:"email"`
		} `json:"by"`
	} `json:"version"`
	Body *struct {
		Storage struct {
			Value          string `json:"value"`
			Representation string `json:"representation"`
		} `json:"storage"`
	} `json:"body"`
	Links struct {
		WebUI string `json:"webui"`
	} `json:"_links"`
}

// contentList is the paginated wrapper the content API returns.
type contentList struct {
	Results []page `json:"results"`
	Start   int    `json:"start"`
	Limit   int    `json:"limit"`
	Size    int    `json:"size"`
}

// simplifyPage flattens a content record to its essential fields.
func (c *Client) simplifyPage(p *page) atlassian.Result {
	result := atlassian.Result{
		"id":      p.ID,
		"title":   p.Title,
		"content": "",
		"version": 0,
	}
	if p.Body != nil {
		result["content"] = p.Body.Storage.Value
		result["content_format"] = p.Body.Storage.Representation
	}
	if p.Space != nil {
		result["space_key"] = p.Space.Key
		result["space_name"] = p.Space.Name
	}
	if p.Version != nil {
		result["version"] = p.Version.Number
		result["last_modified"] = p.Version.When
		if p.Version.By != nil {
			result["last_modified_by"] = p.Version.By.DisplayName
		}
	}
	if p.Links.WebUI != "" {
		result["url"] = c.rest.BaseURL() + p.Links.WebUI
	}
	return result
}
