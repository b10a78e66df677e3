package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/atlas/internal/atlassian"
)

// GetUserProfile resolves a user by email, username, or account ID. It
// tries the search endpoint first, then falls back to a direct lookup;
// credential and transport failures stop the chain immediately.
func (c *Client) GetUserProfile(ctx context.Context, identifier string) (atlassian.Result, error) {
	if identifier == "" {
		return nil, atlassian.Validationf("user_identifier is required")
	}

	users, resp, err := c.jira.User.FindWithContext(ctx, identifier, jira.WithMaxResults(1))
	if err == nil && len(users) > 0 {
		return simplifyUser(&users[0]), nil
	}
	if err != nil {
		classified := classify(resp, err)
		if !retryableLookupFailure(classified) {
			return nil, classified
		}
	}

	user, err := c.lookupUser(ctx, identifier)
	if err != nil {
		classified := atlassian.AsError(err)
		if retryableLookupFailure(classified) {
			return nil, atlassian.NotFoundf("User not found: %s", identifier)
		}
		return nil, classified
	}

	return simplifyUser(user), nil
}

// lookupUser hits the direct user endpoint, keyed by account ID on Cloud
// and by username on Data Center.
func (c *Client) lookupUser(ctx context.Context, identifier string) (*jira.User, error) {
	params := url.Values{}
	if c.cloud {
		params.Set("accountId", identifier)
	} else {
		params.Set("username", identifier)
	}

	endpoint := fmt.Sprintf("rest/api/2/user?%s", params.Encode())
	req, err := c.jira.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, atlassian.Validationf("Invalid request: %v", err)
	}

	user := new(jira.User)
	resp, err := c.jira.Do(req, user)
	if err != nil {
		return nil, classify(resp, err)
	}
	return user, nil
}

// retryableLookupFailure reports whether a lookup error is worth retrying
// against another endpoint. Auth, network, and validation failures are not.
func retryableLookupFailure(err error) bool {
	kind := atlassian.AsError(err).Kind
	return kind == atlassian.ErrNotFound || kind == atlassian.ErrAPI
}
