package laby

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNotFound signals that the upstream has no account for the queried
// identifier or name.
var ErrNotFound = errors.New("laby: not found")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client talks to the Laby.net v3 API. All lookups are single requests with
// a fixed timeout; failures are never retried.
type Client struct {
	http *resty.Client
	log  *slog.Logger
}

func New(baseURL string, log *slog.Logger) *Client {
	c := resty.New()
	c.SetBaseURL(baseURL)
	c.SetTimeout(15 * time.Second)
	c.SetHeader("User-Agent", userAgent)
	c.SetHeader("Accept", "application/json")

	return &Client{http: c, log: log}
}

// Profile fetches a player profile by username or UUID.
func (c *Client) Profile(ctx context.Context, identifier string) (*Profile, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get("/user/" + identifier + "/profile")
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if err := checkStatus(res); err != nil {
		return nil, err
	}

	var profile Profile
	if err := json.Unmarshal(res.Body(), &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	c.log.Debug("fetched_profile", "identifier", identifier, "name", profile.Name,
		"skins", len(profile.Textures.Skin), "capes", len(profile.Textures.Cape))
	return &profile, nil
}

// SearchProfiles looks up every account whose rename history contains the
// given name. Returns ErrNotFound when upstream reports no match.
func (c *Client) SearchProfiles(ctx context.Context, name string) ([]SearchAccount, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get("/search/profiles/" + name)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	if err := checkStatus(res); err != nil {
		return nil, err
	}

	var result struct {
		Users []SearchAccount `json:"users"`
	}
	if err := json.Unmarshal(res.Body(), &result); err != nil {
		return nil, fmt.Errorf("decode search result: %w", err)
	}
	return result.Users, nil
}

// TextureUserCount returns how many players use the given texture.
// kind is "cape" or "skin".
func (c *Client) TextureUserCount(ctx context.Context, hash, kind string) (int, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get("/texture/" + hash + "/" + kind + "/users")
	if err != nil {
		return 0, fmt.Errorf("fetch texture users: %w", err)
	}
	if err := checkStatus(res); err != nil {
		return 0, err
	}

	var result struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(res.Body(), &result); err != nil {
		return 0, fmt.Errorf("decode texture users: %w", err)
	}
	return result.Count, nil
}

// SkinTags returns the community tags attached to a skin texture.
func (c *Client) SkinTags(ctx context.Context, hash string) ([]Tag, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get("/texture/" + hash + "/skin/tags")
	if err != nil {
		return nil, fmt.Errorf("fetch skin tags: %w", err)
	}
	if err := checkStatus(res); err != nil {
		return nil, err
	}

	var result struct {
		Tags []Tag `json:"tags"`
	}
	if err := json.Unmarshal(res.Body(), &result); err != nil {
		return nil, fmt.Errorf("decode skin tags: %w", err)
	}
	return result.Tags, nil
}

// NamesQuery filters the upcoming-names listing. Zero lengths mean the
// upstream default range (3-16).
type NamesQuery struct {
	MinLength int
	MaxLength int
}

// UpcomingNames lists names ordered by the instant they become claimable.
func (c *Client) UpcomingNames(ctx context.Context, q NamesQuery) ([]UpcomingName, error) {
	minLen, maxLen := q.MinLength, q.MaxLength
	if minLen == 0 {
		minLen = 3
	}
	if maxLen == 0 {
		maxLen = 16
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"order_by":   "available_from",
			"order":      "ASC",
			"page":       "1",
			"popularity": "0",
			"min_length": strconv.Itoa(minLen),
			"max_length": strconv.Itoa(maxLen),
			"is_og":      "none",
		}).
		Get("/names")
	if err != nil {
		return nil, fmt.Errorf("fetch names: %w", err)
	}
	if err := checkStatus(res); err != nil {
		return nil, err
	}

	var names []UpcomingName
	if err := json.Unmarshal(res.Body(), &names); err != nil {
		return nil, fmt.Errorf("decode names: %w", err)
	}
	return names, nil
}

// checkStatus converts upstream error responses. A 404, or an error body
// naming a missing user, maps to ErrNotFound; anything else non-2xx is a
// generic upstream failure.
func checkStatus(res *resty.Response) error {
	if res.IsSuccess() {
		return nil
	}
	if res.StatusCode() == http.StatusNotFound {
		return ErrNotFound
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(res.Body(), &body); err == nil && body.Error == "User not found" {
		return ErrNotFound
	}
	return fmt.Errorf("laby: unexpected status %d", res.StatusCode())
}
