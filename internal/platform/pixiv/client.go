// Package pixiv is the HTTP client for the Pixiv app API: listing an
// account's bookmarked illustrations and fetching their original bytes.
package pixiv

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/ashmara/imagevault/internal/platform/biz"
	"github.com/ashmara/imagevault/internal/platform/types"
)

// Config configures the pixiv client.
type Config struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Validate validates the pixiv configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("pixiv: base_url is required")
	}
	return nil
}

// Client talks to the pixiv API on behalf of stored credentials.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// New creates a pixiv client.
func New(cfg *Config, log *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout)

	return &Client{
		http:   http,
		logger: log,
	}, nil
}

type illust struct {
	ID             int64 `json:"id"`
	MetaSinglePage struct {
		OriginalImageURL string `json:"original_image_url"`
	} `json:"meta_single_page"`
	MetaPages []struct {
		ImageURLs struct {
			Original string `json:"original"`
		} `json:"image_urls"`
	} `json:"meta_pages"`
	ImageURLs struct {
		Large string `json:"large"`
	} `json:"image_urls"`
}

type bookmarksPage struct {
	Illusts []illust `json:"illusts"`
	NextURL string   `json:"next_url"`
}

// ListBookmarks returns the bookmarked works of the credential's account,
// following pagination. Private bookmarks are included when the credential
// asks for them.
func (c *Client) ListBookmarks(ctx context.Context, cred *types.Credential) ([]types.RemoteItem, error) {
	restricts := []string{"public"}
	if cred.IncludePrivate {
		restricts = append(restricts, "private")
	}

	var items []types.RemoteItem
	for _, restrict := range restricts {
		params := map[string]string{
			"user_id":  cred.RemoteUserID,
			"restrict": restrict,
		}
		nextURL := ""
		for {
			page, err := c.fetchBookmarks(ctx, cred, params, nextURL)
			if err != nil {
				return nil, err
			}
			items = append(items, c.toItems(page.Illusts)...)
			if page.NextURL == "" {
				break
			}
			nextURL = page.NextURL
		}
	}
	return items, nil
}

// fetchBookmarks requests one bookmark page, either the first (query params)
// or a follow-up (absolute next url).
func (c *Client) fetchBookmarks(ctx context.Context, cred *types.Credential, params map[string]string, nextURL string) (*bookmarksPage, error) {
	var page bookmarksPage
	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(cred.AccessToken).
		SetResult(&page)

	url := "/v1/user/bookmarks/illust"
	if nextURL != "" {
		url = nextURL
	} else {
		req.SetQueryParams(params)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("pixiv request failed: %w", err)
	}
	if err := apiError(resp); err != nil {
		return nil, err
	}
	return &page, nil
}

// Download fetches the original bytes of one work. Pixiv's CDN rejects
// requests without a pixiv referer.
func (c *Client) Download(ctx context.Context, cred *types.Credential, item types.RemoteItem) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(cred.AccessToken).
		SetHeader("Referer", "https://www.pixiv.net/").
		Get(item.URL)
	if err != nil {
		return nil, fmt.Errorf("pixiv download failed: %w", err)
	}
	if err := apiError(resp); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (c *Client) toItems(illusts []illust) []types.RemoteItem {
	items := make([]types.RemoteItem, 0, len(illusts))
	for _, il := range illusts {
		url := il.MetaSinglePage.OriginalImageURL
		if url == "" && len(il.MetaPages) > 0 {
			url = il.MetaPages[0].ImageURLs.Original
		}
		if url == "" {
			url = il.ImageURLs.Large
		}
		if url == "" {
			c.logger.Debug("bookmark without image url, skipping",
				zap.Int64("illust_id", il.ID),
			)
			continue
		}
		items = append(items, types.RemoteItem{
			ID:  strconv.FormatInt(il.ID, 10),
			URL: url,
		})
	}
	return items
}

// apiError maps response status onto the client failure kinds the
// reconciler distinguishes.
func apiError(resp *resty.Response) error {
	switch {
	case resp.StatusCode() == 401 || resp.StatusCode() == 403:
		return fmt.Errorf("%w: status %d", biz.ErrAuthFailed, resp.StatusCode())
	case resp.StatusCode() == 429:
		return biz.ErrRateLimited
	case resp.IsError():
		return fmt.Errorf("%w: status %d", biz.ErrRemoteAPI, resp.StatusCode())
	default:
		return nil
	}
}
