package images

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nexustopic/autoblog/internal/logger"
)

const unsplashSearchURL = "https://api.unsplash.com/search/photos"

// UnsplashPhoto is one search result with the attribution the API
// guidelines require us to keep.
type UnsplashPhoto struct {
	URL              string
	PhotographerName string
	PhotographerURL  string
	PhotoPageURL     string
}

type UnsplashClient struct {
	client    *http.Client
	accessKey string
	searchURL string
}

func NewUnsplashClient(client *http.Client, accessKey string) *UnsplashClient {
	return &UnsplashClient{client: client, accessKey: accessKey, searchURL: unsplashSearchURL}
}

type unsplashResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
			Small   string `json:"small"`
		} `json:"urls"`
		User struct {
			Name  string `json:"name"`
			Links struct {
				HTML string `json:"html"`
			} `json:"links"`
		} `json:"user"`
		Links struct {
			HTML             string `json:"html"`
			DownloadLocation string `json:"download_location"`
		} `json:"links"`
	} `json:"results"`
}

// Search returns the first landscape photo for a query, or nil when nothing
// matches. It pings the download endpoint as the Unsplash guidelines ask.
func (c *UnsplashClient) Search(ctx context.Context, query string) (*UnsplashPhoto, error) {
	params := url.Values{
		"query":          {query},
		"orientation":    {"landscape"},
		"content_filter": {"high"},
		"per_page":       {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unsplash request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unsplash returned status %d", resp.StatusCode)
	}

	var data unsplashResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode unsplash response: %w", err)
	}
	if len(data.Results) == 0 {
		logger.Info("No Unsplash images found", "query", query)
		return nil, nil
	}

	photo := data.Results[0]
	imageURL := photo.URLs.Regular
	if imageURL == "" {
		imageURL = photo.URLs.Small
	}

	c.trackDownload(ctx, photo.Links.DownloadLocation)

	return &UnsplashPhoto{
		URL:              imageURL,
		PhotographerName: photo.User.Name,
		PhotographerURL:  photo.User.Links.HTML,
		PhotoPageURL:     photo.Links.HTML,
	}, nil
}

// trackDownload fires the download event required by the Unsplash API
// terms. Failures are ignored, the image is still usable.
func (c *UnsplashClient) trackDownload(ctx context.Context, location string) {
	if location == "" {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Debug("Unsplash download ping failed", "error", err)
		return
	}
	resp.Body.Close()
}
