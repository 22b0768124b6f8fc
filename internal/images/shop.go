package images

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"printbase/internal/config"
)

// Product is one artwork listing scraped from the shop.
type Product struct {
	Title    string
	ImageURL string
	Slug     string
}

// Client fetches product listings from the artist's shop site. The shop
// serves a JSON view of each collection when asked with format=json;
// when that shape is missing the client falls back to scraping the
// rendered HTML.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.ShopTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.ShopRateLimitRPS),
	}
}

func (c *Client) FetchProducts(ctx context.Context) ([]Product, error) {
	if strings.TrimSpace(c.cfg.ShopURL) == "" {
		return nil, errors.New("missing SHOP_URL")
	}

	jsonURL, err := withFormatJSON(c.cfg.ShopURL)
	if err != nil {
		return nil, err
	}

	body, contentType, err := c.fetch(ctx, jsonURL)
	if err != nil {
		return nil, err
	}

	if strings.Contains(contentType, "json") {
		products, err := parseShopJSON(body)
		if err == nil && len(products) > 0 {
			return products, nil
		}
	}

	// Some themes ignore format=json and return the rendered page.
	body, _, err = c.fetch(ctx, c.cfg.ShopURL)
	if err != nil {
		return nil, err
	}
	return parseShopHTML(body, c.cfg.ShopURL)
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, "", err
		}
		req.Header.Set("Accept", "application/json, text/html")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 3 {
				time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
				lastErr = fmt.Errorf("shop status %d", resp.StatusCode)
				continue
			}
			return nil, "", fmt.Errorf("shop error: status=%d url=%s", resp.StatusCode, rawURL)
		}
		return body, resp.Header.Get("Content-Type"), nil
	}
	if lastErr == nil {
		lastErr = errors.New("shop request failed")
	}
	return nil, "", lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func withFormatJSON(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("format", "json")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type shopPayload struct {
	Items      []shopItem `json:"items"`
	Collection *struct {
		Items []shopItem `json:"items"`
	} `json:"collection"`
}

type shopItem struct {
	Title     string     `json:"title"`
	URLID     string     `json:"urlId"`
	AssetURL  string     `json:"assetUrl"`
	Items     []shopItem `json:"items"`
	MainImage *struct {
		AssetURL string `json:"assetUrl"`
	} `json:"mainImage"`
}

func parseShopJSON(body []byte) ([]Product, error) {
	var payload shopPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	items := payload.Items
	if len(items) == 0 && payload.Collection != nil {
		items = payload.Collection.Items
	}

	var products []Product
	for _, item := range items {
		imageURL := item.AssetURL
		if imageURL == "" && len(item.Items) > 0 {
			imageURL = item.Items[0].AssetURL
		}
		if imageURL == "" && item.MainImage != nil {
			imageURL = item.MainImage.AssetURL
		}
		if item.Title == "" || imageURL == "" {
			continue
		}
		products = append(products, Product{
			Title:    item.Title,
			ImageURL: imageURL,
			Slug:     item.URLID,
		})
	}
	return products, nil
}

func parseShopHTML(body []byte, baseURL string) ([]Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	var products []Product
	doc.Find(".grid-item, .products .product, article.product").Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Find(".grid-title, .product-title, h2, h3").First().Text())
		img := sel.Find("img").First()
		src, ok := img.Attr("data-src")
		if !ok {
			src, ok = img.Attr("src")
		}
		if title == "" || !ok || src == "" {
			return
		}
		if ref, err := url.Parse(src); err == nil {
			src = base.ResolveReference(ref).String()
		}

		slug := ""
		if href, ok := sel.Find("a").First().Attr("href"); ok {
			slug = strings.Trim(href, "/")
			if i := strings.LastIndex(slug, "/"); i >= 0 {
				slug = slug[i+1:]
			}
		}
		products = append(products, Product{Title: title, ImageURL: src, Slug: slug})
	})
	return products, nil
}
