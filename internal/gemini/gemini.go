// Package gemini wraps the Google Gemini API for the small classification
// and vision tasks around article generation: category assignment, semantic
// duplicate checks, image search queries and cover-image generation.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/nexustopic/autoblog/internal/cache"
	"github.com/nexustopic/autoblog/internal/logger"
)

const (
	textModel  = "gemini-1.5-flash"
	imageModel = "gemini-2.5-flash-image"

	cacheTTL = 24 * time.Hour
)

// ValidCategories is the fixed set of article categories.
var ValidCategories = []string{
	"AI", "BIZ & IT", "CARS", "CULTURE", "GAMING", "HEALTH",
	"POLICY", "SCIENCE", "SECURITY", "SPACE", "TECH",
}

type Client struct {
	client *genai.Client
	cache  *cache.Cache
}

func NewClient(apiKey string) (*Client, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{client: client, cache: cache.New()}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func (c *Client) generateText(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(textModel)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return strings.TrimSpace(sb.String()), nil
}

// Classify assigns one category from ValidCategories to an article. Any
// failure or unrecognized answer keeps the fallback category.
func (c *Client) Classify(ctx context.Context, title, content, fallback string) string {
	if len(content) > 1000 {
		content = content[:1000]
	}

	key := c.cache.GenerateKey("classify", title, content)
	if cached, ok := c.cache.Get(key); ok {
		return cached.(string)
	}

	prompt := fmt.Sprintf(
		"Classify this article into exactly ONE category from this list: %s\n\n"+
			"Title: %s\nContent preview: %s\n\n"+
			"Reply with ONLY the category name, nothing else.",
		strings.Join(ValidCategories, ", "), title, content,
	)

	answer, err := c.generateText(ctx, prompt)
	if err != nil {
		logger.Warn("Classification failed", "title", title, "error", err)
		return fallback
	}

	category := strings.ToUpper(strings.TrimSpace(answer))
	if strings.Contains(category, "BIZ") {
		category = "BIZ & IT"
	}
	if !isValidCategory(category) {
		logger.Warn("Invalid category from model", "category", category, "title", title)
		return fallback
	}

	c.cache.Set(key, category, cacheTTL)
	return category
}

func isValidCategory(category string) bool {
	for _, c := range ValidCategories {
		if c == category {
			return true
		}
	}
	return false
}

// IsDuplicateTopic asks whether a candidate title covers the same topic as
// any of the existing titles (at most 50 are considered). The caller decides
// what to do on error; the pipeline treats errors as "not a duplicate".
func (c *Client) IsDuplicateTopic(ctx context.Context, title string, existing []string) (bool, error) {
	if len(existing) == 0 {
		return false, nil
	}
	if len(existing) > 50 {
		existing = existing[:50]
	}

	prompt := fmt.Sprintf(
		"Does this new article title cover the same topic as any of the existing titles?\n\n"+
			"New title: %s\n\nExisting titles:\n- %s\n\n"+
			"Reply with ONLY yes or no.",
		title, strings.Join(existing, "\n- "),
	)

	answer, err := c.generateText(ctx, prompt)
	if err != nil {
		return false, err
	}

	return strings.HasPrefix(strings.ToLower(answer), "yes"), nil
}

// ImageQuery suggests a short, concrete Unsplash search query for an
// article. Returns an error when the model is unavailable so the caller can
// fall back to title keywords.
func (c *Client) ImageQuery(ctx context.Context, title, topic, description string) (string, error) {
	key := c.cache.GenerateKey("imagequery", title, topic, description)
	if cached, ok := c.cache.Get(key); ok {
		return cached.(string), nil
	}

	prompt := fmt.Sprintf(
		"Generate a short Unsplash image search query (2-4 words) that would find "+
			"a visually relevant photo for this article. Focus on concrete, visual concepts "+
			"(objects, scenes, settings) rather than abstract ideas. Do NOT use brand names, "+
			"proper nouns, or product names - use generic visual descriptions instead.\n\n"+
			"Title: %s\nTopic: %s\nDescription: %s\n\n"+
			"Reply with ONLY the search query, nothing else.",
		title, topic, description,
	)

	answer, err := c.generateText(ctx, prompt)
	if err != nil {
		return "", err
	}

	query := strings.Trim(answer, `"'`)
	c.cache.Set(key, query, cacheTTL)
	return query, nil
}

// GenerateCoverImage asks the image model for an editorial cover and returns
// the raw image bytes with their MIME type.
func (c *Client) GenerateCoverImage(ctx context.Context, title, topic, description string) ([]byte, string, error) {
	prompt := fmt.Sprintf(
		"Generate a high-quality, photorealistic editorial cover image for a news article.\n"+
			"Title: %s\nTopic: %s\nDescription: %s\n\n"+
			"Requirements:\n"+
			"- Landscape orientation (16:9 aspect ratio)\n"+
			"- Clean, professional editorial style suitable for a news website\n"+
			"- No text, watermarks, logos, or UI elements in the image\n"+
			"- Vibrant but natural colors\n"+
			"- Focus on the core visual concept of the article topic",
		title, topic, description,
	)

	model := c.client.GenerativeModel(imageModel)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate image: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, "", fmt.Errorf("empty response from Gemini")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if blob, ok := part.(genai.Blob); ok && strings.HasPrefix(blob.MIMEType, "image/") {
			return blob.Data, blob.MIMEType, nil
		}
	}

	return nil, "", fmt.Errorf("response contained no image data")
}
