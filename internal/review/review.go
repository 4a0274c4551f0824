// Package review scores rendered pages with a vision model.
//
// Review never fails: any model, transport or parsing error yields the
// degraded result from Degraded, and the error is only logged.
package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Limits on a single page review.
const (
	MaxIssues      = 3
	MaxSuggestions = 3
	MinScore       = 1
	MaxScore       = 10
)

// Degraded result values.
const (
	UnavailableIssue   = "AI review unavailable"
	ManualReviewAdvice = "Manual review recommended"
	DegradedScore      = 7
)

const (
	defaultImageMIME    = "image/png"
	maxLoggedRawPayload = 200
)

// ErrMalformedResponse indicates the model reply could not be decoded.
var ErrMalformedResponse = errors.New("malformed review response")

// Prompt instructs the model to return the review JSON object.
const Prompt = `You are reviewing one rendered page of a professionally styled document.
Evaluate typography, spacing, alignment, hierarchy of headings, image placement and overall visual quality.
Reply with a JSON object only, using this shape:
{"issues": ["..."], "suggestions": ["..."], "score": 8}
List at most 3 issues and at most 3 suggestions. The score is an integer from 1 (poor) to 10 (excellent).`

// Review is the assessment of one page.
type Review struct {
	Page        int      `json:"page"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
	Score       int      `json:"score"`
}

// Degraded returns the fallback review for page.
func Degraded(page int) Review {
	return Review{
		Page:        page,
		Issues:      []string{UnavailableIssue},
		Suggestions: []string{ManualReviewAdvice},
		Score:       DegradedScore,
	}
}

// Model sends a prompt and one image to a vision model and returns its raw
// text reply.
type Model interface {
	Evaluate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// Reviewer scores page images.
type Reviewer struct {
	model Model
	log   *zap.Logger
}

// NewReviewer creates a Reviewer. A nil model makes every review degraded;
// a nil logger disables logging.
func NewReviewer(model Model, log *zap.Logger) *Reviewer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reviewer{model: model, log: log}
}

// Review scores one page image. page is 1-based.
func (r *Reviewer) Review(ctx context.Context, page int, image []byte) Review {
	if r.model == nil {
		r.log.Warn("AI review not configured, using fallback", zap.Int("page", page))
		return Degraded(page)
	}
	if len(image) == 0 {
		r.log.Warn("empty page image, using fallback", zap.Int("page", page))
		return Degraded(page)
	}

	text, err := r.model.Evaluate(ctx, Prompt, image, detectImageMIME(image))
	if err != nil {
		r.log.Warn("AI review failed, using fallback", zap.Int("page", page), zap.Error(err))
		return Degraded(page)
	}

	rev, err := Parse(text)
	if err != nil {
		r.log.Warn("AI review unreadable, using fallback",
			zap.Int("page", page),
			zap.Error(err),
			zap.String("reply", truncate(text, maxLoggedRawPayload)))
		return Degraded(page)
	}
	rev.Page = page
	return rev
}

// ReviewAll scores pages in order. Page numbers start at 1.
func (r *Reviewer) ReviewAll(ctx context.Context, images [][]byte) []Review {
	out := make([]Review, 0, len(images))
	for i, img := range images {
		if ctx.Err() != nil {
			out = append(out, Degraded(i+1))
			continue
		}
		out = append(out, r.Review(ctx, i+1, img))
	}
	return out
}

// Parse decodes a model reply. Code fences around the JSON are tolerated.
// Lists are trimmed to their limits and the score is clamped to 1-10.
func Parse(text string) (Review, error) {
	body := extractJSON(text)
	if body == "" {
		return Review{}, fmt.Errorf("%w: no JSON object", ErrMalformedResponse)
	}

	var raw struct {
		Issues      []string `json:"issues"`
		Suggestions []string `json:"suggestions"`
		Score       *float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return Review{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if raw.Score == nil {
		return Review{}, fmt.Errorf("%w: missing score", ErrMalformedResponse)
	}

	return Review{
		Issues:      limit(raw.Issues, MaxIssues),
		Suggestions: limit(raw.Suggestions, MaxSuggestions),
		Score:       clampScore(*raw.Score),
	}, nil
}

// AverageScore returns the mean score of reviews, or 0 when there are none.
func AverageScore(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	total := 0
	for _, r := range reviews {
		total += r.Score
	}
	return float64(total) / float64(len(reviews))
}

// extractJSON returns the outermost {...} span of text.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return ""
	}
	return text[start : end+1]
}

func limit(items []string, n int) []string {
	out := make([]string, 0, n)
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		out = append(out, it)
		if len(out) == n {
			break
		}
	}
	return out
}

// clampScore rounds v into [MinScore, MaxScore]. The float is clamped before
// conversion since int() of an out-of-range float is implementation-defined.
// NaN maps to MinScore.
func clampScore(v float64) int {
	if math.IsNaN(v) || v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return int(math.Round(v))
}

func detectImageMIME(data []byte) string {
	mt := http.DetectContentType(data)
	if strings.HasPrefix(mt, "image/") {
		return mt
	}
	return defaultImageMIME
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
