package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
)

const summarySystemPrompt = `You are a helpful data analyst that explains forecast results in simple, natural language.
Provide a clear summary that anyone can understand, focusing on:
1. What the forecast shows overall
2. Key trends and patterns
3. Important highs and lows
4. Practical implications
Keep it concise but informative, and avoid technical jargon.`

type forecastStats struct {
	avg       float64
	max       float64
	min       float64
	maxDate   string
	minDate   string
	trend     string
	trendPct  float64
	pointsLen int
}

func computeStats(points []Point) forecastStats {
	stats := forecastStats{pointsLen: len(points), max: math.Inf(-1), min: math.Inf(1)}
	var sum float64
	for _, point := range points {
		sum += point.YHat
		if point.YHat > stats.max {
			stats.max = point.YHat
			stats.maxDate = point.DS
		}
		if point.YHat < stats.min {
			stats.min = point.YHat
			stats.minDate = point.DS
		}
	}
	stats.avg = sum / float64(len(points))

	first := points[0].YHat
	last := points[len(points)-1].YHat
	switch {
	case last > first:
		stats.trend = "increasing"
	case last < first:
		stats.trend = "decreasing"
	default:
		stats.trend = "stable"
	}
	if first != 0 {
		stats.trendPct = math.Abs((last - first) / first * 100)
	}
	return stats
}

// Summarize explains the forecast in natural language via the completion
// service, falling back to a deterministic summary when the service is
// unavailable. It always returns usable text.
func (s *Service) Summarize(ctx context.Context, question string, points []Point) string {
	if len(points) == 0 {
		return "No forecast data available to generate summary."
	}

	if s.completer != nil {
		stats := computeStats(points)
		userPrompt := fmt.Sprintf(`Based on the user's question: %q

Here are the sales forecast results for the next %d days:
- Average daily sales: $%.2f
- Maximum sales: $%.2f (on %s)
- Minimum sales: $%.2f (on %s)
- Overall trend: %s (%.1f%% change from start to end)

Please provide a clear, natural language summary that explains what this forecast means in simple terms.`,
			question, stats.pointsLen, stats.avg, stats.max, stats.maxDate, stats.min, stats.minDate, stats.trend, stats.trendPct)

		summary, err := s.completer.Complete(ctx, summarySystemPrompt, userPrompt, 0.3)
		if err == nil && strings.TrimSpace(summary) != "" {
			return summary
		}
		if s.logger != nil {
			s.logger.WarnContext(ctx, "summary completion failed, using fallback", slog.Any("error", err))
		}
	}
	return simpleSummary(question, points)
}

// simpleSummary is the completion-free fallback.
func simpleSummary(question string, points []Point) string {
	stats := computeStats(points)

	var b strings.Builder
	fmt.Fprintf(&b, "Based on your question about %q, the sales forecast shows:\n\n", question)
	fmt.Fprintf(&b, "- The average daily sales over the next %d days will be $%.2f\n", stats.pointsLen, stats.avg)
	fmt.Fprintf(&b, "- The forecast indicates a %s trend, with a %.1f%% change from start to end\n", stats.trend, stats.trendPct)
	fmt.Fprintf(&b, "- The highest predicted sales is $%.2f on %s\n", stats.max, stats.maxDate)
	fmt.Fprintf(&b, "- The lowest predicted sales is $%.2f on %s\n\n", stats.min, stats.minDate)
	b.WriteString("These predictions include uncertainty ranges, meaning actual sales may vary within the predicted confidence intervals.")
	return b.String()
}
