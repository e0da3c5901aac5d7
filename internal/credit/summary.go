package credit

import (
	"fmt"
	"strings"
)

// Color is the traffic-light bucket of a score.
type Color string

const (
	ColorGreen  Color = "green"
	ColorOrange Color = "orange"
	ColorRed    Color = "red"
)

// ScoreColor buckets a score for display.
func ScoreColor(score int) Color {
	switch {
	case score >= 80:
		return ColorGreen
	case score >= 60:
		return ColorOrange
	default:
		return ColorRed
	}
}

func outlook(score int) string {
	switch {
	case score >= 80:
		return "shows excellent creditworthiness"
	case score >= 65:
		return "demonstrates strong financial health"
	case score >= 50:
		return "presents a moderate credit profile"
	case score >= 35:
		return "shows concerning credit indicators"
	default:
		return "exhibits high credit risk"
	}
}

func recommendation(score int) string {
	switch {
	case score >= 75:
		return "This represents a solid investment-grade credit profile."
	case score >= 60:
		return "Overall, this indicates an acceptable credit risk for most investors."
	case score >= 40:
		return "Investors should carefully evaluate the risk-reward profile."
	default:
		return "This credit profile suggests significant risk that requires careful consideration."
	}
}

// Findings splits an assessment into the strengths and concerns worth calling out.
func Findings(a CreditAssessment) (strengths, concerns []string) {
	debt := a.Contribution(ComponentDebtRatio)
	switch {
	case debt >= 15:
		strengths = append(strengths, "excellent debt management")
	case debt >= 5:
		strengths = append(strengths, "healthy debt levels")
	case debt <= -10:
		concerns = append(concerns, "high debt burden")
	}

	mcap := a.Contribution(ComponentMarketCap)
	switch {
	case mcap >= 15:
		strengths = append(strengths, "strong market position")
	case mcap >= 10:
		strengths = append(strengths, "solid market presence")
	default:
		concerns = append(concerns, "limited market size")
	}

	news := a.Contribution(ComponentSentiment)
	switch {
	case news >= 10:
		strengths = append(strengths, "positive market sentiment")
	case news >= 5:
		strengths = append(strengths, "favorable news coverage")
	case news <= -10:
		concerns = append(concerns, "negative market sentiment")
	case news <= -5:
		concerns = append(concerns, "mixed news sentiment")
	}
	return strengths, concerns
}

// Summarize writes the plain-language verdict for a company's assessment.
func Summarize(companyName string, a CreditAssessment) string {
	strengths, concerns := Findings(a)

	parts := []string{fmt.Sprintf("Based on our comprehensive analysis, %s %s.", companyName, outlook(a.Score))}

	switch len(strengths) {
	case 0:
	case 1:
		parts = append(parts, fmt.Sprintf("The company benefits from %s.", strengths[0]))
	default:
		parts = append(parts, fmt.Sprintf("Key strengths include %s.", joinList(strengths)))
	}

	switch {
	case len(concerns) == 1 && len(strengths) > 0:
		parts = append(parts, fmt.Sprintf("However, attention should be paid to %s.", concerns[0]))
	case len(concerns) == 1:
		parts = append(parts, fmt.Sprintf("Primary concerns include %s.", concerns[0]))
	case len(concerns) > 1:
		parts = append(parts, fmt.Sprintf("Areas of concern include %s.", joinList(concerns)))
	}

	parts = append(parts, recommendation(a.Score))
	return strings.Join(parts, " ")
}

func joinList(items []string) string {
	if len(items) < 2 {
		return strings.Join(items, "")
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}
