package formatter

import "github.com/charmbracelet/lipgloss"

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
)

// RatingIndicator renders an effectiveness rating: green for helpful
// enhancements (4-5), yellow for middling (3), red for poor (1-2),
// dim for unrated.
func RatingIndicator(rating *int) string {
	if rating == nil {
		return StyleDim.Render("unrated")
	}
	switch {
	case *rating >= 4:
		return StyleGreen.Render(ratingStars(*rating))
	case *rating == 3:
		return StyleYellow.Render(ratingStars(*rating))
	default:
		return StyleRed.Render(ratingStars(*rating))
	}
}

func ratingStars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	stars := ""
	for i := 0; i < rating; i++ {
		stars += "★"
	}
	for i := rating; i < 5; i++ {
		stars += "☆"
	}
	return stars
}
