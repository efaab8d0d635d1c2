package parser

import (
	"regexp"
	"strconv"

	"docvision/internal/domain"
)

var pointRe = regexp.MustCompile(`<point\s+x="(\d+)"\s+y="(\d+)"\s*/>`)

// ParsePoints collects every <point x="N" y="N"/> tag in text.
func ParsePoints(text string) []domain.Point {
	matches := pointRe.FindAllStringSubmatch(text, -1)
	out := make([]domain.Point, 0, len(matches))
	for _, m := range matches {
		x, errX := strconv.Atoi(m[1])
		y, errY := strconv.Atoi(m[2])
		if errX != nil || errY != nil {
			continue
		}
		out = append(out, domain.Point{X: x, Y: y})
	}
	return out
}
