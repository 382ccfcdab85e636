package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/1F47E/geo-photo-search/pkg/geo"
	"github.com/1F47E/geo-photo-search/pkg/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6"))

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8BE9FD"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))
)

// printer writes photo listings, styled only when writing to a terminal
type printer struct {
	out    io.Writer
	styled bool
}

func newPrinter(out io.Writer) *printer {
	p := &printer{out: out}
	if f, ok := out.(*os.File); ok {
		p.styled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return p
}

func (p *printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

func (p *printer) printJSON(photos []*models.Photo) error {
	if photos == nil {
		photos = []*models.Photo{}
	}
	encoder := json.NewEncoder(p.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(photos)
}

// printPhotos lists photos; with a center every line also shows the distance
func (p *printer) printPhotos(photos []*models.Photo, center *models.Location) {
	if len(photos) == 0 {
		fmt.Fprintln(p.out, p.render(dimStyle, "No photos found"))
		return
	}

	for i, photo := range photos {
		title := photo.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(p.out, "%d. %s\n", i+1, p.render(titleStyle, title))
		if photo.FileURL != "" {
			fmt.Fprintf(p.out, "   image: %s\n", p.render(urlStyle, photo.FileURL))
		}
		if photo.PhotoURL != "" {
			fmt.Fprintf(p.out, "   page:  %s\n", p.render(urlStyle, photo.PhotoURL))
		}
		if loc := photo.Location; loc != nil {
			line := fmt.Sprintf("(%.6f, %.6f)", loc.Lat, loc.Lon)
			if center != nil {
				line += fmt.Sprintf(" - %.2f km", geo.Distance(center.Lat, center.Lon, loc.Lat, loc.Lon))
			}
			fmt.Fprintf(p.out, "   %s\n", p.render(dimStyle, line))
		}
	}
}
