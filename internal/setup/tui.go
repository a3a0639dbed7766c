// Package setup hosts the interactive terminal wizard for adding watchlist
// items without touching the web UI.
package setup

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/purserdev/purser/internal/domain"
	"github.com/purserdev/purser/internal/services/scraper"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

type itemStore interface {
	AddItem(ctx context.Context, item domain.Item) (domain.Item, error)
	SetTarget(ctx context.Context, target domain.Target) error
}

// RunAddWizard walks the user through tracking a new listing and saves it.
func RunAddWizard(ctx context.Context, store itemStore) error {
	var (
		rawURL    string
		targetStr string
		notes     string
		confirm   bool
	)

	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("PURSER — TRACK A LISTING"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Add a product page to your watchlist.\n"))

	fmt.Println(stepStyle.Render("STEP 1: LISTING"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listing URL").
				Description("Full product page URL (e.g. https://www.ebay.com/itm/...)").
				Value(&rawURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Notes").
				Description("Optional, for your own reference").
				Value(&notes),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PURSER — TRACK A LISTING"))
	fmt.Println(stepStyle.Render("STEP 2: TARGET PRICE"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Target Price").
				Description("In major units (e.g. 49.99), empty to skip").
				Value(&targetStr).
				Validate(validateTarget),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PURSER — TRACK A LISTING"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf("URL: %s\nDomain: %s\nTarget: %s\n",
		rawURL, scraper.RegistrableDomain(rawURL), orDash(targetStr))
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this item?").
				Affirmative("Yes, track it").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	item, err := store.AddItem(ctx, domain.Item{
		URL:    rawURL,
		Domain: scraper.RegistrableDomain(rawURL),
		Title:  rawURL,
		Notes:  notes,
	})
	if err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}

	if targetStr != "" {
		major, _ := decimal.NewFromString(targetStr)
		cents := major.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
		if err := store.SetTarget(ctx, domain.Target{ItemID: item.ID, TargetCents: cents}); err != nil {
			return fmt.Errorf("failed to save target: %w", err)
		}
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(
		fmt.Sprintf("\n✓ Tracking item #%d — it will be checked on the next pass.", item.ID)))
	return nil
}

func validateURL(s string) error {
	if s == "" {
		return fmt.Errorf("url cannot be empty")
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || !strings.HasPrefix(u.Scheme, "http") {
		return fmt.Errorf("must be a full http(s) URL")
	}
	return nil
}

func validateTarget(s string) error {
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
