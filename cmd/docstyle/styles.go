package main

import (
	"fmt"
	"strings"

	"github.com/alnah/go-docstyle"
	"github.com/alnah/go-docstyle/internal/assets"
)

// runStyles lists the layout presets and the CSS add-ons.
func runStyles(args []string, env *Environment) error {
	flags, err := parseStylesFlags(args)
	if err != nil {
		return err
	}

	resolver, err := assets.NewResolver(flags.assetPath)
	if err != nil {
		return fmt.Errorf("asset path: %w", err)
	}
	addOns, err := resolver.ListStyles()
	if err != nil {
		return err
	}

	fmt.Fprintln(env.Stdout, "Layouts:")
	for _, name := range docstyle.LayoutNames() {
		cfg, err := docstyle.ResolveLayout(name, "", "")
		if err != nil {
			return err
		}
		fmt.Fprintf(env.Stdout, "  %-10s %-7s margin %-7s %s\n", name, cfg.PageSize, cfg.Margin, firstFont(cfg.Fonts.Body))
	}

	fmt.Fprintln(env.Stdout)
	fmt.Fprintln(env.Stdout, "CSS add-ons (--css):")
	for _, name := range addOns {
		fmt.Fprintf(env.Stdout, "  %s\n", name)
	}
	return nil
}

// firstFont returns the first family of a CSS font stack, unquoted.
func firstFont(stack string) string {
	first, _, _ := strings.Cut(stack, ",")
	return strings.Trim(strings.TrimSpace(first), `"'`)
}
