package setup

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// Show writes the declaration to w as a series of tables.
func Show(cfg Configuration, w io.Writer) error {
	name := cfg.Name
	if name == "" {
		name = "(default)"
	}
	fmt.Fprintf(w, "Configuration: %s\n", name)

	var dependencies [][]string
	for _, dep := range cfg.Dependencies {
		dependencies = append(dependencies, []string{strings.ToUpper(dep.ID), dep.Name, dep.Configuration, dep.URL})
	}
	if err := section(w, "Dependencies", []string{"ID", "Name", "Configuration", "URL"}, dependencies); err != nil {
		return err
	}

	var tools [][]string
	for _, spec := range cfg.VersionSpecs.Tools {
		tools = append(tools, []string{spec.Name, spec.Version})
	}
	if err := section(w, "Tool versions", []string{"Name", "Version"}, tools); err != nil {
		return err
	}

	languages := make([]string, 0, len(cfg.VersionSpecs.Libraries))
	for language := range cfg.VersionSpecs.Libraries {
		languages = append(languages, language)
	}
	sort.Strings(languages)

	var libraries [][]string
	for _, language := range languages {
		for _, spec := range cfg.VersionSpecs.Libraries[language] {
			libraries = append(libraries, []string{language, spec.Name, spec.Version})
		}
	}
	if err := section(w, "Library versions", []string{"Language", "Name", "Version"}, libraries); err != nil {
		return err
	}

	var links [][]string
	for _, link := range cfg.Links {
		links = append(links, []string{link.Link, link.Target, linkOptions(link)})
	}
	return section(w, "Custom actions", []string{"Link", "Target", "Options"}, links)
}

func section(w io.Writer, title string, headers []string, rows [][]string) error {
	fmt.Fprintf(w, "\n%s:\n", title)
	if len(rows) == 0 {
		fmt.Fprintln(w, "  (none)")
		return nil
	}

	table := newTable(headers, w)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to add %s row: %w", strings.ToLower(title), err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render %s: %w", strings.ToLower(title), err)
	}

	return nil
}

func newTable(headers []string, w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

func linkOptions(link Link) string {
	var options []string
	if link.RemoveExisting {
		options = append(options, "remove existing")
	}
	if link.Relative {
		options = append(options, "relative")
	}
	return strings.Join(options, ", ")
}
