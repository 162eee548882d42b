package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/sandeepkv93/vtodo/internal/app"
	"github.com/sandeepkv93/vtodo/internal/commands"
	"github.com/sandeepkv93/vtodo/internal/storage"
)

var (
	bold    = color.New(color.Bold).SprintFunc()
	okColor = color.New(color.FgGreen)
	errText = color.New(color.FgRed)
	dim     = color.New(color.Faint).SprintFunc()
)

func printOutcome(w io.Writer, o app.Outcome) {
	tbl := uitable.New()
	tbl.Separator = "  "
	if o.Transcript != "" {
		tbl.AddRow(bold("heard"), o.Transcript)
		tbl.AddRow(bold("tokens"), strings.Join(o.Tokens, " | "))
	}
	if o.Command.Intent != "" {
		tbl.AddRow(bold("command"), o.Command.String())
	}
	if o.Err == nil {
		tbl.AddRow(bold("view"), o.Effect.View.String())
	}
	_, _ = fmt.Fprintln(w, tbl)

	if o.Err != nil {
		_, _ = errText.Fprintln(w, o.Message())
		return
	}
	_, _ = okColor.Fprintln(w, o.Message())
}

func printNormalized(w io.Writer, canonical string, tokens []string) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("canonical"), canonical)
	tbl.AddRow(bold("tokens"), strings.Join(tokens, " | "))
	_, _ = fmt.Fprintln(w, tbl)
}

func printCommand(w io.Writer, tokens []string, cmd commands.Command) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("tokens"), strings.Join(tokens, " | "))
	tbl.AddRow(bold("intent"), string(cmd.Intent))
	tbl.AddRow(bold("primary"), cmd.Primary)
	tbl.AddRow(bold("secondary"), cmd.Secondary)
	_, _ = fmt.Fprintln(w, tbl)
}

// printCategories prints one row per category with its item and done counts.
func printCategories(w io.Writer, cats []storage.Category, counts [][2]int) {
	if len(cats) == 0 {
		_, _ = fmt.Fprintln(w, dim("(no categories)"))
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("CATEGORY"), bold("ITEMS"), bold("DONE"), bold("CREATED"))
	for i, c := range cats {
		tbl.AddRow(c.Name, strconv.Itoa(counts[i][0]), strconv.Itoa(counts[i][1]), c.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func printItems(w io.Writer, category string, items []storage.Item) {
	_, _ = fmt.Fprintln(w, bold(category))
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, dim("(no items)"))
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, it := range items {
		box := "[ ]"
		if it.Completed {
			box = "[x]"
		}
		tbl.AddRow(box, it.Name)
	}
	_, _ = fmt.Fprintln(w, tbl)
}
