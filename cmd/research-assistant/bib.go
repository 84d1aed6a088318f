// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/bibliography"
)

var bibCmd = &cobra.Command{
	Use:   "bib",
	Short: "Format a references file as a bibliography",
	Long: `Bib reads a references YAML file (as written by search --save) and prints
a bibliography in APA or UPEL style, or exports it as BibTeX, CSL YAML, or
CSV. Entries keep file order unless --sort is given.`,
	RunE: runBib,
}

func runBib(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("refs")
	if path == "" {
		path = appConfig.Bibliography.ReferencesFile
	}
	file, err := bibliography.LoadReferences(path)
	if err != nil {
		return err
	}

	style, _ := cmd.Flags().GetString("style")
	if style == "" {
		style = file.Style
	}
	if style == "" {
		style = appConfig.Bibliography.Style
	}

	refs := file.References
	if sortRefs, _ := cmd.Flags().GetBool("sort"); sortRefs {
		refs = bibliography.SortByAuthor(refs)
	}

	var w io.Writer = cmd.OutOrStdout()
	if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "text", "":
		text := bibliography.FormatBibliography(refs, style)
		if text == "" {
			fmt.Fprintln(os.Stderr, "No hay referencias en", path)
			return nil
		}
		_, err = fmt.Fprintln(w, text)
	case "bibtex":
		_, err = fmt.Fprint(w, bibliography.FormatBibTeX(refs))
	case "csl":
		err = bibliography.FormatCSL(w, refs)
	case "csv":
		err = bibliography.WriteCSV(w, refs)
	default:
		return fmt.Errorf("unsupported format %q: use text, bibtex, csl, or csv", format)
	}
	return err
}

func init() {
	bibCmd.Flags().String("refs", "", "references YAML file (default from config: references.yaml)")
	bibCmd.Flags().String("style", "", "citation style: APA or UPEL (default from file or config)")
	bibCmd.Flags().Bool("sort", false, "sort entries by author")
	bibCmd.Flags().String("format", "text", "output format: text, bibtex, csl, or csv")
	bibCmd.Flags().String("out", "", "write to this file instead of stdout")

	rootCmd.AddCommand(bibCmd)
}
