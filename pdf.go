package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 210.0 // A4, mm
	pdfMargin     = 10.0
	pdfLineHeight = 5.0
	pdfFontSize   = 9.0
	pdfTabWidth   = 4
)

// RenderPDF writes the stitched document as a syntax-highlighted PDF. The
// layout mirrors the text renderer: header, tree, one section per file, then
// the summary.
func RenderPDF(res *Result, opts RenderOptions, outputPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	style := styles.Get("github")
	if style == nil {
		style = styles.Fallback
	}
	width := pdfPageWidth - 2*pdfMargin

	pdf.SetFont("Helvetica", "B", pdfFontSize+3)
	pdf.MultiCell(width, pdfLineHeight+1, fmt.Sprintf("Concatenated Files from: %s", res.BaseDirectory), "", "L", false)
	pdf.SetFont("Helvetica", "", pdfFontSize)
	if opts.IncludeTimestamp {
		pdf.MultiCell(width, pdfLineHeight, fmt.Sprintf("Generated on: %s", time.Now().Format("2006-01-02 15:04:05")), "", "L", false)
	}
	if len(res.SelectedCategories) > 0 {
		pdf.MultiCell(width, pdfLineHeight, fmt.Sprintf("Selected file types: %s", strings.Join(res.SelectedCategories, ", ")), "", "L", false)
	}
	pdf.Ln(pdfLineHeight)

	paths := make([]string, 0, len(res.Files))
	for _, f := range res.Files {
		if f.Path != "" {
			paths = append(paths, f.Path)
		}
	}
	if tree := generateTree(res.BaseDirectory, paths); tree != "" {
		pdf.SetFont("Courier", "", pdfFontSize)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(width, pdfLineHeight, tree, "", "L", false)
		pdf.Ln(pdfLineHeight)
	}

	for _, f := range res.Files {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", pdfFontSize+1)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(width, pdfLineHeight, fmt.Sprintf("File: %s", f.RelPath), "", "L", false)
		if opts.IncludeTokens {
			pdf.SetFont("Helvetica", "", pdfFontSize-1)
			pdf.MultiCell(width, pdfLineHeight, fmt.Sprintf("Tokens: %d", f.TokenCount), "", "L", false)
		}
		pdf.Line(pdfMargin, pdf.GetY(), pdfPageWidth-pdfMargin, pdf.GetY())
		pdf.Ln(pdfLineHeight / 2)

		if err := writeHighlighted(pdf, style, f.Content, f.RelPath); err != nil {
			pdf.SetFont("Courier", "", pdfFontSize)
			pdf.SetTextColor(0, 0, 0)
			pdf.MultiCell(width, pdfLineHeight, f.Content, "", "L", false)
		}
	}

	if opts.IncludeStats {
		pdf.Ln(pdfLineHeight)
		pdf.SetFont("Helvetica", "B", pdfFontSize+1)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(width, pdfLineHeight, "Summary", "", "L", false)
		pdf.SetFont("Helvetica", "", pdfFontSize)
		lines := fmt.Sprintf("Total files processed: %d\nTotal size: %s", res.Summary.TotalFiles, formatSize(res.Summary.TotalSize))
		if opts.IncludeTokens {
			lines += fmt.Sprintf("\nTotal tokens: %d", res.Summary.TotalTokens)
		}
		pdf.MultiCell(width, pdfLineHeight, lines, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("saving PDF to %s: %w", outputPath, err)
	}
	return nil
}

// writeHighlighted tokenizes content with chroma and writes each token in the
// style's color and weight.
func writeHighlighted(pdf *gofpdf.Fpdf, style *chroma.Style, content, name string) error {
	lexer := lexers.Match(name)
	if lexer == nil {
		lexer = lexers.Analyse(content)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return fmt.Errorf("tokenizing %s: %w", name, err)
	}

	pdf.SetFont("Courier", "", pdfFontSize)
	for token := iterator(); token != chroma.EOF; token = iterator() {
		entry := style.Get(token.Type)

		fontStyle := ""
		if entry.Bold == chroma.Yes {
			fontStyle += "B"
		}
		if entry.Italic == chroma.Yes {
			fontStyle += "I"
		}
		pdf.SetFontStyle(fontStyle)

		colour := entry.Colour
		if !colour.IsSet() {
			colour = style.Get(chroma.Text).Colour
		}
		if colour.IsSet() {
			pdf.SetTextColor(int(colour.Red()), int(colour.Green()), int(colour.Blue()))
		} else {
			pdf.SetTextColor(0, 0, 0)
		}

		pdf.Write(pdfLineHeight, strings.ReplaceAll(token.Value, "\t", strings.Repeat(" ", pdfTabWidth)))
	}
	pdf.Ln(-1)
	return nil
}
