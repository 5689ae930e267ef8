package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"example.com/ffpkggate/internal/common"
)

// SaveContentsPDF renders a container contents report into a PDF document.
func SaveContentsPDF(info ContainerInfo, out string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Container Contents Report", false)
	pdf.SetAuthor("ffpkgctl", false)
	pdf.SetCreator("ffpkgctl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, "Container Contents Report")
	addSummarySection(pdf, info)
	addEntriesSection(pdf, info.Entries)
	addVerificationSection(pdf, info)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addSummarySection(pdf *gofpdf.Fpdf, info ContainerInfo) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: "Container", value: emptyFallback(info.Path, "-")},
		{label: "Title ID", value: info.TitleID},
		{label: "Format Version", value: fmt.Sprintf("%d", info.Version)},
		{label: "Image Size", value: common.FormatBytes(info.ImageSize)},
		{label: "Trailer Size", value: common.FormatBytes(info.TrailerSize)},
		{label: "Auxiliary Files", value: fmt.Sprintf("%d", len(info.Entries))},
		{label: "SHA-256", value: emptyFallback(info.Sha256, "-")},
	}
	for _, item := range items {
		pdf.CellFormat(40, 6, item.label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
	}
	pdf.Ln(4)
}

func addEntriesSection(pdf *gofpdf.Fpdf, entries []EntryInfo) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Auxiliary Files")
	pdf.Ln(9)

	if len(entries) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "The trailer carries no auxiliary files.", "", "L", false)
		pdf.Ln(4)
		return
	}

	headers := []string{"#", "Path", "Size"}
	widths := []float64{12, 128, 40}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	lineHeight := 5.0
	for i, e := range entries {
		values := []string{
			fmt.Sprintf("%d", i+1),
			e.Path,
			common.FormatBytes(e.Size),
		}
		renderTableRow(pdf, widths, values, lineHeight)
	}
	pdf.Ln(4)
}

func addVerificationSection(pdf *gofpdf.Fpdf, info ContainerInfo) {
	png, err := VerificationQR(info.TitleID, info.Sha256, 256)
	if err != nil {
		return
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Verification")
	pdf.Ln(9)

	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader("verification-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("verification-qr", pdf.GetX(), pdf.GetY(), 32, 32, false, opts, 0, "")
	pdf.SetXY(pdf.GetX()+36, pdf.GetY()+12)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, "Scan to compare the title id and digest against the file on disk.")
	pdf.Ln(26)
}

func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	xStart := pdf.GetX()
	yStart := pdf.GetY()
	maxLines := 1
	splitCols := make([][]string, len(values))
	for i, val := range values {
		text := strings.TrimSpace(val)
		if text == "" {
			text = "-"
		}
		lines := pdf.SplitText(text, widths[i]-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		splitCols[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowHeight := float64(maxLines) * lineHeight
	x := xStart
	for i, lines := range splitCols {
		pdf.SetXY(x, yStart)
		cellText := strings.Join(lines, "\n")
		pdf.MultiCell(widths[i], lineHeight, cellText, "1", "L", false)
		x += widths[i]
	}
	pdf.SetXY(xStart, yStart+rowHeight)
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
