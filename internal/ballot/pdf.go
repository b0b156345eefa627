package ballot

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/skip2/go-qrcode"
)

// A4 portrait, millimetres.
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	margin       = 20.0
	qrSize       = 30.0
	spacing      = 15.0
	codesPerRow  = 4
	codesPerPage = 20

	qrPixels = 256
)

type cell struct {
	page int
	x, y float64
}

// layout places the i-th code: pages are zero-based, x and y give the top
// left corner of its QR image.
func layout(i int) cell {
	columnWidth := (pageWidth - 2*margin) / codesPerRow
	startY := margin + 25

	pos := i % codesPerPage
	row, col := pos/codesPerRow, pos%codesPerRow

	return cell{
		page: i / codesPerPage,
		x:    margin + float64(col)*columnWidth + (columnWidth-qrSize)/2,
		y:    startY + float64(row)*(qrSize+spacing),
	}
}

// RenderPDF writes a printable sheet: a QR code per vote code, each linking
// to VoteURL, with the code printed underneath.
func RenderPDF(w io.Writer, sheet Sheet) error {
	pdf, err := buildPDF(sheet)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render vote codes pdf: %w", err)
	}
	return nil
}

func buildPDF(sheet Sheet) (*fpdf.Fpdf, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(sheet.Title, true)
	pdf.SetAutoPageBreak(false, 0)

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 24)
		pdf.SetTextColor(37, 99, 235)
		pdf.Text(margin, margin+8, tr(sheet.Brand))

		pdf.SetDrawColor(229, 231, 235)
		pdf.SetLineWidth(0.5)
		pdf.Line(margin, margin+15, pageWidth-margin, margin+15)
	})
	pdf.SetFooterFunc(func() {
		footer := tr(sheet.Title)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(156, 163, 175)
		pdf.Text((pageWidth-pdf.GetStringWidth(footer))/2, pageHeight-10, footer)
	})

	pdf.AddPage()
	imageOpts := fpdf.ImageOptions{ImageType: "PNG"}

	for i, code := range sheet.Codes {
		c := layout(i)
		if c.page >= pdf.PageCount() {
			pdf.AddPage()
		}

		png, err := qrcode.Encode(VoteURL(sheet.Origin, sheet.PollID, code), qrcode.High, qrPixels)
		if err != nil {
			return nil, fmt.Errorf("failed to encode qr code: %w", err)
		}

		name := fmt.Sprintf("qr-%d", i)
		pdf.RegisterImageOptionsReader(name, imageOpts, bytes.NewReader(png))
		pdf.ImageOptions(name, c.x, c.y, qrSize, qrSize, false, imageOpts, 0, "")

		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.Text(c.x+(qrSize-pdf.GetStringWidth(code))/2, c.y+qrSize+5, tr(code))
	}

	return pdf, pdf.Error()
}
