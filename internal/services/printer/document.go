package printer

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
	"github.com/xelth-com/receiptdesk/internal/models"
	"github.com/xelth-com/receiptdesk/internal/utils"
)

// GenerateDocumentPDF renders a printable receipt with a QR code of the
// document number. Text is folded to ASCII for the core PDF fonts.
func GenerateDocumentPDF(doc *models.Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("%s - %d/{nb}", doc.DocumentNumber, pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// QR top right
	qrPng, err := qrcode.Encode(doc.DocumentNumber, qrcode.Medium, 256)
	if err != nil {
		return nil, err
	}
	imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("qr", imgOptions, bytes.NewReader(qrPng))
	pdf.ImageOptions("qr", 170, 12, 25, 25, false, imgOptions, 0, "")

	// Title
	title := "PHIEU KHO"
	if doc.DocumentType != nil {
		title = utils.ASCIIFold(doc.DocumentType.Name)
	}
	pdf.SetFont("Arial", "B", 16)
	pdf.SetXY(15, 18)
	pdf.CellFormat(150, 8, title, "", 1, "L", false, 0, "")

	// Header fields
	pdf.SetFont("Arial", "", 10)
	header := [][2]string{
		{"So phieu", doc.DocumentNumber},
		{"Ngay", doc.DocumentDate.Format("02/01/2006")},
		{"Trang thai", doc.Status},
	}
	if doc.SourceWarehouse != nil {
		header = append(header, [2]string{"Kho xuat", utils.ASCIIFold(doc.SourceWarehouse.Name)})
	}
	if doc.DestinationWarehouse != nil {
		header = append(header, [2]string{"Kho nhap", utils.ASCIIFold(doc.DestinationWarehouse.Name)})
	}
	if doc.AIConfidenceScore != nil {
		header = append(header, [2]string{"Do tin cay AI", fmt.Sprintf("%.0f%%", *doc.AIConfidenceScore)})
	}
	for _, kv := range header {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(35, 6, kv[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(115, 6, kv[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Items table
	widths := []float64{12, 88, 30, 20, 30}
	columns := []string{"STT", "Vat tu", "So luong", "DVT", "Ghi chu"}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, c := range columns {
		pdf.CellFormat(widths[i], 7, c, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for i, item := range doc.Items {
		name := item.MaterialName
		if item.Material != nil && name == "" {
			name = item.Material.Name
		}
		pdf.CellFormat(widths[0], 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 7, truncate(pdf, utils.ASCIIFold(name), widths[1]-2), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 7, item.Quantity.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, utils.ASCIIFold(item.Unit), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 7, truncate(pdf, utils.ASCIIFold(item.Notes), widths[4]-2), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	if doc.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, "Ghi chu: "+utils.ASCIIFold(doc.Notes), "", "L", false)
	}

	// Signatures
	pdf.Ln(12)
	pdf.SetFont("Arial", "B", 10)
	for _, role := range []string{"Nguoi lap phieu", "Thu kho", "Nguoi nhan"} {
		pdf.CellFormat(60, 6, role, "", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
