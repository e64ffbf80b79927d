package printer

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
	"github.com/xelth-com/receiptdesk/internal/models"
	"github.com/xelth-com/receiptdesk/internal/utils"
)

// LabelConfig is the sheet layout for material labels
type LabelConfig struct {
	Cols       int     `json:"cols" validate:"omitempty,min=1,max=10"`
	Rows       int     `json:"rows" validate:"omitempty,min=1,max=20"`
	Copies     int     `json:"copies" validate:"omitempty,min=1,max=100"`
	MarginTop  float64 `json:"marginTop" validate:"min=0,max=50"`
	MarginLeft float64 `json:"marginLeft" validate:"min=0,max=50"`
	GapX       float64 `json:"gapX" validate:"min=0,max=20"`
	GapY       float64 `json:"gapY" validate:"min=0,max=20"`
}

// DefaultLabelConfig is a 3x8 sheet
func DefaultLabelConfig() LabelConfig {
	return LabelConfig{Cols: 3, Rows: 8, Copies: 1, MarginTop: 10, MarginLeft: 7, GapX: 2, GapY: 2}
}

func (c *LabelConfig) normalize() {
	def := DefaultLabelConfig()
	if c.Cols == 0 {
		c.Cols = def.Cols
	}
	if c.Rows == 0 {
		c.Rows = def.Rows
	}
	if c.Copies == 0 {
		c.Copies = 1
	}
}

// GenerateMaterialLabelsPDF lays out one QR label per material copy.
// The QR code carries the material code.
func GenerateMaterialLabelsPDF(materials []models.Material, cfg LabelConfig) ([]byte, error) {
	if len(materials) == 0 {
		return nil, errors.New("no materials to print")
	}
	cfg.normalize()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Arial", "B", 10)

	pageWidth, pageHeight := pdf.GetPageSize()

	totalGapX := float64(cfg.Cols-1) * cfg.GapX
	totalGapY := float64(cfg.Rows-1) * cfg.GapY

	// Symmetric margins
	availW := pageWidth - (cfg.MarginLeft * 2)
	availH := pageHeight - (cfg.MarginTop * 2)

	labelW := (availW - totalGapX) / float64(cfg.Cols)
	labelH := (availH - totalGapY) / float64(cfg.Rows)
	if labelW <= 0 || labelH <= 0 {
		return nil, fmt.Errorf("label layout %dx%d does not fit the page", cfg.Cols, cfg.Rows)
	}

	labelsPerPage := cfg.Cols * cfg.Rows
	imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}

	i := 0
	for _, m := range materials {
		qrPng, err := qrcode.Encode(m.Code, qrcode.Medium, 256)
		if err != nil {
			return nil, err
		}
		imgName := "qr_" + m.ID
		pdf.RegisterImageOptionsReader(imgName, imgOptions, bytes.NewReader(qrPng))

		for c := 0; c < cfg.Copies; c++ {
			if i%labelsPerPage == 0 {
				pdf.AddPage()
			}
			indexOnPage := i % labelsPerPage
			col := indexOnPage % cfg.Cols
			row := indexOnPage / cfg.Cols

			x := cfg.MarginLeft + float64(col)*(labelW+cfg.GapX)
			y := cfg.MarginTop + float64(row)*(labelH+cfg.GapY)

			// QR on the left, text on the right
			qrSize := labelH * 0.8
			if qrSize > labelW*0.45 {
				qrSize = labelW * 0.45
			}
			pdf.ImageOptions(imgName, x+1, y+(labelH-qrSize)/2, qrSize, qrSize, false, imgOptions, 0, "")

			textX := x + qrSize + 2
			textW := labelW - qrSize - 3
			pdf.SetXY(textX, y+2)
			pdf.SetFontSize(8)
			pdf.MultiCell(textW, 3.5, utils.ASCIIFold(m.Name), "", "L", false)
			pdf.SetXY(textX, y+labelH-9)
			pdf.SetFontSize(7)
			pdf.CellFormat(textW, 3.5, utils.ASCIIFold(m.Code), "", 2, "L", false, 0, "")
			pdf.CellFormat(textW, 3.5, utils.ASCIIFold(m.Unit), "", 0, "L", false, 0, "")
			i++
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
