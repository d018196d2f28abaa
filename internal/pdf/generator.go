package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/asram/pickup-service/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders the client history report: header with the litre
// aggregates followed by a table of every matched pickup.
func (g *Generator) Generate(history model.ClientHistory) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr("Historial de recogidas"), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Cliente: %s", history.Client.Name)), "", 1, "C", false, 0, "")
	if history.Client.District != "" {
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Distrito: %s", history.Client.District)), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Resumen"), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Recogidas: %d", len(history.Pickups))), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Litros totales: %.2f", history.TotalLitres)), "", 1, "L", false, 0, "")
	if history.AverageLitres30d > 0 {
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Media 30 dias: %.2f", history.AverageLitres30d)), "", 1, "L", false, 0, "")
	}
	if !history.FirstPickupAt.IsZero() {
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Periodo: %s - %s", formatDate(history.FirstPickupAt), formatDate(history.LastPickupAt))), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Recogidas"), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)

	headers := []string{"Fecha", "Direccion", "Origen", "Litros", "Estado"}
	colWidths := []float64{25, 75, 25, 25, 30}
	g.drawTableRow(pdf, tr, headers, colWidths, true)

	for _, pickup := range history.Pickups {
		row := []string{
			formatDate(pickup.EffectiveDate()),
			pickup.Address,
			originLabel(pickup.Origin()),
			fmt.Sprintf("%.2f", pickup.Litres),
			statusLabel(pickup),
		}
		g.drawTableRow(pdf, tr, row, colWidths, false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) drawTableRow(pdf *gofpdf.Fpdf, tr func(string) string, cells []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(g.fontName, style, 10)
	for i, cell := range cells {
		pdf.CellFormat(widths[i], 7, tr(cell), "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func originLabel(origin model.PickupOrigin) string {
	switch origin {
	case model.PickupOriginRoute:
		return "Ruta"
	case model.PickupOriginManual:
		return "Manual"
	default:
		return "Individual"
	}
}

func statusLabel(pickup model.Pickup) string {
	if pickup.IsCompleted() {
		return "Completada"
	}
	return "Pendiente"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}
