package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/asram/pickup-service/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the client history workbook: a summary sheet with
// the litre aggregates and a detail sheet listing every matched pickup.
func (g *Generator) Generate(history model.ClientHistory) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Resumen"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, history); err != nil {
		return nil, err
	}

	detailSheet := "Recogidas"
	file.NewSheet(detailSheet)
	if err := g.writeDetail(file, detailSheet, history); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, history model.ClientHistory) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Cliente")
	set("B1", history.Client.Name)
	set("A2", "Distrito")
	set("B2", history.Client.District)
	set("A3", "Barrio")
	set("B3", history.Client.Neighborhood)
	set("A4", "Recogidas")
	set("B4", len(history.Pickups))
	set("A5", "Litros totales")
	set("B5", formatLitres(history.TotalLitres))
	set("A6", "Media 30 dias")
	set("B6", formatLitres(history.AverageLitres30d))
	set("A7", "Primera recogida")
	set("B7", formatDate(history.FirstPickupAt))
	set("A8", "Ultima recogida")
	set("B8", formatDate(history.LastPickupAt))

	_ = file.SetColWidth(sheet, "A", "A", 24)
	_ = file.SetColWidth(sheet, "B", "B", 32)
	return nil
}

func (g *Generator) writeDetail(file *excelize.File, sheet string, history model.ClientHistory) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Fecha", "Direccion", "Origen", "Litros", "Estado"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, pickup := range history.Pickups {
		row := 2 + i
		set(fmt.Sprintf("A%d", row), formatDate(pickup.EffectiveDate()))
		set(fmt.Sprintf("B%d", row), pickup.Address)
		set(fmt.Sprintf("C%d", row), originLabel(pickup.Origin()))
		set(fmt.Sprintf("D%d", row), formatLitres(pickup.Litres))
		set(fmt.Sprintf("E%d", row), statusLabel(pickup))
	}

	_ = file.SetColWidth(sheet, "A", "A", 14)
	_ = file.SetColWidth(sheet, "B", "B", 40)
	_ = file.SetColWidth(sheet, "C", "C", 14)
	_ = file.SetColWidth(sheet, "D", "E", 12)
	return nil
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
	return t.Format("2006-01-02")
}

func formatLitres(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
