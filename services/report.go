package services

import (
	"fmt"
	"io"
	"time"

	"lunch-menu/models"

	"github.com/go-pdf/fpdf"
)

const (
	reportTopY      = 20.0
	reportPageBound = 250.0
	reportLineStep  = 10.0
)

// ReportFileName is the download name of the orders report.
const ReportFileName = "pedidos.pdf"

// ReportTitle is the heading of the orders report for the given restaurant.
func ReportTitle(restaurant string) string {
	return "Relatório de Pedidos - " + restaurant
}

// WriteOrdersReport renders orders as an A4 PDF. Timestamps are shown in loc
// as dd/MM/yyyy HH:mm.
func WriteOrdersReport(w io.Writer, orders []models.Order, loc *time.Location, title string) error {
	pdf := buildOrdersReport(orders, loc, title)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	return pdf.Output(w)
}

func buildOrdersReport(orders []models.Order, loc *time.Location, title string) *fpdf.Fpdf {
	if loc == nil {
		loc = time.UTC
	}
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	y := reportTopY
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(20, y, tr(title))
	y += 2 * reportLineStep

	line := func(x float64, text string) {
		if y > reportPageBound {
			pdf.AddPage()
			y = reportTopY
		}
		pdf.Text(x, y, tr(text))
		y += reportLineStep
	}

	for i, o := range orders {
		pdf.SetFont("Helvetica", "", 12)
		line(20, fmt.Sprintf("Pedido #%d", i+1))
		line(30, "Nome: "+o.UserName)
		line(30, "Matrícula: "+o.Registration)
		line(30, "Data: "+o.CreatedAt.In(loc).Format("02/01/2006 15:04"))
		line(30, "Itens:")
		for _, item := range o.Items {
			line(40, "- "+item.DishName)
		}
		if o.Observations != "" {
			line(30, "Observações: "+o.Observations)
		}
		y += reportLineStep
		if y > reportPageBound && i < len(orders)-1 {
			pdf.AddPage()
			y = reportTopY
		}
	}
	return pdf
}
