package utils

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/restoscan/resto-app/models"
)

// RenderInvoicePDF lays out a printable ticket for an invoice. The exact
// byte layout is not contractual; clients only need a printable document.
func RenderInvoicePDF(inv *models.Invoice) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(inv.RestaurantName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, tr(inv.RestaurantAddress), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, tr(inv.RestaurantPhone), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Facture %s", inv.Number)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	subject := inv.CustomerName
	if inv.Type == models.InvoiceTypeTable {
		subject = "Table " + inv.TableLabel
	}
	pdf.CellFormat(0, 6, tr(subject), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Serveur : %s", inv.ServerName)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, inv.CreatedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(90, 7, tr("Article"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, tr("Qté"), "B", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, tr("P.U."), "B", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, tr("Montant"), "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range inv.Items {
		pdf.CellFormat(90, 7, tr(item.Name), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", item.Qty), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, tr(FormatCurrency(item.Price)), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, tr(FormatCurrency(item.Price*float64(item.Qty))), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.CellFormat(150, 7, tr("Sous-total"), "T", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, tr(FormatCurrency(inv.Subtotal)), "T", 1, "R", false, 0, "")
	pdf.CellFormat(150, 7, tr(fmt.Sprintf("TVA (%.0f%%) incluse", inv.TaxRate)), "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, tr(FormatCurrency(inv.Tax)), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(150, 9, tr("Total TTC"), "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 9, tr(FormatCurrency(inv.Total)), "", 1, "R", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, tr("Merci de votre visite !"), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
