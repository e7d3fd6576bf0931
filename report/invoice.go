package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/invoxa/invoxa/internal/customers"
	"github.com/invoxa/invoxa/internal/invoicing"
	"github.com/invoxa/invoxa/internal/money"
	"github.com/invoxa/invoxa/internal/organisations"
)

// stateCodes maps state names to their GST state codes, printed next to
// the place of supply.
var stateCodes = map[string]string{
	"Jammu and Kashmir": "01", "Himachal Pradesh": "02", "Punjab": "03",
	"Chandigarh": "04", "Uttarakhand": "05", "Haryana": "06", "Delhi": "07",
	"Rajasthan": "08", "Uttar Pradesh": "09", "Bihar": "10", "Sikkim": "11",
	"Arunachal Pradesh": "12", "Nagaland": "13", "Manipur": "14",
	"Mizoram": "15", "Tripura": "16", "Meghalaya": "17", "Assam": "18",
	"West Bengal": "19", "Jharkhand": "20", "Odisha": "21",
	"Chhattisgarh": "22", "Madhya Pradesh": "23", "Gujarat": "24",
	"Daman and Diu": "25", "Dadra and Nagar Haveli": "26",
	"Maharashtra": "27", "Andhra Pradesh": "28", "Karnataka": "29",
	"Goa": "30", "Lakshadweep": "31", "Kerala": "32", "Tamil Nadu": "33",
	"Puducherry": "34", "Andaman and Nicobar Islands": "35",
	"Telangana": "36", "Ladakh": "38",
}

// StateCode returns the GST state code for a state name, empty when
// unknown.
func StateCode(state string) string {
	return stateCodes[state]
}

// upiQRDataURL builds a UPI payment deep link for the invoice total and
// encodes it as a PNG data URL for embedding in the HTML.
func upiQRDataURL(upiID, payeeName string, amount money.Amount) (string, error) {
	link := fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%s&cu=INR",
		url.QueryEscape(upiID), url.QueryEscape(payeeName), amount.String())
	png, err := qrcode.Encode(link, qrcode.Medium, 160)
	if err != nil {
		return "", fmt.Errorf("encode upi qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

type invoiceLineView struct {
	Index       int
	Description string
	HSNSAC      string
	Quantity    float64
	Unit        string
	Rate        string
	Discount    string
	Amount      string
	CGST        string
	SGST        string
	IGST        string
}

type invoiceView struct {
	Org            organisations.Organisation
	Customer       customers.Customer
	Invoice        invoicing.Invoice
	BillingAddress *customers.Address
	Interstate     bool
	PlaceOfSupply  string
	StateCode      string
	Lines          []invoiceLineView
	Subtotal       string
	CGST           string
	SGST           string
	IGST           string
	TotalTax       string
	DeliveryCharge string
	PackingCharge  string
	OtherCharge    string
	Total          string
	Balance        string
	TotalInWords   string
	UPIQR          template.URL
}

var invoiceTmpl = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Arial, sans-serif; font-size: 12px; color: #222; }
h1 { font-size: 18px; margin: 0; }
.header { display: flex; justify-content: space-between; border-bottom: 2px solid #333; padding-bottom: 8px; }
table.items { width: 100%; border-collapse: collapse; margin-top: 12px; }
table.items th, table.items td { border: 1px solid #999; padding: 4px 6px; text-align: right; }
table.items th { background: #f0f0f0; }
table.items td.text, table.items th.text { text-align: left; }
.totals { margin-top: 12px; width: 40%; margin-left: auto; }
.totals td { padding: 2px 6px; }
.totals .grand { font-weight: bold; border-top: 1px solid #333; }
.words { margin-top: 8px; font-style: italic; }
.footer { margin-top: 24px; display: flex; justify-content: space-between; }
</style>
</head>
<body>
<div class="header">
  <div>
    <h1>{{.Org.Name}}</h1>
    <div>{{.Org.Address}}, {{.Org.City}}, {{.Org.State}} {{.Org.Pincode}}</div>
    {{if .Org.GSTIN}}<div>GSTIN: {{.Org.GSTIN}}</div>{{end}}
    {{if .Org.Phone}}<div>Phone: {{.Org.Phone}}</div>{{end}}
  </div>
  <div>
    <h1>TAX INVOICE</h1>
    <div>No: <strong>{{.Invoice.Number}}</strong></div>
    <div>Date: {{.Invoice.InvoiceDate.Format "02 Jan 2006"}}</div>
    {{if .PlaceOfSupply}}<div>Place of Supply: {{.PlaceOfSupply}}{{if .StateCode}} ({{.StateCode}}){{end}}</div>{{end}}
  </div>
</div>

<div style="margin-top:12px">
  <strong>Bill To:</strong> {{.Customer.Name}}
  {{if .Customer.GSTIN}}<div>GSTIN: {{.Customer.GSTIN}}</div>{{end}}
  {{with .BillingAddress}}<div>{{.Line1}}{{if .Line2}}, {{.Line2}}{{end}}, {{.City}}, {{.State}} {{.Pincode}}</div>{{end}}
</div>

<table class="items">
  <tr>
    <th>#</th><th class="text">Item</th><th>HSN/SAC</th><th>Qty</th><th>Rate</th><th>Discount</th><th>Amount</th>
    {{if .Interstate}}<th>IGST</th>{{else}}<th>CGST</th><th>SGST</th>{{end}}
  </tr>
  {{range .Lines}}
  <tr>
    <td>{{.Index}}</td><td class="text">{{.Description}}</td><td>{{.HSNSAC}}</td>
    <td>{{.Quantity}} {{.Unit}}</td><td>{{.Rate}}</td><td>{{.Discount}}</td><td>{{.Amount}}</td>
    {{if $.Interstate}}<td>{{.IGST}}</td>{{else}}<td>{{.CGST}}</td><td>{{.SGST}}</td>{{end}}
  </tr>
  {{end}}
</table>

<table class="totals">
  <tr><td>Subtotal</td><td>{{.Subtotal}}</td></tr>
  {{if .Interstate}}
  <tr><td>IGST</td><td>{{.IGST}}</td></tr>
  {{else}}
  <tr><td>CGST</td><td>{{.CGST}}</td></tr>
  <tr><td>SGST</td><td>{{.SGST}}</td></tr>
  {{end}}
  {{if .Invoice.DeliveryCharge}}<tr><td>Delivery Charges</td><td>{{.DeliveryCharge}}</td></tr>{{end}}
  {{if .Invoice.PackingCharge}}<tr><td>Packing Charges</td><td>{{.PackingCharge}}</td></tr>{{end}}
  {{if .Invoice.OtherCharge}}<tr><td>Other Charges</td><td>{{.OtherCharge}}</td></tr>{{end}}
  <tr class="grand"><td>Total</td><td>&#8377; {{.Total}}</td></tr>
  <tr><td>Balance Due</td><td>&#8377; {{.Balance}}</td></tr>
</table>

<div class="words">{{.TotalInWords}}</div>

<div class="footer">
  <div>
    {{if .Org.BankName}}
    <div><strong>Bank Details</strong></div>
    <div>{{.Org.BankName}}{{if .Org.BankBranch}}, {{.Org.BankBranch}}{{end}}</div>
    <div>A/C: {{.Org.AccountNumber}} IFSC: {{.Org.IFSC}}</div>
    {{end}}
    {{if .UPIQR}}<img src="{{.UPIQR}}" alt="Pay by UPI" width="120">{{end}}
  </div>
  <div>
    <div>For {{.Org.Name}}</div>
    {{if .Org.SignatureURL}}<img src="{{.Org.SignatureURL}}" height="48">{{end}}
    <div>{{if .Org.AuthorizedSignatory}}{{.Org.AuthorizedSignatory}}{{else}}Authorised Signatory{{end}}</div>
  </div>
</div>
</body>
</html>`))

// BuildInvoiceHTML renders the printable invoice. The tax columns come
// straight from the persisted split; nothing is recomputed here.
func BuildInvoiceHTML(org organisations.Organisation, customer customers.Customer, inv invoicing.Invoice) (string, error) {
	view := invoiceView{
		Org:            org,
		Customer:       customer,
		Invoice:        inv,
		Interstate:     inv.Interstate,
		PlaceOfSupply:  inv.PlaceOfSupply,
		StateCode:      StateCode(inv.PlaceOfSupply),
		Subtotal:       inv.Subtotal.Display(),
		CGST:           inv.CGST.Display(),
		SGST:           inv.SGST.Display(),
		IGST:           inv.IGST.Display(),
		TotalTax:       inv.TotalTax.Display(),
		DeliveryCharge: inv.DeliveryCharge.Display(),
		PackingCharge:  inv.PackingCharge.Display(),
		OtherCharge:    inv.OtherCharge.Display(),
		Total:          inv.Total.Display(),
		Balance:        inv.Balance.Display(),
		TotalInWords:   AmountInWords(inv.Total),
	}
	for _, a := range customer.Addresses {
		if a.IsDefault {
			addr := a
			view.BillingAddress = &addr
			break
		}
	}
	if view.BillingAddress == nil && len(customer.Addresses) > 0 {
		addr := customer.Addresses[0]
		view.BillingAddress = &addr
	}
	for i, it := range inv.Items {
		view.Lines = append(view.Lines, invoiceLineView{
			Index:       i + 1,
			Description: it.Description,
			HSNSAC:      it.HSNSAC,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			Rate:        it.Rate.Display(),
			Discount:    it.Discount.Display(),
			Amount:      it.Amount.Display(),
			CGST:        it.CGST.Display(),
			SGST:        it.SGST.Display(),
			IGST:        it.IGST.Display(),
		})
	}
	if org.UPI != "" {
		qr, err := upiQRDataURL(org.UPI, org.Name, inv.Balance)
		if err != nil {
			return "", err
		}
		view.UPIQR = template.URL(qr)
	}

	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render invoice template: %w", err)
	}
	return buf.String(), nil
}
