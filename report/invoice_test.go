package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/invoxa/invoxa/internal/customers"
	"github.com/invoxa/invoxa/internal/invoicing"
	"github.com/invoxa/invoxa/internal/money"
	"github.com/invoxa/invoxa/internal/organisations"
)

func fixtureOrg() organisations.Organisation {
	return organisations.Organisation{
		ID: 1, Name: "Acme Traders", Address: "14 MG Road", City: "Pune",
		State: "Maharashtra", Pincode: "411001", GSTIN: "27AAPFU0939F1ZV",
		UPI: "acme@upi", BankName: "State Bank", AccountNumber: "0012345", IFSC: "SBIN0000123",
	}
}

func fixtureCustomer() customers.Customer {
	return customers.Customer{
		ID: 7, Name: "Sharma Electronics", GSTIN: "29AABCS1429B1ZD",
		Addresses: []customers.Address{
			{Line1: "5 Brigade Road", City: "Bengaluru", State: "Karnataka", Pincode: "560001", IsDefault: true},
		},
	}
}

func fixtureInvoice(interstate bool) invoicing.Invoice {
	inv := invoicing.Invoice{
		ID: 3, OrganisationID: 1, CustomerID: 7, Number: "INV-2025-004",
		InvoiceDate:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:        invoicing.StatusSent,
		Interstate:    interstate,
		PlaceOfSupply: "Karnataka",
		Subtotal:      money.FromRupees(200),
		TotalTax:      money.FromRupees(36),
		Total:         money.FromRupees(236),
		Balance:       money.FromRupees(236),
		Items: []invoicing.LineItem{{
			Description: "LED Bulb 9W", HSNSAC: "8539", Quantity: 2, Unit: "pcs",
			Rate: money.FromRupees(100), Amount: money.FromRupees(200),
		}},
	}
	if interstate {
		inv.IGST = money.FromRupees(36)
		inv.Items[0].IGST = money.FromRupees(36)
	} else {
		inv.CGST = money.FromRupees(18)
		inv.SGST = money.FromRupees(18)
		inv.Items[0].CGST = money.FromRupees(18)
		inv.Items[0].SGST = money.FromRupees(18)
	}
	return inv
}

func TestBuildInvoiceHTMLInterstate(t *testing.T) {
	html, err := BuildInvoiceHTML(fixtureOrg(), fixtureCustomer(), fixtureInvoice(true))
	require.NoError(t, err)

	require.Contains(t, html, "INV-2025-004")
	require.Contains(t, html, "IGST")
	require.NotContains(t, html, "CGST")
	require.Contains(t, html, "Karnataka (29)")
	require.Contains(t, html, "Two Hundred Thirty Six Rupees Only")
	require.Contains(t, html, "data:image/png;base64,")
}

func TestBuildInvoiceHTMLIntraState(t *testing.T) {
	inv := fixtureInvoice(false)
	inv.PlaceOfSupply = "Maharashtra"
	html, err := BuildInvoiceHTML(fixtureOrg(), fixtureCustomer(), inv)
	require.NoError(t, err)

	require.Contains(t, html, "CGST")
	require.Contains(t, html, "SGST")
	require.NotContains(t, html, "IGST")
	require.Contains(t, html, "Sharma Electronics")
	require.Contains(t, html, "5 Brigade Road")
}

func TestBuildInvoiceHTMLWithoutUPI(t *testing.T) {
	org := fixtureOrg()
	org.UPI = ""
	html, err := BuildInvoiceHTML(org, fixtureCustomer(), fixtureInvoice(true))
	require.NoError(t, err)
	require.False(t, strings.Contains(html, "data:image/png;base64,"))
}
