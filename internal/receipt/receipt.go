// Package receipt renders the claim confirmation document. Building the data
// is a pure function of the donation and both parties; only the generated-at
// timestamp and the document reference vary between runs.
package receipt

import (
	"bytes"
	"fmt"
	"time"

	"github.com/diewo77/foodshare/internal/models"
	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"
)

const footerText = "Thank you for using FoodShare. Together we reduce waste and feed the needy."

// Party identifies one side of a claim on the document.
type Party struct {
	Name         string
	Organization string
	Email        string
}

// Data is everything printed on the confirmation PDF.
type Data struct {
	ConfirmationID uint
	Reference      string
	GeneratedAt    time.Time
	FoodType       string
	Quantity       int
	Unit           string
	Location       string
	Description    string
	Donor          Party
	Receiver       Party
}

// Build assembles the document data for a claimed donation.
func Build(d *models.Donation, donor, receiver models.User) Data {
	return Data{
		ConfirmationID: d.ID,
		Reference:      uuid.NewString(),
		GeneratedAt:    time.Now(),
		FoodType:       d.FoodType,
		Quantity:       d.Quantity,
		Unit:           d.QuantityUnit,
		Location:       d.Location,
		Description:    d.Description,
		Donor:          Party{Name: donor.Username, Organization: donor.Organization, Email: donor.Email},
		Receiver:       Party{Name: receiver.Username, Organization: receiver.Organization, Email: receiver.Email},
	}
}

// Render produces the PDF bytes.
func Render(data Data) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(50, 50, 50)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 30, "FoodShare Donation Confirmation", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 18, "Date: "+data.GeneratedAt.Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 18, fmt.Sprintf("Confirmation ID: #%d", data.ConfirmationID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 18, "Reference: "+data.Reference, "", 1, "L", false, 0, "")

	pageW, _ := pdf.GetPageSize()
	y := pdf.GetY() + 6
	pdf.Line(50, y, pageW-50, y)
	pdf.SetY(y + 20)

	section(pdf, "Donation Details:")
	line(pdf, "Food Type: "+data.FoodType)
	line(pdf, fmt.Sprintf("Quantity: %d %s", data.Quantity, data.Unit))
	line(pdf, "Location: "+data.Location)
	if data.Description != "" {
		line(pdf, "Description: "+data.Description)
	}

	section(pdf, "Donor Details:")
	line(pdf, "Donor Name: "+data.Donor.Name)
	if data.Donor.Organization != "" {
		line(pdf, "Organization: "+data.Donor.Organization)
	}
	line(pdf, "Contact: "+data.Donor.Email)

	section(pdf, "Claimed By:")
	line(pdf, "Receiver Name: "+data.Receiver.Name)
	if data.Receiver.Organization != "" {
		line(pdf, "Organization: "+data.Receiver.Organization)
	}
	line(pdf, "Email: "+data.Receiver.Email)

	_, pageH := pdf.GetPageSize()
	pdf.SetY(pageH - 70)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 14, footerText, "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetY(pdf.GetY() + 10)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 24, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
}

func line(pdf *gofpdf.Fpdf, text string) {
	pdf.CellFormat(0, 18, text, "", 1, "L", false, 0, "")
}

// Filename is the attachment name used for both notification emails.
func Filename(donationID uint) string {
	return fmt.Sprintf("FoodShare_Confirmation_%d.pdf", donationID)
}
