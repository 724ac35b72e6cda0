// Package export writes the database tables and headline statistics as CSV,
// the format consumed by the offline reporting tooling.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/diewo77/foodshare/internal/models"
	"github.com/diewo77/foodshare/internal/services"
	"gorm.io/gorm"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

func optTime(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.Format(layout)
}

// Users writes every user record.
func Users(w io.Writer, db *gorm.DB) (int, error) {
	var users []models.User
	if err := db.Order("id").Find(&users).Error; err != nil {
		return 0, err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "Username", "Email", "User Type", "Organization", "Phone", "Address", "Created At"}); err != nil {
		return 0, err
	}
	for _, u := range users {
		rec := []string{
			strconv.FormatUint(uint64(u.ID), 10),
			u.Username,
			u.Email,
			string(u.Role),
			u.Organization,
			u.Phone,
			u.Address,
			u.CreatedAt.Format(timestampLayout),
		}
		if err := cw.Write(rec); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(users), cw.Error()
}

// Donations writes every donation with the donor's username resolved.
func Donations(w io.Writer, db *gorm.DB) (int, error) {
	var donations []models.Donation
	if err := db.Preload("Donor").Order("id").Find(&donations).Error; err != nil {
		return 0, err
	}
	cw := csv.NewWriter(w)
	header := []string{"ID", "Donor ID", "Donor Username", "Food Type", "Quantity", "Unit", "Description",
		"Location", "Expiry Date", "Status", "Created At", "Claimed By", "Claimed At"}
	if err := cw.Write(header); err != nil {
		return 0, err
	}
	for _, d := range donations {
		donorName := d.Donor.Username
		if donorName == "" {
			donorName = "N/A"
		}
		claimedBy := ""
		if d.ClaimedBy != nil {
			claimedBy = strconv.FormatUint(uint64(*d.ClaimedBy), 10)
		}
		rec := []string{
			strconv.FormatUint(uint64(d.ID), 10),
			strconv.FormatUint(uint64(d.DonorID), 10),
			donorName,
			d.FoodType,
			strconv.Itoa(d.Quantity),
			d.QuantityUnit,
			d.Description,
			d.Location,
			optTime(d.ExpiryDate, dateLayout),
			string(d.Status),
			d.CreatedAt.Format(timestampLayout),
			claimedBy,
			optTime(d.ClaimedAt, timestampLayout),
		}
		if err := cw.Write(rec); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(donations), cw.Error()
}

// Requests writes every food request with the receiver's username resolved.
func Requests(w io.Writer, db *gorm.DB) (int, error) {
	var requests []models.FoodRequest
	if err := db.Preload("Receiver").Order("id").Find(&requests).Error; err != nil {
		return 0, err
	}
	cw := csv.NewWriter(w)
	header := []string{"ID", "Receiver ID", "Receiver Username", "Food Type Needed", "Quantity Needed", "Unit",
		"Description", "Location", "Status", "Created At", "Fulfilled At"}
	if err := cw.Write(header); err != nil {
		return 0, err
	}
	for _, fr := range requests {
		receiverName := fr.Receiver.Username
		if receiverName == "" {
			receiverName = "N/A"
		}
		rec := []string{
			strconv.FormatUint(uint64(fr.ID), 10),
			strconv.FormatUint(uint64(fr.ReceiverID), 10),
			receiverName,
			fr.FoodTypeNeeded,
			strconv.Itoa(fr.QuantityNeeded),
			fr.QuantityUnit,
			fr.Description,
			fr.Location,
			string(fr.Status),
			fr.CreatedAt.Format(timestampLayout),
			optTime(fr.FulfilledAt, timestampLayout),
		}
		if err := cw.Write(rec); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(requests), cw.Error()
}

// Statistics writes the headline Metric/Value table.
func Statistics(w io.Writer, sum services.Summary) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"Metric", "Value"},
		{"Total Users", fmt.Sprint(sum.TotalUsers)},
		{"Total Donors", fmt.Sprint(sum.TotalDonors)},
		{"Total Receivers", fmt.Sprint(sum.TotalReceivers)},
		{"Total Admins", fmt.Sprint(sum.TotalAdmins)},
		{"Total Donations", fmt.Sprint(sum.TotalDonations)},
		{"Total Quantity (kg)", fmt.Sprint(sum.TotalQuantity)},
		{"Total Requests", fmt.Sprint(sum.TotalRequests)},
	}
	for _, rec := range rows {
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
