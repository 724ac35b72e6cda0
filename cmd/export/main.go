// Command export is the offline database query and export tool.
//
// Usage: export [command]
//
//	view_users      print all users
//	view_donations  print all donations
//	view_requests   print all requests
//	export_all      write all tables and statistics to CSV files
//	stats           print headline statistics
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/diewo77/foodshare/internal/db"
	"github.com/diewo77/foodshare/internal/export"
	"github.com/diewo77/foodshare/internal/models"
	"github.com/diewo77/foodshare/internal/services"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()
	cmd := "export_all"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	conn, err := db.ConnectAndMigrate()
	if err != nil {
		fmt.Fprintln(os.Stderr, "database setup failed:", err)
		os.Exit(1)
	}

	switch cmd {
	case "view_users":
		err = viewUsers(conn)
	case "view_donations":
		err = viewDonations(conn)
	case "view_requests":
		err = viewRequests(conn)
	case "stats":
		err = showStats(conn)
	case "export_all":
		err = exportAll(conn)
	default:
		fmt.Fprintln(os.Stderr, "unknown command:", cmd)
		fmt.Fprintln(os.Stderr, "commands: view_users, view_donations, view_requests, export_all, stats")
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rule(n int) string { return strings.Repeat("=", n) }

func viewUsers(conn *gorm.DB) error {
	var users []models.User
	if err := conn.Order("id").Find(&users).Error; err != nil {
		return err
	}
	fmt.Println("\n" + rule(80))
	fmt.Println("USERS TABLE")
	fmt.Println(rule(80))
	fmt.Printf("%-5s %-20s %-30s %-10s %-20s\n", "ID", "Username", "Email", "Type", "Organization")
	for _, u := range users {
		org := u.Organization
		if len(org) > 18 {
			org = org[:18]
		}
		fmt.Printf("%-5d %-20s %-30s %-10s %-20s\n", u.ID, u.Username, u.Email, u.Role, org)
	}
	fmt.Printf("\nTotal: %d users\n", len(users))
	return nil
}

func viewDonations(conn *gorm.DB) error {
	var donations []models.Donation
	if err := conn.Preload("Donor").Order("id").Find(&donations).Error; err != nil {
		return err
	}
	fmt.Println("\n" + rule(100))
	fmt.Println("DONATIONS TABLE")
	fmt.Println(rule(100))
	fmt.Printf("%-5s %-20s %-20s %-10s %-12s %-20s %-20s\n", "ID", "Donor", "Food Type", "Quantity", "Status", "Location", "Date")
	for _, d := range donations {
		loc := d.Location
		if len(loc) > 18 {
			loc = loc[:18]
		}
		qty := fmt.Sprintf("%d %s", d.Quantity, d.QuantityUnit)
		fmt.Printf("%-5d %-20s %-20s %-10s %-12s %-20s %-20s\n",
			d.ID, d.Donor.Username, d.FoodType, qty, d.Status, loc, d.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("\nTotal: %d donations\n", len(donations))
	return nil
}

func viewRequests(conn *gorm.DB) error {
	var requests []models.FoodRequest
	if err := conn.Preload("Receiver").Order("id").Find(&requests).Error; err != nil {
		return err
	}
	fmt.Println("\n" + rule(100))
	fmt.Println("FOOD REQUESTS TABLE")
	fmt.Println(rule(100))
	fmt.Printf("%-5s %-20s %-20s %-10s %-12s %-20s %-20s\n", "ID", "Receiver", "Food Type", "Quantity", "Status", "Location", "Date")
	for _, fr := range requests {
		loc := fr.Location
		if len(loc) > 18 {
			loc = loc[:18]
		}
		qty := fmt.Sprintf("%d %s", fr.QuantityNeeded, fr.QuantityUnit)
		fmt.Printf("%-5d %-20s %-20s %-10s %-12s %-20s %-20s\n",
			fr.ID, fr.Receiver.Username, fr.FoodTypeNeeded, qty, fr.Status, loc, fr.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("\nTotal: %d requests\n", len(requests))
	return nil
}

func showStats(conn *gorm.DB) error {
	reports := services.NewReportService(conn, nil)
	sum := reports.Summarize()
	fmt.Println("\n" + rule(50))
	fmt.Println("DATABASE STATISTICS")
	fmt.Println(rule(50))
	fmt.Printf("Total users:      %d (donors %d, receivers %d, admins %d)\n",
		sum.TotalUsers, sum.TotalDonors, sum.TotalReceivers, sum.TotalAdmins)
	fmt.Printf("Total donations:  %d (%d kg)\n", sum.TotalDonations, sum.TotalQuantity)
	fmt.Printf("Total requests:   %d\n", sum.TotalRequests)
	return nil
}

func exportAll(conn *gorm.DB) error {
	fmt.Println("Starting data export...")

	type step struct {
		filename string
		write    func(f *os.File) (int, error)
	}
	steps := []step{
		{"exported_users.csv", func(f *os.File) (int, error) { return export.Users(f, conn) }},
		{"exported_donations.csv", func(f *os.File) (int, error) { return export.Donations(f, conn) }},
		{"exported_requests.csv", func(f *os.File) (int, error) { return export.Requests(f, conn) }},
	}
	for _, s := range steps {
		f, err := os.Create(s.filename)
		if err != nil {
			return err
		}
		n, werr := s.write(f)
		cerr := f.Close()
		if werr != nil {
			return werr
		}
		if cerr != nil {
			return cerr
		}
		fmt.Printf("  %s: %d rows\n", s.filename, n)
	}

	reports := services.NewReportService(conn, nil)
	f, err := os.Create("exported_statistics.csv")
	if err != nil {
		return err
	}
	werr := export.Statistics(f, reports.Summarize())
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return werr
	}
	fmt.Println("  exported_statistics.csv")
	fmt.Println("Data export completed successfully.")
	return nil
}
