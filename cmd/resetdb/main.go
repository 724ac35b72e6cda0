// Command resetdb deletes all application data. The default admin account is
// recreated on the next server start, so a reset leaves a usable system.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/diewo77/foodshare/internal/db"
	"github.com/diewo77/foodshare/internal/models"
	"github.com/joho/godotenv"
)

var yesFlag = flag.Bool("yes", false, "confirm deleting all data")

func main() {
	flag.Parse()
	_ = godotenv.Load()

	if !*yesFlag {
		fmt.Fprintln(os.Stderr, "resetdb deletes ALL users, donations and requests.")
		fmt.Fprintln(os.Stderr, "Re-run with --yes to confirm.")
		os.Exit(2)
	}

	conn, err := db.ConnectAndMigrate()
	if err != nil {
		fmt.Fprintln(os.Stderr, "database setup failed:", err)
		os.Exit(1)
	}

	tx := conn.Begin()
	if tx.Error != nil {
		fmt.Fprintln(os.Stderr, "could not start transaction:", tx.Error)
		os.Exit(1)
	}

	donations := tx.Where("1 = 1").Delete(&models.Donation{})
	requests := tx.Where("1 = 1").Delete(&models.FoodRequest{})
	users := tx.Where("1 = 1").Delete(&models.User{})
	for _, res := range []error{donations.Error, requests.Error, users.Error} {
		if res != nil {
			tx.Rollback()
			fmt.Fprintln(os.Stderr, "error resetting database:", res)
			os.Exit(1)
		}
	}
	if err := tx.Commit().Error; err != nil {
		fmt.Fprintln(os.Stderr, "commit failed:", err)
		os.Exit(1)
	}

	fmt.Println("Database cleared successfully.")
	fmt.Printf("Deleted %d donations.\n", donations.RowsAffected)
	fmt.Printf("Deleted %d requests.\n", requests.RowsAffected)
	fmt.Printf("Deleted %d users.\n", users.RowsAffected)
	fmt.Println("The default admin account is recreated on the next server start.")
}
