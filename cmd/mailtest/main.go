// Command mailtest sends a single test email through the configured SMTP
// transport, useful for debugging credentials without running the server.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/diewo77/foodshare/internal/config"
	"github.com/diewo77/foodshare/internal/notify"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var toFlag = flag.String("to", "", "recipient address (defaults to MAIL_DEFAULT_SENDER)")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	to := *toFlag
	if to == "" {
		to = cfg.SMTP.From
	}
	if to == "" {
		fmt.Fprintln(os.Stderr, "no recipient: pass --to or set MAIL_DEFAULT_SENDER")
		os.Exit(2)
	}

	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	if cfg.SMTP.Host == "" {
		fmt.Println("MAIL_SERVER is not set; the app would use the log-only mailer.")
	} else {
		fmt.Printf("Connecting to %s:%d...\n", cfg.SMTP.Host, cfg.SMTP.Port)
	}

	mailer := notify.NewMailer(cfg.SMTP, logger)
	err := mailer.Send(notify.Message{
		To:      to,
		Subject: "SMTP Test",
		Body:    "This is a test email from the FoodShare mail debugging tool.",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "FAILED:", err)
		os.Exit(1)
	}
	fmt.Println("Email sent successfully!")
}
