package notify

import (
	"fmt"

	"github.com/diewo77/foodshare/internal/models"
	"github.com/diewo77/foodshare/internal/receipt"
	"go.uber.org/zap"
)

// ClaimNotifier runs after a claim has committed. It builds the confirmation
// PDF and mails it to both parties. Each delivery is attempted independently;
// failures are logged and reported back so the handler can warn the acting
// user, but nothing here can undo the claim.
type ClaimNotifier struct {
	Mailer Mailer
	Log    *zap.Logger
}

func NewClaimNotifier(mailer Mailer, log *zap.Logger) *ClaimNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &ClaimNotifier{Mailer: mailer, Log: log}
}

// DonationClaimed sends the receiver and donor confirmations. Returns the
// first delivery error, nil when both went out.
func (n *ClaimNotifier) DonationClaimed(d *models.Donation, donor, receiverUser models.User) error {
	pdfData, err := receipt.Render(receipt.Build(d, donor, receiverUser))
	if err != nil {
		n.Log.Warn("confirmation pdf failed", zap.Uint("donation_id", d.ID), zap.Error(err))
		return err
	}
	att := &Attachment{Filename: receipt.Filename(d.ID), Data: pdfData}

	var firstErr error
	receiverMsg := Message{
		To:      receiverUser.Email,
		Subject: fmt.Sprintf("FoodShare Donation Confirmation (#%d)", d.ID),
		Body: fmt.Sprintf("Dear %s,\n\nYou have successfully claimed a donation of %s. A confirmation PDF is attached.\n\nPlease contact the donor to arrange pickup.\n\nThank you,\nFoodShare Team",
			receiverUser.Username, d.FoodType),
		Attachment: att,
	}
	if err := n.Mailer.Send(receiverMsg); err != nil {
		n.Log.Warn("receiver notification failed", zap.Uint("donation_id", d.ID), zap.Error(err))
		firstErr = err
	}

	donorMsg := Message{
		To:      donor.Email,
		Subject: fmt.Sprintf("FoodShare: Your Donation Claimed (#%d)", d.ID),
		Body: fmt.Sprintf("Dear %s,\n\nYour donation of %s has been claimed by %s.\n\nA confirmation PDF is attached for your records.\n\nThank you,\nFoodShare Team",
			donor.Username, d.FoodType, receiverUser.Username),
		Attachment: att,
	}
	if err := n.Mailer.Send(donorMsg); err != nil {
		n.Log.Warn("donor notification failed", zap.Uint("donation_id", d.ID), zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WelcomeUID mails the generated login identifier to a new user.
func (n *ClaimNotifier) WelcomeUID(u models.User) error {
	msg := Message{
		To:      u.Email,
		Subject: "Welcome to FoodShare! Your Unique ID",
		Body: fmt.Sprintf("Dear %s,\n\nWelcome to FoodShare! Your account has been created.\nYour Unique ID (UID) is: %s\nYou can use this UID or your username to login.\n\nThank you,\nFoodShare Team",
			u.Username, u.UniqueID),
	}
	if err := n.Mailer.Send(msg); err != nil {
		n.Log.Warn("welcome email failed", zap.Uint("user_id", u.ID), zap.Error(err))
		return err
	}
	return nil
}
