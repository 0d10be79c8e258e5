package notification

import (
	"fmt"
	"strings"

	"clubvoice/models"
)

const slotLayout = "Mon 2 Jan 15:04"

// slotText renders a booking's interval in the club's local time.
func slotText(club *models.Club, b *models.Booking) string {
	loc := club.Location()
	return fmt.Sprintf("%s-%s", b.Start.In(loc).Format(slotLayout), b.End.In(loc).Format("15:04"))
}

func confirmationBody(club *models.Club, b *models.Booking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi %s! Your booking at %s is confirmed: %s, %s.",
		firstName(b.ContactName), club.Name, b.Resource, slotText(club, b))
	if b.ConfirmationCode != "" {
		fmt.Fprintf(&sb, " Confirmation code: %s.", b.ConfirmationCode)
	}
	if club.MarketplaceBookingURL != "" {
		fmt.Fprintf(&sb, " Manage your booking: %s", club.MarketplaceBookingURL)
	}
	return sb.String()
}

func modificationBody(club *models.Club, b *models.Booking) string {
	body := fmt.Sprintf("Hi %s! Your booking at %s has been moved to: %s, %s.",
		firstName(b.ContactName), club.Name, b.Resource, slotText(club, b))
	if b.ConfirmationCode != "" {
		body += fmt.Sprintf(" Confirmation code: %s.", b.ConfirmationCode)
	}
	return body
}

func cancellationBody(club *models.Club, b *models.Booking) string {
	body := fmt.Sprintf("Hi %s! Your booking at %s (%s, %s) has been cancelled.",
		firstName(b.ContactName), club.Name, b.Resource, slotText(club, b))
	if b.CancellationReason != "" {
		body += " Reason: " + b.CancellationReason + "."
	}
	if club.Phone != "" {
		body += fmt.Sprintf(" Questions? Call us at %s.", club.Phone)
	}
	return body
}

func reminderBody(club *models.Club, b *models.Booking) string {
	return fmt.Sprintf("Reminder from %s: you have %s booked %s. See you there!",
		club.Name, b.Resource, slotText(club, b))
}

func escalationBody(club *models.Club, conv *models.Conversation, reason, summary string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] A caller needs your help.", club.Name)
	if conv.Phone != "" {
		fmt.Fprintf(&sb, " Caller: %s.", conv.Phone)
	}
	if reason != "" {
		fmt.Fprintf(&sb, " Reason: %s.", reason)
	}
	if summary != "" {
		fmt.Fprintf(&sb, " Summary: %s", summary)
	}
	return sb.String()
}

func leadAlertBody(club *models.Club, cust *models.Customer) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] New lead: %s, %s.", club.Name, cust.Name, cust.Phone)
	if cust.InterestedIn != "" {
		fmt.Fprintf(&sb, " Interested in: %s.", cust.InterestedIn)
	}
	if cust.Notes != "" {
		fmt.Fprintf(&sb, " Notes: %s", cust.Notes)
	}
	return sb.String()
}

func firstName(full string) string {
	full = strings.TrimSpace(full)
	if full == "" {
		return "there"
	}
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	return full
}
