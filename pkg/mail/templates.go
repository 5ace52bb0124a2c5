package mail

import "fmt"

// VerificationMessage builds the email carrying the verification link.
func VerificationMessage(to, verifyURL string) Message {
	return Message{
		To:      to,
		Subject: "Verify your email address",
		Body: fmt.Sprintf(
			"Welcome!\n\nPlease verify your email address to continue with your order:\n\n%s\n\nThe link expires in one hour.\n",
			verifyURL,
		),
	}
}

// OrderConfirmationMessage builds the post-creation order summary.
func OrderConfirmationMessage(to, orderID, paperType string, pages int, dueDate string, total, deposit float64) Message {
	return Message{
		To:      to,
		Subject: "Your order has been received",
		Body: fmt.Sprintf(
			"Thank you for your order.\n\nOrder ID: %s\nPaper type: %s\nPages: %d\nDue date: %s\nTotal amount: %.2f\nDeposit due: %.2f\n",
			orderID, paperType, pages, dueDate, total, deposit,
		),
	}
}

// PaymentConfirmationMessage builds the post-payment confirmation.
func PaymentConfirmationMessage(to, orderID string, amount float64) Message {
	return Message{
		To:      to,
		Subject: "Payment received",
		Body: fmt.Sprintf(
			"We received your payment of %.2f for order %s.\nYour order is now in progress.\n",
			amount, orderID,
		),
	}
}
