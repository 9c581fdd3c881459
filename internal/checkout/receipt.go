package checkout

import (
	"encoding/json"
	"fmt"
)

// VerificationPayload is the machine-verifiable identity of a receipt,
// rendered as a scannable code on the exported document.
type VerificationPayload struct {
	ReceiptID     string  `json:"receipt_id"`
	BookingID     int64   `json:"booking_id"`
	PaymentID     int64   `json:"payment_id"`
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	CustomerName  string  `json:"customer_name"`
}

// Encode returns the JSON form embedded in the receipt's scannable code.
func (v VerificationPayload) Encode() (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ReceiptID derives the human-facing receipt number from the payment id.
func ReceiptID(paymentID int64) string {
	return fmt.Sprintf("RCP-%06d", paymentID)
}
