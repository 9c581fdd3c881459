package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"rentalportal/internal/checkout"
	"rentalportal/internal/domain/models"
	"rentalportal/internal/repositories"
	"rentalportal/internal/utils"

	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// ReceiptService projects finalized payment+booking+user triples into
// receipt views and exports them as PDF. It makes no decisions of its own;
// export failures never touch the underlying payment data.
type ReceiptService struct {
	PaymentRepo repositories.PaymentRepository
	BookingRepo repositories.BookingRepository
	UserRepo    repositories.UserRepository
	RequestID   string
}

// ReceiptView is the read-only projection served to the receipt page.
type ReceiptView struct {
	ReceiptID    string         `json:"receipt_id"`
	Payment      models.Payment `json:"payment"`
	Booking      models.Booking `json:"booking"`
	User         models.User    `json:"user"`
	Verification string         `json:"verification"`
}

// GetByPaymentID assembles a receipt for one payment.
func (s ReceiptService) GetByPaymentID(paymentID int64) (ReceiptView, error) {
	p, err := s.PaymentRepo.GetByID(paymentID)
	if err != nil {
		return ReceiptView{}, err
	}
	return s.buildView(p)
}

// GetByBookingID assembles a receipt from the booking's newest payment.
func (s ReceiptService) GetByBookingID(bookingID int64) (ReceiptView, error) {
	p, err := s.PaymentRepo.GetByBookingID(bookingID)
	if err != nil {
		return ReceiptView{}, err
	}
	return s.buildView(p)
}

func (s ReceiptService) buildView(p models.Payment) (ReceiptView, error) {
	booking, err := s.BookingRepo.GetByID(p.BookingID)
	if err != nil {
		return ReceiptView{}, err
	}
	user, err := s.UserRepo.GetByID(p.UserID)
	if err != nil {
		return ReceiptView{}, err
	}

	payload := checkout.VerificationPayload{
		ReceiptID:     checkout.ReceiptID(p.ID),
		BookingID:     booking.ID,
		PaymentID:     p.ID,
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		Date:          p.CreatedAt,
		CustomerName:  user.Name,
	}
	verification, err := payload.Encode()
	if err != nil {
		return ReceiptView{}, err
	}

	utils.LogEvent(s.RequestID, "receipt", "assemble", fmt.Sprintf("payment_id=%d", p.ID))
	return ReceiptView{
		ReceiptID:    payload.ReceiptID,
		Payment:      p,
		Booking:      booking,
		User:         user,
		Verification: verification,
	}, nil
}

// RenderPDF exports the receipt as a single-page document with the
// verification payload embedded as a QR code.
func (s ReceiptService) RenderPDF(view ReceiptView) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Rental Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PAYMENT RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Receipt No : "+view.ReceiptID)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued     : "+time.Now().Format("2006-01-02 15:04"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Billed to:")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Name        : %s", orDash(view.User.Name)),
		fmt.Sprintf("Email       : %s", orDash(view.User.Email)),
		fmt.Sprintf("Phone       : %s", orDash(view.Payment.PayerPhone)),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Rental:")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	vehicle := strings.TrimSpace(fmt.Sprintf("%s %s %d",
		view.Payment.VehicleMake, view.Payment.VehicleModel, view.Payment.VehicleYear))
	desc := fmt.Sprintf("%s (%s), %s to %s, %d day(s)",
		orDash(vehicle), orDash(view.Payment.LicensePlate),
		orDash(view.Booking.PickupDate), orDash(view.Booking.DropoffDate), view.Booking.Days)
	pdf.MultiCell(0, 6, desc, "", "", false)
	pdf.Ln(2)

	currency := utils.FirstNonEmpty(view.Payment.Currency, "KES")
	pdf.Cell(0, 6, "Method         : "+orDash(view.Payment.Method))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Transaction ID : "+orDash(view.Payment.TransactionID))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Reference      : "+orDash(view.Payment.Reference))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total paid: "+utils.FormatAmount(currency, view.Payment.Amount))
	pdf.Ln(12)

	if err := embedVerificationQR(pdf, view.Verification); err != nil {
		return nil, "", err
	}

	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Scan the code to verify this receipt.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("RECEIPT_%s.pdf", strings.ReplaceAll(view.ReceiptID, "-", "_"))
	utils.LogEvent(s.RequestID, "receipt", "render_pdf", fmt.Sprintf("payment_id=%d", view.Payment.ID))
	return buf.Bytes(), filename, nil
}

func embedVerificationQR(pdf *gofpdf.Fpdf, payload string) error {
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return err
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("verification-qr", opts, bytes.NewReader(png))
	x := pdf.GetX()
	y := pdf.GetY()
	pdf.ImageOptions("verification-qr", x, y, 35, 35, false, opts, 0, "")
	pdf.SetY(y + 38)
	return nil
}

func orDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}
