package fta

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/shopspring/decimal"

	"github.com/Saifnaser12/peergos-sub004/internal/domain"
)

// qrImageSize is the side length in pixels of the rendered QR PNG.
const qrImageSize = 256

// BuildQRPayload joins the six QR fields with "|" in a fixed order:
//
//	sellerTRN|buyerTRN|issueDate|totalAmount|vatAmount|hash
//
// Amounts carry exactly two decimals. An absent buyer TRN stays an empty
// field, never a dropped one: the delimiter count is constant so readers can
// split deterministically.
func BuildQRPayload(sellerTRN, buyerTRN string, issueDate time.Time, total, vat decimal.Decimal, hash string) string {
	return strings.Join([]string{
		sellerTRN,
		buyerTRN,
		issueDate.Format("2006-01-02"),
		total.Round(2).StringFixed(2),
		vat.Round(2).StringFixed(2),
		hash,
	}, "|")
}

// EncodeQRDataURL renders the payload as a QR image (error correction level
// M) and returns it as a PNG data URL. Failures are reported explicitly,
// never swallowed into a blank placeholder image, which would let an invoice
// look compliant without a scannable code.
func EncodeQRDataURL(payload string) (string, error) {
	code, err := qr.Encode(payload, qr.M, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrEncoding, err)
	}
	scaled, err := barcode.Scale(code, qrImageSize, qrImageSize)
	if err != nil {
		return "", fmt.Errorf("%w: scale: %v", domain.ErrEncoding, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return "", fmt.Errorf("%w: png: %v", domain.ErrEncoding, err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
