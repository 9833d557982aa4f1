package utils

import qrcode "github.com/skip2/go-qrcode"

// RenderTableQR encodes the customer menu URL for a table label into a
// scannable PNG of the requested pixel size.
func RenderTableQR(baseURL, label string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(baseURL+"/?table="+label, qrcode.Medium, size)
}
