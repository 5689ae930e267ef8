package report

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// VerificationQR creates a QR code PNG encoding the container's title id and
// sha256 digest, so a printed report can be checked against the file itself.
func VerificationQR(titleID, sha string, size int) ([]byte, error) {
	title := strings.TrimSpace(titleID)
	if title == "" {
		return nil, fmt.Errorf("title id is empty")
	}
	if size <= 0 {
		size = 128
	}
	payload := title
	if digest := sanitizeHash(sha); digest != "" {
		payload = fmt.Sprintf("%s sha256:%s", title, digest)
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}

func sanitizeHash(hash string) string {
	upper := strings.ToUpper(strings.TrimSpace(hash))
	if upper == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range upper {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'F':
			b.WriteRune(r)
		}
	}
	return b.String()
}
