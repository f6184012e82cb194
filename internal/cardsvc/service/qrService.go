package service

import (
	"fmt"
	"path/filepath"

	"github.com/evervow/card-services/internal/cardsvc/apperr"

	qrcode "github.com/skip2/go-qrcode"
)

// QRService renders the QR code PNG that links a printed card to its public
// viewing page.
type QRService struct {
	baseURL string // frontend origin, e.g. https://cards.example.com
	dir     string // where the PNGs are written
}

func NewQRService(baseURL, dir string) *QRService {
	return &QRService{
		baseURL: baseURL,
		dir:     dir,
	}
}

// CardURL is the address encoded into the QR code.
func (s *QRService) CardURL(cardID string) string {
	return fmt.Sprintf("%s/view-card.html?id=%s", s.baseURL, cardID)
}

// Generate writes the PNG for a card and returns its path. Low error
// correction keeps the code small enough to scan from a printed card.
func (s *QRService) Generate(cardID string) (string, error) {
	path := filepath.Join(s.dir, cardID+"_qr.png")

	if err := qrcode.WriteFile(s.CardURL(cardID), qrcode.Low, 512, path); err != nil {
		return "", apperr.Internal("failed to generate qr code", err)
	}

	return filepath.ToSlash(path), nil
}

// PNGPath is where Generate would place the code for a card, used to probe
// for an already rendered file.
func (s *QRService) PNGPath(cardID string) string {
	return filepath.Join(s.dir, cardID+"_qr.png")
}
