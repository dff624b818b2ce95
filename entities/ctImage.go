package entities

import (
	"crypto/sha256"
	"encoding/hex"
)

// CTImage stores uploaded scan bytes once per distinct content.
type CTImage struct {
	SHA256 string `gorm:"type:varchar(64);primaryKey" json:"sha256"`
	Data   []byte `json:"-"`
	Size   int    `json:"size"`
}

// NewCTImage builds the content-addressed row for data.
func NewCTImage(data []byte) *CTImage {
	sum := sha256.Sum256(data)
	return &CTImage{
		SHA256: hex.EncodeToString(sum[:]),
		Data:   data,
		Size:   len(data),
	}
}
