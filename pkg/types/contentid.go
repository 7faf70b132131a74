package types

import (
	"crypto/sha256"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ContentID identifies scanned content by its SHA-256 digest, so identical
// files found under different paths are searched once.
type ContentID [sha256.Size]byte

// ComputeContentID hashes content.
func ComputeContentID(content []byte) ContentID {
	return ContentID(sha256.Sum256(content))
}

// Hex returns the 64-character hex form.
func (id ContentID) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id ContentID) String() string {
	return id.Hex()
}

// ParseContentID parses the hex form produced by Hex.
func ParseContentID(hexStr string) (ContentID, error) {
	if len(hexStr) != 2*sha256.Size {
		return ContentID{}, fmt.Errorf("invalid content ID length: expected %d, got %d", 2*sha256.Size, len(hexStr))
	}
	decoded, err := hex.DecodeString(hexStr)
	if err != nil {
		return ContentID{}, fmt.Errorf("invalid hex string: %w", err)
	}
	var id ContentID
	copy(id[:], decoded)
	return id, nil
}

func (id ContentID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Hex())
}

func (id *ContentID) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}
	parsed, err := ParseContentID(hexStr)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Value implements driver.Valuer.
func (id ContentID) Value() (driver.Value, error) {
	return id.Hex(), nil
}

// Scan implements sql.Scanner.
func (id *ContentID) Scan(value interface{}) error {
	var hexStr string
	switch v := value.(type) {
	case string:
		hexStr = v
	case []byte:
		hexStr = string(v)
	default:
		return fmt.Errorf("cannot scan type %T into ContentID", value)
	}
	parsed, err := ParseContentID(hexStr)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
