package pantry

import "strings"

// StorageLocation is where an ingredient is kept. The values are the literals
// the model schema uses.
type StorageLocation string

const (
	StorageRefrigerated StorageLocation = "냉장"
	StorageFrozen       StorageLocation = "냉동"
	StorageAmbient      StorageLocation = "실온"
)

// StorageLocations lists every location in display order.
var StorageLocations = []StorageLocation{StorageRefrigerated, StorageFrozen, StorageAmbient}

// Valid reports whether s is one of the three known locations.
func (s StorageLocation) Valid() bool {
	switch s {
	case StorageRefrigerated, StorageFrozen, StorageAmbient:
		return true
	}
	return false
}

func (s StorageLocation) String() string {
	return string(s)
}

// ParseStorage accepts the Korean literals as well as their English names.
func ParseStorage(raw string) (StorageLocation, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "냉장", "refrigerated", "fridge":
		return StorageRefrigerated, nil
	case "냉동", "frozen", "freezer":
		return StorageFrozen, nil
	case "실온", "ambient", "room":
		return StorageAmbient, nil
	}
	return "", ErrInvalidStorage
}
