package repository

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// rawJSON 유효한 JSON만 저장, 아니면 NULL
func rawJSON(raw []byte) datatypes.JSON {
	if len(raw) == 0 || !json.Valid(raw) {
		return nil
	}
	return datatypes.JSON(raw)
}
