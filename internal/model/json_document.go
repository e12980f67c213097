package model

import (
	"database/sql/driver"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSONDocument is a JSON value stored exactly as received. It behaves like
// datatypes.JSON except that postgres gets a json column instead of jsonb,
// which would reorder keys and drop whitespace.
type JSONDocument datatypes.JSON

func (d JSONDocument) Value() (driver.Value, error) {
	return datatypes.JSON(d).Value()
}

func (d *JSONDocument) Scan(value any) error {
	return (*datatypes.JSON)(d).Scan(value)
}

func (d JSONDocument) MarshalJSON() ([]byte, error) {
	return datatypes.JSON(d).MarshalJSON()
}

func (d *JSONDocument) UnmarshalJSON(b []byte) error {
	return (*datatypes.JSON)(d).UnmarshalJSON(b)
}

func (JSONDocument) GormDataType() string {
	return "json"
}

func (d JSONDocument) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "JSON"
	}
	return datatypes.JSON(d).GormDBDataType(db, field)
}
