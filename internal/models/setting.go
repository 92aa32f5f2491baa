package models

import "gorm.io/gorm"

// Setting is a site-wide key/value setting. Public settings (theme colors,
// site name) are readable without authentication.
type Setting struct {
	gorm.Model
	Key    string `gorm:"uniqueIndex" json:"key"`
	Value  string `json:"value"`
	Public bool   `json:"public"`
}
