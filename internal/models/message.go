package models

import "gorm.io/gorm"

// Message is a contact-form message from a user to the site admins.
type Message struct {
	gorm.Model
	FromUserID uint   `gorm:"index" json:"from_user_id"`
	FromUser   User   `gorm:"foreignKey:FromUserID" json:"from_user"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	Read       bool   `json:"read"`
}
