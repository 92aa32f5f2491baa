package models

import "gorm.io/gorm"

type Location struct {
	gorm.Model
	Name     string `json:"name"`
	Address  string `json:"address"`
	Capacity int    `json:"capacity"`
	// Active is written explicitly on create, same as User.Active.
	Active bool `json:"active"`
}
