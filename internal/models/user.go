package models

type User struct {
	ID     string `json:"id" db:"id"`
	Email  string `json:"email" db:"email"`
	Name   string `json:"name" db:"name"`
	Avatar string `json:"avatar,omitempty" db:"avatar"`
}
