package model

import "time"

type ContactMessage struct {
	ID        string               `db:"id" json:"id"`
	UserID    string               `db:"user_id" json:"userId"`
	Subject   string               `db:"subject" json:"subject"`
	Message   string               `db:"message" json:"message"`
	Status    ContactMessageStatus `db:"status" json:"status"`
	CreatedAt time.Time            `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time            `db:"updated_at" json:"updatedAt"`
}

type CreateContactMessageParams struct {
	UserID  string
	Subject string
	Message string
}
