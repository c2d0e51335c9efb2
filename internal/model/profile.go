package model

import "time"

const DefaultTimezone = "America/Mexico_City"

type Profile struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	Phone         string    `db:"phone" json:"phone"`
	WhatsAppOptIn bool      `db:"whatsapp_opt_in" json:"whatsapp_opt_in"`
	Timezone      string    `db:"timezone" json:"timezone"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Location falls back to DefaultTimezone for unknown zone names.
func (p *Profile) Location() *time.Location {
	name := p.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (p *Profile) CanReceiveWhatsApp() bool {
	return p.WhatsAppOptIn && p.Phone != ""
}
