package domain

import "time"

// NoMemberPhone is the placeholder phone sent by tills for walk-in customers
const NoMemberPhone = "-"

// Member represents a loyalty program member
type Member struct {
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	Points    int64     `json:"points"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasMemberPhone reports whether phone identifies a real member
func HasMemberPhone(phone string) bool {
	return phone != "" && phone != NoMemberPhone
}
