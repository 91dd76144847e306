package models

import "time"

// RefreshToken is one row of the refresh-token ledger. Rows are never
// deleted, only flagged revoked, so a replayed token always hits a
// revoked record instead of an empty lookup.
type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"              json:"id"`
	Token     string `gorm:"unique;not null;index"   json:"-"`
	Subject   string `gorm:"index;not null"          json:"subject"`
	Role      string `gorm:"not null"                json:"role"`
	ExpiresAt int64  `gorm:"not null"                json:"expires_at"`
	Revoked   bool   `gorm:"default:false"           json:"revoked"`
}

type Admin struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       string `gorm:"unique;not null"          json:"user_id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
}

type Appointment struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Date        time.Time `gorm:"index;not null"           json:"date"`
	Duration    int       `gorm:"not null"                 json:"duration"`
	ClientName  string    `gorm:"not null"                 json:"client_name"`
	ClientPhone string    `gorm:"not null"                 json:"client_phone"`
	Comment     string    `json:"comment"`
	Confirmed   bool      `gorm:"default:false"            json:"confirmed"`
}

type Work struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ImgURL    string    `gorm:"not null"                 json:"img_url"`
	Category  string    `gorm:"index;not null"           json:"category"`
	Title     string    `json:"title"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `gorm:"autoCreateTime"           json:"timestamp"`
}

// SiteConfig is a single-row table (id=1). StartingAt and ClosingAt are
// working hours as hour-of-day, used by the busy-day math.
type SiteConfig struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	StartingAt   int    `gorm:"not null"   json:"starting_at"`
	ClosingAt    int    `gorm:"not null"   json:"closing_at"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	InstagramURL string `json:"instagram_url"`
}
