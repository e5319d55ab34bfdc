package entities

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex:uq_users_username;size:64;not null" json:"username"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
}
