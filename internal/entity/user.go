package entity

// User is owned by the account service, this module only reads it.
type User struct {
	Base
	Username    string `gorm:"unique"`
	DisplayName string
	AvatarURL   string
	Bio         string
}
