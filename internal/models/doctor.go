package models

import (
	"time"
)

// Doctor is the single account allowed into the portal.
type Doctor struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session identifies the signed-in doctor for one request. It is passed
// explicitly to every fetch.
type Session struct {
	DoctorID string
	Email    string
	Name     string
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type AuthResponse struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	Doctor       *Doctor `json:"doctor"`
}

type MeResponse struct {
	Doctor  *Doctor `json:"doctor"`
	Profile Profile `json:"profile"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Mode   string `json:"mode"`
	Source string `json:"source"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Profile is the editable part of the Settings page.
type Profile struct {
	Name      string `json:"name" bson:"name"`
	Email     string `json:"email" bson:"email"`
	Phone     string `json:"phone" bson:"phone"`
	Specialty string `json:"specialty" bson:"specialty"`
}

type NotificationPreferences struct {
	Email bool `json:"email" bson:"email"`
	Push  bool `json:"push" bson:"push"`
	SMS   bool `json:"sms" bson:"sms"`
}

type Settings struct {
	DoctorID      string                  `json:"doctorId" bson:"_id"`
	Profile       Profile                 `json:"profile" bson:"profile"`
	Notifications NotificationPreferences `json:"notifications" bson:"notifications"`
	UpdatedAt     time.Time               `json:"updatedAt" bson:"updatedAt"`
}

// DefaultSettings mirrors what the Settings page shows before anything is saved.
func DefaultSettings(d *Doctor) Settings {
	return Settings{
		DoctorID:      d.ID,
		Profile:       Profile{Name: d.Name, Email: d.Email},
		Notifications: NotificationPreferences{Email: true, Push: true, SMS: false},
	}
}

type UpdateSettingsRequest struct {
	Profile struct {
		Name      string `json:"name" binding:"required,max=120"`
		Email     string `json:"email" binding:"required,email"`
		Phone     string `json:"phone" binding:"omitempty,phone"`
		Specialty string `json:"specialty" binding:"max=120"`
	} `json:"profile"`
	Notifications NotificationPreferences `json:"notifications"`
}
