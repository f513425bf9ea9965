package domain

import "time"

// ProfileCollection is the document store collection holding ProfileRecords.
const ProfileCollection = "usuarios"

const (
	MinAge            = 15
	MaxAge            = 100
	MinPasswordLength = 6
)

// ProfileRecord is the per-identity document, keyed by Identity.ID.
type ProfileRecord struct {
	UID       string    `json:"uid" bson:"uid"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Age       int       `json:"age" bson:"edad"`
	Specialty string    `json:"specialty" bson:"especialidad"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updated_at,omitempty" bson:"updatedAt,omitempty"`
}

// ProfileFields is the partial update written on profile edit.
type ProfileFields struct {
	Name      string
	Email     string
	Age       int
	Specialty string
	UpdatedAt time.Time
}

// ProfileForm mirrors the editable fields of a ProfileRecord as raw strings
// plus the password inputs of the profile screen. It is never persisted.
type ProfileForm struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Age             string `json:"age"`
	Specialty       string `json:"specialty"`
	CurrentPassword string `json:"-"`
	NewPassword     string `json:"-"`
}

// ClearPasswords wipes both password inputs.
func (f *ProfileForm) ClearPasswords() {
	f.CurrentPassword = ""
	f.NewPassword = ""
}
