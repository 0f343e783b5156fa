package models

// Profile is a person's membership in one organization. PersonID links
// to a global person record once the person has registered; until then
// the profile exists on its own, keyed by email.
type Profile struct {
	ID         string `json:"id" db:"id"`
	OrgID      string `json:"orgid" db:"orgid"`
	PersonID   string `json:"personid" db:"personid"` // empty until the person registers
	Name       string `json:"name" db:"name"`
	Bio        string `json:"bio" db:"bio"`
	Email      string `json:"email" db:"email"`
	Admin      bool   `json:"admin" db:"admin"`
	Supervisor string `json:"supervisor" db:"supervisor"` // profile id, empty if none
}

// Assignment joins a profile to a role. Composite key, no surrogate id.
type Assignment struct {
	OrgID     string `json:"orgid" db:"orgid"`
	ProfileID string `json:"profileid" db:"profileid"`
	RoleID    string `json:"roleid" db:"roleid"`
}
