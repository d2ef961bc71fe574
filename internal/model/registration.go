// Package model defines the data structures used throughout the application.
// Each struct maps to one table in the store and, through its json tags, to
// the wire format the frontend already speaks (snake_case keys).
package model

// Registration is the account row created by POST /register_user.
//
// FirebaseUID is supplied by the caller (the mobile app signs in with Firebase
// and forwards the uid). This service never generates or verifies it; it is an
// opaque key. Registrations are insert-only.
type Registration struct {
	FirebaseUID string `json:"firebase_uid"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"-"` // bcrypt hash once stored; never serialized
}

// UserProfile holds the child and parent details for one registration.
// It is upserted: the first save inserts, later saves overwrite every field.
//
// ParentPhoneNumber is an integer column, as it always has been. Phone numbers
// with a leading zero, a "+" or separators do not survive that type.
type UserProfile struct {
	FirebaseUID       string `json:"-"`
	ChildName         string `json:"child_name"`
	ChildAge          int    `json:"child_age"`
	ParentName        string `json:"parent_name"`
	ParentPhoneNumber int64  `json:"parent_phone_number"`
	Address           string `json:"address"`
}
