package model

import "time"

// User represents a registered driver.  Phone numbers are unique
// and act as the login identifier.  Email is optional.  When a
// user registers without a password, the license plate is used as
// the initial password; that convenience is a known weak-auth
// shortcut and should be replaced by a proper credential flow.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – full name.
//  Email        – optional contact email.
//  Phone        – unique phone number in E.164 form.
//  LicensePlate – vehicle license plate.
//  PasswordHash – bcrypt hash of the password.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        *string   // users.email (nullable)
	Phone        string    // users.phone
	LicensePlate string    // users.license_plate
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
