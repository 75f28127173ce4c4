package model

import "time"

// User represents an application user record as stored in the `users`
// table.  The username is the identity tickets are booked under.
//
// Fields:
//  Username     – unique login name and ticket owner id.
//  Name         – display name.
//  PasswordHash – bcrypt hashed password.
//  Role         – CUSTOMER or ADMIN.
//  CreatedAt    – timestamp of creation.
type User struct {
    Username     string    // users.username
    Name         string    // users.name
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    CreatedAt    time.Time // users.created_at
}

const (
    RoleCustomer = "CUSTOMER"
    RoleAdmin    = "ADMIN"
)
