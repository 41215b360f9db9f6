package model

import "time"

// User represents a registered blog account as stored in the `users`
// table. The name is unique and never changes once the row exists; other
// tables refer to a user by name (posts.author, comments.author,
// likes.username) or by id (the session cookie payload).
//
// Fields:
//  ID           – primary key identifier, assigned at registration.
//  Name         – unique, case-sensitive username.
//  PasswordHash – stored password record (`salt|hexdigest` or a bcrypt hash).
//  Email        – optional address; empty when not supplied.
//  CreatedAt    – timestamp of registration.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	PasswordHash string    // users.pw_hash
	Email        string    // users.email
	CreatedAt    time.Time // users.created_at
}
