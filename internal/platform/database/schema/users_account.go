// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns used by the Postgres stores,
// so that SQL text never repeats identifiers by hand.
package schema

import "strings"

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table          string
	ID             string
	Email          string
	Phone          string
	Password       string
	FirstName      string
	LastName       string
	Role           string
	Status         string
	FailedAttempts string
	LockedAt       string
	LockExpiresAt  string
	LastLoginAt    string
	CreatedAt      string
	UpdatedAt      string

	// Unique index names, reported by Postgres on duplicate inserts.
	EmailKey string
	PhoneKey string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:          "users.account",
	ID:             "id",
	Email:          "email",
	Phone:          "phone",
	Password:       "passwordhash",
	FirstName:      "firstname",
	LastName:       "lastname",
	Role:           "role",
	Status:         "status",
	FailedAttempts: "failedattempts",
	LockedAt:       "lockedat",
	LockExpiresAt:  "lockexpiresat",
	LastLoginAt:    "lastloginat",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",

	EmailKey: "account_email_key",
	PhoneKey: "account_phone_key",
}

// Columns returns all column names in scan order.
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.Phone, t.Password, t.FirstName, t.LastName, t.Role,
		t.Status, t.FailedAttempts, t.LockedAt, t.LockExpiresAt, t.LastLoginAt,
		t.CreatedAt, t.UpdatedAt,
	}
}

// SelectList returns [UserAccountTable.Columns] joined for a SELECT clause.
func (t UserAccountTable) SelectList() string {
	return strings.Join(t.Columns(), ", ")
}
