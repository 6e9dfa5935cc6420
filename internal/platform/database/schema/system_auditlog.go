// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

import "strings"

// SystemAuditLogTable represents the 'system.auditlog' table
type SystemAuditLogTable struct {
	Table        string
	ID           string
	AccountID    string
	Action       string
	ResourceType string
	ResourceID   string
	IPAddress    string
	UserAgent    string
	SessionID    string
	RequestID    string
	Metadata     string
	CreatedAt    string
}

// SystemAuditLog is the schema definition for system.auditlog
var SystemAuditLog = SystemAuditLogTable{
	Table:        "system.auditlog",
	ID:           "id",
	AccountID:    "accountid",
	Action:       "action",
	ResourceType: "resourcetype",
	ResourceID:   "resourceid",
	IPAddress:    "ipaddress",
	UserAgent:    "useragent",
	SessionID:    "sessionid",
	RequestID:    "requestid",
	Metadata:     "metadata",
	CreatedAt:    "createdat",
}

// Columns returns all column names in scan order.
func (t SystemAuditLogTable) Columns() []string {
	return []string{
		t.ID, t.AccountID, t.Action, t.ResourceType, t.ResourceID,
		t.IPAddress, t.UserAgent, t.SessionID, t.RequestID, t.Metadata, t.CreatedAt,
	}
}

// SelectList returns [SystemAuditLogTable.Columns] joined for a SELECT clause.
func (t SystemAuditLogTable) SelectList() string {
	return strings.Join(t.Columns(), ", ")
}
