// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type User struct {
	ID           string    `db:"id"`
	TenantID     string    `db:"tenant_id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash []byte    `db:"password_hash"`
	PasswordSalt []byte    `db:"password_salt"`
	CreatedAt    time.Time `db:"created_at"`
}

func (u *User) TableName() string {
	return "users"
}

func (u *User) GetID() string {
	return u.ID
}

func (u *User) SetID(id string) {
	u.ID = id
}

func (u *User) GetTenantID() string {
	return u.TenantID
}

func (u *User) SetTenantID(tenantID string) {
	u.TenantID = tenantID
}

func (u *User) GetCreatedAt() time.Time {
	return u.CreatedAt
}

func (u *User) SetCreatedAt(t time.Time) {
	u.CreatedAt = t
}

func (u *User) Columns() []string {
	return []string{"username", "email", "password_hash", "password_salt"}
}

func (u *User) Values() []any {
	return []any{u.Username, u.Email, u.PasswordHash, u.PasswordSalt}
}

func (u *User) Targets() []any {
	return []any{&u.ID, &u.TenantID, &u.CreatedAt, &u.Username, &u.Email, &u.PasswordHash, &u.PasswordSalt}
}

// AdminRole is the role granted to the development user by the seed command.
const AdminRole = "Admin"

// Role is a named role defined within one tenant.
type Role struct {
	ID        string    `db:"id" json:"id"`
	TenantID  string    `db:"tenant_id" json:"-"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (r *Role) TableName() string {
	return "roles"
}

func (r *Role) GetID() string {
	return r.ID
}

func (r *Role) SetID(id string) {
	r.ID = id
}

func (r *Role) GetTenantID() string {
	return r.TenantID
}

func (r *Role) SetTenantID(tenantID string) {
	r.TenantID = tenantID
}

func (r *Role) GetCreatedAt() time.Time {
	return r.CreatedAt
}

func (r *Role) SetCreatedAt(t time.Time) {
	r.CreatedAt = t
}

func (r *Role) Columns() []string {
	return []string{"name"}
}

func (r *Role) Values() []any {
	return []any{r.Name}
}

func (r *Role) Targets() []any {
	return []any{&r.ID, &r.TenantID, &r.CreatedAt, &r.Name}
}

// UserRole grants a role to a user, both must live in the row's tenant.
type UserRole struct {
	ID        string    `db:"id"`
	TenantID  string    `db:"tenant_id"`
	UserID    string    `db:"user_id"`
	RoleID    string    `db:"role_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (u *UserRole) TableName() string {
	return "user_roles"
}

func (u *UserRole) GetID() string {
	return u.ID
}

func (u *UserRole) SetID(id string) {
	u.ID = id
}

func (u *UserRole) GetTenantID() string {
	return u.TenantID
}

func (u *UserRole) SetTenantID(tenantID string) {
	u.TenantID = tenantID
}

func (u *UserRole) GetCreatedAt() time.Time {
	return u.CreatedAt
}

func (u *UserRole) SetCreatedAt(t time.Time) {
	u.CreatedAt = t
}

func (u *UserRole) Columns() []string {
	return []string{"user_id", "role_id"}
}

func (u *UserRole) Values() []any {
	return []any{u.UserID, u.RoleID}
}

func (u *UserRole) Targets() []any {
	return []any{&u.ID, &u.TenantID, &u.CreatedAt, &u.UserID, &u.RoleID}
}

type ContactType string

const (
	ContactTypeColleague    ContactType = "Colleague"
	ContactTypeMentor       ContactType = "Mentor"
	ContactTypeClient       ContactType = "Client"
	ContactTypeIndustryPeer ContactType = "IndustryPeer"
	ContactTypeRecruiter    ContactType = "Recruiter"
	ContactTypeFriend       ContactType = "Friend"
	ContactTypeOther        ContactType = "Other"
)

// Tags is stored as a jsonb array.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

func (t *Tags) Scan(src any) error {
	var raw []byte

	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported tags type %T", src)
	}

	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return fmt.Errorf("failed to decode tags: %w", err)
	}

	*t = tags
	return nil
}

type Contact struct {
	ID              string      `db:"id" json:"id"`
	TenantID        string      `db:"tenant_id" json:"-"`
	FirstName       string      `db:"first_name" json:"first_name"`
	LastName        string      `db:"last_name" json:"last_name"`
	ContactType     ContactType `db:"contact_type" json:"contact_type"`
	Company         *string     `db:"company" json:"company,omitempty"`
	JobTitle        *string     `db:"job_title" json:"job_title,omitempty"`
	Email           *string     `db:"email" json:"email,omitempty"`
	Phone           *string     `db:"phone" json:"phone,omitempty"`
	LinkedInURL     *string     `db:"linkedin_url" json:"linkedin_url,omitempty"`
	Location        *string     `db:"location" json:"location,omitempty"`
	Notes           *string     `db:"notes" json:"notes,omitempty"`
	Tags            Tags        `db:"tags" json:"tags"`
	DateMet         *time.Time  `db:"date_met" json:"date_met,omitempty"`
	LastContactedAt *time.Time  `db:"last_contacted_at" json:"last_contacted_at,omitempty"`
	IsPriority      bool        `db:"is_priority" json:"is_priority"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time  `db:"updated_at" json:"updated_at,omitempty"`
}

func (c *Contact) TableName() string {
	return "contacts"
}

func (c *Contact) GetID() string {
	return c.ID
}

func (c *Contact) SetID(id string) {
	c.ID = id
}

func (c *Contact) GetTenantID() string {
	return c.TenantID
}

func (c *Contact) SetTenantID(tenantID string) {
	c.TenantID = tenantID
}

func (c *Contact) GetCreatedAt() time.Time {
	return c.CreatedAt
}

func (c *Contact) SetCreatedAt(t time.Time) {
	c.CreatedAt = t
}

func (c *Contact) Columns() []string {
	return []string{
		"first_name", "last_name", "contact_type", "company", "job_title", "email", "phone",
		"linkedin_url", "location", "notes", "tags", "date_met", "last_contacted_at",
		"is_priority", "updated_at",
	}
}

func (c *Contact) Values() []any {
	return []any{
		c.FirstName, c.LastName, string(c.ContactType), c.Company, c.JobTitle, c.Email, c.Phone,
		c.LinkedInURL, c.Location, c.Notes, c.Tags, c.DateMet, c.LastContactedAt,
		c.IsPriority, c.UpdatedAt,
	}
}

func (c *Contact) Targets() []any {
	return []any{
		&c.ID, &c.TenantID, &c.CreatedAt,
		&c.FirstName, &c.LastName, &c.ContactType, &c.Company, &c.JobTitle, &c.Email, &c.Phone,
		&c.LinkedInURL, &c.Location, &c.Notes, &c.Tags, &c.DateMet, &c.LastContactedAt,
		&c.IsPriority, &c.UpdatedAt,
	}
}

// ContactTypes lists every accepted ContactType.
var ContactTypes = []ContactType{
	ContactTypeColleague,
	ContactTypeMentor,
	ContactTypeClient,
	ContactTypeIndustryPeer,
	ContactTypeRecruiter,
	ContactTypeFriend,
	ContactTypeOther,
}

func (t ContactType) Valid() bool {
	for _, c := range ContactTypes {
		if c == t {
			return true
		}
	}
	return false
}
