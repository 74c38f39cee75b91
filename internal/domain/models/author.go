// internal/domain/models/author.go
package models

// Author records who created a broadcast or message. Both fields are optional:
// system-generated messages have no identity.
type Author struct {
	Identity string `bson:"identity,omitempty" json:"identity,omitempty"`
	Email    string `bson:"email,omitempty" json:"email,omitempty"`
}
