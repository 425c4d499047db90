// Package models contains data structures for the application's domain models.
package models

import "github.com/google/uuid"

// NewID returns a fresh opaque document id.
func NewID() string {
	return uuid.NewString()
}

// Collections names the document collection (table) backing each entity.
type Collections struct {
	Profiles string `mapstructure:"COLLECTION_ID_PROFILE" yaml:"profiles"`
	Posts    string `mapstructure:"COLLECTION_ID_POST" yaml:"posts"`
	Likes    string `mapstructure:"COLLECTION_ID_LIKE" yaml:"likes"`
	Comments string `mapstructure:"COLLECTION_ID_COMMENT" yaml:"comments"`
	Follows  string `mapstructure:"COLLECTION_ID_FOLLOW" yaml:"follows"`
	Files    string `mapstructure:"COLLECTION_ID_FILE" yaml:"files"`
	Accounts string `mapstructure:"COLLECTION_ID_ACCOUNT" yaml:"accounts"`
}

// DefaultCollections returns the collection names used when none are configured.
func DefaultCollections() Collections {
	return Collections{
		Profiles: "profiles",
		Posts:    "posts",
		Likes:    "likes",
		Comments: "comments",
		Follows:  "follows",
		Files:    "stored_files",
		Accounts: "accounts",
	}
}

// Missing returns the config keys of collections that have no name.
func (c Collections) Missing() []string {
	var out []string
	check := func(key, v string) {
		if v == "" {
			out = append(out, key)
		}
	}
	check("COLLECTION_ID_PROFILE", c.Profiles)
	check("COLLECTION_ID_POST", c.Posts)
	check("COLLECTION_ID_LIKE", c.Likes)
	check("COLLECTION_ID_COMMENT", c.Comments)
	check("COLLECTION_ID_FOLLOW", c.Follows)
	check("COLLECTION_ID_FILE", c.Files)
	check("COLLECTION_ID_ACCOUNT", c.Accounts)
	return out
}
