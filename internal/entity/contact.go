package entity

import "strings"

// Contact holds the metadata scraped alongside an email address. Recognized
// fields are explicit; anything else the scraper attached lands in Extra.
type Contact struct {
	Name            string            `json:"name,omitempty"`
	Title           string            `json:"title,omitempty"`
	Company         string            `json:"company,omitempty"`
	Phone           string            `json:"phone,omitempty"`
	SourceURL       string            `json:"source_url,omitempty"`
	DiscoveryMethod string            `json:"discovery_method,omitempty"`
	Extra           map[string]string `json:"extra,omitempty"`
}

// ContactFromMap builds a Contact from the loose key/value pairs scrapers emit.
func ContactFromMap(meta map[string]string) Contact {
	c := Contact{}
	for key, value := range meta {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "name":
			c.Name = value
		case "title":
			c.Title = value
		case "company":
			c.Company = value
		case "phone":
			c.Phone = value
		case "source_url":
			c.SourceURL = value
		case "discovery_method":
			c.DiscoveryMethod = value
		default:
			if c.Extra == nil {
				c.Extra = make(map[string]string)
			}
			c.Extra[key] = value
		}
	}
	return c
}

// Merge fills empty fields from other. Populated fields are never overwritten,
// so a curated value survives a blank later occurrence.
func (c Contact) Merge(other Contact) Contact {
	if c.Name == "" {
		c.Name = other.Name
	}
	if c.Title == "" {
		c.Title = other.Title
	}
	if c.Company == "" {
		c.Company = other.Company
	}
	if c.Phone == "" {
		c.Phone = other.Phone
	}
	if c.SourceURL == "" {
		c.SourceURL = other.SourceURL
	}
	if c.DiscoveryMethod == "" {
		c.DiscoveryMethod = other.DiscoveryMethod
	}
	for key, value := range other.Extra {
		if _, ok := c.Extra[key]; ok {
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]string)
		}
		c.Extra[key] = value
	}
	return c
}

// IsEmpty reports whether no metadata field is populated.
func (c Contact) IsEmpty() bool {
	return c.Name == "" && c.Title == "" && c.Company == "" && c.Phone == "" &&
		c.SourceURL == "" && c.DiscoveryMethod == "" && len(c.Extra) == 0
}

// EmailRecord is one scraped occurrence of an email address. The same logical
// contact may appear in many records; deduplication happens downstream.
type EmailRecord struct {
	Email   string  `json:"email"`
	Contact Contact `json:"contact"`
}
