package entity

import "testing"

func TestContactFromMap(t *testing.T) {
	c := ContactFromMap(map[string]string{
		"Name":             " Jane Roe ",
		"title":            "CTO",
		"company":          "Firm Inc",
		"source_url":       "https://firm.com/about",
		"discovery_method": "serp",
		"linkedin":         "https://linkedin.com/in/janeroe",
		"blank":            "   ",
	})

	if c.Name != "Jane Roe" || c.Title != "CTO" || c.Company != "Firm Inc" {
		t.Fatalf("recognized fields not mapped: %+v", c)
	}
	if c.SourceURL != "https://firm.com/about" || c.DiscoveryMethod != "serp" {
		t.Fatalf("provenance fields not mapped: %+v", c)
	}
	if c.Extra["linkedin"] != "https://linkedin.com/in/janeroe" {
		t.Fatalf("unrecognized key must land in extra: %+v", c.Extra)
	}
	if _, ok := c.Extra["blank"]; ok {
		t.Fatalf("blank values must be dropped")
	}
}

func TestContactMergeFirstNonEmptyWins(t *testing.T) {
	base := Contact{Name: "Jane Roe", Title: "CTO"}
	merged := base.Merge(Contact{
		Name:    "J. Roe",
		Company: "Firm Inc",
		Extra:   map[string]string{"linkedin": "url"},
	})

	if merged.Name != "Jane Roe" {
		t.Fatalf("populated name must survive, got %q", merged.Name)
	}
	if merged.Company != "Firm Inc" {
		t.Fatalf("empty company must be filled, got %q", merged.Company)
	}
	if merged.Title != "CTO" {
		t.Fatalf("populated title must survive, got %q", merged.Title)
	}
	if merged.Extra["linkedin"] != "url" {
		t.Fatalf("extra keys must merge, got %+v", merged.Extra)
	}
}

func TestContactIsEmpty(t *testing.T) {
	if !(Contact{}).IsEmpty() {
		t.Fatalf("zero contact must be empty")
	}
	if (Contact{Name: "Jane"}).IsEmpty() {
		t.Fatalf("named contact must not be empty")
	}
}
