package models

import "encoding/json"

// CartEntry is a section selected for registration but not yet accepted.
type CartEntry struct {
	SectionID string          `json:"section_id"`
	Label     string          `json:"label"`
	RawID     json.RawMessage `json:"-"`
}

// Cart keeps pending selections in insertion order, one entry per section.
// It is not safe for concurrent use; the owning workspace serializes access.
type Cart struct {
	entries []CartEntry
}

// Add appends entry unless its section is already selected.
func (c *Cart) Add(entry CartEntry) bool {
	if entry.SectionID == "" || c.Contains(entry.SectionID) {
		return false
	}
	c.entries = append(c.entries, entry)
	return true
}

// Remove drops the entry for sectionID.
func (c *Cart) Remove(sectionID string) bool {
	for i, entry := range c.entries {
		if entry.SectionID == sectionID {
			c.entries = append(c.entries[:i:i], c.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether sectionID is selected.
func (c *Cart) Contains(sectionID string) bool {
	for _, entry := range c.entries {
		if entry.SectionID == sectionID {
			return true
		}
	}
	return false
}

// Entries returns a copy of the selections.
func (c *Cart) Entries() []CartEntry {
	out := make([]CartEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Replace swaps the selections, keeping the first entry per section.
func (c *Cart) Replace(entries []CartEntry) {
	c.entries = nil
	for _, entry := range entries {
		c.Add(entry)
	}
}

// Len returns the number of selections.
func (c *Cart) Len() int {
	return len(c.entries)
}

// RegistrationEvent is the outcome of one section registration.
type RegistrationEvent struct {
	SectionID string `json:"section_id"`
	Label     string `json:"label"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
}

// RegistrationReport summarizes a cart submission.
type RegistrationReport struct {
	Events       []RegistrationEvent `json:"events"`
	SuccessCount int                 `json:"success_count"`
	FailureCount int                 `json:"failure_count"`
	Remaining    []CartEntry         `json:"remaining"`
}

// CartAddRequest selects a section. Label is derived from the catalog when empty.
type CartAddRequest struct {
	SectionID string `json:"section_id" validate:"required"`
	Label     string `json:"label"`
}
