package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EntryTypeLink is the "type" discriminator of a link entry
const EntryTypeLink = "link"

// DefaultDisplayMode is used when no settings document exists
const DefaultDisplayMode = 1

// Link is the card shown for an ingested URL
type Link struct {
	Thumbnail string `json:"thumbnail"`
	URL       string `json:"url"`
	Title     string `json:"title"`
}

// Entry is a single item of a category: either a plain blob path or a link card
type Entry struct {
	Path string
	Link *Link
}

// PathEntry creates an entry referencing a blob path
func PathEntry(path string) Entry {
	return Entry{Path: path}
}

// LinkEntry creates a link card entry whose thumbnail is a blob path
func LinkEntry(thumbnail, url, title string) Entry {
	return Entry{Link: &Link{Thumbnail: thumbnail, URL: url, Title: title}}
}

// IsLink reports whether the entry is a link card
func (e Entry) IsLink() bool {
	return e.Link != nil
}

// EffectivePath returns the blob path the entry owns. Deduplication and
// removal always compare effective paths.
func (e Entry) EffectivePath() string {
	if e.Link != nil {
		return e.Link.Thumbnail
	}
	return e.Path
}

type linkJSON struct {
	Type      string `json:"type"`
	Thumbnail string `json:"thumbnail"`
	URL       string `json:"url"`
	Title     string `json:"title"`
}

// MarshalJSON encodes path entries as strings and links as objects
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Link == nil {
		return json.Marshal(e.Path)
	}
	return json.Marshal(linkJSON{
		Type:      EntryTypeLink,
		Thumbnail: e.Link.Thumbnail,
		URL:       e.Link.URL,
		Title:     e.Link.Title,
	})
}

// UnmarshalJSON accepts either a string or a link object
func (e *Entry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var path string
		if err := json.Unmarshal(data, &path); err != nil {
			return err
		}
		*e = PathEntry(path)
		return nil
	}

	var l linkJSON
	if err := json.Unmarshal(data, &l); err != nil {
		return fmt.Errorf("entry must be a string or a link object: %w", err)
	}
	if l.Type != "" && l.Type != EntryTypeLink {
		return fmt.Errorf("unknown entry type %q", l.Type)
	}
	*e = LinkEntry(l.Thumbnail, l.URL, l.Title)
	return nil
}

// Category is a named, ordered list of entries
type Category struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// Catalog is the whole gallery document. Categories keep their insertion
// order, which is also the key order of the JSON object.
type Catalog struct {
	Categories []Category
}

// Names returns the category names in document order
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		names = append(names, cat.Name)
	}
	return names
}

func (c *Catalog) index(name string) int {
	for i, cat := range c.Categories {
		if cat.Name == name {
			return i
		}
	}
	return -1
}

// Has reports whether the category exists
func (c *Catalog) Has(name string) bool {
	return c.index(name) >= 0
}

// Entries returns a deep copy of the entries of a category
func (c *Catalog) Entries(name string) ([]Entry, bool) {
	i := c.index(name)
	if i < 0 {
		return nil, false
	}
	return cloneEntries(c.Categories[i].Entries), true
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		if e.Link != nil {
			l := *e.Link
			e.Link = &l
		}
		out[i] = e
	}
	return out
}

// Append adds an entry, creating the category if needed. It returns false
// when an entry with the same effective path is already present.
func (c *Catalog) Append(name string, entry Entry) bool {
	i := c.index(name)
	if i < 0 {
		c.Categories = append(c.Categories, Category{Name: name})
		i = len(c.Categories) - 1
	}

	path := entry.EffectivePath()
	for _, existing := range c.Categories[i].Entries {
		if existing.EffectivePath() == path {
			return false
		}
	}

	c.Categories[i].Entries = append(c.Categories[i].Entries, entry)
	return true
}

// RemoveEntry drops every entry of the category whose effective path equals
// path. It returns false when the category does not exist.
func (c *Catalog) RemoveEntry(name, path string) bool {
	i := c.index(name)
	if i < 0 {
		return false
	}

	kept := make([]Entry, 0, len(c.Categories[i].Entries))
	for _, e := range c.Categories[i].Entries {
		if e.EffectivePath() != path {
			kept = append(kept, e)
		}
	}
	c.Categories[i].Entries = kept
	return true
}

// RemoveCategory deletes a category. It returns false when it does not exist.
func (c *Catalog) RemoveCategory(name string) bool {
	i := c.index(name)
	if i < 0 {
		return false
	}
	c.Categories = append(c.Categories[:i], c.Categories[i+1:]...)
	return true
}

// Clone returns a deep copy
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{Categories: make([]Category, len(c.Categories))}
	for i, cat := range c.Categories {
		out.Categories[i] = Category{Name: cat.Name, Entries: cloneEntries(cat.Entries)}
	}
	return out
}

// MarshalJSON writes the catalog as a JSON object keyed by category name
func (c Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cat := range c.Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(cat.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		entries := cat.Entries
		if entries == nil {
			entries = []Entry{}
		}
		val, err := json.Marshal(entries)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keyed by category name, keeping key order
func (c *Catalog) UnmarshalJSON(data []byte) error {
	c.Categories = nil
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("catalog must be a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("invalid category key %v", tok)
		}

		var entries []Entry
		if err := dec.Decode(&entries); err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}
		if entries == nil {
			entries = []Entry{}
		}

		// Later duplicates win, like JSON.parse
		if i := c.index(name); i >= 0 {
			c.Categories[i].Entries = entries
			continue
		}
		c.Categories = append(c.Categories, Category{Name: name, Entries: entries})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// Settings is the persisted display configuration
type Settings struct {
	DisplayMode int `json:"displayMode"`
}

// ValidDisplayMode reports whether mode is an accepted display mode
func ValidDisplayMode(mode int) bool {
	return mode == 1 || mode == 2
}

// Index represents the main index page data
type Index struct {
	Categories  []Category
	DisplayMode int
}
