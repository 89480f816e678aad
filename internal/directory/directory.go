// Package directory provides the static chat directory used to translate
// between chat display names, numeric ids and chat types.
package directory

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ChatType distinguishes group chats from private chats.
type ChatType string

const (
	Group   ChatType = "group"
	Private ChatType = "private"
)

// ParseChatType validates s as a chat type.
func ParseChatType(s string) (ChatType, error) {
	switch ChatType(s) {
	case Group, Private:
		return ChatType(s), nil
	default:
		return "", fmt.Errorf("unknown chat type %q", s)
	}
}

// Entry is one row of the source chat-info table.
type Entry struct {
	ID   int64
	Name string
	Type ChatType
}

// Directory holds four lookup mappings derived once from the chat-info
// table. It is never modified after New returns and is safe for concurrent
// reads.
type Directory struct {
	entries    []Entry
	nameByID   map[int64]string
	typeByName map[string]ChatType
	idByName   map[string]int64
	typeByID   map[int64]ChatType
}

// New builds a Directory. Duplicate ids are rejected; when two entries share
// a display name the later one wins the name lookups.
func New(entries []Entry) (*Directory, error) {
	d := &Directory{
		entries:    make([]Entry, 0, len(entries)),
		nameByID:   make(map[int64]string, len(entries)),
		typeByName: make(map[string]ChatType, len(entries)),
		idByName:   make(map[string]int64, len(entries)),
		typeByID:   make(map[int64]ChatType, len(entries)),
	}
	for _, e := range entries {
		if e.ID <= 0 {
			return nil, fmt.Errorf("chat %q: id must be positive", e.Name)
		}
		if e.Name == "" {
			return nil, fmt.Errorf("chat %d: empty name", e.ID)
		}
		if _, err := ParseChatType(string(e.Type)); err != nil {
			return nil, fmt.Errorf("chat %d: %w", e.ID, err)
		}
		if _, dup := d.nameByID[e.ID]; dup {
			return nil, fmt.Errorf("chat %d: duplicate id", e.ID)
		}
		d.entries = append(d.entries, e)
		d.nameByID[e.ID] = e.Name
		d.typeByName[e.Name] = e.Type
		d.idByName[e.Name] = e.ID
		d.typeByID[e.ID] = e.Type
	}
	sort.Slice(d.entries, func(i, j int) bool { return d.entries[i].ID < d.entries[j].ID })
	return d, nil
}

// FromChatInfo builds a Directory from the configuration form, keyed by the
// decimal chat id.
func FromChatInfo(info map[string]ChatInfo) (*Directory, error) {
	entries, err := ParseChatInfo(info)
	if err != nil {
		return nil, err
	}
	return New(entries)
}

// ParseChatInfo converts the configuration form into entries. Validation of
// the entries is left to New.
func ParseChatInfo(info map[string]ChatInfo) ([]Entry, error) {
	entries := make([]Entry, 0, len(info))
	for key, ci := range info {
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("chat id %q: %w", key, err)
		}
		entries = append(entries, Entry{ID: id, Name: ci.ChatName, Type: ChatType(ci.ChatType)})
	}
	return entries, nil
}

// ChatInfo is the configuration representation of a chat.
type ChatInfo struct {
	ChatName string `yaml:"chat_name"`
	ChatType string `yaml:"chat_type"`
}

// NameByID returns the display name for id.
func (d *Directory) NameByID(id int64) (string, bool) {
	name, ok := d.nameByID[id]
	return name, ok
}

// TypeByName returns the chat type for a display name.
func (d *Directory) TypeByName(name string) (ChatType, bool) {
	t, ok := d.typeByName[name]
	return t, ok
}

// IDByName returns the id for a display name.
func (d *Directory) IDByName(name string) (int64, bool) {
	id, ok := d.idByName[name]
	return id, ok
}

// TypeByID returns the chat type for id.
func (d *Directory) TypeByID(id int64) (ChatType, bool) {
	t, ok := d.typeByID[id]
	return t, ok
}

// Entries returns the chats of the given type ordered by id. An empty type
// returns every chat.
func (d *Directory) Entries(t ChatType) []Entry {
	out := make([]Entry, 0, len(d.entries))
	for _, e := range d.entries {
		if t == "" || e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of chats.
func (d *Directory) Len() int {
	return len(d.entries)
}
