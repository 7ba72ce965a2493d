// Package slots keeps the departure times offered per trip date in a JSON file
// shaped like {"2026-10-20": ["09:00", "11:30"]}.
package slots

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

type Catalog struct {
	Path string
	mu   sync.RWMutex
}

func NewCatalog(path string) *Catalog {
	return &Catalog{Path: path}
}

// ForDate returns the times for date; an unknown date or a missing file yields none.
func (c *Catalog) ForDate(date string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := c.read()
	if err != nil {
		return nil, err
	}
	res := gjson.GetBytes(data, gjson.Escape(strings.TrimSpace(date)))
	return toStrings(res), nil
}

func (c *Catalog) All() (map[string][]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := c.read()
	if err != nil {
		return nil, err
	}
	return parseAll(data), nil
}

// Set overwrites the times for a single date and leaves the others alone.
func (c *Catalog) Set(date string, times []string) error {
	date = strings.TrimSpace(date)
	if date == "" {
		return fmt.Errorf("date required")
	}
	if times == nil {
		times = []string{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.read()
	if err != nil {
		return err
	}
	all := parseAll(data)
	all[date] = times

	out, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode slots: %w", err)
	}
	return writeAtomic(c.Path, out)
}

func (c *Catalog) read() ([]byte, error) {
	data, err := os.ReadFile(c.Path)
	if errors.Is(err, os.ErrNotExist) {
		return []byte("{}"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read slots: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []byte("{}"), nil
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("slots file %s is not valid json", c.Path)
	}
	return data, nil
}

func parseAll(data []byte) map[string][]string {
	all := map[string][]string{}
	gjson.ParseBytes(data).ForEach(func(key, value gjson.Result) bool {
		all[key.String()] = toStrings(value)
		return true
	})
	return all
}

func toStrings(res gjson.Result) []string {
	out := []string{}
	if !res.IsArray() {
		return out
	}
	for _, v := range res.Array() {
		out = append(out, v.String())
	}
	return out
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create slots dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".slots-*.json")
	if err != nil {
		return fmt.Errorf("create temp slots file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write slots: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close slots: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace slots file: %w", err)
	}
	return nil
}
