// Package topology parses the hosts configuration document into the
// set of monitored hosts.
//
// Two document shapes are recognized under the top-level "hosts" key:
// a grouped list of {type, color, ips} entries, and a legacy flat list
// of bare addresses. Individual address entries may either be plain
// strings or single-key mappings carrying per-host settings, e.g.
//
//	hosts:
//	  - type: Routers
//	    color: "#0d6efd"
//	    ips:
//	      - 192.168.1.1
//	      - 192.168.1.2: {known_offline: true}
//
// The document may also carry an opaque "config" section of key-value
// settings, which is passed through untouched.
package topology

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultGroup is the group label assigned to hosts without one.
	DefaultGroup = "Unknown"

	// DefaultColor is the display color assigned to hosts without one.
	DefaultColor = "#6c757d"
)

// Host is one monitored network address with its group metadata.
type Host struct {
	Address      string
	Group        string
	Color        string
	KnownOffline bool
}

// Document is the parsed hosts configuration: the host set plus the
// uninterpreted config section.
type Document struct {
	Hosts  []Host
	Config map[string]any
}

// Load reads and parses the hosts file at path.
func Load(path string, logger *logrus.Logger) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read hosts file %s: %w", path, err)
	}
	return Parse(data, logger)
}

// Parse parses a hosts document. A document that is empty, not a
// mapping, or missing the "hosts" key yields an error and no hosts.
// Malformed individual entries are skipped with a warning; a duplicate
// address overwrites the earlier occurrence (last write wins).
func Parse(data []byte, logger *logrus.Logger) (*Document, error) {
	var root any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("could not parse hosts document: %w", err)
	}
	if root == nil {
		return nil, fmt.Errorf("hosts document is empty")
	}

	m, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("hosts document is not a mapping, got %T", root)
	}

	rawHosts, ok := m["hosts"]
	if !ok {
		return nil, fmt.Errorf("hosts document is missing the 'hosts' key")
	}
	list, ok := rawHosts.([]any)
	if !ok {
		return nil, fmt.Errorf("'hosts' must be a list, got %T", rawHosts)
	}

	doc := &Document{}
	if cfg, ok := m["config"].(map[string]any); ok {
		doc.Config = cfg
	}

	if isGrouped(list) {
		doc.Hosts = parseGrouped(list, logger)
	} else {
		doc.Hosts = parseFlat(list, logger)
	}
	return doc, nil
}

// isGrouped reports whether the host list uses the grouped shape:
// the first element is a mapping that carries a "type" key.
func isGrouped(list []any) bool {
	if len(list) == 0 {
		return false
	}
	first, ok := list[0].(map[string]any)
	if !ok {
		return false
	}
	_, hasType := first["type"]
	return hasType
}

func parseGrouped(list []any, logger *logrus.Logger) []Host {
	var hosts []Host
	index := make(map[string]int)

	for i, raw := range list {
		group, ok := raw.(map[string]any)
		if !ok {
			logger.Warnf("topology: skipping group at index %d: not a mapping (%T)", i, raw)
			continue
		}

		label := stringOr(group["type"], DefaultGroup)
		color := stringOr(group["color"], DefaultColor)

		entries, _ := group["ips"].([]any)
		for _, entry := range entries {
			h, ok := parseEntry(entry)
			if !ok {
				logger.Warnf("topology: skipping unresolvable host entry %v in group %q", entry, label)
				continue
			}
			h.Group = label
			h.Color = color
			hosts = upsert(hosts, index, h)
		}
		logger.Infof("topology: loaded %d hosts for group %q", len(entries), label)
	}
	return hosts
}

func parseFlat(list []any, logger *logrus.Logger) []Host {
	var hosts []Host
	index := make(map[string]int)

	for _, entry := range list {
		h, ok := parseEntry(entry)
		if !ok {
			logger.Warnf("topology: skipping unresolvable host entry %v", entry)
			continue
		}
		h.Group = DefaultGroup
		h.Color = DefaultColor
		hosts = upsert(hosts, index, h)
	}
	return hosts
}

// parseEntry extracts one host from an address entry, which is either
// a bare address string or a single-key mapping address -> settings.
func parseEntry(entry any) (Host, bool) {
	switch v := entry.(type) {
	case string:
		if v == "" {
			return Host{}, false
		}
		return Host{Address: v}, true
	case map[string]any:
		for addr, details := range v {
			if addr == "" {
				return Host{}, false
			}
			h := Host{Address: addr}
			if settings, ok := details.(map[string]any); ok {
				if ko, ok := settings["known_offline"].(bool); ok {
					h.KnownOffline = ko
				}
			}
			return h, true
		}
		return Host{}, false
	default:
		return Host{}, false
	}
}

// upsert appends h, or replaces an earlier host with the same address
// so the last occurrence wins while positions stay stable.
func upsert(hosts []Host, index map[string]int, h Host) []Host {
	if i, seen := index[h.Address]; seen {
		hosts[i] = h
		return hosts
	}
	index[h.Address] = len(hosts)
	return append(hosts, h)
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}
