// Copyright 2025 The cephcrush Authors
// SPDX-License-Identifier: Apache-2.0

// Package inventory reads Ansible YAML inventories to find the CRUSH location
// declared for each OSD host.
package inventory

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	// AllGroup is the implicit group every host belongs to.
	AllGroup = "all"

	// DefaultGroup is the group OSD hosts are listed under.
	DefaultGroup = "osds"

	// DefaultLocationVar is the host variable holding a host's CRUSH location.
	DefaultLocationVar = "osd_crush_location"
)

// Host represents a single host in the inventory.
type Host struct {
	Name string
	Vars map[string]any
}

// Group represents a group of hosts.
type Group struct {
	Name     string
	Hosts    map[string]*Host  // Key: Host name
	Vars     map[string]any    // Group variables
	Children map[string]*Group // Key: Child group name

	depth int
}

// Inventory represents the entire Ansible inventory.
type Inventory struct {
	Hosts  map[string]*Host  // A flat map of all unique hosts for easy access
	Groups map[string]*Group // All groups defined in the inventory
}

// rawGroup mirrors the YAML inventory layout.
type rawGroup struct {
	Hosts    map[string]map[string]any `yaml:"hosts"`
	Vars     map[string]any            `yaml:"vars"`
	Children map[string]*rawGroup      `yaml:"children"`
}

// NewInventory creates and initializes a new Inventory object.
func NewInventory() *Inventory {
	inv := &Inventory{
		Hosts:  make(map[string]*Host),
		Groups: make(map[string]*Group),
	}
	inv.group(AllGroup, 0)
	return inv
}

// LoadFile parses the YAML inventory at path.
func LoadFile(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	inv, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return inv, nil
}

// Parse parses a YAML inventory. Top-level groups other than "all" are
// treated as children of "all".
func Parse(data []byte) (*Inventory, error) {
	var top map[string]*rawGroup
	if err := yaml.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("parse inventory YAML: %w", err)
	}

	inv := NewInventory()
	all := inv.Groups[AllGroup]

	names := make([]string, 0, len(top))
	for name := range top {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if name == AllGroup {
			inv.merge(all, top[name])
			continue
		}
		child := inv.group(name, 1)
		all.Children[name] = child
		inv.merge(child, top[name])
	}
	return inv, nil
}

func (inv *Inventory) group(name string, depth int) *Group {
	g, ok := inv.Groups[name]
	if !ok {
		g = &Group{
			Name:     name,
			Hosts:    make(map[string]*Host),
			Vars:     make(map[string]any),
			Children: make(map[string]*Group),
			depth:    depth,
		}
		inv.Groups[name] = g
	}
	if depth > g.depth {
		g.depth = depth
	}
	return g
}

func (inv *Inventory) merge(g *Group, raw *rawGroup) {
	if raw == nil {
		return
	}

	for k, v := range raw.Vars {
		g.Vars[k] = v
	}

	for name, vars := range raw.Hosts {
		h, ok := inv.Hosts[name]
		if !ok {
			h = &Host{Name: name, Vars: make(map[string]any)}
			inv.Hosts[name] = h
		}
		for k, v := range vars {
			h.Vars[k] = v
		}
		g.Hosts[name] = h
	}

	for name, rawChild := range raw.Children {
		child := inv.group(name, g.depth+1)
		g.Children[name] = child
		inv.merge(child, rawChild)
	}
}

// GroupHosts returns the names of all hosts in group, including those of its
// child groups, sorted.
func (inv *Inventory) GroupHosts(group string) ([]string, error) {
	g, ok := inv.Groups[group]
	if !ok {
		return nil, fmt.Errorf("group %q not found in inventory", group)
	}

	seen := make(map[string]bool)
	visited := make(map[string]bool)
	var walk func(g *Group)
	walk = func(g *Group) {
		if visited[g.Name] {
			return
		}
		visited[g.Name] = true
		for name := range g.Hosts {
			seen[name] = true
		}
		for _, c := range g.Children {
			walk(c)
		}
	}
	walk(g)

	hosts := make([]string, 0, len(seen))
	for name := range seen {
		hosts = append(hosts, name)
	}
	sort.Strings(hosts)
	return hosts, nil
}

// HostVars returns the effective variables of host: variables of every group
// containing it, shallower groups first, overridden by the host's own.
func (inv *Inventory) HostVars(host string) (map[string]any, bool) {
	h, ok := inv.Hosts[host]
	if !ok {
		return nil, false
	}

	var groups []*Group
	for _, g := range inv.Groups {
		if inv.contains(g, host, make(map[string]bool)) {
			groups = append(groups, g)
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].depth != groups[j].depth {
			return groups[i].depth < groups[j].depth
		}
		return groups[i].Name < groups[j].Name
	})

	vars := make(map[string]any)
	for _, g := range groups {
		for k, v := range g.Vars {
			vars[k] = v
		}
	}
	for k, v := range h.Vars {
		vars[k] = v
	}
	return vars, true
}

func (inv *Inventory) contains(g *Group, host string, visited map[string]bool) bool {
	if visited[g.Name] {
		return false
	}
	visited[g.Name] = true
	if g.Name == AllGroup {
		return true
	}
	if _, ok := g.Hosts[host]; ok {
		return true
	}
	for _, c := range g.Children {
		if inv.contains(c, host, visited) {
			return true
		}
	}
	return false
}
