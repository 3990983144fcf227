// Copyright 2025 The cephcrush Authors
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"fmt"
	"os"

	"github.com/LeeDigitalWorks/cephcrush/pkg/crush"

	"gopkg.in/yaml.v3"
)

// HostLocation returns the CRUSH location held in varName for host. The
// boolean is false when the host does not define the variable.
func (inv *Inventory) HostLocation(host, varName string) (crush.Location, bool, error) {
	vars, ok := inv.HostVars(host)
	if !ok {
		return nil, false, fmt.Errorf("host %q not found in inventory", host)
	}
	raw, ok := vars[varName]
	if !ok || raw == nil {
		return nil, false, nil
	}
	loc, err := ToLocation(raw)
	if err != nil {
		return nil, true, fmt.Errorf("host %q: %s: %w", host, varName, err)
	}
	return loc, true, nil
}

// ToLocation converts a decoded YAML/JSON mapping into a Location. Scalar
// values are rendered as strings so that e.g. "rack: 12" is accepted.
func ToLocation(raw any) (crush.Location, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("location must be a mapping, got %T", raw)
	}

	loc := make(crush.Location, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			loc[k] = val
		case int, int64, uint64, float64, bool:
			loc[k] = fmt.Sprint(val)
		case nil:
			loc[k] = ""
		default:
			return nil, fmt.Errorf("bucket %q: value must be a scalar, got %T", k, v)
		}
	}
	return loc, nil
}

// LoadLocationFile reads a single location mapping from a YAML or JSON file.
func LoadLocationFile(path string) (crush.Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read location file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse location file %s: %w", path, err)
	}
	if raw == nil {
		return crush.Location{}, nil
	}
	return ToLocation(raw)
}
