package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Explain returns the effective value at a dotted path and where it came from.
// List elements are addressed with brackets:
//
//	snow.count
//	shell.wind_max
//	windows[0].title
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

// lookupValue walks the YAML form of cfg, so every key a file can set can be
// explained without a hand-kept table.
func lookupValue(cfg *Config, path string) (any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}

	cur := tree
	for _, part := range strings.Split(path, ".") {
		key, indexes, err := splitIndexes(part)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: %q is not a section", path, key)
		}
		if cur, ok = m[key]; !ok {
			return nil, fmt.Errorf("%s: unknown key %q", path, key)
		}
		for _, i := range indexes {
			list, ok := cur.([]any)
			if !ok || i < 0 || i >= len(list) {
				return nil, fmt.Errorf("%s: index %d out of range", path, i)
			}
			cur = list[i]
		}
	}
	return cur, nil
}

// splitIndexes turns "windows[2]" into ("windows", [2]).
func splitIndexes(part string) (string, []int, error) {
	open := strings.IndexByte(part, '[')
	if open < 0 {
		return part, nil, nil
	}
	key, rest := part[:open], part[open:]
	var out []int
	for rest != "" {
		end := strings.IndexByte(rest, ']')
		if rest[0] != '[' || end < 0 {
			return "", nil, fmt.Errorf("malformed index in %q", part)
		}
		n, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, fmt.Errorf("malformed index in %q", part)
		}
		out = append(out, n)
		rest = rest[end+1:]
	}
	return key, out, nil
}
