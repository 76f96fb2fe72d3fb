// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"fmt"
	"sort"
	"strings"
)

// keySeparator delimits cache key segments.
const keySeparator = "::"

// Key builds a deterministic cache key from an operation name and its
// parameters. Field names are sorted before joining, so the key is
// stable regardless of the order the parameter map was built in;
// naive JSON stringification does not give that guarantee.
func Key(op string, fields map[string]any) string {
	if len(fields) == 0 {
		return op
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names)+1)
	parts = append(parts, op)
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%v", name, fields[name]))
	}
	return strings.Join(parts, keySeparator)
}
