package command

import (
	"slices"
	"strings"
)

// dependencyAliases maps short names to archive paths.
var dependencyAliases = map[string]string{
	"ui_cutin_cmn":       `ui\ui_cutin_cmn`,
	"ui_system":          `ui\ui_system`,
	"ui_adv_area_common": `ui\adventure\ui_adv_area_common`,
	"ui_resident":        `ui\ui_resident`,
}

// impliedDependencies lists the archives a dependency needs in turn, keyed
// by lower-case path.
var impliedDependencies = map[string][]string{
	`ui\ui_cutin_cmn`:                 {`ui\ui_resident`, `ui\ui_system`},
	`ui\ui_system`:                    {`ui\ui_resident`},
	`ui\adventure\ui_adv_area_common`: {`ui\ui_resident`},
}

// resolveDependencies expands aliases and implied dependencies, normalizes
// paths to backslash separators without an extension, drops case-insensitive
// repeats and sorts the result.
func resolveDependencies(in []string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(dep string) {
		key := strings.ToLower(dep)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, dep)
	}

	for _, dep := range in {
		path, ok := dependencyAliases[strings.ToLower(dep)]
		if !ok {
			path = normalizeDependency(dep)
		}
		add(path)
		for _, implied := range impliedDependencies[strings.ToLower(path)] {
			add(implied)
		}
	}
	slices.Sort(out)
	return out
}

func normalizeDependency(dep string) string {
	dep = strings.ReplaceAll(dep, "/", `\`)
	base := dep[strings.LastIndexByte(dep, '\\')+1:]
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		dep = dep[:len(dep)-len(base)+i]
	}
	return dep
}
