package compiler

import (
	"regexp"
)

// bareAction matches an action that starts with a bare variable path, as
// happi writes argument templates: "{{prefix}}", "{{ name | upper }}".
var bareAction = regexp.MustCompile(`\{\{(-\s+|\s*)([A-Za-z_]\w*(?:\.\w+)*)(\s*\|[^{}]*?)?(\s+-|\s*)\}\}`)

var keywords = map[string]bool{
	"end": true, "else": true, "nil": true, "true": true, "false": true,
	"break": true, "continue": true,
}

// NormalizeActions rewrites bare variable actions into field actions, so
// "{{prefix}}" renders like "{{ .prefix }}". Actions that already use Go
// template syntax are left alone.
func NormalizeActions(src string) string {
	return bareAction.ReplaceAllStringFunc(src, func(action string) string {
		m := bareAction.FindStringSubmatch(action)
		if keywords[m[2]] {
			return action
		}
		return "{{" + m[1] + "." + m[2] + m[3] + m[4] + "}}"
	})
}

// RenderArgument renders an inventory argument value against its item.
func RenderArgument(src string, item map[string]any) (string, error) {
	return RenderString(NormalizeActions(src), item)
}
