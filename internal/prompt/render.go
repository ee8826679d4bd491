package prompt

import "regexp"

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Render substitutes {key}-style placeholders in template with values from
// vars. Every placeholder must be present in vars; otherwise a *RenderError
// naming the missing keys is returned and no partial output is produced.
func Render(name, template string, vars map[string]string) (string, error) {
	var missing []string
	for _, key := range Vars(template) {
		if _, ok := vars[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return "", &RenderError{Name: name, Missing: missing}
	}

	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		return vars[match[1:len(match)-1]]
	}), nil
}

// Vars returns the distinct placeholder names in template, in order of first
// appearance.
func Vars(template string) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			keys = append(keys, m[1])
			seen[m[1]] = true
		}
	}
	return keys
}
