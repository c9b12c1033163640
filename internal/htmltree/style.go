package htmltree

import (
	"slices"
	"strings"
)

type declaration struct {
	property string
	value    string
}

func parseStyle(style string) []declaration {
	var decls []declaration
	for _, part := range strings.Split(style, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		decls = append(decls, declaration{property: prop, value: strings.TrimSpace(value)})
	}
	return decls
}

func formatStyle(decls []declaration) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.property + ": " + d.value
	}
	return strings.Join(parts, "; ")
}

// Style returns an inline style property, or "" when unset.
func (e *Element) Style(property string) string {
	style, _ := e.Attr("style")
	property = strings.ToLower(property)
	for _, d := range parseStyle(style) {
		if d.property == property {
			return d.value
		}
	}
	return ""
}

// SetStyle sets an inline style property. An empty value removes it.
func (e *Element) SetStyle(property, value string) {
	style, _ := e.Attr("style")
	decls := parseStyle(style)
	property = strings.ToLower(property)

	idx := slices.IndexFunc(decls, func(d declaration) bool { return d.property == property })
	switch {
	case value == "" && idx >= 0:
		decls = slices.Delete(decls, idx, idx+1)
	case value == "":
	case idx >= 0:
		decls[idx].value = value
	default:
		decls = append(decls, declaration{property: property, value: value})
	}

	if len(decls) == 0 {
		e.RemoveAttr("style")
		return
	}
	e.SetAttr("style", formatStyle(decls))
}

func (e *Element) classes() []string {
	class, _ := e.Attr("class")
	return strings.Fields(class)
}

func (e *Element) setClasses(classes []string) {
	if len(classes) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(classes, " "))
}

// HasClass reports whether the class attribute lists name.
func (e *Element) HasClass(name string) bool {
	return slices.Contains(e.classes(), name)
}

// AddClass adds each class; an argument may hold several space-separated
// names.
func (e *Element) AddClass(names ...string) {
	classes := e.classes()
	for _, arg := range names {
		for _, name := range strings.Fields(arg) {
			if !slices.Contains(classes, name) {
				classes = append(classes, name)
			}
		}
	}
	e.setClasses(classes)
}

// RemoveClass removes each class; an argument may hold several
// space-separated names.
func (e *Element) RemoveClass(names ...string) {
	var drop []string
	for _, arg := range names {
		drop = append(drop, strings.Fields(arg)...)
	}
	classes := slices.DeleteFunc(e.classes(), func(c string) bool {
		return slices.Contains(drop, c)
	})
	e.setClasses(classes)
}
