package builtin

import (
	"context"
	"slices"
	"strings"

	"github.com/conneroisu/tether/internal/directive"
	"github.com/conneroisu/tether/internal/emitter"
	"github.com/conneroisu/tether/internal/model"
	"github.com/conneroisu/tether/internal/node"
)

// control is the variant of a bound element, chosen once per element.
type control struct {
	// present applies a model value to the element.
	present func(value any)
	// listen attaches the element-to-model listeners, if any.
	listen func()
}

func resolveBind(ctx *directive.Context, path string, n node.Node, _ string) error {
	c := newControl(ctx, path, n)
	if c.listen != nil {
		c.listen()
	}
	ctx.Track(ctx.Model.OnSet(path, func(value, _ any) {
		c.present(value)
	}))
	return nil
}

func resolveBindOnce(ctx *directive.Context, path string, n node.Node, _ string) error {
	c := newControl(ctx, path, n)

	var sub *emitter.Subscription
	sub = ctx.Track(ctx.Model.OnSet(path, func(value, _ any) {
		c.present(value)
		sub.Unsubscribe()
	}))
	return nil
}

func newControl(ctx *directive.Context, path string, n node.Node) control {
	switch n.Tag() {
	case "input":
		typ, _ := n.Attr("type")
		switch strings.ToLower(typ) {
		case "radio":
			return radioControl(ctx, path, n)
		case "checkbox":
			return checkboxControl(ctx, path, n)
		default:
			return textControl(ctx, path, n)
		}
	case "select":
		return selectControl(ctx, path, n)
	default:
		return contentControl(ctx, n)
	}
}

func textControl(ctx *directive.Context, path string, n node.Node) control {
	return control{
		present: func(value any) {
			n.SetAttr("value", model.Stringify(value))
		},
		listen: func() {
			ctx.Listen(n, "input", func(*node.Event) {
				v, _ := n.Attr("value")
				ctx.Model.Set(path, v)
			})
		},
	}
}

func radioControl(ctx *directive.Context, path string, n node.Node) control {
	return control{
		present: func(value any) {
			own, _ := n.Attr("value")
			if model.Stringify(value) == own {
				n.SetAttr("checked", "")
			} else {
				n.RemoveAttr("checked")
			}
		},
		listen: func() {
			ctx.Listen(n, "change", func(*node.Event) {
				own, _ := n.Attr("value")
				ctx.Model.Set(path, own)
			})
		},
	}
}

func checkboxControl(ctx *directive.Context, path string, n node.Node) control {
	return control{
		present: func(value any) {
			own, _ := n.Attr("value")
			if indexOf(value, own) >= 0 {
				n.SetAttr("checked", "")
			} else {
				n.RemoveAttr("checked")
			}
		},
		listen: func() {
			ctx.Listen(n, "change", func(*node.Event) {
				own, _ := n.Attr("value")
				var err error
				if _, checked := n.Attr("checked"); checked {
					err = ctx.Model.Push(path, own)
				} else {
					cur, _ := ctx.Model.Get(path)
					if idx := indexOf(cur, own); idx >= 0 {
						err = ctx.Model.RemoveRange(path, idx, 1)
					}
				}
				if err != nil {
					ctx.Log().Error(context.Background(), err, "checkbox binding failed", "path", path)
				}
			})
		},
	}
}

func selectControl(ctx *directive.Context, path string, n node.Node) control {
	var options []node.Node
	node.Walk(n, func(c node.Node) bool {
		if c.Tag() == "option" {
			options = append(options, c)
			return false
		}
		return true
	})
	_, multiple := n.Attr("multiple")

	return control{
		present: func(value any) {
			var want []string
			if multiple {
				seq, _ := value.([]any)
				for _, v := range seq {
					want = append(want, model.Stringify(v))
				}
			} else {
				want = []string{model.Stringify(value)}
			}
			for _, opt := range options {
				if slices.Contains(want, optionValue(opt)) {
					opt.SetAttr("selected", "")
				} else {
					opt.RemoveAttr("selected")
				}
			}
		},
		listen: func() {
			ctx.Listen(n, "change", func(*node.Event) {
				if multiple {
					selected := []any{}
					for _, opt := range options {
						if _, ok := opt.Attr("selected"); ok {
							selected = append(selected, optionValue(opt))
						}
					}
					ctx.Model.Set(path, selected)
					return
				}
				if len(options) == 0 {
					return
				}
				choice := options[0]
				for _, opt := range options {
					if _, ok := opt.Attr("selected"); ok {
						choice = opt
						break
					}
				}
				ctx.Model.Set(path, optionValue(choice))
			})
		},
	}
}

func contentControl(ctx *directive.Context, n node.Node) control {
	filter := ctx.TakeFilter()
	return control{
		present: func(value any) {
			if filter != nil {
				value = filter(value)
			}
			if err := n.SetInnerHTML(model.Stringify(value)); err != nil {
				ctx.Log().Error(context.Background(), err, "content binding failed", "tag", n.Tag())
			}
		},
	}
}

func optionValue(opt node.Node) string {
	if v, ok := opt.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(opt.Text())
}

func indexOf(seq any, value string) int {
	items, ok := seq.([]any)
	if !ok {
		return -1
	}
	return slices.IndexFunc(items, func(item any) bool {
		return model.Stringify(item) == value
	})
}
