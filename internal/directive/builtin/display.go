package builtin

import (
	"errors"

	"github.com/conneroisu/tether/internal/directive"
	tethererrors "github.com/conneroisu/tether/internal/errors"
	"github.com/conneroisu/tether/internal/model"
	"github.com/conneroisu/tether/internal/node"
)

func resolveShowHide(ctx *directive.Context, path string, n node.Node, attr string) error {
	hide := attr == ctx.Registry.Prefix()+"hide"

	ctx.Track(ctx.Model.OnSet(path, func(value, _ any) {
		visible := model.Truthy(value)
		if hide {
			visible = !visible
		}
		if visible {
			n.SetStyle("display", node.DefaultDisplay(n.Tag()))
		} else {
			n.SetStyle("display", "none")
		}
	}))
	return nil
}

// resolveClass handles n-class="path:classes".
func resolveClass(ctx *directive.Context, value string, n node.Node, attr string) error {
	args, err := splitArgs(value, ":", 2, attr, "path:classes")
	if err != nil {
		return err
	}
	path, classes := args[0], args[1]

	ctx.Track(ctx.Model.OnSet(path, func(v, _ any) {
		if model.Truthy(v) {
			n.AddClass(classes)
		} else {
			n.RemoveClass(classes)
		}
	}))
	return nil
}

// resolveFilter makes a registry helper, or failing that a method, the
// pending filter of the element.
func resolveFilter(ctx *directive.Context, name string, _ node.Node, attr string) error {
	if fn, ok := ctx.Registry.HelperFunc(name); ok {
		ctx.SetFilter(fn)
		return nil
	}

	fn, err := ctx.Methods.Filter(name)
	if errors.Is(err, tethererrors.ErrUnknownMethod) {
		return tethererrors.NewConfigError(tethererrors.CodeUnknownFilter, "filter is neither a helper nor a method").
			WithContext("attribute", attr).
			WithContext("filter", name)
	}
	if err != nil {
		return err
	}
	ctx.SetFilter(fn)
	return nil
}
