package builtin

import (
	"context"
	"strings"

	"github.com/conneroisu/tether/internal/directive"
	tethererrors "github.com/conneroisu/tether/internal/errors"
	"github.com/conneroisu/tether/internal/format"
	"github.com/conneroisu/tether/internal/node"
)

func resolveTemplate(ctx *directive.Context, id string, _ node.Node, attr string) error {
	src := ctx.Lookup(id)
	if src == nil {
		return tethererrors.NewConfigError(tethererrors.CodeUnknownTemplate, "template element not found").
			WithContext("attribute", attr).
			WithContext("id", id)
	}
	ctx.SetTemplate(strings.TrimSpace(src.InnerHTML()))
	return nil
}

// resolveRepeat renders one copy of the pending template per sequence item
// and keeps the children in step with push and remove operations.
func resolveRepeat(ctx *directive.Context, path string, n node.Node, _ string) error {
	tmpl, ok := ctx.Template()
	if !ok {
		return nil
	}
	ctx.SkipChildren()

	logErr := func(err error, op string) {
		if err != nil {
			ctx.Log().Error(context.Background(), err, "repeat render failed", "path", path, "op", op)
		}
	}

	ctx.Track(ctx.Model.OnSet(path, func(value, _ any) {
		items, _ := value.([]any)
		logErr(n.SetInnerHTML(format.ExpandAll(tmpl, items)), "set")
	}))

	ctx.Track(ctx.Model.OnPush(path, func(values []any) {
		logErr(n.AppendHTML(format.ExpandAll(tmpl, values)), "push")
	}))

	ctx.Track(ctx.Model.OnSplice(path, func(index, count int, extra []any) {
		children := n.Children()
		start := min(index, len(children))
		end := min(index+count, len(children))

		var ref node.Node
		if end < len(children) {
			ref = children[end]
		}
		for i := end - 1; i >= start; i-- {
			n.RemoveChild(children[i])
		}
		if markup := format.ExpandAll(tmpl, extra); markup != "" {
			logErr(n.InsertHTMLBefore(ref, markup), "splice")
		}
	}))

	return nil
}
