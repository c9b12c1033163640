package builtin

import (
	"github.com/conneroisu/tether/internal/directive"
	"github.com/conneroisu/tether/internal/node"
)

// resolveOn handles n-on="event,method".
func resolveOn(ctx *directive.Context, value string, n node.Node, attr string) error {
	args, err := splitArgs(value, ",", 2, attr, "event,method")
	if err != nil {
		return err
	}
	fn, err := ctx.Methods.Event(args[1])
	if err != nil {
		return err
	}

	ctx.Listen(n, args[0], func(ev *node.Event) {
		fn(ev)
	})
	return nil
}

// resolveDelegate handles n-delegate="class,event,method". The method runs
// for the closest element carrying class between the event target and the
// bound element, with CurrentTarget set to that element.
func resolveDelegate(ctx *directive.Context, value string, n node.Node, attr string) error {
	args, err := splitArgs(value, ",", 3, attr, "class,event,method")
	if err != nil {
		return err
	}
	class, event := args[0], args[1]
	fn, err := ctx.Methods.Event(args[2])
	if err != nil {
		return err
	}

	ctx.Listen(n, event, func(ev *node.Event) {
		if ev.Target == nil {
			return
		}
		match := node.Closest(ev.Target, n, func(c node.Node) bool {
			return c != n && c.HasClass(class)
		})
		if match == nil {
			return
		}
		current := ev.CurrentTarget
		ev.CurrentTarget = match
		fn(ev)
		ev.CurrentTarget = current
	})
	return nil
}
