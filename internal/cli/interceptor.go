package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rohmanhakim/docsintel/internal/docmodel"
	"github.com/rohmanhakim/docsintel/internal/result"
)

// render implements the CLI half of the spec's uniform interceptor: a
// Renderable success prints in the active --display-format; an Omnierror
// renders the same way but the command then reports a non-zero exit via
// the returned error (picked up by exitCodeFor). Any other error is
// wrapped as an "internal error" per § 4.9.
func render(out stringWriter, displayFormat string, value result.Renderable, err error) error {
	return renderDetailed(out, displayFormat, false, value, err)
}

// renderDetailed is render with control over revealInternals, used by
// commands whose --details flag maps onto the renderer's internals toggle.
func renderDetailed(out stringWriter, displayFormat string, revealInternals bool, value result.Renderable, err error) error {
	if err != nil {
		var omni result.Omnierror
		if errors.As(err, &omni) {
			printRendered(out, displayFormat, revealInternals, omni)
			return omni
		}
		fmt.Fprintf(out, "internal error: %s\n", err.Error())
		return err
	}
	printRendered(out, displayFormat, revealInternals, value)
	return nil
}

// renderable is satisfied by both result.Renderable and result.Omnierror.
type renderable interface {
	RenderAsJSON() ([]byte, error)
	RenderAsMarkdown(revealInternals bool) string
}

type stringWriter interface {
	Write(p []byte) (n int, err error)
}

func printRendered(out stringWriter, displayFormat string, revealInternals bool, r renderable) {
	if displayFormat == "json" {
		data, err := r.RenderAsJSON()
		if err != nil {
			fmt.Fprintf(out, "internal error: rendering JSON: %s\n", err.Error())
			return
		}
		fmt.Fprintln(out, string(data))
		return
	}
	fmt.Fprint(out, r.RenderAsMarkdown(revealInternals))
}

// parseFilters turns repeatable "key=value" flag values into a
// docmodel.Filters map, per the CLI's --filters k=v... contract.
func parseFilters(raw []string) (docmodel.Filters, error) {
	filters := make(docmodel.Filters, len(raw))
	for _, kv := range raw {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid --filters value %q, expected key=value", kv)
		}
		filters[parts[0]] = parts[1]
	}
	return filters, nil
}
