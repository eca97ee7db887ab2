package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/cadobr"
	md "github.com/nao1215/markdown"
)

// PropertyMarkdown renders the liens, timeline and pendencies of the property pid.
func PropertyMarkdown(ds *cadobr.Dataset, pid string) string {
	var b strings.Builder

	var property *cadobr.Property
	for _, p := range ds.Properties {
		if p.ID == pid {
			property = p
			break
		}
	}
	if property == nil {
		return fmt.Sprintf("# Property %s\n\nNot in the dataset.\n", pid)
	}
	fmt.Fprintf(&b, "# Matrícula %s\n\n", property.Matricula)

	ConditionalBlock(&b, func(w io.Writer) bool { return renderLiens(w, ds, pid) })
	ConditionalBlock(&b, func(w io.Writer) bool { return renderTimeline(w, ds, pid) })
	ConditionalBlock(&b, func(w io.Writer) bool { return renderPendencies(w, ds, pid) })
	return b.String()
}

func renderLiens(w io.Writer, ds *cadobr.Dataset, pid string) bool {
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"Ref", "Type", "Status", "Window", "Present value"},
	}
	for _, o := range ds.Obligations {
		if o.PropertyID != pid {
			continue
		}
		table.Rows = append(table.Rows, []string{o.Ref, o.DebtType, string(o.Status), o.Window().String(), o.PresentValue})
	}
	if len(table.Rows) == 0 {
		return false
	}
	doc := md.NewMarkdown(w)
	doc.H2("Liens")
	doc.Table(table)
	return doc.Build() == nil
}

func renderTimeline(w io.Writer, ds *cadobr.Dataset, pid string) bool {
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft},
		Header:    []string{"Date", "Event", "Ref", "Note"},
	}
	for _, e := range ds.PropertyEvents {
		if e.PropertyID != pid {
			continue
		}
		note := e.Description
		if e.Late {
			note = strings.TrimSpace(fmt.Sprintf("%s (registered %d days late)", note, e.LateDays))
		}
		table.Rows = append(table.Rows, []string{e.Date.String(), string(e.Kind), e.Ref, note})
	}
	if len(table.Rows) == 0 {
		return false
	}
	doc := md.NewMarkdown(w)
	doc.H2("Timeline")
	doc.Table(table)
	return doc.Build() == nil
}

func renderPendencies(w io.Writer, ds *cadobr.Dataset, pid string) bool {
	var items []string
	for _, p := range ds.Pendencies {
		if p.EntityID != pid && !strings.HasPrefix(p.EntityID, pid+"#") && !strings.HasPrefix(p.EntityID, pid+"|") {
			continue
		}
		item := fmt.Sprintf("%s: %s", p.EntityID, p.Reason)
		if p.Detail != "" {
			item += " (" + p.Detail + ")"
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return false
	}
	doc := md.NewMarkdown(w)
	doc.H2("Pendencies")
	doc.BulletList(items...)
	return doc.Build() == nil
}
