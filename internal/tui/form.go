package tui

import (
	"errors"
	"net/url"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/bunkerdash/internal/view"
)

var errRequired = errors.New("champ requis")

// formValues holds the live answers of a modal form. The huh fields write
// through these pointers, so the values survive re-opening the form after a
// rejected submission.
type formValues struct {
	hidden  url.Values
	text    map[string]*string
	multi   map[string]*[]string
	confirm *bool
}

// values returns the answers as the form body the dispatcher parses.
func (v *formValues) values() url.Values {
	out := url.Values{}
	for k, vs := range v.hidden {
		out[k] = append([]string(nil), vs...)
	}
	for k, p := range v.text {
		out.Set(k, strings.TrimSpace(*p))
	}
	for k, p := range v.multi {
		out[k] = append([]string(nil), *p...)
	}
	return out
}

func (v *formValues) formType() string {
	return v.hidden.Get("formType")
}

func newFormValues(mv *view.ModalView, prev *formValues) *formValues {
	v := &formValues{
		hidden: url.Values{},
		text:   map[string]*string{},
		multi:  map[string]*[]string{},
	}
	for _, f := range mv.Hidden {
		v.hidden.Set(f.Name, f.Value)
	}
	if mv.IsConfirm() {
		yes := false
		v.confirm = &yes
		return v
	}
	for _, f := range mv.Fields() {
		if f.Kind == view.FieldCheckboxes {
			var sel []string
			for _, o := range f.Options {
				if o.Checked {
					sel = append(sel, o.Value)
				}
			}
			if prev != nil && prev.multi[f.Name] != nil {
				sel = *prev.multi[f.Name]
			}
			v.multi[f.Name] = &sel
			continue
		}
		val := f.Value
		if prev != nil && prev.text[f.Name] != nil {
			val = *prev.text[f.Name]
		}
		v.text[f.Name] = &val
	}
	return v
}

// newModalForm builds the huh form for an open dialog. prev carries the
// answers of a rejected submission of the same dialog.
func newModalForm(mv *view.ModalView, prev *formValues) (*huh.Form, *formValues) {
	vals := newFormValues(mv, prev)

	var groups []*huh.Group
	if mv.IsConfirm() {
		desc := mv.Prompt()
		if mv.Warning != "" {
			desc += "\n" + mv.Warning
		}
		groups = append(groups, huh.NewGroup(
			huh.NewConfirm().
				Title(mv.Title).
				Description(desc).
				Affirmative(mv.Submit).
				Negative(mv.Cancel).
				Value(vals.confirm),
		))
	} else {
		for i, sec := range mv.Sections {
			fields := make([]huh.Field, 0, len(sec.Fields)+1)
			if i == 0 {
				fields = append(fields, huh.NewNote().Title(mv.Title))
			}
			for _, f := range sec.Fields {
				fields = append(fields, modalField(f, vals))
			}
			g := huh.NewGroup(fields...)
			if sec.Heading != "" {
				g = g.Description(sec.Heading)
			}
			groups = append(groups, g)
		}
	}

	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "annuler"))

	form := huh.NewForm(groups...).
		WithTheme(huh.ThemeBase16()).
		WithKeyMap(km).
		WithShowHelp(true)
	return form, vals
}

func modalField(f view.Field, vals *formValues) huh.Field {
	if f.Kind == view.FieldCheckboxes {
		sel := vals.multi[f.Name]
		opts := make([]huh.Option[string], 0, len(f.Options))
		for _, o := range f.Options {
			opts = append(opts, huh.NewOption(o.Label, o.Value).Selected(slices.Contains(*sel, o.Value)))
		}
		return huh.NewMultiSelect[string]().
			Title(f.Label).
			Options(opts...).
			Value(sel)
	}

	in := huh.NewInput().
		Title(f.Label).
		Placeholder(f.Placeholder).
		Value(vals.text[f.Name])
	if f.Help != "" {
		in = in.Description(f.Help)
	}
	if f.Required {
		in = in.Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errRequired
			}
			return nil
		})
	}
	return in
}
