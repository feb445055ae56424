package view

import (
	"strconv"

	"github.com/theirongolddev/bunkerdash/internal/metrics"
	"github.com/theirongolddev/bunkerdash/internal/model"
)

// FieldKind selects the input widget for a form field.
type FieldKind string

const (
	FieldText       FieldKind = "text"
	FieldTel        FieldKind = "tel"
	FieldNumber     FieldKind = "number"
	FieldDate       FieldKind = "date"
	FieldMonth      FieldKind = "month"
	FieldCheckboxes FieldKind = "checkboxes"
)

// Option is one choice of a checkbox list.
type Option struct {
	Value   string
	Label   string
	Checked bool
}

// Field is one form input. Name is the form key submitted to the dashboard.
type Field struct {
	Name        string
	Label       string
	Kind        FieldKind
	Value       string
	Placeholder string
	Help        string
	Required    bool
	Options     []Option
}

// Section groups fields under an optional heading.
type Section struct {
	Heading string
	Fields  []Field
}

// ModalView describes the open dialog independently of how it is drawn.
type ModalView struct {
	Type     model.ModalType
	Title    string
	Message  string
	Subject  string
	Warning  string
	Hidden   []Field
	Sections []Section
	Submit   string
	Cancel   string
}

// Prompt is the confirmation question, e.g. "Êtes-vous sûr de vouloir
// supprimer Client Beta ?".
func (m ModalView) Prompt() string {
	return m.Message + " " + m.Subject + " ?"
}

// IsConfirm reports whether the dialog is a delete confirmation.
func (m ModalView) IsConfirm() bool {
	return m.Type == model.ModalConfirmDelete
}

// Fields returns every visible field in display order.
func (m ModalView) Fields() []Field {
	var out []Field
	for _, s := range m.Sections {
		out = append(out, s.Fields...)
	}
	return out
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BuildModal describes the dialog open in state, or nil when none is.
func BuildModal(state *model.State) *ModalView {
	m := state.UI.Modal
	if !m.IsOpen {
		return nil
	}
	var data model.ModalData
	if m.Data != nil {
		data = *m.Data
	}

	v := &ModalView{
		Type:   m.Type,
		Hidden: []Field{{Name: "formType", Value: string(m.Type)}},
		Submit: "Sauvegarder",
		Cancel: "Annuler",
	}

	switch m.Type {
	case model.ModalKPIs:
		v.Title = "Modifier les KPIs"
		v.Sections = []Section{{Fields: []Field{
			{Name: "mrr", Label: "MRR Actuel", Kind: FieldNumber, Value: num(state.KPIs.MRR), Required: true},
			{Name: "mrrGoal", Label: "Objectif MRR", Kind: FieldNumber, Value: num(state.KPIs.MRRGoal), Required: true},
			{Name: "activeSubscribers", Label: "Abonnés Actifs", Kind: FieldNumber, Value: strconv.Itoa(state.KPIs.ActiveSubscribers), Required: true},
		}}}

	case model.ModalMrrHistory:
		v.Title = "Modifier l'historique du MRR"
		existing := Section{Heading: "Entrées existantes"}
		for i, p := range state.MrrHistory {
			existing.Fields = append(existing.Fields, Field{
				Name:     "mrr-value-" + strconv.Itoa(i),
				Label:    metrics.LongMonth(p.Month),
				Kind:     FieldNumber,
				Value:    num(p.Value),
				Required: true,
			})
		}
		v.Sections = []Section{existing, {Heading: "Ajouter une entrée", Fields: []Field{
			{Name: "new-mrr-month", Label: "Mois", Kind: FieldMonth, Placeholder: "AAAA-MM"},
			{Name: "new-mrr-value", Label: "MRR", Kind: FieldNumber, Placeholder: "Valeur"},
		}}}

	case model.ModalClientActivity:
		v.Title = "Modifier l'Activité Clients"
		existing := Section{Heading: "Entrées existantes"}
		for i, a := range state.ClientActivity {
			label := metrics.LongMonth(a.Month)
			idx := strconv.Itoa(i)
			existing.Fields = append(existing.Fields,
				Field{Name: "gained-" + idx, Label: label + " (gagnés)", Kind: FieldNumber, Value: strconv.Itoa(a.Gained), Placeholder: "Gagnés", Required: true},
				Field{Name: "lost-" + idx, Label: label + " (perdus)", Kind: FieldNumber, Value: strconv.Itoa(a.Lost), Placeholder: "Perdus", Required: true},
			)
		}
		v.Sections = []Section{existing, {Heading: "Ajouter une entrée", Fields: []Field{
			{Name: "new-activity-month", Label: "Mois", Kind: FieldMonth, Placeholder: "AAAA-MM"},
			{Name: "new-activity-gained", Label: "Gagnés", Kind: FieldNumber, Placeholder: "Gagnés"},
			{Name: "new-activity-lost", Label: "Perdus", Kind: FieldNumber, Placeholder: "Perdus"},
		}}}

	case model.ModalClient:
		c, found := state.ClientByID(data.ID)
		v.Title = "Ajouter un client"
		id := ""
		spent := "0"
		if found {
			v.Title = "Modifier le client"
			id = strconv.FormatInt(c.ID, 10)
			spent = num(c.TotalSpent)
		}
		v.Hidden = append(v.Hidden, Field{Name: "id", Value: id})
		v.Sections = []Section{{Fields: []Field{
			{Name: "name", Label: "Nom du client", Kind: FieldText, Value: c.Name, Required: true},
			{Name: "phone", Label: "Numéro de téléphone", Kind: FieldTel, Value: c.Phone},
			{Name: "integrationDate", Label: "Date d'intégration", Kind: FieldDate, Value: c.IntegrationDate, Placeholder: "AAAA-MM-JJ", Required: true},
			{Name: "adAccountId", Label: "ID Compte Publicitaire", Kind: FieldText, Value: c.AdAccountID, Required: true},
			{Name: "totalSpent", Label: "Total Dépensé", Kind: FieldNumber, Value: spent, Required: true},
		}}}

	case model.ModalAffiliate:
		a, found := state.AffiliateByID(data.ID)
		v.Title = "Ajouter un affilié"
		id := ""
		if found {
			v.Title = "Modifier l'affilié"
			id = strconv.FormatInt(a.ID, 10)
		}
		opts := make([]Option, 0, len(state.Clients))
		for _, c := range state.Clients {
			opts = append(opts, Option{
				Value:   strconv.FormatInt(c.ID, 10),
				Label:   c.Name,
				Checked: containsID(a.ReferredIDs, c.ID),
			})
		}
		v.Hidden = append(v.Hidden, Field{Name: "id", Value: id})
		v.Sections = []Section{{Fields: []Field{
			{Name: "name", Label: "Nom de l'affilié", Kind: FieldText, Value: a.Name, Required: true},
			{Name: "iban", Label: "IBAN", Kind: FieldText, Value: a.IBAN},
			{Name: "referred", Label: "Clients Parrainés", Kind: FieldCheckboxes, Options: opts},
		}}}

	case model.ModalPayout:
		a, _ := state.AffiliateByID(data.ID)
		v.Title = "Modifier le paiement de " + a.Name
		override := ""
		if a.MonthlyPayoutOverride != nil {
			override = num(*a.MonthlyPayoutOverride)
		}
		v.Hidden = append(v.Hidden, Field{Name: "id", Value: strconv.FormatInt(data.ID, 10)})
		v.Sections = []Section{{Fields: []Field{
			{Name: "iban", Label: "IBAN", Kind: FieldText, Value: a.IBAN},
			{
				Name:        "monthlyPayoutOverride",
				Label:       "Paiement mensuel fixe",
				Kind:        FieldNumber,
				Value:       override,
				Placeholder: "Optionnel",
				Help:        "Laissez vide pour calculer automatiquement (30% des dépenses des clients parrainés).",
			},
		}}}

	case model.ModalConfirmDelete:
		v.Title = "Confirmer la suppression"
		v.Message = "Êtes-vous sûr de vouloir supprimer"
		v.Subject = data.Name
		v.Warning = "Cette action est irréversible."
		v.Submit = "Confirmer la suppression"
		v.Hidden = append(v.Hidden,
			Field{Name: "type", Value: string(data.Kind)},
			Field{Name: "id", Value: strconv.FormatInt(data.ID, 10)},
		)
	}
	return v
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
