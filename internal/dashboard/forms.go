package dashboard

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/theirongolddev/bunkerdash/internal/model"
)

// FormTimeRange is the pseudo form type used by the chart range selector.
const FormTimeRange = "timeRange"

// FieldError describes one rejected form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a form cannot be turned into a command.
// Nothing is mutated when it is returned.
type ValidationError struct {
	Form   string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("formulaire %s invalide: %s", e.Form, strings.Join(parts, "; "))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		_, err := parseAmount(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("count", func(fl validator.FieldLevel) bool {
		_, err := parseCount(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("rowid", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		if s == "" {
			return true
		}
		_, err := parseID(s)
		return err == nil
	})
	return v
}

var tagMessages = map[string]string{
	"required": "champ requis",
	"amount":   "montant invalide",
	"count":    "nombre entier invalide",
	"rowid":    "identifiant invalide",
	"datetime": "date invalide",
	"oneof":    "valeur non autorisée",
}

func fieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "-", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := tagMessages[fe.Tag()]
		if !ok {
			msg = "valeur invalide"
		}
		out = append(out, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}

// validateFields runs struct validation and collects results into ve.
func validateFields(ve *ValidationError, in any) {
	if err := validate.Struct(in); err != nil {
		ve.Fields = append(ve.Fields, fieldErrors(err)...)
	}
}

// validateVar validates a single dynamic field such as "mrr-value-3".
func validateVar(ve *ValidationError, field, value, tag string) {
	if err := validate.Var(value, tag); err != nil {
		for _, fe := range fieldErrors(err) {
			fe.Field = field
			ve.Fields = append(ve.Fields, fe)
		}
	}
}

// parseAmount accepts French and plain notations: "12 540,5", "12540.5".
func parseAmount(s string) (float64, error) {
	s = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "€", "").Replace(strings.TrimSpace(s))
	s = strings.Replace(s, ",", ".", 1)
	if s == "" {
		return 0, errors.New("empty amount")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errors.New("negative amount")
	}
	return v, nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("negative count")
	}
	return n, nil
}

func parseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if id < 0 {
		return 0, errors.New("negative id")
	}
	return id, nil
}

// at returns vs[i], or "" past the end. New rows arrive as repeated fields
// matched by position.
func at(vs []string, i int) string {
	if i < len(vs) {
		return vs[i]
	}
	return ""
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}

// ParseForm turns the raw fields of formType into a typed command. Field
// names follow the dashboard's HTML forms.
func ParseForm(formType string, form url.Values) (Command, error) {
	switch model.ModalType(formType) {
	case model.ModalKPIs:
		return parseKPIs(form)
	case model.ModalMrrHistory:
		return parseMrrHistory(form)
	case model.ModalClientActivity:
		return parseClientActivity(form)
	case model.ModalClient:
		return parseClient(form)
	case model.ModalAffiliate:
		return parseAffiliate(form)
	case model.ModalPayout:
		return parsePayout(form)
	case model.ModalConfirmDelete:
		return parseDelete(form)
	}
	if formType == FormTimeRange {
		return parseTimeRange(form)
	}
	return nil, &ValidationError{
		Form:   formType,
		Fields: []FieldError{{Field: "formType", Message: "formulaire inconnu"}},
	}
}

type kpiInput struct {
	MRR               string `form:"mrr" validate:"required,amount"`
	MRRGoal           string `form:"mrrGoal" validate:"required,amount"`
	ActiveSubscribers string `form:"activeSubscribers" validate:"required,count"`
}

func parseKPIs(form url.Values) (Command, error) {
	in := kpiInput{
		MRR:               form.Get("mrr"),
		MRRGoal:           form.Get("mrrGoal"),
		ActiveSubscribers: form.Get("activeSubscribers"),
	}
	ve := &ValidationError{Form: string(model.ModalKPIs)}
	validateFields(ve, in)
	if len(ve.Fields) > 0 {
		return nil, ve
	}
	mrr, _ := parseAmount(in.MRR)
	goal, _ := parseAmount(in.MRRGoal)
	subs, _ := parseCount(in.ActiveSubscribers)
	return EditKPIs{MRR: mrr, MRRGoal: goal, ActiveSubscribers: subs}, nil
}

// indexedFields collects "<prefix><n>" keys, sorted by n.
func indexedFields(form url.Values, prefix string) []int {
	var idx []int
	for key := range form {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			continue
		}
		idx = append(idx, n)
	}
	sort.Ints(idx)
	return idx
}

type newMrrInput struct {
	Month string `form:"new-mrr-month" validate:"required,datetime=2006-01"`
	Value string `form:"new-mrr-value" validate:"required,amount"`
}

func parseMrrHistory(form url.Values) (Command, error) {
	ve := &ValidationError{Form: string(model.ModalMrrHistory)}
	cmd := EditMrrHistory{Values: map[int]float64{}}

	for _, i := range indexedFields(form, "mrr-value-") {
		key := fmt.Sprintf("mrr-value-%d", i)
		raw := form.Get(key)
		validateVar(ve, key, raw, "required,amount")
		if v, err := parseAmount(raw); err == nil {
			cmd.Values[i] = v
		}
	}

	months, values := form["new-mrr-month"], form["new-mrr-value"]
	for k := range max(len(months), len(values)) {
		in := newMrrInput{Month: strings.TrimSpace(at(months, k)), Value: at(values, k)}
		if !present(in.Month) || !present(in.Value) {
			continue
		}
		validateFields(ve, in)
		if v, err := parseAmount(in.Value); err == nil {
			cmd.New = append(cmd.New, model.MrrPoint{Month: in.Month, Value: v})
		}
	}

	if len(ve.Fields) > 0 {
		return nil, ve
	}
	return cmd, nil
}

type newActivityInput struct {
	Month  string `form:"new-activity-month" validate:"required,datetime=2006-01"`
	Gained string `form:"new-activity-gained" validate:"required,count"`
	Lost   string `form:"new-activity-lost" validate:"required,count"`
}

func parseClientActivity(form url.Values) (Command, error) {
	ve := &ValidationError{Form: string(model.ModalClientActivity)}
	cmd := EditClientActivity{Counts: map[int]ActivityCounts{}}

	rows := lo.Union(indexedFields(form, "gained-"), indexedFields(form, "lost-"))
	sort.Ints(rows)
	for _, i := range rows {
		gk, lk := fmt.Sprintf("gained-%d", i), fmt.Sprintf("lost-%d", i)
		gained, lost := form.Get(gk), form.Get(lk)
		validateVar(ve, gk, gained, "required,count")
		validateVar(ve, lk, lost, "required,count")
		g, gerr := parseCount(gained)
		l, lerr := parseCount(lost)
		if gerr == nil && lerr == nil {
			cmd.Counts[i] = ActivityCounts{Gained: g, Lost: l}
		}
	}

	months := form["new-activity-month"]
	gains, losses := form["new-activity-gained"], form["new-activity-lost"]
	for k := range max(len(months), len(gains), len(losses)) {
		in := newActivityInput{
			Month:  strings.TrimSpace(at(months, k)),
			Gained: at(gains, k),
			Lost:   at(losses, k),
		}
		if !present(in.Month) || !present(in.Gained) || !present(in.Lost) {
			continue
		}
		validateFields(ve, in)
		g, gerr := parseCount(in.Gained)
		l, lerr := parseCount(in.Lost)
		if gerr == nil && lerr == nil {
			cmd.New = append(cmd.New, model.ActivityPoint{Month: in.Month, Gained: g, Lost: l})
		}
	}

	if len(ve.Fields) > 0 {
		return nil, ve
	}
	return cmd, nil
}

type clientInput struct {
	ID              string `form:"id" validate:"rowid"`
	Name            string `form:"name" validate:"required"`
	Phone           string `form:"phone"`
	IntegrationDate string `form:"integrationDate" validate:"required,datetime=2006-01-02"`
	AdAccountID     string `form:"adAccountId" validate:"required"`
	TotalSpent      string `form:"totalSpent" validate:"required,amount"`
}

func parseClient(form url.Values) (Command, error) {
	in := clientInput{
		ID:              form.Get("id"),
		Name:            strings.TrimSpace(form.Get("name")),
		Phone:           strings.TrimSpace(form.Get("phone")),
		IntegrationDate: strings.TrimSpace(form.Get("integrationDate")),
		AdAccountID:     strings.TrimSpace(form.Get("adAccountId")),
		TotalSpent:      form.Get("totalSpent"),
	}
	ve := &ValidationError{Form: string(model.ModalClient)}
	validateFields(ve, in)
	if len(ve.Fields) > 0 {
		return nil, ve
	}
	id, _ := parseID(in.ID)
	spent, _ := parseAmount(in.TotalSpent)
	return UpsertClient{Client: model.Client{
		ID:              id,
		Name:            in.Name,
		IntegrationDate: in.IntegrationDate,
		AdAccountID:     in.AdAccountID,
		TotalSpent:      spent,
		Phone:           in.Phone,
	}}, nil
}

type affiliateInput struct {
	ID       string   `form:"id" validate:"rowid"`
	Name     string   `form:"name" validate:"required"`
	IBAN     string   `form:"iban"`
	Referred []string `form:"referred" validate:"dive,required,rowid"`
}

func parseAffiliate(form url.Values) (Command, error) {
	in := affiliateInput{
		ID:       form.Get("id"),
		Name:     strings.TrimSpace(form.Get("name")),
		IBAN:     strings.TrimSpace(form.Get("iban")),
		Referred: form["referred"],
	}
	ve := &ValidationError{Form: string(model.ModalAffiliate)}
	validateFields(ve, in)
	if len(ve.Fields) > 0 {
		return nil, ve
	}
	id, _ := parseID(in.ID)
	referred := make([]int64, 0, len(in.Referred))
	for _, raw := range in.Referred {
		rid, _ := parseID(raw)
		referred = append(referred, rid)
	}
	return UpsertAffiliate{ID: id, AffiliateName: in.Name, IBAN: in.IBAN, ReferredIDs: referred}, nil
}

type payoutInput struct {
	ID       string `form:"id" validate:"required,rowid"`
	IBAN     string `form:"iban"`
	Override string `form:"monthlyPayoutOverride" validate:"omitempty,amount"`
}

func parsePayout(form url.Values) (Command, error) {
	in := payoutInput{
		ID:       strings.TrimSpace(form.Get("id")),
		IBAN:     strings.TrimSpace(form.Get("iban")),
		Override: strings.TrimSpace(form.Get("monthlyPayoutOverride")),
	}
	ve := &ValidationError{Form: string(model.ModalPayout)}
	validateFields(ve, in)
	if len(ve.Fields) > 0 {
		return nil, ve
	}
	id, _ := parseID(in.ID)
	cmd := EditPayout{ID: id, IBAN: in.IBAN}
	if in.Override != "" {
		v, _ := parseAmount(in.Override)
		cmd.Override = &v
	}
	return cmd, nil
}

type deleteInput struct {
	Kind string `form:"type" validate:"required,oneof=client affiliate"`
	ID   string `form:"id" validate:"required,rowid"`
}

func parseDelete(form url.Values) (Command, error) {
	in := deleteInput{
		Kind: strings.TrimSpace(form.Get("type")),
		ID:   strings.TrimSpace(form.Get("id")),
	}
	ve := &ValidationError{Form: string(model.ModalConfirmDelete)}
	validateFields(ve, in)
	if len(ve.Fields) > 0 {
		return nil, ve
	}
	id, _ := parseID(in.ID)
	return deleteCommand(model.EntityKind(in.Kind), id), nil
}

func deleteCommand(kind model.EntityKind, id int64) Command {
	if kind == model.KindAffiliate {
		return DeleteAffiliate{ID: id}
	}
	return DeleteClient{ID: id}
}

type timeRangeInput struct {
	Range string `form:"range" validate:"required,oneof=3 6 12"`
}

func parseTimeRange(form url.Values) (Command, error) {
	in := timeRangeInput{Range: strings.TrimSpace(form.Get("range"))}
	ve := &ValidationError{Form: FormTimeRange}
	validateFields(ve, in)
	if len(ve.Fields) > 0 {
		return nil, ve
	}
	return ChangeTimeRange{Range: model.TimeRange(in.Range)}, nil
}
