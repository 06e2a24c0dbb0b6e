// Package models defines data structures shared by the fetcher, parser and exporters.
package models

import "time"

// Annotation keys added to every raw record for traceability.
const (
	QueryIdentifierKey = "cpf_consulta"
	QueryPeriodKey     = "mes_ano_consulta"
)

// RawRecord is one JSON object returned by the remuneration endpoint.
type RawRecord map[string]any

// Outcome classifies what a lookup produced for one identifier.
type Outcome string

const (
	OutcomeHasData Outcome = "has_data"
	OutcomeNoData  Outcome = "no_data"
	OutcomeErrored Outcome = "errored"
)

// Row is one flattened pay-period entry.
type Row struct {
	QueryIdentifier      string `csv:"cpf_consulta" json:"cpf_consulta"`
	QueryPeriod          string `csv:"mes_consulta" json:"mes_consulta"`
	Name                 string `csv:"nome" json:"nome"`
	FormattedIdentifier  string `csv:"cpf_formatado" json:"cpf_formatado"`
	DepartmentCode       string `csv:"orgao_lotacao_codigo" json:"orgao_lotacao_codigo"`
	DepartmentName       string `csv:"orgao_lotacao_nome" json:"orgao_lotacao_nome"`
	Status               string `csv:"situacao" json:"situacao"`
	Role                 string `csv:"cargo" json:"cargo"`
	Period               string `csv:"mes_ano" json:"mes_ano"`
	TotalAfterDeductions string `csv:"remuneracao_total" json:"remuneracao_total"`
	GrossBasic           string `csv:"remuneracao_bruta" json:"remuneracao_bruta"`
	Indemnities          string `csv:"verbas_indenizatorias" json:"verbas_indenizatorias"`
	WithheldIncomeTax    string `csv:"imposto_retido_fonte" json:"imposto_retido_fonte"`
	SocialSecurity       string `csv:"previdencia_oficial" json:"previdencia_oficial"`
}

// RowColumns lists export headers in the order of Row.Values.
var RowColumns = []string{
	"cpf_consulta",
	"mes_consulta",
	"nome",
	"cpf_formatado",
	"orgao_lotacao_codigo",
	"orgao_lotacao_nome",
	"situacao",
	"cargo",
	"mes_ano",
	"remuneracao_total",
	"remuneracao_bruta",
	"verbas_indenizatorias",
	"imposto_retido_fonte",
	"previdencia_oficial",
}

// Values returns the row cells in RowColumns order.
func (r Row) Values() []string {
	return []string{
		r.QueryIdentifier,
		r.QueryPeriod,
		r.Name,
		r.FormattedIdentifier,
		r.DepartmentCode,
		r.DepartmentName,
		r.Status,
		r.Role,
		r.Period,
		r.TotalAfterDeductions,
		r.GrossBasic,
		r.Indemnities,
		r.WithheldIncomeTax,
		r.SocialSecurity,
	}
}

// FetchResult holds the overall result of a lookup run.
type FetchResult struct {
	Period         string
	Records        []RawRecord
	WithData       []string
	NoData         []string
	Errored        []string
	StartTime      time.Time
	EndTime        time.Time
	ErrorsByType   map[string]int
	Attempted      int
	RequestCount   int
	RetryCount     int
	RateLimitWaits int
	Halted         bool
}

// Outcomes maps every attempted identifier to its classification.
func (r *FetchResult) Outcomes() map[string]Outcome {
	out := make(map[string]Outcome, len(r.WithData)+len(r.NoData)+len(r.Errored))
	for _, id := range r.WithData {
		out[id] = OutcomeHasData
	}
	for _, id := range r.NoData {
		out[id] = OutcomeNoData
	}
	for _, id := range r.Errored {
		out[id] = OutcomeErrored
	}
	return out
}
