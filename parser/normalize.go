package parser

import "github.com/aluiziolira/go-remuneracao/models"

// Defaults for fields the API omits.
const (
	NotAvailable = "N/A"
	ZeroAmount   = "0,00"
)

// Normalize flattens raw records into one row per pay-period entry found
// under "remuneracoesDTO". Records without entries contribute no rows.
// Monetary values are locale-formatted strings and are copied verbatim.
func Normalize(records []models.RawRecord) []models.Row {
	var rows []models.Row
	for _, record := range records {
		rows = append(rows, NormalizeRecord(record)...)
	}
	return rows
}

// NormalizeRecord flattens a single raw record.
func NormalizeRecord(record models.RawRecord) []models.Row {
	doc := map[string]any(record)
	entries := lookupObjects(doc, "remuneracoesDTO")
	if len(entries) == 0 {
		return nil
	}

	base := models.Row{
		QueryIdentifier:     lookupString(doc, "", models.QueryIdentifierKey),
		QueryPeriod:         lookupString(doc, "", models.QueryPeriodKey),
		Name:                lookupString(doc, NotAvailable, "servidor", "pessoa", "nome"),
		FormattedIdentifier: lookupString(doc, NotAvailable, "servidor", "pessoa", "cpfFormatado"),
		DepartmentCode:      lookupString(doc, NotAvailable, "servidor", "orgaoServidorLotacao", "codigo"),
		DepartmentName:      lookupString(doc, NotAvailable, "servidor", "orgaoServidorLotacao", "nome"),
		Status:              lookupString(doc, NotAvailable, "servidor", "situacao"),
		Role:                lookupString(doc, NotAvailable, "servidor", "funcao", "descricaoFuncaoCargo"),
	}

	rows := make([]models.Row, 0, len(entries))
	for _, entry := range entries {
		row := base
		row.Period = lookupString(entry, NotAvailable, "mesAno")
		row.TotalAfterDeductions = lookupString(entry, ZeroAmount, "valorTotalRemuneracaoAposDeducoes")
		row.GrossBasic = lookupString(entry, ZeroAmount, "remuneracaoBasicaBruta")
		row.Indemnities = lookupString(entry, ZeroAmount, "verbasIndenizatorias")
		row.WithheldIncomeTax = lookupString(entry, ZeroAmount, "impostoRetidoNaFonte")
		row.SocialSecurity = lookupString(entry, ZeroAmount, "previdenciaOficial")
		rows = append(rows, row)
	}
	return rows
}
