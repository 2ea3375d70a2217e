package extractor

import (
	"strings"

	"github.com/aqlanhadi/sbtax/extractor/common"
)

var (
	chequeMarkers   = []string{"SIGNATURE", "CHEQUE"}
	cardMarkers     = []string{"CREDIT CARD", "CARD DIVISION", "WORLD CITIZEN CARD"}
	homeLoanMarkers = []string{"HOUSING LOAN", "HOME LOAN"}
)

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// isSummary spots the six-month summary table by its column headers. The
// headers are matched with their printed casing.
func isSummary(firstPage string) bool {
	return strings.Contains(firstPage, "Payments") && strings.Contains(firstPage, "Deposits")
}

// Classify decides the statement dialect from the text of its first page.
// Cheque markers win over card markers, which win over home loan markers.
func Classify(firstPage string) (common.Dialect, error) {
	upper := strings.ToUpper(firstPage)

	switch {
	case containsAny(upper, chequeMarkers):
		if isSummary(firstPage) {
			return common.ChequeSummary, nil
		}
		return common.ChequeDetailed, nil
	case containsAny(upper, cardMarkers),
		strings.Contains(upper, "CARD") && strings.Contains(upper, "ACCOUNT 5520"):
		if isSummary(firstPage) {
			return common.CardSummary, nil
		}
		return common.CardDetailed, nil
	case containsAny(upper, homeLoanMarkers):
		return common.HomeLoan, nil
	}

	return "", common.ErrUnknownDialect
}
